package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/planeat-app/PLE-ReservationService/internal/domain"
)

// Config конфигурация сервиса
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	Scheduler      SchedulerConfig      `toml:"scheduler"`
	Redis          RedisConfig          `toml:"redis"`
	RabbitMQ       RabbitMQConfig       `toml:"rabbitmq"`
	CheckinService CheckinServiceConfig `toml:"checkin_service"`
	Trust          TrustConfig          `toml:"trust"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN собирает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

// SchedulerConfig настройки планировщика обработки дедлайнов
type SchedulerConfig struct {
	Enabled         bool `toml:"enabled"`
	IntervalSeconds int  `toml:"interval_seconds"`
	LockTTLSeconds  int  `toml:"lock_ttl_seconds"`
}

// RedisConfig настройки Redis (распределённая блокировка планировщика)
type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// RabbitMQConfig настройки брокера доменных событий
type RabbitMQConfig struct {
	URL string `toml:"url"`
}

// CheckinServiceConfig настройки клиента сервиса валидации чек-инов
type CheckinServiceConfig struct {
	URL     string `toml:"url"`
	Timeout int    `toml:"timeout"`
}

// TrustConfig переопределение политики скоринга заведений.
// Нулевые значения означают "использовать значение по умолчанию"
type TrustConfig struct {
	ProBase                 int `toml:"pro_base"`
	ResponseRateWeight      int `toml:"response_rate_weight"`
	ResponseLatencyPenalty  int `toml:"response_latency_penalty"`
	FalseNoShowPenalty      int `toml:"false_no_show_penalty"`
	CancellationRatePenalty int `toml:"cancellation_rate_penalty"`
	WarningAt               int `toml:"warning_at"`
	Deactivate7dAt          int `toml:"deactivate_7d_at"`
	Deactivate30dAt         int `toml:"deactivate_30d_at"`
	ExcludeAt               int `toml:"exclude_at"`
}

// ProScorePolicy собирает политику скоринга: значения из конфига
// поверх значений по умолчанию
func (c *TrustConfig) ProScorePolicy() domain.ProScorePolicy {
	policy := domain.DefaultProScorePolicy()

	if c.ProBase > 0 {
		policy.Base = c.ProBase
	}
	if c.ResponseRateWeight > 0 {
		policy.ResponseRateWeight = c.ResponseRateWeight
	}
	if c.ResponseLatencyPenalty > 0 {
		policy.ResponseLatencyPenalty = c.ResponseLatencyPenalty
	}
	if c.FalseNoShowPenalty > 0 {
		policy.FalseNoShowPenalty = c.FalseNoShowPenalty
	}
	if c.CancellationRatePenalty > 0 {
		policy.CancellationRatePenalty = c.CancellationRatePenalty
	}
	if c.WarningAt > 0 {
		policy.WarningAt = c.WarningAt
	}
	if c.Deactivate7dAt > 0 {
		policy.Deactivate7dAt = c.Deactivate7dAt
	}
	if c.Deactivate30dAt > 0 {
		policy.Deactivate30dAt = c.Deactivate30dAt
	}
	if c.ExcludeAt > 0 {
		policy.ExcludeAt = c.ExcludeAt
	}

	return policy
}

// Load читает и валидирует конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			ServiceName: "reservation-service",
			Path:        "/metrics",
		},
		Scheduler: SchedulerConfig{
			Enabled:         true,
			IntervalSeconds: 60,
			LockTTLSeconds:  55,
		},
		CheckinService: CheckinServiceConfig{
			Timeout: 5,
		},
	}
}

func (c *Config) validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port must be in (0, 65535], got %d", c.Server.HTTPPort)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database.dbname is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Scheduler.Enabled && c.Scheduler.IntervalSeconds <= 0 {
		return fmt.Errorf("scheduler.interval_seconds must be positive, got %d", c.Scheduler.IntervalSeconds)
	}
	if c.Scheduler.Enabled && c.Scheduler.LockTTLSeconds <= 0 {
		return fmt.Errorf("scheduler.lock_ttl_seconds must be positive, got %d", c.Scheduler.LockTTLSeconds)
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required when redis is enabled")
	}
	return nil
}
