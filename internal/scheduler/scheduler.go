package scheduler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	sweepDeadlines "github.com/planeat-app/PLE-ReservationService/internal/usecase/sweep_deadlines"
	"github.com/planeat-app/PLE-ReservationService/pkg/metrics"
)

const lockKey = "reservations:sweep:lock"

// releaseScript удаляет блокировку только если она всё ещё принадлежит этому инстансу
var releaseScript = redis.NewScript(`
	if redis.call('GET', KEYS[1]) == ARGV[1] then
		return redis.call('DEL', KEYS[1])
	end
	return 0
`)

// Scheduler периодически запускает обработку дедлайнов.
// При наличии Redis использует распределённую блокировку (SET NX PX),
// чтобы в кластере проход выполнял только один инстанс. Если Redis
// недоступен, проход выполняется без блокировки - все переходы
// условные, поэтому повторная обработка безопасна.
type Scheduler struct {
	sweep      SweepUseCase
	rdb        *redis.Client
	instanceID string
	interval   time.Duration
	lockTTL    time.Duration
	metrics    *metrics.Metrics
	logger     Logger

	stop chan struct{}
	done chan struct{}
}

// New создает планировщик. m может быть nil, если метрики выключены
func New(sweep SweepUseCase, rdb *redis.Client, interval, lockTTL time.Duration, m *metrics.Metrics, logger Logger) *Scheduler {
	return &Scheduler{
		sweep:      sweep,
		rdb:        rdb,
		instanceID: newInstanceID(),
		interval:   interval,
		lockTTL:    lockTTL,
		metrics:    m,
		logger:     logger,
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start запускает фоновый цикл. Первый проход выполняется сразу.
func (s *Scheduler) Start() {
	go s.run()
}

// Stop останавливает цикл и дожидается завершения текущего прохода
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)

	s.logger.Info("Sweep scheduler started: interval=%s, lock_ttl=%s, instance=%s",
		s.interval, s.lockTTL, s.instanceID)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce()

	for {
		select {
		case <-s.stop:
			s.logger.Info("Sweep scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.lockTTL)
	defer cancel()

	acquired, locked := s.tryLock(ctx)
	if !acquired {
		return
	}
	if locked {
		defer s.unlock(ctx)
	}

	result, err := s.sweep.Execute(ctx)
	if err != nil {
		s.logger.Error("Sweep pass failed: %v", err)
		if s.metrics != nil {
			s.metrics.SweepRunsTotal.WithLabelValues("error").Inc()
		}
		return
	}

	s.observe(result)

	if result.Transitions() > 0 || result.Errors > 0 {
		s.logger.Info("Sweep pass finished: expired=%d, venue_reminders=%d, auto_validated=%d, quotes_expired=%d, no_show_confirmed=%d, errors=%d",
			len(result.Expired), result.VenueReminders, len(result.AutoValidated),
			len(result.QuotesExpired), len(result.NoShowConfirmed), result.Errors)
	}
}

func (s *Scheduler) observe(result *sweepDeadlines.Result) {
	if s.metrics == nil {
		return
	}

	s.metrics.SweepRunsTotal.WithLabelValues("success").Inc()
	s.metrics.SweepTransitionsTotal.WithLabelValues("expired").Add(float64(len(result.Expired)))
	s.metrics.SweepTransitionsTotal.WithLabelValues("venue_reminder").Add(float64(result.VenueReminders))
	s.metrics.SweepTransitionsTotal.WithLabelValues("auto_validated").Add(float64(len(result.AutoValidated)))
	s.metrics.SweepTransitionsTotal.WithLabelValues("quote_expired").Add(float64(len(result.QuotesExpired)))
	s.metrics.SweepTransitionsTotal.WithLabelValues("no_show_confirmed").Add(float64(len(result.NoShowConfirmed)))
	if result.Errors > 0 {
		s.metrics.SweepErrorsTotal.WithLabelValues("transition").Add(float64(result.Errors))
	}
}

// tryLock возвращает (можно ли выполнять проход, удерживаем ли блокировку)
func (s *Scheduler) tryLock(ctx context.Context) (bool, bool) {
	if s.rdb == nil {
		return true, false
	}

	ok, err := s.rdb.SetNX(ctx, lockKey, s.instanceID, s.lockTTL).Result()
	if err != nil {
		// Redis недоступен - выполняем без блокировки
		s.logger.Warn("Sweep lock unavailable, running locklessly: %v", err)
		return true, false
	}
	if !ok {
		// Блокировку держит другой инстанс
		return false, false
	}

	return true, true
}

func (s *Scheduler) unlock(ctx context.Context) {
	if err := releaseScript.Run(ctx, s.rdb, []string{lockKey}, s.instanceID).Err(); err != nil && err != redis.Nil {
		s.logger.Warn("Failed to release sweep lock: %v", err)
	}
}

func newInstanceID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(buf)
}
