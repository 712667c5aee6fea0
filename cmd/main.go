package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	arbitrateDisputeHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/arbitrate_dispute"
	cancelReservationHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/cancel_reservation"
	checkInHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/check_in"
	createReservationHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/create_reservation"
	declareNoShowHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/declare_no_show"
	getAvailabilityHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/get_availability"
	getClientReservationsHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/get_client_reservations"
	getClientScoreHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/get_client_score"
	getEstablishmentTrustHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/get_establishment_trust"
	getReservationHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/get_reservation"
	liftSanctionHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/lift_sanction"
	liftSuspensionHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/lift_suspension"
	recordReviewHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/record_review"
	respondDisputeHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/respond_dispute"
	transitionReservationHandler "github.com/planeat-app/PLE-ReservationService/internal/api/handlers/transition_reservation"
	"github.com/planeat-app/PLE-ReservationService/internal/api/middleware"
	"github.com/planeat-app/PLE-ReservationService/internal/config"
	capacityConfigRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/capacityconfig"
	disputeRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/dispute"
	reservationRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/reservation"
	trustRepo "github.com/planeat-app/PLE-ReservationService/internal/infra/storage/trust"
	checkinClient "github.com/planeat-app/PLE-ReservationService/internal/integrations/checkin"
	"github.com/planeat-app/PLE-ReservationService/internal/integrations/notifier"
	"github.com/planeat-app/PLE-ReservationService/internal/scheduler"
	disputesService "github.com/planeat-app/PLE-ReservationService/internal/service/disputes"
	reservationsService "github.com/planeat-app/PLE-ReservationService/internal/service/reservations"
	trustService "github.com/planeat-app/PLE-ReservationService/internal/service/trust"
	createReservationUC "github.com/planeat-app/PLE-ReservationService/internal/usecase/create_reservation"
	getAvailabilityUC "github.com/planeat-app/PLE-ReservationService/internal/usecase/get_availability"
	sweepDeadlinesUC "github.com/planeat-app/PLE-ReservationService/internal/usecase/sweep_deadlines"
	"github.com/planeat-app/PLE-ReservationService/pkg/dbmetrics"
	"github.com/planeat-app/PLE-ReservationService/pkg/logger"
	"github.com/planeat-app/PLE-ReservationService/pkg/metrics"
	"github.com/planeat-app/PLE-ReservationService/pkg/simpletxmanager"
	"github.com/planeat-app/PLE-ReservationService/pkg/txmanager"
)

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting PLE-ReservationService...")
	log.Info("Configuration loaded from config.toml")

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var wrappedDB *dbmetrics.DB
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Инициализируем интеграции
	checkin := checkinClient.NewClient(
		cfg.CheckinService.URL,
		time.Duration(cfg.CheckinService.Timeout)*time.Second,
		log,
	)
	log.Info("Check-in client initialized (url=%s, timeout=%ds)",
		cfg.CheckinService.URL, cfg.CheckinService.Timeout)

	events := notifier.NewPublisher(cfg.RabbitMQ.URL, metricsCollector, log)
	defer events.Close()

	// Инициализируем репозитории (с метриками или без)
	var (
		reservationRepository *reservationRepo.Repository
		configRepository      *capacityConfigRepo.Repository
		disputeRepository     *disputeRepo.Repository
		trustRepository       *trustRepo.Repository
	)

	// Интерфейс для transaction manager (используется в сервисах и usecases)
	type TxManager interface {
		Do(ctx context.Context, fn func(ctx context.Context) error) error
		DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
		DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	}
	var txMgr TxManager

	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
		log.Info("Database metrics collection started")

		reservationRepository = reservationRepo.NewRepository(wrappedDB)
		configRepository = capacityConfigRepo.NewRepository(wrappedDB)
		disputeRepository = disputeRepo.NewRepository(wrappedDB)
		trustRepository = trustRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	} else {
		reservationRepository = reservationRepo.NewRepository(db)
		configRepository = capacityConfigRepo.NewRepository(db)
		disputeRepository = disputeRepo.NewRepository(db)
		trustRepository = trustRepo.NewRepository(db)
		txMgr = simpletxmanager.NewTransactionManager(db)
	}

	// Инициализируем сервисы
	trustSvc := trustService.NewService(
		trustRepository,
		reservationRepository,
		txMgr,
		events,
		cfg.Trust.ProScorePolicy(),
		log,
		time.Now,
	)
	disputeSvc := disputesService.NewService(
		disputeRepository,
		reservationRepository,
		trustSvc,
		txMgr,
		events,
		log,
		time.Now,
	)
	reservationSvc := reservationsService.NewService(
		reservationRepository,
		checkin,
		trustSvc,
		events,
		log,
		time.Now,
	)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		reservationRepository,
		configRepository,
		trustRepository,
		trustSvc,
		txMgr,
		events,
		log,
	)
	getAvailabilityUseCase := getAvailabilityUC.NewUseCase(
		reservationRepository,
		configRepository,
		log,
	)
	sweepUseCase := sweepDeadlinesUC.NewUseCase(
		reservationRepository,
		disputeRepository,
		trustSvc,
		events,
		log,
	)

	// Запускаем планировщик обработки дедлайнов
	if cfg.Scheduler.Enabled {
		var rdb *redis.Client
		if cfg.Redis.Enabled {
			rdb = redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer rdb.Close()
			log.Info("Redis client initialized (addr=%s)", cfg.Redis.Addr)
		} else {
			log.Warn("Redis disabled, sweep scheduler runs without distributed lock")
		}

		sweepScheduler := scheduler.New(
			sweepUseCase,
			rdb,
			time.Duration(cfg.Scheduler.IntervalSeconds)*time.Second,
			time.Duration(cfg.Scheduler.LockTTLSeconds)*time.Second,
			metricsCollector,
			log,
		)
		sweepScheduler.Start()
		defer sweepScheduler.Stop()
	} else {
		log.Warn("Sweep scheduler disabled")
	}

	// Инициализируем handlers
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getAvailability := getAvailabilityHandler.NewHandler(getAvailabilityUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	getClientReservations := getClientReservationsHandler.NewHandler(reservationSvc, log)
	transitionReservation := transitionReservationHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	checkIn := checkInHandler.NewHandler(reservationSvc, log)
	declareNoShow := declareNoShowHandler.NewHandler(disputeSvc, log)
	respondDispute := respondDisputeHandler.NewHandler(disputeSvc, log)
	arbitrateDispute := arbitrateDisputeHandler.NewHandler(disputeSvc, log)
	getClientScore := getClientScoreHandler.NewHandler(trustSvc, log)
	getEstablishmentTrust := getEstablishmentTrustHandler.NewHandler(trustSvc, log)
	liftSanction := liftSanctionHandler.NewHandler(trustSvc, log)
	liftSuspension := liftSuspensionHandler.NewHandler(trustSvc, log)
	recordReview := recordReviewHandler.NewHandler(trustSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector, cfg.Metrics.ServiceName))
		log.Info("HTTP metrics middleware enabled")
	}

	// Metrics endpoint (публичный, без аутентификации)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступность слотов по пулам на дату
	api.HandleFunc("/establishments/{establishmentId}/availability",
		getAvailability.Handle).Methods(http.MethodGet)

	// Агрегат доверия заведения
	api.HandleFunc("/establishments/{establishmentId}/trust",
		getEstablishmentTrust.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Брони ---
	// Создание брони или заявки на групповую квоту
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)

	// Получение брони по ID
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)

	// Переход статуса по общей машине состояний
	protected.HandleFunc("/reservations/{reservationId}/status", transitionReservation.Handle).Methods(http.MethodPatch)

	// Отмена брони
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)

	// Чек-ин по токену
	protected.HandleFunc("/reservations/{reservationId}/check-in", checkIn.Handle).Methods(http.MethodPost)

	// Объявление неявки заведением
	protected.HandleFunc("/reservations/{reservationId}/no-show", declareNoShow.Handle).Methods(http.MethodPost)

	// История броней клиента
	protected.HandleFunc("/clients/{clientId}/reservations", getClientReservations.Handle).Methods(http.MethodGet)

	// Счет доверия клиента
	protected.HandleFunc("/clients/{clientId}/score", getClientScore.Handle).Methods(http.MethodGet)

	// --- Споры ---
	// Ответ клиента на объявленную неявку
	protected.HandleFunc("/disputes/{disputeId}/response", respondDispute.Handle).Methods(http.MethodPost)

	// ============================================================
	// INTERNAL ROUTES (требуют X-Operator-ID header)
	// ============================================================

	internal := r.PathPrefix("/internal/v1").Subrouter()
	internal.Use(middleware.Operator)

	// Арбитраж оспоренной неявки
	internal.HandleFunc("/disputes/{disputeId}/arbitrate", arbitrateDispute.Handle).Methods(http.MethodPost)

	// Снятие санкции с заведения
	internal.HandleFunc("/sanctions/{sanctionId}/lift", liftSanction.Handle).Methods(http.MethodPost)

	// Снятие отстранения клиента
	internal.HandleFunc("/suspensions/{suspensionId}/lift", liftSuspension.Handle).Methods(http.MethodPost)

	// Учет отзыва клиента в счете доверия
	internal.HandleFunc("/clients/{clientId}/reviews", recordReview.Handle).Methods(http.MethodPost)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
