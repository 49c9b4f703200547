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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cancelExchangeHandler "github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers/cancel_exchange_request"
	cancelNegotiationResponseHandler "github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers/cancel_negotiation_response"
	createExchangeHandler "github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers/create_exchange_request"
	getRoomHandler "github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers/get_room"
	listExchangeHandler "github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers/list_exchange_requests"
	listNegotiationsHandler "github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers/list_negotiations"
	openNegotiationHandler "github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers/open_negotiation"
	respondChainHandler "github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers/respond_chain_request"
	respondExchangeHandler "github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers/respond_exchange_request"
	respondNegotiationHandler "github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers/respond_negotiation"
	syncRoomHandler "github.com/m04kA/SMC-SlotExchangeService/internal/api/handlers/sync_room"
	"github.com/m04kA/SMC-SlotExchangeService/internal/api/middleware"
	"github.com/m04kA/SMC-SlotExchangeService/internal/config"
	"github.com/m04kA/SMC-SlotExchangeService/internal/engine/availability"
	exchangeEngine "github.com/m04kA/SMC-SlotExchangeService/internal/engine/exchange"
	negotiationEngine "github.com/m04kA/SMC-SlotExchangeService/internal/engine/negotiation"
	"github.com/m04kA/SMC-SlotExchangeService/internal/infra/storage/memory"
	roomRepo "github.com/m04kA/SMC-SlotExchangeService/internal/infra/storage/room"
	"github.com/m04kA/SMC-SlotExchangeService/internal/integrations/activitylog"
	roomsService "github.com/m04kA/SMC-SlotExchangeService/internal/service/rooms"
	exchangeUC "github.com/m04kA/SMC-SlotExchangeService/internal/usecase/exchange"
	negotiationUC "github.com/m04kA/SMC-SlotExchangeService/internal/usecase/negotiation"
	travelModeUC "github.com/m04kA/SMC-SlotExchangeService/internal/usecase/travel_mode"
	travelModeWorker "github.com/m04kA/SMC-SlotExchangeService/internal/worker/travelmode"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/logger"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/metrics"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/roomlock"
	"github.com/m04kA/SMC-SlotExchangeService/pkg/txmanager"
)

const configPathEnv = "CONFIG_PATH"

func main() {
	// Загружаем конфигурацию
	configPath := "config.toml"
	if p := os.Getenv(configPathEnv); p != "" {
		configPath = p
	}
	cfg, err := config.Load(configPath)
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

	log.Info("Starting SMC-SlotExchangeService...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики. При выключенных метриках счетчики пишутся в отдельный реестр,
	// который никуда не публикуется.
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	} else {
		metricsCollector = metrics.NewWithRegistry(prometheus.NewRegistry(), cfg.Metrics.ServiceName)
	}

	// Хранилище комнат: Postgres или память для локального запуска
	var (
		roomRepository roomsService.RoomRepository
		txMgr          roomsService.TransactionManager
	)

	switch cfg.Database.Driver {
	case config.DriverMemory:
		roomRepository = memory.NewRepository()
		txMgr = txmanager.NewNoop()
		log.Warn("Using in-memory storage: data is lost on restart")

	default:
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

		var wrappedDB *dbmetrics.DB
		if cfg.Metrics.Enabled {
			wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
			log.Info("Database metrics collection started")
		} else {
			wrappedDB = dbmetrics.Wrap(db, nil)
		}

		roomRepository = roomRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	}

	// Инициализируем интеграционных клиентов
	activityClient := activitylog.NewClient(
		cfg.ActivityService.URL,
		time.Duration(cfg.ActivityService.Timeout)*time.Second,
		log,
	)
	if activityClient.Enabled() {
		log.Info("Activity log client initialized (url=%s timeout=%ds)", cfg.ActivityService.URL, cfg.ActivityService.Timeout)
	} else {
		log.Info("Activity log disabled: no url configured")
	}

	// Инициализируем сервисы
	locker := roomlock.New(cfg.Engine.LockTimeoutDuration(), metricsCollector)
	roomSvc := roomsService.NewService(roomRepository, txMgr, locker, log)

	// Инициализируем движки
	planner := exchangeEngine.NewPlanner(availability.NewFinder(cfg.Engine.SearchWeeks), cfg.Engine.MaxChainDepth)
	negotiations := negotiationEngine.NewEngine(nil)
	log.Info("Engine configured (max_chain_depth=%d, search_weeks=%d, lock_timeout=%dms)",
		cfg.Engine.MaxChainDepth, cfg.Engine.SearchWeeks, cfg.Engine.LockTimeout)

	// Инициализируем use cases
	exchangeUseCase := exchangeUC.NewUseCase(roomSvc, planner, activityClient, metricsCollector, log)
	negotiationUseCase := negotiationUC.NewUseCase(roomSvc, negotiations, activityClient, metricsCollector, log)

	// Фоновое подтверждение режима поездки
	var worker *travelModeWorker.Worker
	if cfg.TravelMode.Enabled {
		travelModeUseCase, err := travelModeUC.NewUseCase(
			roomSvc,
			activityClient,
			metricsCollector,
			time.Duration(cfg.TravelMode.ConfirmAfter)*time.Second,
			log,
		)
		if err != nil {
			log.Fatal("Failed to initialize travel mode use case: %v", err)
		}
		worker = travelModeWorker.New(travelModeUseCase, time.Duration(cfg.TravelMode.CheckInterval)*time.Second, log)
		worker.Start(context.Background())
		log.Info("Travel mode worker started (interval=%ds, confirm_after=%ds)",
			cfg.TravelMode.CheckInterval, cfg.TravelMode.ConfirmAfter)
	}

	// Инициализируем handlers
	createExchange := createExchangeHandler.NewHandler(exchangeUseCase, log)
	listExchange := listExchangeHandler.NewHandler(exchangeUseCase, log)
	respondExchange := respondExchangeHandler.NewHandler(exchangeUseCase, log)
	cancelExchange := cancelExchangeHandler.NewHandler(exchangeUseCase, log)
	respondChain := respondChainHandler.NewHandler(exchangeUseCase, log)
	openNegotiation := openNegotiationHandler.NewHandler(negotiationUseCase, log)
	listNegotiations := listNegotiationsHandler.NewHandler(negotiationUseCase, log)
	respondNegotiation := respondNegotiationHandler.NewHandler(negotiationUseCase, log)
	cancelNegotiationResponse := cancelNegotiationResponseHandler.NewHandler(negotiationUseCase, log)
	getRoom := getRoomHandler.NewHandler(roomSvc, log)
	syncRoom := syncRoomHandler.NewHandler(roomSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		// Metrics endpoint (публичный, без аутентификации)
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// ============================================================
	// INTERNAL ROUTES (сервис комнат, закрыты на уровне сети)
	// ============================================================

	r.HandleFunc("/internal/rooms/{roomId}", syncRoom.Handle).Methods(http.MethodPut)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	api := r.PathPrefix("/api/v1").Subrouter()
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Комната ---
	protected.HandleFunc("/rooms/{roomId}", getRoom.Handle).Methods(http.MethodGet)

	// --- Запросы обмена ---
	protected.HandleFunc("/rooms/{roomId}/exchange-requests", createExchange.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/rooms/{roomId}/exchange-requests", listExchange.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/rooms/{roomId}/exchange-requests/{requestId}/respond", respondExchange.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/rooms/{roomId}/exchange-requests/{requestId}/cancel", cancelExchange.Handle).Methods(http.MethodPost)

	// --- Цепочки ---
	protected.HandleFunc("/rooms/{roomId}/chain-exchange-requests/{requestId}/respond", respondChain.Handle).Methods(http.MethodPost)

	// --- Переговоры ---
	protected.HandleFunc("/rooms/{roomId}/negotiations", openNegotiation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/rooms/{roomId}/negotiations", listNegotiations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/rooms/{roomId}/negotiations/{negotiationId}/respond", respondNegotiation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/rooms/{roomId}/negotiations/{negotiationId}/cancel-response", cancelNegotiationResponse.Handle).Methods(http.MethodPost)

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

	if worker != nil {
		worker.Stop()
		log.Info("Travel mode worker stopped")
	}

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

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
