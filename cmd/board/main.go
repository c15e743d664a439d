package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flightops/groundboard/config/logger"
	postgresConfig "github.com/flightops/groundboard/config/storage/postgresql"
	redisConfig "github.com/flightops/groundboard/config/storage/redis"
	config "github.com/flightops/groundboard/config/utils"
	"github.com/flightops/groundboard/internal/adapter/api"
	"github.com/flightops/groundboard/internal/adapter/flightinfo"
	"github.com/flightops/groundboard/internal/adapter/handling"
	"github.com/flightops/groundboard/internal/adapter/queue/rabbitmq"
	"github.com/flightops/groundboard/internal/adapter/storage/postgres"
	"github.com/flightops/groundboard/internal/core/port"
	"github.com/flightops/groundboard/internal/core/service"
	"go.uber.org/zap"
)

// _shutdownPeriod is time to wait before gracefully shutting server
const _shutdownPeriod = 10 * time.Second

func main() {
	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	// Init config & logger
	appConfig := config.New()
	log := logger.Build(appConfig.Logger)
	log = log.With(zap.String("service", "board"))

	log.Info("Starting the application",
		zap.String("app", appConfig.App.Name),
		zap.String("env", appConfig.App.Env),
		zap.String("owner", appConfig.App.Owner))

	// Init task journal
	dbService, err := postgresConfig.New(rootCtx, appConfig.DB, log.Named("DB"))
	if err != nil {
		log.Fatal("Error initializing database connection", zap.Error(err))
	}
	if err := dbService.Migrate(); err != nil {
		log.Fatal("Error migrating database", zap.Error(err))
	}
	log.Info("Successfully migrated the database")
	journal := postgres.NewTaskJournal(dbService.Pool, log.Named("Journal"))

	// Init flight list cache. The cache is an optimization: a missing or
	// unreachable Redis just means every lookup hits the panel directly.
	var cache *flightinfo.Cache
	if appConfig.Redis.Addr != "" {
		redisService, err := redisConfig.New(rootCtx, appConfig.Redis)
		if err != nil {
			log.Warn("Redis unavailable, flight list cache disabled", zap.Error(err))
		} else {
			defer redisService.Close()
			cache = flightinfo.NewCache(redisService.Client, appConfig.FlightSource.CacheTTL, log.Named("Cache"))
			log.Info("Connected to the cache server", zap.String("address", appConfig.Redis.Addr))
		}
	}

	// Init flight source client
	flights := flightinfo.NewClient(
		appConfig.FlightSource.URL,
		appConfig.FlightSource.Timeout,
		cache,
		log.Named("FlightInfo"),
	)

	// Init task dispatcher. Queue mode is the only place startup is allowed
	// to abort on a broker failure.
	var dispatcher port.TaskDispatcher
	var queue *rabbitmq.Queue
	switch appConfig.Board.DispatchMode {
	case "queue":
		queue, err = rabbitmq.NewQueue(appConfig.Rabbit.URL, topicsFromConfig(appConfig.Rabbit.Topics), log.Named("Rabbit"))
		if err != nil {
			log.Fatal("Failed to init RabbitMQ", zap.Error(err))
		}
		defer queue.Close()
		dispatcher = queue
	case "http", "":
		dispatcher = handling.NewClient(
			appConfig.Supervisor.URL,
			appConfig.Supervisor.Timeout,
			log.Named("Handling"),
		)
	default:
		log.Fatal("Unknown dispatch mode", zap.String("mode", appConfig.Board.DispatchMode))
	}

	// Init board orchestrator
	board := service.NewBoard(
		appConfig.Board.MaxPlanes,
		appConfig.Board.PlaneIDs,
		flights,
		dispatcher,
		journal,
		log.Named("Board"),
	)

	// Start queue consumer (queue mode only)
	if queue != nil {
		if err := queue.Consume(rootCtx, board.HandleTask); err != nil {
			log.Fatal("Failed to start task consumer", zap.Error(err))
		}
	}

	// Start discovery loop
	interval := appConfig.Board.DiscoveryInterval
	if interval <= 0 {
		interval = 6 * time.Second
	}
	go board.Run(rootCtx, interval)
	log.Info("Discovery loop started", zap.Duration("interval", interval))

	// Start HTTP server
	server := &http.Server{
		Addr:    appConfig.HTTP.Addr,
		Handler: api.New(board, log.Named("API")),
	}
	go func() {
		log.Info("HTTP server listening", zap.String("addr", appConfig.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", zap.Error(err))
			rootCtxCancel()
		}
	}()

	// Wait for ctx cancelation
	<-rootCtx.Done()
	log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), _shutdownPeriod)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown error", zap.Error(err))
	}

	dbService.Close()
	log.Info("Graceful shutdown complete.")
	os.Exit(0)
}

func topicsFromConfig(t config.Topics) rabbitmq.Topics {
	topics := rabbitmq.DefaultTopics()
	if t.Fuel != "" {
		topics.Fuel = t.Fuel
	}
	if t.Catering != "" {
		topics.Catering = t.Catering
	}
	if t.Baggage != "" {
		topics.Baggage = t.Baggage
	}
	if t.Passengers != "" {
		topics.Passengers = t.Passengers
	}
	return topics
}
