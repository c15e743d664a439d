package main

import (
	"context"
	"fmt"
	"time"

	"github.com/flightops/groundboard/config/logger"
	postgresConfig "github.com/flightops/groundboard/config/storage/postgresql"
	redisConfig "github.com/flightops/groundboard/config/storage/redis"
	config "github.com/flightops/groundboard/config/utils"
	"github.com/flightops/groundboard/internal/adapter/flightinfo"
	"github.com/flightops/groundboard/internal/adapter/queue/rabbitmq"
	"github.com/flightops/groundboard/internal/adapter/storage/postgres"
	"github.com/flightops/groundboard/internal/core/domain"
	"go.uber.org/zap"
)

func main() {
	// 1. Setup Logger & Config
	appConfig := config.New()
	log := logger.Build(appConfig.Logger)
	ctx := context.Background()

	log.Info("Starting Verification...")

	// 2. Test Postgres
	log.Info("--- Testing Postgres ---")
	dbService, err := postgresConfig.New(ctx, appConfig.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to DB", zap.Error(err))
	}
	if err := dbService.Migrate(); err != nil {
		log.Fatal("Failed to migrate DB", zap.Error(err))
	}
	journal := postgres.NewTaskJournal(dbService.Pool, log)

	task := &domain.HandlingTask{
		ID:        fmt.Sprintf("verify-task-%d", time.Now().Unix()),
		PlaneID:   "PL-VERIFY",
		FlightID:  "FL-VERIFY",
		Type:      domain.TaskFuel,
		Payload:   domain.TaskPayload{Amount: 4000},
		Status:    domain.TaskStatusDispatched,
		CreatedAt: time.Now(),
	}

	if err := journal.Record(ctx, task); err != nil {
		log.Error("X Postgres: Record Task Failed", zap.Error(err))
	} else {
		log.Info("✓ Postgres: Record Task Success")
	}

	if recent, err := journal.ListRecent(ctx, 5); err != nil {
		log.Error("X Postgres: List Recent Failed", zap.Error(err))
	} else {
		log.Info("✓ Postgres: List Recent Success", zap.Int("count", len(recent)))
	}

	// 3. Test Redis
	log.Info("--- Testing Redis ---")
	redisService, err := redisConfig.New(ctx, appConfig.Redis)
	if err != nil {
		log.Error("X Redis: Connect Failed", zap.Error(err))
	} else {
		cache := flightinfo.NewCache(redisService.Client, 10*time.Second, log)
		cache.Set(ctx, []domain.Flight{{FlightID: "FL-VERIFY", PlaneID: "PL-VERIFY", Type: domain.FlightTypeDepart}})
		if flights, ok := cache.Get(ctx); ok && len(flights) == 1 {
			log.Info("✓ Redis: Flight Cache Roundtrip Success")
		} else {
			log.Error("X Redis: Flight Cache Roundtrip Failed")
		}
		redisService.Close()
	}

	// 4. Test RabbitMQ
	log.Info("--- Testing RabbitMQ ---")
	queue, err := rabbitmq.NewQueue(appConfig.Rabbit.URL, rabbitmq.DefaultTopics(), log)
	if err != nil {
		log.Error("X RabbitMQ: Connect Failed", zap.Error(err))
	} else {
		msg := domain.TaskMessage{PlaneID: "PL-VERIFY", Payload: domain.TaskPayload{Amount: 4000}}
		if err := queue.Publish(ctx, domain.TaskFuel, msg); err != nil {
			log.Error("X RabbitMQ: Publish Failed", zap.Error(err))
		} else {
			log.Info("✓ RabbitMQ: Publish Success")
		}
		queue.Close()
	}

	// 5. Test Flight Source
	log.Info("--- Testing Flight Source ---")
	flights := flightinfo.NewClient(appConfig.FlightSource.URL, appConfig.FlightSource.Timeout, nil, log)
	if list, err := flights.ListFlights(ctx); err != nil {
		log.Error("X FlightSource: List Flights Failed", zap.Error(err))
	} else {
		log.Info("✓ FlightSource: List Flights Success", zap.Int("count", len(list)))
	}

	dbService.Close()
	log.Info("Verification complete")
}
