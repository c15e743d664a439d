package main

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flightops/groundboard/config/logger"
	config "github.com/flightops/groundboard/config/utils"
	"github.com/flightops/groundboard/internal/adapter/queue/rabbitmq"
	"github.com/flightops/groundboard/internal/core/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// handlingDelay simulates the time a ground crew needs before reporting back
const handlingDelay = 2 * time.Second

// The supervisor simulator stands in for the external handling service during
// local runs: it accepts refuel instructions over HTTP and reports completed
// loading work back through the task queues.
func main() {
	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	appConfig := config.New()
	log := logger.Build(appConfig.Logger)
	log = log.With(zap.String("service", "supervisor"))

	addr := os.Getenv("SUPERVISOR_ADDR")
	if addr == "" {
		addr = ":8007"
	}

	topics := rabbitmq.DefaultTopics()
	if appConfig.Rabbit.Topics.Fuel != "" {
		topics.Fuel = appConfig.Rabbit.Topics.Fuel
	}
	if appConfig.Rabbit.Topics.Catering != "" {
		topics.Catering = appConfig.Rabbit.Topics.Catering
	}
	if appConfig.Rabbit.Topics.Baggage != "" {
		topics.Baggage = appConfig.Rabbit.Topics.Baggage
	}
	if appConfig.Rabbit.Topics.Passengers != "" {
		topics.Passengers = appConfig.Rabbit.Topics.Passengers
	}

	queue, err := rabbitmq.NewQueue(appConfig.Rabbit.URL, topics, log.Named("Rabbit"))
	if err != nil {
		log.Fatal("Failed to init RabbitMQ", zap.Error(err))
	}
	defer queue.Close()

	r := chi.NewRouter()
	r.Post("/v1/tasks/refuel", func(w http.ResponseWriter, req *http.Request) {
		var task struct {
			PlaneID      string `json:"planeId"`
			PlaneParking string `json:"planeParking"`
			FuelAmount   int    `json:"fuelAmount"`
		}
		if err := json.NewDecoder(req.Body).Decode(&task); err != nil || task.PlaneID == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		log.Info("Refuel task accepted",
			zap.String("plane_id", task.PlaneID),
			zap.String("parking", task.PlaneParking),
			zap.Int("fuel_amount", task.FuelAmount))

		go completeHandling(rootCtx, queue, task.PlaneID, task.FuelAmount, log)
		w.WriteHeader(http.StatusAccepted)
	})

	server := &http.Server{Addr: addr, Handler: r}
	go func() {
		log.Info("Handling supervisor listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", zap.Error(err))
			rootCtxCancel()
		}
	}()

	<-rootCtx.Done()
	log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}

// completeHandling reports the finished ground work for one plane: the fuel
// load it was asked for plus a simulated catering order and baggage manifest.
// Each publish failure is independent, matching the board's partial-failure
// contract.
func completeHandling(ctx context.Context, queue *rabbitmq.Queue, planeID string, fuelAmount int, log *zap.Logger) {
	select {
	case <-ctx.Done():
		return
	case <-time.After(handlingDelay):
	}

	reports := []struct {
		taskType domain.TaskType
		payload  domain.TaskPayload
	}{
		{domain.TaskFuel, domain.TaskPayload{Amount: fuelAmount}},
		{domain.TaskFood, domain.TaskPayload{Food: map[string]int{
			"meal":  100 + rand.Intn(150),
			"water": 150 + rand.Intn(150),
		}}},
		{domain.TaskBaggage, domain.TaskPayload{Baggage: baggageManifest(planeID)}},
	}

	for _, report := range reports {
		msg := domain.TaskMessage{PlaneID: planeID, Payload: report.payload}
		if err := queue.Publish(ctx, report.taskType, msg); err != nil {
			log.Error("Failed to report completed task",
				zap.String("task_type", string(report.taskType)),
				zap.String("plane_id", planeID),
				zap.Error(err))
		}
	}
}

func baggageManifest(planeID string) []string {
	count := 2 + rand.Intn(4)
	items := make([]string, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, string(rune('A'+i))+"-"+planeID)
	}
	return items
}
