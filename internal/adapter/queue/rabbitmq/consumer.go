package rabbitmq

import (
	"context"
	"encoding/json"

	"github.com/flightops/groundboard/internal/core/domain"
	"github.com/flightops/groundboard/internal/core/port"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consume subscribes to every task queue and routes deliveries to the handler
// by queue name. Deliveries are auto-acked on receipt, so handling is
// at-most-once: a malformed message or a handler error is logged and dropped,
// never requeued, and never affects later messages or other subscriptions.
func (q *Queue) Consume(ctx context.Context, handler port.TaskHandler) error {
	for _, queueName := range q.topics.All() {
		msgs, err := q.ch.Consume(
			queueName, // queue
			"",        // consumer
			true,      // auto-ack
			false,     // exclusive
			false,     // no-local
			false,     // no-wait
			nil,       // args
		)
		if err != nil {
			return err
		}

		taskType := q.topics.TypeFor(queueName)
		q.log.Info("Subscribed to task queue",
			zap.String("queue", queueName),
			zap.String("task_type", string(taskType)))

		go q.consumeLoop(ctx, queueName, taskType, msgs, handler)
	}

	return nil
}

func (q *Queue) consumeLoop(ctx context.Context, queueName string, taskType domain.TaskType, msgs <-chan amqp.Delivery, handler port.TaskHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-msgs:
			if !ok {
				q.log.Warn("Task queue channel closed", zap.String("queue", queueName))
				return
			}

			var msg domain.TaskMessage
			if err := json.Unmarshal(d.Body, &msg); err != nil {
				q.log.Error("Failed to unmarshal task message, dropping",
					zap.String("queue", queueName), zap.Error(err))
				continue
			}

			q.log.Info("Received task message",
				zap.String("queue", queueName),
				zap.String("plane_id", msg.PlaneID))

			if err := handler(taskType, msg); err != nil {
				q.log.Error("Task handling failed, dropping message",
					zap.String("queue", queueName),
					zap.String("plane_id", msg.PlaneID),
					zap.Error(err))
				continue
			}

			q.log.Debug("Task message processed",
				zap.String("queue", queueName),
				zap.String("plane_id", msg.PlaneID))
		}
	}
}
