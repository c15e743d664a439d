// Package rabbitmq provides the queue-mode task dispatcher and the consumer
// that feeds queued task messages back into the board.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/flightops/groundboard/internal/core/domain"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Queue wraps one AMQP connection used for both publishing loading tasks and
// consuming their completions.
type Queue struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	topics Topics
	log    *zap.Logger
}

// NewQueue dials the broker and declares the task queues. The dial is retried
// with incremental backoff; a final failure is returned to the caller, which
// is the one place the service is allowed to abort startup.
func NewQueue(url string, topics Topics, log *zap.Logger) (*Queue, error) {
	var conn *amqp.Connection
	var err error

	maxRetries := 10
	for i := 1; i <= maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			ch, chErr := conn.Channel()
			if chErr == nil {
				q := &Queue{conn: conn, ch: ch, topics: topics, log: log}
				if err := q.declareQueues(); err != nil {
					conn.Close()
					return nil, err
				}
				return q, nil
			}
			err = chErr
			conn.Close()
		}

		log.Warn("Failed to connect to RabbitMQ, retrying...",
			zap.Int("attempt", i),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
		)

		// Simple incremental backoff
		time.Sleep(time.Duration(i*2) * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

func (q *Queue) declareQueues() error {
	for _, name := range q.topics.All() {
		if _, err := q.ch.QueueDeclare(
			name,  // name
			true,  // durable
			false, // delete when unused
			false, // exclusive
			false, // no-wait
			nil,   // arguments
		); err != nil {
			return fmt.Errorf("declaring queue %s: %w", name, err)
		}
	}
	return nil
}

// Publish serializes a task message and publishes it persistently to the
// queue bound to the task type. A failure affects only this task: callers
// publishing a batch carry on with the remaining types.
func (q *Queue) Publish(ctx context.Context, taskType domain.TaskType, msg domain.TaskMessage) error {
	queueName := q.topics.ForType(taskType)
	if queueName == "" {
		return fmt.Errorf("no queue bound to task type %q", taskType)
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	err = q.ch.PublishWithContext(ctx,
		"",        // default exchange
		queueName, // routing key
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		})
	if err != nil {
		q.log.Error("Failed to publish task",
			zap.String("task_type", string(taskType)),
			zap.String("queue", queueName),
			zap.Error(err))
		return err
	}

	q.log.Debug("Published task",
		zap.String("task_type", string(taskType)),
		zap.String("queue", queueName),
		zap.String("plane_id", msg.PlaneID))
	return nil
}

// DispatchFuel implements the queue-mode task dispatcher: the refuel
// instruction becomes a fuel task message. The parking slot is not part of
// the fuel payload on the wire, the supervisor resolves it from the plane id.
func (q *Queue) DispatchFuel(ctx context.Context, planeID, planeParking string, fuelAmount int) error {
	return q.Publish(ctx, domain.TaskFuel, domain.TaskMessage{
		PlaneID: planeID,
		Payload: domain.TaskPayload{Amount: fuelAmount},
	})
}

// Close shuts the channel and connection down
func (q *Queue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}
