// Package port provides behavior interfaces that connect the board service to its adapters.
package port

import (
	"context"

	"github.com/flightops/groundboard/internal/core/domain"
)

// FlightSource defines how flight records are read from the information
// panel. The nearest queries return (nil, nil) when nothing matches or the
// panel is unreachable: a transient source failure must never crash a
// discovery tick.
type FlightSource interface {
	ListFlights(ctx context.Context) ([]domain.Flight, error)
	NearestDepart(ctx context.Context, planeID string) (*domain.Flight, error)
	NearestArrive(ctx context.Context, planeID string) (*domain.Flight, error)
}

// TaskDispatcher defines how a loading instruction reaches the handling
// supervisor. Two implementations exist: a direct HTTP call and a queue
// publish, selected by configuration. Dispatch is best-effort at-most-once:
// an error reports the failure but the caller never rolls back plane
// creation.
type TaskDispatcher interface {
	DispatchFuel(ctx context.Context, planeID, planeParking string, fuelAmount int) error
}

// TaskHandler applies one task message routed by type
type TaskHandler func(taskType domain.TaskType, msg domain.TaskMessage) error

// TaskConsumer defines how queued task messages are delivered to the board.
// Handler errors are isolated per message.
type TaskConsumer interface {
	Consume(ctx context.Context, handler TaskHandler) error
}

// TaskJournal defines how handling task events are persisted for audit
type TaskJournal interface {
	Record(ctx context.Context, task *domain.HandlingTask) error
	ListRecent(ctx context.Context, limit int) ([]*domain.HandlingTask, error)
}
