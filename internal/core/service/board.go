// Package service provides the board orchestrator: the plane registry, the
// periodic discovery loop and the task application handlers.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/flightops/groundboard/internal/core/domain"
	"github.com/flightops/groundboard/internal/core/port"
	"go.uber.org/zap"
)

// Board owns the registry of active planes. It is mutated from three
// concurrent sources (the discovery ticker, the HTTP handlers and the queue
// consumer), so the registry is guarded by a RWMutex and every plane guards
// its own fields.
type Board struct {
	mu     sync.RWMutex
	planes map[string]*domain.Plane

	maxPlanes  int
	candidates []string

	flights    port.FlightSource
	dispatcher port.TaskDispatcher
	journal    port.TaskJournal
	log        *zap.Logger
}

// NewBoard creates the orchestrator. The journal may be nil, in which case
// dispatch outcomes are only logged. Candidates are tried in their configured
// order, which keeps discovery deterministic.
func NewBoard(
	maxPlanes int,
	candidates []string,
	flights port.FlightSource,
	dispatcher port.TaskDispatcher,
	journal port.TaskJournal,
	log *zap.Logger,
) *Board {
	return &Board{
		planes:     make(map[string]*domain.Plane),
		maxPlanes:  maxPlanes,
		candidates: append([]string{}, candidates...),
		flights:    flights,
		dispatcher: dispatcher,
		journal:    journal,
		log:        log,
	}
}

// Run drives the discovery loop until ctx is canceled. The tick body runs
// synchronously inside the select, so ticks never overlap; a tick that comes
// due while the previous one is still running is dropped, not queued.
func (b *Board) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.Info("Stopping discovery loop")
			return
		case <-ticker.C:
			b.DiscoverOnce(ctx)
		}
	}
}

// DiscoverOnce runs a single discovery tick: walk the unclaimed candidate
// pool in order and create at most one plane. A candidate with an upcoming
// depart flight wins over one with only an arrive flight, since outbound
// turnaround needs fuel dispatched.
func (b *Board) DiscoverOnce(ctx context.Context) {
	if b.Size() >= b.maxPlanes {
		b.log.Warn("Maximum plane capacity reached, skipping discovery tick",
			zap.Int("max_planes", b.maxPlanes))
		return
	}

	for _, planeID := range b.candidates {
		if b.has(planeID) {
			continue
		}

		b.log.Info("Trying to create plane", zap.String("plane_id", planeID))

		depart, err := b.flights.NearestDepart(ctx, planeID)
		if err != nil {
			b.log.Warn("Depart lookup failed, trying next candidate",
				zap.String("plane_id", planeID), zap.Error(err))
			continue
		}

		if depart != nil {
			plane, created, err := b.register(planeID, *depart)
			if err != nil || !created {
				b.log.Warn("Flight is busy, skipping candidate",
					zap.String("plane_id", planeID),
					zap.String("flight_id", depart.FlightID),
					zap.Error(err))
				continue
			}

			b.dispatchFuel(ctx, plane, *depart)
			b.log.Info("Successfully created plane for depart flight",
				zap.String("plane_id", planeID),
				zap.String("flight_id", depart.FlightID))
			return
		}

		arrive, err := b.flights.NearestArrive(ctx, planeID)
		if err != nil || arrive == nil {
			b.log.Warn("No flight for candidate, trying next",
				zap.String("plane_id", planeID))
			continue
		}

		_, created, err := b.register(planeID, *arrive)
		if err != nil || !created {
			b.log.Warn("Flight is busy, skipping candidate",
				zap.String("plane_id", planeID),
				zap.String("flight_id", arrive.FlightID),
				zap.Error(err))
			continue
		}

		b.log.Info("Successfully created plane for arrive flight",
			zap.String("plane_id", planeID),
			zap.String("flight_id", arrive.FlightID))
		return
	}

	b.log.Info("No available candidates with valid flights this tick")
}

// register claims a flight for a plane. The claim check and the insert run
// under one write-lock critical section, so two concurrent ticks can never
// create two planes for the same flight. Returns the existing plane with
// created=false when the plane id is already on the board.
func (b *Board) register(planeID string, flight domain.Flight) (*domain.Plane, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if existing, ok := b.planes[planeID]; ok {
		return existing, false, nil
	}
	if len(b.planes) >= b.maxPlanes {
		return nil, false, domain.ErrBoardFull
	}
	for _, p := range b.planes {
		if p.Flight.FlightID == flight.FlightID {
			return nil, false, fmt.Errorf("%w: flight %s held by plane %s",
				domain.ErrClaimConflict, flight.FlightID, p.PlaneID)
		}
	}

	plane := domain.NewPlane(planeID, flight)
	b.planes[planeID] = plane
	b.log.Info("Plane registered",
		zap.String("plane_id", planeID),
		zap.String("flight_id", flight.FlightID),
		zap.String("parking", plane.PlaneParking))
	return plane, true, nil
}

// dispatchFuel sends the refuel instruction for a freshly claimed depart
// flight. Failures are journaled and logged but never undo the registration:
// the plane exists even if the supervisor missed the request.
func (b *Board) dispatchFuel(ctx context.Context, plane *domain.Plane, flight domain.Flight) {
	err := b.dispatcher.DispatchFuel(ctx, plane.PlaneID, flight.PlaneParking, flight.RequiredFuel)

	status := domain.TaskStatusDispatched
	if err != nil {
		status = domain.TaskStatusFailed
		b.log.Error("Failed to dispatch refuel task",
			zap.String("plane_id", plane.PlaneID), zap.Error(err))
	} else {
		b.log.Debug("Refuel task dispatched",
			zap.String("plane_id", plane.PlaneID),
			zap.Int("fuel_amount", flight.RequiredFuel))
	}

	b.recordTask(ctx, plane.PlaneID, flight.FlightID, domain.TaskFuel,
		domain.TaskPayload{Amount: flight.RequiredFuel}, status)
}

// Initialize creates a plane for the nearest depart flight of planeID on
// behalf of an API caller. Calling it again for an already registered plane
// returns the flight data without recreating anything.
func (b *Board) Initialize(ctx context.Context, planeID string) (*domain.Flight, error) {
	flight, err := b.flights.NearestDepart(ctx, planeID)
	if err != nil {
		return nil, err
	}
	if flight == nil {
		return nil, domain.ErrFlightNotFound
	}

	_, created, err := b.register(planeID, *flight)
	if err != nil {
		return nil, err
	}
	if created {
		b.log.Info("Plane initialized via API", zap.String("plane_id", planeID))
	}
	return flight, nil
}

// GetPlane returns the plane or ErrPlaneNotFound
func (b *Board) GetPlane(planeID string) (*domain.Plane, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	plane, ok := b.planes[planeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrPlaneNotFound, planeID)
	}
	return plane, nil
}

// PlaneView returns the public snapshot for API reads
func (b *Board) PlaneView(planeID string) (domain.PlaneView, error) {
	plane, err := b.GetPlane(planeID)
	if err != nil {
		return domain.PlaneView{}, err
	}
	return plane.View(), nil
}

// LoadFuel applies a manual fuel load and returns the resulting tank level
func (b *Board) LoadFuel(ctx context.Context, planeID string, amount int) (int, error) {
	plane, err := b.GetPlane(planeID)
	if err != nil {
		return 0, err
	}

	current, err := plane.LoadFuel(amount)
	if err != nil {
		return current, err
	}

	b.log.Info("Fuel loaded", zap.String("plane_id", planeID), zap.Int("current_fuel", current))
	b.recordTask(ctx, planeID, plane.Flight.FlightID, domain.TaskFuel,
		domain.TaskPayload{Amount: amount}, domain.TaskStatusApplied)
	return current, nil
}

// LoadFood applies a catering order
func (b *Board) LoadFood(ctx context.Context, planeID string, food map[string]int) error {
	plane, err := b.GetPlane(planeID)
	if err != nil {
		return err
	}
	if err := plane.LoadFood(food); err != nil {
		return err
	}
	b.log.Info("Food loaded", zap.String("plane_id", planeID), zap.Int("items", len(food)))
	b.recordTask(ctx, planeID, plane.Flight.FlightID, domain.TaskFood,
		domain.TaskPayload{Food: food}, domain.TaskStatusApplied)
	return nil
}

// LoadBaggage applies a baggage manifest
func (b *Board) LoadBaggage(ctx context.Context, planeID string, baggage []string) error {
	plane, err := b.GetPlane(planeID)
	if err != nil {
		return err
	}
	if err := plane.LoadBaggage(baggage); err != nil {
		return err
	}
	b.log.Info("Baggage loaded", zap.String("plane_id", planeID), zap.Int("items", len(baggage)))
	b.recordTask(ctx, planeID, plane.Flight.FlightID, domain.TaskBaggage,
		domain.TaskPayload{Baggage: baggage}, domain.TaskStatusApplied)
	return nil
}

// LoadPassengers boards a passenger list, bounded by the plane's capacity
func (b *Board) LoadPassengers(ctx context.Context, planeID string, passengers []string) error {
	plane, err := b.GetPlane(planeID)
	if err != nil {
		return err
	}
	if err := plane.LoadPassengers(passengers); err != nil {
		return err
	}
	b.log.Info("Passengers boarded", zap.String("plane_id", planeID), zap.Int("count", len(passengers)))
	b.recordTask(ctx, planeID, plane.Flight.FlightID, domain.TaskPassengers,
		domain.TaskPayload{Passengers: passengers}, domain.TaskStatusApplied)
	return nil
}

// Takeoff releases a fully fueled plane from the board lifecycle
func (b *Board) Takeoff(planeID string) error {
	plane, err := b.GetPlane(planeID)
	if err != nil {
		return err
	}
	if err := plane.Takeoff(); err != nil {
		return err
	}
	b.log.Info("Plane departed", zap.String("plane_id", planeID))
	return nil
}

// HandleTask applies one queued task message to the matching plane. It is the
// consumer-side handler: errors bubble up so the consumer can log and drop
// the message without touching later deliveries.
func (b *Board) HandleTask(taskType domain.TaskType, msg domain.TaskMessage) error {
	if msg.PlaneID == "" {
		return fmt.Errorf("task message missing planeId")
	}

	ctx := context.Background()
	switch taskType {
	case domain.TaskFuel:
		_, err := b.LoadFuel(ctx, msg.PlaneID, msg.Payload.Amount)
		return err
	case domain.TaskFood:
		return b.LoadFood(ctx, msg.PlaneID, msg.Payload.Food)
	case domain.TaskBaggage:
		return b.LoadBaggage(ctx, msg.PlaneID, msg.Payload.Baggage)
	case domain.TaskPassengers:
		return b.LoadPassengers(ctx, msg.PlaneID, msg.Payload.Passengers)
	default:
		return fmt.Errorf("unknown task type %q", taskType)
	}
}

// Size returns the number of planes on the board
func (b *Board) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.planes)
}

func (b *Board) has(planeID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.planes[planeID]
	return ok
}

func (b *Board) recordTask(ctx context.Context, planeID, flightID string, taskType domain.TaskType, payload domain.TaskPayload, status domain.TaskStatus) {
	if b.journal == nil {
		return
	}

	task := &domain.HandlingTask{
		ID:        fmt.Sprintf("%s-%s-%d", taskType, planeID, time.Now().UnixNano()),
		PlaneID:   planeID,
		FlightID:  flightID,
		Type:      taskType,
		Payload:   payload,
		Status:    status,
		CreatedAt: time.Now(),
	}
	if err := b.journal.Record(ctx, task); err != nil {
		b.log.Warn("Failed to journal handling task",
			zap.String("task_id", task.ID), zap.Error(err))
	}
}
