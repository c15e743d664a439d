package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/flightops/groundboard/internal/core/domain"
	"github.com/flightops/groundboard/internal/core/port"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockFlightSource serves a fixed flight list with the same local filtering
// contract as the real client: transport errors surface as "none" results.
type mockFlightSource struct {
	mu      sync.Mutex
	flights []domain.Flight
	listErr error
}

func (m *mockFlightSource) setFlights(flights []domain.Flight) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flights = flights
}

func (m *mockFlightSource) ListFlights(ctx context.Context) ([]domain.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]domain.Flight{}, m.flights...), nil
}

func (m *mockFlightSource) NearestDepart(ctx context.Context, planeID string) (*domain.Flight, error) {
	return m.nearest(func(f domain.Flight) bool {
		return f.Type == domain.FlightTypeDepart && f.PlaneID == planeID
	})
}

func (m *mockFlightSource) NearestArrive(ctx context.Context, planeID string) (*domain.Flight, error) {
	return m.nearest(func(f domain.Flight) bool {
		return f.Type == domain.FlightTypeArrive &&
			f.Status == domain.FlightStatusSoonArrived &&
			f.PlaneID == planeID
	})
}

func (m *mockFlightSource) nearest(match func(domain.Flight) bool) (*domain.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, nil
	}
	var best *domain.Flight
	for i := range m.flights {
		f := m.flights[i]
		if !match(f) {
			continue
		}
		if best == nil || f.ScheduledTime < best.ScheduledTime {
			best = &f
		}
	}
	return best, nil
}

type dispatchCall struct {
	planeID string
	parking string
	amount  int
}

type mockDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
	err   error
}

func (m *mockDispatcher) DispatchFuel(ctx context.Context, planeID, planeParking string, fuelAmount int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, dispatchCall{planeID, planeParking, fuelAmount})
	return m.err
}

type mockJournal struct {
	mu    sync.Mutex
	tasks []*domain.HandlingTask
}

func (m *mockJournal) Record(ctx context.Context, task *domain.HandlingTask) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *mockJournal) ListRecent(ctx context.Context, limit int) ([]*domain.HandlingTask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.HandlingTask{}, m.tasks...), nil
}

func departFlight(flightID, planeID string, scheduled int64) domain.Flight {
	return domain.Flight{
		FlightID:         flightID,
		PlaneID:          planeID,
		Type:             domain.FlightTypeDepart,
		ScheduledTime:    scheduled,
		PlaneParking:     "P-1",
		MinFuelForFlight: 3000,
		MaxFuel:          5000,
		MaxCapacity:      300,
		RequiredFuel:     4000,
	}
}

func arriveFlight(flightID, planeID string, scheduled int64) domain.Flight {
	return domain.Flight{
		FlightID:      flightID,
		PlaneID:       planeID,
		Type:          domain.FlightTypeArrive,
		Status:        domain.FlightStatusSoonArrived,
		ScheduledTime: scheduled,
		PlaneParking:  "P-2",
		MaxCapacity:   300,
	}
}

func newTestBoard(maxPlanes int, candidates []string, flights *mockFlightSource, dispatcher *mockDispatcher, journal *mockJournal) *Board {
	// Avoid wrapping a typed nil in the interface: NewBoard's nil-journal
	// contract checks the interface itself.
	var j port.TaskJournal
	if journal != nil {
		j = journal
	}
	return NewBoard(maxPlanes, candidates, flights, dispatcher, j, zap.NewNop())
}

func TestDiscoverCreatesPlaneForNearestDepart(t *testing.T) {
	flights := &mockFlightSource{flights: []domain.Flight{
		departFlight("FL200", "A1", 200),
		departFlight("FL100", "A1", 100),
	}}
	dispatcher := &mockDispatcher{}
	board := newTestBoard(10, []string{"A1"}, flights, dispatcher, nil)

	board.DiscoverOnce(context.Background())

	require.Equal(t, 1, board.Size())
	plane, err := board.GetPlane("A1")
	require.NoError(t, err)
	assert.Equal(t, "FL100", plane.Flight.FlightID)

	require.Len(t, dispatcher.calls, 1)
	assert.Equal(t, dispatchCall{planeID: "A1", parking: "P-1", amount: 4000}, dispatcher.calls[0])
}

func TestDiscoverPrefersDepartOverArrive(t *testing.T) {
	flights := &mockFlightSource{flights: []domain.Flight{
		arriveFlight("FL-ARR", "A1", 50),
		departFlight("FL-DEP", "A1", 500),
	}}
	dispatcher := &mockDispatcher{}
	board := newTestBoard(10, []string{"A1"}, flights, dispatcher, nil)

	board.DiscoverOnce(context.Background())

	plane, err := board.GetPlane("A1")
	require.NoError(t, err)
	assert.Equal(t, "FL-DEP", plane.Flight.FlightID)
	assert.Len(t, dispatcher.calls, 1)
}

func TestDiscoverArriveFallbackNoDispatch(t *testing.T) {
	flights := &mockFlightSource{flights: []domain.Flight{
		arriveFlight("FL-ARR", "A1", 50),
	}}
	dispatcher := &mockDispatcher{}
	board := newTestBoard(10, []string{"A1"}, flights, dispatcher, nil)

	board.DiscoverOnce(context.Background())

	plane, err := board.GetPlane("A1")
	require.NoError(t, err)
	assert.Equal(t, "FL-ARR", plane.Flight.FlightID)
	assert.Empty(t, dispatcher.calls, "arrive flights don't need a fuel dispatch")
}

func TestDiscoverAtMostOnePlanePerTick(t *testing.T) {
	flights := &mockFlightSource{flights: []domain.Flight{
		departFlight("FL1", "A1", 100),
		departFlight("FL2", "A2", 100),
	}}
	board := newTestBoard(10, []string{"A1", "A2"}, flights, &mockDispatcher{}, nil)

	board.DiscoverOnce(context.Background())
	assert.Equal(t, 1, board.Size())

	// Candidates are tried in configured order, so A1 wins the first tick
	_, err := board.GetPlane("A1")
	assert.NoError(t, err)

	board.DiscoverOnce(context.Background())
	assert.Equal(t, 2, board.Size())
}

func TestDiscoverRespectsCapacityCeiling(t *testing.T) {
	flights := &mockFlightSource{flights: []domain.Flight{
		departFlight("FL1", "A1", 100),
		departFlight("FL2", "A2", 100),
	}}
	board := newTestBoard(1, []string{"A1", "A2"}, flights, &mockDispatcher{}, nil)

	board.DiscoverOnce(context.Background())
	require.Equal(t, 1, board.Size())

	// Board is full: the next tick is a no-op
	board.DiscoverOnce(context.Background())
	assert.Equal(t, 1, board.Size())
}

func TestDiscoverSkipsClaimedFlight(t *testing.T) {
	// FL1 appears as the nearest depart for both candidates
	flights := &mockFlightSource{flights: []domain.Flight{
		departFlight("FL1", "A1", 100),
		departFlight("FL1", "A2", 100),
	}}
	board := newTestBoard(10, []string{"A1", "A2"}, flights, &mockDispatcher{}, nil)

	board.DiscoverOnce(context.Background())
	require.Equal(t, 1, board.Size())

	// A2's only flight is already claimed by A1
	board.DiscoverOnce(context.Background())
	assert.Equal(t, 1, board.Size())
	_, err := board.GetPlane("A2")
	assert.ErrorIs(t, err, domain.ErrPlaneNotFound)
}

func TestConcurrentDiscoverClaimsFlightOnce(t *testing.T) {
	flights := &mockFlightSource{flights: []domain.Flight{
		departFlight("FL1", "A1", 100),
		departFlight("FL1", "A2", 100),
	}}
	board := newTestBoard(10, []string{"A1", "A2"}, flights, &mockDispatcher{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			board.DiscoverOnce(context.Background())
		}()
	}
	wg.Wait()

	// Exactly one plane holds FL1 no matter how the ticks interleave
	assert.Equal(t, 1, board.Size())
}

func TestDiscoverSourceFailureIsIdle(t *testing.T) {
	flights := &mockFlightSource{listErr: errors.New("connection refused")}
	board := newTestBoard(10, []string{"A1"}, flights, &mockDispatcher{}, nil)

	board.DiscoverOnce(context.Background())
	assert.Equal(t, 0, board.Size())
}

func TestDispatchFailureDoesNotRollBackPlane(t *testing.T) {
	flights := &mockFlightSource{flights: []domain.Flight{
		departFlight("FL1", "A1", 100),
	}}
	dispatcher := &mockDispatcher{err: errors.New("supervisor down")}
	journal := &mockJournal{}
	board := newTestBoard(10, []string{"A1"}, flights, dispatcher, journal)

	board.DiscoverOnce(context.Background())

	// Plane exists even though the dispatch failed
	require.Equal(t, 1, board.Size())

	// And the failure is observable in the journal
	require.Len(t, journal.tasks, 1)
	assert.Equal(t, domain.TaskStatusFailed, journal.tasks[0].Status)
	assert.Equal(t, domain.TaskFuel, journal.tasks[0].Type)
}

func TestInitializeIdempotent(t *testing.T) {
	flights := &mockFlightSource{flights: []domain.Flight{
		departFlight("FL1", "A1", 100),
	}}
	board := newTestBoard(10, []string{"A1"}, flights, &mockDispatcher{}, nil)

	flight, err := board.Initialize(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "FL1", flight.FlightID)
	require.Equal(t, 1, board.Size())

	// Second call with the same id does not recreate the plane
	flight, err = board.Initialize(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "FL1", flight.FlightID)
	assert.Equal(t, 1, board.Size())
}

func TestInitializeNoFlight(t *testing.T) {
	board := newTestBoard(10, []string{"A1"}, &mockFlightSource{}, &mockDispatcher{}, nil)

	_, err := board.Initialize(context.Background(), "A1")
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
}

func TestGetPlaneNotFound(t *testing.T) {
	board := newTestBoard(10, nil, &mockFlightSource{}, &mockDispatcher{}, nil)

	_, err := board.GetPlane("ghost")
	assert.ErrorIs(t, err, domain.ErrPlaneNotFound)

	_, err = board.LoadFuel(context.Background(), "ghost", 4000)
	assert.ErrorIs(t, err, domain.ErrPlaneNotFound)
}

func TestHandleTaskRouting(t *testing.T) {
	flights := &mockFlightSource{flights: []domain.Flight{
		departFlight("FL1", "A1", 100),
	}}
	board := newTestBoard(10, []string{"A1"}, flights, &mockDispatcher{}, nil)
	board.DiscoverOnce(context.Background())

	require.NoError(t, board.HandleTask(domain.TaskFuel, domain.TaskMessage{
		PlaneID: "A1", Payload: domain.TaskPayload{Amount: 4000},
	}))
	require.NoError(t, board.HandleTask(domain.TaskFood, domain.TaskMessage{
		PlaneID: "A1", Payload: domain.TaskPayload{Food: map[string]int{"meal": 120}},
	}))
	require.NoError(t, board.HandleTask(domain.TaskBaggage, domain.TaskMessage{
		PlaneID: "A1", Payload: domain.TaskPayload{Baggage: []string{"b1"}},
	}))
	require.NoError(t, board.HandleTask(domain.TaskPassengers, domain.TaskMessage{
		PlaneID: "A1", Payload: domain.TaskPayload{Passengers: []string{"p1", "p2"}},
	}))

	view, err := board.PlaneView("A1")
	require.NoError(t, err)
	assert.Equal(t, 4000, view.CurrentFuel)
	assert.Equal(t, 120, view.Food["meal"])
	assert.Equal(t, []string{"b1"}, view.Baggage)
	assert.Equal(t, 2, view.NumPassengers)
	assert.Equal(t, domain.StatusLoaded, view.Status)
}

func TestHandleTaskErrors(t *testing.T) {
	flights := &mockFlightSource{flights: []domain.Flight{
		departFlight("FL1", "A1", 100),
	}}
	board := newTestBoard(10, []string{"A1"}, flights, &mockDispatcher{}, nil)
	board.DiscoverOnce(context.Background())

	err := board.HandleTask(domain.TaskFuel, domain.TaskMessage{})
	assert.Error(t, err, "missing planeId must be rejected")

	err = board.HandleTask(domain.TaskFuel, domain.TaskMessage{
		PlaneID: "ghost", Payload: domain.TaskPayload{Amount: 4000},
	})
	assert.ErrorIs(t, err, domain.ErrPlaneNotFound)

	err = board.HandleTask(domain.TaskType("cargo"), domain.TaskMessage{PlaneID: "A1"})
	assert.Error(t, err)

	// A bad payload fails this message but leaves the plane usable
	err = board.HandleTask(domain.TaskFuel, domain.TaskMessage{
		PlaneID: "A1", Payload: domain.TaskPayload{Amount: 99999},
	})
	var fuelErr *domain.FuelOutOfRangeError
	assert.ErrorAs(t, err, &fuelErr)

	require.NoError(t, board.HandleTask(domain.TaskFuel, domain.TaskMessage{
		PlaneID: "A1", Payload: domain.TaskPayload{Amount: 4000},
	}))
}
