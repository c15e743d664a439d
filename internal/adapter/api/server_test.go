package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flightops/groundboard/internal/core/domain"
	"github.com/flightops/groundboard/internal/core/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubFlightSource serves one depart flight for one plane id
type stubFlightSource struct {
	flight *domain.Flight
}

func (s *stubFlightSource) ListFlights(ctx context.Context) ([]domain.Flight, error) {
	if s.flight == nil {
		return nil, nil
	}
	return []domain.Flight{*s.flight}, nil
}

func (s *stubFlightSource) NearestDepart(ctx context.Context, planeID string) (*domain.Flight, error) {
	if s.flight != nil && s.flight.PlaneID == planeID {
		return s.flight, nil
	}
	return nil, nil
}

func (s *stubFlightSource) NearestArrive(ctx context.Context, planeID string) (*domain.Flight, error) {
	return nil, nil
}

type stubDispatcher struct{}

func (stubDispatcher) DispatchFuel(ctx context.Context, planeID, planeParking string, fuelAmount int) error {
	return nil
}

func newTestServer(flight *domain.Flight) (http.Handler, *service.Board) {
	board := service.NewBoard(10, nil, &stubFlightSource{flight: flight}, stubDispatcher{}, nil, zap.NewNop())
	return New(board, zap.NewNop()), board
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func boardFlight() *domain.Flight {
	return &domain.Flight{
		FlightID:         "FL100",
		PlaneID:          "PL-1",
		Type:             domain.FlightTypeDepart,
		ScheduledTime:    100,
		PlaneParking:     "P-1",
		MinFuelForFlight: 3000,
		MaxFuel:          5000,
		MaxCapacity:      2,
		RequiredFuel:     4000,
		Details:          "Gate A1",
	}
}

func TestInitializeEndpoint(t *testing.T) {
	handler, board := newTestServer(boardFlight())

	rec := doJSON(t, handler, http.MethodPost, "/v1/board/initialize", map[string]string{"planeId": "PL-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		FlightID      string `json:"flightId"`
		ScheduledTime int64  `json:"scheduledTime"`
		Details       string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "FL100", resp.FlightID)
	assert.Equal(t, int64(100), resp.ScheduledTime)
	assert.Equal(t, "Gate A1", resp.Details)
	assert.Equal(t, 1, board.Size())

	// Idempotent: same call again, still one plane
	rec = doJSON(t, handler, http.MethodPost, "/v1/board/initialize", map[string]string{"planeId": "PL-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, board.Size())
}

func TestInitializeNoFlight(t *testing.T) {
	handler, _ := newTestServer(nil)

	rec := doJSON(t, handler, http.MethodPost, "/v1/board/initialize", map[string]string{"planeId": "PL-1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitializeBadRequest(t *testing.T) {
	handler, _ := newTestServer(boardFlight())

	rec := doJSON(t, handler, http.MethodPost, "/v1/board/initialize", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaneInfoEndpoint(t *testing.T) {
	handler, _ := newTestServer(boardFlight())
	doJSON(t, handler, http.MethodPost, "/v1/board/initialize", map[string]string{"planeId": "PL-1"})

	rec := doJSON(t, handler, http.MethodGet, "/v1/board/PL-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var view domain.PlaneView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, "PL-1", view.PlaneID)
	assert.Equal(t, "FL100", view.Flight.FlightID)
	assert.Equal(t, 0, view.CurrentFuel)
	assert.Equal(t, 0, view.NumPassengers)
	assert.Equal(t, domain.StatusCreated, view.Status)
}

func TestPlaneInfoNotFound(t *testing.T) {
	handler, _ := newTestServer(boardFlight())

	rec := doJSON(t, handler, http.MethodGet, "/v1/board/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFuelEndpoint(t *testing.T) {
	handler, _ := newTestServer(boardFlight())
	doJSON(t, handler, http.MethodPost, "/v1/board/initialize", map[string]string{"planeId": "PL-1"})

	// Out of range
	rec := doJSON(t, handler, http.MethodPost, "/v1/board/fuel",
		map[string]interface{}{"planeId": "PL-1", "amount": 2000})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	// In range
	rec = doJSON(t, handler, http.MethodPost, "/v1/board/fuel",
		map[string]interface{}{"planeId": "PL-1", "amount": 4000})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 4000, resp["currentFuel"])
}

func TestPassengersEndpointCapacity(t *testing.T) {
	handler, _ := newTestServer(boardFlight()) // MaxCapacity 2
	doJSON(t, handler, http.MethodPost, "/v1/board/initialize", map[string]string{"planeId": "PL-1"})

	rec := doJSON(t, handler, http.MethodPost, "/v1/board/passengers",
		map[string]interface{}{"planeId": "PL-1", "passengers": []string{"p1", "p2", "p3"}})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/v1/board/passengers",
		map[string]interface{}{"planeId": "PL-1", "passengers": []string{"p1", "p2"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/v1/board/PL-1", nil)
	var view domain.PlaneView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 2, view.NumPassengers)
}

func TestTakeoffEndpoint(t *testing.T) {
	handler, _ := newTestServer(boardFlight())
	doJSON(t, handler, http.MethodPost, "/v1/board/initialize", map[string]string{"planeId": "PL-1"})

	// Not enough fuel yet
	rec := doJSON(t, handler, http.MethodPost, "/v1/board/takeoff", map[string]string{"planeId": "PL-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	doJSON(t, handler, http.MethodPost, "/v1/board/fuel",
		map[string]interface{}{"planeId": "PL-1", "amount": 4000})

	rec = doJSON(t, handler, http.MethodPost, "/v1/board/takeoff", map[string]string{"planeId": "PL-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/v1/board/PL-1", nil)
	var view domain.PlaneView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, domain.StatusDeparted, view.Status)
}

func TestFoodAndBaggageEndpoints(t *testing.T) {
	handler, _ := newTestServer(boardFlight())
	doJSON(t, handler, http.MethodPost, "/v1/board/initialize", map[string]string{"planeId": "PL-1"})

	rec := doJSON(t, handler, http.MethodPost, "/v1/board/food",
		map[string]interface{}{"planeId": "PL-1", "food": map[string]int{"meal": 120}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/v1/board/baggage",
		map[string]interface{}{"planeId": "PL-1", "baggage": []string{"b1", "b2"}})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/v1/board/PL-1", nil)
	var view domain.PlaneView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 120, view.Food["meal"])
	assert.Equal(t, []string{"b1", "b2"}, view.Baggage)
}
