// Package api exposes the board operations over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/flightops/groundboard/internal/core/domain"
	"github.com/flightops/groundboard/internal/core/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Server struct {
	board *service.Board
	log   *zap.Logger
}

// New constructs the HTTP router wired to the board orchestrator.
func New(board *service.Board, log *zap.Logger) http.Handler {
	s := &Server{board: board, log: log}
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/v1/board", func(r chi.Router) {
		r.Post("/initialize", s.handleInitialize)
		r.Post("/fuel", s.handleFuel)
		r.Post("/food", s.handleFood)
		r.Post("/baggage", s.handleBaggage)
		r.Post("/passengers", s.handlePassengers)
		r.Post("/takeoff", s.handleTakeoff)
		r.Get("/{planeID}", s.handlePlaneInfo)
	})

	return r
}

func (s *Server) handleInitialize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaneID string `json:"planeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaneID == "" {
		writeJSONError(w, http.StatusBadRequest, "bad request")
		return
	}

	flight, err := s.board.Initialize(r.Context(), req.PlaneID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"flightId":      flight.FlightID,
		"scheduledTime": flight.ScheduledTime,
		"details":       flight.Details,
	})
}

func (s *Server) handlePlaneInfo(w http.ResponseWriter, r *http.Request) {
	planeID := chi.URLParam(r, "planeID")

	view, err := s.board.PlaneView(planeID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleFuel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaneID string `json:"planeId"`
		Amount  int    `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaneID == "" {
		writeJSONError(w, http.StatusBadRequest, "bad request")
		return
	}

	current, err := s.board.LoadFuel(r.Context(), req.PlaneID, req.Amount)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"currentFuel": current})
}

func (s *Server) handleFood(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaneID string         `json:"planeId"`
		Food    map[string]int `json:"food"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaneID == "" {
		writeJSONError(w, http.StatusBadRequest, "bad request")
		return
	}

	if err := s.board.LoadFood(r.Context(), req.PlaneID, req.Food); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (s *Server) handleBaggage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaneID string   `json:"planeId"`
		Baggage []string `json:"baggage"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaneID == "" {
		writeJSONError(w, http.StatusBadRequest, "bad request")
		return
	}

	if err := s.board.LoadBaggage(r.Context(), req.PlaneID, req.Baggage); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (s *Server) handlePassengers(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaneID    string   `json:"planeId"`
		Passengers []string `json:"passengers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaneID == "" {
		writeJSONError(w, http.StatusBadRequest, "bad request")
		return
	}

	if err := s.board.LoadPassengers(r.Context(), req.PlaneID, req.Passengers); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "boarded"})
}

func (s *Server) handleTakeoff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlaneID string `json:"planeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PlaneID == "" {
		writeJSONError(w, http.StatusBadRequest, "bad request")
		return
	}

	if err := s.board.Takeoff(req.PlaneID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.StatusDeparted)})
}

// writeDomainError maps domain errors to client-visible statuses. Validation
// failures are the caller's problem, claim conflicts report the contention,
// anything else is a server fault.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var fuelErr *domain.FuelOutOfRangeError
	var capErr *domain.CapacityExceededError

	switch {
	case errors.Is(err, domain.ErrPlaneNotFound), errors.Is(err, domain.ErrFlightNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &fuelErr), errors.As(err, &capErr), errors.Is(err, domain.ErrNotEnoughFuel):
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrClaimConflict), errors.Is(err, domain.ErrBoardFull):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error("Request failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
