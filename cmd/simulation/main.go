package main

import (
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/flightops/groundboard/internal/core/domain"
	"github.com/go-chi/chi/v5"
)

// The simulation binary stands in for the external flight information panel:
// it serves a rolling randomized schedule on GET /v1/flights so a local board
// has something to discover.

const (
	refreshInterval = 30 * time.Second
	departBias      = 0.6 // share of generated flights that are departures
)

var planeIDs = []string{"PL-1", "PL777", "PL002", "PL9", "PL440"}

type schedule struct {
	mu      sync.RWMutex
	flights []domain.Flight
}

func main() {
	addr := os.Getenv("FLIGHT_PANEL_ADDR")
	if addr == "" {
		addr = ":8006"
	}

	sched := &schedule{}
	sched.regenerate()

	go func() {
		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()
		for range ticker.C {
			sched.regenerate()
			fmt.Println("[panel] Regenerated flight schedule")
		}
	}()

	r := chi.NewRouter()
	r.Get("/v1/flights", func(w http.ResponseWriter, req *http.Request) {
		sched.mu.RLock()
		defer sched.mu.RUnlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sched.flights)
	})

	fmt.Printf("🛫 Flight information panel simulator listening on %s\n", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}

func (s *schedule) regenerate() {
	now := time.Now().Unix()
	count := 4 + rand.Intn(6)

	flights := make([]domain.Flight, 0, count)
	for i := 0; i < count; i++ {
		planeID := planeIDs[rand.Intn(len(planeIDs))]
		scheduled := now + int64(300+rand.Intn(7200))

		if rand.Float64() < departBias {
			flights = append(flights, domain.Flight{
				FlightID:         fmt.Sprintf("FL%04d", rand.Intn(10000)),
				PlaneID:          planeID,
				Type:             domain.FlightTypeDepart,
				Status:           "Scheduled",
				ScheduledTime:    scheduled,
				PlaneParking:     fmt.Sprintf("P-%d", 1+rand.Intn(12)),
				MinFuelForFlight: 3000,
				MaxFuel:          5000,
				MaxCapacity:      300,
				RequiredFuel:     3500 + rand.Intn(1500),
				Details:          fmt.Sprintf("Gate %c%d", 'A'+rune(rand.Intn(4)), 1+rand.Intn(20)),
			})
			continue
		}

		status := "EnRoute"
		if rand.Float64() < 0.5 {
			status = domain.FlightStatusSoonArrived
		}
		flights = append(flights, domain.Flight{
			FlightID:      fmt.Sprintf("FL%04d", rand.Intn(10000)),
			PlaneID:       planeID,
			Type:          domain.FlightTypeArrive,
			Status:        status,
			ScheduledTime: scheduled,
			PlaneParking:  fmt.Sprintf("P-%d", 1+rand.Intn(12)),
			MaxCapacity:   300,
		})
	}

	s.mu.Lock()
	s.flights = flights
	s.mu.Unlock()
}
