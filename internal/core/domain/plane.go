package domain

import "sync"

// PlaneStatus is the turnaround lifecycle state
type PlaneStatus string

const (
	StatusCreated  PlaneStatus = "created"
	StatusFueling  PlaneStatus = "fueling"
	StatusLoaded   PlaneStatus = "loaded"
	StatusDeparted PlaneStatus = "departed"
)

// Plane tracks one aircraft's ground turnaround for the single flight it
// claimed. Mutable fields are reached from the discovery loop, the HTTP
// handlers and the queue consumer, so every mutation and snapshot goes
// through the plane's own mutex.
type Plane struct {
	mu sync.Mutex

	PlaneID         string
	Flight          Flight
	PlaneParking    string
	CurrentFuel     int
	MinRequiredFuel int
	MaxFuel         int
	MaxCapacity     int

	food       map[string]int
	baggage    []string
	passengers []string
	status     PlaneStatus

	fuelDone    bool
	foodDone    bool
	baggageDone bool
}

// PlaneView is the public snapshot returned to API callers. NumPassengers is
// recomputed on every read, never stored.
type PlaneView struct {
	PlaneID         string         `json:"plane_id"`
	Flight          Flight         `json:"flight"`
	PlaneParking    string         `json:"planeParking"`
	Baggage         []string       `json:"baggage"`
	CurrentFuel     int            `json:"currentFuel"`
	MinRequiredFuel int            `json:"minRequiredFuel"`
	MaxFuel         int            `json:"maxFuel"`
	MaxCapacity     int            `json:"maxCapacity"`
	Food            map[string]int `json:"food"`
	Passengers      []string       `json:"passengers"`
	NumPassengers   int            `json:"numPassengers"`
	Status          PlaneStatus    `json:"status"`
}

// NewPlane creates a plane for a claimed flight. Fuel limits and capacity are
// copied from the flight record, with defaults where the record omits them.
func NewPlane(planeID string, flight Flight) *Plane {
	return &Plane{
		PlaneID:         planeID,
		Flight:          flight,
		PlaneParking:    flight.PlaneParking,
		CurrentFuel:     0,
		MinRequiredFuel: flight.MinFuelOrDefault(),
		MaxFuel:         flight.MaxFuelOrDefault(),
		MaxCapacity:     flight.MaxCapacityOrDefault(),
		food:            map[string]int{},
		baggage:         []string{},
		passengers:      []string{},
		status:          StatusCreated,
	}
}

// LoadFuel sets the tank to amount. The amount must be enough for the flight
// and must not exceed the tank ceiling.
func (p *Plane) LoadFuel(amount int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if amount < p.MinRequiredFuel || amount > p.MaxFuel {
		return p.CurrentFuel, &FuelOutOfRangeError{Amount: amount, Min: p.MinRequiredFuel, Max: p.MaxFuel}
	}

	p.CurrentFuel = amount
	p.fuelDone = true
	p.advanceLocked()
	return p.CurrentFuel, nil
}

// LoadFood replaces the catering order on board
func (p *Plane) LoadFood(food map[string]int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if food == nil {
		food = map[string]int{}
	}
	p.food = food
	p.foodDone = true
	p.advanceLocked()
	return nil
}

// LoadBaggage replaces the baggage manifest
func (p *Plane) LoadBaggage(items []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if items == nil {
		items = []string{}
	}
	p.baggage = items
	p.baggageDone = true
	p.advanceLocked()
	return nil
}

// LoadPassengers boards the passenger list, bounded by the seat capacity
func (p *Plane) LoadPassengers(ids []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(ids) > p.MaxCapacity {
		return &CapacityExceededError{Count: len(ids), Max: p.MaxCapacity}
	}
	if ids == nil {
		ids = []string{}
	}
	p.passengers = ids
	return nil
}

// Takeoff moves the plane to departed. It refuses while the tank holds less
// than the flight's minimum.
func (p *Plane) Takeoff() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.CurrentFuel < p.MinRequiredFuel {
		return ErrNotEnoughFuel
	}
	p.status = StatusDeparted
	return nil
}

// Status returns the current lifecycle state
func (p *Plane) Status() PlaneStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// View takes a consistent snapshot of the plane for API reads
func (p *Plane) View() PlaneView {
	p.mu.Lock()
	defer p.mu.Unlock()

	food := make(map[string]int, len(p.food))
	for k, v := range p.food {
		food[k] = v
	}
	baggage := append([]string{}, p.baggage...)
	passengers := append([]string{}, p.passengers...)

	return PlaneView{
		PlaneID:         p.PlaneID,
		Flight:          p.Flight,
		PlaneParking:    p.PlaneParking,
		Baggage:         baggage,
		CurrentFuel:     p.CurrentFuel,
		MinRequiredFuel: p.MinRequiredFuel,
		MaxFuel:         p.MaxFuel,
		MaxCapacity:     p.MaxCapacity,
		Food:            food,
		Passengers:      passengers,
		NumPassengers:   len(passengers),
		Status:          p.status,
	}
}

// advanceLocked drives the lifecycle: the first load starts fueling, and once
// fuel, food and baggage are all on board the plane reports loaded. Departed
// is terminal and only reached through Takeoff.
func (p *Plane) advanceLocked() {
	if p.status == StatusDeparted {
		return
	}
	if p.fuelDone && p.foodDone && p.baggageDone {
		p.status = StatusLoaded
		return
	}
	if p.status == StatusCreated {
		p.status = StatusFueling
	}
}
