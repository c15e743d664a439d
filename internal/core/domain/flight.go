package domain

// FlightType tells whether a flight record describes an outbound or an inbound leg
type FlightType string

const (
	FlightTypeDepart FlightType = "depart"
	FlightTypeArrive FlightType = "arrive"
)

// FlightStatusSoonArrived marks an inbound flight that is close enough to be
// worth tracking on the board.
const FlightStatusSoonArrived = "SoonArrived"

// Default limits applied when the flight record omits them
const (
	DefaultMinFuelForFlight = 3000
	DefaultMaxFuel          = 5000
	DefaultMaxCapacity      = 300
)

// Flight is an external record from the flight information panel. It is
// read-only to the board: once a plane claims a flight the copy it holds never
// changes.
type Flight struct {
	FlightID         string     `json:"flightId"`
	PlaneID          string     `json:"planeId"`
	Type             FlightType `json:"type"`
	Status           string     `json:"status"`
	ScheduledTime    int64      `json:"scheduledTime"`
	PlaneParking     string     `json:"planeParking"`
	MinFuelForFlight int        `json:"minFuelForFlight"`
	MaxFuel          int        `json:"maxFuel"`
	MaxCapacity      int        `json:"maxCapacity"`
	RequiredFuel     int        `json:"requiredFuel"`
	Details          string     `json:"details,omitempty"`
}

// MinFuelOrDefault returns the flight's minimum fuel, falling back to the default
func (f Flight) MinFuelOrDefault() int {
	if f.MinFuelForFlight > 0 {
		return f.MinFuelForFlight
	}
	return DefaultMinFuelForFlight
}

// MaxFuelOrDefault returns the flight's fuel ceiling, falling back to the default
func (f Flight) MaxFuelOrDefault() int {
	if f.MaxFuel > 0 {
		return f.MaxFuel
	}
	return DefaultMaxFuel
}

// MaxCapacityOrDefault returns the flight's passenger ceiling, falling back to the default
func (f Flight) MaxCapacityOrDefault() int {
	if f.MaxCapacity > 0 {
		return f.MaxCapacity
	}
	return DefaultMaxCapacity
}
