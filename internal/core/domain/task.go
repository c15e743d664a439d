package domain

import "time"

// TaskType names a loading task routed to a plane
type TaskType string

const (
	TaskFuel       TaskType = "fuel"
	TaskFood       TaskType = "food"
	TaskBaggage    TaskType = "baggage"
	TaskPassengers TaskType = "passengers"
)

// TaskStatus records the dispatch/consumption outcome of a handling task
type TaskStatus string

const (
	TaskStatusDispatched TaskStatus = "DISPATCHED"
	TaskStatusFailed     TaskStatus = "FAILED"
	TaskStatusApplied    TaskStatus = "APPLIED"
)

// TaskMessage is the wire format exchanged with the handling supervisor over
// the queue: the target plane plus a payload whose shape depends on the task
// type.
type TaskMessage struct {
	PlaneID string      `json:"planeId"`
	Payload TaskPayload `json:"payload"`
}

// TaskPayload carries the task-type specific body. Exactly one field group is
// set per message.
type TaskPayload struct {
	Amount     int            `json:"amount,omitempty"`
	Food       map[string]int `json:"food,omitempty"`
	Baggage    []string       `json:"baggage,omitempty"`
	Passengers []string       `json:"passengers,omitempty"`
}

// HandlingTask is a journal entry describing one dispatch or consumption
// event. The journal is append-only audit data, it is never read back to
// rebuild board state.
type HandlingTask struct {
	ID        string
	PlaneID   string
	FlightID  string
	Type      TaskType
	Payload   TaskPayload
	Status    TaskStatus
	CreatedAt time.Time
}
