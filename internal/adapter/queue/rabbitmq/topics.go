package rabbitmq

import "github.com/flightops/groundboard/internal/core/domain"

// Topics binds each loading task type to its durable queue name
type Topics struct {
	Fuel       string
	Catering   string
	Baggage    string
	Passengers string
}

// DefaultTopics are the queue names used when configuration leaves them unset
func DefaultTopics() Topics {
	return Topics{
		Fuel:       "tasks.fuel",
		Catering:   "tasks.catering",
		Baggage:    "tasks.baggage",
		Passengers: "tasks.passengers",
	}
}

// ForType returns the queue name bound to a task type, or "" for unknown types
func (t Topics) ForType(taskType domain.TaskType) string {
	switch taskType {
	case domain.TaskFuel:
		return t.Fuel
	case domain.TaskFood:
		return t.Catering
	case domain.TaskBaggage:
		return t.Baggage
	case domain.TaskPassengers:
		return t.Passengers
	default:
		return ""
	}
}

// TypeFor returns the task type bound to a queue name, or "" for unknown queues
func (t Topics) TypeFor(queue string) domain.TaskType {
	switch queue {
	case t.Fuel:
		return domain.TaskFuel
	case t.Catering:
		return domain.TaskFood
	case t.Baggage:
		return domain.TaskBaggage
	case t.Passengers:
		return domain.TaskPassengers
	default:
		return ""
	}
}

// All lists every bound queue name
func (t Topics) All() []string {
	return []string{t.Fuel, t.Catering, t.Baggage, t.Passengers}
}
