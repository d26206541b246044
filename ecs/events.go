package ecs

// EventKind identifies gameplay events raised during a tick.
type EventKind string

const (
	EventLevelComplete    EventKind = "level_complete"
	EventLevelFailed      EventKind = "level_failed"
	EventPlatformBroken   EventKind = "platform_broken"
	EventPassThroughOpen  EventKind = "pass_through_open"
	EventPassThroughClose EventKind = "pass_through_close"
	EventBounce           EventKind = "bounce"
	EventJump             EventKind = "jump"
	EventFreeze           EventKind = "freeze"
	EventContactAnomaly   EventKind = "contact_anomaly"
)

// Event is a gameplay event payload. Data carries kind-specific detail
// such as a failure reason or a bounce velocity.
type Event struct {
	Kind   EventKind
	Entity Entity
	Data   any
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Len reports the number of queued events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) flush() {
	if q == nil {
		return
	}
	q.items = nil
}
