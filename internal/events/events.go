package events

import (
	"encoding/json"
	"sync"
	"time"
)

// TypeTimeslotValidated is published after every non-skipped timeslot check.
const TypeTimeslotValidated = "timeslot.validated"

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// TimeslotValidated is the payload of TypeTimeslotValidated.
type TimeslotValidated struct {
	RequestID  string `json:"request_id,omitempty"`
	DoctorID   string `json:"doctor_id"`
	Timeslot   string `json:"timeslot"`
	Normalized string `json:"normalized"`
	Outcome    string `json:"outcome"`
	Message    string `json:"message,omitempty"`
}

// NewTimeslotValidated encodes the payload into an event.
func NewTimeslotValidated(p TimeslotValidated) (Event, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return Event{}, err
	}
	return Event{Type: TypeTimeslotValidated, Payload: data, CreatedAt: time.Now()}, nil
}

// DecodeTimeslotValidated reads the payload back.
func DecodeTimeslotValidated(e Event) (TimeslotValidated, error) {
	var p TimeslotValidated
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

// EventHandler reacts to an event.
type EventHandler func(event Event) error

// ErrorHandler receives handler failures.
type ErrorHandler func(event Event, err error)

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	onError     ErrorHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// OnError sets the callback for failing handlers.
func (b *EventBus) OnError(h ErrorHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onError = h
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. A nil bus drops the event.
func (b *EventBus) Publish(event Event) {
	if b == nil {
		return
	}

	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	onError := b.onError
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		// Handlers run synchronously; caller decides concurrency model.
		if err := handler(event); err != nil && onError != nil {
			onError(event, err)
		}
	}
}
