package jobs

import (
	"sync"
	"time"

	"github.com/Mave-full/konspektbot/internal/domain"
)

// EventType classifies messages emitted during job execution.
type EventType string

const (
	EventTypeState  EventType = "state"
	EventTypeResult EventType = "result"
	EventTypeError  EventType = "error"
)

// Event is a sequenced record of job progress, exposed over the
// operational debug endpoint.
type Event struct {
	Seq       int64            `json:"seq"`
	Timestamp time.Time        `json:"timestamp"`
	JobID     string           `json:"jobId"`
	UserID    int64            `json:"userId"`
	Type      EventType        `json:"type"`
	State     domain.JobState  `json:"state,omitempty"`
	Kind      domain.MediaKind `json:"kind,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// EventBus stores recent events and provides incremental reads.
type EventBus struct {
	mu        sync.RWMutex
	nextSeq   int64
	maxEvents int
	events    []Event
}

// NewEventBus creates a bounded in-memory event buffer.
func NewEventBus(maxEvents int) *EventBus {
	if maxEvents <= 0 {
		maxEvents = 500
	}

	return &EventBus{
		maxEvents: maxEvents,
		events:    make([]Event, 0, maxEvents),
	}
}

// Publish appends one event and assigns sequence and timestamp.
func (b *EventBus) Publish(event Event) Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextSeq++
	event.Seq = b.nextSeq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	b.events = append(b.events, event)
	if len(b.events) > b.maxEvents {
		trim := len(b.events) - b.maxEvents
		b.events = append([]Event(nil), b.events[trim:]...)
	}

	return event
}

// PublishState records a state change for a job.
func (b *EventBus) PublishState(job domain.Job) Event {
	return b.Publish(Event{
		JobID:  job.ID,
		UserID: job.UserID,
		Type:   EventTypeState,
		State:  job.State,
		Kind:   job.Kind,
	})
}

// PublishError records a job failure with its rendered cause.
func (b *EventBus) PublishError(job domain.Job, message string) Event {
	return b.Publish(Event{
		JobID:   job.ID,
		UserID:  job.UserID,
		Type:    EventTypeError,
		State:   job.State,
		Kind:    job.Kind,
		Message: message,
	})
}

// Since returns events with sequence strictly greater than seq.
func (b *EventBus) Since(seq int64) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if len(b.events) == 0 {
		return nil
	}

	out := make([]Event, 0, len(b.events))
	for _, event := range b.events {
		if event.Seq > seq {
			out = append(out, event)
		}
	}
	return out
}
