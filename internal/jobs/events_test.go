package jobs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mave-full/konspektbot/internal/domain"
)

func TestPublishAssignsSequenceAndTimestamp(t *testing.T) {
	bus := NewEventBus(10)

	first := bus.Publish(Event{Type: EventTypeState, JobID: "a"})
	second := bus.Publish(Event{Type: EventTypeState, JobID: "b"})

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
	assert.False(t, first.Timestamp.IsZero())
}

func TestSinceReturnsOnlyNewer(t *testing.T) {
	bus := NewEventBus(10)
	for i := 0; i < 5; i++ {
		bus.Publish(Event{Type: EventTypeState, JobID: fmt.Sprintf("job-%d", i)})
	}

	events := bus.Since(3)

	require.Len(t, events, 2)
	assert.Equal(t, int64(4), events[0].Seq)
	assert.Equal(t, int64(5), events[1].Seq)
}

func TestBufferIsBounded(t *testing.T) {
	bus := NewEventBus(3)
	for i := 0; i < 10; i++ {
		bus.Publish(Event{Type: EventTypeState})
	}

	events := bus.Since(0)

	require.Len(t, events, 3)
	assert.Equal(t, int64(8), events[0].Seq)
	assert.Equal(t, int64(10), events[2].Seq)
}

func TestPublishStateCopiesJobFields(t *testing.T) {
	bus := NewEventBus(10)
	tracker := NewMediaJob(42, domain.MediaVideo)
	require.NoError(t, tracker.Transition(domain.JobStateDownloading))

	event := bus.PublishState(tracker.Job())

	assert.Equal(t, EventTypeState, event.Type)
	assert.Equal(t, tracker.Job().ID, event.JobID)
	assert.Equal(t, int64(42), event.UserID)
	assert.Equal(t, domain.JobStateDownloading, event.State)
	assert.Equal(t, domain.MediaVideo, event.Kind)
}

func TestPublishErrorCarriesMessage(t *testing.T) {
	bus := NewEventBus(10)
	tracker := NewMediaJob(1, domain.MediaVoice)
	require.NoError(t, tracker.Fail())

	event := bus.PublishError(tracker.Job(), "download timed out")

	assert.Equal(t, EventTypeError, event.Type)
	assert.Equal(t, "download timed out", event.Message)
	assert.Equal(t, domain.JobStateFailed, event.State)
}
