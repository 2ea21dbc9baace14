// Package jobs tracks per-message processing jobs through their state
// machine and keeps a bounded buffer of recent job events for
// inspection.
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Mave-full/konspektbot/internal/domain"
)

// Tracker guards the state of one job. Each incoming media message
// gets its own tracker; a summarize action gets a tracker starting at
// the published state.
type Tracker struct {
	mu  sync.RWMutex
	job domain.Job
}

// NewMediaJob creates a tracker for a fetched media message.
func NewMediaJob(userID int64, kind domain.MediaKind) *Tracker {
	return newTracker(userID, kind, domain.JobStateReceived)
}

// NewSummaryJob creates a tracker for a summarize action. The
// transcript already exists, so the job begins at the published state.
func NewSummaryJob(userID int64) *Tracker {
	return newTracker(userID, "", domain.JobStatePublished)
}

func newTracker(userID int64, kind domain.MediaKind, state domain.JobState) *Tracker {
	return &Tracker{
		job: domain.Job{
			ID:        uuid.NewString(),
			UserID:    userID,
			Kind:      kind,
			State:     state,
			StartedAt: time.Now().UTC(),
		},
	}
}

// Job returns a snapshot of the tracked job.
func (t *Tracker) Job() domain.Job {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.job
}

// State returns the current job state.
func (t *Tracker) State() domain.JobState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.job.State
}

// Transition validates and applies a state change.
func (t *Tracker) Transition(to domain.JobState) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if to == t.job.State {
		return nil
	}
	if !isValidTransition(t.job.State, to) {
		return fmt.Errorf("invalid transition: %s -> %s", t.job.State, to)
	}

	t.job.State = to
	return nil
}

// Fail moves the job to its failed terminal state. Failing is allowed
// from every non-terminal state.
func (t *Tracker) Fail() error {
	return t.Transition(domain.JobStateFailed)
}

// isValidTransition enforces the allowed job state machine edges.
func isValidTransition(from, to domain.JobState) bool {
	if to == domain.JobStateFailed {
		return !from.Terminal()
	}

	switch from {
	case domain.JobStateReceived:
		return to == domain.JobStateDownloading
	case domain.JobStateDownloading:
		return to == domain.JobStateConverting
	case domain.JobStateConverting:
		return to == domain.JobStateTranscribing
	case domain.JobStateTranscribing:
		return to == domain.JobStatePublished
	case domain.JobStatePublished:
		return to == domain.JobStateSummarizing
	case domain.JobStateSummarizing:
		return to == domain.JobStateDone
	default:
		return false
	}
}
