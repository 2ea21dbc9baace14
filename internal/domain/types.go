package domain

import "time"

// JobState tracks each pipeline stage for one in-flight job.
type JobState string

const (
	JobStateReceived     JobState = "received"
	JobStateDownloading  JobState = "downloading"
	JobStateConverting   JobState = "converting"
	JobStateTranscribing JobState = "transcribing"
	JobStatePublished    JobState = "published"
	JobStateSummarizing  JobState = "summarizing"
	JobStateDone         JobState = "done"
	JobStateFailed       JobState = "failed"
)

// Terminal reports whether a state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobStateDone || s == JobStateFailed
}

// MediaKind identifies the source container of an inbound message.
type MediaKind string

const (
	MediaVoice MediaKind = "voice"
	MediaVideo MediaKind = "video"
)

// Ext returns the file extension conventionally used for the kind.
func (k MediaKind) Ext() string {
	switch k {
	case MediaVideo:
		return ".mp4"
	default:
		return ".ogg"
	}
}

// Job stores identity and lifecycle state for one processing unit.
// A job is owned by exactly one handler invocation and is never
// shared across messages.
type Job struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Kind      MediaKind `json:"kind,omitempty"`
	State     JobState  `json:"state"`
	StartedAt time.Time `json:"startedAt"`
}

// TranscriptionResult is the tagged outcome of one transcription.
// Text carries whatever should be rendered to the user; Err is nil
// only when the engine produced a real transcript.
type TranscriptionResult struct {
	Text string
	Err  error
}

// OK reports whether the transcription completed without failure.
func (r TranscriptionResult) OK() bool { return r.Err == nil }

// SummaryResult is the tagged outcome of one summarize action.
type SummaryResult struct {
	Text string
	Err  error
}

// OK reports whether the summary was generated successfully.
func (r SummaryResult) OK() bool { return r.Err == nil }
