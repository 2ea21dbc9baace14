package domain

import "fmt"

// ToolUnavailableError reports a required external tool missing from
// the runtime environment.
type ToolUnavailableError struct {
	Tool string
	Err  error
}

// Error formats the missing-tool failure.
func (e *ToolUnavailableError) Error() string {
	return fmt.Sprintf("required tool not available: %s", e.Tool)
}

// Unwrap exposes the underlying lookup error.
func (e *ToolUnavailableError) Unwrap() error { return e.Err }

// DownloadError reports a failed media fetch from the transport.
type DownloadError struct {
	FileID string
	Err    error
}

// Error formats the download failure with its cause.
func (e *DownloadError) Error() string {
	return fmt.Sprintf("download media %s: %v", e.FileID, e.Err)
}

// Unwrap exposes the transport error.
func (e *DownloadError) Unwrap() error { return e.Err }

// ConversionError reports malformed or unsupported input media.
// Output holds the converter's stderr for user display.
type ConversionError struct {
	Output string
	Err    error
}

// Error formats the conversion failure including converter output.
func (e *ConversionError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("audio conversion failed: %v", e.Err)
	}
	return fmt.Sprintf("audio conversion failed: %v: %s", e.Err, e.Output)
}

// Unwrap exposes the underlying command error.
func (e *ConversionError) Unwrap() error { return e.Err }

// ModelUnavailableError reports that the transcription engine never
// initialized; every transcription fails immediately with it.
type ModelUnavailableError struct {
	Err error
}

// Error formats the unavailable-model failure.
func (e *ModelUnavailableError) Error() string {
	if e.Err == nil {
		return "transcription model not loaded"
	}
	return fmt.Sprintf("transcription model not loaded: %v", e.Err)
}

// Unwrap exposes the initialization error.
func (e *ModelUnavailableError) Unwrap() error { return e.Err }

// TranscriptionError reports a failure raised during inference.
type TranscriptionError struct {
	Err error
}

// Error formats the inference failure.
func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

// Unwrap exposes the inference error.
func (e *TranscriptionError) Unwrap() error { return e.Err }

// SummarizationError reports a non-success response from the
// text-generation API. StatusCode and Body are surfaced verbatim.
type SummarizationError struct {
	StatusCode int
	Body       string
	Err        error
}

// Error formats the API failure with status code and body.
func (e *SummarizationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("summarization API returned status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("summarization request failed: %v", e.Err)
}

// Unwrap exposes the underlying request error.
func (e *SummarizationError) Unwrap() error { return e.Err }

// NoTranscriptError reports a summarize action for a user with no
// stored transcript.
type NoTranscriptError struct {
	UserID int64
}

// Error formats the missing-transcript rejection.
func (e *NoTranscriptError) Error() string {
	return fmt.Sprintf("no transcript stored for user %d", e.UserID)
}
