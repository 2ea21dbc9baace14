package bot

import (
	"errors"
	"fmt"

	"github.com/Mave-full/konspektbot/internal/domain"
)

// User-facing message texts.
const (
	msgStart = "Hi! Send me a voice or video message and I will turn it " +
		"into text. After that, press Summarize to get a short summary."
	msgToolWarning = "Warning: audio processing is not available on the " +
		"server right now, so media messages cannot be transcribed yet."
	msgProcessing        = "Processing your message..."
	msgCreatingSummary   = "Creating summary..."
	msgSummaryInProgress = "A summary is already being created, please wait."
	msgNoTranscript      = "No transcript available. Send a voice or video message first."
	msgUnknownCommand    = "Send me a voice or video message to get started."
)

// CallbackSummarize is the callback data carried by the Summarize
// button.
const CallbackSummarize = "summarize"

// renderTranscript formats a transcript reply.
func renderTranscript(text string) string {
	if text == "" {
		return "Transcript is empty: no speech was recognized."
	}
	return "Transcript:\n\n" + text
}

// renderSummary formats the enriched transcript-plus-summary reply.
func renderSummary(transcript, summary string) string {
	return renderTranscript(transcript) + "\n\nSummary:\n\n" + summary
}

// renderSummaryError formats the transcript with the summarization
// failure appended, so the transcript is never lost to an API error.
func renderSummaryError(transcript string, err error) string {
	return renderTranscript(transcript) + "\n\n" + renderError(err)
}

// renderError maps a pipeline failure to user-facing text. API
// rejections keep their status code and body so the user sees exactly
// what the upstream returned.
func renderError(err error) string {
	var toolErr *domain.ToolUnavailableError
	if errors.As(err, &toolErr) {
		return fmt.Sprintf("Required tool %s is not available on the server. Please try again later.", toolErr.Tool)
	}

	var dlErr *domain.DownloadError
	if errors.As(err, &dlErr) {
		return "Could not download your media. Please send it again."
	}

	var convErr *domain.ConversionError
	if errors.As(err, &convErr) {
		if convErr.Output != "" {
			return "Could not process your media: " + convErr.Output
		}
		return "Could not process your media. It may be corrupted or in an unsupported format."
	}

	var modelErr *domain.ModelUnavailableError
	if errors.As(err, &modelErr) {
		return "Speech recognition is not available right now. Please try again later."
	}

	var trErr *domain.TranscriptionError
	if errors.As(err, &trErr) {
		return "Transcription failed. Please try again."
	}

	var sumErr *domain.SummarizationError
	if errors.As(err, &sumErr) {
		return "Error creating summary: " + sumErr.Error()
	}

	var noTrErr *domain.NoTranscriptError
	if errors.As(err, &noTrErr) {
		return msgNoTranscript
	}

	return "Something went wrong. Please try again."
}
