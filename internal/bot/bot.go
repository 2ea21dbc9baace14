// Package bot orchestrates the message pipeline: media intake,
// download, conversion, transcription, transcript publication, and
// on-demand summarization.
package bot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Mave-full/konspektbot/internal/domain"
	"github.com/Mave-full/konspektbot/internal/jobs"
	"github.com/Mave-full/konspektbot/internal/metrics"
	"github.com/Mave-full/konspektbot/internal/session"
	"github.com/Mave-full/konspektbot/internal/summarize"
	"github.com/Mave-full/konspektbot/internal/telegram"
	"github.com/Mave-full/konspektbot/internal/tempstore"
)

// Transport is the subset of the chat API the bot drives.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) (*telegram.Message, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string) error
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	AnswerCallbackQuery(ctx context.Context, callbackID string) error
	DownloadFile(ctx context.Context, fileID, dstPath string) error
}

// Normalizer converts fetched media into canonical audio.
type Normalizer interface {
	CheckTool() error
	Normalize(ctx context.Context, srcPath, dstPath string) error
}

// Transcriber turns canonical audio into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Bot wires the pipeline components together and handles updates.
type Bot struct {
	transport   Transport
	normalizer  Normalizer
	transcriber Transcriber
	summarizer  summarize.Summarizer
	sessions    session.Store
	store       *tempstore.Store
	bus         *jobs.EventBus
	metrics     *metrics.Metrics
	logger      *slog.Logger

	summaryTimeout time.Duration

	mu          sync.Mutex
	summarizing map[int64]bool
}

// New constructs the bot.
func New(
	transport Transport,
	normalizer Normalizer,
	transcriber Transcriber,
	summarizer summarize.Summarizer,
	sessions session.Store,
	store *tempstore.Store,
	bus *jobs.EventBus,
	m *metrics.Metrics,
	summaryTimeout time.Duration,
	logger *slog.Logger,
) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		transport:      transport,
		normalizer:     normalizer,
		transcriber:    transcriber,
		summarizer:     summarizer,
		sessions:       sessions,
		store:          store,
		bus:            bus,
		metrics:        m,
		summaryTimeout: summaryTimeout,
		logger:         logger.With("component", "bot"),
		summarizing:    make(map[int64]bool),
	}
}

// HandleUpdate dispatches one update to the matching handler.
func (b *Bot) HandleUpdate(ctx context.Context, update telegram.Update) {
	b.metrics.UpdatesReceived.Inc()

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	if fileID, kind, ok := mediaAttachment(msg); ok {
		b.HandleMedia(ctx, msg.Chat.ID, msg.MessageID, msg.From.ID, fileID, kind)
		return
	}

	switch msg.Text {
	case "/start":
		b.HandleStart(ctx, msg.Chat.ID)
	default:
		b.reply(ctx, msg.Chat.ID, msgUnknownCommand, nil)
	}
}

// mediaAttachment extracts a transcribable attachment from a message.
func mediaAttachment(msg *telegram.Message) (string, domain.MediaKind, bool) {
	switch {
	case msg.Voice != nil:
		return msg.Voice.FileID, domain.MediaVoice, true
	case msg.VideoNote != nil:
		return msg.VideoNote.FileID, domain.MediaVideo, true
	case msg.Video != nil:
		return msg.Video.FileID, domain.MediaVideo, true
	default:
		return "", "", false
	}
}

// HandleStart greets the user, warning up front when the converter is
// missing instead of letting the first media message fail.
func (b *Bot) HandleStart(ctx context.Context, chatID int64) {
	text := msgStart
	if err := b.normalizer.CheckTool(); err != nil {
		text += "\n\n" + msgToolWarning
	}
	b.reply(ctx, chatID, text, nil)
}

// handleCallback routes button presses.
func (b *Bot) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) {
	if err := b.transport.AnswerCallbackQuery(ctx, cb.ID); err != nil {
		b.logger.Warn("answer callback failed", "error", err)
	}
	if cb.From == nil || cb.Message == nil {
		return
	}
	if cb.Data == CallbackSummarize {
		b.HandleSummarize(ctx, cb.Message.Chat.ID, cb.From.ID)
	}
}

// HandleMedia runs the full pipeline for one media message. Every
// outcome produces a reply; the user is never left without a response.
func (b *Bot) HandleMedia(ctx context.Context, chatID, messageID, userID int64, fileID string, kind domain.MediaKind) {
	tracker := jobs.NewMediaJob(userID, kind)
	b.bus.PublishState(tracker.Job())
	b.metrics.MediaJobsStarted.WithLabelValues(string(kind)).Inc()
	b.metrics.ActiveJobs.Inc()
	defer b.metrics.ActiveJobs.Dec()

	logger := b.logger.With("job_id", tracker.Job().ID, "user_id", userID, "kind", kind)

	// The converter is required before anything is fetched; a missing
	// tool must not cost the user a download round-trip.
	if err := b.normalizer.CheckTool(); err != nil {
		b.failJob(ctx, tracker, chatID, messageID, err, logger)
		return
	}

	progress, err := b.transport.SendMessage(ctx, chatID, msgProcessing, nil)
	if err != nil {
		logger.Error("progress message failed", "error", err)
	}

	result := b.runMediaPipeline(ctx, tracker, userID, fileID, kind, logger)

	if progress != nil {
		if err := b.transport.DeleteMessage(ctx, chatID, progress.MessageID); err != nil {
			logger.Warn("delete progress message failed", "error", err)
		}
	}

	if !result.OK() {
		b.failJob(ctx, tracker, chatID, messageID, result.Err, logger)
		return
	}

	opts := &telegram.SendOptions{
		ReplyToMessageID: messageID,
		ReplyMarkup: &telegram.InlineKeyboardMarkup{
			InlineKeyboard: [][]telegram.InlineKeyboardButton{
				{{Text: "Summarize", CallbackData: CallbackSummarize}},
			},
		},
	}
	b.reply(ctx, chatID, renderTranscript(result.Text), opts)
	logger.Info("transcript published", "chars", len(result.Text))
}

// runMediaPipeline executes download, conversion, and transcription,
// releasing every transient file before returning.
func (b *Bot) runMediaPipeline(ctx context.Context, tracker *jobs.Tracker, userID int64, fileID string, kind domain.MediaKind, logger *slog.Logger) domain.TranscriptionResult {
	fail := func(err error) domain.TranscriptionResult {
		return domain.TranscriptionResult{Err: err}
	}

	src, err := b.store.Acquire(tempstore.KindFor(kind))
	if err != nil {
		return fail(err)
	}
	defer b.releaseFile(src)

	b.transition(tracker, domain.JobStateDownloading)
	if err := b.transport.DownloadFile(ctx, fileID, src.Path()); err != nil {
		b.metrics.DownloadsFailed.Inc()
		return fail(err)
	}

	wav, err := b.store.Acquire(tempstore.KindDerivedAudio)
	if err != nil {
		return fail(err)
	}
	defer b.releaseFile(wav)

	b.transition(tracker, domain.JobStateConverting)
	if err := b.normalizer.Normalize(ctx, src.Path(), wav.Path()); err != nil {
		b.metrics.ConversionsFailed.Inc()
		return fail(err)
	}

	b.transition(tracker, domain.JobStateTranscribing)
	b.metrics.TranscriptionsTotal.Inc()
	started := time.Now()
	text, err := b.transcriber.Transcribe(ctx, wav.Path())
	b.metrics.TranscriptionTime.Observe(time.Since(started).Seconds())
	if err != nil {
		b.metrics.TranscriptionsFailed.Inc()
		return fail(err)
	}

	b.sessions.Put(userID, text)
	b.transition(tracker, domain.JobStatePublished)
	logger.Debug("transcript stored", "chars", len(text))

	return domain.TranscriptionResult{Text: text}
}

// HandleSummarize creates a summary of the user's latest transcript.
// At most one summary per user runs at a time.
func (b *Bot) HandleSummarize(ctx context.Context, chatID, userID int64) {
	b.metrics.SummariesRequested.Inc()

	if !b.beginSummary(userID) {
		b.reply(ctx, chatID, msgSummaryInProgress, nil)
		return
	}
	defer b.endSummary(userID)

	logger := b.logger.With("user_id", userID)

	transcript, ok := b.sessions.Get(userID)
	if !ok {
		b.metrics.SummariesFailed.Inc()
		b.reply(ctx, chatID, renderError(&domain.NoTranscriptError{UserID: userID}), nil)
		return
	}

	tracker := jobs.NewSummaryJob(userID)
	b.bus.PublishState(tracker.Job())
	b.transition(tracker, domain.JobStateSummarizing)

	progress, err := b.transport.SendMessage(ctx, chatID, msgCreatingSummary, nil)
	if err != nil {
		logger.Error("progress message failed", "error", err)
	}

	summaryCtx, cancel := context.WithTimeout(ctx, b.summaryTimeout)
	defer cancel()

	started := time.Now()
	summary, err := b.summarizer.Summarize(summaryCtx, transcript)
	b.metrics.SummaryTime.Observe(time.Since(started).Seconds())

	var text string
	if err != nil {
		b.metrics.SummariesFailed.Inc()
		if failErr := tracker.Fail(); failErr != nil {
			logger.Warn("job transition failed", "error", failErr)
		}
		b.bus.PublishError(tracker.Job(), err.Error())
		logger.Error("summarization failed", "error", err)
		text = renderSummaryError(transcript, err)
	} else {
		b.transition(tracker, domain.JobStateDone)
		text = renderSummary(transcript, summary)
	}

	if progress != nil {
		if err := b.transport.EditMessageText(ctx, chatID, progress.MessageID, text); err != nil {
			logger.Warn("edit progress message failed", "error", err)
			b.reply(ctx, chatID, text, nil)
		}
		return
	}
	b.reply(ctx, chatID, text, nil)
}

// beginSummary marks a user's summary as in flight.
func (b *Bot) beginSummary(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.summarizing[userID] {
		return false
	}
	b.summarizing[userID] = true
	return true
}

// endSummary clears the in-flight mark.
func (b *Bot) endSummary(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.summarizing, userID)
}

// failJob records a failure and tells the user what happened.
func (b *Bot) failJob(ctx context.Context, tracker *jobs.Tracker, chatID, messageID int64, err error, logger *slog.Logger) {
	if failErr := tracker.Fail(); failErr != nil {
		logger.Warn("job transition failed", "error", failErr)
	}
	b.bus.PublishError(tracker.Job(), err.Error())
	logger.Error("media job failed", "state", tracker.State(), "error", err)

	opts := &telegram.SendOptions{ReplyToMessageID: messageID}
	b.reply(ctx, chatID, renderError(err), opts)
}

// transition applies a state change and publishes it.
func (b *Bot) transition(tracker *jobs.Tracker, to domain.JobState) {
	if err := tracker.Transition(to); err != nil {
		b.logger.Warn("job transition failed", "error", err)
		return
	}
	b.bus.PublishState(tracker.Job())
}

// releaseFile returns a transient file and updates the gauge.
func (b *Bot) releaseFile(h *tempstore.Handle) {
	b.store.Release(h)
	b.metrics.TempFilesOpen.Set(float64(b.store.Outstanding()))
}

// reply sends a message, logging delivery failures.
func (b *Bot) reply(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) {
	if _, err := b.transport.SendMessage(ctx, chatID, text, opts); err != nil {
		b.logger.Error("send message failed", "chat_id", chatID, "error", err)
	}
}
