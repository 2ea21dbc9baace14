// Package bootstrap assembles the service from configuration and runs
// the update loop until the process is signalled to stop.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Mave-full/konspektbot/internal/bot"
	"github.com/Mave-full/konspektbot/internal/config"
	"github.com/Mave-full/konspektbot/internal/diagnostics"
	"github.com/Mave-full/konspektbot/internal/domain"
	"github.com/Mave-full/konspektbot/internal/executor"
	"github.com/Mave-full/konspektbot/internal/jobs"
	"github.com/Mave-full/konspektbot/internal/media"
	"github.com/Mave-full/konspektbot/internal/metrics"
	"github.com/Mave-full/konspektbot/internal/ops"
	"github.com/Mave-full/konspektbot/internal/session"
	"github.com/Mave-full/konspektbot/internal/summarize"
	"github.com/Mave-full/konspektbot/internal/telegram"
	"github.com/Mave-full/konspektbot/internal/tempstore"
	"github.com/Mave-full/konspektbot/internal/transcribe"
)

// Run starts the service and blocks until SIGINT or SIGTERM.
func Run(configPath string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	report := diagnostics.NewChecker().Run(cfg)
	logReport(logger, report)

	runner := executor.New()
	normalizer := media.NewNormalizer(runner, logger)

	var engine transcribe.Engine
	whisperEngine, engineErr := transcribe.NewWhisperEngine(
		cfg.Whisper.BinaryPath, cfg.Whisper.ModelPath, cfg.Whisper.Language, cfg.Whisper.Threads, runner)
	if engineErr != nil {
		// The service stays up without a model; every transcription
		// reports the failure until it is fixed and the process
		// restarted.
		logger.Warn("transcription engine unavailable", "error", engineErr)
	} else {
		engine = whisperEngine
		logger.Info("transcription engine ready", "model", whisperEngine.ModelPath())
	}
	pool := transcribe.NewPool(engine, engineErr, cfg.Pipeline.MaxTranscriptions, logger)

	store, err := tempstore.New(cfg.Pipeline.TempDir, logger)
	if err != nil {
		return fmt.Errorf("init temp store: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tg := telegram.NewClient(cfg.Telegram, logger)
	me, err := tg.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("verify bot token: %w", err)
	}
	logger.Info("connected to Bot API", "bot", me.Username, "id", me.ID)

	bus := jobs.NewEventBus(500)
	m := metrics.NewMetrics()

	var opsServer *ops.Server
	if cfg.Ops.Enabled {
		opsServer = ops.NewServer(cfg.Ops.Address, bus, report, logger)
		opsServer.Start()
	}

	b := bot.New(
		tg,
		normalizer,
		pool,
		summarize.NewClient(cfg.Summary, logger),
		session.NewMemoryStore(),
		store,
		bus,
		m,
		cfg.Summary.TimeoutDuration(),
		logger,
	)

	pollLoop(ctx, tg, b, cfg.Telegram.PollTimeout, logger)

	if opsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("ops endpoint shutdown failed", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// pollLoop fetches updates until the context is cancelled. Each update
// is handled in its own goroutine so one slow pipeline run cannot
// stall polling; transcription concurrency is capped by the pool.
func pollLoop(ctx context.Context, tg *telegram.Client, b *bot.Bot, pollTimeout int, logger *slog.Logger) {
	logger.Info("polling started")
	var offset int64
	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			logger.Info("polling stopped")
			return
		default:
		}

		updates, err := tg.GetUpdates(ctx, offset, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("polling stopped")
				return
			}
			logger.Warn("getUpdates failed", "error", err, "backoff", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, update := range updates {
			if update.UpdateID >= offset {
				offset = update.UpdateID + 1
			}
			go b.HandleUpdate(ctx, update)
		}
	}
}

// RunCheck executes the startup diagnostics and prints the report.
// It exits non-zero when any check fails. Credentials may be missing;
// the report says so instead of refusing to run.
func RunCheck(configPath string) error {
	_ = godotenv.Load()

	cfg, err := config.LoadUnvalidated(configPath)
	if err != nil {
		return err
	}

	report := diagnostics.NewChecker().Run(cfg)
	for _, item := range report.Items {
		marker := "ok  "
		if item.Status == domain.DiagnosticStatusFail {
			marker = "FAIL"
		}
		fmt.Printf("%s %-24s %s\n", marker, item.Name, item.Message)
		if item.Hint != "" && item.Status == domain.DiagnosticStatusFail {
			fmt.Printf("     hint: %s\n", item.Hint)
		}
	}

	if report.HasFailures {
		return fmt.Errorf("diagnostics reported failures")
	}
	return nil
}

// newLogger builds the process logger from configuration.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

// logReport writes each diagnostic item at a level matching its status.
func logReport(logger *slog.Logger, report domain.DiagnosticReport) {
	for _, item := range report.Items {
		if item.Status == domain.DiagnosticStatusFail {
			logger.Warn("diagnostic check failed",
				"check", item.ID, "message", item.Message, "hint", item.Hint)
			continue
		}
		logger.Debug("diagnostic check passed", "check", item.ID, "message", item.Message)
	}
	if report.HasFailures {
		logger.Warn("environment has failing diagnostics; some features may not work")
	}
}
