package transcribe

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Mave-full/konspektbot/internal/domain"
)

// Pool bounds concurrent transcription runs with a semaphore. A pool
// constructed without an engine rejects every request immediately,
// matching a process whose model failed to load at startup.
type Pool struct {
	engine  Engine
	initErr error
	sem     chan struct{}
	logger  *slog.Logger
}

// NewPool constructs a pool running at most capacity transcriptions at
// once. engine may be nil when initialization failed; initErr carries
// the reason reported to callers.
func NewPool(engine Engine, initErr error, capacity int, logger *slog.Logger) *Pool {
	if capacity < 1 {
		capacity = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		engine:  engine,
		initErr: initErr,
		sem:     make(chan struct{}, capacity),
		logger:  logger.With("component", "transcribe"),
	}
}

// Available reports whether the pool has a working engine.
func (p *Pool) Available() bool { return p.engine != nil }

// Transcribe runs one transcription, waiting for a free slot. A nil
// engine fails without consuming a slot. Engine panics are converted
// to errors so one bad run cannot take the process down.
func (p *Pool) Transcribe(ctx context.Context, audioPath string) (text string, err error) {
	if p.engine == nil {
		return "", &domain.ModelUnavailableError{Err: p.initErr}
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return "", &domain.TranscriptionError{Err: ctx.Err()}
	}
	defer func() { <-p.sem }()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("transcription panic recovered", "panic", r)
			text = ""
			err = &domain.TranscriptionError{Err: fmt.Errorf("engine panic: %v", r)}
		}
	}()

	return p.engine.Transcribe(ctx, audioPath)
}
