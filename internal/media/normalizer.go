// Package media converts fetched voice and video payloads into the
// single canonical audio format the transcription engine accepts:
// 16 kHz mono PCM WAV, produced by ffmpeg.
package media

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/Mave-full/konspektbot/internal/domain"
	"github.com/Mave-full/konspektbot/internal/executor"
)

// Normalizer shells out to ffmpeg to extract and resample audio.
type Normalizer struct {
	ffmpegPath string
	runner     executor.Executor
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	logger     *slog.Logger
}

// NewNormalizer constructs a normalizer using the real ffmpeg binary.
func NewNormalizer(runner executor.Executor, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		ffmpegPath: "ffmpeg",
		runner:     runner,
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		logger:     logger.With("component", "media"),
	}
}

// CheckTool verifies ffmpeg is present in the runtime environment.
// The environment can change while the process runs, so callers check
// once at startup and again before each conversion.
func (n *Normalizer) CheckTool() error {
	if _, err := n.lookPath(n.ffmpegPath); err != nil {
		return &domain.ToolUnavailableError{Tool: n.ffmpegPath, Err: err}
	}
	return nil
}

// Normalize converts the source payload into canonical WAV at dstPath.
// Video sources have their audio track extracted; voice sources are
// resampled. Malformed input is reported as a ConversionError carrying
// ffmpeg's stderr for user display.
func (n *Normalizer) Normalize(ctx context.Context, srcPath, dstPath string) error {
	if err := n.CheckTool(); err != nil {
		return err
	}

	args := buildFFmpegArgs(srcPath, dstPath)
	result, err := n.runner.Run(ctx, n.ffmpegPath, args...)
	if err != nil {
		return &domain.ConversionError{
			Output: strings.TrimSpace(result.Stderr),
			Err:    err,
		}
	}

	if _, err := n.stat(dstPath); err != nil {
		return &domain.ConversionError{
			Output: "ffmpeg completed but output file is missing",
			Err:    err,
		}
	}

	n.logger.Debug("audio normalized", "src", srcPath, "dst", dstPath)
	return nil
}

// buildFFmpegArgs builds conversion args for mono 16k PCM WAV output.
func buildFFmpegArgs(srcPath, dstPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", srcPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dstPath,
	}
}

// newNormalizerWithDeps constructs a normalizer with injectable deps.
func newNormalizerWithDeps(
	ffmpegPath string,
	runner executor.Executor,
	lookPath func(string) (string, error),
	stat func(string) (os.FileInfo, error),
) *Normalizer {
	return &Normalizer{
		ffmpegPath: ffmpegPath,
		runner:     runner,
		lookPath:   lookPath,
		stat:       stat,
		logger:     slog.Default(),
	}
}
