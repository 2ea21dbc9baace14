// Package transcribe runs speech recognition over canonical WAV audio
// through whisper.cpp, with a bounded worker pool capping concurrent
// inference runs.
package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/Mave-full/konspektbot/internal/domain"
	"github.com/Mave-full/konspektbot/internal/executor"
)

// Engine converts one audio file into transcript text.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// WhisperEngine shells out to a whisper.cpp binary with a resolved
// model file.
type WhisperEngine struct {
	whisperPath string
	modelPath   string
	language    string
	threads     int
	runner      executor.Executor
	mkdirTemp   func(dir, pattern string) (string, error)
	removeAll   func(path string) error
	stat        func(name string) (os.FileInfo, error)
	readFile    func(name string) ([]byte, error)
}

// NewWhisperEngine resolves the model path and constructs an engine.
// Resolution failure is returned to the caller, which is expected to
// run without an engine rather than abort.
func NewWhisperEngine(whisperPath, modelPath, language string, threads int, runner executor.Executor) (*WhisperEngine, error) {
	resolved, err := resolveModelPath(os.Stat, os.ReadDir, modelPath)
	if err != nil {
		return nil, err
	}
	return &WhisperEngine{
		whisperPath: whisperPath,
		modelPath:   resolved,
		language:    language,
		threads:     threads,
		runner:      runner,
		mkdirTemp:   os.MkdirTemp,
		removeAll:   os.RemoveAll,
		stat:        os.Stat,
		readFile:    os.ReadFile,
	}, nil
}

// ModelPath reports the resolved model file in use.
func (e *WhisperEngine) ModelPath() string { return e.modelPath }

// Transcribe runs whisper.cpp over audioPath and returns the trimmed
// transcript text.
func (e *WhisperEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	if _, err := e.stat(audioPath); err != nil {
		return "", &domain.TranscriptionError{
			Err: fmt.Errorf("cannot access audio file %s: %w", audioPath, err),
		}
	}

	workDir, err := e.mkdirTemp("", "konspektbot-whisper-*")
	if err != nil {
		return "", &domain.TranscriptionError{
			Err: fmt.Errorf("create transcript workspace: %w", err),
		}
	}
	defer func() { _ = e.removeAll(workDir) }()

	textBase := filepath.Join(workDir, "transcript")
	args := buildWhisperArgs(e.modelPath, audioPath, textBase, e.language, e.threads)
	result, runErr := e.runner.Run(ctx, e.whisperPath, args...)
	if runErr != nil {
		return "", &domain.TranscriptionError{
			Err: fmt.Errorf("whisper.cpp exited %d: %w", result.ExitCode, runErr),
		}
	}

	textPath := textBase + ".txt"
	content, err := e.readFile(textPath)
	if err != nil {
		return "", &domain.TranscriptionError{
			Err: fmt.Errorf("whisper.cpp completed but transcript file is missing: %w", err),
		}
	}

	return strings.TrimSpace(string(content)), nil
}

// normalizeLanguage maps "auto" and empty language to no CLI override.
func normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if lang == "" || strings.EqualFold(lang, "auto") {
		return ""
	}
	return lang
}

// buildWhisperArgs builds whisper.cpp args for txt transcript export.
func buildWhisperArgs(modelPath, audioPath, textBase, language string, threads int) []string {
	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"-of", textBase,
		"-otxt",
	}

	if lang := normalizeLanguage(language); lang != "" {
		args = append(args, "-l", lang)
	}
	if threads > 0 {
		args = append(args, "-t", strconv.Itoa(threads))
	}

	return args
}

// resolveModelPath returns model file path from file or directory input.
func resolveModelPath(
	stat func(string) (os.FileInfo, error),
	readDir func(string) ([]os.DirEntry, error),
	rawPath string,
) (string, error) {
	modelPath := strings.TrimSpace(rawPath)
	if modelPath == "" {
		return "", fmt.Errorf("model path is required")
	}

	info, err := stat(modelPath)
	if err != nil {
		return "", fmt.Errorf("cannot access model path: %s", modelPath)
	}
	if !info.IsDir() {
		return modelPath, nil
	}

	entries, err := readDir(modelPath)
	if err != nil {
		return "", fmt.Errorf("cannot read model directory: %s", modelPath)
	}

	modelNames := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".bin" || ext == ".gguf" {
			modelNames = append(modelNames, entry.Name())
		}
	}
	if len(modelNames) == 0 {
		return "", fmt.Errorf("no .bin or .gguf model files found in: %s", modelPath)
	}

	sort.Strings(modelNames)
	return filepath.Join(modelPath, modelNames[0]), nil
}

// NewWhisperEngineForTests constructs an engine with injectable deps
// and no model resolution.
func NewWhisperEngineForTests(
	whisperPath string,
	modelPath string,
	language string,
	threads int,
	runner executor.Executor,
	mkdirTemp func(dir, pattern string) (string, error),
	removeAll func(path string) error,
	stat func(name string) (os.FileInfo, error),
	readFile func(name string) ([]byte, error),
) *WhisperEngine {
	return &WhisperEngine{
		whisperPath: whisperPath,
		modelPath:   modelPath,
		language:    language,
		threads:     threads,
		runner:      runner,
		mkdirTemp:   mkdirTemp,
		removeAll:   removeAll,
		stat:        stat,
		readFile:    readFile,
	}
}
