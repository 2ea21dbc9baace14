package media

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mave-full/konspektbot/internal/domain"
	"github.com/Mave-full/konspektbot/internal/executor"
)

type fakeRunner struct {
	lastName string
	lastArgs []string
	result   executor.Result
	err      error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (executor.Result, error) {
	f.lastName = name
	f.lastArgs = args
	return f.result, f.err
}

func okStat(string) (os.FileInfo, error)      { return nil, nil }
func missingStat(string) (os.FileInfo, error) { return nil, os.ErrNotExist }

func foundLookPath(name string) (string, error)  { return "/usr/bin/" + name, nil }
func absentLookPath(string) (string, error)      { return "", errors.New("executable file not found") }

func TestCheckToolMissing(t *testing.T) {
	n := newNormalizerWithDeps("ffmpeg", &fakeRunner{}, absentLookPath, okStat)

	err := n.CheckTool()

	var toolErr *domain.ToolUnavailableError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "ffmpeg", toolErr.Tool)
}

func TestNormalizeBuildsCanonicalArgs(t *testing.T) {
	runner := &fakeRunner{}
	n := newNormalizerWithDeps("ffmpeg", runner, foundLookPath, okStat)

	err := n.Normalize(context.Background(), "/tmp/in.ogg", "/tmp/out.wav")

	require.NoError(t, err)
	assert.Equal(t, "ffmpeg", runner.lastName)
	assert.Equal(t, []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", "/tmp/in.ogg",
		"-vn", "-ac", "1", "-ar", "16000", "-c:a", "pcm_s16le",
		"/tmp/out.wav",
	}, runner.lastArgs)
}

func TestNormalizeToolMissingSkipsRun(t *testing.T) {
	runner := &fakeRunner{}
	n := newNormalizerWithDeps("ffmpeg", runner, absentLookPath, okStat)

	err := n.Normalize(context.Background(), "/tmp/in.mp4", "/tmp/out.wav")

	var toolErr *domain.ToolUnavailableError
	require.ErrorAs(t, err, &toolErr)
	assert.Empty(t, runner.lastName, "ffmpeg must not run when absent")
}

func TestNormalizeFailureCarriesStderr(t *testing.T) {
	runner := &fakeRunner{
		result: executor.Result{Stderr: "Invalid data found when processing input\n", ExitCode: 1},
		err:    errors.New("exit status 1"),
	}
	n := newNormalizerWithDeps("ffmpeg", runner, foundLookPath, okStat)

	err := n.Normalize(context.Background(), "/tmp/in.ogg", "/tmp/out.wav")

	var convErr *domain.ConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "Invalid data found when processing input", convErr.Output)
}

func TestNormalizeMissingOutput(t *testing.T) {
	n := newNormalizerWithDeps("ffmpeg", &fakeRunner{}, foundLookPath, missingStat)

	err := n.Normalize(context.Background(), "/tmp/in.ogg", "/tmp/out.wav")

	var convErr *domain.ConversionError
	require.ErrorAs(t, err, &convErr)
}
