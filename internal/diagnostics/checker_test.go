package diagnostics

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mave-full/konspektbot/internal/config"
	"github.com/Mave-full/konspektbot/internal/domain"
)

type fakeEntry struct {
	name string
	dir  bool
}

func (e fakeEntry) Name() string               { return e.name }
func (e fakeEntry) IsDir() bool                { return e.dir }
func (e fakeEntry) Type() os.FileMode          { return 0 }
func (e fakeEntry) Info() (os.FileInfo, error) { return nil, nil }

type fakeFileInfo struct {
	os.FileInfo
	dir bool
}

func (f fakeFileInfo) IsDir() bool { return f.dir }

func testCheckerConfig() *config.Config {
	cfg := config.Default()
	cfg.Telegram.Token = "tg-token"
	cfg.Summary.APIKey = "api-key"
	cfg.Whisper.ModelPath = "/models"
	cfg.Pipeline.TempDir = "/tmp/konspektbot"
	return cfg
}

func newPassingChecker(t *testing.T) *Checker {
	t.Helper()
	tmp, err := os.CreateTemp(t.TempDir(), "check-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = tmp.Close() })

	return NewCheckerForTests(
		func(name string) (string, error) { return "/usr/bin/" + name, nil },
		func(string) (os.FileInfo, error) { return fakeFileInfo{dir: true}, nil },
		func(string) ([]os.DirEntry, error) {
			return []os.DirEntry{fakeEntry{name: "ggml-base.bin"}}, nil
		},
		func(string, os.FileMode) error { return nil },
		func(string, string) (*os.File, error) { return tmp, nil },
		func(string) error { return nil },
	)
}

func TestRunAllChecksPass(t *testing.T) {
	checker := newPassingChecker(t)

	report := checker.Run(testCheckerConfig())

	assert.False(t, report.HasFailures)
	require.Len(t, report.Items, 6)
	for _, item := range report.Items {
		assert.Equal(t, domain.DiagnosticStatusPass, item.Status, item.ID)
	}
	assert.False(t, report.GeneratedAt.IsZero())
}

func TestRunMissingTool(t *testing.T) {
	checker := newPassingChecker(t)
	checker.lookPath = func(name string) (string, error) {
		if name == "ffmpeg" {
			return "", errors.New("not found")
		}
		return "/usr/bin/" + name, nil
	}

	report := checker.Run(testCheckerConfig())

	assert.True(t, report.HasFailures)
	assert.Equal(t, domain.DiagnosticStatusFail, report.Items[0].Status)
	assert.Contains(t, report.Items[0].Message, "ffmpeg")
	assert.NotEmpty(t, report.Items[0].Hint)
}

func TestRunEmptyModelDirectory(t *testing.T) {
	checker := newPassingChecker(t)
	checker.readDir = func(string) ([]os.DirEntry, error) {
		return []os.DirEntry{fakeEntry{name: "readme.md"}}, nil
	}

	report := checker.Run(testCheckerConfig())

	assert.True(t, report.HasFailures)
	item := findItem(t, report, "model_path")
	assert.Equal(t, domain.DiagnosticStatusFail, item.Status)
	assert.Contains(t, item.Message, "No model files")
}

func TestRunUnwritableTempDir(t *testing.T) {
	checker := newPassingChecker(t)
	checker.createTemp = func(string, string) (*os.File, error) {
		return nil, errors.New("permission denied")
	}

	report := checker.Run(testCheckerConfig())

	item := findItem(t, report, "temp_dir")
	assert.Equal(t, domain.DiagnosticStatusFail, item.Status)
}

func TestRunMissingCredentials(t *testing.T) {
	checker := newPassingChecker(t)
	cfg := testCheckerConfig()
	cfg.Telegram.Token = ""
	cfg.Summary.APIKey = "  "

	report := checker.Run(cfg)

	assert.True(t, report.HasFailures)

	token := findItem(t, report, "telegram_token")
	assert.Equal(t, domain.DiagnosticStatusFail, token.Status)
	assert.Contains(t, token.Hint, config.EnvTelegramToken)

	key := findItem(t, report, "summary_api_key")
	assert.Equal(t, domain.DiagnosticStatusFail, key.Status)
	assert.Contains(t, key.Hint, config.EnvSummaryAPIKey)
	assert.NotContains(t, key.Message, "api-key")
}

func findItem(t *testing.T, report domain.DiagnosticReport, id string) domain.DiagnosticItem {
	t.Helper()
	for _, item := range report.Items {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("diagnostic item %q not found", id)
	return domain.DiagnosticItem{}
}
