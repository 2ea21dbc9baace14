// Package tempstore manages uniquely named transient files for
// in-flight jobs. Every acquired handle must be released exactly once;
// release failures are logged and swallowed so cleanup never masks the
// primary pipeline error.
package tempstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/Mave-full/konspektbot/internal/domain"
)

// Kind selects the file extension for a transient resource.
type Kind string

const (
	KindVoice        Kind = ".ogg"
	KindVideo        Kind = ".mp4"
	KindDerivedAudio Kind = ".wav"
)

// KindFor maps an inbound media kind to its transient resource kind.
func KindFor(m domain.MediaKind) Kind {
	if m == domain.MediaVideo {
		return KindVideo
	}
	return KindVoice
}

// Handle references one acquired transient file.
type Handle struct {
	id   string
	path string
}

// Path returns the filesystem location of the transient file.
func (h *Handle) Path() string {
	if h == nil {
		return ""
	}
	return h.path
}

// Store allocates and reclaims transient files under one directory.
type Store struct {
	dir    string
	logger *slog.Logger

	mu   sync.Mutex
	open map[string]string // handle id -> path
}

// New creates a store rooted at dir, creating it when missing.
func New(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir %s: %w", dir, err)
	}

	return &Store{
		dir:    dir,
		logger: logger.With("component", "tempstore"),
		open:   make(map[string]string),
	}, nil
}

// Acquire creates an empty uniquely named file for the given kind.
// UUID names guarantee no two concurrently active handles collide.
func (s *Store) Acquire(kind Kind) (*Handle, error) {
	id := uuid.NewString()
	path := filepath.Join(s.dir, id+string(kind))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create transient file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("close transient file: %w", err)
	}

	s.mu.Lock()
	s.open[id] = path
	s.mu.Unlock()

	return &Handle{id: id, path: path}, nil
}

// Release removes the transient file. It is safe to call more than
// once; only the first call does work. Removal failures are logged and
// discarded, never escalated.
func (s *Store) Release(h *Handle) {
	if h == nil {
		return
	}

	s.mu.Lock()
	path, ok := s.open[h.id]
	if ok {
		delete(s.open, h.id)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("failed to remove transient file", "path", path, "error", err)
	}
}

// Outstanding returns the number of handles not yet released.
func (s *Store) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.open)
}
