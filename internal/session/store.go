// Package session keeps the latest transcript per user so a later
// summarize action can pick it up.
package session

import "sync"

// Store holds at most one transcript per user. Implementations must be
// safe for concurrent use; a newer transcript replaces the stored one.
type Store interface {
	Put(userID int64, transcript string)
	Get(userID int64) (string, bool)
}

// MemoryStore is an in-process Store backed by a map.
type MemoryStore struct {
	mu          sync.RWMutex
	transcripts map[int64]string
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{transcripts: make(map[int64]string)}
}

// Put stores the transcript for the user, replacing any previous one.
func (s *MemoryStore) Put(userID int64, transcript string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[userID] = transcript
}

// Get returns the stored transcript for the user.
func (s *MemoryStore) Get(userID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	transcript, ok := s.transcripts[userID]
	return transcript, ok
}

// Len reports how many users have a stored transcript.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.transcripts)
}
