// Package session provides the in-memory session store, session key
// generation, and idle eviction.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/avereev/interview-coach/internal/domain"
)

const evictionInterval = 5 * time.Minute

// Store owns the process-wide mapping from session key to session state.
// The map itself is guarded; individual sessions assume at most one in-flight
// request per key, so concurrent requests racing on the same key may
// interleave history appends. That is an accepted limitation, not a
// guarantee.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewStore returns an empty store. There is no teardown: sessions live until
// evicted or until the process exits.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*domain.Session)}
}

// NewKey generates an opaque session key.
func NewKey() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in serious trouble;
		// a timestamp key keeps the request alive.
		return "s_" + hex.EncodeToString([]byte(time.Now().Format("150405.000")))
	}
	return "s_" + hex.EncodeToString(buf)
}

// Get returns the session for a key, if present.
func (s *Store) Get(id string) (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// GetOrCreate returns the session for a key, lazily creating it. The second
// return value reports whether the session was created by this call.
func (s *Store) GetOrCreate(id string) (*domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, false
	}
	now := time.Now()
	sess := &domain.Session{
		ID:           id,
		CreatedAt:    now,
		LastActiveAt: now,
	}
	s.sessions[id] = sess
	return sess, true
}

// Delete removes a session.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports how many sessions are resident.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// StartEviction runs a background goroutine that periodically drops sessions
// idle for longer than ttl. A ttl of zero disables eviction.
func (s *Store) StartEviction(ctx context.Context, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(evictionInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session eviction worker started", "interval", evictionInterval, "ttl", ttl)
		for {
			select {
			case <-ticker.C:
				if n := s.evictIdle(ttl); n > 0 {
					slog.Info("Evicted idle sessions", "count", n, "resident", s.Len())
				}
			case <-ctx.Done():
				slog.Info("Session eviction worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (s *Store) evictIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, sess := range s.sessions {
		if sess.LastActiveAt.Before(cutoff) {
			delete(s.sessions, id)
			evicted++
		}
	}
	return evicted
}
