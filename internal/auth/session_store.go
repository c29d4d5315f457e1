// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MemorySessionStore implements SessionStore with an in-process map guarded
// by a RWMutex. Sessions are keyed by token hash; a token maps to at most
// one live session. The store is created at startup and torn down with the
// process - there is no persistence across restarts, matching the
// container-session semantics of the system this replaces.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session // keyed by TokenHash
}

// NewMemorySessionStore creates an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*Session),
	}
}

// copySessionRecord returns a defensive copy so callers cannot mutate stored
// state through the returned pointer.
func copySessionRecord(s *Session) *Session {
	authorities := make([]string, len(s.Authorities))
	copy(authorities, s.Authorities)

	out := *s
	out.Authorities = authorities
	return &out
}

// Create stores a new session.
func (st *MemorySessionStore) Create(_ context.Context, session *Session) error {
	if session == nil {
		return oops.Code("SESSION_INVALID").Errorf("session is required")
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if _, exists := st.sessions[session.TokenHash]; exists {
		// 256-bit random tokens do not collide in practice; a duplicate
		// means the caller reused a token, which would break the
		// one-token-one-session invariant.
		return oops.Code("SESSION_TOKEN_REUSED").Errorf("token hash already bound to a live session")
	}

	st.sessions[session.TokenHash] = copySessionRecord(session)
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (st *MemorySessionStore) GetByTokenHash(_ context.Context, tokenHash string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	session, ok := st.sessions[tokenHash]
	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(ErrNotFound)
	}
	return copySessionRecord(session), nil
}

// UpdateLastSeen updates the LastSeenAt timestamp for a session.
func (st *MemorySessionStore) UpdateLastSeen(_ context.Context, id ulid.ULID, lastSeen time.Time) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, session := range st.sessions {
		if session.ID == id {
			session.LastSeenAt = lastSeen
			return nil
		}
	}
	return oops.Code("SESSION_NOT_FOUND").With("id", id.String()).Wrap(ErrNotFound)
}

// DeleteByTokenHash removes a session by its token hash. Once the delete
// returns, every later GetByTokenHash for the hash misses; the map entry is
// gone before the lock is released, so there is no stale "valid" read after
// invalidation completes.
func (st *MemorySessionStore) DeleteByTokenHash(_ context.Context, tokenHash string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	delete(st.sessions, tokenHash)
	return nil
}

// DeleteExpired removes all expired sessions and returns the count.
func (st *MemorySessionStore) DeleteExpired(_ context.Context) (int64, error) {
	now := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	var deleted int64
	for hash, session := range st.sessions {
		if session.IsExpiredAt(now) {
			delete(st.sessions, hash)
			deleted++
		}
	}
	return deleted, nil
}

// Count returns the number of live sessions.
func (st *MemorySessionStore) Count(_ context.Context) (int, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions), nil
}

// Compile-time interface check.
var _ SessionStore = (*MemorySessionStore)(nil)
