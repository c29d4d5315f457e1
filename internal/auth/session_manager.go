// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// SessionManager coordinates session lifecycle: a fresh token on every
// login, fail-closed resolution, and irreversible invalidation.
type SessionManager struct {
	store SessionStore
	ttl   time.Duration
}

// NewSessionManager creates a SessionManager. ttl bounds session lifetime;
// zero means sessions never expire and live until explicit logout. Negative
// values are rejected.
func NewSessionManager(store SessionStore, ttl time.Duration) (*SessionManager, error) {
	if store == nil {
		return nil, oops.Code("SESSION_INVALID_DEPENDENCY").Errorf("session store is required")
	}
	if ttl < 0 {
		return nil, oops.Code("SESSION_INVALID_TTL").With("ttl", ttl).Errorf("session ttl cannot be negative")
	}
	return &SessionManager{store: store, ttl: ttl}, nil
}

// Create mints a new session for the identity and returns the plaintext
// token together with the stored session. The token is freshly generated on
// every call; a pre-login token is never promoted, which is the
// session-fixation defense.
func (m *SessionManager) Create(ctx context.Context, identity *Identity) (string, *Session, error) {
	if identity == nil {
		return "", nil, oops.Code("SESSION_INVALID_USER").Errorf("identity is required")
	}

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return "", nil, err
	}

	csrfToken, _, err := GenerateSessionToken()
	if err != nil {
		return "", nil, err
	}

	var expiresAt time.Time
	if m.ttl > 0 {
		expiresAt = time.Now().Add(m.ttl)
	}

	session, err := NewSession(identity.UserID, identity.Username, []string{identity.Role}, tokenHash, csrfToken, expiresAt)
	if err != nil {
		return "", nil, err
	}

	if err := m.store.Create(ctx, session); err != nil {
		return "", nil, oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	return token, session, nil
}

// Resolve maps a client-presented token to its live session. Unknown,
// invalidated, and expired tokens all yield ErrNotFound; an expired session
// is deleted on sight so the outcome is indistinguishable from explicit
// invalidation. Also refreshes the LastSeenAt timestamp.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, oops.Code("SESSION_INVALID").Wrap(ErrNotFound)
	}

	tokenHash := HashSessionToken(token)

	session, err := m.store.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("SESSION_INVALID").Wrap(ErrNotFound)
		}
		return nil, oops.Code("SESSION_RESOLVE_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.IsExpired() {
		_ = m.store.DeleteByTokenHash(ctx, tokenHash) //nolint:errcheck // Best effort, the session is dead either way
		return nil, oops.Code("SESSION_EXPIRED").Wrap(ErrNotFound)
	}

	// Update last seen timestamp (best effort, resolution succeeds regardless).
	_ = m.store.UpdateLastSeen(ctx, session.ID, time.Now()) //nolint:errcheck

	return session, nil
}

// Invalidate removes the session bound to the token, permanently. Every
// later Resolve of the same token fails; invalidating an already-dead token
// is a no-op.
func (m *SessionManager) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := m.store.DeleteByTokenHash(ctx, HashSessionToken(token)); err != nil {
		return oops.Code("SESSION_INVALIDATE_FAILED").
			With("operation", "delete session by token hash").
			Wrap(err)
	}
	return nil
}

// ActiveSessions returns the number of live sessions in the store.
func (m *SessionManager) ActiveSessions(ctx context.Context) (int, error) {
	n, err := m.store.Count(ctx)
	if err != nil {
		return 0, oops.Code("SESSION_COUNT_FAILED").Wrap(err)
	}
	return n, nil
}

// RunSweeper deletes expired sessions every interval until ctx is done.
// Intended to run on its own goroutine for the lifetime of the process.
func (m *SessionManager) RunSweeper(ctx context.Context, interval time.Duration, logger *slog.Logger) {
	if m.ttl == 0 || interval <= 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := m.store.DeleteExpired(ctx)
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if deleted > 0 {
				logger.Debug("swept expired sessions", "deleted", deleted)
			}
		}
	}
}
