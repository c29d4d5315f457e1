// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session token configuration.
const (
	SessionTokenBytes = 32 // 32 bytes = 64 hex chars

	// DefaultSessionTTL is used when no lifetime is configured. A zero TTL
	// disables expiry entirely; sessions then live until explicit logout.
	DefaultSessionTTL = 12 * time.Hour
)

// Session is server-held login state bound to an opaque client token.
// Authorities are a snapshot taken at creation time, not recomputed on use.
type Session struct {
	ID          ulid.ULID
	UserID      ulid.ULID
	Username    string
	Authorities []string
	TokenHash   string
	CSRFToken   string
	ExpiresAt   time.Time // zero means no expiry
	CreatedAt   time.Time
	LastSeenAt  time.Time
}

// NewSession creates a validated Session instance. expiresAt may be the zero
// time for a session without expiry.
func NewSession(userID ulid.ULID, username string, authorities []string, tokenHash, csrfToken string, expiresAt time.Time) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	if username == "" {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("username cannot be empty")
	}
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if csrfToken == "" {
		return nil, oops.Code("SESSION_INVALID_CSRF").Errorf("csrf token cannot be empty")
	}

	now := time.Now()
	granted := make([]string, len(authorities))
	copy(granted, authorities)

	return &Session{
		ID:          ulid.Make(),
		UserID:      userID,
		Username:    username,
		Authorities: granted,
		TokenHash:   tokenHash,
		CSRFToken:   csrfToken,
		ExpiresAt:   expiresAt,
		CreatedAt:   now,
		LastSeenAt:  now,
	}, nil
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return s.IsExpiredAt(time.Now())
}

// IsExpiredAt returns true if the session would be expired at the given time.
// Useful for testing with deterministic time values.
func (s *Session) IsExpiredAt(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && t.After(s.ExpiresAt)
}

// GenerateSessionToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token is sent to the client; only the hash is stored.
func GenerateSessionToken() (token, hash string, err error) {
	tokenBytes := make([]byte, SessionTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			With("requested_bytes", SessionTokenBytes).
			Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashSessionToken(token)

	return token, hash, nil
}

// HashSessionToken computes the SHA256 hash of a session token.
// This is the form under which tokens are keyed in the store.
func HashSessionToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// VerifySessionToken checks if the plaintext token matches the stored hash.
// Uses constant-time comparison to prevent timing attacks.
func VerifySessionToken(token, hash string) (bool, error) {
	if token == "" {
		return false, oops.Code("SESSION_TOKEN_EMPTY").Errorf("session token cannot be empty")
	}
	if hash == "" {
		return false, oops.Code("SESSION_HASH_EMPTY").Errorf("stored hash cannot be empty")
	}
	computed := HashSessionToken(token)
	// Both are hex-encoded SHA256 hashes (64 chars), use constant-time compare
	return subtle.ConstantTimeCompare([]byte(computed), []byte(hash)) == 1, nil
}

// SessionStore manages session persistence. The store is shared mutable
// state accessed concurrently by every request; implementations must make
// Create/GetByTokenHash/Delete safe to interleave, and a Delete racing a
// GetByTokenHash for the same token must never resurrect the session.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByTokenHash retrieves a session by its token hash.
	// Returns ErrNotFound for unknown tokens.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Session, error)

	// UpdateLastSeen updates the LastSeenAt timestamp for a session.
	UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error

	// DeleteByTokenHash removes a session by its token hash. Deleting an
	// unknown token is not an error.
	DeleteByTokenHash(ctx context.Context, tokenHash string) error

	// DeleteExpired removes all expired sessions and returns the count of
	// deleted records.
	DeleteExpired(ctx context.Context) (int64, error)

	// Count returns the number of live sessions.
	Count(ctx context.Context) (int, error)
}
