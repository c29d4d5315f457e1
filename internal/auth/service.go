// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package auth

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultMaxConcurrentHashes bounds how many password verifications may run
// at once. Argon2id is deliberately CPU- and memory-expensive, so a burst of
// login attempts must queue behind this gate instead of starving the
// goroutines serving unrelated requests.
const DefaultMaxConcurrentHashes = 8

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Identity is the successful outcome of Authenticate: who the caller now
// acts as, and with which authority.
type Identity struct {
	UserID   ulid.ULID
	Username string
	Role     string
}

// Service authenticates submitted credentials.
type Service struct {
	users    CredentialStore
	hasher   PasswordHasher
	hashGate chan struct{}
}

// NewService creates a new Service. maxConcurrentHashes caps in-flight
// password verifications; values < 1 fall back to DefaultMaxConcurrentHashes.
func NewService(users CredentialStore, hasher PasswordHasher, maxConcurrentHashes int) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("credential store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_INVALID_DEPENDENCY").Errorf("password hasher is required")
	}
	if maxConcurrentHashes < 1 {
		maxConcurrentHashes = DefaultMaxConcurrentHashes
	}
	return &Service{
		users:    users,
		hasher:   hasher,
		hashGate: make(chan struct{}, maxConcurrentHashes),
	}, nil
}

// Authenticate checks a username/password pair and returns the established
// Identity, or ErrInvalidCredentials. Unknown username, wrong password, and
// disabled account are indistinguishable to the caller. A failing credential
// store is a hard error, never a pass: infrastructure failures propagate as
// distinct wrapped errors and are the only other outcome.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Identity, error) {
	user, lookupErr := s.users.GetByUsername(ctx, username)

	// Determine which hash to verify against (real or dummy for timing
	// attack prevention).
	var targetHash string
	var userExists bool

	if lookupErr != nil {
		if errors.Is(lookupErr, ErrNotFound) {
			// Use dummy hash - still perform verification to maintain constant time.
			targetHash = dummyPasswordHash
			userExists = false
		} else {
			return nil, oops.Code("AUTH_LOOKUP_FAILED").
				With("operation", "get user by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = user.PasswordHash
		userExists = true
	}

	// Always verify, and always through the gate. Hashing runs to
	// completion once started; only the wait for a slot honors ctx.
	valid, err := s.verifyGated(ctx, password, targetHash)
	if err != nil {
		return nil, err
	}

	// The enabled check happens after verification so a disabled account
	// costs the same time as a wrong password.
	if !userExists || !valid || !user.Enabled {
		return nil, oops.Code("AUTH_INVALID_CREDENTIALS").Wrap(ErrInvalidCredentials)
	}

	return &Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	}, nil
}

// verifyGated runs hasher.Verify while holding a slot of the hash gate.
func (s *Service) verifyGated(ctx context.Context, password, hash string) (bool, error) {
	select {
	case s.hashGate <- struct{}{}:
	case <-ctx.Done():
		return false, oops.Code("AUTH_HASH_QUEUE_FULL").
			With("operation", "acquire hash slot").
			Wrap(ctx.Err())
	}
	defer func() { <-s.hashGate }()

	return s.hasher.Verify(password, hash), nil
}
