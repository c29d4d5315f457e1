// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

// Package auth provides authentication primitives for Shelfmark.
//
// # Domain Types
//
// Domain types (User, Session) should be created using their respective
// constructors:
//   - NewUser - creates a User with validated username and password hash
//   - NewSession - creates a Session with a validated owner and token hash
//
// Direct struct initialization bypasses validation and may create invalid
// state. Store implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service authenticates submitted credentials against a CredentialStore and
// exposes exactly two outcomes: an Identity on success, or
// ErrInvalidCredentials. The reason for a refusal (unknown username, wrong
// password, disabled account) is not observable to callers.
//
// SessionManager mints, resolves, and invalidates server-side sessions
// carried by an opaque random token.
package auth
