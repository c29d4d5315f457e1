// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is the single refusal outcome of Service.Authenticate.
// Unknown username, wrong password, and disabled account all collapse into
// this error so that none of them can be told apart by a caller.
var ErrInvalidCredentials = errors.New("invalid username or password")
