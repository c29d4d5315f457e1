// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package web

import (
	"context"

	"github.com/shelfmark/shelfmark/internal/auth"
)

type contextKey int

const sessionKey contextKey = iota

// withSession stores the resolved session on the request context.
func withSession(ctx context.Context, sess *auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// sessionFrom returns the session attached by the auth middleware, or nil on
// public paths.
func sessionFrom(ctx context.Context) *auth.Session {
	sess, _ := ctx.Value(sessionKey).(*auth.Session)
	return sess
}
