// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

// Package access decides whether a request path may be served without an
// authenticated session.
package access

import (
	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Policy is the outcome of a gate decision.
type Policy int

const (
	// MustAuthenticate requires a valid session before the path is served.
	// It is the default for any path no rule matches.
	MustAuthenticate Policy = iota

	// Public paths are served without any session check.
	Public
)

// String returns the policy name.
func (p Policy) String() string {
	if p == Public {
		return "public"
	}
	return "must_authenticate"
}

// Rule maps a path pattern to a policy. Patterns use glob syntax with '/'
// as the separator, so "/css/**" matches any path below /css/ while "/login"
// matches only itself.
type Rule struct {
	Pattern string
	Policy  Policy
}

// compiledRule holds a rule pattern and its compiled glob.
type compiledRule struct {
	pattern string
	policy  Policy
	glob    glob.Glob
}

// Gate evaluates an ordered rule list against request paths.
//
// Thread-safety: the rule list is immutable after construction and requires
// no synchronization. Gate carries no session state; whether a session
// requirement is met is the caller's second, separate step.
type Gate struct {
	rules []compiledRule
}

// NewGate compiles the ordered rule list into a Gate. The order is
// significant: Decide returns the policy of the first matching rule.
// Returns an error if any pattern fails to compile (invalid glob syntax).
func NewGate(rules []Rule) (*Gate, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		g, err := glob.Compile(r.Pattern, '/')
		if err != nil {
			return nil, oops.In("access").
				Code("INVALID_PATH_PATTERN").
				With("pattern", r.Pattern).
				Wrap(err)
		}
		compiled = append(compiled, compiledRule{pattern: r.Pattern, policy: r.Policy, glob: g})
	}
	return &Gate{rules: compiled}, nil
}

// NewDefaultGate creates a Gate with the default rules.
//
// Panics if the default patterns are invalid (configuration bug).
func NewDefaultGate() *Gate {
	gate, err := NewGate(DefaultRules())
	if err != nil {
		// DefaultRules() patterns are hardcoded and should always be valid.
		// If they fail to compile, it's a code bug that should fail fast.
		panic("invalid pattern in DefaultRules: " + err.Error())
	}
	return gate
}

// DefaultRules returns the rule set for the application: the login page, the
// error page, and static assets are public; everything else must
// authenticate.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/login", Policy: Public},
		{Pattern: "/error", Policy: Public},
		{Pattern: "/css/**", Policy: Public},
		{Pattern: "/js/**", Policy: Public},
	}
}

// Decide returns the policy for a request path: the policy of the first
// matching rule, or MustAuthenticate when no rule matches (deny-by-default).
// Pure function of the path; no side effects.
func (g *Gate) Decide(path string) Policy {
	for _, r := range g.rules {
		if r.glob.Match(path) {
			return r.policy
		}
	}
	return MustAuthenticate
}
