// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark/internal/auth"
)

// extractField pulls the value from a "key: value" output line.
func extractField(t *testing.T, output, key string) string {
	t.Helper()
	for _, line := range strings.Split(output, "\n") {
		if rest, found := strings.CutPrefix(line, key+": "); found {
			return rest
		}
	}
	t.Fatalf("output missing %q field: %s", key, output)
	return ""
}

func TestHashPassword_Argument(t *testing.T) {
	cmd := NewHashPasswordCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"correct horse"})

	require.NoError(t, cmd.Execute())

	hash := extractField(t, buf.String(), "hash")
	assert.True(t, auth.NewArgon2idHasher().Verify("correct horse", hash))
}

func TestHashPassword_Stdin(t *testing.T) {
	cmd := NewHashPasswordCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetIn(strings.NewReader("from-stdin\n"))
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())

	hash := extractField(t, buf.String(), "hash")
	assert.True(t, auth.NewArgon2idHasher().Verify("from-stdin", hash))
}

func TestHashPassword_Generate(t *testing.T) {
	cmd := NewHashPasswordCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--generate", "20"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	password := extractField(t, output, "password")
	hash := extractField(t, output, "hash")

	assert.Len(t, password, 20)
	assert.True(t, auth.NewArgon2idHasher().Verify(password, hash))
}

func TestHashPassword_EmptyFails(t *testing.T) {
	cmd := NewHashPasswordCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetIn(strings.NewReader("\n"))
	cmd.SetArgs(nil)

	assert.Error(t, cmd.Execute())
}
