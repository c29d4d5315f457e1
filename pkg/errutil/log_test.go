// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark/pkg/errutil"
)

func TestLogError(t *testing.T) {
	t.Run("oops error contributes code and context", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		err := oops.Code("BOOKS_LIST_FAILED").
			With("page", 2).
			Errorf("listing books")

		errutil.LogError(logger, "request failed", err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "ERROR", entry["level"])
		assert.Equal(t, "request failed", entry["msg"])
		assert.Equal(t, "BOOKS_LIST_FAILED", entry["code"])
	})

	t.Run("plain error logs as-is", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		errutil.LogError(logger, "request failed", errors.New("connection refused"))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Contains(t, entry["error"], "connection refused")
		_, hasCode := entry["code"]
		assert.False(t, hasCode)
	})

	t.Run("nil error logs nothing", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))

		errutil.LogError(logger, "request failed", nil)
		assert.Zero(t, buf.Len())
	})
}
