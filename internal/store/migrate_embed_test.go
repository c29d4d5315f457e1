// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package store

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Every embedded migration must follow NNNNNN_name.(up|down).sql and each
// up migration needs a matching down migration.
func TestMigrationsFS_EmbeddedFiles(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	namePattern := regexp.MustCompile(`^\d{6}_[a-z0-9_]+\.(up|down)\.sql$`)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		assert.Regexp(t, namePattern, name)
		if strings.HasSuffix(name, ".up.sql") {
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		}
		if strings.HasSuffix(name, ".down.sql") {
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}

	for base := range ups {
		assert.True(t, downs[base], "missing down migration for %s", base)
	}
	for base := range downs {
		assert.True(t, ups[base], "missing up migration for %s", base)
	}
}
