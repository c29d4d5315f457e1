// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authpg "github.com/shelfmark/shelfmark/internal/auth/postgres"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestSeedUsersFromFile(t *testing.T) {
	t.Run("creates every listed user", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "alice", pgxmock.AnyArg(), "ROLE_ADMIN", true,
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "bob", pgxmock.AnyArg(), "ROLE_USER", false,
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		path := writeSeedFile(t, `
users:
  - username: alice
    password: wonderland
    role: ROLE_ADMIN
  - username: bob
    password: builder
    enabled: false
`)

		repo := authpg.NewUserRepository(mock)
		err = seedUsersFromFile(context.Background(), repo, path, discardLogger())
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing username is skipped", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(pgxmock.AnyArg(), "alice", pgxmock.AnyArg(), "ROLE_USER", true,
				pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		path := writeSeedFile(t, `
users:
  - username: alice
    password: wonderland
`)

		repo := authpg.NewUserRepository(mock)
		err = seedUsersFromFile(context.Background(), repo, path, discardLogger())
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing password fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		path := writeSeedFile(t, `
users:
  - username: alice
`)

		repo := authpg.NewUserRepository(mock)
		assert.Error(t, seedUsersFromFile(context.Background(), repo, path, discardLogger()))
	})

	t.Run("empty file fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		path := writeSeedFile(t, "users: []\n")

		repo := authpg.NewUserRepository(mock)
		assert.Error(t, seedUsersFromFile(context.Background(), repo, path, discardLogger()))
	})

	t.Run("missing file fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := authpg.NewUserRepository(mock)
		assert.Error(t, seedUsersFromFile(context.Background(), repo, "/nonexistent.yaml", discardLogger()))
	})
}
