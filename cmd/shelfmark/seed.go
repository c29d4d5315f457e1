// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/shelfmark/shelfmark/internal/auth"
	authpg "github.com/shelfmark/shelfmark/internal/auth/postgres"
	"github.com/shelfmark/shelfmark/internal/config"
	"github.com/shelfmark/shelfmark/internal/store"
)

// Default timeout for seed command.
const defaultSeedTimeout = 30 * time.Second

// seedUser is one entry in a seed file.
type seedUser struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
	Enabled  *bool  `yaml:"enabled"`
}

// seedFileSpec is the shape of a YAML seed file.
type seedFileSpec struct {
	Users []seedUser `yaml:"users"`
}

// seedOptions holds configuration for the seed command.
type seedOptions struct {
	file    string
	timeout time.Duration
}

// NewSeedCmd creates the seed subcommand.
func NewSeedCmd() *cobra.Command {
	opts := &seedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create initial users",
		Long: `Creates user accounts from a YAML file, or a default account
(user/password) when no file is given. This command is idempotent -
existing usernames are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "YAML file of users to create")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultSeedTimeout, "timeout for database operations")

	return cmd
}

func runSeed(cmd *cobra.Command, _ []string, opts *seedOptions) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
	defer cancel()

	cmd.Println("Connecting to database...")
	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	repo := authpg.NewUserRepository(pool)
	logger := slog.Default()

	if opts.file != "" {
		return seedUsersFromFile(ctx, repo, opts.file, logger)
	}

	created, err := seedUsers(ctx, repo, []seedUser{
		{Username: "user", Password: "password", Role: "ROLE_USER"},
	}, logger)
	if err != nil {
		return err
	}
	cmd.Printf("seeded %d user(s)\n", created)
	return nil
}

// seedUsersFromFile creates every user listed in a YAML seed file, skipping
// usernames that already exist.
func seedUsersFromFile(ctx context.Context, repo *authpg.UserRepository, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return oops.Code("SEED_FAILED").With("path", path).Wrapf(err, "reading seed file")
	}

	var spec seedFileSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return oops.Code("SEED_FAILED").With("path", path).Wrapf(err, "parsing seed file")
	}
	if len(spec.Users) == 0 {
		return oops.Code("SEED_FAILED").With("path", path).Errorf("seed file lists no users")
	}

	created, err := seedUsers(ctx, repo, spec.Users, logger)
	if err != nil {
		return err
	}
	logger.Info("seed completed", slog.String("path", path), slog.Int("created", created))
	return nil
}

func seedUsers(ctx context.Context, repo *authpg.UserRepository, entries []seedUser, logger *slog.Logger) (int, error) {
	hasher := auth.NewArgon2idHasher()
	created := 0

	for _, entry := range entries {
		if entry.Password == "" {
			return created, oops.Code("SEED_FAILED").
				With("username", entry.Username).
				Errorf("seed user has no password")
		}

		role := entry.Role
		if role == "" {
			role = "ROLE_USER"
		}

		hash, err := hasher.Hash(entry.Password)
		if err != nil {
			return created, oops.Code("SEED_FAILED").
				With("username", entry.Username).
				Wrapf(err, "hashing seed password")
		}

		user, err := auth.NewUser(entry.Username, hash, role)
		if err != nil {
			return created, oops.Code("SEED_FAILED").
				With("username", entry.Username).
				Wrap(err)
		}
		if entry.Enabled != nil {
			user.Enabled = *entry.Enabled
		}

		if err := repo.Create(ctx, user); err != nil {
			if errors.Is(err, authpg.ErrUsernameTaken) {
				logger.Info("seed user already exists, skipping",
					slog.String("username", entry.Username))
				continue
			}
			return created, err
		}
		created++
		logger.Info("seed user created", slog.String("username", entry.Username))
	}

	return created, nil
}
