// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/shelfmark/shelfmark/internal/auth"
	authpg "github.com/shelfmark/shelfmark/internal/auth/postgres"
	"github.com/shelfmark/shelfmark/internal/books"
	bookpg "github.com/shelfmark/shelfmark/internal/books/postgres"
	"github.com/shelfmark/shelfmark/internal/store"
)

// setupPostgres starts a PostgreSQL container, runs migrations, and returns
// a connected pool.
func setupPostgres() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("shelfmark_test"),
		tcpostgres.WithUsername("shelfmark"),
		tcpostgres.WithPassword("shelfmark"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}

	return pool, cleanup, nil
}

var _ = Describe("Repositories", func() {
	var pool *pgxpool.Pool
	var cleanup func()

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgres()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("UserRepository", func() {
		It("round-trips a user through create and lookup", func() {
			ctx := context.Background()
			repo := authpg.NewUserRepository(pool)

			user, err := auth.NewUser("alice", "$argon2id$hash", "ROLE_USER")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Create(ctx, user)).To(Succeed())

			got, err := repo.GetByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(user.ID))
			Expect(got.PasswordHash).To(Equal(user.PasswordHash))
			Expect(got.Enabled).To(BeTrue())
		})

		It("treats usernames as case-sensitive", func() {
			ctx := context.Background()
			repo := authpg.NewUserRepository(pool)

			user, err := auth.NewUser("alice", "$argon2id$hash", "ROLE_USER")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Create(ctx, user)).To(Succeed())

			_, err = repo.GetByUsername(ctx, "Alice")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})

		It("rejects duplicate usernames", func() {
			ctx := context.Background()
			repo := authpg.NewUserRepository(pool)

			first, err := auth.NewUser("alice", "$argon2id$hash", "ROLE_USER")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Create(ctx, first)).To(Succeed())

			second, err := auth.NewUser("alice", "$argon2id$other", "ROLE_USER")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Create(ctx, second)).To(MatchError(authpg.ErrUsernameTaken))
		})

		It("toggles the enabled flag", func() {
			ctx := context.Background()
			repo := authpg.NewUserRepository(pool)

			user, err := auth.NewUser("alice", "$argon2id$hash", "ROLE_USER")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Create(ctx, user)).To(Succeed())

			Expect(repo.SetEnabled(ctx, user.ID, false)).To(Succeed())

			got, err := repo.GetByUsername(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Enabled).To(BeFalse())
		})
	})

	Describe("BookRepository", func() {
		price := func(v int) *int { return &v }

		It("round-trips a book through create and get", func() {
			ctx := context.Background()
			repo := bookpg.NewBookRepository(pool)

			book, err := books.New("Dune", "Herbert", price(12))
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Create(ctx, book)).To(Succeed())

			got, err := repo.Get(ctx, book.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Title).To(Equal("Dune"))
			Expect(*got.Price).To(Equal(12))
		})

		It("filters the listing by title, case-insensitively", func() {
			ctx := context.Background()
			repo := bookpg.NewBookRepository(pool)

			for _, title := range []string{"Dune", "Dune Messiah", "Hyperion"} {
				book, err := books.New(title, "Author", nil)
				Expect(err).NotTo(HaveOccurred())
				Expect(repo.Create(ctx, book)).To(Succeed())
			}

			items, total, err := repo.List(ctx, "dune", 0, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(items).To(HaveLen(2))
			Expect(total).To(BeEquivalentTo(2))
		})

		It("updates and deletes existing rows", func() {
			ctx := context.Background()
			repo := bookpg.NewBookRepository(pool)

			book, err := books.New("Dune", "Herbert", nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Create(ctx, book)).To(Succeed())

			book.Price = price(15)
			book.UpdatedAt = time.Now()
			Expect(repo.Update(ctx, book)).To(Succeed())

			got, err := repo.Get(ctx, book.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(*got.Price).To(Equal(15))

			Expect(repo.Delete(ctx, book.ID)).To(Succeed())
			_, err = repo.Get(ctx, book.ID)
			Expect(err).To(MatchError(books.ErrNotFound))
		})
	})
})
