// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

// Package postgres provides the PostgreSQL-backed book repository.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/shelfmark/shelfmark/internal/books"
)

// querier is the subset of pgxpool.Pool used by the repository. Satisfied by
// pgxpool.Pool and by pgxmock pools in tests.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// BookRepository implements books.Repository using PostgreSQL.
type BookRepository struct {
	pool querier
}

// NewBookRepository creates a new BookRepository.
func NewBookRepository(pool querier) *BookRepository {
	return &BookRepository{pool: pool}
}

// List returns books whose title contains q, newest first, plus the total
// match count. An empty q matches everything.
func (r *BookRepository) List(ctx context.Context, q string, offset, limit int) ([]*books.Book, int64, error) {
	pattern := "%" + q + "%"

	var total int64
	err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM books WHERE title ILIKE $1
	`, pattern).Scan(&total)
	if err != nil {
		return nil, 0, oops.Code("BOOK_LIST_FAILED").
			With("operation", "count books").
			Wrap(err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, title, author, price, created_at, updated_at
		FROM books
		WHERE title ILIKE $1
		ORDER BY created_at DESC, id DESC
		OFFSET $2 LIMIT $3
	`, pattern, offset, limit)
	if err != nil {
		return nil, 0, oops.Code("BOOK_LIST_FAILED").
			With("operation", "select books").
			Wrap(err)
	}
	defer rows.Close()

	var items []*books.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, oops.Code("BOOK_LIST_FAILED").
			With("operation", "iterate books").
			Wrap(err)
	}

	return items, total, nil
}

// Get retrieves a book by ID.
func (r *BookRepository) Get(ctx context.Context, id ulid.ULID) (*books.Book, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, author, price, created_at, updated_at
		FROM books
		WHERE id = $1
	`, id.String())

	book, err := scanBook(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, books.ErrNotFound
		}
		return nil, oops.Code("BOOK_GET_FAILED").
			With("operation", "select book").
			With("book_id", id.String()).
			Wrap(err)
	}
	return book, nil
}

// Create stores a new book.
func (r *BookRepository) Create(ctx context.Context, book *books.Book) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO books (id, title, author, price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		book.ID.String(),
		book.Title,
		book.Author,
		book.Price,
		book.CreatedAt,
		book.UpdatedAt,
	)
	if err != nil {
		return oops.Code("BOOK_CREATE_FAILED").
			With("operation", "insert book").
			With("book_id", book.ID.String()).
			Wrap(err)
	}
	return nil
}

// Update overwrites an existing book.
func (r *BookRepository) Update(ctx context.Context, book *books.Book) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE books
		SET title = $2, author = $3, price = $4, updated_at = $5
		WHERE id = $1
	`,
		book.ID.String(),
		book.Title,
		book.Author,
		book.Price,
		book.UpdatedAt,
	)
	if err != nil {
		return oops.Code("BOOK_UPDATE_FAILED").
			With("operation", "update book").
			With("book_id", book.ID.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return books.ErrNotFound
	}
	return nil
}

// Delete removes a book.
func (r *BookRepository) Delete(ctx context.Context, id ulid.ULID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM books WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("BOOK_DELETE_FAILED").
			With("operation", "delete book").
			With("book_id", id.String()).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return books.ErrNotFound
	}
	return nil
}

// scanBook reads one book row. Database misses surface as the raw
// pgx.ErrNoRows so callers can map them.
func scanBook(row pgx.Row) (*books.Book, error) {
	var (
		idStr     string
		book      books.Book
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&idStr, &book.Title, &book.Author, &book.Price, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("BOOK_SCAN_FAILED").
			With("book_id", idStr).
			Wrapf(err, "parsing book id")
	}

	book.ID = id
	book.CreatedAt = createdAt
	book.UpdatedAt = updatedAt
	return &book, nil
}
