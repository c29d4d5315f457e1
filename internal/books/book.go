// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

// Package books provides the book catalog: the domain model, validation,
// and a paginated CRUD service.
package books

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Field length limits.
const (
	MaxTitleLength  = 120
	MaxAuthorLength = 80
)

// ErrNotFound is returned when a requested book does not exist.
var ErrNotFound = errors.New("book not found")

// Book is a catalog entry. Price is in whole currency units and optional.
type Book struct {
	ID        ulid.ULID
	Title     string
	Author    string
	Price     *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New creates a validated Book.
func New(title, author string, price *int) (*Book, error) {
	b := &Book{
		ID:     ulid.Make(),
		Title:  title,
		Author: author,
		Price:  price,
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks field constraints. Returns a ValidationError listing every
// violated field.
func (b *Book) Validate() error {
	v := ValidationError{Fields: map[string]string{}}

	if strings.TrimSpace(b.Title) == "" {
		v.Fields["title"] = "must not be blank"
	} else if len(b.Title) > MaxTitleLength {
		v.Fields["title"] = "must be at most 120 characters"
	}

	if strings.TrimSpace(b.Author) == "" {
		v.Fields["author"] = "must not be blank"
	} else if len(b.Author) > MaxAuthorLength {
		v.Fields["author"] = "must be at most 80 characters"
	}

	if b.Price != nil && *b.Price < 0 {
		v.Fields["price"] = "must be zero or positive"
	}

	if len(v.Fields) > 0 {
		return &v
	}
	return nil
}

// ValidationError carries per-field messages for invalid input.
type ValidationError struct {
	Fields map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	names := make([]string, 0, len(v.Fields))
	for f := range v.Fields {
		names = append(names, f)
	}
	return "validation error: " + strings.Join(names, ", ")
}

// Patch carries a partial update: nil fields are left untouched.
type Patch struct {
	Title  *string
	Author *string
	Price  *int
}

// Page is one slice of a paginated listing.
type Page struct {
	Items         []*Book
	PageNumber    int
	Size          int
	TotalElements int64
	TotalPages    int
}

// Repository manages book persistence.
type Repository interface {
	// List returns books whose title contains q (case-insensitive; empty q
	// matches all), together with the total number of matches.
	List(ctx context.Context, q string, offset, limit int) ([]*Book, int64, error)

	// Get retrieves a book by ID. Returns ErrNotFound on a miss.
	Get(ctx context.Context, id ulid.ULID) (*Book, error)

	// Create stores a new book.
	Create(ctx context.Context, book *Book) error

	// Update overwrites an existing book. Returns ErrNotFound on a miss.
	Update(ctx context.Context, book *Book) error

	// Delete removes a book. Returns ErrNotFound on a miss.
	Delete(ctx context.Context, id ulid.ULID) error
}
