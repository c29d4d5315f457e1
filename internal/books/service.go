// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package books

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Pagination bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Service provides catalog operations over a Repository.
type Service struct {
	repo Repository
}

// NewService creates a Service.
func NewService(repo Repository) (*Service, error) {
	if repo == nil {
		return nil, oops.Code("BOOKS_INVALID_CONFIG").Errorf("repository is required")
	}
	return &Service{repo: repo}, nil
}

// List returns one page of books, optionally filtered by a title substring.
// Page numbers start at zero; out-of-range sizes are clamped.
func (s *Service) List(ctx context.Context, q string, page, size int) (*Page, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	q = strings.TrimSpace(q)

	items, total, err := s.repo.List(ctx, q, page*size, size)
	if err != nil {
		return nil, oops.
			Code("BOOKS_LIST_FAILED").
			With("page", page).
			With("size", size).
			Wrapf(err, "listing books")
	}

	totalPages := int(total) / size
	if int(total)%size != 0 {
		totalPages++
	}

	return &Page{
		Items:         items,
		PageNumber:    page,
		Size:          size,
		TotalElements: total,
		TotalPages:    totalPages,
	}, nil
}

// Get retrieves a single book. Returns ErrNotFound on a miss.
func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Book, error) {
	book, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// Create validates and stores a new book.
func (s *Service) Create(ctx context.Context, title, author string, price *int) (*Book, error) {
	book, err := New(title, author, price)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, book); err != nil {
		return nil, oops.
			Code("BOOKS_CREATE_FAILED").
			With("book_id", book.ID.String()).
			Wrapf(err, "creating book")
	}
	return book, nil
}

// Update applies a partial update to an existing book. Nil patch fields keep
// their current value. Returns ErrNotFound when the book does not exist and
// a ValidationError when the patched result is invalid.
func (s *Service) Update(ctx context.Context, id ulid.ULID, patch Patch) (*Book, error) {
	book, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		book.Title = *patch.Title
	}
	if patch.Author != nil {
		book.Author = *patch.Author
	}
	if patch.Price != nil {
		book.Price = patch.Price
	}

	if err := book.Validate(); err != nil {
		return nil, err
	}

	book.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Delete removes a book. Returns ErrNotFound on a miss.
func (s *Service) Delete(ctx context.Context, id ulid.ULID) error {
	return s.repo.Delete(ctx, id)
}
