// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Shelfmark Contributors

package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/shelfmark/shelfmark/internal/books"
	"github.com/shelfmark/shelfmark/pkg/errutil"
)

// bookDTO is the JSON shape of a catalog entry.
type bookDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Price     *int      `json:"price"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// bookPageDTO is the JSON shape of one listing page.
type bookPageDTO struct {
	Content       []bookDTO `json:"content"`
	Page          int       `json:"page"`
	Size          int       `json:"size"`
	TotalElements int64     `json:"totalElements"`
	TotalPages    int       `json:"totalPages"`
}

// bookInput is the JSON body for create and patch requests. Pointers
// distinguish absent fields from zero values.
type bookInput struct {
	Title  *string `json:"title"`
	Author *string `json:"author"`
	Price  *int    `json:"price"`
}

func toBookDTO(b *books.Book) bookDTO {
	return bookDTO{
		ID:        b.ID.String(),
		Title:     b.Title,
		Author:    b.Author,
		Price:     b.Price,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// handleBookList serves GET /api/books with optional q, page, and size
// query parameters.
func (a *App) handleBookList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	size, _ := strconv.Atoi(query.Get("size"))

	result, err := a.books.List(r.Context(), query.Get("q"), page, size)
	if err != nil {
		a.writeBookError(w, err)
		return
	}

	content := make([]bookDTO, 0, len(result.Items))
	for _, b := range result.Items {
		content = append(content, toBookDTO(b))
	}

	a.writeJSON(w, http.StatusOK, bookPageDTO{
		Content:       content,
		Page:          result.PageNumber,
		Size:          result.Size,
		TotalElements: result.TotalElements,
		TotalPages:    result.TotalPages,
	})
}

// handleBookGet serves GET /api/books/{id}.
func (a *App) handleBookGet(w http.ResponseWriter, r *http.Request) {
	id, ok := a.bookID(w, r)
	if !ok {
		return
	}

	book, err := a.books.Get(r.Context(), id)
	if err != nil {
		a.writeBookError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toBookDTO(book))
}

// handleBookCreate serves POST /api/books.
func (a *App) handleBookCreate(w http.ResponseWriter, r *http.Request) {
	var input bookInput
	if !a.decodeJSON(w, r, &input) {
		return
	}

	var title, author string
	if input.Title != nil {
		title = *input.Title
	}
	if input.Author != nil {
		author = *input.Author
	}

	book, err := a.books.Create(r.Context(), title, author, input.Price)
	if err != nil {
		a.writeBookError(w, err)
		return
	}

	w.Header().Set("Location", "/api/books/"+book.ID.String())
	a.writeJSON(w, http.StatusCreated, toBookDTO(book))
}

// handleBookPatch serves PATCH /api/books/{id}. Absent fields keep their
// current values.
func (a *App) handleBookPatch(w http.ResponseWriter, r *http.Request) {
	id, ok := a.bookID(w, r)
	if !ok {
		return
	}

	var input bookInput
	if !a.decodeJSON(w, r, &input) {
		return
	}

	book, err := a.books.Update(r.Context(), id, books.Patch{
		Title:  input.Title,
		Author: input.Author,
		Price:  input.Price,
	})
	if err != nil {
		a.writeBookError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, toBookDTO(book))
}

// handleBookDelete serves DELETE /api/books/{id}.
func (a *App) handleBookDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := a.bookID(w, r)
	if !ok {
		return
	}

	if err := a.books.Delete(r.Context(), id); err != nil {
		a.writeBookError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bookID parses the {id} path segment. Malformed IDs get the same 404 body
// as missing books so IDs are not probeable by format.
func (a *App) bookID(w http.ResponseWriter, r *http.Request) (ulid.ULID, bool) {
	id, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		a.writeJSON(w, http.StatusNotFound, map[string]string{"message": "book not found"})
		return ulid.ULID{}, false
	}
	return id, true
}

func (a *App) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		a.writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed request body"})
		return false
	}
	return true
}

// writeBookError maps service errors to API responses: validation failures
// become a 400 with per-field messages, misses a 404, anything else a 500.
func (a *App) writeBookError(w http.ResponseWriter, err error) {
	var verr *books.ValidationError
	switch {
	case errors.As(err, &verr):
		a.writeJSON(w, http.StatusBadRequest, map[string]any{
			"message": "validation error",
			"errors":  verr.Fields,
		})
	case errors.Is(err, books.ErrNotFound):
		a.writeJSON(w, http.StatusNotFound, map[string]string{"message": "book not found"})
	default:
		errutil.LogError(a.logger, "book request failed", err)
		a.writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
	}
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("writing json response", "error", err)
	}
}
