// Package book is the sample Book API: an entity, an in-memory repository,
// request DTOs bound by patchbind and chi handlers.
package book

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Book is the stored entity.
type Book struct {
	BookID      uuid.UUID `json:"bookId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Authors     []string  `json:"authors"`
}

func (b Book) clone() Book {
	b.Authors = slices.Clone(b.Authors)
	return b
}

// Repository keeps books in memory. It is safe for concurrent use.
type Repository struct {
	mu    sync.RWMutex
	books map[uuid.UUID]Book
}

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{books: make(map[uuid.UUID]Book)}
}

// Get returns the book with id.
func (r *Repository) Get(id uuid.UUID) (Book, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.books[id]
	if !ok {
		return Book{}, false
	}
	return b.clone(), true
}

// Save adds or replaces b.
func (r *Repository) Save(b Book) {
	r.mu.Lock()
	r.books[b.BookID] = b.clone()
	r.mu.Unlock()
}

// Delete removes the book with id and reports whether it existed.
func (r *Repository) Delete(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return false
	}
	delete(r.books, id)
	return true
}

// Len returns the number of stored books.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.books)
}
