package book

import (
	"slices"

	"github.com/google/uuid"

	"github.com/reoring/patchbind"
)

type GetBookRequest struct {
	BookID uuid.UUID `json:"bookId" validate:"required"`
}

type DeleteBookRequest struct {
	BookID uuid.UUID `json:"bookId" validate:"required"`
}

// GetBookResponse is the wire shape of a stored book.
type GetBookResponse struct {
	BookID      uuid.UUID `json:"bookId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Authors     []string  `json:"authors"`
}

func NewGetBookResponse(b Book) GetBookResponse {
	return GetBookResponse{BookID: b.BookID, Title: b.Title, Description: b.Description, Authors: b.Authors}
}

type PostBookRequest struct {
	Title       string   `json:"title" validate:"required,min=1,max=255"`
	Description string   `json:"description" validate:"max=255"`
	Authors     []string `json:"authors" validate:"required,min=1,dive,required"`
}

// ToBook creates a new entity with a fresh id.
func (r PostBookRequest) ToBook() Book {
	return Book{BookID: uuid.New(), Title: r.Title, Description: r.Description, Authors: r.Authors}
}

// PutBookRequest replaces a book. The id comes from the route.
type PutBookRequest struct {
	BookID      uuid.UUID `json:"bookId" validate:"required"`
	Title       string    `json:"title" validate:"required,min=1,max=255"`
	Description string    `json:"description" validate:"max=255"`
	Authors     []string  `json:"authors" validate:"required,min=1,dive,required"`
}

func (r PutBookRequest) ToBook() Book {
	return Book{BookID: r.BookID, Title: r.Title, Description: r.Description, Authors: r.Authors}
}

// PatchBookRequest updates only the properties the client sent.
type PatchBookRequest struct {
	patchbind.Patch
	BookID      uuid.UUID `json:"bookId" validate:"required"`
	Title       string    `json:"title" validate:"min=1,max=255"`
	Description string    `json:"description" validate:"max=255"`
	Authors     []string  `json:"authors" validate:"required,min=1,dive,required"`
}

// Apply returns b with the touched properties replaced.
func (r PatchBookRequest) Apply(b Book) Book {
	out := b.clone()
	if r.Touched("title") {
		out.Title = r.Title
	}
	if r.Touched("description") {
		out.Description = r.Description
	}
	if r.Touched("authors") {
		out.Authors = slices.Clone(r.Authors)
	}
	return out
}
