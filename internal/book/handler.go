package book

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reoring/patchbind"
	"github.com/reoring/patchbind/middleware"
	chimw "github.com/reoring/patchbind/middleware/chi"
)

// Handler serves the Book API.
type Handler struct {
	repo *Repository
	cfg  middleware.Config
	log  *slog.Logger
}

// NewHandler wires repo to the binding pipeline. opt nil selects
// middleware.DefaultBindOpt.
func NewHandler(repo *Repository, b *patchbind.Binder, v patchbind.Validator, opt *patchbind.BindOpt, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		repo: repo,
		cfg:  middleware.Config{Binder: b, Validator: v, Route: chimw.RouteValues, Opt: opt},
		log:  log,
	}
}

// Routes registers the book endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/book", func(r chi.Router) {
		r.Post("/", h.post)
		r.Get("/{bookId}", h.get)
		r.Put("/{bookId}", h.put)
		r.Patch("/{bookId}", h.patch)
		r.Delete("/{bookId}", h.delete)
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	in, ok := middleware.Run[GetBookRequest](w, r, h.cfg)
	if !ok {
		return
	}
	b, found := h.repo.Get(in.Value.BookID)
	if !found {
		notFound(w)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, NewGetBookResponse(b))
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	in, ok := middleware.Run[PostBookRequest](w, r, h.cfg)
	if !ok {
		return
	}
	b := in.Value.ToBook()
	h.repo.Save(b)
	h.log.Info("book created", "bookId", b.BookID)
	w.Header().Set("Location", "/book/"+b.BookID.String())
	middleware.WriteJSON(w, http.StatusCreated, NewGetBookResponse(b))
}

// put replaces the stored book, creating it when absent.
func (h *Handler) put(w http.ResponseWriter, r *http.Request) {
	in, ok := middleware.Run[PutBookRequest](w, r, h.cfg)
	if !ok {
		return
	}
	b := in.Value.ToBook()
	h.repo.Save(b)
	h.log.Info("book replaced", "bookId", b.BookID)
	middleware.WriteJSON(w, http.StatusOK, NewGetBookResponse(b))
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	in, ok := middleware.Run[PatchBookRequest](w, r, h.cfg)
	if !ok {
		return
	}
	cur, found := h.repo.Get(in.Value.BookID)
	if !found {
		notFound(w)
		return
	}
	b := in.Value.Apply(cur)
	h.repo.Save(b)
	h.log.Info("book patched", "bookId", b.BookID, "properties", in.Value.TouchedProperties())
	middleware.WriteJSON(w, http.StatusOK, NewGetBookResponse(b))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	in, ok := middleware.Run[DeleteBookRequest](w, r, h.cfg)
	if !ok {
		return
	}
	if !h.repo.Delete(in.Value.BookID) {
		notFound(w)
		return
	}
	h.log.Info("book deleted", "bookId", in.Value.BookID)
	w.WriteHeader(http.StatusNoContent)
}

func notFound(w http.ResponseWriter) {
	middleware.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "book not found"})
}
