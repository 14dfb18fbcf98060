package book

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/reoring/patchbind"
	"github.com/reoring/patchbind/validation"
)

func newServer(t *testing.T) (*Repository, http.Handler) {
	t.Helper()
	repo := NewRepository()
	h := NewHandler(repo, nil, validation.New(), nil, nil)
	r := chi.NewRouter()
	h.Routes(r)
	return repo, r
}

func send(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func seed(repo *Repository) Book {
	b := Book{BookID: uuid.New(), Title: "A", Description: "d", Authors: []string{"X"}}
	repo.Save(b)
	return b
}

func TestPatch_OnlyTitle(t *testing.T) {
	repo, h := newServer(t)
	b := seed(repo)
	w := send(h, http.MethodPatch, "/book/"+b.BookID.String(), `{"title":"B"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got, _ := repo.Get(b.BookID)
	want := Book{BookID: b.BookID, Title: "B", Description: "d", Authors: []string{"X"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("stored book mismatch (-want +got):\n%s", diff)
	}
}

func TestPatch_QueryOverridesBody(t *testing.T) {
	repo, h := newServer(t)
	b := seed(repo)
	w := send(h, http.MethodPatch, "/book/"+b.BookID.String()+"?authors=C", `{"title":"B","authors":["Z"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got := decode[GetBookResponse](t, w)
	if got.Title != "B" || !cmp.Equal(got.Authors, []string{"C"}) || got.Description != "d" {
		t.Fatalf("unexpected response: %+v", got)
	}
}

func TestPatch_TouchedViolationRejected(t *testing.T) {
	repo, h := newServer(t)
	b := seed(repo)
	w := send(h, http.MethodPatch, "/book/"+b.BookID.String(), `{"authors":[]}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	out := decode[struct {
		Issues []patchbind.Issue `json:"issues"`
	}](t, w)
	if len(out.Issues) != 1 || out.Issues[0].Path != "/authors" {
		t.Fatalf("unexpected issues: %+v", out.Issues)
	}
}

func TestPatch_Missing(t *testing.T) {
	_, h := newServer(t)
	w := send(h, http.MethodPatch, "/book/"+uuid.NewString(), `{"title":"B"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestPut_RequiresEveryProperty(t *testing.T) {
	repo, h := newServer(t)
	b := seed(repo)
	w := send(h, http.MethodPut, "/book/"+b.BookID.String(), `{"title":"B"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	w = send(h, http.MethodPut, "/book/"+b.BookID.String(), `{"title":"B","description":"","authors":["Y"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got, _ := repo.Get(b.BookID)
	if got.Title != "B" || got.Description != "" || !cmp.Equal(got.Authors, []string{"Y"}) {
		t.Fatalf("unexpected stored book: %+v", got)
	}
}

func TestPostGetDelete(t *testing.T) {
	repo, h := newServer(t)
	w := send(h, http.MethodPost, "/book", `{"title":"Go","authors":["Rob"]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	created := decode[GetBookResponse](t, w)
	if w.Header().Get("Location") != "/book/"+created.BookID.String() {
		t.Fatalf("unexpected location %q", w.Header().Get("Location"))
	}

	w = send(h, http.MethodGet, "/book/"+strings.ToUpper(created.BookID.String()), "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d body=%s", w.Code, w.Body.String())
	}
	if got := decode[GetBookResponse](t, w); !cmp.Equal(got, created) {
		t.Fatalf("get mismatch: %s", cmp.Diff(created, got))
	}

	w = send(h, http.MethodDelete, "/book/"+created.BookID.String(), "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status=%d", w.Code)
	}
	if repo.Len() != 0 {
		t.Fatalf("expected empty repository")
	}
	w = send(h, http.MethodDelete, "/book/"+created.BookID.String(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status=%d", w.Code)
	}
}

func TestGet_BadID(t *testing.T) {
	_, h := newServer(t)
	w := send(h, http.MethodGet, "/book/not-a-uuid", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), patchbind.CodeInvalidType) {
		t.Fatalf("expected invalid_type, got %s", w.Body.String())
	}
}

func TestApply_KeepsUntouched(t *testing.T) {
	cur := Book{BookID: uuid.New(), Title: "A", Description: "d", Authors: []string{"X"}}
	req := PatchBookRequest{Description: "", Title: "ignored"}
	req.SetTouchedProperties([]string{"Description"})
	got := req.Apply(cur)
	want := Book{BookID: cur.BookID, Title: "A", Description: "", Authors: []string{"X"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("apply mismatch (-want +got):\n%s", diff)
	}
}
