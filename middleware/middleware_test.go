package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"

	"github.com/reoring/patchbind"
	"github.com/reoring/patchbind/middleware"
	"github.com/reoring/patchbind/validation"
)

type widget struct {
	patchbind.Patch
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required,min=2"`
	Size int    `json:"size" validate:"gte=1"`
}

type payload struct {
	Issues []patchbind.Issue `json:"issues"`
}

func newMux(t *testing.T, seen *patchbind.Bound[widget]) http.Handler {
	t.Helper()
	mw := middleware.Bind[widget](middleware.Config{
		Validator: validation.New(),
		Route:     func(r *http.Request) map[string]string { return map[string]string{"id": r.PathValue("id")} },
	})
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		bd, ok := middleware.BoundFromContext[widget](r.Context())
		if !ok {
			t.Errorf("bound value missing from context")
		}
		*seen = bd
		w.WriteHeader(http.StatusNoContent)
	})
	mux := http.NewServeMux()
	mux.Handle("/widgets/{id}", mw(final))
	return mux
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func decodeIssues(t *testing.T, w *httptest.ResponseRecorder) []patchbind.Issue {
	t.Helper()
	var p payload
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return p.Issues
}

func TestBind_PatchSuppressesUntouched(t *testing.T) {
	var seen patchbind.Bound[widget]
	h := newMux(t, &seen)
	w := do(h, http.MethodPatch, "/widgets/w-1", `{"name":"ab"}`)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if diff := cmp.Diff([]string{"id", "name"}, seen.Touched.Names()); diff != "" {
		t.Fatalf("touched mismatch (-want +got):\n%s", diff)
	}
	if seen.Value.ID != "w-1" || seen.Value.Name != "ab" {
		t.Fatalf("unexpected value: %+v", seen.Value)
	}
	if diff := cmp.Diff([]string{"id", "name"}, seen.Value.TouchedProperties()); diff != "" {
		t.Fatalf("model touched list mismatch (-want +got):\n%s", diff)
	}
}

func TestBind_PutReportsAllIssues(t *testing.T) {
	var seen patchbind.Bound[widget]
	h := newMux(t, &seen)
	w := do(h, http.MethodPut, "/widgets/w-1", `{"name":"ab"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	iss := decodeIssues(t, w)
	if len(iss) != 1 || iss[0].Path != "/size" || iss[0].Code != patchbind.CodeTooSmall {
		t.Fatalf("unexpected issues: %+v", iss)
	}
}

func TestBind_PatchStillReportsTouchedViolations(t *testing.T) {
	var seen patchbind.Bound[widget]
	h := newMux(t, &seen)
	w := do(h, http.MethodPatch, "/widgets/w-1?name=a", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	iss := decodeIssues(t, w)
	if len(iss) != 1 || iss[0].Path != "/name" || iss[0].Code != patchbind.CodeTooShort {
		t.Fatalf("unexpected issues: %+v", iss)
	}
}

func TestBind_BindErrors(t *testing.T) {
	var seen patchbind.Bound[widget]
	h := newMux(t, &seen)
	cases := []struct {
		name, body, code, path string
	}{
		{"malformed", `{"name":`, patchbind.CodeParseError, "/"},
		{"duplicate", `{"name":"ab","name":"cd"}`, patchbind.CodeDuplicateKey, "/name"},
		{"type", `{"size":"big"}`, patchbind.CodeInvalidType, "/size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(h, http.MethodPatch, "/widgets/w-1", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
			}
			iss := decodeIssues(t, w)
			if len(iss) == 0 || iss[0].Code != tc.code || iss[0].Path != tc.path {
				t.Fatalf("unexpected issues: %+v", iss)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{&patchbind.MalformedBodyError{Cause: errors.New("x")}, http.StatusBadRequest},
		{&patchbind.TypeConversionError{Property: "size", Cause: errors.New("x")}, http.StatusBadRequest},
		{context.Canceled, http.StatusRequestTimeout},
		{&patchbind.UnsupportedTargetTypeError{Reason: "x"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := middleware.StatusFor(tc.err); got != tc.want {
			t.Fatalf("StatusFor(%v)=%d want %d", tc.err, got, tc.want)
		}
	}
}

func TestOptFor(t *testing.T) {
	base := middleware.DefaultBindOpt()
	if !middleware.OptFor(http.MethodPatch, base).Partial {
		t.Fatalf("PATCH must bind in partial mode")
	}
	if middleware.OptFor(http.MethodPut, base).Partial {
		t.Fatalf("PUT must not bind in partial mode")
	}
}

func TestDefaultBindOpt_RejectsCaseVariants(t *testing.T) {
	var seen patchbind.Bound[widget]
	h := newMux(t, &seen)

	w := do(h, http.MethodPut, "/widgets/w-1", `{"name":"ab","Name":"cd","size":1}`)
	iss := decodeIssues(t, w)
	if w.Code != http.StatusBadRequest || len(iss) != 1 || iss[0].Code != patchbind.CodeDuplicateKey || iss[0].Path != "/Name" {
		t.Fatalf("status=%d issues=%+v", w.Code, iss)
	}

	w = do(h, http.MethodPatch, "/widgets/w-1?name=ab&Name=cd", "")
	iss = decodeIssues(t, w)
	if w.Code != http.StatusBadRequest || len(iss) != 1 || iss[0].Code != patchbind.CodeDuplicateKey || iss[0].Path != "/name" {
		t.Fatalf("status=%d issues=%+v", w.Code, iss)
	}

	// The zero BindOpt accepts the variants and keeps the last one.
	bd, err := patchbind.BindWithMeta[widget](context.Background(), patchbind.NewRequest([]byte(`{"name":"ab","Name":"cd"}`), nil, nil))
	if err != nil || bd.Value.Name != "cd" {
		t.Fatalf("bind: %v %+v", err, bd.Value)
	}
}
