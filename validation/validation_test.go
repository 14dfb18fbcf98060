package validation

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/reoring/patchbind"
)

type author struct {
	Name string `json:"name" validate:"required"`
}

type book struct {
	patchbind.Patch
	ID      string   `json:"bookId" validate:"required,uuid"`
	Title   string   `json:"title" validate:"required,min=2,max=10"`
	Pages   int      `bind:"pages" validate:"gte=1,lte=5000"`
	Format  string   `json:"format" validate:"omitempty,oneof=hardcover paperback"`
	ISBN    string   `json:"isbn" validate:"omitempty,len=4"`
	Authors []author `json:"authors" validate:"dive"`
}

func codesByPath(iss patchbind.Issues) map[string]string {
	out := map[string]string{}
	for _, it := range iss {
		out[it.Path] = it.Code
	}
	return out
}

func TestValidate_MapsTagsToCodes(t *testing.T) {
	v := New()
	m := &book{
		ID:      "not-a-uuid",
		Title:   "A",
		Pages:   0,
		Format:  "scroll",
		ISBN:    "12345",
		Authors: []author{{Name: "ok"}, {}},
	}
	got := codesByPath(v.Validate(context.Background(), m))
	want := map[string]string{
		"/bookId":         patchbind.CodeInvalidFormat,
		"/title":          patchbind.CodeTooShort,
		"/pages":          patchbind.CodeTooSmall,
		"/format":         patchbind.CodeInvalidEnum,
		"/isbn":           patchbind.CodeTooLong,
		"/authors/1/name": patchbind.CodeRequired,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestValidate_RequiredAndMessages(t *testing.T) {
	v := New()
	iss := v.Validate(context.Background(), book{Pages: 9000})
	got := codesByPath(iss)
	if got["/bookId"] != patchbind.CodeRequired || got["/title"] != patchbind.CodeRequired {
		t.Fatalf("expected required issues, got %+v", got)
	}
	if got["/pages"] != patchbind.CodeTooBig {
		t.Fatalf("expected too_big for pages, got %+v", got)
	}
	for _, it := range iss {
		if it.Message == "" || it.Message == it.Code {
			t.Fatalf("expected a translated message for %s, got %q", it.Path, it.Message)
		}
		if it.Rule == "" {
			t.Fatalf("expected rule recorded for %s", it.Path)
		}
	}
}

func TestValidate_ValidModelAndNil(t *testing.T) {
	v := New()
	ok := &book{ID: "0b9f3a5c-6f0e-4d8e-9a3b-2f1c7d6e5a41", Title: "Go", Pages: 10}
	if iss := v.Validate(context.Background(), ok); len(iss) != 0 {
		t.Fatalf("expected no issues, got %v", iss)
	}
	if iss := v.Validate(context.Background(), nil); iss != nil {
		t.Fatalf("nil model should yield nil, got %v", iss)
	}
	iss := v.Validate(context.Background(), 42)
	if len(iss) != 1 || iss[0].Code != patchbind.CodeUnsupportedType {
		t.Fatalf("non-struct model: %v", iss)
	}
}

func TestValidate_SuppressedForPartialUpdate(t *testing.T) {
	v := New()
	m := &book{Title: "A"}
	m.SetTouchedProperties([]string{"title"})
	got := patchbind.Suppress(v.Validate(context.Background(), m), m)
	if diff := cmp.Diff(map[string]string{"/title": patchbind.CodeTooShort}, codesByPath(got)); diff != "" {
		t.Fatalf("suppressed issues mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldPointer(t *testing.T) {
	cases := map[string]string{
		"Book.title":             "/title",
		"Book.authors[2].name":   "/authors/2/name",
		"Book.meta[a/b]":         "/meta/a~1b",
		"Book.meta[k.x]":         "/meta/k.x",
		"Book":                   "/",
		"Book.outer.inner[0][1]": "/outer/inner/0/1",
	}
	for in, want := range cases {
		if got := fieldPointer(nil, in, in); got != want {
			t.Fatalf("fieldPointer(%q)=%q want %q", in, got, want)
		}
	}
}

type common struct {
	Title string `json:"title" validate:"max=3"`
}

type tagged struct {
	Name string `json:"name" validate:"required"`
}

type article struct {
	patchbind.Patch
	common
	*tagged `json:"meta"`
	Body    string `json:"body" validate:"required"`
}

func TestFieldPointer_EmbeddedStructs(t *testing.T) {
	root := reflect.TypeOf(&article{})
	cases := []struct{ ns, structNS, want string }{
		{"article.common.title", "article.common.Title", "/title"},
		{"article.meta.name", "article.tagged.Name", "/meta/name"},
		{"article.body", "article.Body", "/body"},
	}
	for _, tc := range cases {
		if got := fieldPointer(root, tc.ns, tc.structNS); got != tc.want {
			t.Fatalf("fieldPointer(%q)=%q want %q", tc.ns, got, tc.want)
		}
	}
}

func TestBindAndValidate_EmbeddedFieldKeepsTouchedIssue(t *testing.T) {
	req := patchbind.NewRequest([]byte(`{"title":"toolong"}`), nil, nil)
	bd, iss, err := patchbind.BindAndValidate[article](context.Background(), req, New(), patchbind.BindOpt{Partial: true})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if diff := cmp.Diff([]string{"title"}, bd.Touched.Names()); diff != "" {
		t.Fatalf("touched mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(map[string]string{"/title": patchbind.CodeTooLong}, codesByPath(iss)); diff != "" {
		t.Fatalf("issues mismatch (-want +got):\n%s", diff)
	}
}
