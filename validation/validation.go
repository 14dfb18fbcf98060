// Package validation is the validation stage of the binding pipeline. It
// checks `validate` struct tags with go-playground/validator and reports
// violations as patchbind.Issues keyed by the binder's property names.
package validation

import (
	"context"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/reoring/patchbind"
	"github.com/reoring/patchbind/i18n"
)

// Validator implements patchbind.Validator.
type Validator struct {
	validate *validator.Validate
}

var _ patchbind.Validator = (*Validator)(nil)

// New returns a Validator whose issue paths use patchbind.ResolveKey names.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name := patchbind.ResolveKey(sf)
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Engine exposes the underlying validator for registering custom rules.
func (v *Validator) Engine() *validator.Validate { return v.validate }

// Validate checks model, a struct or pointer to one. A nil model yields no
// issues.
func (v *Validator) Validate(ctx context.Context, model any) patchbind.Issues {
	if model == nil {
		return nil
	}
	err := v.validate.StructCtx(ctx, model)
	if err == nil {
		return nil
	}
	var fes validator.ValidationErrors
	if !errors.As(err, &fes) {
		return patchbind.Issues{{
			Path:    "/",
			Code:    patchbind.CodeUnsupportedType,
			Message: i18n.T(patchbind.CodeUnsupportedType, nil),
			Cause:   err,
		}}
	}
	root := reflect.TypeOf(model)
	out := make(patchbind.Issues, 0, len(fes))
	for _, fe := range fes {
		out = append(out, issueOf(root, fe))
	}
	return out
}

func issueOf(root reflect.Type, fe validator.FieldError) patchbind.Issue {
	code := codeOf(fe)
	var data map[string]string
	switch {
	case code == patchbind.CodeInvalidFormat:
		data = map[string]string{"expected": fe.Tag()}
	case fe.Param() != "":
		data = map[string]string{"param": fe.Param()}
	}
	it := patchbind.Issue{
		Path:    fieldPointer(root, fe.Namespace(), fe.StructNamespace()),
		Code:    code,
		Message: i18n.T(code, data),
		Rule:    fe.Tag(),
		Cause:   fe,
	}
	if fe.Param() != "" {
		it.Params = map[string]any{"param": fe.Param()}
	}
	return it
}

var formatTags = map[string]bool{
	"uuid": true, "uuid3": true, "uuid4": true, "uuid5": true, "uuid_rfc4122": true,
	"email": true, "url": true, "uri": true, "http_url": true, "hostname": true,
	"ip": true, "ipv4": true, "ipv6": true, "datetime": true, "e164": true,
	"isbn": true, "isbn10": true, "isbn13": true,
}

func codeOf(fe validator.FieldError) string {
	tag := fe.Tag()
	if strings.HasPrefix(tag, "required") {
		return patchbind.CodeRequired
	}
	if formatTags[tag] {
		return patchbind.CodeInvalidFormat
	}
	switch tag {
	case "oneof":
		return patchbind.CodeInvalidEnum
	case "min", "gte", "gt":
		return sized(fe.Kind(), patchbind.CodeTooShort, patchbind.CodeTooSmall)
	case "max", "lte", "lt":
		return sized(fe.Kind(), patchbind.CodeTooLong, patchbind.CodeTooBig)
	case "len":
		if tooLong(fe) {
			return sized(fe.Kind(), patchbind.CodeTooLong, patchbind.CodeTooBig)
		}
		return sized(fe.Kind(), patchbind.CodeTooShort, patchbind.CodeTooSmall)
	}
	return patchbind.CodeInvalidValue
}

func sized(k reflect.Kind, lengthCode, numberCode string) string {
	switch k {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return lengthCode
	}
	return numberCode
}

// tooLong reports whether a len violation overshoots the expected size.
func tooLong(fe validator.FieldError) bool {
	want, err := strconv.Atoi(fe.Param())
	if err != nil {
		return false
	}
	rv := reflect.ValueOf(fe.Value())
	switch rv.Kind() {
	case reflect.String:
		return utf8.RuneCountInString(rv.String()) > want
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() > want
	}
	return false
}

// fieldPointer turns a validator namespace such as "Book.authors[0].name"
// into "/authors/0/name". The leading type name is dropped, and so are the
// segments of flattened embedded structs, which structNS (the same namespace
// spelled with Go field names) identifies against root.
func fieldPointer(root reflect.Type, ns, structNS string) string {
	tags, fields := splitNamespace(ns), splitNamespace(structNS)
	if len(tags) < 2 {
		return "/"
	}
	t := root
	var segs []string
	for i, p := range tags[1:] {
		flat := false
		if i+1 < len(fields) {
			var sf reflect.StructField
			sf, t = structField(t, fields[i+1].name)
			flat = len(p.index) == 0 && patchbind.Flattened(sf)
		} else {
			t = nil
		}
		if !flat {
			segs = append(segs, p.name)
		}
		segs = append(segs, p.index...)
		for range p.index {
			t = elemOf(t)
		}
	}
	if len(segs) == 0 {
		return "/"
	}
	esc := strings.NewReplacer("~", "~0", "/", "~1")
	var b strings.Builder
	for _, s := range segs {
		b.WriteByte('/')
		b.WriteString(esc.Replace(s))
	}
	return b.String()
}

type nsPart struct {
	name  string
	index []string
}

// splitNamespace splits "a.b[0][k.x].c" into {a} {b 0 k.x} {c}.
func splitNamespace(ns string) []nsPart {
	var (
		parts   []nsPart
		cur     nsPart
		buf     strings.Builder
		bracket bool
	)
	for _, r := range ns {
		switch {
		case bracket && r == ']':
			cur.index = append(cur.index, buf.String())
			buf.Reset()
			bracket = false
		case bracket:
			buf.WriteRune(r)
		case r == '[':
			if len(cur.index) == 0 {
				cur.name = buf.String()
			}
			buf.Reset()
			bracket = true
		case r == '.':
			if len(cur.index) == 0 {
				cur.name = buf.String()
			}
			parts = append(parts, cur)
			cur = nsPart{}
			buf.Reset()
		default:
			buf.WriteRune(r)
		}
	}
	if len(cur.index) == 0 {
		cur.name = buf.String()
	}
	return append(parts, cur)
}

// structField returns the field of t (or *t) declared directly with the
// given Go name, and its type. t is nil when the field is unknown.
func structField(t reflect.Type, name string) (reflect.StructField, reflect.Type) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return reflect.StructField{}, nil
	}
	for i := 0; i < t.NumField(); i++ {
		if sf := t.Field(i); sf.Name == name {
			return sf, sf.Type
		}
	}
	return reflect.StructField{}, nil
}

func elemOf(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return nil
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return t.Elem()
	}
	return nil
}
