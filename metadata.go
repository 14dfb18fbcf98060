package patchbind

import (
	"reflect"
	"strings"
	"sync"
)

// Property describes one bindable property of a target struct.
type Property struct {
	Name   string       // External name (bind tag > json tag > field name).
	Key    string       // Canonical(Name).
	Type   reflect.Type // Declared field type.
	Index  []int        // Field index path, through flattened embedded structs.
	CanSet bool         // False for readonly properties.
}

// ResolveKey applies the repository-wide rule to resolve a struct field's
// external name. Priority: bind:"name" > json tag name > field name; "-"
// disables the field.
func ResolveKey(sf reflect.StructField) string {
	name, _, _ := parseTags(sf)
	return name
}

// Flattened reports whether sf is an untagged embedded struct (or pointer to
// one). Its fields are addressed by their own names, without a segment for
// the embedded field.
func Flattened(sf reflect.StructField) bool {
	if !sf.Anonymous {
		return false
	}
	if _, tagged, _ := parseTags(sf); tagged {
		return false
	}
	t := sf.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// parseTags returns the external name, whether the name came from a tag, and
// whether the field is readonly.
func parseTags(sf reflect.StructField) (name string, tagged, readonly bool) {
	if bt, ok := sf.Tag.Lookup("bind"); ok {
		if bt == "-" {
			return "-", true, false
		}
		parts := strings.Split(bt, ",")
		for _, opt := range parts[1:] {
			if strings.TrimSpace(opt) == "readonly" {
				readonly = true
			}
		}
		if n := strings.TrimSpace(parts[0]); n != "" {
			return n, true, readonly
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-", true, readonly
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt, true, readonly
		}
	}
	return sf.Name, false, readonly
}

// Resolver enumerates and caches the bindable properties of struct types.
// Entries are populated once and only read afterwards; two goroutines racing
// on the same type may both compute it, and either result is kept.
type Resolver struct {
	cache sync.Map // reflect.Type -> resolved
}

type resolved struct {
	props []Property
	err   error
}

var defaultResolver = &Resolver{}

// Resolve returns the properties of t (or of *t) in declaration order,
// including readonly ones. It fails with UnsupportedTargetTypeError when t is
// not a struct, has no settable property, or declares two properties with
// the same canonical name at the same depth.
func (r *Resolver) Resolve(t reflect.Type) ([]Property, error) {
	if t == nil {
		return nil, &UnsupportedTargetTypeError{Type: t, Reason: "nil type"}
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if v, ok := r.cache.Load(t); ok {
		res := v.(resolved)
		return res.props, res.err
	}
	props, err := resolveStruct(t)
	v, _ := r.cache.LoadOrStore(t, resolved{props: props, err: err})
	res := v.(resolved)
	return res.props, res.err
}

// Settable filters props down to properties that can receive values.
func Settable(props []Property) []Property {
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if p.CanSet {
			out = append(out, p)
		}
	}
	return out
}

type candidate struct {
	Property
	depth int
}

func resolveStruct(t reflect.Type) ([]Property, error) {
	if t.Kind() != reflect.Struct {
		return nil, &UnsupportedTargetTypeError{Type: t, Reason: "target must be a struct"}
	}
	var cands []candidate
	collectFields(t, nil, 0, &cands)

	// Shallower fields shadow deeper ones, like encoding/json.
	best := make(map[string]int, len(cands))
	ambiguous := make(map[string]bool)
	for i, c := range cands {
		j, ok := best[c.Key]
		switch {
		case !ok || c.depth < cands[j].depth:
			best[c.Key] = i
			delete(ambiguous, c.Key)
		case c.depth == cands[j].depth:
			ambiguous[c.Key] = true
		}
	}
	for key := range ambiguous {
		return nil, &UnsupportedTargetTypeError{Type: t, Reason: "more than one field is named " + cands[best[key]].Name}
	}

	props := make([]Property, 0, len(best))
	settable := 0
	for i, c := range cands {
		if best[c.Key] != i {
			continue
		}
		props = append(props, c.Property)
		if c.CanSet {
			settable++
		}
	}
	if settable == 0 {
		return nil, &UnsupportedTargetTypeError{Type: t, Reason: "no settable properties"}
	}
	return props, nil
}

func collectFields(t reflect.Type, prefix []int, depth int, out *[]candidate) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name, tagged, readonly := parseTags(sf)
		if name == "-" {
			continue
		}
		index := append(append([]int(nil), prefix...), i)
		if sf.Anonymous && !tagged {
			ft := sf.Type
			if ft.Kind() == reflect.Struct {
				collectFields(ft, index, depth+1, out)
				continue
			}
			if ft.Kind() == reflect.Pointer {
				// Embedded pointers would need allocation on assignment.
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		*out = append(*out, candidate{
			Property: Property{Name: name, Key: Canonical(name), Type: sf.Type, Index: index, CanSet: !readonly},
			depth:    depth,
		})
	}
}
