package patchbind

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/reoring/patchbind/i18n"
	eng "github.com/reoring/patchbind/internal/engine"
)

// RawValue is an untyped value supplied by one request source. Body values
// are generic JSON (nil, bool, json.Number, string, []any, map[string]any),
// route values are string and query values are []string.
type RawValue struct {
	Name   string // Key as spelled by the request.
	Source SourceKind
	Value  any
}

// RawValueMap maps canonical property keys to raw values.
type RawValueMap map[string]RawValue

// propertyIndex maps canonical keys to settable properties.
type propertyIndex map[string]Property

func indexProperties(props []Property) propertyIndex {
	idx := make(propertyIndex, len(props))
	for _, p := range props {
		if p.CanSet {
			idx[p.Key] = p
		}
	}
	return idx
}

type extractor struct {
	driver JSONDriver
	opt    BindOpt
	logger *slog.Logger
}

// body reads and parses the request body. An absent, zero-length or
// whitespace-only body yields an empty map.
func (x extractor) body(ctx context.Context, req Request, idx propertyIndex) (RawValueMap, error) {
	out := RawValueMap{}
	data, err := readBody(ctx, req, x.opt.MaxBytes)
	if err != nil || data == nil {
		return out, err
	}

	lim := eng.Limits{
		OnDuplicate: toEngineDup(x.opt.Strictness.OnDuplicateKey),
		MaxDepth:    x.opt.MaxDepth,
		Sink: func(si eng.SimpleIssue) {
			if si.Code == CodeDuplicateKey && x.opt.Strictness.OnDuplicateKey == Warn {
				x.logger.Warn("duplicate key in request body", "path", si.Path)
			}
		},
	}
	src := eng.Enforce(x.driver.NewBytes(data), lim)
	err = eng.DecodeObjectFields(src, func(key string, v any) error {
		k := Canonical(key)
		if _, ok := idx[k]; !ok {
			return nil
		}
		if prev, ok := out[k]; ok && prev.Name != key {
			switch x.opt.Strictness.OnDuplicateKey {
			case Error:
				return eng.IssueError{SimpleIssue: eng.SimpleIssue{Code: CodeDuplicateKey, Path: pointer(key), Message: "key '" + key + "' duplicates '" + prev.Name + "'"}}
			case Warn:
				x.logger.Warn("case-variant keys in request body", "keys", []string{prev.Name, key})
			}
		}
		out[k] = RawValue{Name: key, Source: SourceBody, Value: v}
		return nil
	})
	if err != nil {
		return nil, malformed(err)
	}
	return out, nil
}

// route reads route values matching a settable property.
func (x extractor) route(values map[string]string, idx propertyIndex) (RawValueMap, error) {
	out := RawValueMap{}
	for _, key := range sortedKeys(values) {
		k := Canonical(key)
		if _, ok := idx[k]; !ok {
			continue
		}
		if prev, ok := out[k]; ok {
			if err := x.collision(SourceRoute, idx[k].Name, prev.Name, key); err != nil {
				return nil, err
			}
		}
		out[k] = RawValue{Name: key, Source: SourceRoute, Value: values[key]}
	}
	return out, nil
}

// query reads query values matching a settable property. Keys without any
// value are absent; case-variant keys contribute their values in key order.
func (x extractor) query(values map[string][]string, idx propertyIndex) (RawValueMap, error) {
	out := RawValueMap{}
	for _, key := range sortedKeys(values) {
		vs := values[key]
		k := Canonical(key)
		if _, ok := idx[k]; !ok || len(vs) == 0 {
			continue
		}
		if prev, ok := out[k]; ok {
			if err := x.collision(SourceQuery, idx[k].Name, prev.Name, key); err != nil {
				return nil, err
			}
			merged := append(append([]string(nil), prev.Value.([]string)...), vs...)
			out[k] = RawValue{Name: key, Source: SourceQuery, Value: merged}
			continue
		}
		out[k] = RawValue{Name: key, Source: SourceQuery, Value: append([]string(nil), vs...)}
	}
	return out, nil
}

func (x extractor) collision(src SourceKind, property, prev, key string) error {
	switch x.opt.Strictness.OnDuplicateKey {
	case Error:
		return &AmbiguousKeyError{Source: src, Property: property, Keys: []string{prev, key}}
	case Warn:
		x.logger.Warn("case-variant keys", "source", src.String(), "property", property, "keys", []string{prev, key})
	}
	return nil
}

func readBody(ctx context.Context, req Request, maxBytes int64) ([]byte, error) {
	body := req.Body()
	if body == nil || req.ContentLength() == 0 {
		return nil, nil
	}
	var r io.Reader = &ctxReader{ctx: ctx, r: body}
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("patchbind: read body: %w", err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, &MalformedBodyError{
			Issues: Issues{{Path: "/", Code: CodeTruncated, Message: i18n.T(CodeTruncated, nil), Params: map[string]any{"maxBytes": maxBytes}}},
			Cause:  errors.New("max bytes exceeded"),
		}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return data, nil
}

func malformed(err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return &MalformedBodyError{
			Issues: Issues{{Path: ie.Path, Code: ie.Code, Message: i18n.T(ie.Code, nil), Cause: err}},
			Cause:  err,
		}
	}
	return &MalformedBodyError{Cause: err}
}

// ctxReader aborts reads once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
