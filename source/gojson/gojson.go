// Package gojson provides a github.com/goccy/go-json backed token source.
// It is the default body parser of patchbind.
package gojson

import (
	"bytes"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/patchbind/internal/engine"
)

type source struct {
	dec    *j.Decoder
	framer eng.Framer
}

// errSource reports a fixed error.
type errSource struct{ err error }

func (e errSource) NextToken() (eng.Token, error) { return eng.Token{}, e.err }
func (e errSource) Location() int64               { return -1 }

// NewReader wraps an io.Reader into an engine.TokenSource using go-json.
// The input is buffered so it can be validated before tokenization.
func NewReader(r io.Reader) eng.TokenSource {
	b, err := io.ReadAll(r)
	if err != nil {
		return errSource{err: err}
	}
	return NewBytes(b)
}

// NewBytes wraps a byte slice into an engine.TokenSource using go-json.
// go-json's Token skips separators without checking them, so the document
// is validated first and a syntax error is reported on the first token.
func NewBytes(b []byte) eng.TokenSource {
	if len(bytes.TrimSpace(b)) > 0 {
		var v any
		if err := j.Unmarshal(b, &v); err != nil {
			return errSource{err: err}
		}
	}
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return &source{dec: dec}
}

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.framer.Open(true)
			return eng.Token{Kind: eng.KindBeginObject, Offset: -1}, nil
		case '[':
			s.framer.Open(false)
			return eng.Token{Kind: eng.KindBeginArray, Offset: -1}, nil
		case '}':
			s.framer.Close()
			return eng.Token{Kind: eng.KindEndObject, Offset: -1}, nil
		default:
			s.framer.Close()
			return eng.Token{Kind: eng.KindEndArray, Offset: -1}, nil
		}
	case string:
		return eng.Token{Kind: s.framer.String(), String: v, Offset: -1}, nil
	case j.Number:
		s.framer.Scalar()
		// The number text may alias the decoder buffer.
		return eng.Token{Kind: eng.KindNumber, Number: strings.Clone(string(v)), Offset: -1}, nil
	case float64:
		s.framer.Scalar()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: -1}, nil
	case bool:
		s.framer.Scalar()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: -1}, nil
	}
	s.framer.Scalar()
	return eng.Token{Kind: eng.KindNull, Offset: -1}, nil
}

// Location is unknown for go-json; size limits are applied before decoding.
func (s *source) Location() int64 { return -1 }
