// Package json provides an encoding/json backed token source.
package json

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	eng "github.com/reoring/patchbind/internal/engine"
)

type source struct {
	dec    *json.Decoder
	framer eng.Framer
	offset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &source{dec: dec, offset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *source) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.offset = s.dec.InputOffset()

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.framer.Open(true)
			return eng.Token{Kind: eng.KindBeginObject, Offset: s.offset}, nil
		case '[':
			s.framer.Open(false)
			return eng.Token{Kind: eng.KindBeginArray, Offset: s.offset}, nil
		case '}':
			s.framer.Close()
			return eng.Token{Kind: eng.KindEndObject, Offset: s.offset}, nil
		default:
			s.framer.Close()
			return eng.Token{Kind: eng.KindEndArray, Offset: s.offset}, nil
		}
	case string:
		return eng.Token{Kind: s.framer.String(), String: v, Offset: s.offset}, nil
	case json.Number:
		s.framer.Scalar()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: s.offset}, nil
	case float64:
		s.framer.Scalar()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: s.offset}, nil
	case bool:
		s.framer.Scalar()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: s.offset}, nil
	}
	s.framer.Scalar()
	return eng.Token{Kind: eng.KindNull, Offset: s.offset}, nil
}

func (s *source) Location() int64 { return s.offset }
