package engine

import (
	"encoding/json"
	"errors"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "begin_object"
	case KindEndObject:
		return "end_object"
	case KindBeginArray:
		return "begin_array"
	case KindEndArray:
		return "end_array"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindNull:
		return "null"
	}
	return "unknown"
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

var (
	// ErrNotObject reports a document whose root is not a JSON object.
	ErrNotObject = errors.New("root value is not a JSON object")
	// ErrTrailingData reports tokens after the root object.
	ErrTrailingData = errors.New("unexpected data after root object")
	// ErrEmpty reports a source that produced no tokens at all.
	ErrEmpty = errors.New("empty document")
)

// DecodeObjectFields consumes a single root object and calls fn for every
// top-level member in document order. Member values are decoded into the
// generic tree (map[string]any, []any, string, json.Number, bool, nil).
// The source must be exhausted after the closing brace.
func DecodeObjectFields(src TokenSource, fn func(key string, v any) error) error {
	tok, err := src.NextToken()
	if err != nil {
		if err == io.EOF {
			return ErrEmpty
		}
		return err
	}
	if tok.Kind != KindBeginObject {
		return ErrNotObject
	}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return eofAsUnexpected(err)
		}
		if tok.Kind == KindEndObject {
			break
		}
		if tok.Kind != KindKey {
			return io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return eofAsUnexpected(err)
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return err
		}
		if err := fn(tok.String, v); err != nil {
			return err
		}
	}
	if _, err := src.NextToken(); err != io.EOF {
		if err != nil {
			return err
		}
		return ErrTrailingData
	}
	return nil
}

// DecodeAnyFromSource builds an "any" value from the streaming token source.
func DecodeAnyFromSource(src TokenSource) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		return nil, err
	}
	return decodeValue(src, tok)
}

func decodeValue(src TokenSource, tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src)
	case KindBeginArray:
		return decodeArray(src)
	case KindString:
		return tok.String, nil
	case KindNumber:
		return json.Number(tok.Number), nil
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, io.ErrUnexpectedEOF
	}
}

func decodeObject(src TokenSource) (any, error) {
	m := make(map[string]any)
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, eofAsUnexpected(err)
		}
		if tok.Kind == KindEndObject {
			return m, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, eofAsUnexpected(err)
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		m[tok.String] = v
	}
}

func decodeArray(src TokenSource) (any, error) {
	arr := []any{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, eofAsUnexpected(err)
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func eofAsUnexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
