package patchbind

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Converter converts a raw source value into a value of the declared
// property type. The returned value must be assignable to t.
type Converter interface {
	Convert(raw RawValue, t reflect.Type) (reflect.Value, error)
}

// ConverterFunc adapts a function to Converter.
type ConverterFunc func(raw RawValue, t reflect.Type) (reflect.Value, error)

// Convert implements Converter.
func (f ConverterFunc) Convert(raw RawValue, t reflect.Type) (reflect.Value, error) { return f(raw, t) }

// ErrUnsupportedConversion is wrapped by conversion failures for types the
// converter does not know how to produce from text.
var ErrUnsupportedConversion = errors.New("unsupported conversion")

var (
	uuidType            = reflect.TypeOf(uuid.UUID{})
	timeType            = reflect.TypeOf(time.Time{})
	durationType        = reflect.TypeOf(time.Duration(0))
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	jsonUnmarshalerType = reflect.TypeOf((*json.Unmarshaler)(nil)).Elem()
)

// DefaultConverter handles route and query text (UUIDs, strings, integers,
// floats, booleans, durations, RFC 3339 times, encoding.TextUnmarshaler and
// slices of those) and body JSON values (any type go-json can decode into).
type DefaultConverter struct{}

// Convert implements Converter.
func (DefaultConverter) Convert(raw RawValue, t reflect.Type) (reflect.Value, error) {
	switch v := raw.Value.(type) {
	case []string:
		return convertStrings(v, t)
	case string:
		if raw.Source != SourceBody {
			return convertText(v, t)
		}
	}
	return convertJSON(raw.Value, t)
}

func convertStrings(vs []string, t reflect.Type) (reflect.Value, error) {
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Slice {
		ev, err := convertStrings(vs, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		return pointerTo(ev), nil
	}
	if t.Kind() == reflect.Slice && t.Elem().Kind() != reflect.Uint8 {
		out := reflect.MakeSlice(t, len(vs), len(vs))
		for i, s := range vs {
			ev, err := convertText(s, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	}
	return convertText(strings.Join(vs, ","), t)
}

func convertText(s string, t reflect.Type) (reflect.Value, error) {
	switch t {
	case uuidType:
		id, err := uuid.Parse(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(id), nil
	case timeType:
		tm, err := parseRFC3339(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(tm), nil
	case durationType:
		d, err := time.ParseDuration(s)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(d), nil
	}

	if t.Kind() == reflect.Pointer {
		ev, err := convertText(s, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		return pointerTo(ev), nil
	}
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		ptr := reflect.New(t)
		if err := ptr.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
			return reflect.Value{}, err
		}
		return ptr.Elem(), nil
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, t.Bits())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetFloat(f)
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			out.SetBytes([]byte(s))
			break
		}
		return convertStrings([]string{s}, t)
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return reflect.Value{}, fmt.Errorf("%w: text to %s", ErrUnsupportedConversion, t)
		}
		out.Set(reflect.ValueOf(s))
	default:
		return reflect.Value{}, fmt.Errorf("%w: text to %s", ErrUnsupportedConversion, t)
	}
	return out, nil
}

// convertJSON decodes a generic JSON value into t. null yields the zero value.
func convertJSON(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	switch x := v.(type) {
	case string:
		if t.Kind() == reflect.String && !customDecoded(t) {
			return reflect.ValueOf(x).Convert(t), nil
		}
	case bool:
		if t.Kind() == reflect.Bool && !customDecoded(t) {
			return reflect.ValueOf(x).Convert(t), nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return reflect.Value{}, err
	}
	ptr := reflect.New(t)
	if err := json.Unmarshal(data, ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}

// customDecoded reports whether *t implements json.Unmarshaler or
// encoding.TextUnmarshaler.
func customDecoded(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(jsonUnmarshalerType) || pt.Implements(textUnmarshalerType)
}

func pointerTo(v reflect.Value) reflect.Value {
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr
}

func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}
