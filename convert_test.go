package patchbind

import (
	"encoding/json"
	"errors"
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestDefaultConverter_Text(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 7
	cases := []struct {
		name string
		raw  RawValue
		typ  reflect.Type
		want any
	}{
		{"uuid", RawValue{Source: SourceRoute, Value: id.String()}, reflect.TypeOf(uuid.UUID{}), id},
		{"string", RawValue{Source: SourceRoute, Value: "x"}, reflect.TypeOf(""), "x"},
		{"empty string", RawValue{Source: SourceRoute, Value: ""}, reflect.TypeOf(""), ""},
		{"int", RawValue{Source: SourceRoute, Value: "-42"}, reflect.TypeOf(int64(0)), int64(-42)},
		{"uint", RawValue{Source: SourceRoute, Value: "42"}, reflect.TypeOf(uint8(0)), uint8(42)},
		{"float", RawValue{Source: SourceRoute, Value: "2.5"}, reflect.TypeOf(float64(0)), 2.5},
		{"bool", RawValue{Source: SourceRoute, Value: "true"}, reflect.TypeOf(false), true},
		{"time", RawValue{Source: SourceRoute, Value: "2024-03-01T12:00:00Z"}, reflect.TypeOf(time.Time{}), when},
		{"duration", RawValue{Source: SourceRoute, Value: "1m30s"}, reflect.TypeOf(time.Duration(0)), 90 * time.Second},
		{"pointer", RawValue{Source: SourceRoute, Value: "7"}, reflect.TypeOf((*int)(nil)), &n},
		{"text unmarshaler", RawValue{Source: SourceRoute, Value: "10.0.0.1"}, reflect.TypeOf(netip.Addr{}), netip.MustParseAddr("10.0.0.1")},
		{"route into slice", RawValue{Source: SourceRoute, Value: "C"}, reflect.TypeOf([]string{}), []string{"C"}},
		{"query slice", RawValue{Source: SourceQuery, Value: []string{"1", "2"}}, reflect.TypeOf([]int{}), []int{1, 2}},
		{"query joined", RawValue{Source: SourceQuery, Value: []string{"a", "b"}}, reflect.TypeOf(""), "a,b"},
		{"query single", RawValue{Source: SourceQuery, Value: []string{"5"}}, reflect.TypeOf(0), 5},
		{"bytes", RawValue{Source: SourceRoute, Value: "hi"}, reflect.TypeOf([]byte{}), []byte("hi")},
		{"any", RawValue{Source: SourceQuery, Value: []string{"v"}}, reflect.TypeOf((*any)(nil)).Elem(), "v"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DefaultConverter{}.Convert(tc.raw, tc.typ)
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			if got.Type() != tc.typ {
				t.Fatalf("type %v want %v", got.Type(), tc.typ)
			}
			if diff := cmp.Diff(tc.want, got.Interface(), cmp.Comparer(func(a, b netip.Addr) bool { return a == b })); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultConverter_Body(t *testing.T) {
	type nested struct {
		Name string `json:"name"`
	}
	cases := []struct {
		name string
		v    any
		typ  reflect.Type
		want any
	}{
		{"string", "Dune", reflect.TypeOf(""), "Dune"},
		{"number", json.Number("12"), reflect.TypeOf(0), 12},
		{"decimal", json.Number("12.5"), reflect.TypeOf(float32(0)), float32(12.5)},
		{"bool", true, reflect.TypeOf(false), true},
		{"null", nil, reflect.TypeOf(""), ""},
		{"null slice", nil, reflect.TypeOf([]string{}), []string(nil)},
		{"array", []any{"A", "B"}, reflect.TypeOf([]string{}), []string{"A", "B"}},
		{"object", map[string]any{"name": "n"}, reflect.TypeOf(nested{}), nested{Name: "n"}},
		{"uuid string", "11111111-1111-1111-1111-111111111111", reflect.TypeOf(uuid.UUID{}), uuid.MustParse("11111111-1111-1111-1111-111111111111")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DefaultConverter{}.Convert(RawValue{Source: SourceBody, Value: tc.v}, tc.typ)
			if err != nil {
				t.Fatalf("convert: %v", err)
			}
			if diff := cmp.Diff(tc.want, got.Interface()); diff != "" {
				t.Fatalf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultConverter_Failures(t *testing.T) {
	cases := []struct {
		name string
		raw  RawValue
		typ  reflect.Type
	}{
		{"bad uuid", RawValue{Source: SourceRoute, Value: "X"}, reflect.TypeOf(uuid.UUID{})},
		{"bad int", RawValue{Source: SourceQuery, Value: []string{"1x"}}, reflect.TypeOf(0)},
		{"overflow", RawValue{Source: SourceRoute, Value: "300"}, reflect.TypeOf(uint8(0))},
		{"bad bool", RawValue{Source: SourceRoute, Value: "maybe"}, reflect.TypeOf(false)},
		{"bad slice element", RawValue{Source: SourceQuery, Value: []string{"1", "x"}}, reflect.TypeOf([]int{})},
		{"struct from text", RawValue{Source: SourceRoute, Value: "x"}, reflect.TypeOf(struct{}{})},
		{"body type mismatch", RawValue{Source: SourceBody, Value: "big"}, reflect.TypeOf(0)},
		{"body array into string", RawValue{Source: SourceBody, Value: []any{"a"}}, reflect.TypeOf("")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := (DefaultConverter{}).Convert(tc.raw, tc.typ); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
	_, err := DefaultConverter{}.Convert(RawValue{Source: SourceRoute, Value: "x"}, reflect.TypeOf(make(chan int)))
	if !errors.Is(err, ErrUnsupportedConversion) {
		t.Fatalf("expected ErrUnsupportedConversion, got %v", err)
	}
}
