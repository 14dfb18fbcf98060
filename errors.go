package patchbind

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/reoring/patchbind/i18n"
)

// Issue codes.
const (
	CodeInvalidType     = "invalid_type"
	CodeInvalidFormat   = "invalid_format"
	CodeInvalidValue    = "invalid_value"
	CodeInvalidEnum     = "invalid_enum"
	CodeRequired        = "required"
	CodeDuplicateKey    = "duplicate_key"
	CodeTooSmall        = "too_small"
	CodeTooBig          = "too_big"
	CodeTooShort        = "too_short"
	CodeTooLong         = "too_long"
	CodeParseError      = "parse_error"
	CodeTruncated       = "truncated"
	CodeUnsupportedType = "unsupported_type"
	CodeCanceled        = "canceled"
)

// Issue represents a single validation or binding entry.
type Issue struct {
	Path    string `json:"path"` // JSON Pointer (for example: /authors/0). A bare property name is accepted too.
	Code    string `json:"code"`
	Message string `json:"message"`
	// Rule optionally records the validation rule that produced this issue.
	Rule string `json:"rule,omitempty"`
	// Params carries structured parameters (e.g., {"min": 1}) for i18n.
	Params map[string]any `json:"params,omitempty"`
	Cause  error          `json:"-"`
}

// Property returns the top-level property the issue is keyed by: the first
// segment of Path with the pointer escapes undone.
func (it Issue) Property() string {
	p := strings.TrimPrefix(it.Path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		p = p[:i]
	}
	return strings.NewReplacer("~1", "/", "~0", "~").Replace(p)
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(b, "%s at %s", iss[i].Code, iss[i].Path)
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// MalformedBodyError reports a request body that is present but is not a
// single valid JSON object.
type MalformedBodyError struct {
	Issues Issues
	Cause  error
}

func (e *MalformedBodyError) Error() string {
	if len(e.Issues) > 0 {
		return "patchbind: malformed body: " + e.Issues.Error()
	}
	return "patchbind: malformed body: " + e.Cause.Error()
}

func (e *MalformedBodyError) Unwrap() error { return e.Cause }

// TypeConversionError reports a supplied value that could not be converted
// to the declared type of its property.
type TypeConversionError struct {
	Property string
	Source   SourceKind
	Raw      any
	Target   reflect.Type
	Cause    error
}

func (e *TypeConversionError) Error() string {
	msg := fmt.Sprintf("patchbind: cannot convert %s value %s for property %q to %s", e.Source, formatRaw(e.Raw), e.Property, e.Target)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TypeConversionError) Unwrap() error { return e.Cause }

// AmbiguousKeyError reports case-variant keys that name the same property
// within one route or query source when duplicates are configured as errors.
type AmbiguousKeyError struct {
	Source   SourceKind
	Property string
	Keys     []string
}

func (e *AmbiguousKeyError) Error() string {
	return fmt.Sprintf("patchbind: %s keys %s all name property %q", e.Source, strings.Join(e.Keys, ", "), e.Property)
}

// UnsupportedTargetTypeError reports a target type that cannot be bound:
// not a struct, no settable properties, or colliding property names. It is a
// programming error rather than a per-request condition.
type UnsupportedTargetTypeError struct {
	Type   reflect.Type
	Reason string
}

func (e *UnsupportedTargetTypeError) Error() string {
	return fmt.Sprintf("patchbind: unsupported target type %v: %s", e.Type, e.Reason)
}

// IsClientError reports whether err is caused by the request content
// (malformed body, unconvertible or ambiguous value) rather than by the
// program or the transport.
func IsClientError(err error) bool {
	var mb *MalformedBodyError
	var tc *TypeConversionError
	var ak *AmbiguousKeyError
	var iss Issues
	return errors.As(err, &mb) || errors.As(err, &tc) || errors.As(err, &ak) || errors.As(err, &iss)
}

// AsIssues projects err onto the Issues error model. Bind errors become one
// or more issues; unknown errors become a single parse_error issue at "/".
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	var mb *MalformedBodyError
	if errors.As(err, &mb) {
		if len(mb.Issues) > 0 {
			return mb.Issues, true
		}
		return Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Cause: mb.Cause}}, true
	}
	var tc *TypeConversionError
	if errors.As(err, &tc) {
		return Issues{{
			Path:    pointer(tc.Property),
			Code:    CodeInvalidType,
			Message: i18n.T(CodeInvalidType, map[string]string{"expected": tc.Target.String()}),
			Params:  map[string]any{"source": tc.Source.String(), "expected": tc.Target.String()},
			Cause:   tc.Cause,
		}}, true
	}
	var ak *AmbiguousKeyError
	if errors.As(err, &ak) {
		return Issues{{
			Path:    pointer(ak.Property),
			Code:    CodeDuplicateKey,
			Message: i18n.T(CodeDuplicateKey, nil),
			Params:  map[string]any{"source": ak.Source.String(), "keys": ak.Keys},
		}}, true
	}
	var ut *UnsupportedTargetTypeError
	if errors.As(err, &ut) {
		return Issues{{Path: "/", Code: CodeUnsupportedType, Message: i18n.T(CodeUnsupportedType, nil), Cause: ut}}, true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Issues{{Path: "/", Code: CodeCanceled, Message: i18n.T(CodeCanceled, nil), Cause: err}}, true
	}
	return Issues{{Path: "/", Code: CodeParseError, Message: err.Error(), Cause: err}}, true
}

func pointer(name string) string {
	return "/" + strings.NewReplacer("~", "~0", "/", "~1").Replace(name)
}

func formatRaw(v any) string {
	switch t := v.(type) {
	case string:
		return fmt.Sprintf("%q", t)
	case []string:
		return fmt.Sprintf("%q", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
