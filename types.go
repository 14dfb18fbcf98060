package patchbind

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceKind identifies where a raw value came from. The numeric order is the
// merge precedence: later sources overwrite earlier ones.
type SourceKind uint8

const (
	SourceBody SourceKind = iota
	SourceRoute
	SourceQuery
)

func (s SourceKind) String() string {
	switch s {
	case SourceBody:
		return "body"
	case SourceRoute:
		return "route"
	case SourceQuery:
		return "query"
	}
	return "unknown"
}

// Severity expresses how a detected condition is handled.
type Severity int

const (
	Ignore Severity = iota
	Warn
	Error
)

func (s Severity) String() string {
	switch s {
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "ignore"
	}
}

// ParseSeverity accepts "ignore", "warn" and "error" (case-insensitive).
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ignore":
		return Ignore, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	}
	return Ignore, fmt.Errorf("patchbind: unknown severity %q", s)
}

// UnmarshalYAML decodes a severity written as a string.
func (s *Severity) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MarshalYAML encodes a severity as its name.
func (s Severity) MarshalYAML() (any, error) { return s.String(), nil }

// Strictness configures duplicate key enforcement.
type Strictness struct {
	// OnDuplicateKey applies to repeated JSON keys and to case-variant keys
	// naming the same property within one source.
	OnDuplicateKey Severity `yaml:"duplicateKeys"`
}

// BindOpt bundles binding options.
type BindOpt struct {
	// Partial marks a partial update (PATCH semantics): validation issues for
	// untouched properties are suppressed by BindAndValidate.
	Partial    bool       `yaml:"partial"`
	Strictness Strictness `yaml:"strictness"`
	MaxDepth   int        `yaml:"maxDepth"`
	MaxBytes   int64      `yaml:"maxBytes"`
}

func lastOpt(opts []BindOpt, def BindOpt) BindOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return def
}
