package engine

import (
	"strconv"
	"strings"
)

// DuplicatePolicy controls how repeated object keys are handled.
type DuplicatePolicy int

const (
	DupIgnore DuplicatePolicy = iota
	DupWarn
	DupError
)

// SimpleIssue is a minimal issue representation used by internal helpers.
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string { return e.SimpleIssue.Message }

// Limits configures Enforce.
type Limits struct {
	OnDuplicate DuplicatePolicy
	MaxDepth    int
	// MaxBytes is checked against Location(); sources that cannot report an
	// offset (-1) are not limited here.
	MaxBytes int64
	// Sink receives non-fatal issues (DupWarn). Fatal issues are returned as
	// IssueError and also forwarded when Sink is set.
	Sink func(SimpleIssue)
}

// Disabled reports whether Enforce would be a no-op.
func (l Limits) Disabled() bool {
	return l.OnDuplicate == DupIgnore && l.MaxDepth <= 0 && l.MaxBytes <= 0
}

type frame struct {
	array      bool
	path       string
	keys       map[string]struct{}
	pendingKey string
	nextIndex  int
}

type enforcer struct {
	inner TokenSource
	lim   Limits
	stack []frame
}

// Enforce wraps inner so that duplicate keys, nesting depth and consumed
// bytes are checked while tokens stream through.
func Enforce(inner TokenSource, lim Limits) TokenSource {
	if lim.Disabled() {
		return inner
	}
	return &enforcer{inner: inner, lim: lim}
}

func (e *enforcer) Location() int64 { return e.inner.Location() }

func (e *enforcer) NextToken() (Token, error) {
	tok, err := e.inner.NextToken()
	if err != nil {
		return Token{}, err
	}

	switch tok.Kind {
	case KindKey:
		if n := len(e.stack); n > 0 && !e.stack[n-1].array {
			top := &e.stack[n-1]
			if e.lim.OnDuplicate != DupIgnore {
				if _, dup := top.keys[tok.String]; dup {
					si := SimpleIssue{Code: "duplicate_key", Path: pointerOrRoot(join(top.path, tok.String)), Message: "key '" + tok.String + "' duplicated"}
					if err := e.report(si, e.lim.OnDuplicate == DupError); err != nil {
						return Token{}, err
					}
				}
				top.keys[tok.String] = struct{}{}
			}
			top.pendingKey = tok.String
		}
	case KindBeginObject, KindBeginArray:
		path := e.valuePath()
		f := frame{array: tok.Kind == KindBeginArray, path: path}
		if !f.array && e.lim.OnDuplicate != DupIgnore {
			f.keys = make(map[string]struct{})
		}
		e.stack = append(e.stack, f)
		if e.lim.MaxDepth > 0 && len(e.stack) > e.lim.MaxDepth {
			return Token{}, e.report(SimpleIssue{Code: "parse_error", Path: pointerOrRoot(path), Message: "max depth exceeded"}, true)
		}
	case KindEndObject, KindEndArray:
		if n := len(e.stack); n > 0 {
			e.stack = e.stack[:n-1]
		}
	default:
		e.valuePath()
	}

	if e.lim.MaxBytes > 0 {
		if off := e.inner.Location(); off > e.lim.MaxBytes {
			return Token{}, e.report(SimpleIssue{Code: "truncated", Path: "/", Message: "max bytes exceeded"}, true)
		}
	}
	return tok, nil
}

// valuePath returns the pointer of the value that starts at the current
// token and advances array indexes.
func (e *enforcer) valuePath() string {
	n := len(e.stack)
	if n == 0 {
		return ""
	}
	top := &e.stack[n-1]
	if top.array {
		p := join(top.path, strconv.Itoa(top.nextIndex))
		top.nextIndex++
		return p
	}
	return join(top.path, top.pendingKey)
}

func (e *enforcer) report(si SimpleIssue, fatal bool) error {
	if e.lim.Sink != nil {
		e.lim.Sink(si)
	}
	if fatal {
		return IssueError{si}
	}
	return nil
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func join(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
