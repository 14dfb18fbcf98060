package patchbind

import (
	"golang.org/x/text/cases"
)

// Presence is the bit flag recorded for every touched property.
type Presence uint8

const (
	PresenceSeen    Presence = 1 << iota // Property appeared in at least one source.
	PresenceWasNull                      // The body supplied an explicit null.
	PresenceBody                         // Supplied by the body.
	PresenceRoute                        // Supplied by the route values.
	PresenceQuery                        // Supplied by the query string.
)

func presenceOf(s SourceKind) Presence {
	switch s {
	case SourceRoute:
		return PresenceRoute
	case SourceQuery:
		return PresenceQuery
	default:
		return PresenceBody
	}
}

// Canonical folds a property or request key into the form used for all
// case-insensitive matching. "bookId", "BookId" and "BOOKID" share one
// canonical key.
func Canonical(name string) string {
	// A Caser keeps state and must not be shared between goroutines.
	return cases.Fold().String(name)
}

// TouchedSet is the ordered set of property names that received a value from
// any request source. The zero value is an empty set.
type TouchedSet struct {
	names []string
	flags map[string]Presence
}

// NewTouchedSet builds a set from property names, all marked seen. It is
// handy for consumers that only have the list carried by a model.
func NewTouchedSet(names ...string) TouchedSet {
	var ts TouchedSet
	for _, n := range names {
		ts.add(n, PresenceSeen)
	}
	return ts
}

func (ts *TouchedSet) add(name string, p Presence) {
	key := Canonical(name)
	if ts.flags == nil {
		ts.flags = make(map[string]Presence)
	}
	if _, ok := ts.flags[key]; !ok {
		ts.names = append(ts.names, name)
	}
	ts.flags[key] |= p | PresenceSeen
}

// Has reports whether name was touched (case-insensitive).
func (ts TouchedSet) Has(name string) bool {
	_, ok := ts.flags[Canonical(name)]
	return ok
}

// Presence returns the flags recorded for name, or zero when untouched.
func (ts TouchedSet) Presence(name string) Presence { return ts.flags[Canonical(name)] }

// Len returns the number of touched properties.
func (ts TouchedSet) Len() int { return len(ts.names) }

// Names returns the touched property names in declaration order.
func (ts TouchedSet) Names() []string {
	if len(ts.names) == 0 {
		return []string{}
	}
	return append([]string(nil), ts.names...)
}
