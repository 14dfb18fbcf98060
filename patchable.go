package patchbind

// Patchable is implemented by models that want the touched property list
// assigned after binding. Binding checks for the capability; models do not
// share a base type.
type Patchable interface {
	SetTouchedProperties(names []string)
}

// TouchedReporter exposes the touched property list of a bound model. The
// validation suppression stage reads it.
type TouchedReporter interface {
	TouchedProperties() []string
}

// Patch is an embeddable helper implementing Patchable and TouchedReporter.
//
//	type PatchBookRequest struct {
//		patchbind.Patch
//		BookID uuid.UUID `json:"bookId"`
//		Title  string    `json:"title"`
//	}
type Patch struct {
	Properties []string `json:"-" bind:"-"`
}

// SetTouchedProperties implements Patchable.
func (p *Patch) SetTouchedProperties(names []string) { p.Properties = names }

// TouchedProperties implements TouchedReporter.
func (p Patch) TouchedProperties() []string { return p.Properties }

// Touched reports whether name was supplied by the request (case-insensitive).
func (p Patch) Touched(name string) bool {
	key := Canonical(name)
	for _, n := range p.Properties {
		if Canonical(n) == key {
			return true
		}
	}
	return false
}
