package engine

// Framer tracks object/array nesting for decoders (encoding/json, go-json)
// whose Token API does not tell member names apart from string values.
type Framer struct {
	stack []framerFrame
}

type framerFrame struct {
	object       bool
	expectingKey bool
}

// Open records the start of an object or array.
func (f *Framer) Open(object bool) {
	f.stack = append(f.stack, framerFrame{object: object, expectingKey: object})
}

// Close records the end of the innermost container, which completes a
// member value in the parent.
func (f *Framer) Close() {
	if n := len(f.stack); n > 0 {
		f.stack = f.stack[:n-1]
	}
	f.valueDone()
}

// String classifies a string token as a member name or a value.
func (f *Framer) String() Kind {
	if n := len(f.stack); n > 0 {
		top := &f.stack[n-1]
		if top.object && top.expectingKey {
			top.expectingKey = false
			return KindKey
		}
	}
	f.valueDone()
	return KindString
}

// Scalar records a number, bool or null value.
func (f *Framer) Scalar() { f.valueDone() }

func (f *Framer) valueDone() {
	if n := len(f.stack); n > 0 {
		top := &f.stack[n-1]
		if top.object {
			top.expectingKey = true
		}
	}
}
