package patchbind

import "reflect"

// MergedValue is a converted value ready for assignment.
type MergedValue struct {
	Property Property
	Source   SourceKind // Source whose value won.
	Raw      any
	Value    reflect.Value
}

// Merged is the result of the merge step.
type Merged struct {
	Values  []MergedValue // Declaration order of the properties.
	Touched TouchedSet
}

// Merge folds the body, route and query maps in that order: a later source
// overwrites an earlier one for the same property, so query beats route beats
// body. Every property present in any source is touched exactly once, even
// when its value was overwritten. Only the winning value is converted; a
// failed conversion fails the whole merge with TypeConversionError.
// Properties absent from every source are left out.
func Merge(props []Property, body, route, query RawValueMap, conv Converter) (Merged, error) {
	if conv == nil {
		conv = DefaultConverter{}
	}
	var out Merged
	sources := [...]RawValueMap{body, route, query}
	for _, p := range props {
		if !p.CanSet {
			continue
		}
		var (
			winner   RawValue
			found    bool
			presence Presence
		)
		for _, m := range sources {
			rv, ok := m[p.Key]
			if !ok {
				continue
			}
			presence |= presenceOf(rv.Source)
			if rv.Source == SourceBody && rv.Value == nil {
				presence |= PresenceWasNull
			}
			winner, found = rv, true
		}
		if !found {
			continue
		}
		out.Touched.add(p.Name, presence)

		val, err := conv.Convert(winner, p.Type)
		if err != nil {
			return Merged{}, &TypeConversionError{Property: p.Name, Source: winner.Source, Raw: winner.Value, Target: p.Type, Cause: err}
		}
		if !val.IsValid() || !val.Type().AssignableTo(p.Type) {
			return Merged{}, &TypeConversionError{Property: p.Name, Source: winner.Source, Raw: winner.Value, Target: p.Type, Cause: ErrUnsupportedConversion}
		}
		out.Values = append(out.Values, MergedValue{Property: p, Source: winner.Source, Raw: winner.Value, Value: val})
	}
	return out, nil
}
