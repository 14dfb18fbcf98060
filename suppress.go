package patchbind

// Suppress drops issues keyed by properties the model did not receive from
// the request. It only applies to partial updates; callers invoke it after
// validation and before anything inspects the list. Models that do not
// implement TouchedReporter (directly or through a pointer) leave the list
// unchanged. Issues for touched properties and issues not keyed by a
// property (path "/") are always kept.
func Suppress(issues Issues, model any) Issues {
	r, ok := model.(TouchedReporter)
	if !ok {
		return issues
	}
	return SuppressUntouched(issues, NewTouchedSet(r.TouchedProperties()...))
}

// SuppressUntouched is Suppress driven by an explicit touched set.
func SuppressUntouched(issues Issues, touched TouchedSet) Issues {
	if len(issues) == 0 {
		return issues
	}
	out := make(Issues, 0, len(issues))
	for _, it := range issues {
		name := it.Property()
		if name == "" || touched.Has(name) {
			out = append(out, it)
		}
	}
	return out
}
