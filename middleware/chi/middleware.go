package chimw

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reoring/patchbind"
	"github.com/reoring/patchbind/middleware"
)

// RouteValues returns the URL parameters chi matched for r.
func RouteValues(r *http.Request) map[string]string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return nil
	}
	out := make(map[string]string, len(rc.URLParams.Keys))
	for i, k := range rc.URLParams.Keys {
		if k == "*" || i >= len(rc.URLParams.Values) {
			continue
		}
		out[k] = rc.URLParams.Values[i]
	}
	return out
}

// Request adapts a chi-routed request.
func Request(r *http.Request) patchbind.Request {
	return patchbind.FromHTTP(r, RouteValues(r))
}

// Bind binds each request into a T using chi's URL parameters as route
// values, stores Bound[T] in the context, and answers 400 with Issues when
// binding or validation fails. PATCH requests bind in partial mode.
func Bind[T any](v patchbind.Validator, opt *patchbind.BindOpt) func(http.Handler) http.Handler {
	return middleware.Bind[T](middleware.Config{Validator: v, Route: RouteValues, Opt: opt})
}

// GetBound fetches Bound[T] from the request context.
func GetBound[T any](r *http.Request) (patchbind.Bound[T], bool) {
	return middleware.BoundFromContext[T](r.Context())
}
