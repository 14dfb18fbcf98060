package middleware

import (
	"context"
	"errors"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/reoring/patchbind"
)

// ctxKeyBound is a typed context key for storing Bound[T].
// Using a generic struct type ensures uniqueness per T.
type ctxKeyBound[T any] struct{}

// ContextWithBound attaches a Bound[T] to the context.
func ContextWithBound[T any](ctx context.Context, b patchbind.Bound[T]) context.Context {
	return context.WithValue(ctx, ctxKeyBound[T]{}, b)
}

// BoundFromContext retrieves a Bound[T] from context.
func BoundFromContext[T any](ctx context.Context) (patchbind.Bound[T], bool) {
	v, ok := ctx.Value(ctxKeyBound[T]{}).(patchbind.Bound[T])
	return v, ok
}

// DefaultBindOpt returns a recommended default for HTTP JSON boundaries.
//   - Duplicate keys are errors. This includes case variants naming the same
//     property within one source ("title" and "Title" in one body or one
//     query), which patchbind.BindOpt{} accepts with the last one winning.
//     Use patchbind.Warn to accept them and log instead.
//   - Nesting is capped at 64 levels and bodies at 1 MiB.
func DefaultBindOpt() patchbind.BindOpt {
	return patchbind.BindOpt{
		Strictness: patchbind.Strictness{OnDuplicateKey: patchbind.Error},
		MaxDepth:   64,
		MaxBytes:   1 << 20,
	}
}

// OptFor returns opt with Partial set for PATCH requests.
func OptFor(method string, opt patchbind.BindOpt) patchbind.BindOpt {
	opt.Partial = method == http.MethodPatch
	return opt
}

// ErrorPayload shapes Issues for JSON responses.
func ErrorPayload(issues []patchbind.Issue) map[string]any {
	return map[string]any{"issues": issues}
}

// StatusFor maps a bind error to an HTTP status. Problems with the request
// content are 400, an ended request context is 408 and anything else is 500.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case patchbind.IsClientError(err):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	}
	return http.StatusInternalServerError
}

// WriteJSON encodes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an issues payload with the status from StatusFor.
func WriteError(w http.ResponseWriter, err error) {
	iss, _ := patchbind.AsIssues(err)
	WriteJSON(w, StatusFor(err), ErrorPayload(iss))
}

// RouteFunc extracts the route values a router matched for r.
type RouteFunc func(r *http.Request) map[string]string

// Config controls Bind.
type Config struct {
	Binder    *patchbind.Binder   // nil: package default.
	Validator patchbind.Validator // nil: binding only.
	Route     RouteFunc           // nil: no route values.
	// Opt is the base option; Partial is derived from the request method.
	// The zero value selects DefaultBindOpt.
	Opt *patchbind.BindOpt
}

// Run binds and validates r into a T. On failure it writes the response
// itself and reports false.
func Run[T any](w http.ResponseWriter, r *http.Request, cfg Config) (patchbind.Bound[T], bool) {
	opt := DefaultBindOpt()
	if cfg.Opt != nil {
		opt = *cfg.Opt
	}
	var route map[string]string
	if cfg.Route != nil {
		route = cfg.Route(r)
	}
	req := patchbind.FromHTTP(r, route)
	bd, iss, err := patchbind.BindAndValidateWith[T](r.Context(), cfg.Binder, req, cfg.Validator, OptFor(r.Method, opt))
	if err != nil {
		WriteError(w, err)
		return bd, false
	}
	if len(iss) > 0 {
		WriteJSON(w, http.StatusBadRequest, ErrorPayload(iss))
		return bd, false
	}
	return bd, true
}

// Bind returns net/http middleware that binds each request into a T and
// stores the result in the request context for BoundFromContext. Requests
// that fail binding or validation are answered with an issues payload.
func Bind[T any](cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bd, ok := Run[T](w, r, cfg)
			if !ok {
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithBound(r.Context(), bd)))
		})
	}
}
