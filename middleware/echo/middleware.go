package echomw

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reoring/patchbind"
	"github.com/reoring/patchbind/middleware"
)

// RouteValues returns the path parameters echo matched.
func RouteValues(c echo.Context) map[string]string {
	names, values := c.ParamNames(), c.ParamValues()
	out := make(map[string]string, len(names))
	for i, n := range names {
		if i < len(values) {
			out[n] = values[i]
		}
	}
	return out
}

// Bind binds the request into a T, stores Bound[T] in context on success,
// or returns 400 with Issues when binding or validation fails. PATCH requests
// bind in partial mode; opt nil selects DefaultBindOpt.
func Bind[T any](v patchbind.Validator, opt *patchbind.BindOpt) echo.MiddlewareFunc {
	base := middleware.DefaultBindOpt()
	if opt != nil {
		base = *opt
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			req := patchbind.FromHTTP(r, RouteValues(c))
			bd, iss, err := patchbind.BindAndValidate[T](r.Context(), req, v, middleware.OptFor(r.Method, base))
			if err != nil {
				out, _ := patchbind.AsIssues(err)
				return c.JSON(middleware.StatusFor(err), middleware.ErrorPayload(out))
			}
			if len(iss) > 0 {
				return c.JSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
			}
			c.SetRequest(r.WithContext(middleware.ContextWithBound(r.Context(), bd)))
			return next(c)
		}
	}
}

// GetBound fetches Bound[T] from echo.Context.
func GetBound[T any](c echo.Context) (patchbind.Bound[T], bool) {
	return middleware.BoundFromContext[T](c.Request().Context())
}
