package ginmw

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/reoring/patchbind"
	"github.com/reoring/patchbind/middleware"
)

// RouteValues returns the path parameters gin matched.
func RouteValues(c *gin.Context) map[string]string {
	out := make(map[string]string, len(c.Params))
	for _, p := range c.Params {
		out[p.Key] = p.Value
	}
	return out
}

// Bind binds the request into a T (path params, query, JSON body), stores
// Bound[T] in the context, and on failure returns 400 with Issues payload.
// PATCH requests bind in partial mode; opt nil selects DefaultBindOpt.
func Bind[T any](v patchbind.Validator, opt *patchbind.BindOpt) gin.HandlerFunc {
	base := middleware.DefaultBindOpt()
	if opt != nil {
		base = *opt
	}
	return func(c *gin.Context) {
		req := patchbind.FromHTTP(c.Request, RouteValues(c))
		bd, iss, err := patchbind.BindAndValidate[T](c.Request.Context(), req, v, middleware.OptFor(c.Request.Method, base))
		if err != nil {
			out, _ := patchbind.AsIssues(err)
			c.AbortWithStatusJSON(middleware.StatusFor(err), middleware.ErrorPayload(out))
			return
		}
		if len(iss) > 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorPayload(iss))
			return
		}
		// store bound in request context
		c.Request = c.Request.WithContext(middleware.ContextWithBound(c.Request.Context(), bd))
		c.Next()
	}
}

// GetBound fetches Bound[T] from gin.Context.
func GetBound[T any](c *gin.Context) (patchbind.Bound[T], bool) {
	return middleware.BoundFromContext[T](c.Request.Context())
}
