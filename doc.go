// Package patchbind binds HTTP requests to typed models from three sources
// at once: the JSON body, the route values and the query string.
//
// Features:
//
// - Merge with fixed precedence: query beats route, route beats body
// - Case-insensitive matching of request keys to property names
// - Conversion of route and query text to the declared property types (UUIDs, numbers, booleans, times, slices)
// - A touched set recording which properties the request actually supplied
// - Partial updates: models embedding Patch receive the touched names, and validation issues for untouched properties are suppressed
// - Streaming body enforcement of duplicate keys, nesting depth and size, on a pluggable JSON driver (go-json by default)
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - Place token sources under source/, validation under validation/ and framework adapters under middleware/.
// - Binding is atomic: a failed bind returns no model.
//
// Typical usage:
//
//	type PatchBookRequest struct {
//		patchbind.Patch
//		BookID uuid.UUID `json:"bookId" validate:"required"`
//		Title  string    `json:"title" validate:"min=1,max=255"`
//	}
//
//	req := patchbind.FromHTTP(r, map[string]string{"bookId": chi.URLParam(r, "bookId")})
//	bd, issues, err := patchbind.BindAndValidate[PatchBookRequest](ctx, req, validation.New(), patchbind.BindOpt{Partial: true})
//	bd.Value.Touched("title") // true only when the request carried a title
package patchbind
