package patchbind

import (
	"bytes"
	"io"
	"net/http"
)

// Request is the read-only view of an incoming request the binder consumes.
type Request interface {
	// Body returns the body stream; nil means no body.
	Body() io.Reader
	// ContentLength returns the declared body length, or -1 when unknown.
	ContentLength() int64
	// RouteValues returns the route parameters matched for the request.
	RouteValues() map[string]string
	// QueryValues returns the query string; a key may carry several values.
	QueryValues() map[string][]string
}

type httpRequest struct {
	r     *http.Request
	route map[string]string
}

// FromHTTP adapts an *http.Request. route carries the path parameters the
// router matched; it may be nil.
func FromHTTP(r *http.Request, route map[string]string) Request {
	return &httpRequest{r: r, route: route}
}

// FromServeMux adapts a request routed by http.ServeMux, reading the named
// wildcards through r.PathValue. Empty values are treated as absent.
func FromServeMux(r *http.Request, names ...string) Request {
	route := make(map[string]string, len(names))
	for _, n := range names {
		if v := r.PathValue(n); v != "" {
			route[n] = v
		}
	}
	return FromHTTP(r, route)
}

func (h *httpRequest) Body() io.Reader {
	if h.r.Body == nil || h.r.Body == http.NoBody {
		return nil
	}
	return h.r.Body
}

func (h *httpRequest) ContentLength() int64 {
	if h.r.Body == nil || h.r.Body == http.NoBody {
		return 0
	}
	return h.r.ContentLength
}

func (h *httpRequest) RouteValues() map[string]string { return h.route }

func (h *httpRequest) QueryValues() map[string][]string {
	if h.r.URL == nil {
		return nil
	}
	return h.r.URL.Query()
}

type staticRequest struct {
	body  []byte
	route map[string]string
	query map[string][]string
}

// NewRequest builds a Request from in-memory parts. A nil body means no body.
func NewRequest(body []byte, route map[string]string, query map[string][]string) Request {
	return &staticRequest{body: body, route: route, query: query}
}

func (s *staticRequest) Body() io.Reader {
	if s.body == nil {
		return nil
	}
	return bytes.NewReader(s.body)
}

func (s *staticRequest) ContentLength() int64             { return int64(len(s.body)) }
func (s *staticRequest) RouteValues() map[string]string   { return s.route }
func (s *staticRequest) QueryValues() map[string][]string { return s.query }
