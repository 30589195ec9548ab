// Package registry is the declarative table of listing endpoints shared by
// the HTTP server and the API client.
package registry

import (
	"fmt"
	"net/url"
	"strings"
)

// Op names a listing operation.
type Op string

const (
	OpList      Op = "list"
	OpGet       Op = "get"
	OpCreate    Op = "create"
	OpUpdate    Op = "update"
	OpDelete    Op = "delete"
	OpListOwned Op = "listOwned"
)

// Schema identifies the body shape declared for a response status.
type Schema int

const (
	SchemaEmpty Schema = iota
	SchemaListing
	SchemaListingList
	SchemaValidationError
	SchemaNotFound
	SchemaUnauthorized
)

func (s Schema) String() string {
	switch s {
	case SchemaListing:
		return "listing"
	case SchemaListingList:
		return "listing[]"
	case SchemaValidationError:
		return "validation_error"
	case SchemaNotFound:
		return "not_found"
	case SchemaUnauthorized:
		return "unauthorized"
	default:
		return "empty"
	}
}

// Route describes one endpoint. It is a value type; the response table is
// unexported so a Route handed out by the Registry cannot be altered.
type Route struct {
	Op     Op
	Method string
	Path   string
	Auth   bool

	responses map[int]Schema
}

// Expects returns the schema declared for status.
func (r Route) Expects(status int) (Schema, bool) {
	s, ok := r.responses[status]
	return s, ok
}

// SuccessStatus is the lowest declared 2xx status.
func (r Route) SuccessStatus() int {
	best := 0
	for status := range r.responses {
		if status >= 200 && status < 300 && (best == 0 || status < best) {
			best = status
		}
	}
	return best
}

// Statuses lists every declared status.
func (r Route) Statuses() []int {
	out := make([]int, 0, len(r.responses))
	for status := range r.responses {
		out = append(out, status)
	}
	return out
}

// Registry is built once at start-up and never mutated.
type Registry struct {
	routes map[Op]Route
	order  []Op
}

// New builds the listing route table.
func New() *Registry {
	r := &Registry{routes: make(map[Op]Route)}

	r.add(Route{Op: OpList, Method: "GET", Path: "/api/listings", responses: map[int]Schema{
		200: SchemaListingList,
		400: SchemaValidationError,
	}})
	// Registered ahead of /api/listings/:id so the static path wins.
	r.add(Route{Op: OpListOwned, Method: "GET", Path: "/api/owner/listings", Auth: true, responses: map[int]Schema{
		200: SchemaListingList,
		400: SchemaValidationError,
		401: SchemaUnauthorized,
	}})
	r.add(Route{Op: OpGet, Method: "GET", Path: "/api/listings/:id", responses: map[int]Schema{
		200: SchemaListing,
		404: SchemaNotFound,
	}})
	r.add(Route{Op: OpCreate, Method: "POST", Path: "/api/listings", Auth: true, responses: map[int]Schema{
		201: SchemaListing,
		400: SchemaValidationError,
		401: SchemaUnauthorized,
	}})
	r.add(Route{Op: OpUpdate, Method: "PUT", Path: "/api/listings/:id", Auth: true, responses: map[int]Schema{
		200: SchemaListing,
		400: SchemaValidationError,
		401: SchemaUnauthorized,
		404: SchemaNotFound,
	}})
	r.add(Route{Op: OpDelete, Method: "DELETE", Path: "/api/listings/:id", Auth: true, responses: map[int]Schema{
		204: SchemaEmpty,
		401: SchemaUnauthorized,
		404: SchemaNotFound,
	}})
	return r
}

func (r *Registry) add(route Route) {
	r.routes[route.Op] = route
	r.order = append(r.order, route.Op)
}

// Route returns the route for op. Unknown ops are a programming error.
func (r *Registry) Route(op Op) Route {
	route, ok := r.routes[op]
	if !ok {
		panic(fmt.Sprintf("registry: unknown operation %q", op))
	}
	return route
}

// All returns the routes in registration order.
func (r *Registry) All() []Route {
	out := make([]Route, 0, len(r.order))
	for _, op := range r.order {
		out = append(out, r.routes[op])
	}
	return out
}

// BuildURL replaces each ":name" path segment with the escaped value of
// params[name]. Params without a matching segment are ignored.
func BuildURL(path string, params map[string]string) string {
	if len(params) == 0 {
		return path
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		if v, ok := params[seg[1:]]; ok {
			segments[i] = url.PathEscape(v)
		}
	}
	return strings.Join(segments, "/")
}
