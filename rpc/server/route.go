package server

import (
	"github.com/ValentinKolb/kvapp/lib/store"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"net/http"
	"net/url"
	"strings"
)

// --------------------------------------------------------------------------
// Route variants
// --------------------------------------------------------------------------

// RouteKind tags the outcome of parsing a request path
type RouteKind int

const (
	RouteNotFound RouteKind = iota
	RouteBadRequest
	RouteMethodNotAllowed
	RouteIdentity
	RouteHealth
	RouteMetrics
	RouteGet
	RoutePut
	RouteDelete
)

func (k RouteKind) String() string {
	switch k {
	case RouteNotFound:
		return "not_found"
	case RouteBadRequest:
		return "bad_request"
	case RouteMethodNotAllowed:
		return "method_not_allowed"
	case RouteIdentity:
		return "identity"
	case RouteHealth:
		return "health"
	case RouteMetrics:
		return "metrics"
	case RouteGet:
		return "get"
	case RoutePut:
		return "put"
	case RouteDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Route is the single result of parsing one request.
// Database, Key and Handle are only set for RouteGet, RoutePut and RouteDelete.
type Route struct {
	Kind     RouteKind
	Database string
	Key      string
	Handle   *store.Handle
	Allow    string // allowed methods, set for RouteMethodNotAllowed
	Message  string // error message, set for the error variants
}

// Resolver looks up the store handle of a database by name
type Resolver interface {
	Lookup(name string) (*store.Handle, bool)
}

const (
	apiPrefix     = common.PathAPI
	allowReadOnly = http.MethodGet
	allowKeyOps   = "GET, PUT, DELETE"
)

// --------------------------------------------------------------------------
// Parsing
// --------------------------------------------------------------------------

// ParseRoute maps method and escaped request path to exactly one Route.
//
// The API path has the form /api/{db}/{key}. Segments are split on '/' in the
// escaped path and decoded afterwards, so a key containing '/' must be sent
// as %2F. An unknown database yields RouteNotFound for every method, before
// the key or the method are looked at.
func ParseRoute(method, escapedPath string, reg Resolver) Route {
	switch escapedPath {
	case "", "/":
		return fixedRoute(method, RouteIdentity)
	case common.PathHealth:
		return fixedRoute(method, RouteHealth)
	case common.PathMetrics:
		return fixedRoute(method, RouteMetrics)
	}

	if escapedPath != apiPrefix && !strings.HasPrefix(escapedPath, apiPrefix+"/") {
		return notFound("not found")
	}

	rest := strings.TrimPrefix(strings.TrimPrefix(escapedPath, apiPrefix), "/")
	if rest == "" {
		return badRequest("missing database and key")
	}

	segments := strings.Split(rest, "/")

	dbName, err := url.PathUnescape(segments[0])
	if err != nil {
		return badRequest("malformed database name")
	}
	handle, ok := reg.Lookup(dbName)
	if !ok {
		return notFound("not found")
	}

	switch {
	case len(segments) == 1, len(segments) == 2 && segments[1] == "":
		return badRequest("missing key")
	case len(segments) > 2:
		return badRequest("key must be a single path segment, encode '/' as %2F")
	}

	key, err := url.PathUnescape(segments[1])
	if err != nil {
		return badRequest("malformed key")
	}

	route := Route{Database: dbName, Key: key, Handle: handle}
	switch method {
	case http.MethodGet:
		route.Kind = RouteGet
	case http.MethodPut:
		route.Kind = RoutePut
	case http.MethodDelete:
		route.Kind = RouteDelete
	default:
		return methodNotAllowed(allowKeyOps)
	}
	return route
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func fixedRoute(method string, kind RouteKind) Route {
	if method != http.MethodGet {
		return methodNotAllowed(allowReadOnly)
	}
	return Route{Kind: kind}
}

func notFound(msg string) Route {
	return Route{Kind: RouteNotFound, Message: msg}
}

func badRequest(msg string) Route {
	return Route{Kind: RouteBadRequest, Message: msg}
}

func methodNotAllowed(allow string) Route {
	return Route{Kind: RouteMethodNotAllowed, Allow: allow, Message: "method not allowed"}
}
