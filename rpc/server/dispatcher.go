package server

import (
	"errors"
	"github.com/ValentinKolb/kvapp/lib/store"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"net/http"
	"time"
)

var Logger = logger.GetLogger("http")

// Registry is the read-only view of the configured databases the dispatcher needs
type Registry interface {
	Resolver
	Names() []string
}

// Options configures a Dispatcher
type Options struct {
	// Version is reported by the identity endpoint
	Version string
	// MaxValueBytes limits the body of a PUT, 0 disables the limit
	MaxValueBytes int64
	// Metrics receives per-request observations, a new set is created if nil
	Metrics *Metrics
}

// Dispatcher is the http.Handler that serves the whole kvapp API.
// It holds no per-request state; everything a request needs lives in the
// ServeHTTP invocation.
type Dispatcher struct {
	reg     Registry
	opts    Options
	metrics *Metrics
}

// NewDispatcher creates a Dispatcher serving the databases of reg
func NewDispatcher(reg Registry, opts Options) *Dispatcher {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	return &Dispatcher{
		reg:     reg,
		opts:    opts,
		metrics: opts.Metrics,
	}
}

// ServeHTTP parses the request into a Route and handles every variant.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	route := ParseRoute(r.Method, r.URL.EscapedPath(), d.reg)

	var status int
	switch route.Kind {
	case RouteIdentity:
		status = d.serveIdentity(w)
	case RouteHealth:
		status = writeJSON(w, http.StatusOK, common.HealthResponse{Healthy: true})
	case RouteMetrics:
		status = d.serveMetrics(w)
	case RouteGet:
		status = d.serveGet(w, route)
	case RoutePut:
		status = d.servePut(w, r, route)
	case RouteDelete:
		status = d.serveDelete(w, route)
	case RouteBadRequest:
		status = writeError(w, http.StatusBadRequest, route.Message)
	case RouteMethodNotAllowed:
		status = writeMethodNotAllowed(w, route.Allow)
	case RouteNotFound:
		status = writeError(w, http.StatusNotFound, route.Message)
	default:
		Logger.Errorf("unhandled route kind %s for %s %s", route.Kind, r.Method, r.URL.Path)
		status = writeError(w, http.StatusInternalServerError, "internal error")
	}

	d.metrics.observe(route, status, start)
}

// --------------------------------------------------------------------------
// Handlers
// --------------------------------------------------------------------------

func (d *Dispatcher) serveIdentity(w http.ResponseWriter) int {
	names := d.reg.Names()
	entries := make([]common.DatabaseEntry, len(names))
	for i, name := range names {
		entries[i] = common.DatabaseEntry{Name: name}
	}
	return writeJSON(w, http.StatusOK, common.IdentityResponse{
		Name:      common.ServiceName,
		Version:   d.opts.Version,
		Databases: entries,
	})
}

func (d *Dispatcher) serveMetrics(w http.ResponseWriter) int {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	d.metrics.WritePrometheus(w)
	return http.StatusOK
}

func (d *Dispatcher) serveGet(w http.ResponseWriter, route Route) int {
	value, found, err := route.Handle.Get(route.Key)
	if err != nil {
		return d.engineError(w, route, err, false)
	}
	if !found {
		return writeError(w, http.StatusNotFound, "not found")
	}
	return writeValue(w, value)
}

func (d *Dispatcher) servePut(w http.ResponseWriter, r *http.Request, route Route) int {
	limit := d.opts.MaxValueBytes
	if limit > 0 && r.ContentLength > limit {
		return writeError(w, http.StatusRequestEntityTooLarge, "value too large")
	}

	body := r.Body
	if limit > 0 {
		body = http.MaxBytesReader(w, r.Body, limit)
	}
	value, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return writeError(w, http.StatusRequestEntityTooLarge, "value too large")
		}
		Logger.Warningf("failed to read body of PUT %s/%s: %v", route.Database, route.Key, err)
		return writeError(w, http.StatusBadRequest, "failed to read request body")
	}

	if _, _, err := route.Handle.Put(route.Key, value); err != nil {
		return d.engineError(w, route, err, true)
	}
	d.metrics.observeValueSize(route.Database, len(value))
	return writeResult(w, true)
}

func (d *Dispatcher) serveDelete(w http.ResponseWriter, route Route) int {
	removed, err := route.Handle.Delete(route.Key)
	if err != nil {
		return d.engineError(w, route, err, true)
	}
	return writeResult(w, removed)
}

// engineError logs a failed store operation and answers it. Mutating
// operations answer with a result body, reads with the error envelope.
func (d *Dispatcher) engineError(w http.ResponseWriter, route Route, err error, mutating bool) int {
	if store.IsCode(err, store.RetCInvalidKey) {
		return writeError(w, http.StatusBadRequest, "invalid key")
	}

	Logger.Errorf("%s on database %q, key %q failed: %v", route.Kind, route.Database, route.Key, err)
	if mutating {
		return writeFailedResult(w, "internal error")
	}
	return writeError(w, http.StatusInternalServerError, "internal error")
}
