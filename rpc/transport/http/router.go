package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"net/http"
	"time"
)

// NewRouter wraps handler in the middleware stack. Every path and method is
// passed on to handler, which does its own routing.
func NewRouter(handler http.Handler) http.Handler {
	r := chi.NewRouter()

	// Middleware stack - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Handle("/*", handler)
	r.NotFound(handler.ServeHTTP)
	r.MethodNotAllowed(handler.ServeHTTP)

	return r
}

// --------------------------------------------------------------------------
// Middleware (logging)
// --------------------------------------------------------------------------

// requestLogger logs every request with its status and duration at debug level
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap response writer to capture status code
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		Logger.Debugf("[%s] %s %s => %d (%d bytes) took %s",
			middleware.GetReqID(r.Context()),
			r.Method,
			r.URL.EscapedPath(),
			ww.Status(),
			ww.BytesWritten(),
			time.Since(start),
		)
	})
}
