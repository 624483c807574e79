package transport

import (
	"context"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"io"
	"net/http"
)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// IServerTransport serves an http.Handler on the configured endpoint
type IServerTransport interface {
	// Start listens on the endpoint and blocks until ctx is cancelled or serving fails.
	// Cancellation triggers a graceful shutdown.
	Start(ctx context.Context) error
	// Stop gracefully shuts the transport down. Safe to call more than once.
	Stop(ctx context.Context) error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// Response is the raw answer of the server
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IClientTransport is the interface for the client side of the HTTP API
type IClientTransport interface {
	// Connect initializes the transport with the given configuration
	Connect(config common.ClientConfig) error
	// Send sends a request for path to one of the endpoints and returns the response
	Send(ctx context.Context, method, path string, body io.Reader) (*Response, error)
	// Close closes the transport connection
	Close() error
}
