package http

import (
	"bytes"
	"context"
	"fmt"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/ValentinKolb/kvapp/rpc/transport"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

func NewHttpClientTransport() transport.IClientTransport {
	return &httpClientTransport{}
}

// endpoint is one server the client can talk to. Unix socket endpoints get
// their own http.Client dialing the socket.
type endpoint struct {
	baseURL string
	client  *http.Client
}

type httpClientTransport struct {
	endpoints  []endpoint
	counter    uint32
	retryCount int
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientTransport)
// --------------------------------------------------------------------------

func (t *httpClientTransport) Connect(config common.ClientConfig) error {
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("no endpoints configured")
	}

	timeout := time.Duration(config.TimeoutSecond) * time.Second

	endpoints := make([]endpoint, len(config.Endpoints))
	for i, server := range config.Endpoints {
		ep, err := newEndpoint(server, timeout)
		if err != nil {
			return err
		}
		endpoints[i] = ep
	}

	t.endpoints = endpoints
	t.counter = 0
	t.retryCount = max(config.RetryCount, 1)

	return nil
}

func (t *httpClientTransport) Send(ctx context.Context, method, path string, body io.Reader) (*transport.Response, error) {
	// Check if the transport is initialized
	if len(t.endpoints) == 0 {
		return nil, fmt.Errorf("http transport not initialized")
	}

	// the body has to be replayable for retries
	var payload []byte
	if body != nil {
		var err error
		if payload, err = io.ReadAll(body); err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	var lastErr error
	for i := 0; i < t.retryCount; i++ {
		// Select the next server via round-robin
		idx := atomic.AddUint32(&t.counter, 1) % uint32(len(t.endpoints))
		ep := t.endpoints[idx]

		resp, err := ep.do(ctx, method, path, payload)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		Logger.Debugf("request %s %s to %s failed (attempt %d/%d): %v", method, path, ep.baseURL, i+1, t.retryCount, err)
	}
	return nil, lastErr
}

func (t *httpClientTransport) Close() error {
	for _, ep := range t.endpoints {
		ep.client.CloseIdleConnections()
	}
	t.endpoints = nil
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// newEndpoint accepts http(s) URLs, host:port and unix:/path/to.sock
func newEndpoint(server string, timeout time.Duration) (endpoint, error) {
	if socketPath, ok := strings.CutPrefix(server, "unix:"); ok {
		socketPath = strings.TrimPrefix(socketPath, "//")
		dialer := &net.Dialer{Timeout: timeout}
		return endpoint{
			baseURL: "http://unix",
			client: &http.Client{
				Timeout: timeout,
				Transport: &http.Transport{
					DialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
						return dialer.DialContext(ctx, "unix", socketPath)
					},
					MaxIdleConnsPerHost: 10,
					IdleConnTimeout:     90 * time.Second,
				},
			},
		}, nil
	}

	if !strings.Contains(server, "://") {
		server = "http://" + server
	}
	parsedURL, err := url.Parse(server)
	if err != nil {
		return endpoint{}, err
	}
	if parsedURL.Host == "" {
		return endpoint{}, fmt.Errorf("invalid endpoint %q: missing host", server)
	}

	return endpoint{
		baseURL: strings.TrimRight(parsedURL.String(), "/"),
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

func (ep endpoint) do(ctx context.Context, method, path string, payload []byte) (*transport.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, ep.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/octet-stream")
	}

	resp, err := ep.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			Logger.Errorf("Failed to close response body: %v", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &transport.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}
