package http

import (
	"context"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Path", r.URL.EscapedPath())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(r.Method + " " + string(body)))
	})
}

func startServer(t *testing.T, config common.ServerConfig, handler http.Handler) (*Server, context.CancelFunc, <-chan error) {
	t.Helper()
	s := NewHttpServerTransport(config, handler)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	select {
	case <-s.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("server failed to start: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("server did not start in time")
	}
	return s, cancel, done
}

func TestRouterPassesEverythingThrough(t *testing.T) {
	router := NewRouter(echoHandler())

	for _, tc := range []struct{ method, target string }{
		{http.MethodGet, "/"},
		{http.MethodPut, "/api/db/key"},
		{http.MethodDelete, "/api/db/a%2Fb"},
		{"FOO", "/anything/at/all"},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, strings.NewReader("x")))
		assert.Equal(t, http.StatusOK, rec.Code, "%s %s", tc.method, tc.target)
		assert.Equal(t, tc.method+" x", rec.Body.String())
		assert.Equal(t, tc.target, rec.Header().Get("X-Path"))
	}
}

func TestRouterRecoversPanics(t *testing.T) {
	router := NewRouter(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/panic" {
			panic("boom")
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fine", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServerTCPLifecycle(t *testing.T) {
	s, cancel, done := startServer(t, common.ServerConfig{Endpoint: "127.0.0.1:0"}, echoHandler())

	resp, err := http.Post("http://"+s.Addr().String()+"/api/db/k", "application/octet-stream", strings.NewReader("hello"))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "POST hello", string(body))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	// Stop after shutdown is a no-op
	assert.NoError(t, s.Stop(context.Background()))
}

func TestServerStopReturnsStart(t *testing.T) {
	s, cancel, done := startServer(t, common.ServerConfig{Endpoint: "127.0.0.1:0"}, echoHandler())
	defer cancel()

	require.NoError(t, s.Stop(context.Background()))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestServerListenError(t *testing.T) {
	s, cancel, _ := startServer(t, common.ServerConfig{Endpoint: "127.0.0.1:0"}, echoHandler())
	defer cancel()

	// the port is taken
	other := NewHttpServerTransport(common.ServerConfig{Endpoint: s.Addr().String()}, echoHandler())
	err := other.Start(context.Background())
	assert.Error(t, err)
}

func TestUnixSocketRoundTrip(t *testing.T) {
	socket := filepath.Join(t.TempDir(), "kv.sock")
	_, cancel, done := startServer(t, common.ServerConfig{Endpoint: socket}, echoHandler())

	client := NewHttpClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{
		Endpoints:     []string{"unix:" + socket},
		TimeoutSecond: 5,
		RetryCount:    1,
	}))
	defer client.Close()

	resp, err := client.Send(context.Background(), http.MethodPut, "/api/db/k", strings.NewReader("v"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "PUT v", string(resp.Body))

	cancel()
	assert.NoError(t, <-done)
}
