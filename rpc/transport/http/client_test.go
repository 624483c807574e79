package http

import (
	"context"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestClientRoundRobin(t *testing.T) {
	var hitsA, hitsB atomic.Int64
	a := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hitsA.Add(1) }))
	defer a.Close()
	b := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hitsB.Add(1) }))
	defer b.Close()

	client := NewHttpClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{Endpoints: []string{a.URL, b.URL}, TimeoutSecond: 5, RetryCount: 1}))
	defer client.Close()

	for i := 0; i < 10; i++ {
		resp, err := client.Send(context.Background(), http.MethodGet, "/health", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	}
	assert.Equal(t, int64(5), hitsA.Load())
	assert.Equal(t, int64(5), hitsB.Load())
}

func TestClientRetriesOnNextEndpoint(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer good.Close()

	// a closed server refuses connections
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	client := NewHttpClientTransport()
	require.NoError(t, client.Connect(common.ClientConfig{Endpoints: []string{deadURL, good.URL}, TimeoutSecond: 5, RetryCount: 2}))
	defer client.Close()

	for i := 0; i < 4; i++ {
		resp, err := client.Send(context.Background(), http.MethodGet, "/", nil)
		require.NoError(t, err)
		assert.Equal(t, "ok", string(resp.Body))
	}
}

func TestClientConnectErrors(t *testing.T) {
	client := NewHttpClientTransport()
	assert.Error(t, client.Connect(common.ClientConfig{}))

	_, err := client.Send(context.Background(), http.MethodGet, "/", nil)
	assert.Error(t, err)
}

func TestNewEndpoint(t *testing.T) {
	ep, err := newEndpoint("127.0.0.1:8080", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", ep.baseURL)

	ep, err = newEndpoint("https://kv.example.com/", 0)
	require.NoError(t, err)
	assert.Equal(t, "https://kv.example.com", ep.baseURL)

	ep, err = newEndpoint("unix:///tmp/kv.sock", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://unix", ep.baseURL)
}
