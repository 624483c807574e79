// Package http implements the HTTP transport of kvapp.
//
// Server side, NewHttpServerTransport wraps the API handler in a chi
// middleware stack (request id, real ip, debug request logging, panic
// recovery) and serves it on a TCP address or a unix socket. Start blocks
// until its context is cancelled and then drains in-flight requests within
// the configured shutdown timeout.
//
// Client side, NewHttpClientTransport sends requests to a list of endpoints
// chosen round-robin and retries failed attempts on the next endpoint. The
// client transport is safe for concurrent use after Connect.
//
// Endpoints may be given as http(s) URLs, host:port or unix:/path/to.sock.
package http
