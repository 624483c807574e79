// Package client implements a Go client for the kvapp HTTP API.
//
// A Client sends its requests through a transport.IClientTransport, which
// picks an endpoint round-robin and retries failed attempts. Keys are
// escaped per path segment, so keys containing '/' work as expected.
//
// Usage Example:
//
//	config := common.ClientConfig{
//		Endpoints:     []string{"http://127.0.0.1:8080"},
//		TimeoutSecond: 5,
//		RetryCount:    3,
//	}
//	c, err := client.NewClient(config, http.NewHttpClientTransport())
//	if err != nil {
//		panic(err)
//	}
//	defer c.Close()
//
//	_ = c.Put(ctx, "db", "age", []byte("25"))
//	value, found, _ := c.Get(ctx, "db", "age")
//
// Failed requests are returned as *Error carrying the HTTP status and the
// code and message of the server's error envelope. A Get of a missing key
// returns found == false without error.
package client
