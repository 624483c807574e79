package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/ValentinKolb/kvapp/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"net/http"
)

var Logger = logger.GetLogger("client")

// Client talks to a kvapp server over its HTTP API
type Client struct {
	config    common.ClientConfig
	transport transport.IClientTransport
}

// NewClient connects the transport and returns a client using it
//
// Usage:
//
//	c, err := client.NewClient(config, http.NewHttpClientTransport())
//	if err != nil {
//		return err
//	}
//	defer c.Close()
//	value, found, err := c.Get(ctx, "db", "age")
func NewClient(config common.ClientConfig, t transport.IClientTransport) (*Client, error) {
	if err := t.Connect(config); err != nil {
		return nil, err
	}
	return &Client{config: config, transport: t}, nil
}

// --------------------------------------------------------------------------
// Key operations
// --------------------------------------------------------------------------

// Get returns the value of key in database. found is false if the key does not exist.
func (c *Client) Get(ctx context.Context, database, key string) (value []byte, found bool, err error) {
	resp, err := c.transport.Send(ctx, http.MethodGet, common.KeyPath(database, key), nil)
	if err != nil {
		return nil, false, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, true, nil
	case http.StatusNotFound:
		// the server answers 404 for missing keys and unknown databases alike
		return nil, false, c.checkDatabase(ctx, database)
	default:
		return nil, false, decodeError(resp)
	}
}

// Put stores value under key in database
func (c *Client) Put(ctx context.Context, database, key string, value []byte) error {
	resp, err := c.transport.Send(ctx, http.MethodPut, common.KeyPath(database, key), bytes.NewReader(value))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return nil
}

// Delete removes key from database and reports whether it existed
func (c *Client) Delete(ctx context.Context, database, key string) (removed bool, err error) {
	resp, err := c.transport.Send(ctx, http.MethodDelete, common.KeyPath(database, key), nil)
	if err != nil {
		return false, err
	}
	if resp.StatusCode != http.StatusOK {
		return false, decodeError(resp)
	}

	var result common.ResultResponse
	if err := json.Unmarshal(resp.Body, &result); err != nil {
		return false, fmt.Errorf("invalid delete response: %w", err)
	}
	return result.Result, nil
}

// --------------------------------------------------------------------------
// Service endpoints
// --------------------------------------------------------------------------

// Info returns the identity of the server
func (c *Client) Info(ctx context.Context) (*common.IdentityResponse, error) {
	var identity common.IdentityResponse
	if err := c.getJSON(ctx, common.PathIdentity, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Health reports whether the server considers itself healthy
func (c *Client) Health(ctx context.Context) (bool, error) {
	var health common.HealthResponse
	if err := c.getJSON(ctx, common.PathHealth, &health); err != nil {
		return false, err
	}
	return health.Healthy, nil
}

// Close releases the transport
func (c *Client) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.transport.Send(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("invalid response from %s: %w", path, err)
	}
	return nil
}

// checkDatabase returns ErrUnknownDatabase if database is not served
func (c *Client) checkDatabase(ctx context.Context, database string) error {
	identity, err := c.Info(ctx)
	if err != nil {
		Logger.Debugf("could not check database %q: %v", database, err)
		return nil
	}
	for _, d := range identity.Databases {
		if d.Name == database {
			return nil
		}
	}
	return &Error{StatusCode: http.StatusNotFound, Code: -http.StatusNotFound, Message: fmt.Sprintf("unknown database %q", database)}
}
