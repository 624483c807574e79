package common

import (
	"fmt"
	"net/url"
)

// --------------------------------------------------------------------------
// HTTP API bodies shared by server and client
// --------------------------------------------------------------------------

// ErrorBody is the inner object of the error envelope. Code is the negated HTTP status.
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope returned for every failed request
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ResultResponse is returned by PUT and DELETE. Error is only set on engine failure.
type ResultResponse struct {
	Result bool       `json:"result"`
	Error  *ErrorBody `json:"error,omitempty"`
}

// HealthResponse is returned by GET /health
type HealthResponse struct {
	Healthy bool `json:"healthy"`
}

// DatabaseEntry is one database in the identity response
type DatabaseEntry struct {
	Name string `json:"name"`
}

// IdentityResponse is returned by GET /
type IdentityResponse struct {
	Name      string          `json:"name"`
	Version   string          `json:"version"`
	Databases []DatabaseEntry `json:"databases"`
}

// --------------------------------------------------------------------------
// Paths
// --------------------------------------------------------------------------

const (
	PathIdentity = "/"
	PathHealth   = "/health"
	PathMetrics  = "/metrics"
	PathAPI      = "/api"
)

// KeyPath returns the escaped request path of key in database.
// A '/' inside the key is escaped as %2F.
func KeyPath(database, key string) string {
	return fmt.Sprintf("%s/%s/%s", PathAPI, url.PathEscape(database), url.PathEscape(key))
}
