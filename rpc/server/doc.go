// Package server implements the kvapp request router and dispatcher.
//
// Every request is first parsed by ParseRoute into exactly one Route
// variant. The Dispatcher then switches over the variant, calls the store
// handle of the resolved database and encodes the outcome:
//
//	GET    /                  identity: service name, version, database names
//	GET    /health            {"healthy": true}
//	GET    /metrics           Prometheus text
//	GET    /api/{db}/{key}    raw value (application/octet-stream) or 404
//	PUT    /api/{db}/{key}    request body becomes the value, {"result": true}
//	DELETE /api/{db}/{key}    {"result": <key existed>}
//
// Failures use the envelope {"error": {"code": -<status>, "message": "..."}}.
// A failing engine on PUT or DELETE answers 500 with {"result": false, "error": {...}}.
//
// The key is always exactly one path segment; a '/' inside a key has to be
// sent as %2F. An unknown database answers 404 for every method.
//
// The Dispatcher is safe for concurrent use. It only reads the Registry and
// delegates all synchronization to the storage engines.
package server
