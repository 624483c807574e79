// Package rpc groups the network side of kvapp: everything between an HTTP
// request arriving and a store handle being called, and the client that
// talks to it.
//
// The package is organized into several subpackages:
//
//   - common: Configuration structures, defaults, the API body types shared
//     by server and client, and the logger factory.
//
//   - server: Request routing into tagged route variants, dispatch to the
//     database registry, response encoding and request metrics.
//
//   - transport: The HTTP listener (TCP or unix socket, chi middleware,
//     graceful shutdown) and the round-robin client transport.
//
//   - client: A Go client for the HTTP API used by the kv commands.
package rpc
