// Package cmd implements the command-line interface of kvapp. It provides a
// hierarchical command structure with operations for running the server and
// interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Starts the HTTP server for the configured databases
//   - kv: Client commands against a running server (get, put, delete, info, health, perf)
//   - util: Shared utilities for flags, environment and config files (internal use)
//
// See kvapp -help for a list of all commands.
package cmd
