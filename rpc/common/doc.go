// Package common provides the configuration structures and logging setup
// shared by the kvapp server, client and command line.
//
// Key Components:
//
//   - DatabaseConfig / ServerConfig: the ordered list of configured databases
//     plus listener, timeout and logging settings. ApplyDefaults fills in the
//     defaults (127.0.0.1:8080, database "db" in "db.kv") and Validate
//     checks the struct tags with go-playground/validator, including URI-safe
//     and unique database names.
//
//   - ClientConfig: endpoints, timeout and retry settings of the HTTP client.
//
//   - API bodies: the JSON types of the HTTP API (identity, health, result and
//     the error envelope) plus KeyPath, which escapes a key into one path segment.
//
//   - Logger: a custom dragonboat logger.ILogger factory giving every package
//     logger the same "LEVEL | package | message" format. InitLoggers sets the
//     level of all kvapp loggers at once.
package common
