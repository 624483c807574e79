// Package transport defines the server and client side interfaces of the
// kvapp HTTP transport. The implementation lives in the http sub-package.
package transport
