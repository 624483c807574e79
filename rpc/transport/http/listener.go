package http

import (
	"fmt"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"net"
	"os"
)

// listen opens a unix socket when the endpoint is a socket path and a TCP
// listener otherwise.
func listen(config common.ServerConfig) (net.Listener, error) {
	if !config.IsUnixSocket() {
		listener, err := net.Listen("tcp", config.ListenAddress())
		if err != nil {
			return nil, fmt.Errorf("failed to listen on %s: %w", config.ListenAddress(), err)
		}
		return listener, nil
	}

	socketPath := config.Endpoint

	// Remove existing socket file if it exists
	if err := os.RemoveAll(socketPath); err != nil {
		return nil, fmt.Errorf("failed to remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create unix socket: %w", err)
	}
	return listener, nil
}
