package http

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/kvapp/rpc/common"
	"github.com/lni/dragonboat/v4/logger"
	"net"
	"net/http"
	"sync"
)

var Logger = logger.GetLogger("http")

// Server serves an http.Handler behind the kvapp middleware stack on a TCP
// address or a unix socket.
type Server struct {
	server       *http.Server
	config       common.ServerConfig
	ready        chan struct{}
	readyOnce    sync.Once
	mu           sync.Mutex
	listener     net.Listener
	shutdownOnce sync.Once
}

// NewHttpServerTransport creates a stopped server. Call Start to begin serving.
func NewHttpServerTransport(config common.ServerConfig, handler http.Handler) *Server {
	config.ApplyDefaults()

	return &Server{
		server: &http.Server{
			Handler:      NewRouter(handler),
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		config: config,
		ready:  make(chan struct{}),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IServerTransport)
// --------------------------------------------------------------------------

func (s *Server) Start(ctx context.Context) error {
	listener, err := listen(s.config)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	s.readyOnce.Do(func() { close(s.ready) })

	Logger.Infof("Starting HTTP server on %s", listener.Addr())

	errChan := make(chan error, 1)
	go func() {
		err := s.server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errChan <- err
	}()

	select {
	case <-ctx.Done():
		Logger.Infof("HTTP server shutdown signal received")
		// the cancelled ctx would abort the drain immediately
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	}
}

func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		Logger.Debugf("HTTP server shutdown initiated")
		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("http server shutdown error: %w", err)
			Logger.Errorf("HTTP server shutdown error: %v", err)
			return
		}
		Logger.Infof("HTTP server stopped gracefully")
	})
	return shutdownErr
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// Ready is closed once the listener is bound
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address, nil before Start succeeded.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
