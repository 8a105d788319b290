package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"instancectl/internal/config"
	"instancectl/pkg/logging"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	serverSubsystem = "MCPServer"
	serverName      = "instancectl"
	shutdownTimeout = 5 * time.Second
	streamablePath  = "/mcp"
)

// Server serves the instancectl tools over the configured transport.
type Server struct {
	cfg config.ServeConfig
	mcp *server.MCPServer
}

// NewServer creates a Server exposing tools.
func NewServer(cfg config.ServeConfig, tools *Tools, version string) *Server {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
	)
	tools.Register(s)
	return &Server{cfg: cfg, mcp: s}
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) addr() string {
	host := s.cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := s.cfg.Port
	if port == 0 {
		port = config.DefaultServePort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Handler returns the HTTP handler for the HTTP transports.
func (s *Server) Handler() (http.Handler, error) {
	switch s.cfg.Transport {
	case config.ServeTransportStreamableHTTP:
		mux := http.NewServeMux()
		mux.Handle(streamablePath, server.NewStreamableHTTPServer(s.mcp))
		return mux, nil
	case config.ServeTransportSSE:
		return server.NewSSEServer(s.mcp,
			server.WithBaseURL("http://"+s.addr()),
			server.WithSSEEndpoint("/sse"),
			server.WithMessageEndpoint("/message"),
			server.WithKeepAlive(true),
			server.WithKeepAliveInterval(30*time.Second),
		), nil
	default:
		return nil, fmt.Errorf("transport %q is not served over HTTP", s.cfg.Transport)
	}
}

// Run serves until ctx is done or the transport fails.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.MetricsAddr != "" {
		metrics := &http.Server{Addr: s.cfg.MetricsAddr, Handler: metricsMux()}
		go func() {
			logging.Info(serverSubsystem, "Serving metrics on %s/metrics", s.cfg.MetricsAddr)
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(serverSubsystem, err, "Metrics server error")
			}
		}()
		defer shutdown(metrics)
	}

	switch s.cfg.Transport {
	case "", config.ServeTransportStdio:
		logging.Info(serverSubsystem, "Serving MCP over stdio")
		err := server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio transport: %w", err)
		}
		return nil
	default:
		return s.serveHTTP(ctx)
	}
}

func (s *Server) serveHTTP(ctx context.Context) error {
	h, err := s.Handler()
	if err != nil {
		return err
	}
	srv := &http.Server{Addr: s.addr(), Handler: h}

	errCh := make(chan error, 1)
	go func() {
		logging.Info(serverSubsystem, "Serving MCP (%s) on %s", s.cfg.Transport, s.addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdown(srv)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("%s transport: %w", s.cfg.Transport, err)
	}
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn(serverSubsystem, "Shutdown of %s failed: %v", srv.Addr, err)
	}
}
