package cmd

import (
	"context"

	"instancectl/internal/config"
	"instancectl/internal/kube"
	"instancectl/internal/mcpserver"
	"instancectl/pkg/logging"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	transport   string
	host        string
	port        int
	metricsAddr string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session and instance operations as MCP tools",
		Long: `Starts an MCP server exposing auth_status, login, logout,
validate_instance, diff_instance and deploy_instance.

Transports:
  stdio            (default) for MCP clients that spawn instancectl
  streamable-http  served on --host:--port at /mcp
  sse              served on --host:--port at /sse and /message

Flags override the serve section of the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.transport, "transport", "", "stdio, streamable-http or sse")
	cmd.Flags().StringVar(&opts.host, "host", "", "Listen host for HTTP transports")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Listen port for HTTP transports")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	return cmd
}

// serveConfig applies the flags the user set on top of cfg.
func serveConfig(cmd *cobra.Command, cfg config.ServeConfig, opts *serveOptions) config.ServeConfig {
	flags := cmd.Flags()
	if flags.Changed("transport") {
		cfg.Transport = opts.transport
	}
	if flags.Changed("host") {
		cfg.Host = opts.host
	}
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = opts.metricsAddr
	}
	return cfg
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	application, err := newApplication(true, kube.Target{})
	if err != nil {
		return err
	}
	services := application.Services()
	cfg := serveConfig(cmd, services.Config.Serve, opts)

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()
	go services.Watcher.Run(ctx)

	tools := mcpserver.NewTools(services.Session, services, services.Store)
	logging.Info("Serve", "Starting MCP server (transport %s)", cfg.Transport)
	return mcpserver.NewServer(cfg, tools, rootCmd.Version).Run(ctx)
}
