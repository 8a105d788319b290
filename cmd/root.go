package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"instancectl/internal/app"
	"instancectl/internal/kube"

	"github.com/spf13/cobra"
)

// configPath replaces the layered config lookup with a single directory.
var configPath string

// debug enables verbose logging across the application.
var debug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "instancectl",
	Short: "Edit and deploy operator instances from your terminal",
	Long: `instancectl logs in to a Kubernetes cluster, either with a bearer token or
through an OIDC auth proxy session, and lets you edit an operator instance as
YAML. Drafts start from the deployed object or the operator's example defaults,
are diffed before submit and are installed or upgraded with server-side apply.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid arguments, failed logins)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "instancectl version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

// newApplication bootstraps config, logging and services for a subcommand.
func newApplication(noTUI bool, target kube.Target) (*app.Application, error) {
	cfg := app.NewConfig(noTUI, debug, configPath)
	cfg.Target = target

	application, err := app.NewApplication(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Directory holding config.yaml (default: layered user and project config)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newServeCmd())
}
