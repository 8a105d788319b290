package cmd

import (
	"fmt"
	"strings"

	"instancectl/internal/app"
	"instancectl/internal/kube"
	"instancectl/internal/session"

	"github.com/spf13/cobra"
)

type statusOptions struct {
	namespaces bool
}

func newStatusCmd() *cobra.Command {
	opts := &statusOptions{}
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current session",
		Long: `Re-validates the stored session against the cluster (or the auth proxy)
and prints its phase, identity mode and namespace.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(true, kube.Target{})
			if err != nil {
				return err
			}
			return runStatus(cmd, application.Services(), opts)
		},
	}
	cmd.Flags().BoolVar(&opts.namespaces, "namespaces", false, "Also list the namespaces visible to the session")
	return cmd
}

func runStatus(cmd *cobra.Command, services *app.Services, opts *statusOptions) error {
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	services.Watcher.Check(ctx)
	st := services.Store.GetState()

	mode := "token"
	if services.Tokens.IsUsingOIDC() {
		mode = "oidc"
	}
	kubeContext, err := kube.CurrentContext(services.Config.Auth)
	if err != nil {
		kubeContext = "unknown"
	}

	fmt.Fprintf(out, "Context:   %s\n", kubeContext)
	fmt.Fprintf(out, "Session:   %s\n", st.Auth.Phase())
	fmt.Fprintf(out, "Mode:      %s\n", mode)
	if st.Namespace.Current != "" {
		fmt.Fprintf(out, "Namespace: %s\n", st.Namespace.Current)
	}

	if !opts.namespaces || st.Auth.Phase() != session.PhaseAuthenticated {
		return nil
	}
	if err := services.RefreshNamespaces(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "Namespaces: %s\n", strings.Join(services.Store.GetState().Namespace.Namespaces, ", "))
	return nil
}
