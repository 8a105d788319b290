package cmd

import (
	"fmt"

	"instancectl/internal/app"
	"instancectl/internal/kube"

	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Long: `Forgets the stored token. For an auth proxy session the proxy's sign-out
endpoint is called (or opened in a browser) first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(true, kube.Target{})
			if err != nil {
				return err
			}
			return runLogout(cmd, application.Services())
		},
	}
}

func runLogout(cmd *cobra.Command, services *app.Services) error {
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if !services.Tokens.IsUsingOIDC() {
		if _, err := services.Session.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "Logged out")
		return nil
	}

	// The proxy owns the session; local state follows the cookie check.
	if _, err := services.Session.Logout(ctx); err != nil {
		return err
	}
	if _, err := services.Session.CheckCookieAuthentication(ctx); err != nil {
		return err
	}
	if services.Store.Auth().Authenticated {
		return fmt.Errorf("auth proxy session is still valid after sign-out")
	}
	fmt.Fprintln(out, "Signed out at the auth proxy")
	return nil
}
