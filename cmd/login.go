package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"instancectl/internal/app"
	"instancectl/internal/kube"

	"github.com/spf13/cobra"
)

type loginOptions struct {
	token     string
	tokenFile string
	oidc      bool
	cookie    string
}

func newLoginCmd() *cobra.Command {
	opts := &loginOptions{}
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a bearer token or an auth proxy session",
		Long: `Logs in to the cluster and remembers the session for later commands.

Token mode validates the token against the API server before storing it.
With --oidc the session belongs to the auth proxy in front of the cluster:
pass the proxy's session cookie with --cookie, or omit it to re-check the
cookie stored by an earlier login.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(true, kube.Target{})
			if err != nil {
				return err
			}
			return runLogin(cmd, application.Services(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.token, "token", "", "Bearer token")
	cmd.Flags().StringVar(&opts.tokenFile, "token-file", "", "Read the bearer token from a file, or - for stdin")
	cmd.Flags().BoolVar(&opts.oidc, "oidc", false, "Use the auth proxy session instead of a token")
	cmd.Flags().StringVar(&opts.cookie, "cookie", "", "Auth proxy session cookie value (with --oidc)")
	cmd.MarkFlagsMutuallyExclusive("token", "token-file")
	cmd.MarkFlagsMutuallyExclusive("token", "oidc")
	cmd.MarkFlagsMutuallyExclusive("token-file", "oidc")
	return cmd
}

// resolveToken returns the token from --token or --token-file.
func resolveToken(opts *loginOptions, stdin io.Reader) (string, error) {
	if opts.token != "" {
		return opts.token, nil
	}
	if opts.tokenFile == "" {
		return "", fmt.Errorf("one of --token, --token-file or --oidc is required")
	}

	var data []byte
	var err error
	if opts.tokenFile == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(opts.tokenFile)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", opts.tokenFile)
	}
	return token, nil
}

func runLogin(cmd *cobra.Command, services *app.Services, opts *loginOptions) error {
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	if opts.oidc {
		if opts.cookie != "" {
			if err := services.Tokens.SetSessionCookie(opts.cookie); err != nil {
				return fmt.Errorf("failed to store session cookie: %w", err)
			}
		}
		if _, err := services.Session.CheckCookieAuthentication(ctx); err != nil {
			return err
		}
		if !services.Store.Auth().Authenticated {
			return fmt.Errorf("no valid auth proxy session")
		}
		fmt.Fprintf(out, "Logged in through the auth proxy (namespace %s)\n", services.Store.Auth().DefaultNamespace)
		return nil
	}

	token, err := resolveToken(opts, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if _, err := services.Session.Authenticate(ctx, token, false); err != nil {
		return err
	}
	fmt.Fprintf(out, "Logged in (namespace %s)\n", services.Store.Auth().DefaultNamespace)
	return nil
}
