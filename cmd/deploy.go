package cmd

import (
	"fmt"
	"io"
	"os"

	"instancectl/internal/app"
	"instancectl/internal/kube"
	"instancectl/internal/session"

	"github.com/spf13/cobra"
)

type deployOptions struct {
	file   string
	dryRun bool
}

func newDeployCmd() *cobra.Command {
	opts := &deployOptions{}
	cmd := &cobra.Command{
		Use:   "deploy -f FILE",
		Short: "Install or upgrade an instance from a YAML file",
		Long: `Validates the manifest the same way the editor does and applies it with
server-side apply. With --dry-run nothing is applied; the diff against the
deployed object is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(true, kube.Target{})
			if err != nil {
				return err
			}
			return runDeploy(cmd, application.Services(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "filename", "f", "", "Manifest to deploy, or - for stdin")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print the diff against the deployed object instead of applying")
	_ = cmd.MarkFlagRequired("filename")
	return cmd
}

// readManifest reads path, or stdin when path is "-".
func readManifest(path string, stdin io.Reader) (string, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read manifest: %w", err)
	}
	return string(data), nil
}

func runDeploy(cmd *cobra.Command, services *app.Services, opts *deployOptions) error {
	ctx := commandContext(cmd)
	out := cmd.OutOrStdout()

	text, err := readManifest(opts.file, cmd.InOrStdin())
	if err != nil {
		return err
	}
	u, err := services.Validate(text)
	if err != nil {
		return err
	}
	if services.Store.Auth().Phase() != session.PhaseAuthenticated {
		return fmt.Errorf("no active session, run `instancectl login` first")
	}

	if opts.dryRun {
		diff, err := services.DiffAgainstDeployed(ctx, text)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s (on submit: %s)\n", diff.Title, diff.Event)
		if diff.Empty {
			fmt.Fprintln(out, diff.EmptyText)
			return nil
		}
		fmt.Fprint(out, diff.Text)
		return nil
	}

	applied, err := services.Deploy(ctx, u)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Deployed %s %s/%s\n", applied.GetKind(), applied.GetNamespace(), applied.GetName())
	return nil
}
