package cmd

import (
	"instancectl/internal/kube"

	"github.com/spf13/cobra"
)

type editOptions struct {
	target kube.Target
	noTUI  bool
}

func newEditCmd() *cobra.Command {
	opts := &editOptions{}
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit an instance in the interactive editor",
		Long: `Opens the instance editor. The draft starts from the deployed object, or
from the example shipped in the operator's ClusterServiceVersion when nothing
is deployed yet. Submitting installs or upgrades the instance.

With --no-tui the starting draft is printed instead, for editing offline and
applying with 'instancectl deploy -f'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(opts.noTUI, opts.target)
			if err != nil {
				return err
			}
			return application.Run(commandContext(cmd))
		},
	}
	cmd.Flags().StringVar(&opts.target.APIVersion, "api-version", "", "API version of the instance kind, e.g. example.com/v1")
	cmd.Flags().StringVar(&opts.target.Kind, "kind", "", "Instance kind")
	cmd.Flags().StringVar(&opts.target.Name, "name", "", "Instance name; empty starts a new instance")
	cmd.Flags().StringVar(&opts.target.CSV, "csv", "", "ClusterServiceVersion that ships example defaults")
	cmd.Flags().StringVarP(&opts.target.Namespace, "namespace", "n", "", "Namespace; defaults to the session namespace")
	cmd.Flags().BoolVar(&opts.noTUI, "no-tui", false, "Print the starting draft instead of opening the editor")
	_ = cmd.MarkFlagRequired("api-version")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
