package cmd

import (
	"fmt"
	"os"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"
)

// githubRepoSlug is the repository whose releases self-update installs.
const githubRepoSlug = "instancectl/instancectl"

func newSelfUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "self-update",
		Short: "Update instancectl to the latest version",
		Long: `Checks for the latest release of instancectl on GitHub and
replaces the running binary with it when it is newer.`,
		Args: cobra.NoArgs,
		RunE: runSelfUpdate,
	}
}

func runSelfUpdate(cmd *cobra.Command, args []string) error {
	current := rootCmd.Version
	if current == "" || current == "dev" {
		return fmt.Errorf("cannot self-update a development version")
	}
	ctx := commandContext(cmd)
	out := os.Stdout

	fmt.Fprintf(out, "Current version: %s\n", current)
	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(githubRepoSlug))
	if err != nil {
		return fmt.Errorf("error occurred while detecting version: %w", err)
	}
	if !found {
		return fmt.Errorf("latest version for %s could not be found on GitHub", githubRepoSlug)
	}
	if latest.LessOrEqual(current) {
		fmt.Fprintf(out, "Current version (%s) is the latest.\n", current)
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable path: %w", err)
	}
	fmt.Fprintf(out, "Updating to %s...\n", latest.Version())
	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("error occurred while updating binary: %w", err)
	}
	fmt.Fprintf(out, "Successfully updated to version %s\n", latest.Version())
	return nil
}
