package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"perltoolbox/internal/cache"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove cached check results",
	Long:  "Remove the result cache written by \"perltoolbox check --disk-cache\".",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().Bool("dry-run", false, "report what would be removed")
}

func runClean(cmd *cobra.Command, _ []string) error {
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	dc, err := cache.Open()
	if err != nil {
		return fmt.Errorf("failed to open disk cache: %w", err)
	}
	entries, size, err := dc.Stats()
	if err != nil {
		return fmt.Errorf("failed to read %q: %w", dc.Dir(), err)
	}
	verb := "would remove"
	if !dryRun {
		if err := dc.DropAll(); err != nil {
			return fmt.Errorf("failed to remove %q: %w", dc.Dir(), err)
		}
		verb = "removed"
	}
	if !quiet || dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d cached results (%d bytes) from %s\n", verb, entries, size, dc.Dir())
	}
	return nil
}
