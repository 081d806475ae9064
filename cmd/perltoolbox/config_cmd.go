package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"perltoolbox/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [dir]",
	Short: "Print the settings that apply to files in a directory",
	Long: `Print the effective settings for Perl files in [dir] (the current directory
when omitted) as TOML: defaults, the nearest perltoolbox.toml, then
PERLTOOLBOX_* environment variables. Editor settings are not included.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 && args[0] != "" {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if st, err := os.Stat(abs); err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	} else if !st.IsDir() {
		abs = filepath.Dir(abs)
	}

	settings, used, err := config.Load(abs)
	if err != nil {
		return err
	}
	if err := settings.Validate(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if used != "" {
		fmt.Fprintf(out, "# from %s\n", used)
	} else {
		fmt.Fprintln(out, "# no perltoolbox.toml found, built-in defaults")
	}
	return toml.NewEncoder(out).Encode(config.OverlayOf(settings))
}
