package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"perltoolbox/internal/check"
	"perltoolbox/internal/config"
	"perltoolbox/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:          "lsp",
	Short:        "Run the Perl diagnostics language server over stdio",
	SilenceUsage: true,
	RunE:         runLSP,
}

func init() {
	lspCmd.Flags().Bool("stdio", true, "serve over stdin/stdout (the only transport)")
	lspCmd.Flags().Bool("watch-config", true, "reload perltoolbox.toml files when they change")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	watch, err := cmd.Flags().GetBool("watch-config")
	if err != nil {
		return fmt.Errorf("failed to get watch-config flag: %w", err)
	}

	log := logger()
	server := lsp.NewServer(os.Stdin, os.Stdout, lsp.ServerOptions{
		Runner:         check.NewProcessRunner(check.WithRunnerLogger(log)),
		Store:          config.NewStore(config.WithLogger(log)),
		Logger:         log,
		MaxDiagnostics: maxDiagnostics,
		WatchConfig:    watch,
	})
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
