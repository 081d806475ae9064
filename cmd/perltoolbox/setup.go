package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"perltoolbox/internal/logging"
	"perltoolbox/internal/prof"
	"perltoolbox/internal/telemetry"
	"perltoolbox/internal/version"
)

// app holds process-wide state built from the persistent flags.
var app struct {
	logger  *slog.Logger
	closers []func()
}

// setupApp reads the persistent flags, installs the logger and, when asked
// for, the telemetry exporters. closeApp undoes it.
func setupApp(cmd *cobra.Command, _ []string) error {
	root := cmd.Root().PersistentFlags()

	envFile, err := root.GetString("env-file")
	if err != nil {
		return fmt.Errorf("failed to get env-file flag: %w", err)
	}
	if err := loadEnvFile(envFile); err != nil {
		return err
	}

	levelStr, err := root.GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	level, err := logging.ParseLevel(levelStr)
	if err != nil {
		return err
	}
	formatStr, err := root.GetString("log-format")
	if err != nil {
		return fmt.Errorf("failed to get log-format flag: %w", err)
	}
	logFile, err := root.GetString("log-file")
	if err != nil {
		return fmt.Errorf("failed to get log-file flag: %w", err)
	}

	cfg := logging.DefaultConfig()
	cfg.Level = level
	cfg.Format = logging.ParseFormat(formatStr)
	if logFile != "" {
		f, err := logging.OpenFile(logFile)
		if err != nil {
			return err
		}
		cfg.Output = f
		app.closers = append(app.closers, func() { _ = f.Close() })
	}
	app.logger = logging.New(cfg)
	slog.SetDefault(app.logger)

	if err := setupProfiling(cmd); err != nil {
		return err
	}
	return setupTelemetry(cmd)
}

// setupProfiling starts the profilers requested by --cpu-profile,
// --mem-profile and --runtime-trace.
func setupProfiling(cmd *cobra.Command) error {
	root := cmd.Root().PersistentFlags()
	var cfg prof.Config
	var err error
	if cfg.CPU, err = root.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.Heap, err = root.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.Trace, err = root.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !cfg.Enabled() {
		return nil
	}
	stop, err := prof.Start(cfg)
	if err != nil {
		return err
	}
	app.closers = append(app.closers, func() {
		if err := stop(); err != nil {
			fmt.Fprintf(os.Stderr, "profiling: %v\n", err)
		}
	})
	return nil
}

// setupTelemetry installs span and metric exporters for --trace and --metrics.
func setupTelemetry(cmd *cobra.Command) error {
	root := cmd.Root().PersistentFlags()
	tracePath, err := root.GetString("trace")
	if err != nil {
		return fmt.Errorf("failed to get trace flag: %w", err)
	}
	metricsPath, err := root.GetString("metrics")
	if err != nil {
		return fmt.Errorf("failed to get metrics flag: %w", err)
	}
	if tracePath == "" && metricsPath == "" {
		return nil
	}

	cfg := telemetry.Config{
		ServiceName:    "perltoolbox",
		ServiceVersion: version.Version,
	}
	if cfg.Traces, err = openTelemetryFile(tracePath); err != nil {
		return err
	}
	if cfg.Metrics, err = openTelemetryFile(metricsPath); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	shutdown, err := telemetry.Init(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to start telemetry: %w", err)
	}
	// Registered after the files so it runs before they are closed.
	app.closers = append(app.closers, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "telemetry: flush error: %v\n", err)
		}
	})
	return nil
}

func openTelemetryFile(path string) (io.Writer, error) {
	if path == "" {
		return nil, nil
	}
	// #nosec G304 -- path comes from a command-line flag
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	app.closers = append(app.closers, func() { _ = f.Close() })
	return f, nil
}

// closeApp runs the registered closers in reverse order.
func closeApp() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
	app.closers = nil
}

func logger() *slog.Logger {
	if app.logger == nil {
		return slog.Default()
	}
	return app.logger
}
