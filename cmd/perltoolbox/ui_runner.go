package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"perltoolbox/internal/check"
	"perltoolbox/internal/config"
	"perltoolbox/internal/ui"
)

type checkOutcome struct {
	results []check.FileResult
	err     error
}

// runCheckWithUI runs CheckFiles while a progress view draws on stderr.
func runCheckWithUI(ctx context.Context, title string, runner check.Runner, provider config.Provider, files []string, opts check.BatchOptions) ([]check.FileResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan check.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		batch := opts
		batch.Events = events
		res, err := check.CheckFiles(ctx, runner, provider, files, batch)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	pipelines := len(opts.Pipelines)
	if pipelines == 0 {
		pipelines = len(check.Pipelines)
	}
	model := ui.NewProgressModel(title, files, pipelines, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	// Quitting the view early (ctrl+c) abandons the batch.
	cancel()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
