package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"rmspp/internal/buildpipeline"
	"rmspp/internal/driver"
	"rmspp/internal/ui"
)

type processOutcome struct {
	results []*driver.Result
	err     error
}

func processWithUI(ctx context.Context, title string, files []string, opts driver.Options) ([]*driver.Result, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan processOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := driver.ProcessFiles(ctx, files, optsCopy)
		outcomeCh <- processOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()
	if uiErr != nil {
		// UI закрылась раньше времени: дочитываем события, чтобы воркеры не встали
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && ctx.Err() == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
