package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/export"
	"github.com/jonathan/resume-tailor/internal/fetch"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/logger"
	"github.com/jonathan/resume-tailor/internal/recorder"
	"github.com/jonathan/resume-tailor/internal/stages"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// newBackend is swapped out in tests.
var newBackend = llm.NewBackend

// app holds the configuration and the lazily opened collaborators of one command.
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	closers []func() error
}

// setup loads configuration and builds the logger.
func setup() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Debug = true
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return &app{cfg: cfg, log: log}, nil
}

// controller builds backend -> invoker -> stages -> controller.
func (a *app) controller(ctx context.Context) (*workflow.Controller, error) {
	backend, err := newBackend(ctx, a.cfg.BackendConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM backend: %w", err)
	}
	a.closers = append(a.closers, backend.Close)

	invoker := llm.NewInvoker(backend, a.cfg.InvokerConfig(), a.log)
	runner := stages.New(invoker, stages.Settings{
		ApprovalThreshold:     a.cfg.Workflow.ApprovalThreshold,
		TemperatureAnalysis:   a.cfg.LLM.TemperatureAnalysis,
		TemperatureGeneration: a.cfg.LLM.TemperatureGeneration,
	}, a.log)

	a.log.Debug("llm backend ready", zap.String(logger.FieldProvider, backend.Name()), zap.String(logger.FieldModel, backend.Model()))
	return workflow.NewController(runner, a.cfg.Workflow.MaxIterations, a.log), nil
}

// store opens the generation history.
func (a *app) store(ctx context.Context) (recorder.Store, error) {
	store, err := recorder.Open(ctx, a.cfg.Storage.DatabaseURL, a.log)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

func (a *app) exporter() *export.Exporter {
	return export.New(a.cfg.Export.OutputDir, a.cfg.Export.PDFEnabled, a.log)
}

func (a *app) fetchOptions() *fetch.Options {
	opts := fetch.DefaultOptions()
	opts.UseBrowser = a.cfg.Server.UseBrowser
	opts.Logger = a.log
	return opts
}

// close releases everything opened through the app, last opened first.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	_ = a.log.Sync()
	return errors.Join(errs...)
}
