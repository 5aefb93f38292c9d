package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Lightwood13/msc/internal/config"
	"github.com/Lightwood13/msc/internal/debug"
	"github.com/Lightwood13/msc/internal/lsp"
	"github.com/Lightwood13/msc/internal/mcp"
	"github.com/Lightwood13/msc/internal/service"
	"github.com/Lightwood13/msc/internal/watch"
	"github.com/Lightwood13/msc/internal/workspace"
)

func debounce(cfg *config.Config) time.Duration {
	return time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
}

func lspCommand(c *cli.Context) error {
	// Stdout carries the protocol
	debug.SetProtocolMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(c.Context)
	defer cancel()

	svc, _, err := newService(ctx, cfg)
	if err != nil {
		return err
	}

	// Without an explicit root the client's workspace folder is used.
	wsOpts := workspace.OptionsFromConfig(cfg)
	if !c.IsSet("root") && !c.IsSet("config") {
		wsOpts.Root = ""
	}

	server := lsp.New(svc, lsp.Options{
		Workspace: wsOpts,
		Watch:     cfg.Watch.Enabled,
		Debounce:  debounce(cfg),
	})
	err = server.Serve(ctx, os.Stdin, os.Stdout)
	switch {
	case errors.Is(err, lsp.ErrExitWithoutShutdown):
		return cli.Exit("", 1)
	case errors.Is(err, context.Canceled):
		return nil
	}
	return err
}

func mcpCommand(c *cli.Context) error {
	debug.SetProtocolMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext(c.Context)
	defer cancel()

	svc, loader, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	if err := loadWorkspace(ctx, svc, cfg); err != nil {
		return err
	}

	if cfg.Watch.Enabled {
		stop, err := startWatcher(ctx, svc, cfg)
		if err != nil {
			debug.LogMCP("file watcher unavailable: %v", err)
		} else {
			defer stop()
		}
	}

	err = mcp.New(svc, loader).Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func startWatcher(ctx context.Context, svc *service.Service, cfg *config.Config) (func(), error) {
	w, err := watch.New(watch.Options{
		Workspace: workspace.OptionsFromConfig(cfg),
		Debounce:  debounce(cfg),
	}, svc)
	if err != nil {
		return nil, err
	}
	w.OnBatch(func(count int, took time.Duration) {
		debug.LogWatch("applied %d declaration file changes in %v", count, took)
	})
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return nil, err
	}
	return func() { _ = w.Stop() }, nil
}
