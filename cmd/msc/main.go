package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/Lightwood13/msc/internal/config"
	"github.com/Lightwood13/msc/internal/debug"
	"github.com/Lightwood13/msc/internal/service"
	"github.com/Lightwood13/msc/internal/version"
	"github.com/Lightwood13/msc/internal/workspace"
)

// loadConfigWithOverrides loads configuration and applies CLI flag overrides
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadWithRoot(c.String("config"), c.String("root"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Apply(config.Overrides{
		Root:     c.String("root"),
		Include:  c.StringSlice("include"),
		Exclude:  c.StringSlice("exclude"),
		Defaults: c.String("defaults"),
	})
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newService creates the service configured by cfg with the builtin
// declarations loaded. Workspace files are not loaded.
func newService(ctx context.Context, cfg *config.Config) (*service.Service, *workspace.Loader, error) {
	opts := service.DefaultOptions()
	opts.DisableDiagnostics = !cfg.Diagnostics.Enabled
	opts.Validator.SuggestThreshold = float32(cfg.Diagnostics.SuggestThreshold)
	svc := service.New(opts)

	loader := workspace.NewLoader(workspace.OptionsFromConfig(cfg))
	if path := cfg.Workspace.Defaults; path != "" {
		text, err := loader.ReadFile(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read default declarations: %w", err)
		}
		if err := svc.LoadDefaultDeclarations(text); err != nil {
			debug.LogWorkspace("default declarations: %v", err)
		}
	}
	return svc, loader, nil
}

// loadWorkspace fills the catalog with every declaration file of cfg.
// Unreadable or truncated files are logged; they do not fail the load.
func loadWorkspace(ctx context.Context, svc *service.Service, cfg *config.Config) error {
	start := time.Now()
	files, err := workspace.LoadWorkspace(ctx, workspace.OptionsFromConfig(cfg))
	if err != nil {
		if files == nil {
			return err
		}
		debug.LogWorkspace("workspace load: %v", err)
	}
	if err := svc.ReplaceWorkspace(files); err != nil {
		debug.LogWorkspace("workspace declarations: %v", err)
	}
	debug.LogWorkspace("loaded %d declaration files in %v", len(files), time.Since(start))
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "msc",
		Usage:                  "Language intelligence for msc scripts",
		Version:                version.Info(),
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (default: <root>/" + config.FileName + ")",
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Workspace root searched for declaration files (overrides config)",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Declaration files to load, as glob patterns (e.g., --include 'lib/**/*.nms')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Paths to skip, as glob patterns (e.g., --exclude '**/old/**')",
			},
			&cli.StringFlag{
				Name:  "defaults",
				Usage: "Declaration file with builtin namespaces merged under the workspace",
			},
			&cli.BoolFlag{
				Name:   "debug-log",
				Usage:  "Write debug output to a file in the temp directory",
				Hidden: true,
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("debug-log") {
				path, err := debug.InitDebugLogFile()
				if err != nil {
					return fmt.Errorf("failed to open debug log: %w", err)
				}
				fmt.Fprintf(os.Stderr, "Debug log: %s\n", path)
			}
			return nil
		},
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:   "lsp",
				Usage:  "Run the language server over stdio",
				Action: lspCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server over stdio",
				Action: mcpCommand,
			},
			{
				Name:      "check",
				Usage:     "Report diagnostics for scripts (all *.msc files under the root when none are given)",
				ArgsUsage: "[files...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "warnings-as-errors",
						Usage: "Exit non-zero on warnings too",
					},
				},
				Action: checkCommand,
			},
			{
				Name:  "catalog",
				Usage: "Print the symbol catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: json, yaml, toml or tree",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "namespace",
						Aliases: []string{"n"},
						Usage:   "Only show this namespace",
					},
					&cli.StringFlag{
						Name:  "class",
						Usage: "Only show this class",
					},
				},
				Action: catalogCommand,
			},
			{
				Name:      "hover",
				Usage:     "Print the hover for a position (one based line and column)",
				ArgsUsage: "FILE LINE COL",
				Action:    hoverCommand,
			},
		},
		Action: lspCommand,
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}
