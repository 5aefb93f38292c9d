package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/Lightwood13/msc/internal/catalog"
	"github.com/Lightwood13/msc/internal/display"
	"github.com/Lightwood13/msc/internal/types"
	"github.com/Lightwood13/msc/internal/validator"
	"github.com/Lightwood13/msc/internal/workspace"
	"github.com/Lightwood13/msc/pkg/pathutil"
)

// scriptInclude selects the scripts checked when no files are named.
const scriptInclude = "**/*.msc"

func checkCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	wsOpts := workspace.OptionsFromConfig(cfg)
	loader := workspace.NewLoader(wsOpts)

	paths := c.Args().Slice()
	if len(paths) == 0 {
		wsOpts.Include = []string{scriptInclude}
		files, err := workspace.Discover(wsOpts)
		if err != nil {
			return err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
	}

	opts := validator.DefaultOptions()
	opts.SuggestThreshold = float32(cfg.Diagnostics.SuggestThreshold)

	var errorCount, warningCount int
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		display := pathutil.ToRelative(abs, cfg.Project.Root)

		text, err := loader.ReadFile(ctx, abs)
		if err != nil {
			fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", display, err)
			errorCount++
			continue
		}
		for _, d := range validator.Validate(text, opts) {
			fmt.Fprintf(c.App.Writer, "%s:%d:%d: %s: %s\n",
				display, d.Range.Start.Line+1, d.Range.Start.Character+1, d.Severity, d.Message)
			if d.Severity == types.SeverityError {
				errorCount++
			} else {
				warningCount++
			}
		}
	}

	fmt.Fprintf(c.App.Writer, "%d files checked: %d errors, %d warnings\n", len(paths), errorCount, warningCount)
	if errorCount > 0 || (c.Bool("warnings-as-errors") && warningCount > 0) {
		return cli.Exit("", 1)
	}
	return nil
}

// catalogListing is the catalog output without a namespace or class.
type catalogListing struct {
	Namespaces []string `json:"namespaces" yaml:"namespaces" toml:"namespaces"`
	Classes    []string `json:"classes" yaml:"classes" toml:"classes"`
}

func catalogCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	svc, _, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	if err := loadWorkspace(ctx, svc, cfg); err != nil {
		return err
	}
	snap := svc.Catalog().Snapshot()
	format := c.String("format")

	var (
		out  any
		tree *display.TreeNode
	)
	switch ns, class := c.String("namespace"), c.String("class"); {
	case ns != "" && class != "":
		return fmt.Errorf("--namespace and --class are mutually exclusive")
	case ns != "":
		table, ok := snap.Namespace(ns)
		if !ok {
			return fmt.Errorf("unknown namespace %q", ns)
		}
		out, tree = table, display.TableTree("namespace "+ns, table)
	case class != "":
		table, ok := snap.Class(class)
		if !ok {
			return fmt.Errorf("unknown class %q", class)
		}
		out, tree = table, display.TableTree("class "+class, table)
	default:
		out = catalogListing{Namespaces: snap.NamespaceNames(), Classes: snap.ClassNames()}
		if format == "tree" {
			tree = catalogTree(snap)
		}
	}

	if format == "tree" {
		formatter := display.NewTreeFormatter(display.FormatterOptions{ShowDocs: true})
		_, err := io.WriteString(c.App.Writer, formatter.Format(tree))
		return err
	}
	return encode(c.App.Writer, format, out)
}

func catalogTree(snap *catalog.Snapshot) *display.TreeNode {
	root := &display.TreeNode{Name: "catalog"}
	for _, name := range snap.NamespaceNames() {
		table, _ := snap.Namespace(name)
		root.Children = append(root.Children, display.TableTree("namespace "+name, table))
	}
	for _, name := range snap.ClassNames() {
		table, _ := snap.Class(name)
		root.Children = append(root.Children, display.TableTree("class "+name, table))
	}
	return root
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(v)
	default:
		return fmt.Errorf("unknown format %q (want json, yaml, toml or tree)", format)
	}
}

func hoverCommand(c *cli.Context) error {
	if c.NArg() != 3 {
		return fmt.Errorf("usage: msc hover FILE LINE COL")
	}
	path := c.Args().Get(0)
	line, err := strconv.Atoi(c.Args().Get(1))
	if err != nil || line < 1 {
		return fmt.Errorf("invalid line %q", c.Args().Get(1))
	}
	col, err := strconv.Atoi(c.Args().Get(2))
	if err != nil || col < 1 {
		return fmt.Errorf("invalid column %q", c.Args().Get(2))
	}

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}
	ctx := c.Context
	svc, loader, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	if err := loadWorkspace(ctx, svc, cfg); err != nil {
		return err
	}

	text, err := loader.ReadFile(ctx, path)
	if err != nil {
		return err
	}
	svc.OpenOrUpdateDocument(path, text)
	hover, ok := svc.GetHover(path, types.Position{Line: line - 1, Character: col - 1})
	if !ok {
		return cli.Exit("no symbol at position", 1)
	}
	fmt.Fprintln(c.App.Writer, hover.Markdown())
	return nil
}
