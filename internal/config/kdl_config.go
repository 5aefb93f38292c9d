package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"

	"github.com/Lightwood13/msc/internal/debug"
)

// LoadKDL loads <dir>/.msc.kdl. A missing file yields a nil config.
func LoadKDL(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	return LoadKDLFile(path)
}

// LoadKDLFile parses the config file at path. Relative paths inside it are
// resolved against the directory holding the file.
func LoadKDLFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	cfg, err := parseKDL(string(content), dir)
	if err != nil {
		return nil, err
	}

	cfg.Project.Root = resolvePath(dir, cfg.Project.Root)
	if cfg.Workspace.Defaults != "" {
		cfg.Workspace.Defaults = resolvePath(cfg.Project.Root, cfg.Workspace.Defaults)
	}
	debug.LogWorkspace("loaded config %s (root %s)", path, cfg.Project.Root)
	return cfg, nil
}

func resolvePath(base, p string) string {
	if p == "" {
		return base
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(base, p))
}

// parseKDL reads the config document on top of the defaults for root.
func parseKDL(content, root string) (*Config, error) {
	cfg := Default(root)
	cfg.Project.Root = ""
	cfg.Project.Name = ""

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children { // project { root "." name "scripts" }
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "workspace":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "include":
					cfg.Workspace.Include = collectStringArgs(cn)
				case "exclude":
					// An exclude list replaces the default exclusions.
					cfg.Workspace.Exclude = collectStringArgs(cn)
				case "respect_gitignore":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Workspace.RespectGitignore = b
					}
				case "defaults":
					if s, ok := firstStringArg(cn); ok {
						cfg.Workspace.Defaults = s
					}
				case "max_file_size":
					if v, ok := firstIntArg(cn); ok {
						cfg.Workspace.MaxFileSize = int64(v)
					}
					if s, ok := firstStringArg(cn); ok {
						sz, err := parseSize(s)
						if err != nil {
							return nil, fmt.Errorf("workspace.max_file_size: %w", err)
						}
						cfg.Workspace.MaxFileSize = sz
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "performance":
			for _, cn := range n.Children {
				if nodeName(cn) == "max_goroutines" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Performance.MaxGoroutines = v
					}
				}
			}
		case "diagnostics":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Diagnostics.Enabled = b
					}
				case "suggest_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Diagnostics.SuggestThreshold = v
					}
				}
			}
		default:
			debug.LogWorkspace("ignoring unknown config section %q", nodeName(n))
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		debug.LogWorkspace("invalid float value for '%s', got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

// collectStringArgs accepts both `exclude "a" "b"` and the block form
// `exclude { "a"; "b" }`.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

// parseSize handles size strings like "10MB", "500KB", "1GB"
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	var multiplier int64 = 1
	var numStr string

	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1024 * 1024 * 1024
		numStr = strings.TrimSuffix(s, "GB")
	case strings.HasSuffix(s, "MB"):
		multiplier = 1024 * 1024
		numStr = strings.TrimSuffix(s, "MB")
	case strings.HasSuffix(s, "KB"):
		multiplier = 1024
		numStr = strings.TrimSuffix(s, "KB")
	case strings.HasSuffix(s, "B"):
		numStr = strings.TrimSuffix(s, "B")
	default:
		numStr = s
	}

	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return 0, err
	}
	return num * multiplier, nil
}
