package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// FileName is the configuration file looked up in the project root and
// the home directory.
const FileName = ".msc.kdl"

// Defaults applied when neither config file sets a value.
const (
	DefaultInclude          = "**/*.nms"
	DefaultMaxFileSize      = 1024 * 1024
	DefaultDebounceMs       = 300
	DefaultSuggestThreshold = 0.85
)

type Config struct {
	Project     Project
	Workspace   Workspace
	Watch       Watch
	Performance Performance
	Diagnostics Diagnostics
}

type Project struct {
	Root string
	Name string
}

// Workspace selects the declaration files loaded into the catalog.
type Workspace struct {
	Include          []string
	Exclude          []string
	RespectGitignore bool   // Also skip paths matched by the root .gitignore
	Defaults         string // Builtin declarations merged under every rescan
	MaxFileSize      int64
}

type Watch struct {
	Enabled    bool
	DebounceMs int
}

type Performance struct {
	MaxGoroutines int // Concurrent file reads during a workspace load
}

type Diagnostics struct {
	Enabled          bool
	SuggestThreshold float64 // Minimum similarity for keyword suggestions, 0 disables them
}

func defaultExcludes() []string {
	return []string{
		"**/.git/**",
		"**/node_modules/**",
		"**/.vscode-test/**",
		"**/out/**",
	}
}

// Default returns the configuration used when no file is found.
func Default(root string) *Config {
	return &Config{
		Project: Project{Root: root, Name: filepath.Base(root)},
		Workspace: Workspace{
			Include:          []string{DefaultInclude},
			Exclude:          defaultExcludes(),
			RespectGitignore: true,
			MaxFileSize:      DefaultMaxFileSize,
		},
		Watch: Watch{
			Enabled:    true,
			DebounceMs: DefaultDebounceMs,
		},
		Performance: Performance{
			MaxGoroutines: runtime.NumCPU(),
		},
		Diagnostics: Diagnostics{
			Enabled:          true,
			SuggestThreshold: DefaultSuggestThreshold,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot reads ~/.msc.kdl and <root>/.msc.kdl and merges them. When
// path is set it replaces the project file lookup.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}
	if abs, err := filepath.Abs(searchDir); err == nil {
		searchDir = abs
	}

	// Step 1: global base config
	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != searchDir {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: project config
	var (
		projectConfig *Config
		err           error
	)
	if path != "" {
		projectConfig, err = LoadKDLFile(path)
	} else {
		projectConfig, err = LoadKDL(searchDir)
	}
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch {
	case baseConfig != nil && projectConfig != nil:
		cfg = mergeConfigs(baseConfig, projectConfig)
	case projectConfig != nil:
		cfg = projectConfig
	case baseConfig != nil:
		baseConfig.Project.Root = searchDir
		baseConfig.Project.Name = ""
		cfg = baseConfig
	default:
		cfg = Default(searchDir)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfigs lets project settings win while keeping the base exclusions.
func mergeConfigs(base, project *Config) *Config {
	merged := *project
	merged.Workspace.Exclude = DeduplicatePatterns(append(append([]string{}, base.Workspace.Exclude...), project.Workspace.Exclude...))

	if len(project.Workspace.Include) == 0 && len(base.Workspace.Include) > 0 {
		merged.Workspace.Include = base.Workspace.Include
	}
	if project.Workspace.Defaults == "" {
		merged.Workspace.Defaults = base.Workspace.Defaults
	}
	return &merged
}

// DeduplicatePatterns removes repeated patterns, keeping the first occurrence.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}
	return result
}

// Overrides are command line values that take precedence over the files.
type Overrides struct {
	Root     string
	Include  []string
	Exclude  []string
	Defaults string
}

// Apply copies the non-empty overrides into c.
func (c *Config) Apply(o Overrides) {
	if o.Root != "" {
		if abs, err := filepath.Abs(o.Root); err == nil {
			c.Project.Root = abs
		} else {
			c.Project.Root = o.Root
		}
	}
	if len(o.Include) > 0 {
		c.Workspace.Include = append([]string{}, o.Include...)
	}
	if len(o.Exclude) > 0 {
		c.Workspace.Exclude = DeduplicatePatterns(append(c.Workspace.Exclude, o.Exclude...))
	}
	if o.Defaults != "" {
		c.Workspace.Defaults = o.Defaults
	}
}
