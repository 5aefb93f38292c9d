package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("", "/work")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, []string{DefaultInclude}, cfg.Workspace.Include)
	assert.Contains(t, cfg.Workspace.Exclude, "**/.git/**")
	assert.True(t, cfg.Workspace.RespectGitignore)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.Workspace.MaxFileSize)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, DefaultDebounceMs, cfg.Watch.DebounceMs)
	assert.True(t, cfg.Diagnostics.Enabled)
	assert.Equal(t, DefaultSuggestThreshold, cfg.Diagnostics.SuggestThreshold)
}

func TestParseKDL_AllSections(t *testing.T) {
	content := `
project {
    root "scripts"
    name "server-scripts"
}
workspace {
    include "**/*.nms" "lib/*.nms"
    exclude "**/old/**"
    respect_gitignore false
    defaults "builtin/defaults.nms"
    max_file_size "2MB"
}
watch {
    enabled false
    debounce_ms 150
}
performance {
    max_goroutines 3
}
diagnostics {
    enabled false
    suggest_threshold 0.9
}
`
	cfg, err := parseKDL(content, "/work")
	require.NoError(t, err)

	assert.Equal(t, "scripts", cfg.Project.Root)
	assert.Equal(t, "server-scripts", cfg.Project.Name)
	assert.Equal(t, []string{"**/*.nms", "lib/*.nms"}, cfg.Workspace.Include)
	assert.Equal(t, []string{"**/old/**"}, cfg.Workspace.Exclude)
	assert.False(t, cfg.Workspace.RespectGitignore)
	assert.Equal(t, "builtin/defaults.nms", cfg.Workspace.Defaults)
	assert.Equal(t, int64(2*1024*1024), cfg.Workspace.MaxFileSize)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, 150, cfg.Watch.DebounceMs)
	assert.Equal(t, 3, cfg.Performance.MaxGoroutines)
	assert.False(t, cfg.Diagnostics.Enabled)
	assert.InDelta(t, 0.9, cfg.Diagnostics.SuggestThreshold, 1e-9)
}

func TestParseKDL_BlockExclude(t *testing.T) {
	content := `
workspace {
    exclude {
        "**/a/**"
        "**/b/**"
    }
}
`
	cfg, err := parseKDL(content, "/work")
	require.NoError(t, err)
	assert.Equal(t, []string{"**/a/**", "**/b/**"}, cfg.Workspace.Exclude)
}

func TestParseKDL_Errors(t *testing.T) {
	_, err := parseKDL(`workspace { max_file_size "lots" }`, "/work")
	assert.Error(t, err)

	_, err = parseKDL(`project {`, "/work")
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10", 10},
		{"10B", 10},
		{"4kb", 4096},
		{"2MB", 2 * 1024 * 1024},
		{"1GB", 1024 * 1024 * 1024},
	}
	for _, tt := range tests {
		got, err := parseSize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLoadKDLFile_ResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	content := "project {\n    root \"sub\"\n}\nworkspace {\n    defaults \"defaults.nms\"\n}\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, filepath.Join(dir, "sub"), cfg.Project.Root)
	assert.Equal(t, filepath.Join(dir, "sub", "defaults.nms"), cfg.Workspace.Defaults)
}

func TestLoadKDL_Missing(t *testing.T) {
	cfg, err := LoadKDL(t.TempDir())
	assert.NoError(t, err)
	assert.Nil(t, cfg)
}
