package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const declarations = `@namespace __default__
@class Player
# Display name
String name
@endclass
@class String
@endclass
@endnamespace
@namespace util
# Builds a pair
Pair makePair(Int a, Int b)
@class Pair
Pair(Int left, Int right)
@endclass
@endnamespace
`

func setupProject(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	root := t.TempDir()
	files := map[string]string{
		"lib/util.nms":     declarations,
		"scripts/good.msc": "@var n = player.name\n",
		"scripts/bad.msc":  "@if x\n@done\n@iff y\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"msc"}, args...))
	return out.String(), err
}

func exitCode(err error) int {
	if coder, ok := err.(cli.ExitCoder); ok {
		return coder.ExitCode()
	}
	return -1
}

func TestCheckCommand(t *testing.T) {
	root := setupProject(t)

	t.Run("whole workspace", func(t *testing.T) {
		out, err := run(t, "--root", root, "check")
		require.Error(t, err)
		assert.Equal(t, 1, exitCode(err))
		assert.Contains(t, out, "scripts/bad.msc:2:1: error: Mismatched @done: expected @fi")
		assert.Contains(t, out, "Did you mean @if?")
		assert.Contains(t, out, "2 files checked")
		assert.NotContains(t, out, "good.msc:")
	})

	t.Run("clean file", func(t *testing.T) {
		out, err := run(t, "--root", root, "check", filepath.Join(root, "scripts", "good.msc"))
		require.NoError(t, err)
		assert.Equal(t, "1 files checked: 0 errors, 0 warnings\n", out)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := run(t, "--root", root, "check", filepath.Join(root, "absent.msc"))
		assert.Equal(t, 1, exitCode(err))
	})
}

func TestCatalogCommand(t *testing.T) {
	root := setupProject(t)

	t.Run("json listing", func(t *testing.T) {
		out, err := run(t, "--root", root, "catalog")
		require.NoError(t, err)
		var listing catalogListing
		require.NoError(t, json.Unmarshal([]byte(out), &listing))
		assert.Equal(t, []string{"__default__", "util"}, listing.Namespaces)
		assert.Contains(t, listing.Classes, "util::Pair")
	})

	t.Run("yaml namespace", func(t *testing.T) {
		out, err := run(t, "--root", root, "catalog", "--format", "yaml", "--namespace", "util")
		require.NoError(t, err)
		var table map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(out), &table))
		assert.Contains(t, table["members"], "makePair()")
	})

	t.Run("toml class", func(t *testing.T) {
		out, err := run(t, "--root", root, "catalog", "--format", "toml", "--class", "Player")
		require.NoError(t, err)
		var table map[string]any
		require.NoError(t, toml.Unmarshal([]byte(out), &table))
		assert.Contains(t, table["members"], "name")
	})

	t.Run("defaults file", func(t *testing.T) {
		defaults := filepath.Join(t.TempDir(), "builtin.nms")
		require.NoError(t, os.WriteFile(defaults, []byte("@namespace base\nInt answer()\n@endnamespace\n"), 0o644))
		out, err := run(t, "--root", root, "--defaults", defaults, "catalog")
		require.NoError(t, err)
		assert.Contains(t, out, `"base"`)
	})

	t.Run("tree namespace", func(t *testing.T) {
		out, err := run(t, "--root", root, "catalog", "--format", "tree", "--namespace", "util")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "namespace util\n"))
		assert.Contains(t, out, "makePair(Int a, Int b) - Builds a pair")
	})

	t.Run("tree listing", func(t *testing.T) {
		out, err := run(t, "--root", root, "catalog", "-f", "tree")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "catalog\n"))
		assert.Contains(t, out, "class Player")
		assert.Contains(t, out, "String name - Display name")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := run(t, "--root", root, "catalog", "--format", "xml")
		assert.Error(t, err)
	})

	t.Run("unknown namespace", func(t *testing.T) {
		_, err := run(t, "--root", root, "catalog", "--namespace", "nope")
		assert.Error(t, err)
	})
}

func TestHoverCommand(t *testing.T) {
	root := setupProject(t)
	script := filepath.Join(root, "scripts", "good.msc")

	out, err := run(t, "--root", root, "hover", script, "1", "18")
	require.NoError(t, err)
	assert.Equal(t, "```msc\nString Player.name\n```\nDisplay name", strings.TrimSpace(out))

	_, err = run(t, "--root", root, "hover", script, "1", "5")
	assert.Equal(t, 1, exitCode(err))

	_, err = run(t, "--root", root, "hover", script, "zero", "1")
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	root := setupProject(t)
	cfgPath := filepath.Join(root, ".msc.kdl")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`workspace {
    include "lib/**/*.nms"
    defaults "builtin.nms"
}
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "builtin.nms"), []byte("@namespace base\n@endnamespace\n"), 0o644))

	out, err := run(t, "--root", root, "catalog")
	require.NoError(t, err)
	var listing catalogListing
	require.NoError(t, json.Unmarshal([]byte(out), &listing))
	assert.Equal(t, []string{"__default__", "base", "util"}, listing.Namespaces)

	_, err = run(t, "--config", filepath.Join(root, "missing.kdl"), "catalog")
	assert.Error(t, err)
}
