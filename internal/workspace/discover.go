// Package workspace finds the declaration files of a project and reads
// them for the catalog.
package workspace

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/Lightwood13/msc/internal/config"
	"github.com/Lightwood13/msc/internal/debug"
)

// Options select the declaration files of a workspace.
type Options struct {
	Root             string
	Include          []string
	Exclude          []string
	RespectGitignore bool
	MaxFileSize      int64
	MaxGoroutines    int
}

// OptionsFromConfig extracts the workspace options from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Root:             cfg.Project.Root,
		Include:          cfg.Workspace.Include,
		Exclude:          cfg.Workspace.Exclude,
		RespectGitignore: cfg.Workspace.RespectGitignore,
		MaxFileSize:      cfg.Workspace.MaxFileSize,
		MaxGoroutines:    cfg.Performance.MaxGoroutines,
	}
}

// File is one discovered declaration file.
type File struct {
	Path string // Absolute
	Rel  string // Slash separated, relative to the root
	Size int64
}

// Matcher applies the include, exclude and gitignore rules to paths under
// a root.
type Matcher struct {
	root    string
	include []string
	exclude []string
	gi      *ignore.GitIgnore
}

// NewMatcher compiles the rules of opts. A missing .gitignore is not an error.
func NewMatcher(opts Options) *Matcher {
	m := &Matcher{
		root:    filepath.Clean(opts.Root),
		include: opts.Include,
		exclude: opts.Exclude,
	}
	if len(m.include) == 0 {
		m.include = []string{config.DefaultInclude}
	}
	if opts.RespectGitignore {
		m.gi = loadGitignore(m.root)
	}
	return m
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// Rel returns path relative to the root in slash form. ok is false for
// paths outside the root.
func (m *Matcher) Rel(path string) (string, bool) {
	rel, err := filepath.Rel(m.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Root is the directory rules are relative to.
func (m *Matcher) Root() string {
	return m.root
}

// MatchFile reports whether the file at path is a declaration file of the
// workspace.
func (m *Matcher) MatchFile(path string) bool {
	rel, ok := m.Rel(path)
	if !ok || rel == "." {
		return false
	}
	if m.excluded(rel) {
		return false
	}
	if m.gi != nil && m.gi.MatchesPath(rel) {
		return false
	}
	for _, pattern := range m.include {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// SkipDir reports whether nothing below the directory at path can match.
func (m *Matcher) SkipDir(path string) bool {
	rel, ok := m.Rel(path)
	if !ok {
		return true
	}
	if rel == "." {
		return false
	}
	if m.excluded(rel) || m.excluded(rel+"/") {
		return true
	}
	return m.gi != nil && m.gi.MatchesPath(rel+"/")
}

func (m *Matcher) excluded(rel string) bool {
	for _, pattern := range m.exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// Discover walks the root and returns every matching declaration file,
// sorted by relative path. Oversized files are skipped.
func Discover(opts Options) ([]File, error) {
	m := NewMatcher(opts)
	var files []File

	err := filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == m.root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if path != m.root && m.SkipDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 || !m.MatchFile(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
			debug.LogWorkspace("skipping oversized %s (%d > %d bytes)", path, info.Size(), opts.MaxFileSize)
			return nil
		}
		rel, _ := m.Rel(path)
		files = append(files, File{Path: path, Rel: rel, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Rel < files[j].Rel
	})
	debug.LogWorkspace("discovered %d declaration files under %s", len(files), m.root)
	return files, nil
}
