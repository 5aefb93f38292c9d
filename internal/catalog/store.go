package catalog

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/Lightwood13/msc/internal/debug"
	"github.com/Lightwood13/msc/internal/errors"
	"github.com/Lightwood13/msc/internal/types"
)

// contribution is what one declaration source adds to the catalog.
type contribution struct {
	hash       uint64
	err        error
	namespaces map[string]*types.MemberTable
	classes    map[string]*types.MemberTable
}

func newContribution() *contribution {
	return &contribution{
		namespaces: map[string]*types.MemberTable{},
		classes:    map[string]*types.MemberTable{},
	}
}

// Store owns the per-file contributions and publishes merged snapshots.
// Readers call Snapshot without locking; writers serialize on mu and swap
// the published pointer once the new snapshot is complete.
type Store struct {
	mu       sync.Mutex
	files    map[string]*contribution
	defaults *contribution
	version  uint64
	current  atomic.Pointer[Snapshot]
}

// NewStore creates an empty store.
func NewStore() *Store {
	s := &Store{
		files:    make(map[string]*contribution),
		defaults: newContribution(),
	}
	s.current.Store(emptySnapshot())
	return s
}

// Snapshot returns the current catalog.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// LoadFile replaces the contribution of path. Unchanged content is skipped
// and reported as changed=false along with the parse error it had when it
// was loaded. A parse error still publishes the part of the file that was
// committed before it.
func (s *Store) LoadFile(path, text string) (changed bool, err error) {
	hash := xxhash.Sum64String(text)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.files[path]; ok && prev.hash == hash {
		return false, prev.err
	}

	c := newContribution()
	c.hash = hash
	err = ParseDeclarationFile(path, text, c.namespaces, c.classes)
	if err != nil {
		debug.LogCatalog("%s: %v", path, err)
		c.err = err
	}
	s.files[path] = c
	s.publishLocked()
	return true, err
}

// RemoveFile drops the contribution of path.
func (s *Store) RemoveFile(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[path]; !ok {
		return false
	}
	delete(s.files, path)
	s.publishLocked()
	return true
}

// LoadDefaults merges builtin declarations by namespace name. Namespaces
// and classes not mentioned in text keep their previous defaults.
func (s *Store) LoadDefaults(text string) error {
	parsed := newContribution()
	err := ParseDeclarationFile("<defaults>", text, parsed.namespaces, parsed.classes)
	if err != nil {
		debug.LogCatalog("defaults: %v", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := newContribution()
	for name, t := range s.defaults.namespaces {
		merged.namespaces[name] = t
	}
	for name, t := range s.defaults.classes {
		merged.classes[name] = t
	}
	for name, t := range parsed.namespaces {
		merged.namespaces[name] = t
	}
	for name, t := range parsed.classes {
		merged.classes[name] = t
	}
	s.defaults = merged
	s.publishLocked()
	return err
}

// ReplaceAll clears every file contribution and loads files instead, keeping
// defaults. It publishes once.
func (s *Store) ReplaceAll(files map[string]string) error {
	fresh := make(map[string]*contribution, len(files))
	var errs []error
	for path, text := range files {
		c := newContribution()
		c.hash = xxhash.Sum64String(text)
		if err := ParseDeclarationFile(path, text, c.namespaces, c.classes); err != nil {
			debug.LogCatalog("%s: %v", path, err)
			c.err = err
			errs = append(errs, err)
		}
		fresh[path] = c
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = fresh
	s.publishLocked()

	return errors.NewMultiError(errs).ErrOrNil()
}

// publishLocked merges defaults then files in path order; later sources win
// per namespace and per class.
func (s *Store) publishLocked() {
	snap := emptySnapshot()
	merge := func(c *contribution) {
		for name, t := range c.namespaces {
			snap.Namespaces[name] = t
		}
		for name, t := range c.classes {
			snap.Classes[name] = t
		}
	}

	merge(s.defaults)
	for _, path := range sortedPaths(s.files) {
		merge(s.files[path])
	}

	s.version++
	snap.Version = s.version
	s.current.Store(snap)
	debug.LogCatalog("published v%d: %d namespaces, %d classes", snap.Version, len(snap.Namespaces), len(snap.Classes))
}

func sortedPaths(files map[string]*contribution) []string {
	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
