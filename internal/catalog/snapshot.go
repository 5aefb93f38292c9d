package catalog

import (
	"sort"

	"github.com/Lightwood13/msc/internal/types"
)

// Snapshot is one published version of the catalog. Neither the maps nor the
// tables they point to are modified after publication.
type Snapshot struct {
	Version    uint64                        `json:"version" yaml:"version" toml:"version"`
	Namespaces map[string]*types.MemberTable `json:"namespaces" yaml:"namespaces" toml:"namespaces"`
	Classes    map[string]*types.MemberTable `json:"classes" yaml:"classes" toml:"classes"`
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		Namespaces: map[string]*types.MemberTable{},
		Classes:    map[string]*types.MemberTable{},
	}
}

// Namespace returns the table of a namespace.
func (s *Snapshot) Namespace(name string) (*types.MemberTable, bool) {
	t, ok := s.Namespaces[name]
	return t, ok
}

// Class returns the table of a qualified class name.
func (s *Snapshot) Class(name string) (*types.MemberTable, bool) {
	t, ok := s.Classes[name]
	return t, ok
}

// HasClass reports whether a qualified class name is known.
func (s *Snapshot) HasClass(name string) bool {
	_, ok := s.Classes[name]
	return ok
}

// NamespaceNames returns every namespace name, sorted.
func (s *Snapshot) NamespaceNames() []string {
	names := make([]string, 0, len(s.Namespaces))
	for name := range s.Namespaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ClassNames returns every qualified class name, sorted.
func (s *Snapshot) ClassNames() []string {
	names := make([]string, 0, len(s.Classes))
	for name := range s.Classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
