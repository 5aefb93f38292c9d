// Package keywords holds the static completion tables for statement
// keywords and command arguments.
package keywords

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Lightwood13/msc/internal/types"
)

//go:embed keywords.yaml
var tableSource []byte

type entry struct {
	Label  string `yaml:"label"`
	Detail string `yaml:"detail"`
	Kind   string `yaml:"kind"`
	Filter string `yaml:"filter"`
	Insert string `yaml:"insert"`
	Doc    string `yaml:"doc"`
}

type tableFile struct {
	Keywords []entry `yaml:"keywords"`
	Commands []entry `yaml:"commands"`
}

type tables struct {
	keywords  []types.CompletionItem
	withoutAt []types.CompletionItem
	commands  []types.CompletionItem
}

var load = sync.OnceValue(func() tables {
	t, err := parse(tableSource)
	if err != nil {
		panic(fmt.Sprintf("keywords: embedded table: %v", err))
	}
	return t
})

func parse(src []byte) (tables, error) {
	var f tableFile
	if err := yaml.Unmarshal(src, &f); err != nil {
		return tables{}, err
	}

	var t tables
	for _, e := range f.Keywords {
		item, err := e.item()
		if err != nil {
			return tables{}, err
		}
		t.keywords = append(t.keywords, item)

		bare := item
		if bare.InsertText != "" {
			bare.InsertText = bare.InsertText[1:]
		}
		t.withoutAt = append(t.withoutAt, bare)
	}
	for _, e := range f.Commands {
		item, err := e.item()
		if err != nil {
			return tables{}, err
		}
		t.commands = append(t.commands, item)
	}
	return t, nil
}

func (e entry) item() (types.CompletionItem, error) {
	item := types.CompletionItem{
		Label:         e.Label,
		Detail:        e.Detail,
		Documentation: e.Doc,
		InsertText:    e.Insert,
		FilterText:    e.Filter,
	}
	switch e.Kind {
	case "snippet":
		item.Kind = types.CompletionSnippet
		item.Snippet = true
	case "keyword":
		item.Kind = types.CompletionKeyword
	default:
		return types.CompletionItem{}, fmt.Errorf("entry %q: unknown kind %q", e.Label, e.Kind)
	}
	return item, nil
}

// Keywords returns the keyword completions with their leading "@".
func Keywords() []types.CompletionItem {
	return clone(load().keywords)
}

// KeywordsWithoutAt returns the keyword completions for a prefix that
// already contains the "@".
func KeywordsWithoutAt() []types.CompletionItem {
	return clone(load().withoutAt)
}

// Commands returns completions for command arguments.
func Commands() []types.CompletionItem {
	return clone(load().commands)
}

func clone(items []types.CompletionItem) []types.CompletionItem {
	return append([]types.CompletionItem(nil), items...)
}
