package service

import (
	"github.com/Lightwood13/msc/internal/grammar"
	"github.com/Lightwood13/msc/internal/keywords"
	"github.com/Lightwood13/msc/internal/resolver"
	"github.com/Lightwood13/msc/internal/types"
)

// GetCompletions returns the completion items for the text before pos.
// The first matching context wins: command argument, bare keyword,
// namespace access, identifier start and member access.
func (s *Service) GetCompletions(id string, pos types.Position) []types.CompletionItem {
	doc, ok := s.document(id)
	if !ok {
		return []types.CompletionItem{}
	}
	prefix, ok := doc.prefix(pos)
	if !ok {
		return []types.CompletionItem{}
	}
	ctx := s.context(doc, pos.Line)

	if grammar.InCommandArgument(prefix) {
		return keywords.Commands()
	}
	if hasAt, ok := grammar.KeywordPrefix(prefix); ok {
		if hasAt {
			return keywords.KeywordsWithoutAt()
		}
		return keywords.Keywords()
	}
	if ns, ok := grammar.NamespaceAccess(prefix); ok {
		table, ok := ctx.Catalog.Namespace(ns)
		if !ok {
			return []types.CompletionItem{}
		}
		return completionsOf(table)
	}
	if grammar.IdentifierStart(prefix) {
		return identifierCompletions(ctx, doc.view, pos.Line)
	}
	if grammar.MemberAccess(prefix) {
		res, ok := ctx.Resolve(resolver.ScanChainBackward(prefix, len(prefix)))
		if !ok {
			return []types.CompletionItem{}
		}
		table, ok := ctx.Catalog.Class(res.Type)
		if !ok {
			return []types.CompletionItem{}
		}
		return completionsOf(table)
	}
	return []types.CompletionItem{}
}

// identifierCompletions lists locals declared before line, the active
// namespace, every named namespace and the default namespace, in that order.
func identifierCompletions(ctx resolver.Context, view *types.DocumentView, line int) []types.CompletionItem {
	out := []types.CompletionItem{}
	for _, v := range view.VisibleAt(line) {
		// A declaration is not offered on its own line.
		if v.DeclaredAtLine >= line {
			continue
		}
		out = append(out, types.CompletionItem{
			Label:  v.Name,
			Kind:   types.CompletionVariable,
			Detail: v.Type + " " + v.Name,
		})
	}

	if ctx.ActiveNamespace != "" {
		if table, ok := ctx.Catalog.Namespace(ctx.ActiveNamespace); ok {
			out = append(out, table.Completions...)
		}
	}

	for _, name := range ctx.Catalog.NamespaceNames() {
		if name == types.DefaultNamespace {
			continue
		}
		out = append(out, types.CompletionItem{
			Label:          name,
			Kind:           types.CompletionModule,
			InsertText:     name + "::",
			TriggerCommand: types.CommandTriggerSuggest,
		})
	}

	if table, ok := ctx.Catalog.Namespace(types.DefaultNamespace); ok {
		out = append(out, table.Completions...)
	}
	return out
}

func completionsOf(table *types.MemberTable) []types.CompletionItem {
	return append([]types.CompletionItem{}, table.Completions...)
}
