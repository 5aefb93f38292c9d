package service

import (
	"strings"

	"github.com/Lightwood13/msc/internal/types"
)

// GetSignatureHelp returns the overloads of the call enclosing pos. The
// result is empty, not absent, when no call can be resolved.
func (s *Service) GetSignatureHelp(id string, pos types.Position) types.SignatureHelp {
	help := types.SignatureHelp{Signatures: []types.Signature{}}

	doc, ok := s.document(id)
	if !ok {
		return help
	}
	prefix, ok := doc.prefix(pos)
	if !ok {
		return help
	}
	ctx := s.context(doc, pos.Line)
	call, ok := ctx.FindCallUnderCursor(prefix, len(prefix))
	if !ok {
		return help
	}

	name := call.Name
	for attempt := 0; attempt < 2; attempt++ {
		if attempt == 1 {
			if ctx.ActiveNamespace == "" {
				break
			}
			name = ctx.ActiveNamespace + "::" + name
		}
		sigs, final := signaturesOf(ctx.Catalog, name)
		if sigs != nil {
			help.Signatures = sigs
		}
		if final {
			break
		}
	}
	help.ActiveParameter = call.ActiveParameter
	return help
}

type signatureSource interface {
	Namespace(name string) (*types.MemberTable, bool)
	Class(name string) (*types.MemberTable, bool)
}

// signaturesOf looks name up as a namespace function, a class method or a
// constructor. final is false only when a constructor's class is missing,
// which lets the caller retry under the active namespace.
func signaturesOf(snap signatureSource, name string) (sigs []types.Signature, final bool) {
	sep := strings.Index(name, "::")
	if sep >= 0 && sep < len(name)-2 && isLower(name[sep+2]) {
		table, ok := snap.Namespace(name[:sep])
		if !ok {
			return nil, true
		}
		return copySignatures(table.Signatures[name[sep+2:]]), true
	}

	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		table, ok := snap.Class(name[:dot])
		if !ok {
			return nil, true
		}
		return copySignatures(table.Signatures[name[dot+1:]]), true
	}

	class := strings.TrimSuffix(name, "()")
	table, ok := snap.Class(class)
	if !ok {
		return nil, false
	}
	key := name
	if sep >= 0 && sep < len(name)-2 {
		key = name[sep+2:]
	}
	return copySignatures(table.Signatures[key]), true
}

func isLower(c byte) bool {
	return c >= 'a' && c <= 'z'
}

func copySignatures(in []*types.Signature) []types.Signature {
	if in == nil {
		return nil
	}
	out := make([]types.Signature, 0, len(in))
	for _, sig := range in {
		out = append(out, *sig)
	}
	return out
}
