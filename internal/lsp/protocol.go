package lsp

import (
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// Extensions spoken with the msc editor host.
const (
	methodGetDefaultNamespaces     = "getDefaultNamespaces"
	methodProcessDefaultNamespaces = "processDefaultNamespaces"
)

const codeServerNotInitialized jsonrpc2.Code = -32002

// didChangeParams keeps the range of each change optional; a change
// without one replaces the whole text.
type didChangeParams struct {
	TextDocument   protocol.VersionedTextDocumentIdentifier `json:"textDocument"`
	ContentChanges []contentChange                          `json:"contentChanges"`
}

type contentChange struct {
	Range *protocol.Range `json:"range,omitempty"`
	Text  string          `json:"text"`
}
