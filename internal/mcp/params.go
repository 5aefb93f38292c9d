package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Lightwood13/msc/internal/types"
)

// ScriptParams name the script a tool works on.
type ScriptParams struct {
	File string  `json:"file,omitempty"`
	Text *string `json:"text,omitempty"`
}

// PositionParams address a position in a script.
type PositionParams struct {
	ScriptParams
	Line      int `json:"line"`
	Character int `json:"character"`
	Max       int `json:"max,omitempty"`
}

// CatalogParams select what msc_catalog shows.
type CatalogParams struct {
	Namespace string `json:"namespace,omitempty"`
	Class     string `json:"class,omitempty"`
}

func parseParams(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}

func (p ScriptParams) validate() error {
	switch {
	case p.File == "" && p.Text == nil:
		return errors.New("either file or text is required")
	case p.File != "" && p.Text != nil:
		return errors.New("file and text are mutually exclusive")
	}
	return nil
}

func (p PositionParams) validate() error {
	if err := p.ScriptParams.validate(); err != nil {
		return err
	}
	if p.Line < 0 || p.Character < 0 {
		return fmt.Errorf("position %d:%d must not be negative", p.Line, p.Character)
	}
	if p.Max < 0 {
		return fmt.Errorf("max %d must not be negative", p.Max)
	}
	return nil
}

func (p PositionParams) position() types.Position {
	return types.Position{Line: p.Line, Character: p.Character}
}

// openScript loads the script into the service under a fresh id. The
// returned function closes it again.
func (s *Server) openScript(ctx context.Context, p ScriptParams) (string, []types.Diagnostic, func(), error) {
	var text string
	if p.Text != nil {
		text = *p.Text
	} else {
		content, err := s.loader.ReadFile(ctx, p.File)
		if err != nil {
			return "", nil, nil, err
		}
		text = content
	}
	id := s.documentID()
	diagnostics := s.svc.OpenOrUpdateDocument(id, text)
	return id, diagnostics, func() { s.svc.CloseDocument(id) }, nil
}
