// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
)

// FlatRecord is the flattened form of one Block: its identity, type tag,
// and extracted raw text. Records appear in pre-order tree sequence.
type FlatRecord struct {
	ID      string    `json:"id" yaml:"id"`
	Type    BlockType `json:"type" yaml:"type"`
	Content string    `json:"content" yaml:"content"`
}

// RunKind distinguishes literal text runs from equation runs.
type RunKind string

const (
	RunText     RunKind = "text"
	RunEquation RunKind = "equation"
)

// Run is a typed fragment of text content produced by segmentation.
// Exactly one of Text or Expression is meaningful, selected by Kind.
type Run struct {
	Kind       RunKind `json:"kind" yaml:"kind"`
	Text       string  `json:"text,omitempty" yaml:"text,omitempty"`
	Expression string  `json:"expression,omitempty" yaml:"expression,omitempty"`
}

// TextRun returns a literal text run.
func TextRun(s string) Run { return Run{Kind: RunText, Text: s} }

// EquationRun returns an equation run.
func EquationRun(expr string) Run { return Run{Kind: RunEquation, Expression: expr} }

// RichText converts the run to the API's rich text object.
func (r Run) RichText() (RichText, error) {
	switch r.Kind {
	case RunText:
		return RichText{Type: "text", Text: &TextContent{Content: r.Text}}, nil
	case RunEquation:
		return RichText{Type: "equation", Equation: &EquationPayload{Expression: r.Expression}}, nil
	default:
		return RichText{}, fmt.Errorf("unknown run kind %q", r.Kind)
	}
}

// CodeLanguage is the language tag attached to every outbound code block,
// regardless of the source block's language.
const CodeLanguage = "python"

// OutboundBlock is a block ready to be appended to a document.
// Divider blocks carry no runs; code blocks carry Language.
type OutboundBlock struct {
	Type     BlockType `json:"type" yaml:"type"`
	Runs     []Run     `json:"runs,omitempty" yaml:"runs,omitempty"`
	Language string    `json:"language,omitempty" yaml:"language,omitempty"`
}

// MarshalNotion encodes the block as the API's block object, e.g.
// {"object":"block","type":"quote","quote":{"rich_text":[...]}}.
func (b OutboundBlock) MarshalNotion() ([]byte, error) {
	payload := map[string]any{}
	if b.Type != BlockDivider {
		richText := make([]RichText, 0, len(b.Runs))
		for _, r := range b.Runs {
			rt, err := r.RichText()
			if err != nil {
				return nil, fmt.Errorf("encoding %s block: %w", b.Type, err)
			}
			richText = append(richText, rt)
		}
		payload["rich_text"] = richText
		if b.Type == BlockCode {
			payload["language"] = b.Language
		}
	}
	return json.Marshal(map[string]any{
		"object":       "block",
		"type":         b.Type,
		string(b.Type): payload,
	})
}
