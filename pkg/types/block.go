// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
)

// BlockType is the type tag of a Notion block.
type BlockType string

const (
	BlockParagraph        BlockType = "paragraph"
	BlockHeading1         BlockType = "heading_1"
	BlockHeading2         BlockType = "heading_2"
	BlockHeading3         BlockType = "heading_3"
	BlockQuote            BlockType = "quote"
	BlockCode             BlockType = "code"
	BlockDivider          BlockType = "divider"
	BlockBulletedListItem BlockType = "bulleted_list_item"
	BlockEquation         BlockType = "equation"
)

// Block is one node of a remote document's content tree, as returned by
// the block children endpoint. Children are not embedded; they are fetched
// separately by parent ID when HasChildren is set.
type Block struct {
	ID          string    `json:"id"`
	Type        BlockType `json:"type"`
	HasChildren bool      `json:"has_children"`

	// Payload is the raw JSON object stored under the key named by Type.
	// It is nil when the response carries no such key.
	Payload json.RawMessage `json:"-"`
}

// UnmarshalJSON decodes the common block fields and captures the
// type-specific payload.
func (b *Block) UnmarshalJSON(data []byte) error {
	type header Block
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return err
	}
	*b = Block(h)
	if b.Type == "" {
		return nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	b.Payload = fields[string(b.Type)]
	return nil
}

// MarshalJSON writes the block in the same shape the API returns it.
func (b Block) MarshalJSON() ([]byte, error) {
	out := map[string]any{
		"object":       "block",
		"id":           b.ID,
		"type":         b.Type,
		"has_children": b.HasChildren,
	}
	if b.Type != "" && len(b.Payload) > 0 {
		out[string(b.Type)] = b.Payload
	}
	return json.Marshal(out)
}

// RichTextPayload is the payload shape shared by text-bearing blocks.
// Text is the pre-2022 field name still found on some code blocks.
type RichTextPayload struct {
	RichText []RichText `json:"rich_text"`
	Text     []RichText `json:"text,omitempty"`
	Language string     `json:"language,omitempty"`
}

// Runs returns RichText, falling back to the legacy Text field.
func (p RichTextPayload) Runs() []RichText {
	if p.RichText != nil {
		return p.RichText
	}
	return p.Text
}

// EquationPayload is the payload of an equation block.
type EquationPayload struct {
	Expression string `json:"expression"`
}

// RichText is one run of a rich text array as the API returns it.
type RichText struct {
	Type      string           `json:"type"`
	Text      *TextContent     `json:"text,omitempty"`
	Equation  *EquationPayload `json:"equation,omitempty"`
	PlainText string           `json:"plain_text,omitempty"`
}

// TextContent is the text object of a text-typed rich text run.
type TextContent struct {
	Content string `json:"content"`
}

// DecodePayload unmarshals the block payload into v.
func (b Block) DecodePayload(v any) error {
	if len(b.Payload) == 0 {
		return fmt.Errorf("block %s: missing %q payload", b.ID, b.Type)
	}
	if err := json.Unmarshal(b.Payload, v); err != nil {
		return fmt.Errorf("block %s: decoding %q payload: %w", b.ID, b.Type, err)
	}
	return nil
}

// ChildrenPage is one page of the block children listing.
type ChildrenPage struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// Cursor returns the next cursor, or "" when absent.
func (p ChildrenPage) Cursor() string {
	if p.NextCursor == nil {
		return ""
	}
	return *p.NextCursor
}
