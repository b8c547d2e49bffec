// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	"github.com/pdiddy/notion-math/internal/segment"
	"github.com/pdiddy/notion-math/pkg/types"
)

// Reassemble builds the outbound block for one record. The boolean is
// false when the record produces no block: paragraphs whose content
// segments to nothing, and types other than the ones handled here.
// Headings, quotes, and list items are emitted even when empty.
func Reassemble(rec types.FlatRecord) (types.OutboundBlock, bool) {
	switch rec.Type {
	case types.BlockDivider:
		return types.OutboundBlock{Type: types.BlockDivider}, true
	case types.BlockHeading1, types.BlockHeading2, types.BlockHeading3,
		types.BlockQuote, types.BlockBulletedListItem:
		return types.OutboundBlock{Type: rec.Type, Runs: segment.Segment(rec.Content)}, true
	case types.BlockParagraph:
		runs := segment.Segment(rec.Content)
		if len(runs) == 0 {
			return types.OutboundBlock{}, false
		}
		return types.OutboundBlock{Type: types.BlockParagraph, Runs: runs}, true
	case types.BlockCode:
		return types.OutboundBlock{
			Type:     types.BlockCode,
			Runs:     segment.Segment(rec.Content),
			Language: types.CodeLanguage,
		}, true
	case types.BlockEquation:
		// Standalone equation blocks are not written back.
		return types.OutboundBlock{}, false
	default:
		return types.OutboundBlock{}, false
	}
}

// Transform reassembles every record in order, omitting records that
// produce no block. It has no hidden state: equal input gives equal output.
func Transform(records []types.FlatRecord) []types.OutboundBlock {
	out := make([]types.OutboundBlock, 0, len(records))
	for _, rec := range records {
		if b, ok := Reassemble(rec); ok {
			out = append(out, b)
		}
	}
	return out
}
