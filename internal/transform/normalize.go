// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transform converts fetched blocks to flat records and flat
// records to outbound blocks. Both directions are pure.
package transform

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/notion-math/internal/segment"
	"github.com/pdiddy/notion-math/pkg/types"
)

// BlockError is a per-block extraction failure.
type BlockError struct {
	BlockID string
	Type    types.BlockType
	Err     error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("normalizing %s block %s: %v", e.Type, e.BlockID, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }

// NormalizeResult holds one record per input block, in input order, and the
// extraction failures. A failed block still has a record, with empty content.
type NormalizeResult struct {
	Records []types.FlatRecord
	Errors  []error
}

// Normalize flattens one block to (id, type, content). Text-bearing blocks
// join their runs with equations wrapped as "$$ expr $$"; code blocks keep
// only their first run; unknown types have empty content.
func Normalize(b types.Block) (types.FlatRecord, error) {
	rec := types.FlatRecord{ID: b.ID, Type: b.Type}

	var err error
	switch b.Type {
	case types.BlockParagraph, types.BlockHeading1, types.BlockHeading2, types.BlockHeading3,
		types.BlockBulletedListItem, types.BlockQuote:
		rec.Content, err = richTextContent(b)
	case types.BlockCode:
		rec.Content, err = codeContent(b)
	case types.BlockEquation:
		rec.Content, err = equationContent(b)
	case types.BlockDivider:
	default:
	}
	if err != nil {
		return types.FlatRecord{ID: b.ID, Type: b.Type}, &BlockError{BlockID: b.ID, Type: b.Type, Err: err}
	}
	return rec, nil
}

// NormalizeAll normalizes every block, isolating failures per block so one
// malformed block cannot drop the rest of the tree.
func NormalizeAll(blocks []types.Block) NormalizeResult {
	res := NormalizeResult{Records: make([]types.FlatRecord, 0, len(blocks))}
	for _, b := range blocks {
		rec, err := normalizeSafe(b)
		if err != nil {
			log.Warn().Err(err).Str("block_id", b.ID).Msg("dropping block content")
			res.Errors = append(res.Errors, err)
		}
		res.Records = append(res.Records, rec)
	}
	log.Info().Int("records", len(res.Records)).Int("errors", len(res.Errors)).Msg("normalized blocks")
	return res
}

// normalizeSafe converts a panic while decoding one block into a BlockError.
func normalizeSafe(b types.Block) (rec types.FlatRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = types.FlatRecord{ID: b.ID, Type: b.Type}
			err = &BlockError{BlockID: b.ID, Type: b.Type, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return Normalize(b)
}

func richTextContent(b types.Block) (string, error) {
	var p types.RichTextPayload
	if err := b.DecodePayload(&p); err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, rt := range p.Runs() {
		switch rt.Type {
		case "text":
			if rt.Text == nil {
				return "", fmt.Errorf("text run without text object")
			}
			sb.WriteString(rt.Text.Content)
		case "equation":
			if rt.Equation == nil {
				return "", fmt.Errorf("equation run without equation object")
			}
			sb.WriteString(segment.WrapEquation(rt.Equation.Expression))
		}
	}
	return sb.String(), nil
}

// codeContent returns the first run's text only; later runs are lost.
func codeContent(b types.Block) (string, error) {
	var p types.RichTextPayload
	if err := b.DecodePayload(&p); err != nil {
		return "", err
	}
	runs := p.Runs()
	if len(runs) == 0 {
		return "", fmt.Errorf("code block has no runs")
	}
	if runs[0].Text == nil {
		return "", fmt.Errorf("first code run is %q, not text", runs[0].Type)
	}
	return runs[0].Text.Content, nil
}

func equationContent(b types.Block) (string, error) {
	var p types.EquationPayload
	if err := b.DecodePayload(&p); err != nil {
		return "", err
	}
	return segment.WrapEquation(p.Expression), nil
}
