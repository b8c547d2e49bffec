// Package report renders records, outbound blocks, snapshots, and run
// summaries for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/notion-math/internal/snapshot"
	"github.com/pdiddy/notion-math/pkg/types"
)

const contentWidth = 60

// WriteRecords writes flat records as a table, JSON, or YAML.
func WriteRecords(w io.Writer, records []types.FlatRecord, format string) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeRecordsTable(w, records)
	case "json":
		return writeJSON(w, records)
	case "yaml":
		return writeYAML(w, records)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeRecordsTable(w io.Writer, records []types.FlatRecord) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"#", "Block ID", "Type", "Content"})
	for i, r := range records {
		tw.AppendRow(table.Row{i + 1, r.ID, r.Type, truncate(escapeNewlines(r.Content), contentWidth)})
	}
	if len(records) == 0 {
		tw.AppendRow(table.Row{"-", "(no blocks)", "-", "-"})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
	})
	tw.Render()
	return nil
}

// WriteBlocks writes outbound blocks in the API's block object shape, as
// JSON or YAML.
func WriteBlocks(w io.Writer, blocks []types.OutboundBlock, format string) error {
	objects := make([]any, 0, len(blocks))
	for _, b := range blocks {
		raw, err := b.MarshalNotion()
		if err != nil {
			return err
		}
		var obj any
		if err := json.Unmarshal(raw, &obj); err != nil {
			return err
		}
		objects = append(objects, obj)
	}

	switch strings.ToLower(format) {
	case "", "json":
		return writeJSON(w, map[string]any{"children": objects})
	case "yaml":
		return writeYAML(w, map[string]any{"children": objects})
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteSnapshots writes a snapshot listing as a table.
func WriteSnapshots(w io.Writer, snaps []snapshot.Snapshot) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(table.Row{"ID", "Root", "Taken", "Blocks", "Complete"})
	for _, s := range snaps {
		tw.AppendRow(table.Row{s.ID, s.RootID, s.TakenAt.Format("2006-01-02 15:04:05"), s.BlockCount, yesNo(s.Complete)})
	}
	if len(snaps) == 0 {
		tw.AppendRow(table.Row{"-", "(no snapshots)", "-", 0, "-"})
	}
	tw.Render()
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func escapeNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", "\\n")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
