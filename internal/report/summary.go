package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/notion-math/internal/publish"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
)

// FetchStats summarizes one tree retrieval for display.
type FetchStats struct {
	RootID      string
	Records     int
	FetchErrors []error
	BlockErrors []error
	SnapshotID  int64
}

// FetchSummary renders fetch stats in a bordered box.
func FetchSummary(s FetchStats) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Fetched "+s.RootID) + "\n")
	b.WriteString(fmt.Sprintf("%s %d\n", dimStyle.Render("records:"), s.Records))
	if s.SnapshotID > 0 {
		b.WriteString(fmt.Sprintf("%s %d\n", dimStyle.Render("snapshot:"), s.SnapshotID))
	}
	if len(s.FetchErrors) == 0 && len(s.BlockErrors) == 0 {
		b.WriteString(successStyle.Render("✓ complete"))
	} else {
		b.WriteString(warnStyle.Render(fmt.Sprintf("! incomplete: %d subtree gap(s), %d unreadable block(s)",
			len(s.FetchErrors), len(s.BlockErrors))))
		for _, err := range append(append([]error{}, s.FetchErrors...), s.BlockErrors...) {
			b.WriteString("\n  " + dimStyle.Render(err.Error()))
		}
	}
	return boxStyle.Render(b.String())
}

// PublishSummary renders a publish report in a bordered box.
func PublishSummary(r publish.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Published to "+r.TargetID) + "\n")
	b.WriteString(fmt.Sprintf("%s %d/%d\n", dimStyle.Render("blocks written:"), r.Written(), r.Total))
	b.WriteString(fmt.Sprintf("%s %d\n", dimStyle.Render("batches:"), len(r.Batches)))

	failed := r.Failed()
	if len(failed) == 0 {
		b.WriteString(successStyle.Render("✓ all batches succeeded"))
		return boxStyle.Render(b.String())
	}
	b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %d batch(es) failed", len(failed))))
	for _, f := range failed {
		b.WriteString(fmt.Sprintf("\n  %s %s",
			dimStyle.Render(fmt.Sprintf("blocks %d-%d:", f.Start+1, f.End)),
			f.Err.Error()))
	}
	return boxStyle.Render(b.String())
}
