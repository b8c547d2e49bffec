// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package segment splits marked-up text into ordered text and equation runs.
// Block equations are delimited by $$...$$ and may span lines; inline
// equations are delimited by $...$.
package segment

import (
	"regexp"
	"strings"

	"github.com/pdiddy/notion-math/pkg/types"
)

var (
	blockPattern  = regexp.MustCompile(`(?s)\$\$(.+?)\$\$`)
	inlinePattern = regexp.MustCompile(`\$(.+?)\$`)
)

// Segment converts text into runs in two passes: first $$...$$ regions,
// then $...$ regions inside the text runs left over by the first pass.
// Empty text segments and equations that are blank after trimming are
// dropped, so "" yields no runs.
func Segment(text string) []types.Run {
	var runs []types.Run
	for _, r := range split(text, blockPattern) {
		if r.Kind != types.RunText {
			runs = append(runs, r)
			continue
		}
		runs = append(runs, split(r.Text, inlinePattern)...)
	}
	return runs
}

// split cuts text at every non-overlapping match of re. The first capture
// group of each match becomes a trimmed equation run.
func split(text string, re *regexp.Regexp) []types.Run {
	var runs []types.Run
	last := 0
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > last {
			runs = append(runs, types.TextRun(text[last:m[0]]))
		}
		if expr := strings.TrimSpace(text[m[2]:m[3]]); expr != "" {
			runs = append(runs, types.EquationRun(expr))
		}
		last = m[1]
	}
	if last < len(text) {
		runs = append(runs, types.TextRun(text[last:]))
	}
	return runs
}

// Join renders runs back into delimiter markup, wrapping equations as
// "$$ expr $$". It is the form block content takes before segmentation.
func Join(runs []types.Run) string {
	var b strings.Builder
	for _, r := range runs {
		switch r.Kind {
		case types.RunText:
			b.WriteString(r.Text)
		case types.RunEquation:
			b.WriteString(WrapEquation(r.Expression))
		}
	}
	return b.String()
}

// WrapEquation returns expr wrapped as a block equation marker.
func WrapEquation(expr string) string {
	return "$$ " + expr + " $$"
}
