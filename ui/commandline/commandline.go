// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package commandline contains the command-line UI of the noise generation: a progress bar
// and the reports printed at the end of a run.
package commandline

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/gomlx/facenoise/pkg/corpus"
	"github.com/gomlx/facenoise/pkg/support/xslices"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 1, 4)
)

func newPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row < 0 {
				s = headerRowStyle
				return
			}
			if row%2 == 0 {
				s = evenRowStyle
			} else {
				s = oddRowStyle
			}
			if col == 0 {
				s = s.Align(lipgloss.Right)
			} else {
				s = s.Align(lipgloss.Left)
			}
			return
		})
}

func comma(n int) string { return humanize.Comma(int64(n)) }

// ReportSummary prints the summary of a generation run: totals, images written per kind of
// noise and the failed subjects, if any.
func ReportSummary(w io.Writer, summary *corpus.Summary) {
	read, written, kinds := summary.Totals()
	_, _ = fmt.Fprintln(w, titleStyle.Render("Summary"))
	table := newPlainTable(false)
	table.Row("run", summary.RunID.String())
	table.Row("noise pool", summary.Pool.String())
	table.Row("strategy", summary.Strategy.String())
	table.Row("# subjects", comma(len(summary.Results)))
	table.Row("succeeded", comma(summary.Count(corpus.StatusSucceeded)))
	table.Row("skipped", comma(summary.Count(corpus.StatusSkipped)))
	table.Row("failed", comma(summary.Count(corpus.StatusFailed)))
	table.Row("images read", comma(read))
	table.Row("images written", comma(written))
	table.Row("elapsed", FormatDuration(summary.Elapsed))
	_, _ = fmt.Fprintln(w, table.Render())

	if written > 0 {
		_, _ = fmt.Fprintln(w, titleStyle.Render("Noise"))
		table = newPlainTable(true)
		table.Headers("Kind", "Images")
		for _, kind := range xslices.SortedKeys(kinds) {
			table.Row(kind.String(), comma(kinds[kind]))
		}
		_, _ = fmt.Fprintln(w, table.Render())
	}

	if summary.Count(corpus.StatusFailed) > 0 {
		_, _ = fmt.Fprintln(w, titleStyle.Render("Failures"))
		table = newPlainTable(true)
		table.Headers("Subject", "Error")
		for _, r := range summary.Results {
			if r.Status == corpus.StatusFailed {
				table.Row(r.Subject, fmt.Sprintf("%v", r.Err))
			}
		}
		_, _ = fmt.Fprintln(w, table.Render())
	}
}

// ReportRemoval prints the result of a removal run.
func ReportRemoval(w io.Writer, removal *corpus.Removal) {
	_, _ = fmt.Fprintln(w, titleStyle.Render("Removal"))
	table := newPlainTable(false)
	table.Row("run", removal.RunID.String())
	table.Row("# subjects", comma(removal.Subjects))
	table.Row("directories removed", comma(len(removal.Removed)))
	_, _ = fmt.Fprintln(w, table.Render())
	for _, dir := range removal.Removed {
		_, _ = fmt.Fprintf(w, "  removed %s\n", dir)
	}
}
