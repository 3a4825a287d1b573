package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"iv_housing/models"
)

// History renders recent runs, newest first as given.
func History(w io.Writer, runs []models.SearchRun, now time.Time) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, Muted.Render("No runs recorded"))
		return err
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(Muted).
		Headers("Started", "Status", "Criteria", "Found", "Shown", "Took").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeader
			}
			if col == 1 && row >= 0 && row < len(runs) {
				return TableCell.Inherit(statusStyle(string(runs[row].Status)))
			}
			return TableCell
		})

	for _, run := range runs {
		took := "-"
		if run.FinishedAt != nil {
			took = run.Duration().Round(time.Millisecond).String()
		}
		t.Row(
			humanize.RelTime(run.StartedAt, now, "ago", "from now"),
			string(run.Status),
			DescribeCriteria(run.Criteria),
			fmt.Sprint(run.ListingsFound),
			fmt.Sprint(run.ListingsShown),
			took,
		)
	}

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// Logs renders the log lines of one run.
func Logs(w io.Writer, logs []models.SearchLog) error {
	for _, l := range logs {
		level := fmt.Sprintf("%-5s", strings.ToUpper(string(l.Level)))
		if _, err := fmt.Fprintf(w, "%s %s %s\n",
			Muted.Render(l.Timestamp.Format("15:04:05")),
			statusStyle(string(l.Level)).Render(level),
			l.Message,
		); err != nil {
			return err
		}
	}
	return nil
}

// DescribeCriteria summarizes the active filters, e.g. `"del playa" ≤$2,000 2 bd sublease`.
func DescribeCriteria(c models.FilterCriteria) string {
	var parts []string
	if c.Keyword != "" {
		parts = append(parts, fmt.Sprintf("%q", c.Keyword))
	}
	if c.MaxPrice > 0 {
		parts = append(parts, "≤$"+humanize.Comma(int64(c.MaxPrice)))
	}
	if b := c.Bedrooms(); b != models.BedsAny {
		parts = append(parts, string(b)+" bd")
	}
	if c.SubleaseOnly {
		parts = append(parts, "sublease")
	}
	if len(parts) == 0 {
		return "any"
	}
	return strings.Join(parts, " ")
}
