// Package render prints search results and run history for the terminal.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"iv_housing/models"
	"iv_housing/search"
)

type Format string

const (
	FormatTable Format = "table"
	FormatLinks Format = "links"
	FormatBoth  Format = "both"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatLinks, FormatBoth:
		return f, nil
	case "":
		return FormatBoth, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, links or both)", s)
	}
}

var listingHeaders = []string{"Title", "Address", "Price", "Beds", "Baths", "Link"}

// Table renders one row per listing with the columns Title, Address, Price,
// Beds, Baths and Link.
func Table(listings []models.Listing) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(Muted).
		Headers(listingHeaders...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return TableHeader
			}
			return TableCell
		})

	for _, l := range listings {
		t.Row(l.Title, l.Address, l.Price, l.Beds, l.Baths, l.Link)
	}
	return t.Render()
}

// Links renders one markdown-style line per listing:
// "- [Title](Link) — Price · Beds · Baths · Address".
func Links(listings []models.Listing) string {
	var b strings.Builder
	for _, l := range listings {
		title := l.Title
		if title == "" {
			title = "(untitled)"
		}
		head := title
		if l.Link != "" {
			head = fmt.Sprintf("[%s](%s)", title, l.Link)
		}

		var details []string
		for _, v := range []string{l.Price, l.Beds, l.Baths, l.Address} {
			if v != "" {
				details = append(details, v)
			}
		}

		b.WriteString("- " + head)
		if len(details) > 0 {
			b.WriteString(" — " + strings.Join(details, " · "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Result writes the listings in the requested format followed by the advisory.
// Non-ok results print only the advisory.
func Result(w io.Writer, res search.Result, format Format) error {
	advisory := statusStyle(string(res.Status)).Render(res.Advisory())

	if res.Status != models.RunStatusOK {
		_, err := fmt.Fprintln(w, advisory)
		return err
	}

	var sections []string
	sections = append(sections, Title.Render(fmt.Sprintf("%d of %d listings match", len(res.Listings), res.Found)))
	if format == FormatTable || format == FormatBoth {
		sections = append(sections, Table(res.Listings))
	}
	if format == FormatLinks || format == FormatBoth {
		sections = append(sections, strings.TrimRight(Links(res.Listings), "\n"))
	}
	sections = append(sections, advisory)

	_, err := fmt.Fprintln(w, strings.Join(sections, "\n\n"))
	return err
}
