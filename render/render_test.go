package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"iv_housing/models"
	"iv_housing/search"
)

var sample = []models.Listing{
	{
		Title:   "6587 Del Playa Oceanside",
		Address: "6587 Del Playa Dr",
		Price:   "$2,450/mo",
		Beds:    "2 Bed",
		Baths:   "1 Bath",
		Link:    "https://www.ivproperties.com/listings/42",
	},
	{
		Title: "Trigo Road Townhouse",
		Beds:  "4 Bed",
	},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"table", FormatTable, false},
		{"LINKS", FormatLinks, false},
		{" both ", FormatBoth, false},
		{"", FormatBoth, false},
		{"csv", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFormat(%q) error = %v; wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestLinks(t *testing.T) {
	got := Links(sample)
	want := "- [6587 Del Playa Oceanside](https://www.ivproperties.com/listings/42) — $2,450/mo · 2 Bed · 1 Bath · 6587 Del Playa Dr\n" +
		"- Trigo Road Townhouse — 4 Bed\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Links() mismatch (-want +got):\n%s", diff)
	}
}

func TestTable(t *testing.T) {
	got := Table(sample)
	for _, want := range []string{"Title", "Address", "Price", "Beds", "Baths", "Link",
		"6587 Del Playa Oceanside", "$2,450/mo", "Trigo Road Townhouse", "https://www.ivproperties.com/listings/42"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected table to contain %q:\n%s", want, got)
		}
	}
	if strings.Index(got, "6587 Del Playa Oceanside") > strings.Index(got, "Trigo Road Townhouse") {
		t.Fatalf("expected rows in listing order:\n%s", got)
	}
}

func TestResult_OK(t *testing.T) {
	res := search.Result{Status: models.RunStatusOK, Found: 5, Listings: sample}

	var buf bytes.Buffer
	if err := Result(&buf, res, FormatLinks); err != nil {
		t.Fatalf("Result: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "2 of 5 listings match") {
		t.Errorf("expected count header, got:\n%s", out)
	}
	if !strings.Contains(out, "- [6587 Del Playa Oceanside]") {
		t.Errorf("expected link lines, got:\n%s", out)
	}
	if strings.Contains(out, "Address") {
		t.Errorf("links format should not render the table, got:\n%s", out)
	}
	if !strings.Contains(out, "cross-check availability with the property manager") {
		t.Errorf("expected success footer, got:\n%s", out)
	}
}

func TestResult_AdvisoryOnly(t *testing.T) {
	for _, status := range []models.RunStatus{models.RunStatusUnreachable, models.RunStatusNoListings, models.RunStatusNoMatches} {
		res := search.Result{Status: status, URL: "https://www.ivproperties.com/"}

		var buf bytes.Buffer
		if err := Result(&buf, res, FormatBoth); err != nil {
			t.Fatalf("Result: %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != res.Advisory() {
			t.Errorf("%s: expected only %q, got %q", status, res.Advisory(), got)
		}
	}
}

func TestDescribeCriteria(t *testing.T) {
	tests := []struct {
		c    models.FilterCriteria
		want string
	}{
		{models.FilterCriteria{}, "any"},
		{models.FilterCriteria{Beds: models.BedsAny}, "any"},
		{models.FilterCriteria{Keyword: "del playa", MaxPrice: 2000, Beds: models.BedsTwo, SubleaseOnly: true}, `"del playa" ≤$2,000 2 bd sublease`},
		{models.FilterCriteria{Beds: models.BedsFourUp}, "4+ bd"},
	}
	for _, tt := range tests {
		if got := DescribeCriteria(tt.c); got != tt.want {
			t.Errorf("DescribeCriteria(%+v) = %q; want %q", tt.c, got, tt.want)
		}
	}
}

func TestHistory(t *testing.T) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	finished := now.Add(-time.Hour + 1500*time.Millisecond)
	runs := []models.SearchRun{
		{
			StartedAt:     now.Add(-time.Hour),
			FinishedAt:    &finished,
			Status:        models.RunStatusOK,
			Criteria:      models.FilterCriteria{MaxPrice: 2000},
			ListingsFound: 12,
			ListingsShown: 4,
		},
		{
			StartedAt: now.Add(-3 * time.Minute),
			Status:    models.RunStatusRunning,
		},
	}

	var buf bytes.Buffer
	if err := History(&buf, runs, now); err != nil {
		t.Fatalf("History: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"1 hour ago", "3 minutes ago", "≤$2,000", "1.5s", "running", "12"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected history to contain %q:\n%s", want, out)
		}
	}
}

func TestHistory_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := History(&buf, nil, time.Now()); err != nil {
		t.Fatalf("History: %v", err)
	}
	if !strings.Contains(buf.String(), "No runs recorded") {
		t.Fatalf("expected empty notice, got %q", buf.String())
	}
}

func TestLogs(t *testing.T) {
	logs := []models.SearchLog{
		{Timestamp: time.Date(2026, 10, 1, 9, 30, 5, 0, time.UTC), Level: models.LogLevelWarn, Message: "No listings parsed from page"},
	}
	var buf bytes.Buffer
	if err := Logs(&buf, logs); err != nil {
		t.Fatalf("Logs: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "09:30:05") || !strings.Contains(out, "WARN") || !strings.Contains(out, "No listings parsed") {
		t.Fatalf("unexpected log output: %q", out)
	}
}
