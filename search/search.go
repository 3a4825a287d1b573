// Package search runs one fetch, parse and filter cycle for a source and
// turns the outcome into a Result with a user-facing advisory.
package search

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"iv_housing/config"
	"iv_housing/fetch"
	"iv_housing/filter"
	"iv_housing/models"
	"iv_housing/parser"
	"iv_housing/storage"
)

// LogFunc records a leveled message against the current run.
type LogFunc func(level models.LogLevel, message string)

// Result is the outcome of one search.
type Result struct {
	RunID    uuid.UUID
	Status   models.RunStatus
	URL      string
	Found    int
	Listings []models.Listing
}

// Advisory is the message shown alongside (or instead of) the listings.
func (r Result) Advisory() string {
	switch r.Status {
	case models.RunStatusUnreachable:
		return fmt.Sprintf("Could not reach %s (or blocked). Try again later.", displayHost(r.URL))
	case models.RunStatusNoListings:
		return "No results found (the site's markup may have changed)."
	case models.RunStatusNoMatches:
		return "No matching results. Try clearing filters."
	default:
		return "Fetched listings. Always cross-check availability with the property manager."
	}
}

func displayHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return "the listings site"
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

type Service struct {
	source  *config.SourceConfig
	fetcher fetch.Fetcher
	parser  *parser.Parser
	runLog  storage.RunLog
}

func NewService(src *config.SourceConfig, fetcher fetch.Fetcher, p *parser.Parser) *Service {
	return &Service{
		source:  src,
		fetcher: fetcher,
		parser:  p,
	}
}

// SetRunLog enables run history. A nil run log disables it.
func (s *Service) SetRunLog(rl storage.RunLog) {
	s.runLog = rl
}

// BuildURL returns the source page to fetch. A non-empty keyword is sent as the
// source's search parameter, form encoded and otherwise untouched.
func BuildURL(src *config.SourceConfig, keyword string) string {
	if keyword == "" {
		return src.BaseURL
	}

	param := src.SearchParam
	if param == "" {
		param = "q"
	}

	u, err := url.Parse(src.BaseURL)
	if err != nil {
		return src.BaseURL + "?" + param + "=" + url.QueryEscape(keyword)
	}
	q := u.Query()
	q.Set(param, keyword)
	u.RawQuery = q.Encode()
	return u.String()
}

// Run executes one search. It never fails; every outcome is a Result status.
func (s *Service) Run(ctx context.Context, criteria models.FilterCriteria) Result {
	target := BuildURL(s.source, criteria.Keyword)
	run := models.NewSearchRun(s.source.ID, target, criteria)
	logf := s.startRun(ctx, run)

	result := Result{RunID: run.ID, URL: target}
	defer func() {
		s.finishRun(ctx, run, result)
	}()

	logf(models.LogLevelInfo, fmt.Sprintf("Fetching %s", target))
	resp := s.fetcher.Fetch(ctx, target)
	if resp == nil {
		result.Status = models.RunStatusUnreachable
		logf(models.LogLevelError, fmt.Sprintf("Source %s unreachable", s.source.ID))
		return result
	}

	listings := s.parser.Parse(resp.Text())
	result.Found = len(listings)
	if len(listings) == 0 {
		result.Status = models.RunStatusNoListings
		logf(models.LogLevelWarn, "No listings parsed from page")
		return result
	}

	result.Listings = filter.Apply(listings, criteria)
	if len(result.Listings) == 0 {
		result.Status = models.RunStatusNoMatches
		logf(models.LogLevelInfo, fmt.Sprintf("0 of %d listings matched", result.Found))
		return result
	}

	result.Status = models.RunStatusOK
	logf(models.LogLevelInfo, fmt.Sprintf("%d of %d listings matched", len(result.Listings), result.Found))
	return result
}

func (s *Service) startRun(ctx context.Context, run *models.SearchRun) LogFunc {
	if s.runLog == nil {
		return func(level models.LogLevel, message string) {
			log.Printf("Search: [%s] %s: %s", level, run.SourceID, message)
		}
	}

	if err := s.runLog.CreateRun(ctx, run); err != nil {
		log.Printf("Search: warning: failed to record run: %v", err)
	}
	return func(level models.LogLevel, message string) {
		log.Printf("Search: [%s] %s: %s", level, run.SourceID, message)
		if err := s.runLog.Log(ctx, run.ID, level, message); err != nil {
			log.Printf("Search: warning: failed to record log line: %v", err)
		}
	}
}

func (s *Service) finishRun(ctx context.Context, run *models.SearchRun, result Result) {
	now := time.Now()
	run.FinishedAt = &now
	run.Status = result.Status
	run.ListingsFound = result.Found
	run.ListingsShown = len(result.Listings)

	if s.runLog == nil {
		return
	}
	// a cancelled search still closes its history row
	if err := s.runLog.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		log.Printf("Search: warning: failed to finish run %s: %v", run.ID, err)
	}
}
