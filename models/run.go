package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning     RunStatus = "running"
	RunStatusOK          RunStatus = "ok"
	RunStatusUnreachable RunStatus = "unreachable"
	RunStatusNoListings  RunStatus = "no_listings"
	RunStatusNoMatches   RunStatus = "no_matches"
)

// SearchRun is the history record of one search invocation. It never holds listing data.
type SearchRun struct {
	ID            uuid.UUID      `json:"id" db:"id"`
	SourceID      string         `json:"source_id" db:"source_id"`
	URL           string         `json:"url" db:"url"`
	Criteria      FilterCriteria `json:"criteria" db:"criteria"`
	StartedAt     time.Time      `json:"started_at" db:"started_at"`
	FinishedAt    *time.Time     `json:"finished_at" db:"finished_at"`
	Status        RunStatus      `json:"status" db:"status"`
	ListingsFound int            `json:"listings_found" db:"listings_found"`
	ListingsShown int            `json:"listings_shown" db:"listings_shown"`
}

func NewSearchRun(sourceID, url string, criteria FilterCriteria) *SearchRun {
	return &SearchRun{
		ID:        uuid.New(),
		SourceID:  sourceID,
		URL:       url,
		Criteria:  criteria,
		StartedAt: time.Now(),
		Status:    RunStatusRunning,
	}
}

// Duration is zero while the run is still going.
func (r *SearchRun) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
