// Package domain defines the types and ports of the match service
package domain

import (
	"time"

	"outreach/internal/core/matcher"
)

// MaxBatch caps the records accepted by one ResolveBatch call
const MaxBatch = 500

// RecordInput is an outreach record as it arrives over the API or from the pending table
type RecordInput struct {
	RecordID string `json:"record_id" validate:"required,notblank,max=128"`
	Name     string `json:"name" validate:"max=512"`
	Domain   string `json:"domain,omitempty" validate:"max=512"`
	City     string `json:"city,omitempty" validate:"max=128"`
	State    string `json:"state,omitempty" validate:"max=64"`
}

// Record converts to the matcher input
func (r RecordInput) Record() matcher.InputRecord {
	return matcher.InputRecord{
		RecordID: r.RecordID,
		Name:     r.Name,
		Domain:   r.Domain,
		City:     r.City,
		State:    r.State,
	}
}

// BatchInput is the body of a batch resolution request
type BatchInput struct {
	Records []RecordInput `json:"records" validate:"required,min=1,dive"`
}

// OutcomeView is an outcome stamped with the algorithm revision that produced it
type OutcomeView struct {
	matcher.Outcome
	MatcherVersion string `json:"matcher_version"`
}

// AfterKey is the keyset cursor over pending records
type AfterKey struct {
	RecordID string
}

// OutcomeWrite is one row of company_match_outcomes
type OutcomeWrite struct {
	RecordID       string
	Status         string
	Tier           string
	Score          float64
	CompanyID      *string
	Method         *string
	CityMatch      bool
	StateMatch     bool
	Reason         *string
	MatcherVersion string
	BatchID        string
	ResolvedAt     time.Time
}

// ReviewItem is one row of match_review_queue
type ReviewItem struct {
	RecordID     string
	Status       string
	Reason       string
	CandidateIDs []string
	Detail       string
	BatchID      string
	CreatedAt    time.Time
}

// Decision is one audit row in the match_decisions table
type Decision struct {
	ID             string
	BatchID        string
	RecordID       string
	Status         string
	Tier           string
	Score          float64
	CompanyID      string
	Method         string
	Reason         string
	CityMatch      bool
	StateMatch     bool
	Candidates     []string
	ArbDecision    string
	ArbConfidence  float64
	ArbFailed      bool
	MatcherVersion string
	DecidedAt      time.Time
}

// RunSummary reports one batch run
type RunSummary struct {
	BatchID    string         `json:"batch_id"`
	DryRun     bool           `json:"dry_run"`
	PoolSize   int            `json:"pool_size"`
	Pages      int            `json:"pages"`
	Records    int            `json:"records"`
	Matched    int            `json:"matched"`
	NoMatch    int            `json:"no_match"`
	Ambiguous  int            `json:"ambiguous"`
	Reviews    int            `json:"reviews"`
	Audited    int            `json:"audited"`
	ByTier     map[string]int `json:"by_tier"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
}

// StatsView is the body of GET /match/stats
type StatsView struct {
	matcher.Stats
	PoolSize       int       `json:"pool_size"`
	SharedDomains  int       `json:"shared_domains"`
	LoadedAt       time.Time `json:"loaded_at"`
	MatcherVersion string    `json:"matcher_version"`
}

// ReloadResult is the body of POST /match/reload
type ReloadResult struct {
	PoolSize      int       `json:"pool_size"`
	SharedDomains int       `json:"shared_domains"`
	LoadedAt      time.Time `json:"loaded_at"`
}
