package repo

import (
	"context"

	"github.com/google/uuid"

	perr "outreach/internal/platform/errors"
	"outreach/internal/platform/store"
	"outreach/internal/services/match/domain"
)

// DecisionsTable is the ClickHouse audit table
const DecisionsTable = "match_decisions"

var decisionCols = []string{
	"id", "batch_id", "record_id", "status", "tier", "score",
	"company_id", "match_method", "reason", "city_match", "state_match",
	"candidate_ids", "arb_decision", "arb_confidence", "arb_failed",
	"matcher_version", "decided_at",
}

// CH appends decisions to ClickHouse
type CH struct {
	ch store.Clickhouse
}

// NewCH constructs the audit sink; ch must be non nil
func NewCH(ch store.Clickhouse) *CH {
	if ch == nil {
		panic("match.repo.CH requires a non nil Clickhouse")
	}
	return &CH{ch: ch}
}

// Record implements domain.AuditPort. Rows without an id get a fresh uuid.
func (r *CH) Record(ctx context.Context, xs []domain.Decision) error {
	if len(xs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(xs))
	for _, d := range xs {
		id := d.ID
		if id == "" {
			id = uuid.NewString()
		}
		cands := d.Candidates
		if cands == nil {
			cands = []string{}
		}
		rows = append(rows, []any{
			id, d.BatchID, d.RecordID, d.Status, d.Tier, d.Score,
			d.CompanyID, d.Method, d.Reason, d.CityMatch, d.StateMatch,
			cands, d.ArbDecision, d.ArbConfidence, d.ArbFailed,
			d.MatcherVersion, d.DecidedAt,
		})
	}
	if err := r.ch.AppendBatch(ctx, DecisionsTable, decisionCols, rows); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnavailable, "append %d decisions", len(xs))
	}
	return nil
}
