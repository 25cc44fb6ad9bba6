// Package repo provides the match storage implementations.
package repo

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"outreach/internal/core/matcher"
	"outreach/internal/core/version"
	"outreach/internal/modkit/repokit"
	perr "outreach/internal/platform/errors"
	"outreach/internal/platform/store"
	"outreach/internal/services/match/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[domain.StorageRepo] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) domain.StorageRepo { return &pg{q: q} }

// ListCompanies loads the whole candidate pool
func (s *pg) ListCompanies(ctx context.Context) ([]matcher.CompanyCandidate, error) {
	out, err := store.Many(ctx, s.q, scanCompany, `
		SELECT company_id::text, company_name,
			coalesce(domain, ''), coalesce(city, ''), coalesce(state, '')
		FROM companies
		ORDER BY company_id`)
	if err != nil {
		return nil, perr.FromPG(err, "match.list_companies")
	}
	return out, nil
}

func scanCompany(r repokit.Row) (matcher.CompanyCandidate, error) {
	var c matcher.CompanyCandidate
	err := r.Scan(&c.CompanyID, &c.CompanyName, &c.Domain, &c.City, &c.State)
	return c, err
}

func scanRecord(r repokit.Row) (domain.RecordInput, error) {
	var x domain.RecordInput
	err := r.Scan(&x.RecordID, &x.Name, &x.Domain, &x.City, &x.State)
	return x, err
}

// ListPending pages records that have no outcome for the current matcher revision
func (s *pg) ListPending(ctx context.Context, after domain.AfterKey, limit int) ([]domain.RecordInput, domain.AfterKey, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`
		SELECT r.record_id, coalesce(r.company_name, ''), coalesce(r.domain, ''),
			coalesce(r.city, ''), coalesce(r.state, '')
		FROM outreach_pending_records r
		LEFT JOIN company_match_outcomes o
			ON o.record_id = r.record_id AND o.matcher_version = ` + arg(version.Matcher) + `
		WHERE o.record_id IS NULL
	`)
	// keyset only after the first page
	if after.RecordID != "" {
		sb.WriteString("  AND r.record_id > " + arg(after.RecordID) + "\n")
	}
	sb.WriteString("ORDER BY r.record_id\nLIMIT " + arg(limit))

	out, err := store.Many(ctx, s.q, scanRecord, sb.String(), args...)
	if err != nil {
		return nil, after, perr.FromPG(err, "match.list_pending")
	}
	if len(out) == 0 {
		return out, after, nil
	}
	return out, domain.AfterKey{RecordID: out[len(out)-1].RecordID}, nil
}

// maxBindParams is the Postgres wire protocol limit on parameters in one statement
const maxBindParams = 65535

// upsert describes a multi-row INSERT; casts holds one placeholder suffix per column
type upsert struct {
	op    string
	head  string
	casts []string
	tail  string
}

// rowsPerStatement keeps each statement under maxBindParams
func (u upsert) rowsPerStatement() int { return maxBindParams / len(u.casts) }

// exec writes n rows in as many statements as the bind limit requires
func (u upsert) exec(ctx context.Context, q repokit.Queryer, n int, row func(i int) []any) error {
	per := u.rowsPerStatement()
	for lo := 0; lo < n; lo += per {
		hi := min(lo+per, n)

		var sb strings.Builder
		sb.WriteString(u.head)
		args := make([]any, 0, (hi-lo)*len(u.casts))
		for i := lo; i < hi; i++ {
			if i > lo {
				sb.WriteByte(',')
			}
			sb.WriteByte('(')
			for c, v := range row(i) {
				if c > 0 {
					sb.WriteByte(',')
				}
				args = append(args, v)
				sb.WriteString("$" + strconv.Itoa(len(args)) + u.casts[c])
			}
			sb.WriteByte(')')
		}
		sb.WriteString(u.tail)

		if _, err := q.Exec(ctx, sb.String(), args...); err != nil {
			return perr.FromPG(err, u.op)
		}
	}
	return nil
}

var outcomeUpsert = upsert{
	op: "match.write_outcomes",
	head: `INSERT INTO company_match_outcomes
		(record_id, status, tier, score, matched_company_id, match_method,
		city_match, state_match, reason, matcher_version, batch_id, resolved_at) VALUES `,
	casts: []string{"", "", "", "", "", "", "", "", "", "", "::uuid", ""},
	tail: ` ON CONFLICT (record_id) DO UPDATE SET
		status = EXCLUDED.status,
		tier = EXCLUDED.tier,
		score = EXCLUDED.score,
		matched_company_id = EXCLUDED.matched_company_id,
		match_method = EXCLUDED.match_method,
		city_match = EXCLUDED.city_match,
		state_match = EXCLUDED.state_match,
		reason = EXCLUDED.reason,
		matcher_version = EXCLUDED.matcher_version,
		batch_id = EXCLUDED.batch_id,
		resolved_at = EXCLUDED.resolved_at`,
}

var reviewUpsert = upsert{
	op: "match.enqueue_reviews",
	head: `INSERT INTO match_review_queue
		(record_id, status, reason, candidate_ids, detail, batch_id, created_at) VALUES `,
	casts: []string{"", "", "", "", "", "::uuid", ""},
	tail: ` ON CONFLICT (record_id) DO UPDATE SET
		status = EXCLUDED.status,
		reason = EXCLUDED.reason,
		candidate_ids = EXCLUDED.candidate_ids,
		detail = EXCLUDED.detail,
		batch_id = EXCLUDED.batch_id,
		created_at = EXCLUDED.created_at
		WHERE match_review_queue.resolved_at IS NULL`,
}

// WriteOutcomes upserts one row per record; a newer run replaces the older verdict
func (s *pg) WriteOutcomes(ctx context.Context, xs []domain.OutcomeWrite) error {
	return outcomeUpsert.exec(ctx, s.q, len(xs), func(i int) []any {
		o := xs[i]
		return []any{
			o.RecordID, o.Status, o.Tier, o.Score, o.CompanyID, o.Method,
			o.CityMatch, o.StateMatch, o.Reason, o.MatcherVersion, o.BatchID, o.ResolvedAt,
		}
	})
}

// EnqueueReviews adds or refreshes open review items; closed items are left alone
func (s *pg) EnqueueReviews(ctx context.Context, xs []domain.ReviewItem) error {
	return reviewUpsert.exec(ctx, s.q, len(xs), func(i int) []any {
		r := xs[i]
		ids := r.CandidateIDs
		if ids == nil {
			ids = []string{}
		}
		return []any{r.RecordID, r.Status, r.Reason, ids, r.Detail, r.BatchID, r.CreatedAt}
	})
}
