package service

import (
	"strings"
	"time"

	"outreach/internal/core/matcher"
	"outreach/internal/core/version"
	"outreach/internal/platform/metrics"
	"outreach/internal/services/match/domain"
)

// observe feeds every outcome into the prometheus collectors
func observe(o matcher.Outcome, elapsed time.Duration) {
	metrics.ObserveOutcome(string(o.Status), string(o.Tier), string(o.Method), elapsed)
	if o.NeedsReview() {
		metrics.IncReview(reviewReason(o))
	}
	if a := o.Arbitration; a != nil {
		metrics.ObserveArbitration(string(a.Decision), a.Failed)
	}
}

func reviewReason(o matcher.Outcome) string {
	if o.Reason != matcher.ReasonNone {
		return string(o.Reason)
	}
	return strings.ToLower(string(o.Status))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func candidateIDs(cs []matcher.MatchCandidate) []string {
	if len(cs) == 0 {
		return nil
	}
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.CompanyID
	}
	return ids
}

func outcomeWrite(o matcher.Outcome, batchID string, at time.Time) domain.OutcomeWrite {
	return domain.OutcomeWrite{
		RecordID:       o.RecordID,
		Status:         string(o.Status),
		Tier:           string(o.Tier),
		Score:          o.Score,
		CompanyID:      optional(o.CompanyID),
		Method:         optional(string(o.Method)),
		CityMatch:      o.CityMatch,
		StateMatch:     o.StateMatch,
		Reason:         optional(string(o.Reason)),
		MatcherVersion: version.Matcher,
		BatchID:        batchID,
		ResolvedAt:     at,
	}
}

func reviewItem(o matcher.Outcome, batchID string, at time.Time) domain.ReviewItem {
	detail := o.CollisionReason
	if a := o.Arbitration; a != nil && a.Reasoning != "" {
		if detail != "" {
			detail += "; "
		}
		detail += "arbitration: " + a.Reasoning
	}
	return domain.ReviewItem{
		RecordID:     o.RecordID,
		Status:       string(o.Status),
		Reason:       reviewReason(o),
		CandidateIDs: candidateIDs(o.CollisionCandidates),
		Detail:       detail,
		BatchID:      batchID,
		CreatedAt:    at,
	}
}

func decision(id string, o matcher.Outcome, batchID string, at time.Time) domain.Decision {
	d := domain.Decision{
		ID:             id,
		BatchID:        batchID,
		RecordID:       o.RecordID,
		Status:         string(o.Status),
		Tier:           string(o.Tier),
		Score:          o.Score,
		CompanyID:      o.CompanyID,
		Method:         string(o.Method),
		Reason:         string(o.Reason),
		CityMatch:      o.CityMatch,
		StateMatch:     o.StateMatch,
		Candidates:     candidateIDs(o.CollisionCandidates),
		MatcherVersion: version.Matcher,
		DecidedAt:      at,
	}
	if a := o.Arbitration; a != nil {
		d.ArbDecision = string(a.Decision)
		d.ArbConfidence = a.Confidence
		d.ArbFailed = a.Failed
	}
	return d
}
