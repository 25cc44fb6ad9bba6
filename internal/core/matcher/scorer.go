package matcher

import (
	"sort"

	"outreach/internal/core/similarity"
)

// Scorer ranks pool entries against a normalized input using the fuzzy rules
//   sim >= high                 -> BRONZE fuzzy_high
//   sim >= low and city agrees  -> BRONZE fuzzy_city_guardrail
//   otherwise                   -> rejected
// An empty city never agrees with anything.
type Scorer struct {
	sim  similarity.Func
	high float64
	low  float64
}

// NewScorer builds a scorer; a nil sim falls back to Jaro-Winkler at the default weight
func NewScorer(sim similarity.Func, high, low float64) *Scorer {
	if sim == nil {
		sim = similarity.JaroWinkler
	}
	return &Scorer{sim: sim, high: high, low: low}
}

// Score compares in against every named entry and returns accepted candidates in rank
// order plus the number of comparisons made
func (s *Scorer) Score(in normalizedInput, p *Pool) ([]MatchCandidate, int) {
	if in.name == "" || p == nil {
		return nil, 0
	}
	var (
		out   []MatchCandidate
		comps int
	)
	for i := range p.entries {
		e := &p.entries[i]
		if e.name == "" {
			continue
		}
		comps++
		score := s.sim(in.name, e.name)
		cityMatch := in.city != "" && in.city == e.city
		stateMatch := in.state != "" && in.state == e.state

		var method Method
		switch {
		case atLeast(score, s.high):
			method = MethodFuzzyHigh
		case atLeast(score, s.low) && cityMatch:
			method = MethodFuzzyCity
		default:
			continue
		}
		out = append(out, MatchCandidate{
			CompanyID:   e.CompanyID,
			CompanyName: e.CompanyName,
			City:        e.City,
			State:       e.State,
			Score:       score,
			Tier:        TierBronze,
			Method:      method,
			CityMatch:   cityMatch,
			StateMatch:  stateMatch,
		})
	}
	Rank(out)
	return out, comps
}

// Rank sorts candidates by score, location boost, tier, then company id.
// The id key only makes equal candidates come out in a stable order.
func Rank(cs []MatchCandidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if ab, bb := a.locationBoost(), b.locationBoost(); ab != bb {
			return ab > bb
		}
		if ar, br := a.Tier.Rank(), b.Tier.Rank(); ar != br {
			return ar > br
		}
		return a.CompanyID < b.CompanyID
	})
}
