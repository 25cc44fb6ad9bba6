package matcher

import (
	"fmt"
	"strings"
)

// Resolution is the collision resolver verdict over a ranked candidate list
type Resolution struct {
	Status     Status
	Top        MatchCandidate
	Collisions []MatchCandidate
	Reason     string
}

// ResolveCollisions decides between a single match, no match, or a collision.
// ranked must already be in Rank order. The collision set is every candidate within
// threshold of the leader, capped at limit.
func ResolveCollisions(ranked []MatchCandidate, threshold float64, limit int) Resolution {
	switch len(ranked) {
	case 0:
		return Resolution{Status: StatusNoMatch}
	case 1:
		return Resolution{Status: StatusMatched, Top: ranked[0]}
	}

	top, second := ranked[0], ranked[1]
	gap := top.Score - second.Score
	if gap > threshold+scoreEpsilon {
		return Resolution{Status: StatusMatched, Top: top}
	}

	if limit <= 0 || limit > MaxCollisionCandidates {
		limit = MaxCollisionCandidates
	}
	set := make([]MatchCandidate, 0, limit)
	for _, c := range ranked {
		if len(set) == limit || top.Score-c.Score > threshold+scoreEpsilon {
			break
		}
		set = append(set, c)
	}
	return Resolution{
		Status:     StatusAmbiguous,
		Top:        top,
		Collisions: set,
		Reason:     collisionReason(set, gap, threshold),
	}
}

func collisionReason(set []MatchCandidate, gap, threshold float64) string {
	ids := make([]string, len(set))
	for i, c := range set {
		ids[i] = fmt.Sprintf("%s(%.4f)", c.CompanyID, c.Score)
	}
	return fmt.Sprintf("%d candidates within %.2f of the top score (top gap %.4f): %s",
		len(set), threshold, gap, strings.Join(ids, ", "))
}
