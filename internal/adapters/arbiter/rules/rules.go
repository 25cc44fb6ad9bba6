// Package rules is a deterministic Arbitrator that settles collisions on location evidence.
//
// A candidate is selected only when it is the single contender agreeing with the record on
// both city and state and it also holds the unique best token set name score. A record
// whose state no contender shares is rejected. Everything else stays ambiguous.
package rules

import (
	"context"
	"fmt"

	"outreach/internal/core/matcher"
	"outreach/internal/core/normalize"
	"outreach/internal/core/similarity"
)

const tieEpsilon = 1e-9

// Arbiter implements matcher.Arbitrator
type Arbiter struct {
	norm *normalize.Normalizer
	sim  similarity.Func
}

// New constructs the rules arbiter
func New() *Arbiter {
	return &Arbiter{norm: normalize.Default, sim: similarity.TokenSet}
}

type contender struct {
	c         matcher.CollisionCandidate
	nameScore float64
	cityMatch bool
	sameState bool
}

// Arbitrate implements matcher.Arbitrator
func (a *Arbiter) Arbitrate(ctx context.Context, req matcher.ArbitrationRequest) (matcher.Arbitration, error) {
	if err := ctx.Err(); err != nil {
		return matcher.Arbitration{}, err
	}

	name := a.norm.CompanyName(req.Name)
	city := a.norm.City(req.City)
	state := a.norm.State(req.State)

	if state == "" {
		return unsettled("record has no usable state"), nil
	}

	cs := make([]contender, len(req.Candidates))
	var inState, located []int
	for i, c := range req.Candidates {
		cs[i] = contender{
			c:         c,
			nameScore: a.sim(name, a.norm.CompanyName(c.Name)),
			sameState: a.norm.State(c.State) == state,
			cityMatch: city != "" && a.norm.City(c.City) == city,
		}
		if cs[i].sameState {
			inState = append(inState, i)
			if cs[i].cityMatch {
				located = append(located, i)
			}
		}
	}

	if len(inState) == 0 {
		return matcher.Arbitration{
			Decision:  matcher.DecisionRejected,
			Reasoning: fmt.Sprintf("no candidate is in %s", state),
		}, nil
	}
	if len(located) != 1 {
		return unsettled("%d candidates agree on city and state", len(located)), nil
	}

	pick := cs[located[0]]
	for i, o := range cs {
		if i != located[0] && o.nameScore >= pick.nameScore-tieEpsilon {
			return unsettled("%s does not hold the best name score (%s scores %.4f vs %.4f)",
				pick.c.CompanyID, o.c.CompanyID, o.nameScore, pick.nameScore), nil
		}
	}

	return matcher.Arbitration{
		Decision:   matcher.DecisionSelected,
		CompanyID:  pick.c.CompanyID,
		Confidence: max(pick.nameScore, pick.c.Score),
		Reasoning:  fmt.Sprintf("only candidate in %s, %s with the best name score", city, state),
	}, nil
}

func unsettled(format string, a ...any) matcher.Arbitration {
	return matcher.Arbitration{Decision: matcher.DecisionStillAmbiguous, Reasoning: fmt.Sprintf(format, a...)}
}
