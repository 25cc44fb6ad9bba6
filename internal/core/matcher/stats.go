package matcher

import "sync/atomic"

// Stats is a point in time copy of the matcher counters
type Stats struct {
	Records      int64 `json:"records"`
	Matched      int64 `json:"matched"`
	NoMatch      int64 `json:"no_match"`
	Ambiguous    int64 `json:"ambiguous"`
	Gold         int64 `json:"gold"`
	Silver       int64 `json:"silver"`
	Bronze       int64 `json:"bronze"`
	Comparisons  int64 `json:"fuzzy_comparisons"`
	Collisions   int64 `json:"collisions"`
	Arbitrations int64 `json:"arbitrations"`
	ArbSelected  int64 `json:"arbitration_selected"`
	ArbRejected  int64 `json:"arbitration_rejected"`
	ArbUnsettled int64 `json:"arbitration_still_ambiguous"`
	ArbFailures  int64 `json:"arbitration_failures"`
}

type counters struct {
	records, matched, noMatch, ambiguous atomic.Int64
	gold, silver, bronze                 atomic.Int64
	comparisons, collisions              atomic.Int64
	arbitrations, arbSelected            atomic.Int64
	arbRejected, arbUnsettled, arbFailed atomic.Int64
}

func (c *counters) outcome(o Outcome) {
	c.records.Add(1)
	switch o.Status {
	case StatusMatched:
		c.matched.Add(1)
		switch o.Tier {
		case TierGold:
			c.gold.Add(1)
		case TierSilver:
			c.silver.Add(1)
		case TierBronze:
			c.bronze.Add(1)
		}
	case StatusNoMatch:
		c.noMatch.Add(1)
	case StatusAmbiguous:
		c.ambiguous.Add(1)
	}
}

func (c *counters) arbitration(a Arbitration, err error) {
	c.arbitrations.Add(1)
	if err != nil {
		c.arbFailed.Add(1)
	}
	switch a.Decision {
	case DecisionSelected:
		c.arbSelected.Add(1)
	case DecisionRejected:
		c.arbRejected.Add(1)
	default:
		c.arbUnsettled.Add(1)
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		Records:      c.records.Load(),
		Matched:      c.matched.Load(),
		NoMatch:      c.noMatch.Load(),
		Ambiguous:    c.ambiguous.Load(),
		Gold:         c.gold.Load(),
		Silver:       c.silver.Load(),
		Bronze:       c.bronze.Load(),
		Comparisons:  c.comparisons.Load(),
		Collisions:   c.collisions.Load(),
		Arbitrations: c.arbitrations.Load(),
		ArbSelected:  c.arbSelected.Load(),
		ArbRejected:  c.arbRejected.Load(),
		ArbUnsettled: c.arbUnsettled.Load(),
		ArbFailures:  c.arbFailed.Load(),
	}
}
