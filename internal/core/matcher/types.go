// Package matcher resolves an input record to at most one company from a candidate pool.
// Resolution walks a strict hierarchy: authoritative domain, exact normalized name, then
// Jaro-Winkler fuzzy matching behind a city guardrail with collision detection. Collisions
// may be handed once to an external Arbitrator. "No match" and "ambiguous" are outcomes,
// not errors; only a malformed pool or config is reported as an error.
package matcher

// Status is the terminal state of one resolution
type Status string

const (
	StatusMatched   Status = "MATCHED"
	StatusNoMatch   Status = "NO_MATCH"
	StatusAmbiguous Status = "AMBIGUOUS"
)

// Tier is the confidence band of a match, GOLD highest
type Tier string

const (
	TierGold   Tier = "GOLD"
	TierSilver Tier = "SILVER"
	TierBronze Tier = "BRONZE"
	TierNone   Tier = "NONE"
)

// Rank orders tiers for tie breaking, higher is better
func (t Tier) Rank() int {
	switch t {
	case TierGold:
		return 3
	case TierSilver:
		return 2
	case TierBronze:
		return 1
	default:
		return 0
	}
}

// Method tags the rule that produced a match
type Method string

const (
	MethodDomain      Method = "domain"
	MethodExactName   Method = "exact_name"
	MethodFuzzyHigh   Method = "fuzzy_high"
	MethodFuzzyCity   Method = "fuzzy_city_guardrail"
	MethodArbitration Method = "llm_arbitration"
)

// Reason is a machine readable routing hint for non matched outcomes
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonNoAnchor            Reason = "no_anchor"
	ReasonBelowThreshold      Reason = "below_threshold"
	ReasonCollision           Reason = "collision"
	ReasonArbitrationRejected Reason = "arbitration_rejected"
)

// InputRecord is one row to resolve. Name may be empty only when Domain is set.
type InputRecord struct {
	RecordID string `json:"record_id"`
	Name     string `json:"name"`
	Domain   string `json:"domain,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
}

// CompanyCandidate is one company in the pool
type CompanyCandidate struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Domain      string `json:"domain,omitempty"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
}

// MatchCandidate is a scored pairing of the input with one company
type MatchCandidate struct {
	CompanyID   string  `json:"company_id"`
	CompanyName string  `json:"company_name"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	Score       float64 `json:"score"`
	Tier        Tier    `json:"tier"`
	Method      Method  `json:"match_method"`
	CityMatch   bool    `json:"city_match"`
	StateMatch  bool    `json:"state_match"`
}

// locationBoost rewards city agreement over state agreement
func (c MatchCandidate) locationBoost() int {
	b := 0
	if c.CityMatch {
		b += 2
	}
	if c.StateMatch {
		b++
	}
	return b
}

// Outcome is the terminal decision for one InputRecord.
// Tier, Score, CompanyID and Method are set only when Status is MATCHED.
// CollisionCandidates and CollisionReason are set only when Status is AMBIGUOUS.
type Outcome struct {
	RecordID            string           `json:"record_id"`
	Status              Status           `json:"status"`
	Tier                Tier             `json:"tier"`
	Score               float64          `json:"score"`
	CompanyID           string           `json:"matched_company_id,omitempty"`
	Method              Method           `json:"match_method,omitempty"`
	CityMatch           bool             `json:"city_match"`
	StateMatch          bool             `json:"state_match"`
	CollisionCandidates []MatchCandidate `json:"collision_candidates,omitempty"`
	CollisionReason     string           `json:"collision_reason,omitempty"`
	Reason              Reason           `json:"reason,omitempty"`
	Arbitration         *Arbitration     `json:"arbitration,omitempty"`
}

// NeedsReview reports whether the outcome should be routed to a human queue
func (o Outcome) NeedsReview() bool { return o.Status != StatusMatched }

// normalizedInput holds the comparable forms of an InputRecord
type normalizedInput struct {
	name   string
	domain string
	city   string
	state  string
}
