package matcher

import (
	"time"

	perr "outreach/internal/platform/errors"

	"outreach/internal/core/similarity"
)

// MaxCollisionCandidates caps the collision set reported and sent to arbitration
const MaxCollisionCandidates = 5

// scoreEpsilon absorbs float noise in threshold and gap comparisons
const scoreEpsilon = 1e-9

// Config carries the tunable thresholds. The defaults were hand tuned against
// Jaro-Winkler with a 0.1 prefix weight; change them together.
type Config struct {
	// FuzzyHighThreshold accepts a fuzzy match regardless of location
	FuzzyHighThreshold float64
	// FuzzyLowThreshold accepts a fuzzy match only when the city agrees
	FuzzyLowThreshold float64
	// CollisionThreshold is the top1-top2 gap at or below which the result is ambiguous
	CollisionThreshold float64
	// DomainMatchScore is the fixed GOLD score
	DomainMatchScore float64
	// ExactMatchScore is the fixed SILVER score
	ExactMatchScore float64
	// PrefixWeight is the Jaro-Winkler prefix scale, capped at 0.25
	PrefixWeight float64
	// ArbitrationTimeout bounds a single Arbitrator call
	ArbitrationTimeout time.Duration
	// MaxCollision caps the reported collision set
	MaxCollision int
}

// DefaultConfig returns the stock thresholds
func DefaultConfig() Config {
	return Config{
		FuzzyHighThreshold: 0.92,
		FuzzyLowThreshold:  0.85,
		CollisionThreshold: 0.03,
		DomainMatchScore:   1.0,
		ExactMatchScore:    0.95,
		PrefixWeight:       similarity.DefaultPrefixWeight,
		ArbitrationTimeout: 5 * time.Second,
		MaxCollision:       MaxCollisionCandidates,
	}
}

// Validate reports the first out of range setting
func (c Config) Validate() error {
	unit := func(field string, v float64) error {
		if v != v || v < 0 || v > 1 {
			return perr.WithField(perr.InvalidArgf("%s must be within [0,1], got %v", field, v), field)
		}
		return nil
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"fuzzy_high_threshold", c.FuzzyHighThreshold},
		{"fuzzy_low_threshold", c.FuzzyLowThreshold},
		{"collision_threshold", c.CollisionThreshold},
		{"domain_match_score", c.DomainMatchScore},
		{"exact_match_score", c.ExactMatchScore},
	} {
		if err := unit(f.name, f.v); err != nil {
			return err
		}
	}
	if c.FuzzyLowThreshold > c.FuzzyHighThreshold {
		return perr.WithField(perr.InvalidArgf("fuzzy_low_threshold %v exceeds fuzzy_high_threshold %v",
			c.FuzzyLowThreshold, c.FuzzyHighThreshold), "fuzzy_low_threshold")
	}
	if c.PrefixWeight != c.PrefixWeight || c.PrefixWeight < 0 || c.PrefixWeight > similarity.MaxPrefixWeight {
		return perr.WithField(perr.InvalidArgf("prefix_weight must be within [0,%v], got %v",
			similarity.MaxPrefixWeight, c.PrefixWeight), "prefix_weight")
	}
	if c.ArbitrationTimeout < 0 {
		return perr.WithField(perr.InvalidArgf("arbitration_timeout must not be negative"), "arbitration_timeout")
	}
	if c.MaxCollision != 0 && (c.MaxCollision < 2 || c.MaxCollision > MaxCollisionCandidates) {
		return perr.WithField(perr.InvalidArgf("max_collision must be within [2,%d], got %d",
			MaxCollisionCandidates, c.MaxCollision), "max_collision")
	}
	return nil
}

// withDefaults fills zero values that have no meaningful zero setting
func (c Config) withDefaults() Config {
	if c.ArbitrationTimeout == 0 {
		c.ArbitrationTimeout = DefaultConfig().ArbitrationTimeout
	}
	if c.MaxCollision == 0 {
		c.MaxCollision = MaxCollisionCandidates
	}
	return c
}

// minScore is the lowest score a MATCHED outcome may carry for tier t
func (c Config) minScore(t Tier) float64 {
	switch t {
	case TierGold:
		return c.DomainMatchScore
	case TierSilver:
		return c.ExactMatchScore
	default:
		return c.FuzzyLowThreshold
	}
}

// atLeast compares with a small tolerance so 0.85 stays 0.85 after arithmetic
func atLeast(score, threshold float64) bool {
	return score >= threshold-scoreEpsilon
}
