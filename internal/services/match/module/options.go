package module

import (
	"time"

	"outreach/internal/adapters/arbiter/llm"
	"outreach/internal/core/matcher"
	"outreach/internal/platform/config"
)

// Arbiter kinds
const (
	ArbiterNone  = "none"
	ArbiterRules = "rules"
	ArbiterLLM   = "llm"
)

// Options for the match module
type Options struct {
	Matcher   matcher.Config
	Arbiter   string
	LLM       llm.Config
	Workers   int
	PageSize  int
	DryRun    bool
	Audit     bool
	TxTimeout time.Duration
}

// FromConfig fills options from environment
// CORE_MATCH_FUZZY_HIGH (default 0.92) accepts a fuzzy match anywhere
// CORE_MATCH_FUZZY_LOW (default 0.85) accepts a fuzzy match only in the same city
// CORE_MATCH_COLLISION (default 0.03) is the top1-top2 gap that makes a result ambiguous
// CORE_MATCH_DOMAIN_SCORE, CORE_MATCH_EXACT_SCORE are the fixed GOLD and SILVER scores
// CORE_MATCH_JW_PREFIX_WEIGHT (default 0.1) is the Jaro-Winkler prefix scale
// CORE_MATCH_ARBITER (default "none") picks none, rules or llm
// CORE_MATCH_ARBITER_TIMEOUT (default 5s) bounds one arbitration
// CORE_MATCH_WORKERS, CORE_MATCH_PAGE_SIZE, CORE_MATCH_DRY_RUN, CORE_MATCH_AUDIT tune batch runs
// CORE_ARBITER_LLM_API_KEY, CORE_ARBITER_LLM_MODEL, CORE_ARBITER_LLM_BASE_URL configure the llm arbiter;
// CORE_ARBITER_LLM_TIMEOUT (default 30s) bounds the completion shared by concurrent callers
func FromConfig(cfg config.Conf) Options {
	def := matcher.DefaultConfig()
	m := cfg.Prefix("CORE_MATCH_")
	l := cfg.Prefix("CORE_ARBITER_LLM_")

	o := Options{
		Matcher: matcher.Config{
			FuzzyHighThreshold: m.MayUnit("FUZZY_HIGH", def.FuzzyHighThreshold),
			FuzzyLowThreshold:  m.MayUnit("FUZZY_LOW", def.FuzzyLowThreshold),
			CollisionThreshold: m.MayUnit("COLLISION", def.CollisionThreshold),
			DomainMatchScore:   m.MayUnit("DOMAIN_SCORE", def.DomainMatchScore),
			ExactMatchScore:    m.MayUnit("EXACT_SCORE", def.ExactMatchScore),
			PrefixWeight:       m.MayFloat64("JW_PREFIX_WEIGHT", def.PrefixWeight),
			ArbitrationTimeout: m.MayDuration("ARBITER_TIMEOUT", def.ArbitrationTimeout),
			MaxCollision:       def.MaxCollision,
		},
		Arbiter:   m.MayEnum("ARBITER", ArbiterNone, ArbiterNone, ArbiterRules, ArbiterLLM),
		Workers:   m.MayInt("WORKERS", 4),
		PageSize:  m.MayInt("PAGE_SIZE", 500),
		DryRun:    m.MayBool("DRY_RUN", false),
		Audit:     m.MayBool("AUDIT", true),
		TxTimeout: m.MayDuration("TX_TIMEOUT", 30*time.Second),
		LLM: llm.Config{
			APIKey:  l.MayString("API_KEY", ""),
			Model:   l.MayString("MODEL", llm.DefaultModel),
			BaseURL: l.MayString("BASE_URL", ""),
			Timeout: l.MayDuration("TIMEOUT", llm.DefaultTimeout),
		},
	}
	return o
}
