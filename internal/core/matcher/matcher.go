package matcher

import (
	"context"
	"time"

	"outreach/internal/core/normalize"
	"outreach/internal/core/similarity"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Observer is told about every finished resolution, e.g. to feed metrics
type Observer interface {
	Observe(o Outcome, elapsed time.Duration)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(o Outcome, elapsed time.Duration)

// Observe implements Observer
func (f ObserverFunc) Observe(o Outcome, elapsed time.Duration) { f(o, elapsed) }

// Option customizes a Matcher
type Option func(*Matcher)

// WithArbitrator sets the collision arbitrator; without one collisions stay AMBIGUOUS
func WithArbitrator(a Arbitrator) Option { return func(m *Matcher) { m.arb = a } }

// WithLogger sets the logger used for collision and arbitration diagnostics
func WithLogger(l zerolog.Logger) Option { return func(m *Matcher) { m.log = l } }

// WithObserver adds an outcome observer
func WithObserver(o Observer) Option {
	return func(m *Matcher) {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
}

// WithSimilarity replaces the name similarity function
func WithSimilarity(f similarity.Func) Option { return func(m *Matcher) { m.sim = f } }

// WithNormalizer replaces the input normalizer
func WithNormalizer(n *normalize.Normalizer) Option { return func(m *Matcher) { m.norm = n } }

// Matcher runs the tiered resolution over one Pool. Safe for concurrent use.
type Matcher struct {
	pool      *Pool
	cfg       Config
	norm      *normalize.Normalizer
	sim       similarity.Func
	scorer    *Scorer
	arb       Arbitrator
	log       zerolog.Logger
	observers []Observer
	stats     counters
}

// New validates cfg and binds a matcher to pool
func New(pool *Pool, cfg Config, opts ...Option) (*Matcher, error) {
	if pool == nil {
		pool = &Pool{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Matcher{
		pool: pool,
		cfg:  cfg.withDefaults(),
		norm: normalize.Default,
		log:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(m)
	}
	if m.sim == nil {
		m.sim = similarity.NewJaroWinkler(m.cfg.PrefixWeight)
	}
	if m.norm == nil {
		m.norm = normalize.Default
	}
	m.scorer = NewScorer(m.sim, m.cfg.FuzzyHighThreshold, m.cfg.FuzzyLowThreshold)
	return m, nil
}

// Pool returns the bound pool
func (m *Matcher) Pool() *Pool { return m.pool }

// Config returns the effective config
func (m *Matcher) Config() Config { return m.cfg }

// Stats returns a snapshot of the counters
func (m *Matcher) Stats() Stats { return m.stats.snapshot() }

// Resolve returns exactly one terminal outcome for rec. It never fails; ctx only bounds
// the arbitration call.
func (m *Matcher) Resolve(ctx context.Context, rec InputRecord) Outcome {
	start := time.Now()
	out := m.resolve(ctx, rec)
	if out.Status == StatusMatched && !atLeast(out.Score, m.cfg.minScore(out.Tier)) {
		// a match may never undercut its tier floor; fail closed
		m.log.Error().
			Str("record_id", rec.RecordID).
			Str("tier", string(out.Tier)).
			Float64("score", out.Score).
			Msg("matched score below tier minimum")
		out = noMatch(ReasonBelowThreshold)
	}
	out.RecordID = rec.RecordID
	m.stats.outcome(out)
	elapsed := time.Since(start)
	for _, o := range m.observers {
		o.Observe(out, elapsed)
	}
	return out
}

func (m *Matcher) normalizeInput(rec InputRecord) normalizedInput {
	return normalizedInput{
		name:   m.norm.CompanyName(rec.Name),
		domain: m.norm.Domain(rec.Domain),
		city:   m.norm.City(rec.City),
		state:  m.norm.State(rec.State),
	}
}

func (m *Matcher) resolve(ctx context.Context, rec InputRecord) Outcome {
	in := m.normalizeInput(rec)

	// nothing to anchor on, city and state alone never decide
	if in.name == "" && in.domain == "" {
		return noMatch(ReasonNoAnchor)
	}

	if in.domain != "" {
		if e, ok := m.pool.lookupDomain(in.domain); ok {
			return m.matched(in, e, TierGold, m.cfg.DomainMatchScore, MethodDomain)
		}
	}

	if in.name == "" {
		return noMatch(ReasonNoAnchor)
	}

	// several companies sharing a normalized name go through fuzzy scoring and collide there
	if hits := m.pool.lookupName(in.name); len(hits) == 1 {
		return m.matched(in, &m.pool.entries[hits[0]], TierSilver, m.cfg.ExactMatchScore, MethodExactName)
	}

	ranked, comps := m.scorer.Score(in, m.pool)
	m.stats.comparisons.Add(int64(comps))

	res := ResolveCollisions(ranked, m.cfg.CollisionThreshold, m.cfg.MaxCollision)
	switch res.Status {
	case StatusNoMatch:
		return noMatch(ReasonBelowThreshold)
	case StatusMatched:
		return matchedFrom(res.Top)
	}

	m.stats.collisions.Add(1)
	m.log.Debug().
		Str("record_id", rec.RecordID).
		Str("name", in.name).
		Int("candidates", len(res.Collisions)).
		Msg(res.Reason)

	amb := Outcome{
		Status:              StatusAmbiguous,
		Tier:                TierNone,
		CollisionCandidates: res.Collisions,
		CollisionReason:     res.Reason,
		Reason:              ReasonCollision,
	}
	if m.arb == nil {
		return amb
	}

	req := ArbitrationRequest{
		RecordID:   rec.RecordID,
		Name:       in.name,
		City:       in.city,
		State:      in.state,
		Candidates: toCollisionCandidates(res.Collisions),
	}
	arb, err := arbitrate(ctx, m.arb, req, m.cfg.ArbitrationTimeout, m.cfg.FuzzyLowThreshold)
	m.stats.arbitration(arb, err)
	if err != nil {
		arb.Failed = true
		m.log.Warn().Err(err).
			Str("record_id", rec.RecordID).
			Str("fingerprint", req.Fingerprint()).
			Msg("arbitration downgraded to still ambiguous")
	}

	switch arb.Decision {
	case DecisionSelected:
		picked := findCandidate(res.Collisions, arb.CompanyID)
		return Outcome{
			Status:      StatusMatched,
			Tier:        TierBronze,
			Score:       arb.Confidence,
			CompanyID:   arb.CompanyID,
			Method:      MethodArbitration,
			CityMatch:   picked.CityMatch,
			StateMatch:  picked.StateMatch,
			Arbitration: &arb,
		}
	case DecisionRejected:
		amb.Reason = ReasonArbitrationRejected
	}
	amb.Arbitration = &arb
	return amb
}

// ResolveBatch resolves recs with at most workers goroutines, keeping input order.
// A cancelled ctx stops scheduling; unfinished slots stay zero and ctx.Err() is returned.
func (m *Matcher) ResolveBatch(ctx context.Context, recs []InputRecord, workers int) ([]Outcome, error) {
	out := make([]Outcome, len(recs))
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range recs {
		i := i
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = m.Resolve(gctx, recs[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, ctx.Err()
}

func (m *Matcher) matched(in normalizedInput, e *poolEntry, tier Tier, score float64, method Method) Outcome {
	return Outcome{
		Status:     StatusMatched,
		Tier:       tier,
		Score:      score,
		CompanyID:  e.CompanyID,
		Method:     method,
		CityMatch:  in.city != "" && in.city == e.city,
		StateMatch: in.state != "" && in.state == e.state,
	}
}

func matchedFrom(c MatchCandidate) Outcome {
	return Outcome{
		Status:     StatusMatched,
		Tier:       c.Tier,
		Score:      c.Score,
		CompanyID:  c.CompanyID,
		Method:     c.Method,
		CityMatch:  c.CityMatch,
		StateMatch: c.StateMatch,
	}
}

func noMatch(r Reason) Outcome {
	return Outcome{Status: StatusNoMatch, Tier: TierNone, Reason: r}
}

func toCollisionCandidates(cs []MatchCandidate) []CollisionCandidate {
	out := make([]CollisionCandidate, len(cs))
	for i, c := range cs {
		out[i] = CollisionCandidate{
			CompanyID: c.CompanyID,
			Name:      c.CompanyName,
			Score:     c.Score,
			City:      c.City,
			State:     c.State,
		}
	}
	return out
}

func findCandidate(cs []MatchCandidate, id string) MatchCandidate {
	for _, c := range cs {
		if c.CompanyID == id {
			return c
		}
	}
	return MatchCandidate{}
}
