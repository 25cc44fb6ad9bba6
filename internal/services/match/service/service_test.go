package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"outreach/internal/core/matcher"
	"outreach/internal/core/version"
	"outreach/internal/modkit/repokit"
	perr "outreach/internal/platform/errors"
	"outreach/internal/platform/store"
	"outreach/internal/services/match/domain"
)

type fakeTag int64

func (t fakeTag) String() string      { return fmt.Sprintf("OK %d", int64(t)) }
func (t fakeTag) RowsAffected() int64 { return int64(t) }

// fakeDB records statements and runs Tx inline
type fakeDB struct {
	mu    sync.Mutex
	execs []string
	txs   int
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (store.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execs = append(f.execs, sql)
	return fakeTag(0), nil
}
func (f *fakeDB) Query(context.Context, string, ...any) (store.Rows, error) {
	return nil, errors.New("fakeDB: Query unused")
}
func (f *fakeDB) QueryRow(context.Context, string, ...any) store.Row { return nil }
func (f *fakeDB) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	f.mu.Lock()
	f.txs++
	f.mu.Unlock()
	return fn(f)
}

type fakeRepo struct {
	mu        sync.Mutex
	companies []matcher.CompanyCandidate
	pending   []domain.RecordInput
	outcomes  []domain.OutcomeWrite
	reviews   []domain.ReviewItem
	listErr   error
	writeErr  error
	pages     int
}

func (r *fakeRepo) ListCompanies(context.Context) ([]matcher.CompanyCandidate, error) {
	return r.companies, r.listErr
}

func (r *fakeRepo) ListPending(_ context.Context, after domain.AfterKey, limit int) ([]domain.RecordInput, domain.AfterKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages++
	var out []domain.RecordInput
	for _, p := range r.pending {
		if p.RecordID > after.RecordID && len(out) < limit {
			out = append(out, p)
		}
	}
	next := after
	if len(out) > 0 {
		next = domain.AfterKey{RecordID: out[len(out)-1].RecordID}
	}
	return out, next, nil
}

func (r *fakeRepo) WriteOutcomes(_ context.Context, xs []domain.OutcomeWrite) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, xs...)
	return nil
}

func (r *fakeRepo) EnqueueReviews(_ context.Context, xs []domain.ReviewItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reviews = append(r.reviews, xs...)
	return nil
}

type fakeAudit struct {
	mu  sync.Mutex
	got []domain.Decision
	err error
}

func (a *fakeAudit) Record(_ context.Context, xs []domain.Decision) error {
	if a.err != nil {
		return a.err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.got = append(a.got, xs...)
	return nil
}

func companies() []matcher.CompanyCandidate {
	return []matcher.CompanyCandidate{
		{CompanyID: "C1", CompanyName: "Acme Corporation", Domain: "acme.com", City: "Columbus", State: "OH"},
		{CompanyID: "C2", CompanyName: "Globex Inc", Domain: "globex.com", City: "Springfield", State: "IL"},
		{CompanyID: "C3", CompanyName: "Initech LLC", Domain: "initech.com", City: "Austin", State: "TX"},
	}
}

func pending() []domain.RecordInput {
	return []domain.RecordInput{
		{RecordID: "r1", Name: "ACME Corp", Domain: "https://www.acme.com/about"},
		{RecordID: "r2", Name: "Globex"},
		{RecordID: "r3", Name: "Zzyzx Holdings"},
		{RecordID: "r4", Name: "Initech, L.L.C.", City: "Austin", State: "Texas"},
		{RecordID: "r5", Name: ""},
	}
}

func newTestService(t *testing.T, repo *fakeRepo, audit domain.AuditPort, cfg Config) (*Service, *fakeDB) {
	t.Helper()
	db := &fakeDB{}
	binder := repokit.BindFunc[domain.StorageRepo](func(repokit.Queryer) domain.StorageRepo { return repo })
	s := New(db, binder, audit, nil, cfg)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	n := 0
	var mu sync.Mutex
	s.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%03d", n)
	}
	return s, db
}

func TestNew_PanicsOnNilDeps(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	New(nil, nil, nil, nil, Config{})
}

func TestResolve_BeforeLoad(t *testing.T) {
	s, _ := newTestService(t, &fakeRepo{}, nil, Config{Matcher: matcher.DefaultConfig()})
	if _, err := s.Resolve(context.Background(), domain.RecordInput{RecordID: "x", Name: "Acme"}); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if _, err := s.Stats(context.Background()); !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("expected unavailable stats, got %v", err)
	}
}

func TestReload_ThenResolve(t *testing.T) {
	s, _ := newTestService(t, &fakeRepo{companies: companies()}, nil, Config{Matcher: matcher.DefaultConfig()})

	res, err := s.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if res.PoolSize != 3 || res.SharedDomains != 0 {
		t.Fatalf("reload = %+v", res)
	}

	tests := []struct {
		in      domain.RecordInput
		status  matcher.Status
		tier    matcher.Tier
		company string
	}{
		{domain.RecordInput{RecordID: "a", Name: "whatever", Domain: "sales@acme.com"}, matcher.StatusMatched, matcher.TierGold, "C1"},
		{domain.RecordInput{RecordID: "b", Name: "GLOBEX"}, matcher.StatusMatched, matcher.TierSilver, "C2"},
		{domain.RecordInput{RecordID: "c", Name: "Zzyzx Holdings"}, matcher.StatusNoMatch, matcher.TierNone, ""},
	}
	for _, tc := range tests {
		got, err := s.Resolve(context.Background(), tc.in)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", tc.in.RecordID, err)
		}
		if got.RecordID != tc.in.RecordID || got.Status != tc.status || got.Tier != tc.tier || got.CompanyID != tc.company {
			t.Fatalf("Resolve(%s) = %+v", tc.in.RecordID, got.Outcome)
		}
		if got.MatcherVersion != version.Matcher {
			t.Fatalf("matcher version = %q", got.MatcherVersion)
		}
	}

	st, err := s.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Records != 3 || st.Matched != 2 || st.NoMatch != 1 || st.PoolSize != 3 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestReload_BadPool(t *testing.T) {
	cs := append(companies(), matcher.CompanyCandidate{CompanyID: "C1", CompanyName: "Dup"})
	s, _ := newTestService(t, &fakeRepo{companies: cs}, nil, Config{Matcher: matcher.DefaultConfig()})
	if _, err := s.Reload(context.Background()); !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("expected duplicate key, got %v", err)
	}

	s, _ = newTestService(t, &fakeRepo{listErr: perr.New(perr.ErrorCodeDB, "down")}, nil, Config{Matcher: matcher.DefaultConfig()})
	if _, err := s.Reload(context.Background()); !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("expected db error, got %v", err)
	}
}

func TestResolveBatch_OrderAndLimit(t *testing.T) {
	s, _ := newTestService(t, &fakeRepo{companies: companies()}, nil, Config{Matcher: matcher.DefaultConfig(), Workers: 3})
	if _, err := s.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	in := pending()
	outs, err := s.ResolveBatch(context.Background(), in)
	if err != nil {
		t.Fatalf("ResolveBatch: %v", err)
	}
	if len(outs) != len(in) {
		t.Fatalf("len = %d", len(outs))
	}
	for i := range in {
		if outs[i].RecordID != in[i].RecordID {
			t.Fatalf("order broken at %d: %s vs %s", i, outs[i].RecordID, in[i].RecordID)
		}
	}

	big := make([]domain.RecordInput, domain.MaxBatch+1)
	_, err = s.ResolveBatch(context.Background(), big)
	if !perr.IsCode(err, perr.ErrorCodeTooLarge) {
		t.Fatalf("expected too large, got %v", err)
	}
	if e, _ := perr.As(err); e.Field() != "records" {
		t.Fatalf("field = %q", e.Field())
	}

	empty, err := s.ResolveBatch(context.Background(), nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty batch = %v, %v", empty, err)
	}
}

func TestRun_PagesWritesAndAudits(t *testing.T) {
	repo := &fakeRepo{companies: companies(), pending: pending()}
	audit := &fakeAudit{}
	s, db := newTestService(t, repo, audit, Config{Matcher: matcher.DefaultConfig(), PageSize: 2, Audit: true})

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.BatchID != "id-001" || sum.PoolSize != 3 || sum.Pages != 3 || sum.Records != 5 {
		t.Fatalf("summary = %+v", sum)
	}
	if sum.Matched != 3 || sum.NoMatch != 2 || sum.Ambiguous != 0 {
		t.Fatalf("counts = %+v", sum)
	}
	if sum.ByTier["GOLD"] != 1 || sum.ByTier["SILVER"] != 2 {
		t.Fatalf("by tier = %v", sum.ByTier)
	}
	if sum.Reviews != 2 || len(repo.reviews) != 2 {
		t.Fatalf("reviews = %d / %d", sum.Reviews, len(repo.reviews))
	}
	for _, r := range repo.reviews {
		if r.BatchID != sum.BatchID || r.Status != "NO_MATCH" {
			t.Fatalf("review = %+v", r)
		}
	}

	if len(repo.outcomes) != 5 {
		t.Fatalf("outcomes = %d", len(repo.outcomes))
	}
	byID := map[string]domain.OutcomeWrite{}
	for _, o := range repo.outcomes {
		byID[o.RecordID] = o
		if o.MatcherVersion != version.Matcher || o.BatchID != sum.BatchID {
			t.Fatalf("outcome stamp = %+v", o)
		}
	}
	if o := byID["r1"]; o.CompanyID == nil || *o.CompanyID != "C1" || o.Tier != "GOLD" {
		t.Fatalf("r1 = %+v", o)
	}
	if o := byID["r3"]; o.CompanyID != nil || o.Method != nil || o.Reason == nil || *o.Reason != "below_threshold" {
		t.Fatalf("r3 = %+v", o)
	}
	if o := byID["r5"]; o.Reason == nil || *o.Reason != "no_anchor" {
		t.Fatalf("r5 = %+v", o)
	}

	// one tx per non empty page, each opened with the statement timeout
	if db.txs != 3 {
		t.Fatalf("txs = %d", db.txs)
	}
	timeouts := 0
	for _, q := range db.execs {
		if strings.Contains(q, "statement_timeout") {
			timeouts++
		}
	}
	if timeouts != 3 {
		t.Fatalf("statement timeouts = %d", timeouts)
	}

	if sum.Audited != 5 || len(audit.got) != 5 {
		t.Fatalf("audited = %d / %d", sum.Audited, len(audit.got))
	}
	ids := map[string]bool{}
	for _, d := range audit.got {
		if d.ID == "" || ids[d.ID] {
			t.Fatalf("audit id %q missing or repeated", d.ID)
		}
		ids[d.ID] = true
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	repo := &fakeRepo{companies: companies(), pending: pending()}
	audit := &fakeAudit{}
	s, db := newTestService(t, repo, audit, Config{Matcher: matcher.DefaultConfig(), PageSize: 10, DryRun: true, Audit: true})

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !sum.DryRun || sum.Records != 5 || sum.Pages != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if len(repo.outcomes) != 0 || len(repo.reviews) != 0 || len(audit.got) != 0 || db.txs != 0 {
		t.Fatalf("dry run wrote: outcomes=%d reviews=%d audit=%d txs=%d",
			len(repo.outcomes), len(repo.reviews), len(audit.got), db.txs)
	}
}

func TestRun_WriteFailureStops(t *testing.T) {
	repo := &fakeRepo{companies: companies(), pending: pending(), writeErr: perr.New(perr.ErrorCodeDB, "disk full")}
	s, _ := newTestService(t, repo, nil, Config{Matcher: matcher.DefaultConfig(), PageSize: 2})

	sum, err := s.Run(context.Background())
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("expected db error, got %v", err)
	}
	if sum.Pages != 0 || repo.pages != 1 {
		t.Fatalf("pages = %d, listed = %d", sum.Pages, repo.pages)
	}
	if sum.FinishedAt.IsZero() {
		t.Fatalf("finish not stamped")
	}
}

func TestRun_AuditFailureIsNotFatal(t *testing.T) {
	repo := &fakeRepo{companies: companies(), pending: pending()}
	audit := &fakeAudit{err: errors.New("clickhouse down")}
	s, _ := newTestService(t, repo, audit, Config{Matcher: matcher.DefaultConfig(), PageSize: 10, Audit: true})

	sum, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sum.Audited != 0 || len(repo.outcomes) != 5 {
		t.Fatalf("audited = %d outcomes = %d", sum.Audited, len(repo.outcomes))
	}
}

func TestRun_Cancelled(t *testing.T) {
	repo := &fakeRepo{companies: companies(), pending: pending()}
	s, _ := newTestService(t, repo, nil, Config{Matcher: matcher.DefaultConfig(), PageSize: 2})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReviewItem_CarriesCollision(t *testing.T) {
	o := matcher.Outcome{
		RecordID: "r9",
		Status:   matcher.StatusAmbiguous,
		Tier:     matcher.TierNone,
		CollisionCandidates: []matcher.MatchCandidate{
			{CompanyID: "B2"}, {CompanyID: "B1"},
		},
		CollisionReason: "gap 0.0100 <= 0.0300",
		Reason:          matcher.ReasonArbitrationRejected,
		Arbitration:     &matcher.Arbitration{Decision: matcher.DecisionRejected, Reasoning: "neither"},
	}
	at := time.Unix(0, 0)
	it := reviewItem(o, "b", at)
	ids := append([]string(nil), it.CandidateIDs...)
	sort.Strings(ids)
	if it.Reason != "arbitration_rejected" || len(ids) != 2 || ids[0] != "B1" {
		t.Fatalf("review = %+v", it)
	}
	if !strings.Contains(it.Detail, "gap") || !strings.Contains(it.Detail, "neither") {
		t.Fatalf("detail = %q", it.Detail)
	}

	d := decision("id", o, "b", at)
	if d.ArbDecision != "REJECTED" || d.ArbFailed || len(d.Candidates) != 2 {
		t.Fatalf("decision = %+v", d)
	}
}
