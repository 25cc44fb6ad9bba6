package service

import (
	"context"

	"outreach/internal/core/matcher"
	"outreach/internal/modkit/repokit"
	"outreach/internal/platform/logger"
	"outreach/internal/platform/metrics"
	"outreach/internal/services/match/domain"
)

// Run implements domain.RunnerPort. It reloads the pool, then pages through pending
// records until a short page. Each page is written in one transaction so a page is
// either fully persisted or retried by the next run.
func (s *Service) Run(ctx context.Context) (domain.RunSummary, error) {
	batchID := s.newID()
	ctx = logger.WithBatch(ctx, batchID)
	l := logger.C(ctx).With().Str("mod", "match").Bool("dry_run", s.Cfg.DryRun).Logger()

	sum := domain.RunSummary{
		BatchID:   batchID,
		DryRun:    s.Cfg.DryRun,
		ByTier:    map[string]int{},
		StartedAt: s.now().UTC(),
	}
	finish := func(err error) (domain.RunSummary, error) {
		sum.FinishedAt = s.now().UTC()
		ev := l.Info()
		if err != nil {
			ev = l.Error().Err(err)
		}
		ev.Int("pages", sum.Pages).
			Int("records", sum.Records).
			Int("matched", sum.Matched).
			Int("no_match", sum.NoMatch).
			Int("ambiguous", sum.Ambiguous).
			Dur("took", sum.FinishedAt.Sub(sum.StartedAt)).
			Msg("match: run finished")
		return sum, err
	}

	loaded, err := s.Reload(ctx)
	if err != nil {
		return finish(err)
	}
	sum.PoolSize = loaded.PoolSize
	cur, err := s.current()
	if err != nil {
		return finish(err)
	}

	tx := repokit.WithBeginHooks(s.DB, repokit.StatementTimeout(s.Cfg.TxTimeout))
	after := domain.AfterKey{}
	for {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		page, next, err := s.Binder.Bind(s.DB).ListPending(ctx, after, s.Cfg.PageSize)
		if err != nil {
			metrics.IncRunPage("error")
			return finish(err)
		}
		if len(page) == 0 {
			return finish(nil)
		}

		if err := s.runPage(ctx, tx, cur.m, batchID, page, &sum); err != nil {
			metrics.IncRunPage("error")
			return finish(err)
		}
		metrics.IncRunPage("ok")
		sum.Pages++

		l.Debug().Int("page", sum.Pages).Int("records", len(page)).Str("after", next.RecordID).Msg("match: page done")
		if len(page) < s.Cfg.PageSize {
			return finish(nil)
		}
		after = next
	}
}

func (s *Service) runPage(
	ctx context.Context,
	tx repokit.TxRunner,
	m *matcher.Matcher,
	batchID string,
	page []domain.RecordInput,
	sum *domain.RunSummary,
) error {
	outs, err := s.resolveAll(ctx, m, page)
	if err != nil {
		return err
	}

	at := s.now().UTC()
	writes := make([]domain.OutcomeWrite, 0, len(outs))
	var reviews []domain.ReviewItem
	for _, o := range outs {
		sum.Records++
		switch o.Status {
		case matcher.StatusMatched:
			sum.Matched++
			sum.ByTier[string(o.Tier)]++
		case matcher.StatusNoMatch:
			sum.NoMatch++
		case matcher.StatusAmbiguous:
			sum.Ambiguous++
		}
		writes = append(writes, outcomeWrite(o, batchID, at))
		if o.NeedsReview() {
			reviews = append(reviews, reviewItem(o, batchID, at))
		}
	}
	sum.Reviews += len(reviews)

	if s.Cfg.DryRun {
		return nil
	}
	if err := repokit.WithTx(ctx, tx, s.Binder, func(r domain.StorageRepo) error {
		if err := r.WriteOutcomes(ctx, writes); err != nil {
			return err
		}
		return r.EnqueueReviews(ctx, reviews)
	}); err != nil {
		return err
	}

	if s.Cfg.Audit && s.Audit != nil {
		ds := make([]domain.Decision, len(outs))
		for i, o := range outs {
			ds[i] = decision(s.newID(), o, batchID, at)
		}
		// the audit trail is best effort; outcomes are already committed
		if err := s.Audit.Record(ctx, ds); err != nil {
			logger.C(ctx).Warn().Err(err).Int("decisions", len(ds)).Msg("match: audit append failed")
			metrics.IncRunPage("audit_failed")
		} else {
			sum.Audited += len(ds)
		}
	}
	return nil
}
