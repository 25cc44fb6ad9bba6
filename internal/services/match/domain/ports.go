package domain

import (
	"context"

	"outreach/internal/core/matcher"
)

// ResolverPort resolves records against the loaded company pool
type ResolverPort interface {
	Resolve(ctx context.Context, in RecordInput) (OutcomeView, error)
	ResolveBatch(ctx context.Context, in []RecordInput) ([]OutcomeView, error)
	Stats(ctx context.Context) (StatsView, error)
	Reload(ctx context.Context) (ReloadResult, error)
}

// RunnerPort drains the pending records table in one batch run
type RunnerPort interface {
	Run(ctx context.Context) (RunSummary, error)
}

// StorageRepo is the Postgres side of the match service
type StorageRepo interface {
	ListCompanies(ctx context.Context) ([]matcher.CompanyCandidate, error)
	ListPending(ctx context.Context, after AfterKey, limit int) ([]RecordInput, AfterKey, error)
	WriteOutcomes(ctx context.Context, xs []OutcomeWrite) error
	EnqueueReviews(ctx context.Context, xs []ReviewItem) error
}

// AuditPort records decisions for downstream reporting
type AuditPort interface {
	Record(ctx context.Context, xs []Decision) error
}
