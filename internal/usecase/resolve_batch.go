package usecase

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Nina181/kcat-flux-relationship/internal/domain"
	"github.com/Nina181/kcat-flux-relationship/internal/ports"
)

// ProgressFunc is called after every directory lookup.
type ProgressFunc func(done, total int, id domain.Identifier)

// ResolveBatch resolves identifiers to lineages: cache first, then the directory,
// one lookup at a time. A failing identifier never aborts the batch.
type ResolveBatch struct {
	cache   ports.LineageCache
	client  ports.DirectoryClient
	reports ports.ReportStore

	logger   *slog.Logger
	progress ProgressFunc
	now      func() time.Time
	newID    func() string
}

type ResolveOption func(*ResolveBatch)

// WithReportStore persists every finished report.
func WithReportStore(s ports.ReportStore) ResolveOption {
	return func(uc *ResolveBatch) { uc.reports = s }
}

func WithLogger(l *slog.Logger) ResolveOption {
	return func(uc *ResolveBatch) {
		if l != nil {
			uc.logger = l
		}
	}
}

func WithProgress(fn ProgressFunc) ResolveOption {
	return func(uc *ResolveBatch) { uc.progress = fn }
}

// WithClock overrides time and report ids (useful for tests).
func WithClock(now func() time.Time, newID func() string) ResolveOption {
	return func(uc *ResolveBatch) {
		if now != nil {
			uc.now = now
		}
		if newID != nil {
			uc.newID = newID
		}
	}
}

func NewResolveBatch(cache ports.LineageCache, client ports.DirectoryClient, opts ...ResolveOption) *ResolveBatch {
	uc := &ResolveBatch{
		cache:  cache,
		client: client,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute returns one result per distinct input string; inputs that parse to
// the same identifier share a single lookup. Cancellation is checked between
// lookups; identifiers not reached are reported as transient failures and
// ctx.Err() is returned alongside the partial report.
func (uc *ResolveBatch) Execute(ctx context.Context, source string, raw []string) (domain.ResolutionReport, error) {
	report := domain.ResolutionReport{
		ID:        uc.newID(),
		Source:    source,
		StartedAt: uc.now(),
		Results:   make(map[domain.Identifier]domain.ResolutionResult, len(raw)),
	}

	if uc.cache == nil || uc.client == nil {
		report.EndedAt = uc.now()
		return report, &domain.OpError{
			Op:   "resolve.batch",
			Kind: domain.KindInvalidConfig,
			Err:  domain.ErrInvalidConfig,
		}
	}

	// Lookups are keyed by the parsed identifier; results by the input string.
	misses := make([]domain.Identifier, 0, len(raw))
	inputs := make(map[domain.Identifier][]domain.Identifier, len(raw))
	byID := make(map[domain.Identifier]domain.ResolutionResult, len(raw))
	for _, r := range raw {
		id, err := domain.ParseIdentifier(r)
		if err != nil {
			report.Results[domain.Identifier(r)] = domain.ResolutionResult{
				ID:      domain.Identifier(r),
				Failure: domain.NewFailure(err),
			}
			continue
		}
		key := domain.Identifier(r)
		if _, dup := report.Results[key]; dup {
			continue
		}
		report.Results[key] = domain.ResolutionResult{ID: key}
		if _, seen := inputs[id]; seen {
			inputs[id] = append(inputs[id], key)
			continue
		}
		inputs[id] = []domain.Identifier{key}

		if lineage, ok := uc.cache.Get(id); ok {
			byID[id] = domain.ResolutionResult{ID: id, Lineage: lineage, FromCache: true}
			continue
		}
		misses = append(misses, id)
	}

	uc.logger.Info("resolve.batch.start",
		"report_id", report.ID,
		"identifiers", len(inputs),
		"cache_hits", len(inputs)-len(misses),
		"lookups", len(misses),
	)

	var runErr error
	for i, id := range misses {
		if err := ctx.Err(); err != nil {
			for _, rest := range misses[i:] {
				byID[rest] = domain.ResolutionResult{
					ID: rest,
					Failure: &domain.ResolutionFailure{
						Kind:    domain.FailureTransient,
						Message: "batch cancelled before lookup: " + err.Error(),
					},
				}
			}
			runErr = err
			break
		}

		byID[id] = uc.resolveOne(ctx, id)

		if uc.progress != nil {
			uc.progress(i+1, len(misses), id)
		}
	}

	// Cancellation during the final lookup leaves no later check to notice it.
	if runErr == nil {
		runErr = ctx.Err()
	}

	for id, keys := range inputs {
		res := byID[id]
		for i, key := range keys {
			r := res
			r.ID = key
			if i > 0 {
				r.Lineage = res.Lineage.Clone()
			}
			report.Results[key] = r
		}
	}

	report.EndedAt = uc.now()

	failures := report.CountByFailure()
	uc.logger.Info("resolve.batch.done",
		"report_id", report.ID,
		"resolved", len(report.Resolved()),
		"not_found", failures[domain.FailureNotFound],
		"invalid", failures[domain.FailureInvalid],
		"transient", failures[domain.FailureTransient],
		"duration_ms", report.EndedAt.Sub(report.StartedAt).Milliseconds(),
	)

	if uc.reports != nil {
		if _, err := uc.reports.SaveReport(report); err != nil && runErr == nil {
			runErr = err
		}
	}

	return report, runErr
}

func (uc *ResolveBatch) resolveOne(ctx context.Context, id domain.Identifier) domain.ResolutionResult {
	lineage, attempts, err := uc.client.Resolve(ctx, id)
	if err == nil && len(lineage) == 0 {
		err = &domain.OpError{Op: "resolve.batch", Kind: domain.KindNotFound, Path: string(id), Err: domain.ErrNotFound}
	}

	res := domain.ResolutionResult{ID: id, Attempts: attempts}
	if err != nil {
		res.Failure = domain.NewFailure(err)
		uc.logger.Warn("resolve.lookup.failed",
			"id", string(id),
			"kind", string(res.Failure.Kind),
			"attempts", attempts,
			"error", err.Error(),
		)
		return res
	}

	// Written only once the call has fully completed.
	uc.cache.Put(id, lineage)
	res.Lineage = lineage
	return res
}
