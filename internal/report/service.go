// Package report orchestrates withdrawal report generation: it validates the
// request, fetches each selected pool's withdrawals through the Explorer port,
// aggregates them, and applies the partial-failure policy (a pool that fails
// after retries is flagged, not silently omitted).
package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/intelligenceonchain/tornadoview/internal/pkg/logger"
	"github.com/intelligenceonchain/tornadoview/internal/pkg/validator"
	"github.com/intelligenceonchain/tornadoview/internal/withdrawal"
)

var (
	// ErrAuth indicates the explorer rejected the configured API key.
	// It is fatal for the whole run and never retried.
	ErrAuth = errors.New("api key rejected by the explorer")

	// ErrRateLimited indicates the explorer kept throttling requests after
	// the bounded retries were exhausted.
	ErrRateLimited = errors.New("explorer rate limit exceeded")

	// ErrNetwork indicates the explorer stayed unreachable after the bounded
	// retries were exhausted.
	ErrNetwork = errors.New("explorer unreachable")

	// ErrInvalidRange indicates a malformed date range. It is reported before
	// any network call.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrAllPoolsFailed indicates that no selected pool could be fetched.
	ErrAllPoolsFailed = errors.New("all pool fetches failed")
)

// Explorer is the port used to fetch withdrawal events from a block explorer.
type Explorer interface {
	// FetchWithdrawals returns every withdrawal from the given pool contract
	// whose timestamp falls inside rng. Implementations fail with ErrAuth,
	// ErrRateLimited, or ErrNetwork from this package.
	FetchWithdrawals(ctx context.Context, pool withdrawal.Pool, rng TimeRange) ([]withdrawal.Event, error)
}

// Request describes one report run.
type Request struct {
	Pools []withdrawal.Pool `validate:"required,min=1"` // pools to query, ascending denomination
	Range TimeRange         // queried time window
}

// PoolFailure records a pool whose fetch failed after exhausting retries.
type PoolFailure struct {
	Pool   withdrawal.Pool
	Reason string // plain-language explanation for the user
	Err    error
}

// Report is the aggregated outcome of one run. Pools lists only the pools
// that were fetched successfully; Failures carries the rest.
type Report struct {
	RunID     string
	Range     TimeRange
	Pools     []withdrawal.Pool
	Summaries []withdrawal.RecipientSummary
	Failures  []PoolFailure
}

// Service generates withdrawal reports.
type Service interface {
	// Generate runs one report. It fails fast on validation errors and on
	// authentication failures; other per-pool failures are recorded in the
	// returned Report and only escalate to ErrAllPoolsFailed when no pool
	// could be fetched.
	Generate(ctx context.Context, req Request) (Report, error)
}

// service is the internal implementation of the Service interface.
type service struct {
	explorer Explorer
}

// Compile-time check to ensure *service implements the Service interface.
var _ Service = (*service)(nil)

// New creates a report service backed by the given explorer.
func New(explorer Explorer) *service {
	return &service{explorer: explorer}
}

// Generate implements the Service interface.
func (s *service) Generate(ctx context.Context, req Request) (Report, error) {
	if err := validator.Validate(req); err != nil {
		return Report{}, err
	}

	if !req.Range.Start.IsZero() && !req.Range.End.IsZero() && req.Range.Start.After(req.Range.End) {
		return Report{}, fmt.Errorf("%w: start is after end", ErrInvalidRange)
	}

	rep := Report{
		RunID: uuid.NewString(),
		Range: req.Range,
	}

	eventsByPool := make(map[string][]withdrawal.Event, len(req.Pools))
	for _, pool := range req.Pools {
		logger.Info(ctx, "fetching pool withdrawals",
			"run_id", rep.RunID,
			"pool", pool.ID,
			"range", req.Range.String(),
		)

		events, err := s.explorer.FetchWithdrawals(ctx, pool, req.Range)
		if err != nil {
			if errors.Is(err, ErrAuth) {
				return Report{}, fmt.Errorf("fetching %s pool: %w", pool.Name, err)
			}

			logger.Error(ctx, "pool fetch failed",
				"run_id", rep.RunID,
				"pool", pool.ID,
				"error", err,
			)
			rep.Failures = append(rep.Failures, PoolFailure{
				Pool:   pool,
				Reason: failureReason(err),
				Err:    err,
			})
			continue
		}

		logger.Info(ctx, "pool withdrawals fetched",
			"run_id", rep.RunID,
			"pool", pool.ID,
			"events", len(events),
		)

		rep.Pools = append(rep.Pools, pool)
		eventsByPool[pool.ID] = events
	}

	if len(rep.Pools) == 0 {
		return rep, fmt.Errorf("%w: %d of %d pools", ErrAllPoolsFailed, len(rep.Failures), len(req.Pools))
	}

	rep.Summaries = withdrawal.Aggregate(eventsByPool, rep.Pools)
	return rep, nil
}

// failureReason translates a fetch error into the plain language shown to the
// user next to the flagged pool.
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrRateLimited):
		return "rate limited by the explorer; retries exhausted"
	case errors.Is(err, ErrNetwork):
		return "could not reach the explorer; retries exhausted"
	case errors.Is(err, context.Canceled):
		return "fetch interrupted before completion"
	default:
		return err.Error()
	}
}
