// Fieldwise - Crop Suitability Ranking and Fertilizer Blend Optimization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldwise

package optimizer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fieldwise/internal/metrics"
)

// Pool runs blend solves on a bounded set of workers, separate from
// request-dispatch goroutines, so a slow solve cannot block unrelated
// work. Every solve honors a timeout; on timeout the caller receives
// ErrSolveTimeout, never a partial solution.
type Pool struct {
	solver *Solver
	logger zerolog.Logger

	// sem bounds concurrent solves.
	sem chan struct{}

	timeout time.Duration

	closeMu sync.Mutex
	closed  bool
	done    chan struct{}
}

// NewPool creates a solve pool around a solver.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPool(solver *Solver, logger zerolog.Logger) *Pool {
	return &Pool{
		solver:  solver,
		logger:  logger.With().Str("component", "optimizer").Logger(),
		sem:     make(chan struct{}, solver.cfg.Workers),
		timeout: solver.cfg.SolveTimeout,
		done:    make(chan struct{}),
	}
}

// Close rejects further submissions. In-flight solves finish on their own.
func (p *Pool) Close() {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.done)
	}
}

// solveOutcome carries a finished solve from its worker goroutine.
type solveOutcome struct {
	sol *BlendSolution
	err error
}

// Solve submits a request and blocks until it completes, times out, or
// the context is canceled.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (p *Pool) Solve(ctx context.Context, req BlendRequest) (*BlendSolution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	metrics.SolveQueueDepth.Inc()
	acquired, err := p.acquire(ctx)
	metrics.SolveQueueDepth.Dec()
	if err != nil {
		return nil, err
	}
	defer func() {
		if acquired {
			<-p.sem
		}
	}()

	start := time.Now()
	logger := p.logger.With().Str("request_id", req.RequestID).Logger()

	ch := make(chan solveOutcome, 1)
	go func() {
		sol, solveErr := p.solver.Solve(req)
		ch <- solveOutcome{sol: sol, err: solveErr}
	}()

	select {
	case out := <-ch:
		p.record(logger, out, start)
		return out.sol, out.err
	case <-ctx.Done():
		// The worker goroutine finishes in the background and its result
		// is discarded; the caller never sees an unfinished solution.
		metrics.SolvesTotal.WithLabelValues("timeout").Inc()
		logger.Warn().
			Dur("elapsed", time.Since(start)).
			Msg("blend solve timed out")
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrSolveTimeout
		}
		return nil, ctx.Err()
	}
}

// acquire waits for a worker slot.
func (p *Pool) acquire(ctx context.Context) (bool, error) {
	select {
	case <-p.done:
		return false, ErrPoolClosed
	default:
	}

	select {
	case p.sem <- struct{}{}:
		return true, nil
	case <-p.done:
		return false, ErrPoolClosed
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return false, ErrSolveTimeout
		}
		return false, ctx.Err()
	}
}

// record emits metrics and logs for a finished solve.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *Pool) record(logger zerolog.Logger, out solveOutcome, start time.Time) {
	metrics.SolveDuration.Observe(time.Since(start).Seconds())

	var infeasible *InfeasibleError
	switch {
	case errors.As(out.err, &infeasible):
		metrics.SolvesTotal.WithLabelValues("infeasible").Inc()
		logger.Info().
			Str("binding_constraint", infeasible.Binding).
			Msg("blend infeasible")
	case out.err != nil:
		metrics.SolvesTotal.WithLabelValues("error").Inc()
		logger.Error().Err(out.err).Msg("blend solve failed")
	default:
		metrics.SolvesTotal.WithLabelValues("feasible").Inc()
		logger.Debug().
			Float64("total_cost", out.sol.TotalCost).
			Msg("blend solved")
	}
}
