// Package sweep runs many independent scenario/seed combinations concurrently,
// grounded on the tabular example's errgroup.WithContext fan-out in its
// fastview client (one errgroup per logical unit of concurrent work, each
// goroutine's error surfaced through group.Wait, the group's context
// cancelled the instant any one member fails). Each run here is already a
// pure, single-threaded simulation per the core's own determinism contract;
// sweep only parallelizes across runs, never within one.
package sweep

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/scottdwilson/fleetsim/internal/metrics"
	"github.com/scottdwilson/fleetsim/internal/scenario"
	"github.com/scottdwilson/fleetsim/internal/scheduler"
)

// Case is one scenario/seed/fleet-size combination to run.
type Case struct {
	ScenarioDir string
	Seed        int64
	Robots      int
	Horizon     int
}

// Result pairs a case with its outcome. RunID is a uuid per run, matching
// the teacher's uuid.New().String() convention for identifying concurrent
// units of work, here used to correlate a result back to its case when
// results are collected out of submission order.
type Result struct {
	RunID string
	Case  Case
	Snap  metrics.Snapshot
	Err   error
}

// Run executes cases concurrently, bounded by maxParallel simultaneous
// scenario runs, and returns one Result per case. It stops launching new
// work once ctx is cancelled, but always returns a Result for every case
// already in flight or completed rather than dropping partial output,
// since a sweep's value is in the results it did gather.
func Run(ctx context.Context, cases []Case, maxParallel int) ([]Result, error) {
	if maxParallel <= 0 {
		maxParallel = 1
	}

	results := make([]Result, len(cases))
	sem := make(chan struct{}, maxParallel)

	group, groupCtx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for i, c := range cases {
		i, c := i, c
		group.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
			defer func() { <-sem }()

			res := runOne(groupCtx, c)

			mu.Lock()
			results[i] = res
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return results, fmt.Errorf("sweep: %w", err)
	}
	return results, nil
}

// runOne loads and runs a single case; scenario load and scheduler errors
// are captured in the Result rather than aborting the sweep, so one bad
// scenario directory does not cost the rest of the batch its results. ctx
// is the batch's group context; since no case returns an error to the
// group, a run already in flight stops between ticks only when the caller
// cancels.
func runOne(ctx context.Context, c Case) Result {
	runID := uuid.New().String()

	scn, err := scenario.Load(c.ScenarioDir)
	if err != nil {
		return Result{RunID: runID, Case: c, Err: fmt.Errorf("sweep: loading %s: %w", c.ScenarioDir, err)}
	}

	sched, err := scheduler.New(scheduler.Config{
		Scenario: scn,
		Seed:     c.Seed,
		Robots:   c.Robots,
		Horizon:  c.Horizon,
	})
	if err != nil {
		return Result{RunID: runID, Case: c, Err: fmt.Errorf("sweep: building scheduler for %s: %w", c.ScenarioDir, err)}
	}

	snap, err := sched.Run(ctx)
	if err != nil {
		return Result{RunID: runID, Case: c, Snap: snap, Err: fmt.Errorf("sweep: running %s: %w", c.ScenarioDir, err)}
	}
	return Result{RunID: runID, Case: c, Snap: snap}
}
