// Package fleetsim is the simulation core's programmatic entry point: load
// a scenario directory, run it to its horizon, and return the resulting
// metrics. cmd/fleetsim and internal/sweep perform the same load-and-run
// steps themselves rather than calling this function; any other Go program
// that wants to embed the simulator calls it directly instead of shelling
// out to the CLI.
package fleetsim

import (
	"context"
	"fmt"

	"github.com/scottdwilson/fleetsim/internal/metrics"
	"github.com/scottdwilson/fleetsim/internal/scenario"
	"github.com/scottdwilson/fleetsim/internal/scheduler"
)

// Run loads scenarioDir, simulates it for horizonTicks with the given fleet
// size and seed, and returns the final metrics snapshot. The result is a
// pure function of its four arguments: identical inputs always produce a
// byte-identical snapshot.
func Run(scenarioDir string, seed int64, robots, horizonTicks int) (metrics.Snapshot, error) {
	scn, err := scenario.Load(scenarioDir)
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("fleetsim: %w", err)
	}

	sched, err := scheduler.New(scheduler.Config{
		Scenario: scn,
		Seed:     seed,
		Robots:   robots,
		Horizon:  horizonTicks,
	})
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("fleetsim: %w", err)
	}

	snap, err := sched.Run(context.Background())
	if err != nil {
		return metrics.Snapshot{}, fmt.Errorf("fleetsim: %w", err)
	}
	return snap, nil
}
