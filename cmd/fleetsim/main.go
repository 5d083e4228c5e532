// Command fleetsim is a cobra CLI shell over the simulation core, grounded
// on robot_cli.go's command-tree structure: a root command plus one
// subcommand per operator action, flags parsed by cobra/pflag rather than
// hand-rolled os.Args indexing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/scottdwilson/fleetsim/internal/config"
	"github.com/scottdwilson/fleetsim/internal/fleet"
	"github.com/scottdwilson/fleetsim/internal/render"
	"github.com/scottdwilson/fleetsim/internal/scenario"
	"github.com/scottdwilson/fleetsim/internal/scheduler"
	"github.com/scottdwilson/fleetsim/internal/sweep"
)

// signalContext returns a context cancelled on SIGINT/SIGTERM, so a run or
// sweep in flight stops between ticks instead of running to the horizon
// regardless of an operator's Ctrl-C.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

var rootCmd = &cobra.Command{
	Use:   "fleetsim",
	Short: "Deterministic discrete-event simulator for a warehouse robot fleet",
	Long: `fleetsim simulates a fleet of mobile warehouse robots fetching and
returning shelves against a fixed grid layout, under a nearest-first
dispatch policy and an A*-routed, reservation-table-arbitrated tick loop.`,
}

func main() {
	rootCmd.AddCommand(runCmd, sweepCmd, inspectCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	flagScenario string
	flagSeed     int64
	flagRobots   int64
	flagHorizon  int64
	flagWatch    bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single scenario to its horizon and write metrics.json",
	RunE: func(cmd *cobra.Command, args []string) error {
		var seedPtr, robotsPtr, horizonPtr *int64
		if cmd.Flags().Changed("seed") {
			seedPtr = &flagSeed
		}
		if cmd.Flags().Changed("robots") {
			robotsPtr = &flagRobots
		}
		if cmd.Flags().Changed("horizon") {
			horizonPtr = &flagHorizon
		}
		cfg, err := config.Load(flagScenario, seedPtr, robotsPtr, horizonPtr)
		if err != nil {
			return err
		}

		scn, err := scenario.Load(cfg.ScenarioDir)
		if err != nil {
			return err
		}
		sched, err := scheduler.New(scheduler.Config{
			Scenario: scn,
			Seed:     cfg.Seed,
			Robots:   cfg.Robots,
			Horizon:  cfg.Horizon,
		})
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()
		snap, err := sched.RunObserved(ctx, watchObserver(sched))
		if err != nil {
			return err
		}

		if err := scenario.WriteMetrics(cfg.ScenarioDir, snap); err != nil {
			return err
		}
		fmt.Printf("completed: orders_completed=%d orders_pending=%d deadlock_ticks=%d\n",
			snap.OrdersCompleted, snap.OrdersPending, snap.DeadlockTicks)
		return nil
	},
}

// watchObserver returns a per-tick render callback when --watch is set, or
// nil otherwise, mirroring robot_cli's own opt-in "view" command rather
// than always paying the render cost.
func watchObserver(sched *scheduler.Scheduler) func(tick int, robots []*fleet.Robot) {
	if !flagWatch {
		return nil
	}
	render.ClearScreen()
	return func(tick int, robots []*fleet.Robot) {
		views := make([]render.Robot, len(robots))
		for i, r := range robots {
			views[i] = render.Robot{ID: r.ID, Cell: r.Current, Phase: r.Phase}
		}
		fmt.Print("\033[H")
		fmt.Printf("tick %d\n", tick)
		fmt.Println(render.Render(sched.Grid(), views))
		time.Sleep(20 * time.Millisecond)
	}
}

var (
	flagSweepDirs    []string
	flagSweepSeeds   []int64
	flagSweepRobots  int64
	flagSweepHorizon int64
	flagSweepWorkers int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run every scenario directory against every seed concurrently",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cases []sweep.Case
		for _, dir := range flagSweepDirs {
			for _, seed := range flagSweepSeeds {
				cases = append(cases, sweep.Case{
					ScenarioDir: dir,
					Seed:        seed,
					Robots:      int(flagSweepRobots),
					Horizon:     int(flagSweepHorizon),
				})
			}
		}

		ctx, cancel := signalContext()
		defer cancel()
		results, err := sweep.Run(ctx, cases, flagSweepWorkers)
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Err != nil {
				fmt.Printf("%s %s seed=%d: error: %v\n", r.RunID, r.Case.ScenarioDir, r.Case.Seed, r.Err)
				continue
			}
			fmt.Printf("%s %s seed=%d: completed=%d pending=%d deadlock_ticks=%d\n",
				r.RunID, r.Case.ScenarioDir, r.Case.Seed, r.Snap.OrdersCompleted, r.Snap.OrdersPending, r.Snap.DeadlockTicks)
		}
		return nil
	},
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load a scenario directory and report its dimensions without simulating",
	RunE: func(cmd *cobra.Command, args []string) error {
		scn, err := scenario.Load(flagScenario)
		if err != nil {
			return err
		}
		fmt.Printf("grid: %dx%d\n", scn.Grid.Width(), scn.Grid.Height())
		fmt.Printf("shelves: %d\n", len(scn.Shelves))
		fmt.Printf("stations: %d\n", len(scn.Stations))
		fmt.Printf("spawn points: %d\n", len(scn.Spawn))
		fmt.Printf("orders: %d\n", len(scn.Orders))
		return nil
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a default scenario.yaml sidecar into a scenario directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.WriteDefault(flagScenario); err != nil {
			return err
		}
		fmt.Printf("wrote %s/scenario.yaml\n", flagScenario)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initConfigCmd)
	initConfigCmd.Flags().StringVar(&flagScenario, "scenario", "", "scenario directory to scaffold (required)")
	_ = initConfigCmd.MarkFlagRequired("scenario")

	runCmd.Flags().StringVar(&flagScenario, "scenario", "", "path to the scenario directory (required)")
	runCmd.Flags().Int64Var(&flagSeed, "seed", 0, "determinism seed (default from scenario.yaml or 42)")
	runCmd.Flags().Int64Var(&flagRobots, "robots", 0, "fleet size (default from scenario.yaml or 5)")
	runCmd.Flags().Int64Var(&flagHorizon, "horizon", 0, "tick horizon (default from scenario.yaml or 1000)")
	runCmd.Flags().BoolVar(&flagWatch, "watch", false, "render an ASCII view of the fleet as it runs")
	_ = runCmd.MarkFlagRequired("scenario")

	sweepCmd.Flags().StringSliceVar(&flagSweepDirs, "scenario", nil, "scenario directory (repeatable)")
	sweepCmd.Flags().Int64SliceVar(&flagSweepSeeds, "seed", []int64{42}, "seed to sweep (repeatable)")
	sweepCmd.Flags().Int64Var(&flagSweepRobots, "robots", 5, "fleet size")
	sweepCmd.Flags().Int64Var(&flagSweepHorizon, "horizon", 1000, "tick horizon")
	sweepCmd.Flags().IntVar(&flagSweepWorkers, "parallel", 4, "maximum concurrent scenario runs")
	_ = sweepCmd.MarkFlagRequired("scenario")

	inspectCmd.Flags().StringVar(&flagScenario, "scenario", "", "path to the scenario directory (required)")
	_ = inspectCmd.MarkFlagRequired("scenario")
}
