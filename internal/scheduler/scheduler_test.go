package scheduler_test

import (
	"context"
	"testing"

	"github.com/scottdwilson/fleetsim/internal/fleet"
	"github.com/scottdwilson/fleetsim/internal/grid"
	"github.com/scottdwilson/fleetsim/internal/order"
	"github.com/scottdwilson/fleetsim/internal/scenario"
	"github.com/scottdwilson/fleetsim/internal/scheduler"
)

func emptyGrid(t *testing.T, width, height int) *grid.Grid {
	t.Helper()
	cells := make([][]grid.CellType, height)
	for r := range cells {
		cells[r] = make([]grid.CellType, width)
	}
	g, err := grid.New(cells)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	return g
}

// TestSingleRobotSingleOrder mirrors the spec's S1 scenario: one robot on an
// empty 10x10 grid fetches one shelf and delivers it to one station. It
// should complete well inside the horizon and travel the literal FSM
// distance: start -> shelf anchor -> station -> shelf anchor again.
func TestSingleRobotSingleOrder(t *testing.T) {
	g := emptyGrid(t, 10, 10)
	scn := &scenario.Scenario{
		Grid:     g,
		Shelves:  []scenario.Shelf{{ID: 1, Row: 2, Col: 2, Anchor: grid.Cell{2, 2}}},
		Stations: []scenario.Station{{ID: 1, Row: 9, Col: 5, Cell: grid.Cell{9, 5}}},
		Spawn:    []scenario.SpawnPoint{{Row: 0, Col: 0}},
		Orders:   []order.Order{{ID: 1, CreationTick: 0, ShelfID: 1, StationID: 1}},
	}

	sched, err := scheduler.New(scheduler.Config{Scenario: scn, Seed: 1, Robots: 1, Horizon: 40})
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	snap, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("sched.Run: %v", err)
	}

	if snap.OrdersCompleted != 1 {
		t.Fatalf("OrdersCompleted = %d, want 1", snap.OrdersCompleted)
	}
	// start->shelf (4) + shelf->station (10) + station->shelf (10): the
	// literal state-machine distance, walked under an empty-grid Manhattan
	// metric with no contention.
	const wantDistance = 24
	if snap.TotalDistance != wantDistance {
		t.Fatalf("TotalDistance = %d, want %d", snap.TotalDistance, wantDistance)
	}
}

// TestHeadOnCorridorAvoidsCollision walks two robots toward each other down
// a single-width corridor and asserts neither ever shares a cell with the
// other at the same tick (the vertex-conflict invariant) for the whole run.
func TestHeadOnCorridorAvoidsCollision(t *testing.T) {
	g := emptyGrid(t, 5, 1)
	// Robot 0 spawns at col0 and is nearest to shelf1 (col1), whose station
	// sits all the way at col4; robot 1 spawns at col4 and is nearest to
	// shelf2 (col3), whose station sits all the way at col0. Both robots
	// therefore cross the full width of the shared corridor in opposite
	// directions.
	scn := &scenario.Scenario{
		Grid:     g,
		Shelves:  []scenario.Shelf{{ID: 1, Row: 0, Col: 1, Anchor: grid.Cell{0, 1}}, {ID: 2, Row: 0, Col: 3, Anchor: grid.Cell{0, 3}}},
		Stations: []scenario.Station{{ID: 1, Row: 0, Col: 4, Cell: grid.Cell{0, 4}}, {ID: 2, Row: 0, Col: 0, Cell: grid.Cell{0, 0}}},
		Spawn:    []scenario.SpawnPoint{{Row: 0, Col: 0}, {Row: 0, Col: 4}},
		Orders: []order.Order{
			{ID: 1, CreationTick: 0, ShelfID: 1, StationID: 1},
			{ID: 2, CreationTick: 0, ShelfID: 2, StationID: 2},
		},
	}
	sched, err := scheduler.New(scheduler.Config{Scenario: scn, Seed: 1, Robots: 2, Horizon: 50})
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}

	_, err = sched.RunObserved(context.Background(), func(tick int, robots []*fleet.Robot) {
		if len(robots) == 2 && robots[0].Current == robots[1].Current {
			t.Fatalf("tick %d: both robots occupy %v", tick, robots[0].Current)
		}
	})
	if err != nil {
		t.Fatalf("sched.RunObserved: %v", err)
	}
}

// TestUnreachableOrderStaysPending exercises an order whose shelf is
// enclosed by obstacles: the dispatcher should count the failed attempt and
// leave the order in the queue rather than crash or silently drop it.
func TestUnreachableOrderStaysPending(t *testing.T) {
	cells := [][]grid.CellType{
		{grid.Free, grid.Obstacle, grid.Free},
		{grid.Free, grid.Obstacle, grid.Free},
		{grid.Free, grid.Obstacle, grid.Free},
	}
	cells[1][2] = grid.Shelf
	g, err := grid.New(cells)
	if err != nil {
		t.Fatalf("grid.New: %v", err)
	}
	scn := &scenario.Scenario{
		Grid:     g,
		Shelves:  []scenario.Shelf{{ID: 1, Row: 1, Col: 2, Anchor: grid.Cell{1, 2}}},
		Stations: []scenario.Station{{ID: 1, Row: 2, Col: 2, Cell: grid.Cell{2, 2}}},
		Spawn:    []scenario.SpawnPoint{{Row: 0, Col: 0}},
		Orders:   []order.Order{{ID: 1, CreationTick: 0, ShelfID: 1, StationID: 1}},
	}
	sched, err := scheduler.New(scheduler.Config{Scenario: scn, Seed: 1, Robots: 1, Horizon: 20})
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	snap, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("sched.Run: %v", err)
	}

	if snap.OrdersCompleted != 0 {
		t.Fatalf("OrdersCompleted = %d, want 0 for an unreachable shelf", snap.OrdersCompleted)
	}
	if snap.OrdersPending != 1 {
		t.Fatalf("OrdersPending = %d, want 1", snap.OrdersPending)
	}
	if snap.UnreachableAttempts == 0 {
		t.Fatal("expected at least one recorded unreachable dispatch attempt")
	}
}

// TestDeterminismAcrossRepeatedRuns is the byte-for-byte reproducibility
// property the spec requires: identical inputs must yield identical output.
func TestDeterminismAcrossRepeatedRuns(t *testing.T) {
	buildScenario := func() *scenario.Scenario {
		return &scenario.Scenario{
			Grid:     emptyGrid(t, 8, 8),
			Shelves:  []scenario.Shelf{{ID: 1, Row: 3, Col: 3, Anchor: grid.Cell{3, 3}}},
			Stations: []scenario.Station{{ID: 1, Row: 7, Col: 7, Cell: grid.Cell{7, 7}}},
			Spawn:    []scenario.SpawnPoint{{Row: 0, Col: 0}, {Row: 0, Col: 7}, {Row: 7, Col: 0}},
			Orders: []order.Order{
				{ID: 1, CreationTick: 0, ShelfID: 1, StationID: 1},
				{ID: 2, CreationTick: 2, ShelfID: 1, StationID: 1},
			},
		}
	}

	run := func() (completed, pending, distance int) {
		sched, err := scheduler.New(scheduler.Config{Scenario: buildScenario(), Seed: 7, Robots: 2, Horizon: 60})
		if err != nil {
			t.Fatalf("scheduler.New: %v", err)
		}
		snap, err := sched.Run(context.Background())
		if err != nil {
			t.Fatalf("sched.Run: %v", err)
		}
		return snap.OrdersCompleted, snap.OrdersPending, snap.TotalDistance
	}

	c1, p1, d1 := run()
	for i := 0; i < 3; i++ {
		c2, p2, d2 := run()
		if c1 != c2 || p1 != p2 || d1 != d2 {
			t.Fatalf("run %d diverged: (%d,%d,%d) != (%d,%d,%d)", i, c1, p1, d1, c2, p2, d2)
		}
	}
}

// TestOrderConservation checks that every order submitted ends up either
// completed or still pending at the horizon (none are silently lost), which
// is this implementation's resolution of the spec's unreachable-order
// conservation property: a perpetually unreachable order remains pending
// rather than being tracked as a separate third bucket.
func TestOrderConservation(t *testing.T) {
	scn := &scenario.Scenario{
		Grid:     emptyGrid(t, 6, 6),
		Shelves:  []scenario.Shelf{{ID: 1, Row: 1, Col: 1, Anchor: grid.Cell{1, 1}}},
		Stations: []scenario.Station{{ID: 1, Row: 4, Col: 4, Cell: grid.Cell{4, 4}}},
		Spawn:    []scenario.SpawnPoint{{Row: 0, Col: 0}},
		Orders: []order.Order{
			{ID: 1, CreationTick: 0, ShelfID: 1, StationID: 1},
			{ID: 2, CreationTick: 1, ShelfID: 1, StationID: 1},
			{ID: 3, CreationTick: 2, ShelfID: 1, StationID: 1},
		},
	}
	sched, err := scheduler.New(scheduler.Config{Scenario: scn, Seed: 3, Robots: 1, Horizon: 30})
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}
	snap, err := sched.Run(context.Background())
	if err != nil {
		t.Fatalf("sched.Run: %v", err)
	}

	if got, want := snap.OrdersCompleted+snap.OrdersPending, 3; got != want {
		t.Fatalf("orders_completed + orders_pending = %d, want %d", got, want)
	}
}

// TestBurstOrdersFiveRobots mirrors the spec's S4 scenario: a burst of 100
// orders dispatched across 5 robots on a 30x30 empty grid over a long
// horizon. It is the congestion case most likely to expose a vertex
// conflict, so the per-tick callback asserts no two robots ever share a
// cell, alongside the usual throughput/deadlock/utilization sanity checks.
func TestBurstOrdersFiveRobots(t *testing.T) {
	const (
		width   = 30
		height  = 30
		horizon = 5000
		robots  = 5
		orders  = 100
	)

	g := emptyGrid(t, width, height)

	var shelves []scenario.Shelf
	shelfRows := []int{3, 9, 15, 21}
	shelfCols := []int{2, 8, 14, 20, 26}
	id := 1
	for _, row := range shelfRows {
		for _, col := range shelfCols {
			shelves = append(shelves, scenario.Shelf{ID: id, Row: row, Col: col, Anchor: grid.Cell{Row: row, Col: col}})
			id++
		}
	}

	var stations []scenario.Station
	stationCols := []int{3, 10, 17, 24}
	for i, col := range stationCols {
		stations = append(stations, scenario.Station{ID: i + 1, Row: height - 1, Col: col, Cell: grid.Cell{Row: height - 1, Col: col}})
	}

	var spawn []scenario.SpawnPoint
	spawnCols := []int{0, 7, 14, 21, 28}
	for _, col := range spawnCols {
		spawn = append(spawn, scenario.SpawnPoint{Row: 0, Col: col})
	}

	var orderList []order.Order
	for i := 0; i < orders; i++ {
		orderList = append(orderList, order.Order{
			ID:           i + 1,
			CreationTick: i * 10,
			ShelfID:      shelves[i%len(shelves)].ID,
			StationID:    stations[i%len(stations)].ID,
		})
	}

	scn := &scenario.Scenario{
		Grid:     g,
		Shelves:  shelves,
		Stations: stations,
		Spawn:    spawn,
		Orders:   orderList,
	}

	sched, err := scheduler.New(scheduler.Config{Scenario: scn, Seed: 11, Robots: robots, Horizon: horizon})
	if err != nil {
		t.Fatalf("scheduler.New: %v", err)
	}

	snap, err := sched.RunObserved(context.Background(), func(tick int, rs []*fleet.Robot) {
		seen := make(map[grid.Cell]int, len(rs))
		for _, r := range rs {
			if other, ok := seen[r.Current]; ok {
				t.Fatalf("tick %d: robots %d and %d both occupy %v", tick, other, r.ID, r.Current)
			}
			seen[r.Current] = r.ID
		}
	})
	if err != nil {
		t.Fatalf("sched.RunObserved: %v", err)
	}

	if snap.Throughput <= 0 {
		t.Fatalf("Throughput = %f, want > 0", snap.Throughput)
	}
	if got := float64(snap.DeadlockTicks) / float64(horizon); got >= 0.5 {
		t.Fatalf("deadlock tick fraction = %f, want < 0.5", got)
	}
	if snap.MeanUtilization <= 0 || snap.MeanUtilization > 1 {
		t.Fatalf("MeanUtilization = %f, want in (0, 1]", snap.MeanUtilization)
	}
}
