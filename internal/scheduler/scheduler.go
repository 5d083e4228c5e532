// Package scheduler implements the per-tick driver of §4.5: dispatch, plan,
// reserve, move, record, repeat, in the style of the teacher's own
// executeCommand — a single synchronous function per unit of work, boundary
// checks first, collision/reservation checks second, state mutation last —
// but for the whole fleet at once and purely single-threaded per §5, with
// no worker goroutines and no per-robot mutex.
package scheduler

import (
	"context"
	"log"
	"math/rand"
	"sort"

	"github.com/scottdwilson/fleetsim/internal/dispatch"
	"github.com/scottdwilson/fleetsim/internal/fleet"
	"github.com/scottdwilson/fleetsim/internal/grid"
	"github.com/scottdwilson/fleetsim/internal/metrics"
	"github.com/scottdwilson/fleetsim/internal/order"
	"github.com/scottdwilson/fleetsim/internal/pathfind"
	"github.com/scottdwilson/fleetsim/internal/reservation"
	"github.com/scottdwilson/fleetsim/internal/scenario"
	"github.com/scottdwilson/fleetsim/internal/simerrors"
	"github.com/scottdwilson/fleetsim/internal/world"
)

// lookup implements dispatch.ShelfLookup over a parsed Scenario's shelves
// and stations.
type lookup struct {
	shelfAnchor map[int]grid.Cell
	stationCell map[int]grid.Cell
}

func (l *lookup) ShelfAnchor(id int) (grid.Cell, bool) { c, ok := l.shelfAnchor[id]; return c, ok }
func (l *lookup) StationCell(id int) (grid.Cell, bool) { c, ok := l.stationCell[id]; return c, ok }

// Scheduler owns every piece of long-lived mutable state for a single run:
// the reservation table and the metrics collector, per §9's design note that
// these are the only long-lived mutable structures in the core and should be
// confined to the scheduler rather than passed around as ambient globals.
type Scheduler struct {
	g        *grid.Grid
	view     *world.View
	table    *reservation.Table
	metrics  *metrics.Collector
	lookup   *lookup
	policy   dispatch.Policy
	robots   []*fleet.Robot
	queue    *order.Queue
	allOrder []order.Order // sorted by creation tick, for intake
	created  map[int]int   // orderID -> creation tick

	horizon int
	tick    int
}

// Config bundles the inputs a single deterministic run needs.
type Config struct {
	Scenario *scenario.Scenario
	Seed     int64
	Robots   int
	Horizon  int
}

// New builds a scheduler ready to run, placing robots on a deterministic
// subset of the scenario's spawn points chosen by Seed.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Robots <= 0 {
		return nil, simerrors.ErrNoRobots
	}
	if len(cfg.Scenario.Spawn) < cfg.Robots {
		return nil, simerrors.ErrNoSpawnPoints
	}

	shelfAnchor := make(map[int]grid.Cell, len(cfg.Scenario.Shelves))
	for _, s := range cfg.Scenario.Shelves {
		shelfAnchor[s.ID] = s.Anchor
	}
	stationCell := make(map[int]grid.Cell, len(cfg.Scenario.Stations))
	for _, s := range cfg.Scenario.Stations {
		stationCell[s.ID] = s.Cell
	}

	spawnOrder := choosSpawnPoints(cfg.Scenario.Spawn, cfg.Robots, cfg.Seed)
	robots := make([]*fleet.Robot, cfg.Robots)
	for i := 0; i < cfg.Robots; i++ {
		robots[i] = fleet.New(i, spawnOrder[i])
	}

	created := make(map[int]int, len(cfg.Scenario.Orders))
	for _, o := range cfg.Scenario.Orders {
		created[o.ID] = o.CreationTick
	}

	allOrders := make([]order.Order, len(cfg.Scenario.Orders))
	copy(allOrders, cfg.Scenario.Orders)
	sort.SliceStable(allOrders, func(i, j int) bool { return allOrders[i].CreationTick < allOrders[j].CreationTick })

	return &Scheduler{
		g:        cfg.Scenario.Grid,
		view:     world.New(cfg.Scenario.Grid, shelfAnchor),
		table:    reservation.New(),
		metrics:  metrics.New(cfg.Scenario.Grid.Width(), cfg.Scenario.Grid.Height(), cfg.Horizon),
		lookup:   &lookup{shelfAnchor: shelfAnchor, stationCell: stationCell},
		policy:   dispatch.NearestFirst{},
		robots:   robots,
		queue:    order.NewQueue(),
		allOrder: allOrders,
		created:  created,
		horizon:  cfg.Horizon,
	}, nil
}

// choosSpawnPoints deterministically selects Robots cells out of the
// available spawn points for a given seed, using a seeded Fisher-Yates
// shuffle so the same seed always yields the same placement (the
// determinism contract of §6 extends to initial robot placement, the one
// place this spec's inputs leave room for seed-dependent behavior).
func choosSpawnPoints(spawn []scenario.SpawnPoint, n int, seed int64) []grid.Cell {
	cells := make([]grid.Cell, len(spawn))
	for i, s := range spawn {
		cells[i] = grid.Cell{Row: s.Row, Col: s.Col}
	}
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(cells), func(i, j int) { cells[i], cells[j] = cells[j], cells[i] })
	return cells[:n]
}

// Run drives the tick loop to completion and returns the final metrics
// snapshot. It stops early if ctx is cancelled between ticks.
func (s *Scheduler) Run(ctx context.Context) (metrics.Snapshot, error) {
	return s.RunObserved(ctx, nil)
}

// RunObserved is Run with an optional callback invoked after every tick,
// letting a caller (the CLI's --watch mode, in particular) render
// intermediate state without the core knowing anything about terminals. The
// tick loop checks ctx only between ticks, never mid-tick, preserving the
// single-logical-thread contract: a cancelled run always stops with a
// complete, consistent tick rather than a torn one.
func (s *Scheduler) RunObserved(ctx context.Context, onTick func(tick int, robots []*fleet.Robot)) (metrics.Snapshot, error) {
	for s.tick < s.horizon {
		if err := ctx.Err(); err != nil {
			return s.finalize(), err
		}
		s.step()
		if onTick != nil {
			onTick(s.tick, s.robots)
		}
	}
	return s.finalize(), nil
}

func (s *Scheduler) finalize() metrics.Snapshot {
	ids := make([]int, len(s.robots))
	for i, r := range s.robots {
		ids[i] = r.ID
	}
	snap := s.metrics.Finalize(ids)
	// An order assigned to a robot but not yet delivered is still pending.
	pending := s.queue.Len()
	for _, r := range s.robots {
		if r.Phase == fleet.ToShelf || r.Phase == fleet.ToStation {
			pending++
		}
	}
	snap.OrdersPending = pending
	return snap
}

// Grid exposes the static layout for rendering purposes.
func (s *Scheduler) Grid() *grid.Grid { return s.g }

// step executes one tick of §4.5's procedure.
func (s *Scheduler) step() {
	s.intake()
	s.dispatch()
	s.plan()
	advanced, contended := s.moveAttempt()
	s.transition()
	if contended && !advanced {
		s.metrics.RecordDeadlockTick()
	}
	s.table.ReleasePast(s.tick)
	s.tick++
}

func (s *Scheduler) intake() {
	for len(s.allOrder) > 0 && s.allOrder[0].CreationTick <= s.tick {
		s.queue.Push(s.allOrder[0])
		s.allOrder = s.allOrder[1:]
	}
}

func (s *Scheduler) dispatch() {
	for _, r := range s.robots {
		if !r.IsIdle() {
			continue
		}
		pending := s.queue.Pending()
		if len(pending) == 0 {
			continue
		}
		idx, ok := s.policy.Choose(r, pending, s.lookup)
		if !ok {
			continue
		}
		o := pending[idx]
		anchor, _ := s.lookup.ShelfAnchor(o.ShelfID)
		station, _ := s.lookup.StationCell(o.StationID)

		path, found := pathfind.Plan(s.view, pathfind.Request{
			Start: r.Current, Goal: anchor, OwnedShelf: anchor, HasException: true,
		})
		if !found || len(path) == 0 {
			s.metrics.RecordUnreachableAttempt()
			s.queue.Remove(idx)
			s.queue.PushFront(o)
			continue
		}
		r.Assign(o.ID, o.ShelfID, anchor, station)
		r.SetPlan(path)
		s.queue.Remove(idx)
	}
}

func (s *Scheduler) plan() {
	for _, r := range s.robots {
		if r.IsIdle() || len(r.PlannedPath) > 0 {
			continue
		}
		goal, ok := r.Goal()
		if !ok {
			continue
		}
		ownedShelf, hasException := r.ShelfException()
		path, found := pathfind.Plan(s.view, pathfind.Request{
			Start: r.Current, Goal: goal, OwnedShelf: ownedShelf, HasException: hasException,
		})
		if found {
			r.SetPlan(path)
		}
		// If unreachable mid-cycle (should not occur on a connected grid),
		// the robot simply retries next tick; this is not a dispatch-time
		// commitment so it does not count toward unreachable_attempts.
	}
}

// moveAttempt executes step 4 of §4.5 for every non-idle robot in ascending
// id order, so lower-id robots always get first reservation in a contested
// cell. It returns whether any robot advanced this tick, and whether any
// non-idle, non-pickup-dwelling robot was in contention at all (the
// denominator for deadlock detection — a lone robot spending its scripted
// pickup tick is not, by itself, a deadlock).
//
// Every robot's current cell, idle robots included, is pre-booked for tick+1
// before any move decision runs, so a robot processed earlier in id order
// sees every later robot's continued occupancy (and every parked idle
// robot) as already reserved, even though that later robot has not yet been
// visited this tick. A robot that goes on to advance releases its own
// placeholder once its destination is secured.
func (s *Scheduler) moveAttempt() (advancedAny, contendedAny bool) {
	for _, r := range s.robots {
		s.table.Book(r.Current, s.tick+1, r.ID)
	}

	for _, r := range s.robots {
		if r.IsIdle() {
			continue
		}

		if r.PickupPending {
			s.metrics.RecordVisit(r.Current.Row, r.Current.Col)
			r.PickupPending = false
			continue
		}

		contendedAny = true
		next, hasNext := r.NextStep()
		if !hasNext {
			s.metrics.RecordVisit(r.Current.Row, r.Current.Col)
			continue
		}

		if s.table.CanMove(r.Current, next, s.tick, r.ID) {
			s.table.Release(r.Current, s.tick+1, r.ID)
			s.table.ReserveMove(r.Current, next, s.tick, r.ID)
			r.Advance(next)
			s.metrics.RecordMove(r.ID)
			s.metrics.RecordVisit(next.Row, next.Col)
			advancedAny = true
			log.Printf("Robot %d: Moved to (%d, %d)", r.ID, next.Row, next.Col)
		} else {
			r.Wait()
			s.metrics.RecordWait(r.Current.Row, r.Current.Col)
			s.metrics.RecordVisit(r.Current.Row, r.Current.Col)
		}
	}
	return advancedAny, contendedAny
}

func (s *Scheduler) transition() {
	for _, r := range s.robots {
		if r.IsIdle() || !r.ArrivedAtGoal() {
			continue
		}
		shelfID := r.ShelfID
		prevPhase := r.Phase
		deliveredOrder, delivered := r.TransitionOnArrival()

		switch prevPhase {
		case fleet.ToShelf:
			// Shelf just left its anchor for the trip to the station.
			s.view.SetAway(shelfID, true)
			log.Printf("Robot %d: Grabbed shelf %d at (%d, %d)", r.ID, shelfID, r.Current.Row, r.Current.Col)
		case fleet.ToStation:
			log.Printf("Robot %d: Dropped shelf %d at (%d, %d)", r.ID, shelfID, r.Current.Row, r.Current.Col)
		case fleet.ToReturn:
			// Shelf is back home.
			s.view.SetAway(shelfID, false)
		}

		if delivered {
			s.metrics.RecordCompletion(deliveredOrder, s.created[deliveredOrder], s.tick)
		}
	}
}
