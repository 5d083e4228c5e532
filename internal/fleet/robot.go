// Package fleet implements the per-robot state machine: the pickup/deliver/
// return cycle described in §4.3, adapted from librobot's robotImpl. The
// teacher drives its robots with one goroutine and a task channel each;
// this simulation's core is required to be single-threaded and synchronous
// (§5), so the FSM here is a plain struct the scheduler mutates directly —
// no worker goroutine, no channels, no mutex — but it keeps the teacher's
// vocabulary (Phase, CurrentState-style accessors, carrying-a-payload flag).
// It raises no errors: an arrival in an unexpected phase is a no-op.
package fleet

import "github.com/scottdwilson/fleetsim/internal/grid"

// Phase is a robot's current leg of the pickup/deliver/return cycle.
type Phase int

const (
	Idle Phase = iota
	ToShelf
	ToStation
	ToReturn
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case ToShelf:
		return "to_shelf"
	case ToStation:
		return "to_station"
	case ToReturn:
		return "to_return"
	default:
		return "unknown"
	}
}

// Stats accumulates the per-robot counters the metrics collector reads at
// the end of the run.
type Stats struct {
	Distance     int
	TicksWaiting int
	TicksMoving  int
}

// Robot is a single mobile unit. Its no-order sentinel (AssignedOrder <
// 0) encodes "no order", matching the invariant phase=idle <=> no order.
type Robot struct {
	ID int

	Current Cell
	Phase   Phase

	AssignedOrder int // -1 when none
	ShelfID       int
	ShelfAnchor   Cell
	StationCell   Cell

	PlannedPath []Cell
	PathCursor  int // index of Current within PlannedPath

	CarryingShelf bool
	// PickupPending marks the single tick of pickup dwell the spec requires
	// between arriving at the shelf anchor and setting off for the station:
	// the plan step may already have computed the onward route, but the
	// move step must not consume it until this flag is cleared.
	PickupPending bool

	Stats Stats
}

// Cell is a local alias so this package's exported surface does not leak the
// grid package's type identity into every signature; both are the same
// underlying (row, col) pair used throughout the core.
type Cell = grid.Cell

// New returns an idle robot parked at start.
func New(id int, start Cell) *Robot {
	return &Robot{
		ID:            id,
		Current:       start,
		Phase:         Idle,
		AssignedOrder: -1,
	}
}

// Goal returns the cell this robot's current phase is driving it toward, and
// whether the robot has one at all (it does not while Idle).
func (r *Robot) Goal() (Cell, bool) {
	switch r.Phase {
	case ToShelf:
		return r.ShelfAnchor, true
	case ToStation:
		return r.StationCell, true
	case ToReturn:
		return r.ShelfAnchor, true
	default:
		return Cell{}, false
	}
}

// Assign transitions an idle robot into to_shelf for the given order,
// target shelf anchor and destination station. It is the dispatcher's sole
// mutator of robot state.
func (r *Robot) Assign(orderID, shelfID int, shelfAnchor, stationCell Cell) {
	r.AssignedOrder = orderID
	r.ShelfID = shelfID
	r.ShelfAnchor = shelfAnchor
	r.StationCell = stationCell
	r.Phase = ToShelf
	r.PlannedPath = nil
	r.PathCursor = 0
}

// SetPlan installs a freshly computed route. path[0] must equal r.Current,
// the invariant the spec requires of a non-empty planned path.
func (r *Robot) SetPlan(path []Cell) {
	r.PlannedPath = path
	r.PathCursor = 0
}

// HasPlan reports whether the robot has a path left to walk.
func (r *Robot) HasPlan() bool {
	return r.PathCursor < len(r.PlannedPath)-1
}

// NextStep returns the next cell in the plan beyond Current, or the zero
// Cell and false if the plan is exhausted.
func (r *Robot) NextStep() (Cell, bool) {
	if !r.HasPlan() {
		return Cell{}, false
	}
	return r.PlannedPath[r.PathCursor+1], true
}

// Advance moves the robot to its next planned cell and records distance.
func (r *Robot) Advance(next Cell) {
	r.Current = next
	r.PathCursor++
	r.Stats.Distance++
	r.Stats.TicksMoving++
}

// Wait records a tick spent blocked in place.
func (r *Robot) Wait() {
	r.Stats.TicksWaiting++
}

// ShelfException reports the shelf-traversal exception this robot currently
// carries, per §3: while it is still walking toward its own pickup target,
// that shelf cell is traversable for this robot only, even though the shelf
// has not yet left its anchor. Once the robot has picked the shelf up
// (to_station) or is walking back empty-handed (to_return), the anchor cell
// itself is dynamically vacated for everyone via the scheduler's world.View,
// so no per-robot exception is needed for those phases.
func (r *Robot) ShelfException() (grid.Cell, bool) {
	if r.Phase == ToShelf {
		return r.ShelfAnchor, true
	}
	return grid.Cell{}, false
}

// ArrivedAtGoal reports whether Current equals the phase's goal cell.
func (r *Robot) ArrivedAtGoal() bool {
	goal, ok := r.Goal()
	return ok && r.Current == goal
}

// TransitionOnArrival advances the robot's phase given that it has just
// arrived at its current phase's goal, per §4.3. It returns the completed
// order id when the to_station -> to_return transition fires (the tick the
// shelf is considered delivered) and whether a delivery just happened.
func (r *Robot) TransitionOnArrival() (deliveredOrder int, delivered bool) {
	switch r.Phase {
	case ToShelf:
		r.Phase = ToStation
		r.CarryingShelf = true
		r.PlannedPath = nil
		r.PathCursor = 0
		r.PickupPending = true
		return 0, false
	case ToStation:
		r.Phase = ToReturn
		r.CarryingShelf = false
		r.PlannedPath = nil
		r.PathCursor = 0
		return r.AssignedOrder, true
	case ToReturn:
		r.Phase = Idle
		r.AssignedOrder = -1
		r.PlannedPath = nil
		r.PathCursor = 0
		return 0, false
	default:
		return 0, false
	}
}

// IsIdle reports whether the robot is available for a new assignment.
func (r *Robot) IsIdle() bool { return r.Phase == Idle }
