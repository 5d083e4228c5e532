// Package metrics implements the simulation's metrics collector: the
// counters, per-cell heatmap arrays, and per-order lead times the spec's
// §4.6 computes, serialized at the end of a run as a plain JSON object
// (encoding/json: no ecosystem codec in the retrieved pack offers anything
// this ad-hoc, fixed-shape record would benefit from — see DESIGN.md).
package metrics

// Collector accumulates the long-lived mutable metrics state for a single
// run. Like the reservation table, it is owned exclusively by the scheduler
// and never shared.
type Collector struct {
	width, height int

	visits [][]int
	waits  [][]int

	leadTimes        map[int]int // orderID -> completion_tick - creation_tick
	deadlockTicks    int
	unreachableTries int
	totalDistance    int

	robotTicksMoving map[int]int
	horizonTicks     int
}

// New returns a collector sized to the given grid dimensions.
func New(width, height, horizonTicks int) *Collector {
	visits := make([][]int, height)
	waits := make([][]int, height)
	for r := range visits {
		visits[r] = make([]int, width)
		waits[r] = make([]int, width)
	}
	return &Collector{
		width:            width,
		height:           height,
		visits:           visits,
		waits:            waits,
		leadTimes:        make(map[int]int),
		robotTicksMoving: make(map[int]int),
		horizonTicks:     horizonTicks,
	}
}

// RecordVisit registers a robot occupying (row, col) this tick, whether it
// moved into the cell or started there.
func (c *Collector) RecordVisit(row, col int) {
	c.visits[row][col]++
}

// RecordWait registers a robot blocked at (row, col) this tick.
func (c *Collector) RecordWait(row, col int) {
	c.waits[row][col]++
}

// RecordMove increments total distance and a robot's moving-tick count.
func (c *Collector) RecordMove(robotID int) {
	c.totalDistance++
	c.robotTicksMoving[robotID]++
}

// RecordDeadlockTick increments the deadlock-tick counter.
func (c *Collector) RecordDeadlockTick() {
	c.deadlockTicks++
}

// RecordUnreachableAttempt increments the counter of dispatch attempts that
// failed because the pathfinder found no route.
func (c *Collector) RecordUnreachableAttempt() {
	c.unreachableTries++
}

// RecordCompletion records an order's lead time at the tick it was
// delivered (the to_station -> to_return transition).
func (c *Collector) RecordCompletion(orderID, creationTick, completionTick int) {
	c.leadTimes[orderID] = completionTick - creationTick
}

// Snapshot is the immutable, serializable result of a completed run.
type Snapshot struct {
	OrdersCompleted     int         `json:"orders_completed"`
	OrdersPending       int         `json:"orders_pending"`
	UnreachableAttempts int         `json:"unreachable_attempts"`
	Throughput          float64     `json:"throughput"`
	MeanLeadTime        float64     `json:"mean_lead_time"`
	MeanUtilization     float64     `json:"mean_utilization"`
	DeadlockTicks       int         `json:"deadlock_ticks"`
	TotalDistance       int         `json:"total_distance"`
	Visits              [][]float64 `json:"visits"`
	Waits               [][]float64 `json:"waits"`
	Ratio               [][]float64 `json:"ratio"`
}

// Finalize computes the derived Snapshot fields from the accumulated raw
// counters. robotIDs must list every robot in the fleet so a robot that
// never moved still contributes a zero to mean utilization.
func (c *Collector) Finalize(robotIDs []int) Snapshot {
	ordersCompleted := len(c.leadTimes)

	var leadSum int
	for _, lt := range c.leadTimes {
		leadSum += lt
	}
	meanLead := 0.0
	if ordersCompleted > 0 {
		meanLead = float64(leadSum) / float64(ordersCompleted)
	}

	var utilSum float64
	for _, id := range robotIDs {
		if c.horizonTicks > 0 {
			utilSum += float64(c.robotTicksMoving[id]) / float64(c.horizonTicks)
		}
	}
	meanUtil := 0.0
	if len(robotIDs) > 0 {
		meanUtil = utilSum / float64(len(robotIDs))
	}

	throughput := 0.0
	if c.horizonTicks > 0 {
		throughput = float64(ordersCompleted) / float64(c.horizonTicks)
	}

	visits := toFloatGrid(c.visits)
	waits := toFloatGrid(c.waits)
	ratio := make([][]float64, c.height)
	for r := 0; r < c.height; r++ {
		ratio[r] = make([]float64, c.width)
		for col := 0; col < c.width; col++ {
			denom := c.visits[r][col]
			if denom < 1 {
				denom = 1
			}
			ratio[r][col] = float64(c.waits[r][col]) / float64(denom)
		}
	}

	return Snapshot{
		OrdersCompleted:     ordersCompleted,
		Throughput:          throughput,
		MeanLeadTime:        meanLead,
		MeanUtilization:     meanUtil,
		DeadlockTicks:       c.deadlockTicks,
		TotalDistance:       c.totalDistance,
		UnreachableAttempts: c.unreachableTries,
		Visits:              visits,
		Waits:               waits,
		Ratio:               ratio,
	}
}

func toFloatGrid(src [][]int) [][]float64 {
	out := make([][]float64, len(src))
	for r, row := range src {
		out[r] = make([]float64, len(row))
		for c, v := range row {
			out[r][c] = float64(v)
		}
	}
	return out
}
