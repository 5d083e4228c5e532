// Package dispatch implements the nearest-first order assignment policy of
// §4.4. Per §9's design note, the policy is expressed as a single-operation
// capability interface so the scheduler can be handed an alternative
// assignment strategy without any change to its own loop.
package dispatch

import (
	"github.com/scottdwilson/fleetsim/internal/fleet"
	"github.com/scottdwilson/fleetsim/internal/grid"
	"github.com/scottdwilson/fleetsim/internal/order"
)

// ShelfLookup resolves a shelf id to its anchor cell and a station id to its
// cell, the only grid knowledge the dispatcher needs.
type ShelfLookup interface {
	ShelfAnchor(id int) (grid.Cell, bool)
	StationCell(id int) (grid.Cell, bool)
}

// Policy is the single operation the scheduler needs from an assignment
// strategy: given one idle robot and the pending queue, pick the index of
// the order that robot should take. NearestFirst is this spec's implementation; alternative global
// assignment strategies are explicitly a non-goal but can be swapped in
// behind this same interface.
type Policy interface {
	Choose(robot *fleet.Robot, pending []order.Order, lookup ShelfLookup) (chosenIdx int, ok bool)
}

// NearestFirst selects, for a given idle robot, the pending order whose
// shelf anchor minimizes Manhattan distance from the robot's current cell,
// breaking ties by lower order id. It is a purely local heuristic per the
// spec's explicit non-goal of globally optimal assignment.
type NearestFirst struct{}

// Choose implements Policy.
func (NearestFirst) Choose(robot *fleet.Robot, pending []order.Order, lookup ShelfLookup) (int, bool) {
	bestIdx := -1
	bestDist := 0
	bestOrderID := 0
	for i, o := range pending {
		anchor, ok := lookup.ShelfAnchor(o.ShelfID)
		if !ok {
			continue
		}
		dist := robot.Current.Manhattan(anchor)
		if bestIdx == -1 || dist < bestDist || (dist == bestDist && o.ID < bestOrderID) {
			bestIdx = i
			bestDist = dist
			bestOrderID = o.ID
		}
	}
	if bestIdx == -1 {
		return 0, false
	}
	return bestIdx, true
}
