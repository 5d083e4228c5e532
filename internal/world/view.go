// Package world layers the one piece of dynamic obstacle state the static
// grid cannot express on its own: which shelf anchors are temporarily
// vacated because their shelf is out being carried. The grid stays
// immutable per §3; this thin view is the scheduler's own bookkeeping,
// exposed to the pathfinder only through the same narrow Traversability
// capability interface pathfind.Plan already consumes.
package world

import "github.com/scottdwilson/fleetsim/internal/grid"

// View answers traversability questions against a static grid plus the
// current set of shelves away from their anchor.
type View struct {
	g           *grid.Grid
	shelfAtCell map[grid.Cell]int
	away        map[int]bool
}

// New builds a View over g. shelfAnchors maps shelf id to its anchor cell.
func New(g *grid.Grid, shelfAnchors map[int]grid.Cell) *View {
	shelfAtCell := make(map[grid.Cell]int, len(shelfAnchors))
	for id, cell := range shelfAnchors {
		shelfAtCell[cell] = id
	}
	return &View{g: g, shelfAtCell: shelfAtCell, away: make(map[int]bool)}
}

// SetAway marks whether shelfID is currently away from its anchor (being
// carried by a robot in to_station or to_return phase) and therefore
// traversable by anyone, or at rest (non-traversable except for its current
// pickup target).
func (v *View) SetAway(shelfID int, away bool) {
	v.away[shelfID] = away
}

// TraversableFor implements pathfind.Traversability.
func (v *View) TraversableFor(c grid.Cell, ownedShelf grid.Cell, hasException bool) bool {
	if !v.g.InBounds(c) {
		return false
	}
	if v.g.CellType(c) == grid.Shelf {
		if shelfID, ok := v.shelfAtCell[c]; ok && v.away[shelfID] {
			return true
		}
		return hasException && c == ownedShelf
	}
	return v.g.Traversable(c)
}
