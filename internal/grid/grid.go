// Package grid implements the simulation's static obstacle map: an immutable
// rectangular array of cell-type codes, built once from a layout artifact and
// never mutated for the lifetime of a run. The layout follows the teacher's
// own conventions for its warehouse grid (row-major, bounds-checked access)
// generalized from a single robot/crate grid to the five cell-type codes a
// distribution-center layout needs.
package grid

import (
	"fmt"

	"github.com/scottdwilson/fleetsim/internal/simerrors"
)

// CellType is one of the five codes the layout artifact encodes a cell as.
type CellType int

const (
	Free CellType = iota
	Shelf
	Station
	Spawn
	Obstacle
)

// Cell is a (row, col) coordinate into the grid.
type Cell struct {
	Row, Col int
}

// String renders a Cell as "row,col" for log lines and map keys.
func (c Cell) String() string {
	return fmt.Sprintf("%d,%d", c.Row, c.Col)
}

// Manhattan returns the L1 distance between two cells.
func (c Cell) Manhattan(other Cell) int {
	return abs(c.Row-other.Row) + abs(c.Col-other.Col)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Grid is the immutable static obstacle map. Constructed once via New and
// shared read-only by every collaborator for the rest of the run.
type Grid struct {
	width, height int
	cells         [][]CellType
}

// New builds a Grid from a dense row-major array of cell-type codes. It
// deep-copies the input so later mutation of the caller's slice cannot alter
// the simulation's view of the world, mirroring the immutability guarantee
// lvlath's gridgraph makes for its own 2D input.
func New(cells [][]CellType) (*Grid, error) {
	height := len(cells)
	if height == 0 || len(cells[0]) == 0 {
		return nil, fmt.Errorf("%w: grid has no rows or columns", simerrors.ErrBadDimensions)
	}
	width := len(cells[0])
	copied := make([][]CellType, height)
	for r, row := range cells {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has length %d, want %d", simerrors.ErrBadDimensions, r, len(row), width)
		}
		copied[r] = make([]CellType, width)
		copy(copied[r], row)
	}
	return &Grid{width: width, height: height, cells: copied}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether c lies within the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.height && c.Col >= 0 && c.Col < g.width
}

// CellType returns the static type of the cell. Panics if out of bounds;
// callers are expected to check InBounds first, as every internal caller does.
func (g *Grid) CellType(c Cell) CellType {
	return g.cells[c.Row][c.Col]
}

// Traversable reports whether c can be entered by a robot that is not
// currently carrying or targeting the shelf anchored there. Free, station,
// and spawn cells are always traversable; shelf and obstacle cells are not.
func (g *Grid) Traversable(c Cell) bool {
	if !g.InBounds(c) {
		return false
	}
	switch g.CellType(c) {
	case Free, Station, Spawn:
		return true
	default:
		return false
	}
}

// TraversableFor reports whether c can be entered by the given robot, taking
// into account that a shelf cell becomes traversable for the one robot whose
// current pickup target (or carried-shelf anchor) it is. ownedShelf is the
// cell the calling robot is permitted to treat as passable this tick, or the
// zero Cell with hasException=false if the robot owns no such exception.
func (g *Grid) TraversableFor(c Cell, ownedShelf Cell, hasException bool) bool {
	if g.Traversable(c) {
		return true
	}
	if !g.InBounds(c) {
		return false
	}
	if g.CellType(c) == Shelf && hasException && c == ownedShelf {
		return true
	}
	return false
}

// Neighbors4 returns the 4-connected neighbors of c in deterministic order:
// north, south, east, west (row-1, row+1, col+1, col-1), which combined with
// the pathfinder's (row, col) tie-break produces reproducible expansion order.
func Neighbors4(c Cell) [4]Cell {
	return [4]Cell{
		{Row: c.Row - 1, Col: c.Col},
		{Row: c.Row + 1, Col: c.Col},
		{Row: c.Row, Col: c.Col + 1},
		{Row: c.Row, Col: c.Col - 1},
	}
}
