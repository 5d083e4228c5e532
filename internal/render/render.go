// Package render draws an ASCII snapshot of a tick, adapted from librobot's
// own Render/ClearScreen pair: a dense character grid built bottom-up cell
// type first, robots overlaid last so a robot is always visible on top of
// whatever it is standing on.
package render

import (
	"fmt"
	"strings"

	"github.com/scottdwilson/fleetsim/internal/fleet"
	"github.com/scottdwilson/fleetsim/internal/grid"
)

// symbols mirrors librobot's "fixed-width cell" convention (its "[C]"/" - "
// cells), generalized from one occupant type (crates) to this domain's five
// static cell kinds.
var symbols = map[grid.CellType]string{
	grid.Free:     " . ",
	grid.Shelf:    "[S]",
	grid.Station:  "[T]",
	grid.Spawn:    " o ",
	grid.Obstacle: "###",
}

// ClearScreen resets the terminal cursor and clears prior output, letting
// repeated Render calls overwrite a fixed-size viewport the way librobot's
// view command animates a running warehouse.
func ClearScreen() {
	fmt.Print("\033[H\033[2J")
}

// Robot is the minimal view render needs of a fleet member; it exists so
// this package does not need a live *fleet.Robot, only its rendered facts.
type Robot struct {
	ID    int
	Cell  grid.Cell
	Phase fleet.Phase
}

// Render returns a grid.Height() x grid.Width() ASCII snapshot, with robots
// overlaid on their current cell using a two-character id tag, the same
// overwrite-what's-underneath rule librobot's Render uses for crates.
func Render(g *grid.Grid, robots []Robot) string {
	rows := make([]string, g.Height())
	occupant := make(map[grid.Cell]Robot, len(robots))
	for _, r := range robots {
		occupant[r.Cell] = r
	}

	var sb strings.Builder
	for row := 0; row < g.Height(); row++ {
		sb.Reset()
		for col := 0; col < g.Width(); col++ {
			c := grid.Cell{Row: row, Col: col}
			if r, ok := occupant[c]; ok {
				fmt.Fprintf(&sb, "R%-2d", r.ID%100)
				continue
			}
			sb.WriteString(symbols[g.CellType(c)])
		}
		rows[row] = sb.String()
	}
	return strings.Join(rows, "\n")
}
