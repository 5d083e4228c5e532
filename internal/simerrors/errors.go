// Package simerrors holds the sentinel errors shared across the simulation
// core, in the style of librobot's own error set: one var per well-defined
// failure condition, wrapped with context at the call site rather than
// replaced with a new error type.
package simerrors

import "errors"

var (
	// ErrBadDimensions indicates a layout whose declared width/height does not
	// match the shape of its cell rows.
	ErrBadDimensions = errors.New("layout: declared dimensions do not match cell grid shape")
	// ErrOutOfBounds indicates a shelf, station, or spawn cell outside the grid.
	ErrOutOfBounds = errors.New("layout: cell reference out of bounds")
	// ErrDuplicateID indicates two shelves, stations, or orders sharing an id.
	ErrDuplicateID = errors.New("layout: duplicate id")
	// ErrDuplicateAnchor indicates two shelves sharing an anchor cell.
	ErrDuplicateAnchor = errors.New("layout: duplicate shelf anchor cell")
	// ErrUnknownShelf indicates an order referencing a shelf id that does not exist.
	ErrUnknownShelf = errors.New("order: unknown shelf id")
	// ErrUnknownStation indicates an order referencing a station id that does not exist.
	ErrUnknownStation = errors.New("order: unknown station id")
	// ErrNegativeTick indicates an order with creation_tick < 0.
	ErrNegativeTick = errors.New("order: creation tick must be non-negative")
	// ErrCellTypeMismatch indicates a shelf or station entry whose declared
	// cell does not carry the matching cell-type code in the layout.
	ErrCellTypeMismatch = errors.New("layout: cell type does not match declared role")
	// ErrNoRobots indicates a simulation configured with zero robots.
	ErrNoRobots = errors.New("scheduler: fleet must contain at least one robot")
	// ErrNoSpawnPoints indicates there are fewer spawn points than robots.
	ErrNoSpawnPoints = errors.New("scheduler: not enough spawn points for requested fleet size")
)
