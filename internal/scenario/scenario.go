// Package scenario reads the external input artifacts a scenario directory
// holds (layout, shelves, stations, spawn points, orders) and writes the
// core's sole output artifact, metrics.json. This is the documented
// file-artifact boundary §1 draws between the simulation core and the
// out-of-scope layout/order generators: this package only ever reads what
// those collaborators produced, and writes what the renderer collaborator
// later consumes.
package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/scottdwilson/fleetsim/internal/grid"
	"github.com/scottdwilson/fleetsim/internal/metrics"
	"github.com/scottdwilson/fleetsim/internal/order"
	"github.com/scottdwilson/fleetsim/internal/simerrors"
)

// Shelf is a shelf's id and anchor cell, as read from shelves.json.
type Shelf struct {
	ID     int `json:"id"`
	Row    int `json:"row"`
	Col    int `json:"col"`
	Anchor grid.Cell
}

// Station is a station's id and cell, as read from stations.json.
type Station struct {
	ID   int `json:"id"`
	Row  int `json:"row"`
	Col  int `json:"col"`
	Cell grid.Cell
}

// SpawnPoint is a single spawn cell, as read from spawn.json.
type SpawnPoint struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// layoutFile mirrors layout.json's shape: a dense row-major grid of cell
// codes plus declared dimensions for the §7 ErrBadDimensions cross-check.
type layoutFile struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Cells  [][]int `json:"cells"`
}

// orderFile mirrors a single entry of orders.json.
type orderFile struct {
	ID        int `json:"id"`
	Tick      int `json:"tick"`
	ShelfID   int `json:"shelf_id"`
	StationID int `json:"station_id"`
}

// Scenario is the fully parsed, cross-validated contents of a scenario
// directory, ready to hand to the scheduler.
type Scenario struct {
	Grid     *grid.Grid
	Shelves  []Shelf
	Stations []Station
	Spawn    []SpawnPoint
	Orders   []order.Order
}

// Load reads and validates every input artifact under dir. It is the single
// place malformed-input errors (§7) are raised; every error is wrapped with
// the offending file name.
func Load(dir string) (*Scenario, error) {
	g, err := loadLayout(filepath.Join(dir, "layout.json"))
	if err != nil {
		return nil, err
	}

	shelves, err := loadShelves(filepath.Join(dir, "shelves.json"), g)
	if err != nil {
		return nil, err
	}

	stations, err := loadStations(filepath.Join(dir, "stations.json"), g)
	if err != nil {
		return nil, err
	}

	spawn, err := loadSpawn(filepath.Join(dir, "spawn.json"), g)
	if err != nil {
		return nil, err
	}

	orders, err := loadOrders(filepath.Join(dir, "orders.json"), shelves, stations)
	if err != nil {
		return nil, err
	}

	return &Scenario{Grid: g, Shelves: shelves, Stations: stations, Spawn: spawn, Orders: orders}, nil
}

func loadLayout(path string) (*grid.Grid, error) {
	var raw layoutFile
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	if raw.Height != len(raw.Cells) || (len(raw.Cells) > 0 && raw.Width != len(raw.Cells[0])) {
		return nil, fmt.Errorf("%w: %s declares %dx%d but has %d rows", simerrors.ErrBadDimensions, path, raw.Width, raw.Height, len(raw.Cells))
	}
	cells := make([][]grid.CellType, len(raw.Cells))
	for r, row := range raw.Cells {
		cells[r] = make([]grid.CellType, len(row))
		for c, code := range row {
			cells[r][c] = grid.CellType(code)
		}
	}
	g, err := grid.New(cells)
	if err != nil {
		return nil, fmt.Errorf("scenario: %s: %w", path, err)
	}
	return g, nil
}

func loadShelves(path string, g *grid.Grid) ([]Shelf, error) {
	var raw []Shelf
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	seenIDs := make(map[int]bool, len(raw))
	seenAnchors := make(map[grid.Cell]bool, len(raw))
	for i := range raw {
		raw[i].Anchor = grid.Cell{Row: raw[i].Row, Col: raw[i].Col}
		if !g.InBounds(raw[i].Anchor) {
			return nil, fmt.Errorf("%w: %s shelf %d at %s", simerrors.ErrOutOfBounds, path, raw[i].ID, raw[i].Anchor)
		}
		if g.CellType(raw[i].Anchor) != grid.Shelf {
			return nil, fmt.Errorf("%w: %s shelf %d at %s is not a shelf cell in the layout", simerrors.ErrCellTypeMismatch, path, raw[i].ID, raw[i].Anchor)
		}
		if seenIDs[raw[i].ID] {
			return nil, fmt.Errorf("%w: %s shelf id %d", simerrors.ErrDuplicateID, path, raw[i].ID)
		}
		seenIDs[raw[i].ID] = true
		if seenAnchors[raw[i].Anchor] {
			return nil, fmt.Errorf("%w: %s shelf %d at %s", simerrors.ErrDuplicateAnchor, path, raw[i].ID, raw[i].Anchor)
		}
		seenAnchors[raw[i].Anchor] = true
	}
	return raw, nil
}

func loadStations(path string, g *grid.Grid) ([]Station, error) {
	var raw []Station
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	seen := make(map[int]bool, len(raw))
	for i := range raw {
		raw[i].Cell = grid.Cell{Row: raw[i].Row, Col: raw[i].Col}
		if !g.InBounds(raw[i].Cell) {
			return nil, fmt.Errorf("%w: %s station %d at %s", simerrors.ErrOutOfBounds, path, raw[i].ID, raw[i].Cell)
		}
		if g.CellType(raw[i].Cell) != grid.Station {
			return nil, fmt.Errorf("%w: %s station %d at %s is not a station cell in the layout", simerrors.ErrCellTypeMismatch, path, raw[i].ID, raw[i].Cell)
		}
		if seen[raw[i].ID] {
			return nil, fmt.Errorf("%w: %s station id %d", simerrors.ErrDuplicateID, path, raw[i].ID)
		}
		seen[raw[i].ID] = true
	}
	return raw, nil
}

func loadSpawn(path string, g *grid.Grid) ([]SpawnPoint, error) {
	var raw []SpawnPoint
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	for _, s := range raw {
		cell := grid.Cell{Row: s.Row, Col: s.Col}
		if !g.InBounds(cell) {
			return nil, fmt.Errorf("%w: %s spawn at %s", simerrors.ErrOutOfBounds, path, cell)
		}
	}
	return raw, nil
}

func loadOrders(path string, shelves []Shelf, stations []Station) ([]order.Order, error) {
	var raw []orderFile
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}

	shelfIDs := make(map[int]bool, len(shelves))
	for _, s := range shelves {
		shelfIDs[s.ID] = true
	}
	stationIDs := make(map[int]bool, len(stations))
	for _, s := range stations {
		stationIDs[s.ID] = true
	}

	seenIDs := make(map[int]bool, len(raw))
	orders := make([]order.Order, 0, len(raw))
	for _, o := range raw {
		if o.Tick < 0 {
			return nil, fmt.Errorf("%w: %s order %d", simerrors.ErrNegativeTick, path, o.ID)
		}
		if seenIDs[o.ID] {
			return nil, fmt.Errorf("%w: %s order id %d", simerrors.ErrDuplicateID, path, o.ID)
		}
		seenIDs[o.ID] = true
		if !shelfIDs[o.ShelfID] {
			return nil, fmt.Errorf("%w: %s order %d references shelf %d", simerrors.ErrUnknownShelf, path, o.ID, o.ShelfID)
		}
		if !stationIDs[o.StationID] {
			return nil, fmt.Errorf("%w: %s order %d references station %d", simerrors.ErrUnknownStation, path, o.ID, o.StationID)
		}
		orders = append(orders, order.Order{
			ID:           o.ID,
			CreationTick: o.Tick,
			ShelfID:      o.ShelfID,
			StationID:    o.StationID,
		})
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].CreationTick < orders[j].CreationTick })
	return orders, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("scenario: reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("scenario: parsing %s: %w", path, err)
	}
	return nil
}

// WriteMetrics serializes snap as metrics.json in dir, matching the output
// contract of §6.
func WriteMetrics(dir string, snap metrics.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("scenario: marshaling metrics: %w", err)
	}
	path := filepath.Join(dir, "metrics.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("scenario: writing %s: %w", path, err)
	}
	return nil
}
