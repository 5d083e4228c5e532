package scenario_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scottdwilson/fleetsim/internal/metrics"
	"github.com/scottdwilson/fleetsim/internal/scenario"
	"github.com/scottdwilson/fleetsim/internal/simerrors"
)

func metricsFixture() metrics.Snapshot {
	return metrics.Snapshot{
		OrdersCompleted: 3,
		Visits:          [][]float64{{0}},
		Waits:           [][]float64{{0}},
		Ratio:           [][]float64{{0}},
	}
}

func writeFixture(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func validScenarioDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, "layout.json", map[string]any{
		"width":  3,
		"height": 2,
		"cells": [][]int{
			{0, 0, 0},
			{0, 1, 2},
		},
	})
	writeFixture(t, dir, "shelves.json", []map[string]any{
		{"id": 1, "row": 1, "col": 1},
	})
	writeFixture(t, dir, "stations.json", []map[string]any{
		{"id": 1, "row": 1, "col": 2},
	})
	writeFixture(t, dir, "spawn.json", []map[string]any{
		{"row": 0, "col": 0},
	})
	writeFixture(t, dir, "orders.json", []map[string]any{
		{"id": 1, "tick": 0, "shelf_id": 1, "station_id": 1},
	})
	return dir
}

func TestLoadValidScenario(t *testing.T) {
	scn, err := scenario.Load(validScenarioDir(t))
	require.NoError(t, err)
	require.Equal(t, 3, scn.Grid.Width())
	require.Equal(t, 2, scn.Grid.Height())
	require.Len(t, scn.Shelves, 1)
	require.Len(t, scn.Stations, 1)
	require.Len(t, scn.Spawn, 1)
	require.Len(t, scn.Orders, 1)
}

func TestLoadRejectsBadDimensions(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "layout.json", map[string]any{
		"width":  3,
		"height": 5,
		"cells":  [][]int{{0, 0, 0}},
	})
	_, err := scenario.Load(dir)
	require.ErrorIs(t, err, simerrors.ErrBadDimensions)
}

func TestLoadRejectsDuplicateShelfID(t *testing.T) {
	dir := validScenarioDir(t)
	writeFixture(t, dir, "layout.json", map[string]any{
		"width":  3,
		"height": 2,
		"cells": [][]int{
			{0, 1, 0},
			{0, 1, 2},
		},
	})
	writeFixture(t, dir, "shelves.json", []map[string]any{
		{"id": 1, "row": 1, "col": 1},
		{"id": 1, "row": 0, "col": 1},
	})
	_, err := scenario.Load(dir)
	require.ErrorIs(t, err, simerrors.ErrDuplicateID)
}

func TestLoadRejectsOutOfBoundsShelf(t *testing.T) {
	dir := validScenarioDir(t)
	writeFixture(t, dir, "shelves.json", []map[string]any{
		{"id": 1, "row": 9, "col": 9},
	})
	_, err := scenario.Load(dir)
	require.ErrorIs(t, err, simerrors.ErrOutOfBounds)
}

func TestLoadRejectsShelfOnNonShelfCell(t *testing.T) {
	dir := validScenarioDir(t)
	writeFixture(t, dir, "shelves.json", []map[string]any{
		{"id": 1, "row": 0, "col": 0},
	})
	_, err := scenario.Load(dir)
	require.ErrorIs(t, err, simerrors.ErrCellTypeMismatch)
}

func TestLoadRejectsStationOnNonStationCell(t *testing.T) {
	dir := validScenarioDir(t)
	writeFixture(t, dir, "stations.json", []map[string]any{
		{"id": 1, "row": 0, "col": 0},
	})
	_, err := scenario.Load(dir)
	require.ErrorIs(t, err, simerrors.ErrCellTypeMismatch)
}

func TestLoadRejectsOrderWithUnknownShelf(t *testing.T) {
	dir := validScenarioDir(t)
	writeFixture(t, dir, "orders.json", []map[string]any{
		{"id": 1, "tick": 0, "shelf_id": 99, "station_id": 1},
	})
	_, err := scenario.Load(dir)
	require.ErrorIs(t, err, simerrors.ErrUnknownShelf)
}

func TestLoadRejectsNegativeOrderTick(t *testing.T) {
	dir := validScenarioDir(t)
	writeFixture(t, dir, "orders.json", []map[string]any{
		{"id": 1, "tick": -1, "shelf_id": 1, "station_id": 1},
	})
	_, err := scenario.Load(dir)
	require.ErrorIs(t, err, simerrors.ErrNegativeTick)
}

func TestWriteMetricsRoundTrips(t *testing.T) {
	dir := t.TempDir()
	err := scenario.WriteMetrics(dir, metricsFixture())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "metrics.json"))
	require.NoError(t, err)
	require.Contains(t, string(data), "orders_completed")
}
