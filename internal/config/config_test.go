package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/scottdwilson/fleetsim/internal/config"
)

func TestLoadDefaultsWithNoSidecar(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(42), cfg.Seed)
	require.Equal(t, 5, cfg.Robots)
	require.Equal(t, 1000, cfg.Horizon)
	require.Equal(t, dir, cfg.ScenarioDir)
}

func TestLoadReadsSidecar(t *testing.T) {
	dir := t.TempDir()
	yaml := "seed: 7\nrobots: 3\nhorizon_ticks: 500\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenario.yaml"), []byte(yaml), 0o644))

	cfg, err := config.Load(dir, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(7), cfg.Seed)
	require.Equal(t, 3, cfg.Robots)
	require.Equal(t, 500, cfg.Horizon)
}

func TestOverridesWinOverSidecar(t *testing.T) {
	dir := t.TempDir()
	yaml := "seed: 7\nrobots: 3\nhorizon_ticks: 500\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scenario.yaml"), []byte(yaml), 0o644))

	seed := int64(99)
	cfg, err := config.Load(dir, &seed, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(99), cfg.Seed)
	require.Equal(t, 3, cfg.Robots)
}

func TestWriteDefaultThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.WriteDefault(dir))

	cfg, err := config.Load(dir, nil, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(42), cfg.Seed)
	require.Equal(t, 5, cfg.Robots)
	require.Equal(t, 1000, cfg.Horizon)
}

func TestWriteDefaultRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, config.WriteDefault(dir))
	require.Error(t, config.WriteDefault(dir))
}
