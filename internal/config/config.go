// Package config implements the layered configuration the CLI resolves
// before calling into the simulation core, grounded on the retrieved
// tabular example's own viper-based FromYaml loader: a scenario.yaml
// sidecar read through github.com/spf13/viper, with explicit flags (bound
// via pflag through cobra) taking precedence over file values and file
// values taking precedence over the package's own defaults. No simulation
// core package consults viper, os.Getenv, or any config file directly —
// only this package and the CLI that owns it do, keeping the core a pure
// function of (scenario_dir, seed, robots, horizon_ticks) per §6.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// RunConfig is the fully resolved set of parameters Run() needs.
type RunConfig struct {
	ScenarioDir string
	Seed        int64
	Robots      int
	Horizon     int
}

const (
	defaultRobots  = 5
	defaultHorizon = 1000
	defaultSeed    = 42
)

// Load reads scenario.yaml out of scenarioDir if present, lets it override
// the package defaults, and lets the explicit overrides (typically CLI
// flags the caller has already parsed) override the file in turn. A missing
// sidecar file is not an error — as with the tabular example's own config
// loader, absence just means "use defaults."
func Load(scenarioDir string, seedOverride, robotsOverride, horizonOverride *int64) (RunConfig, error) {
	vp := viper.New()
	vp.SetConfigName("scenario")
	vp.SetConfigType("yaml")
	vp.AddConfigPath(scenarioDir)
	vp.SetEnvPrefix("FLEETSIM")
	vp.AutomaticEnv()

	vp.SetDefault("seed", defaultSeed)
	vp.SetDefault("robots", defaultRobots)
	vp.SetDefault("horizon_ticks", defaultHorizon)

	if err := vp.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return RunConfig{}, fmt.Errorf("config: reading %s: %w", filepath.Join(scenarioDir, "scenario.yaml"), err)
		}
	}

	cfg := RunConfig{
		ScenarioDir: scenarioDir,
		Seed:        vp.GetInt64("seed"),
		Robots:      vp.GetInt("robots"),
		Horizon:     vp.GetInt("horizon_ticks"),
	}

	if seedOverride != nil {
		cfg.Seed = *seedOverride
	}
	if robotsOverride != nil {
		cfg.Robots = int(*robotsOverride)
	}
	if horizonOverride != nil {
		cfg.Horizon = int(*horizonOverride)
	}

	return cfg, nil
}

// sidecar is the on-disk shape of scenario.yaml, marshaled directly with
// gopkg.in/yaml.v3 rather than through viper, since writing a fresh sidecar
// is a one-shot operation with no layering to resolve.
type sidecar struct {
	Seed         int64 `yaml:"seed"`
	Robots       int   `yaml:"robots"`
	HorizonTicks int   `yaml:"horizon_ticks"`
}

// WriteDefault writes a scenario.yaml sidecar populated with this package's
// defaults into dir, for an operator scaffolding a new scenario directory.
// It refuses to overwrite an existing sidecar.
func WriteDefault(dir string) error {
	path := filepath.Join(dir, "scenario.yaml")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config: %s already exists", path)
	}
	data, err := yaml.Marshal(sidecar{Seed: defaultSeed, Robots: defaultRobots, HorizonTicks: defaultHorizon})
	if err != nil {
		return fmt.Errorf("config: marshaling default sidecar: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}
