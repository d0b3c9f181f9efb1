// Package config loads planning scenarios from YAML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/planner"
	"github.com/qwertyBBeers/motion-planning/visualize"
	"github.com/qwertyBBeers/motion-planning/world"
	"github.com/qwertyBBeers/motion-planning/worldgen"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is a complete scenario. Fields absent from a file keep the values
// of Default.
type Config struct {
	LogLevel string `json:"log_level" yaml:"log_level"`
	// World, when set, replaces the random generator.
	World   *world.Spec   `json:"world,omitempty" yaml:"world,omitempty"`
	Random  RandomConfig  `json:"random" yaml:"random"`
	Planner PlannerConfig `json:"planner" yaml:"planner"`
	// Start and Goal are sampled from the world when unset.
	Start  *[3]float64  `json:"start,omitempty" yaml:"start,omitempty"`
	Goal   *[3]float64  `json:"goal,omitempty" yaml:"goal,omitempty"`
	Bench  BenchConfig  `json:"bench" yaml:"bench"`
	Output OutputConfig `json:"output" yaml:"output"`
}

type RandomConfig struct {
	worldgen.RandomWorld `yaml:",inline"`
	Seed                 uint64 `json:"seed" yaml:"seed"`
}

type PlannerConfig struct {
	Resolution    float64 `json:"resolution" yaml:"resolution"`
	AllowDiagonal bool    `json:"allow_diagonal" yaml:"allow_diagonal"`
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations"`
}

type BenchConfig struct {
	Runs    int    `json:"runs" yaml:"runs"`
	Workers int    `json:"workers" yaml:"workers"`
	Timeout string `json:"timeout" yaml:"timeout"` // duration string like "5s"
	// Database is the SQLite file runs are recorded to. Empty disables
	// recording.
	Database string `json:"database" yaml:"database"`
}

type OutputConfig struct {
	HTML string `json:"html" yaml:"html"`
	PNG  string `json:"png" yaml:"png"`
	View string `json:"view" yaml:"view"`
}

// Default returns the built-in scenario: a seeded random 10×10×10 world.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Random:   RandomConfig{RandomWorld: worldgen.Default(), Seed: 1},
		Planner:  PlannerConfig{Resolution: 0.5},
		Bench:    BenchConfig{Runs: 20, Workers: 4, Timeout: "10s"},
		Output:   OutputConfig{View: "iso"},
	}
}

// Load reads a config file, picking the decoder from the extension, and
// validates it.
func Load(path string) (*Config, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var c *Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		c, err = LoadYAML(f)
	case ".json":
		c, err = LoadJSON(f)
	default:
		return nil, fmt.Errorf("config file must be .yaml, .yml or .json, got %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadJSON decodes a config from JSON on top of Default.
func LoadJSON(r io.Reader) (*Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(c); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadYAML decodes a config from YAML on top of Default.
func LoadYAML(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return c, nil
}

// Validate checks the values the planner and generator would otherwise
// reject or panic on.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if c.World != nil {
		if _, err := c.World.Build(); err != nil {
			return invalid("world: %v", err)
		}
	} else {
		r := c.Random
		if _, err := world.New(r.BoundsMin, r.BoundsMax); err != nil {
			return invalid("random: %v", err)
		}
		if r.ObstacleCount < 0 {
			return invalid("random obstacle_count must be non-negative, got %d", r.ObstacleCount)
		}
		if r.SizeRange[0] <= 0 || r.SizeRange[0] > r.SizeRange[1] {
			return invalid("random size_range must satisfy 0 < min <= max, got %v", r.SizeRange)
		}
		if r.SphereRatio < 0 || r.SphereRatio > 1 {
			return invalid("random sphere_ratio must be between 0 and 1, got %f", r.SphereRatio)
		}
		if r.MaxTries <= 0 {
			return invalid("random max_tries must be positive, got %d", r.MaxTries)
		}
	}

	if c.Planner.Resolution <= 0 {
		return invalid("planner resolution must be positive, got %f", c.Planner.Resolution)
	}
	if c.Planner.MaxIterations < 0 {
		return invalid("planner max_iterations must be non-negative, got %d", c.Planner.MaxIterations)
	}

	if c.Bench.Runs < 0 {
		return invalid("bench runs must be non-negative, got %d", c.Bench.Runs)
	}
	if c.Bench.Workers <= 0 {
		return invalid("bench workers must be positive, got %d", c.Bench.Workers)
	}
	if _, err := c.Timeout(); err != nil {
		return invalid("bench timeout %q: %v", c.Bench.Timeout, err)
	}

	if _, err := visualize.ParseView(c.Output.View); err != nil {
		return invalid("output view: %v", err)
	}

	if _, err := zapLevel(c.LogLevel); err != nil {
		return invalid("log_level: %v", err)
	}
	return nil
}

// Timeout returns the per-run bench timeout; zero means none.
func (c *Config) Timeout() (time.Duration, error) {
	if c.Bench.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Bench.Timeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", d)
	}
	return d, nil
}

// View returns the configured projection for PNG output.
func (c *Config) View() visualize.View {
	v, err := visualize.ParseView(c.Output.View)
	if err != nil {
		return visualize.ViewIso
	}
	return v
}

// NewPlanner builds the grid A* planner described by the planner section.
func (c *Config) NewPlanner(logger *zap.Logger) *planner.AStar {
	return planner.NewAStar(
		planner.WithResolution(c.Planner.Resolution),
		planner.WithDiagonal(c.Planner.AllowDiagonal),
		planner.WithMaxIterations(c.Planner.MaxIterations),
		planner.WithLogger(logger),
	)
}

// Source returns the seeded random stream the scenario is drawn from.
func (c *Config) Source() rand.Source {
	return worldgen.NewSource(c.Random.Seed)
}

// Scenario builds the world and the endpoints. Random parts are drawn from
// src in a fixed order (world, start, goal) so a seed reproduces the whole
// scenario.
func (c *Config) Scenario(src rand.Source) (*world.World, geometry.Point3, geometry.Point3, error) {
	var w *world.World
	if c.World != nil {
		var err error
		if w, err = c.World.Build(); err != nil {
			return nil, geometry.Point3{}, geometry.Point3{}, fmt.Errorf("build world: %w", err)
		}
	} else {
		var err error
		if w, err = c.Random.Generate(src); err != nil {
			return nil, geometry.Point3{}, geometry.Point3{}, err
		}
	}

	sampler := c.Random.RandomWorld
	if sampler.MaxTries <= 0 {
		sampler.MaxTries = worldgen.Default().MaxTries
	}
	start := pointOr(c.Start, func() geometry.Point3 { return sampler.SampleFreePoint(w, src) })
	goal := pointOr(c.Goal, func() geometry.Point3 { return sampler.SampleFreePoint(w, src) })
	return w, start, goal, nil
}

func pointOr(p *[3]float64, sample func() geometry.Point3) geometry.Point3 {
	if p != nil {
		return geometry.Point3(*p)
	}
	return sample()
}

func zapLevel(level string) (zap.AtomicLevel, error) {
	if level == "" {
		return zap.NewAtomicLevel(), nil
	}
	return zap.ParseAtomicLevel(level)
}
