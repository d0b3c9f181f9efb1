package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qwertyBBeers/motion-planning/geometry"
	"github.com/qwertyBBeers/motion-planning/grid"
	"github.com/qwertyBBeers/motion-planning/visualize"
)

const explicitYAML = `
log_level: debug
world:
  bounds:
    min: [0, 0, 0]
    max: [4, 4, 4]
  obstacles:
    - sphere:
        center: [2, 2, 2]
        radius: 0.6
planner:
  resolution: 1
  allow_diagonal: true
start: [1, 1, 1]
goal: [3, 3, 3]
output:
  view: top
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Nil(t, c.World)
	assert.Equal(t, 0.5, c.Planner.Resolution)

	d, err := c.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)
	assert.Equal(t, visualize.ViewIso, c.View())
}

func TestLoadYAMLExplicitWorld(t *testing.T) {
	c, err := Load(writeFile(t, "scenario.yaml", explicitYAML))
	require.NoError(t, err)

	assert.Equal(t, "debug", c.LogLevel)
	require.NotNil(t, c.World)
	assert.Len(t, c.World.Obstacles, 1)
	assert.True(t, c.Planner.AllowDiagonal)
	assert.Equal(t, 1.0, c.Planner.Resolution)
	assert.Equal(t, visualize.ViewTop, c.View())
	// untouched sections keep their defaults
	assert.Equal(t, 4, c.Bench.Workers)

	w, start, goal, err := c.Scenario(c.Source())
	require.NoError(t, err)
	assert.Equal(t, 1, w.NumObstacles())
	assert.Equal(t, geometry.P(1, 1, 1), start)
	assert.Equal(t, geometry.P(3, 3, 3), goal)

	p := c.NewPlanner(zap.NewNop())
	assert.Equal(t, grid.Conn26, p.Connectivity())
	res := p.Plan(w, start, goal)
	assert.True(t, res.Success)
}

func TestLoadJSONRandomWorld(t *testing.T) {
	const doc = `{
		"random": {"bounds_min": [0, 0, 0], "bounds_max": [5, 5, 5], "obstacle_count": 3, "seed": 7},
		"bench": {"runs": 5, "workers": 2, "timeout": "250ms", "database": "runs.db"}
	}`
	c, err := Load(writeFile(t, "scenario.json", doc))
	require.NoError(t, err)

	assert.Equal(t, uint64(7), c.Random.Seed)
	assert.Equal(t, 3, c.Random.ObstacleCount)
	// fields absent from the random section keep the generator defaults
	assert.Equal(t, 200, c.Random.MaxTries)
	assert.Equal(t, 5, c.Bench.Runs)
	assert.Equal(t, "runs.db", c.Bench.Database)
	d, err := c.Timeout()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	w, start, goal, err := c.Scenario(c.Source())
	require.NoError(t, err)
	assert.Equal(t, 3, w.NumObstacles())
	assert.True(t, w.InBounds(start))
	assert.True(t, w.InBounds(goal))
	assert.False(t, w.Collides(start))
	assert.False(t, w.Collides(goal))
}

func TestScenarioIsReproducible(t *testing.T) {
	c := Default()
	w1, s1, g1, err := c.Scenario(c.Source())
	require.NoError(t, err)
	w2, s2, g2, err := c.Scenario(c.Source())
	require.NoError(t, err)

	assert.Equal(t, w1.Fingerprint(), w2.Fingerprint())
	assert.Equal(t, s1, s2)
	assert.Equal(t, g1, g2)

	c.Random.Seed = 2
	w3, _, _, err := c.Scenario(c.Source())
	require.NoError(t, err)
	assert.NotEqual(t, w1.Fingerprint(), w3.Fingerprint())
}

func TestLoadEmptyYAMLKeepsDefaults(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("planner:\n  resolutoin: 1\n"))
	assert.Error(t, err)

	_, err = LoadJSON(strings.NewReader(`{"planer": {}}`))
	assert.Error(t, err)
}

func TestLoadRejectsExtension(t *testing.T) {
	_, err := Load(writeFile(t, "scenario.toml", ""))
	assert.ErrorContains(t, err, "must be .yaml")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"resolution", func(c *Config) { c.Planner.Resolution = 0 }},
		{"max iterations", func(c *Config) { c.Planner.MaxIterations = -1 }},
		{"bounds", func(c *Config) { c.Random.BoundsMax = geometry.P(-1, 10, 10) }},
		{"infinite bounds", func(c *Config) { c.Random.BoundsMax = geometry.P(10, math.Inf(1), 10) }},
		{"size range", func(c *Config) { c.Random.SizeRange = [2]float64{2, 1} }},
		{"sphere ratio", func(c *Config) { c.Random.SphereRatio = 1.5 }},
		{"max tries", func(c *Config) { c.Random.MaxTries = 0 }},
		{"obstacle count", func(c *Config) { c.Random.ObstacleCount = -1 }},
		{"workers", func(c *Config) { c.Bench.Workers = 0 }},
		{"runs", func(c *Config) { c.Bench.Runs = -1 }},
		{"timeout", func(c *Config) { c.Bench.Timeout = "soon" }},
		{"negative timeout", func(c *Config) { c.Bench.Timeout = "-1s" }},
		{"view", func(c *Config) { c.Output.View = "oblique" }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig), err.Error())
		})
	}
}

func TestValidateExplicitWorld(t *testing.T) {
	c, err := LoadYAML(strings.NewReader(explicitYAML))
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	c.World.Bounds.Max = [3]float64{-1, 4, 4}
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}
