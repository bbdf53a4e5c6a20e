package solver

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 600, cfg.NumSteps())
	assert.Equal(t, 6, cfg.Order)
	assert.Equal(t, 4, cfg.Geometry.Nx)
	assert.Equal(t, 0.005, cfg.Dt)
	assert.Equal(t, 3.0, cfg.TotalTime)
	assert.Equal(t, 0.18, cfg.Core.NuSigmaF)
	assert.Equal(t, 0.0, cfg.Reflector.NuSigmaF)
	assert.Equal(t, 800.0, cfg.Feedback.TRef)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(`{
		"order": 4,
		"dt": 0.01,
		"thermal": {"heat_capacity": 50, "cooling_time_constant": 2, "t_coolant": 550}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Order)
	assert.Equal(t, 0.01, cfg.Dt)
	assert.Equal(t, 50.0, cfg.Thermal.HeatCapacity)
	// Untouched values keep their defaults.
	assert.Equal(t, 30.0, cfg.Geometry.Lx)
	assert.Equal(t, 0.18, cfg.Core.NuSigmaF)
}

func TestLoadConfigRejectsUnknownFields(t *testing.T) {
	_, err := LoadConfig(strings.NewReader(`{"ordre": 4}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero order", func(c *Config) { c.Order = 0 }},
		{"zero nx", func(c *Config) { c.Geometry.Nx = 0 }},
		{"negative ny", func(c *Config) { c.Geometry.Ny = -2 }},
		{"zero domain", func(c *Config) { c.Geometry.Lx = 0 }},
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"total shorter than dt", func(c *Config) { c.TotalTime = 0.001 }},
		{"zero heat capacity", func(c *Config) { c.Thermal.HeatCapacity = 0 }},
		{"zero cooling time", func(c *Config) { c.Thermal.CoolingTime = 0 }},
		{"negative cadence", func(c *Config) { c.RenderEvery = -1 }},
		{"zero tolerance", func(c *Config) { c.EigenTol = 0 }},
		{"zero max iterations", func(c *Config) { c.EigenMaxIter = 0 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrConfiguration))
		})
	}
}
