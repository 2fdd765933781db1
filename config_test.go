package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	assert.Equal(t, "tcp://localhost:1883", cfg.BrokerURL())
	assert.Equal(t, "data", cfg.Topic)
	assert.Equal(t, 10, cfg.GridSize)
	assert.Equal(t, 100, cfg.SensorCount())
	assert.Equal(t, 50.0, cfg.InitialMean)
	assert.Equal(t, 1.0, cfg.InitialNoise)
	assert.Equal(t, 5.0, cfg.SineAmplitude)
	assert.Equal(t, 300*time.Second, cfg.SinePeriod)
	assert.Equal(t, time.Second, cfg.UpdateInterval)
	assert.Equal(t, 50*time.Millisecond, cfg.InputInterval)
	assert.Empty(t, cfg.PostgresURL)
	assert.Empty(t, cfg.ValkeyAddr)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("MQTT_HOST", "broker.local")
	t.Setenv("MQTT_PORT", "8883")
	t.Setenv("GRID_SIZE", "2")
	t.Setenv("INITIAL_MEAN", "-12.5")
	t.Setenv("SINE_PERIOD", "60")
	t.Setenv("UPDATE_INTERVAL", "250ms")

	cfg := LoadConfig()
	assert.Equal(t, "tcp://broker.local:8883", cfg.BrokerURL())
	assert.Equal(t, 4, cfg.SensorCount())
	assert.Equal(t, -12.5, cfg.InitialMean)
	assert.Equal(t, time.Minute, cfg.SinePeriod)
	assert.Equal(t, 250*time.Millisecond, cfg.UpdateInterval)
}

func TestLoadConfigFallsBackOnGarbage(t *testing.T) {
	t.Setenv("MQTT_PORT", "abc")
	t.Setenv("INITIAL_NOISE", "lots")
	t.Setenv("DISPLAY_INTERVAL", "soon")

	cfg := LoadConfig()
	assert.Equal(t, 1883, cfg.MQTTPort)
	assert.Equal(t, 1.0, cfg.InitialNoise)
	assert.Equal(t, time.Second, cfg.DisplayInterval)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty grid", func(c *Config) { c.GridSize = 0 }},
		{"zero period", func(c *Config) { c.SinePeriod = 0 }},
		{"negative noise", func(c *Config) { c.InitialNoise = -0.1 }},
		{"zero update interval", func(c *Config) { c.UpdateInterval = 0 }},
		{"negative input interval", func(c *Config) { c.InputInterval = -time.Second }},
		{"empty topic", func(c *Config) { c.Topic = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidateAllowsNegativeMean(t *testing.T) {
	cfg := LoadConfig()
	cfg.InitialMean = -1000
	assert.NoError(t, cfg.Validate())
}
