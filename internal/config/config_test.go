// File: internal/config/config_test.go
package config

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "outbreak", cfg.Logger.ServiceName)
	assert.Equal(t, 1000, cfg.Simulation.Population)
	assert.Equal(t, 10, cfg.Simulation.Infected)
	assert.Equal(t, 50, cfg.Simulation.Days)
	assert.Equal(t, 10, cfg.Simulation.Trials)
	assert.Equal(t, int64(0), cfg.Simulation.Seed)
	assert.Equal(t, 2*time.Second, cfg.Engine.ProgressInterval)
	assert.Positive(t, cfg.Engine.Concurrency)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "simulate.csv", cfg.Output.SimulateFile)
	assert.Empty(t, cfg.Database.URL)

	assert.NoError(t, cfg.Validate(), "defaults must be valid on their own")
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	t.Run("Field Rules", func(t *testing.T) {
		tests := []struct {
			name    string
			mutate  func(*Config)
			wantErr string
		}{
			{"zero population", func(c *Config) { c.Simulation.Population = 0 }, "simulation.population must be greater than 0"},
			{"negative infected", func(c *Config) { c.Simulation.Infected = -1 }, "simulation.infected must be at least 0"},
			{"transmission above one", func(c *Config) { c.Simulation.TransmissionProbability = 1.5 }, "simulation.transmission_probability must be at most 1"},
			{"negative death probability", func(c *Config) { c.Simulation.DeathProbability = -0.1 }, "simulation.death_probability must be at least 0"},
			{"vaccination rate above one", func(c *Config) { c.Simulation.VaccinationRate = 2 }, "simulation.vaccination_rate must be at most 1"},
			{"zero days", func(c *Config) { c.Simulation.Days = 0 }, "simulation.days must be greater than 0"},
			{"zero trials", func(c *Config) { c.Simulation.Trials = 0 }, "simulation.trials must be greater than 0"},
			{"zero concurrency", func(c *Config) { c.Engine.Concurrency = 0 }, "engine.concurrency must be greater than 0"},
			{"unknown format", func(c *Config) { c.Output.Format = "xml" }, "output.format must be one of [csv json text]"},
			{"unknown log format", func(c *Config) { c.Logger.Format = "logfmt" }, "logger.format must be one of [console json]"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				cfg := NewDefaultConfig()
				tt.mutate(cfg)
				err := cfg.Validate()
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			})
		}
	})

	t.Run("NaN Probability", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Simulation.TransmissionProbability = math.NaN()
		assert.Error(t, cfg.Validate())
	})

	t.Run("Population Mix", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Simulation.Population = 10
		cfg.Simulation.Infected = 6
		cfg.Simulation.Vaccinated = 5
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds simulation.population")

		cfg.Simulation.Vaccinated = 4
		assert.NoError(t, cfg.Validate(), "a population made entirely of seeded states is allowed")
	})

	t.Run("Count And Rate Are Exclusive", func(t *testing.T) {
		cfg := NewDefaultConfig()
		cfg.Simulation.Vaccinated = 10
		cfg.Simulation.VaccinationRate = 0.1
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not both")
	})
}

func TestVaccinatedCount(t *testing.T) {
	s := SimulationConfig{Population: 1000, VaccinationRate: 0.25}
	assert.Equal(t, 250, s.VaccinatedCount())

	// Fractional results truncate toward zero.
	s = SimulationConfig{Population: 10, VaccinationRate: 0.15}
	assert.Equal(t, 1, s.VaccinatedCount())

	s = SimulationConfig{Population: 1000, Vaccinated: 7}
	assert.Equal(t, 7, s.VaccinatedCount())
}

// -- Factory Function Tests --

func TestNewConfigFromViper(t *testing.T) {
	t.Run("Successful Load from YAML", func(t *testing.T) {
		yamlBytes := []byte(`
simulation:
  population: 500
  infected: 5
  vaccination_rate: 0.2
  transmission_probability: 0.4
  seed: 99
engine:
  concurrency: 4
  progress_interval: 500ms
output:
  format: json
`)
		v := viper.New()
		SetDefaults(v)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlBytes)))

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)

		assert.Equal(t, 500, cfg.Simulation.Population)
		assert.Equal(t, 5, cfg.Simulation.Infected)
		assert.Equal(t, 100, cfg.Simulation.VaccinatedCount())
		assert.Equal(t, 0.4, cfg.Simulation.TransmissionProbability)
		assert.Equal(t, int64(99), cfg.Simulation.Seed)
		assert.Equal(t, 4, cfg.Engine.Concurrency)
		assert.Equal(t, 500*time.Millisecond, cfg.Engine.ProgressInterval)
		assert.Equal(t, "json", cfg.Output.Format)
		// Untouched keys keep their defaults.
		assert.Equal(t, 0.05, cfg.Simulation.DeathProbability)
		assert.Equal(t, "info", cfg.Logger.Level)
	})

	t.Run("Validation Failure", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)
		v.Set("engine.concurrency", 0)

		cfg, err := NewConfigFromViper(v)
		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "engine.concurrency must be greater than 0")
	})

	t.Run("Environment Variable Binding", func(t *testing.T) {
		v := viper.New()
		SetDefaults(v)

		yamlConfig := []byte(`
database:
  url: "postgres://configfile/db"
`)
		v.SetConfigType("yaml")
		require.NoError(t, v.ReadConfig(bytes.NewBuffer(yamlConfig)))

		testDBURL := "postgres://envvar/db"
		t.Setenv("OUTBREAK_DATABASE_URL", testDBURL)

		cfg, err := NewConfigFromViper(v)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		// The environment wins over the config file.
		assert.Equal(t, testDBURL, cfg.Database.URL)
	})
}

// -- Struct and Mapping Tests --

func TestConfigStructureMapping(t *testing.T) {
	yamlInput := `
logger:
  level: debug
  log_file: /var/log/outbreak.log
  colors:
    info: blue
simulation:
  days: 120
output:
  plot_file: chart.png
`
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(yamlInput)))

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "/var/log/outbreak.log", cfg.Logger.LogFile)
	assert.Equal(t, "blue", cfg.Logger.Colors.Info)
	assert.Equal(t, "red", cfg.Logger.Colors.Error)
	assert.Equal(t, 120, cfg.Simulation.Days)
	assert.Equal(t, "chart.png", cfg.Output.PlotFile)
}
