// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for every environment variable override (OUTBREAK_SIMULATION_DAYS, ...).
const EnvPrefix = "OUTBREAK"

// Config holds the entire application configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Simulation SimulationConfig `mapstructure:"simulation" yaml:"simulation"`
	Engine     EngineConfig     `mapstructure:"engine" yaml:"engine"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output"`
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format" validate:"omitempty,oneof=console json"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// SimulationConfig holds the epidemic parameters shared by every command.
type SimulationConfig struct {
	Population int `mapstructure:"population" yaml:"population" validate:"gt=0"`
	Infected   int `mapstructure:"infected" yaml:"infected" validate:"gte=0"`
	// Vaccinated is an explicit count. When zero, VaccinationRate decides instead.
	Vaccinated              int     `mapstructure:"vaccinated" yaml:"vaccinated" validate:"gte=0"`
	VaccinationRate         float64 `mapstructure:"vaccination_rate" yaml:"vaccination_rate" validate:"gte=0,lte=1"`
	TransmissionProbability float64 `mapstructure:"transmission_probability" yaml:"transmission_probability" validate:"gte=0,lte=1"`
	DeathProbability        float64 `mapstructure:"death_probability" yaml:"death_probability" validate:"gte=0,lte=1"`
	Days                    int     `mapstructure:"days" yaml:"days" validate:"gt=0"`
	Trials                  int     `mapstructure:"trials" yaml:"trials" validate:"gt=0"`
	// Seed makes a run reproducible. Zero means draw a fresh seed per run.
	Seed int64 `mapstructure:"seed" yaml:"seed"`
}

// VaccinatedCount resolves the number of initially vaccinated individuals.
func (s SimulationConfig) VaccinatedCount() int {
	if s.Vaccinated > 0 {
		return s.Vaccinated
	}
	return int(s.VaccinationRate * float64(s.Population))
}

// EngineConfig controls how trials are executed.
type EngineConfig struct {
	Concurrency      int           `mapstructure:"concurrency" yaml:"concurrency" validate:"gt=0"`
	ProgressInterval time.Duration `mapstructure:"progress_interval" yaml:"progress_interval" validate:"gte=0"`
}

// OutputConfig controls where tables and charts are written.
type OutputConfig struct {
	Format       string `mapstructure:"format" yaml:"format" validate:"oneof=csv json text"`
	SimulateFile string `mapstructure:"simulate_file" yaml:"simulate_file"`
	AnalyzeFile  string `mapstructure:"analyze_file" yaml:"analyze_file"`
	// PlotFile, when set, receives a PNG chart of the run.
	PlotFile string `mapstructure:"plot_file" yaml:"plot_file"`
}

// DatabaseConfig holds the database connection details. Persistence is off when URL is empty.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "outbreak")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Simulation --
	v.SetDefault("simulation.population", 1000)
	v.SetDefault("simulation.infected", 10)
	v.SetDefault("simulation.vaccinated", 0)
	v.SetDefault("simulation.vaccination_rate", 0.0)
	v.SetDefault("simulation.transmission_probability", 0.05)
	v.SetDefault("simulation.death_probability", 0.05)
	v.SetDefault("simulation.days", 50)
	v.SetDefault("simulation.trials", 10)
	v.SetDefault("simulation.seed", 0)

	// -- Engine --
	v.SetDefault("engine.concurrency", runtime.NumCPU())
	v.SetDefault("engine.progress_interval", "2s")

	// -- Output --
	v.SetDefault("output.format", "csv")
	v.SetDefault("output.simulate_file", "simulate.csv")
	v.SetDefault("output.analyze_file", "analyze.csv")
	v.SetDefault("output.plot_file", "")

	// -- Database --
	v.SetDefault("database.url", "")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// The connection string usually carries a password, so it is bound explicitly.
	if err := v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("error binding database url: %w", err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

var validate = newValidator()

// newValidator reports field errors by their config key rather than the Go field name.
func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return val
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return translateValidationError(err)
	}
	return c.Simulation.Validate()
}

// Validate checks the cross-field rules of the simulation section.
func (s *SimulationConfig) Validate() error {
	if s.Vaccinated > 0 && s.VaccinationRate > 0 {
		return fmt.Errorf("set either simulation.vaccinated or simulation.vaccination_rate, not both")
	}
	if s.Infected+s.VaccinatedCount() > s.Population {
		return fmt.Errorf("simulation.infected (%d) + vaccinated (%d) exceeds simulation.population (%d)",
			s.Infected, s.VaccinatedCount(), s.Population)
	}
	return nil
}

func translateValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		switch fe.Tag() {
		case "gt":
			msgs = append(msgs, fmt.Sprintf("%s must be greater than %s", key, fe.Param()))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be at least %s", key, fe.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s", key, fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", key, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed the '%s' check", key, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
