package archetypedb

import (
	"github.com/JeremyLoy/config"
	"gopkg.in/yaml.v3"
)

// EngineConfig tunes the growth heuristics ComponentArray uses,
// overridable from the environment the way game/nakama/config.go loads
// its own Config via config.FromEnv().To(&cfg).
type EngineConfig struct {
	InitialEntityCapacity int `config:"ARCHETYPEDB_INITIAL_ENTITY_CAPACITY"`
	MinOccupied           int `config:"ARCHETYPEDB_MIN_OCCUPIED"`
	GrowthNumerator       int `config:"ARCHETYPEDB_GROWTH_NUMERATOR"`
	GrowthDenominator     int `config:"ARCHETYPEDB_GROWTH_DENOMINATOR"`
}

// LoadEngineConfig returns the default engine tuning, overridden by any
// ARCHETYPEDB_* environment variables that are set.
func LoadEngineConfig() (EngineConfig, error) {
	cfg := EngineConfig{
		InitialEntityCapacity: 1024,
		MinOccupied:           minOccupied,
		GrowthNumerator:       3,
		GrowthDenominator:     2,
	}
	if err := config.FromEnv().To(&cfg); err != nil {
		return EngineConfig{}, err
	}
	return cfg, nil
}

// LoggerConfig selects the zap encoding/level/output NewLogger builds.
// It is typically loaded from a small YAML document rather than the
// environment, since it changes per deployment (a batch job wanting JSON
// logs to a file, a CLI wanting console output to stderr) rather than
// per developer machine.
type LoggerConfig struct {
	Level       string   `yaml:"level"`
	Encoding    string   `yaml:"encoding"`
	OutputPaths []string `yaml:"outputPaths"`
}

// ParseLoggerConfig decodes a YAML document into a LoggerConfig. Empty or
// absent fields fall back to NewLogger's defaults.
func ParseLoggerConfig(doc []byte) (LoggerConfig, error) {
	var cfg LoggerConfig
	if len(doc) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(doc, &cfg); err != nil {
		return LoggerConfig{}, err
	}
	return cfg, nil
}

func (c LoggerConfig) levelOrDefault() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

func (c LoggerConfig) encodingOrDefault() string {
	if c.Encoding == "" {
		return "json"
	}
	return c.Encoding
}

func (c LoggerConfig) outputPathsOrDefault() []string {
	if len(c.OutputPaths) == 0 {
		return []string{"stderr"}
	}
	return c.OutputPaths
}
