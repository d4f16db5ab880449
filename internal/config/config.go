// Package config provides configuration management for the fleet
// simulator: the scheduling quantum, the allocation policy, and logging,
// unmarshalled the teacher's way via viper with defaults layered under
// whatever the caller has already loaded into it.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the simulator.
type Config struct {
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// SchedulerConfig holds the scheduling core's tunables.
type SchedulerConfig struct {
	SchedulingQuantumMs int64  `mapstructure:"scheduling_quantum_ms"`
	PlacementStrategy   string `mapstructure:"placement_strategy"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// DefaultConfig returns the configuration setDefaults would produce with
// no config file and no environment overrides present.
func DefaultConfig() Config {
	return Config{
		Scheduler: SchedulerConfig{
			SchedulingQuantumMs: 1000,
			PlacementStrategy:   "active-servers",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Load layers DefaultConfig's values into v as defaults and unmarshals the
// result. Reading a config file or environment variables into v — if the
// caller wants either — is the caller's responsibility; this package never
// touches the filesystem or the process environment.
func Load(v *viper.Viper) (Config, error) {
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("scheduler.scheduling_quantum_ms", d.Scheduler.SchedulingQuantumMs)
	v.SetDefault("scheduler.placement_strategy", d.Scheduler.PlacementStrategy)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
}
