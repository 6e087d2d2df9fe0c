// Package config holds the runtime configuration for the run coordination
// core: logging, steering limits, and chunking defaults. Files may be
// YAML or JSON5; environment references like ${VAR} are expanded before
// parsing.
package config

import (
	"fmt"
)

// Config is the root configuration.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Steering SteeringConfig `yaml:"steering" json:"steering"`
	Chunking ChunkingConfig `yaml:"chunking" json:"chunking"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// SteeringConfig configures injection handling.
type SteeringConfig struct {
	// MaxInjectionLength caps sanitized injection content in runes.
	// Zero means the built-in default.
	MaxInjectionLength int `yaml:"max_injection_length" json:"max_injection_length"`

	// ExtraStopPhrases extends the built-in stop vocabulary.
	ExtraStopPhrases []string `yaml:"extra_stop_phrases" json:"extra_stop_phrases"`
}

// ChunkingConfig configures output chunking defaults.
type ChunkingConfig struct {
	// MaxLength is the default chunk size in bytes. Zero means the
	// built-in default.
	MaxLength int `yaml:"max_length" json:"max_length"`

	// PreserveHeaders keeps markdown headings at chunk starts. Nil means
	// enabled.
	PreserveHeaders *bool `yaml:"preserve_headers" json:"preserve_headers"`

	// AddChunkHeaders prefixes multi-chunk output with (i/total) markers.
	AddChunkHeaders bool `yaml:"add_chunk_headers" json:"add_chunk_headers"`

	// ChannelLimits overrides per-channel size ceilings.
	ChannelLimits map[string]int `yaml:"channel_limits" json:"channel_limits"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// PreserveHeadersEnabled resolves the tri-state flag, defaulting to true.
func (c ChunkingConfig) PreserveHeadersEnabled() bool {
	return c.PreserveHeaders == nil || *c.PreserveHeaders
}

// Validate rejects values the core cannot operate with.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	if c.Steering.MaxInjectionLength < 0 {
		return fmt.Errorf("steering.max_injection_length must not be negative")
	}
	if c.Chunking.MaxLength < 0 {
		return fmt.Errorf("chunking.max_length must not be negative")
	}
	for channel, limit := range c.Chunking.ChannelLimits {
		if limit <= 0 {
			return fmt.Errorf("chunking.channel_limits[%s] must be positive", channel)
		}
	}
	switch c.Logging.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}
