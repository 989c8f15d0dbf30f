// Package config handles wexview configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Decoder DecoderConfig `yaml:"decoder"`
	Logging LoggingConfig `yaml:"logging"`
}

// DecoderConfig holds decode behavior settings.
type DecoderConfig struct {
	// Strict treats dropped geometry blocks as a failure instead of a
	// diagnostic.
	Strict bool `yaml:"strict"`
	// Progress enables byte-progress reporting on stderr.
	Progress bool `yaml:"progress"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Decoder: DecoderConfig{
			Strict:   false,
			Progress: false,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
