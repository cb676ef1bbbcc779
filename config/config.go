package config

import "time"

// Config represents the complete chainfold configuration
type Config struct {
	BaseDir   string          `yaml:"-"` // Directory containing config file, for resolving relative paths
	Path      string          `yaml:"-"` // Resolved config file path, empty when running on defaults
	Output    OutputConfig    `yaml:"output"`
	Batch     BatchConfig     `yaml:"batch"`
	History   HistoryConfig   `yaml:"history"`
	REPL      REPLConfig      `yaml:"repl"`
	Watch     WatchConfig     `yaml:"watch"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// OutputConfig controls how conversion results are written
type OutputConfig struct {
	Format       string `yaml:"format"`        // text, json, markdown or html
	SyntaxPrefix string `yaml:"syntax_prefix"` // Prefix for syntax errors in text output
	TypePrefix   string `yaml:"type_prefix"`   // Prefix for type errors in text output
}

// BatchConfig holds settings for converting many chains at once
type BatchConfig struct {
	Workers int `yaml:"workers"` // Concurrent conversions (0 = number of CPUs)
}

// HistoryConfig holds the conversion history store settings
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"` // Record every conversion
	Path    string `yaml:"path"`    // SQLite database file
	Cache   bool   `yaml:"cache"`   // Reuse stored results for repeated inputs
}

// REPLConfig holds interactive shell settings
type REPLConfig struct {
	HistoryFile string `yaml:"history_file"` // Line history, empty disables it
	Prompt      string `yaml:"prompt"`
}

// WatchConfig holds watch mode settings
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"` // Quiet period before re-running (default: 100ms)
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`     // OTLP/HTTP endpoint, e.g. localhost:4318; empty keeps spans in process
	ServiceName string `yaml:"service_name"` // Resource service name (default: "chainfold")
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// Defaults returns a Config with sensible defaults
func Defaults() *Config {
	return &Config{
		Output: OutputConfig{
			Format:       "text",
			SyntaxPrefix: "SYNTAX ERROR: ",
			TypePrefix:   "TYPE ERROR: ",
		},
		Batch: BatchConfig{
			Workers: 0,
		},
		History: HistoryConfig{
			Enabled: false,
			Path:    "chainfold.db",
			Cache:   true,
		},
		REPL: REPLConfig{
			HistoryFile: ".chainfold_history",
			Prompt:      "chainfold> ",
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			ServiceName: "chainfold",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
