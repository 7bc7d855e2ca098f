package logging

// Config defines the structure for logging configuration in slate.yml.
type Config struct {
	// Level is the minimum log level to output (e.g., "debug", "info", "warn", "error").
	// Can be overridden by the SLATE_LOG_LEVEL environment variable.
	Level string `json:"level,omitempty" yaml:"level" toml:"level"`

	// ReportCaller, if true, includes the file, line, and function name in the log output.
	// Can be enabled with the SLATE_LOG_CALLER=true environment variable.
	ReportCaller bool `json:"report_caller,omitempty" yaml:"report_caller" toml:"report_caller"`

	// File configures logging to a file. Daemons default to a per-component
	// file under the slate state directory even when this is unset.
	File FileSinkConfig `json:"file,omitempty" yaml:"file" toml:"file"`

	// Format configures the appearance of the log output.
	Format FormatConfig `json:"format,omitempty" yaml:"format" toml:"format"`
}

// FileSinkConfig configures the file logging sink.
type FileSinkConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled" toml:"enabled"`
	// Path is the full path to the log file.
	Path string `json:"path,omitempty" yaml:"path" toml:"path"`
}

// FormatConfig controls the log output format.
type FormatConfig struct {
	// Preset can be "default" (text), "simple" (minimal text), or "json".
	Preset string `json:"preset,omitempty" yaml:"preset" toml:"preset"`
	// DisableTimestamp drops the timestamp from the text formats.
	DisableTimestamp bool `json:"disable_timestamp,omitempty" yaml:"disable_timestamp" toml:"disable_timestamp"`
	// DisableComponent drops the component name from the text formats.
	DisableComponent bool `json:"disable_component,omitempty" yaml:"disable_component" toml:"disable_component"`
}
