// Package config defines core configuration types for conwaymd.
// These types are pure data structures with no dependency on how a
// configuration file is discovered or loaded.
package config

// OutputFormat specifies the output format for conversion reports.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// Config is the root configuration structure for conwaymd.
type Config struct {
	// Properties overrides boilerplate properties for every converted
	// document, keyed by property name (lang, title, description, ...).
	Properties map[string]string `mapstructure:"properties" yaml:"properties"`

	// MaxIterations bounds placeholder resolution per document.
	// Zero means the built-in default.
	MaxIterations int `mapstructure:"max_iterations" yaml:"max_iterations"`

	// Verbose records rule traces for each converted document.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`

	// Ignore contains glob patterns for files to skip during discovery.
	Ignore []string `mapstructure:"ignore" yaml:"ignore"`

	// CLI-level options (not persisted to config files).

	// Jobs specifies the number of parallel conversion workers.
	Jobs int `mapstructure:"-" yaml:"-"`

	// DryRun converts without writing output files.
	DryRun bool `mapstructure:"-" yaml:"-"`

	// Format specifies the report output format.
	Format OutputFormat `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Properties: make(map[string]string),
		Ignore:     nil,
		Format:     FormatText,
		Jobs:       0, // 0 means use GOMAXPROCS
	}
}

// SetProperty records a single property override, initializing the
// map if needed.
func (c *Config) SetProperty(name, value string) {
	if c.Properties == nil {
		c.Properties = make(map[string]string)
	}
	c.Properties[name] = value
}
