// Package config provides configuration structures and loading for GoReach.
package config

// Config represents the complete application configuration.
type Config struct {
	Source     SourceConfig     `yaml:"source" mapstructure:"source"`
	Schema     SchemaConfig     `yaml:"schema" mapstructure:"schema"`
	Processing ProcessingConfig `yaml:"processing" mapstructure:"processing"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Logging    LoggingConfig    `yaml:"logging" mapstructure:"logging"`
}

// Supported record store drivers.
const (
	DriverNDJSON = "ndjson"
	DriverMySQL  = "mysql"
)

// SourceConfig selects where record collections are read from.
type SourceConfig struct {
	Driver    string         `yaml:"driver" mapstructure:"driver"`       // ndjson or mysql
	Directory string         `yaml:"directory" mapstructure:"directory"` // ndjson: directory of <Type><extension> files
	Extension string         `yaml:"extension" mapstructure:"extension"` // ndjson: file extension, ".ndjson"
	MySQL     DatabaseConfig `yaml:"mysql" mapstructure:"mysql"`
}

// DatabaseConfig represents a MySQL connection holding one record per row.
type DatabaseConfig struct {
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`

	Table       string `yaml:"table" mapstructure:"table"`               // table holding all records
	TypeColumn  string `yaml:"type_column" mapstructure:"type_column"`   // column with the record type name
	BodyColumn  string `yaml:"body_column" mapstructure:"body_column"`   // column with the JSON document
	OrderColumn string `yaml:"order_column" mapstructure:"order_column"` // column giving collection order
}

// SchemaConfig declares the field-name conventions of the record format.
type SchemaConfig struct {
	IDField        string `yaml:"id_field" mapstructure:"id_field"`
	ReferenceField string `yaml:"reference_field" mapstructure:"reference_field"`
	StartType      string `yaml:"start_type" mapstructure:"start_type"`
	NameField      string `yaml:"name_field" mapstructure:"name_field"`
	FamilyField    string `yaml:"family_field" mapstructure:"family_field"`
	GivenField     string `yaml:"given_field" mapstructure:"given_field"`
}

// ProcessingConfig represents loading and traversal settings.
type ProcessingConfig struct {
	Workers      int  `yaml:"workers" mapstructure:"workers"`
	MaxDepth     int  `yaml:"max_depth" mapstructure:"max_depth"` // 0 = full closure
	MaxLineBytes int  `yaml:"max_line_bytes" mapstructure:"max_line_bytes"`
	WarmIndex    bool `yaml:"warm_index" mapstructure:"warm_index"`
}

// OutputConfig represents report rendering settings.
type OutputConfig struct {
	Format    string `yaml:"format" mapstructure:"format"` // table, json or yaml
	NoColor   bool   `yaml:"no_color" mapstructure:"no_color"`
	HideEmpty bool   `yaml:"hide_empty" mapstructure:"hide_empty"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Driver:    DriverNDJSON,
			Directory: "data",
			Extension: ".ndjson",
			MySQL: DatabaseConfig{
				Port:               3306,
				TLS:                "preferred",
				MaxConnections:     10,
				MaxIdleConnections: 5,
				Table:              "resources",
				TypeColumn:         "resource_type",
				BodyColumn:         "body",
				OrderColumn:        "id",
			},
		},
		Schema: SchemaConfig{
			IDField:        "id",
			ReferenceField: "reference",
			StartType:      "Patient",
			NameField:      "name",
			FamilyField:    "family",
			GivenField:     "given",
		},
		Processing: ProcessingConfig{
			Workers:      4,
			MaxDepth:     0,
			MaxLineBytes: 64 * 1024 * 1024,
		},
		Output: OutputConfig{
			Format: "table",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Overrides contains CLI flag values that take precedence over the config file.
// Zero values leave the configured value untouched.
type Overrides struct {
	DataDir   string
	LogLevel  string
	LogFormat string
	Workers   int
	MaxDepth  int
	Format    string
	NoColor   bool
	HideEmpty bool
}

// ApplyOverrides applies CLI flag overrides to the configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.DataDir != "" {
		c.Source.Directory = o.DataDir
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
	if o.LogFormat != "" {
		c.Logging.Format = o.LogFormat
	}
	if o.Workers > 0 {
		c.Processing.Workers = o.Workers
	}
	if o.MaxDepth > 0 {
		c.Processing.MaxDepth = o.MaxDepth
	}
	if o.Format != "" {
		c.Output.Format = o.Format
	}
	if o.NoColor {
		c.Output.NoColor = true
	}
	if o.HideEmpty {
		c.Output.HideEmpty = true
	}
}
