package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateSource()...)
	errors = append(errors, c.validateSchema()...)
	errors = append(errors, c.validateProcessing()...)
	errors = append(errors, c.validateOutput()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateSource() ValidationErrors {
	var errors ValidationErrors

	switch c.Source.Driver {
	case DriverNDJSON, "":
		if c.Source.Directory == "" {
			errors = append(errors, ValidationError{
				Field:   "source.directory",
				Message: "directory is required for the ndjson driver",
			})
		}
		if c.Source.Extension != "" && !strings.HasPrefix(c.Source.Extension, ".") {
			errors = append(errors, ValidationError{
				Field:   "source.extension",
				Message: "extension must start with '.'",
			})
		}
	case DriverMySQL:
		errors = append(errors, c.validateDatabase("source.mysql", &c.Source.MySQL)...)
	default:
		errors = append(errors, ValidationError{
			Field:   "source.driver",
			Message: "driver must be 'ndjson' or 'mysql'",
		})
	}

	return errors
}

func (c *Config) validateDatabase(prefix string, db *DatabaseConfig) ValidationErrors {
	var errors ValidationErrors

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".database",
			Message: "database name is required",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	columns := map[string]string{
		"table":        db.Table,
		"type_column":  db.TypeColumn,
		"body_column":  db.BodyColumn,
		"order_column": db.OrderColumn,
	}
	for _, key := range []string{"table", "type_column", "body_column", "order_column"} {
		if columns[key] == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + "." + key,
				Message: key + " is required",
			})
		}
	}

	return errors
}

func (c *Config) validateSchema() ValidationErrors {
	var errors ValidationErrors

	required := []struct {
		field string
		value string
	}{
		{"schema.id_field", c.Schema.IDField},
		{"schema.reference_field", c.Schema.ReferenceField},
		{"schema.start_type", c.Schema.StartType},
	}
	for _, r := range required {
		if r.value == "" {
			errors = append(errors, ValidationError{
				Field:   r.field,
				Message: "value is required",
			})
		}
	}

	if c.Schema.IDField != "" && c.Schema.IDField == c.Schema.ReferenceField {
		errors = append(errors, ValidationError{
			Field:   "schema.reference_field",
			Message: "reference_field must differ from id_field",
		})
	}

	return errors
}

func (c *Config) validateProcessing() ValidationErrors {
	var errors ValidationErrors

	if c.Processing.Workers <= 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.workers",
			Message: "workers must be positive",
		})
	}

	if c.Processing.MaxDepth < 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.max_depth",
			Message: "max_depth cannot be negative",
		})
	}

	if c.Processing.MaxLineBytes < 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.max_line_bytes",
			Message: "max_line_bytes cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateOutput() ValidationErrors {
	var errors ValidationErrors

	validFormats := map[string]bool{"table": true, "json": true, "yaml": true, "": true}
	if !validFormats[c.Output.Format] {
		errors = append(errors, ValidationError{
			Field:   "output.format",
			Message: "format must be 'table', 'json', or 'yaml'",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}
