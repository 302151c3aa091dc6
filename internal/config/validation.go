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

	// Validate store connection
	if err := c.validateStore(); err != nil {
		errors = append(errors, err...)
	}

	// Validate jobs
	for name, job := range c.Jobs {
		if err := c.validateJob(name, &job); err != nil {
			errors = append(errors, err...)
		}
	}

	// Validate traversal bounds
	if err := c.validateTraversal("traversal", &c.Traversal); err != nil {
		errors = append(errors, err...)
	}

	// Validate output settings
	if err := c.validateOutput(); err != nil {
		errors = append(errors, err...)
	}

	// Validate verification settings
	if err := c.validateVerification(); err != nil {
		errors = append(errors, err...)
	}

	// Validate logging settings
	if err := c.validateLogging(); err != nil {
		errors = append(errors, err...)
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateStore() ValidationErrors {
	var errors ValidationErrors

	validDrivers := map[string]bool{
		"dir": true, "zip": true, "badger": true,
		"mysql": true, "postgres": true, "sqlite": true,
	}
	if !validDrivers[c.Store.Driver] {
		errors = append(errors, ValidationError{
			Field:   "store.driver",
			Message: "driver must be 'dir', 'zip', 'badger', 'mysql', 'postgres', or 'sqlite'",
		})
		return errors
	}

	switch c.Store.Driver {
	case "dir", "zip", "badger":
		if c.Store.Path == "" {
			errors = append(errors, ValidationError{
				Field:   "store.path",
				Message: fmt.Sprintf("path is required for the %s driver", c.Store.Driver),
			})
		}
	case "mysql", "postgres", "sqlite":
		if c.Store.DSN == "" {
			errors = append(errors, ValidationError{
				Field:   "store.dsn",
				Message: fmt.Sprintf("dsn is required for the %s driver", c.Store.Driver),
			})
		}
		if c.Store.Table == "" {
			errors = append(errors, ValidationError{
				Field:   "store.table",
				Message: "table is required for SQL drivers",
			})
		}
		if c.Store.PathColumn == "" {
			errors = append(errors, ValidationError{
				Field:   "store.path_column",
				Message: "path_column is required for SQL drivers",
			})
		}
		if c.Store.ContentColumn == "" {
			errors = append(errors, ValidationError{
				Field:   "store.content_column",
				Message: "content_column is required for SQL drivers",
			})
		}
	}

	return errors
}

func (c *Config) validateJob(name string, job *JobConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("jobs.%s", name)

	if job.Seed == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".seed",
			Message: "seed is required",
		})
	} else if !strings.Contains(job.Seed, ".") {
		errors = append(errors, ValidationError{
			Field:   prefix + ".seed",
			Message: "seed must be a dotted namespace.name path",
		})
	}

	if job.Traversal != nil {
		if err := c.validateTraversalOverride(prefix+".traversal", job.Traversal); err != nil {
			errors = append(errors, err...)
		}
	}

	if job.Output != nil && job.Output.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".output.dir",
			Message: "dir cannot be empty when output is set",
		})
	}

	return errors
}

func (c *Config) validateTraversal(prefix string, t *TraversalConfig) ValidationErrors {
	var errors ValidationErrors

	if t.MaxRounds <= 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_rounds",
			Message: "max_rounds must be positive",
		})
	}

	if t.BatchSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".batch_size",
			Message: "batch_size must be positive",
		})
	}

	if t.CategoryCap <= 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".category_cap",
			Message: "category_cap must be positive",
		})
	}

	if t.MaxRecords < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_records",
			Message: "max_records cannot be negative",
		})
	}

	if t.SleepSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".sleep_seconds",
			Message: "sleep_seconds cannot be negative",
		})
	}

	return errors
}

// validateTraversalOverride allows zero values, which fall back to the global setting.
func (c *Config) validateTraversalOverride(prefix string, t *TraversalConfig) ValidationErrors {
	var errors ValidationErrors

	if t.MaxRounds < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_rounds",
			Message: "max_rounds cannot be negative",
		})
	}

	if t.BatchSize < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".batch_size",
			Message: "batch_size cannot be negative",
		})
	}

	if t.CategoryCap < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".category_cap",
			Message: "category_cap cannot be negative",
		})
	}

	if t.MaxRecords < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max_records",
			Message: "max_records cannot be negative",
		})
	}

	if t.SleepSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".sleep_seconds",
			Message: "sleep_seconds cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateOutput() ValidationErrors {
	var errors ValidationErrors

	if c.Output.Dir == "" {
		errors = append(errors, ValidationError{
			Field:   "output.dir",
			Message: "dir is required",
		})
	}

	return errors
}

func (c *Config) validateVerification() ValidationErrors {
	var errors ValidationErrors

	validMethods := map[string]bool{"count": true, "sha256": true, "": true}
	if !validMethods[c.Verification.Method] {
		errors = append(errors, ValidationError{
			Field:   "verification.method",
			Message: "method must be 'count' or 'sha256'",
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
