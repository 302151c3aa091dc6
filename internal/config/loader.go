package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the specified file path.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Read the config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := DefaultConfig()

	// Unmarshal into config struct
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Perform environment variable substitution
	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	return cfg, nil
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := substituteEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("failed to substitute environment variables: %w", err)
	}

	return cfg, nil
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) error {
	// Substitute in store config
	cfg.Store.Path = expandEnvVar(cfg.Store.Path)
	cfg.Store.DSN = expandEnvVar(cfg.Store.DSN)

	// Substitute in output config
	cfg.Output.Dir = expandEnvVar(cfg.Output.Dir)
	for name, job := range cfg.Jobs {
		if job.Output != nil {
			job.Output.Dir = expandEnvVar(job.Output.Dir)
			cfg.Jobs[name] = job
		}
	}

	// Substitute in logging config
	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	return nil
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// GetJob retrieves a specific job configuration by name.
func (c *Config) GetJob(name string) (*JobConfig, error) {
	job, exists := c.Jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %q not found in configuration", name)
	}
	return &job, nil
}

// ListJobs returns all job names defined in the configuration, sorted.
func (c *Config) ListJobs() []string {
	jobs := make([]string, 0, len(c.Jobs))
	for name := range c.Jobs {
		jobs = append(jobs, name)
	}
	sort.Strings(jobs)
	return jobs
}

// ApplyOverrides applies CLI flag overrides to the global configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat string, maxRounds, batchSize, categoryCap, maxRecords int, sleepSeconds float64) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if maxRounds > 0 {
		c.Traversal.MaxRounds = maxRounds
	}
	if batchSize > 0 {
		c.Traversal.BatchSize = batchSize
	}
	if categoryCap > 0 {
		c.Traversal.CategoryCap = categoryCap
	}
	if maxRecords > 0 {
		c.Traversal.MaxRecords = maxRecords
	}
	if sleepSeconds > 0 {
		c.Traversal.SleepSeconds = sleepSeconds
	}
}

// ApplyJobOverrides applies CLI flag overrides to a specific job's traversal bounds.
// This creates a TraversalConfig that combines global, job-specific, and CLI values.
func (c *Config) ApplyJobOverrides(jobName string, maxRounds, batchSize, categoryCap, maxRecords int, sleepSeconds float64) TraversalConfig {
	traversal := c.GetJobTraversal(jobName)

	if maxRounds > 0 {
		traversal.MaxRounds = maxRounds
	}
	if batchSize > 0 {
		traversal.BatchSize = batchSize
	}
	if categoryCap > 0 {
		traversal.CategoryCap = categoryCap
	}
	if maxRecords > 0 {
		traversal.MaxRecords = maxRecords
	}
	if sleepSeconds > 0 {
		traversal.SleepSeconds = sleepSeconds
	}

	return traversal
}
