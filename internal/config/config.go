// Package config provides configuration structures and loading for refdump.
package config

// Config represents the complete application configuration.
type Config struct {
	Store        StoreConfig          `yaml:"store" mapstructure:"store"`
	Jobs         map[string]JobConfig `yaml:"jobs" mapstructure:"jobs"`
	Traversal    TraversalConfig      `yaml:"traversal" mapstructure:"traversal"`
	Output       OutputConfig         `yaml:"output" mapstructure:"output"`
	Verification VerificationConfig   `yaml:"verification" mapstructure:"verification"`
	Logging      LoggingConfig        `yaml:"logging" mapstructure:"logging"`
}

// StoreConfig represents a record store connection configuration.
type StoreConfig struct {
	Driver        string `yaml:"driver" mapstructure:"driver"` // dir, zip, badger, mysql, postgres, sqlite
	Path          string `yaml:"path" mapstructure:"path"`     // root directory, archive file, or badger dir
	DSN           string `yaml:"dsn" mapstructure:"dsn"`       // SQL drivers only
	Table         string `yaml:"table" mapstructure:"table"`
	PathColumn    string `yaml:"path_column" mapstructure:"path_column"`
	ContentColumn string `yaml:"content_column" mapstructure:"content_column"`
}

// JobConfig represents a named export job configuration.
type JobConfig struct {
	Seed      string           `yaml:"seed" mapstructure:"seed"`
	Traversal *TraversalConfig `yaml:"traversal,omitempty" mapstructure:"traversal"`
	Output    *OutputConfig    `yaml:"output,omitempty" mapstructure:"output"`
}

// TraversalConfig represents traversal bound settings.
type TraversalConfig struct {
	MaxRounds    int     `yaml:"max_rounds" mapstructure:"max_rounds"`
	BatchSize    int     `yaml:"batch_size" mapstructure:"batch_size"`
	CategoryCap  int     `yaml:"category_cap" mapstructure:"category_cap"`
	MaxRecords   int     `yaml:"max_records" mapstructure:"max_records"` // 0 means unbounded
	SleepSeconds float64 `yaml:"sleep_seconds" mapstructure:"sleep_seconds"`
}

// OutputConfig represents export destination settings.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// VerificationConfig represents index verification settings.
type VerificationConfig struct {
	Method           string `yaml:"method" mapstructure:"method"` // "count" or "sha256"
	SkipVerification bool   `yaml:"skip_verification" mapstructure:"skip_verification"`
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
		Store: StoreConfig{
			Driver:        "dir",
			Table:         "records",
			PathColumn:    "path",
			ContentColumn: "content",
		},
		Traversal: TraversalConfig{
			MaxRounds:    10,
			BatchSize:    25,
			CategoryCap:  50,
			MaxRecords:   0,
			SleepSeconds: 0,
		},
		Output: OutputConfig{
			Dir: "export",
		},
		Verification: VerificationConfig{
			Method:           "count",
			SkipVerification: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// GetJobTraversal returns the traversal config for a job by name, falling back to global if not set.
func (c *Config) GetJobTraversal(jobName string) TraversalConfig {
	job, err := c.GetJob(jobName)
	if err != nil {
		return c.Traversal
	}
	return job.GetJobTraversal(c.Traversal)
}

// GetJobOutput returns the output config for a job by name, falling back to global if not set.
func (c *Config) GetJobOutput(jobName string) OutputConfig {
	job, err := c.GetJob(jobName)
	if err != nil {
		return c.Output
	}
	return job.GetJobOutput(c.Output)
}

// GetJobTraversal returns the traversal config for a job, falling back to global if not set.
func (jc *JobConfig) GetJobTraversal(global TraversalConfig) TraversalConfig {
	if jc.Traversal == nil {
		return global
	}

	// Merge job-specific with global defaults
	result := global
	if jc.Traversal.MaxRounds > 0 {
		result.MaxRounds = jc.Traversal.MaxRounds
	}
	if jc.Traversal.BatchSize > 0 {
		result.BatchSize = jc.Traversal.BatchSize
	}
	if jc.Traversal.CategoryCap > 0 {
		result.CategoryCap = jc.Traversal.CategoryCap
	}
	if jc.Traversal.MaxRecords > 0 {
		result.MaxRecords = jc.Traversal.MaxRecords
	}
	if jc.Traversal.SleepSeconds > 0 {
		result.SleepSeconds = jc.Traversal.SleepSeconds
	}
	return result
}

// GetJobOutput returns the output config for a job, falling back to global if not set.
func (jc *JobConfig) GetJobOutput(global OutputConfig) OutputConfig {
	if jc.Output == nil {
		return global
	}

	result := global
	if jc.Output.Dir != "" {
		result.Dir = jc.Output.Dir
	}
	return result
}
