package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test store defaults
	if cfg.Store.Driver != "dir" {
		t.Errorf("expected store driver 'dir', got %s", cfg.Store.Driver)
	}
	if cfg.Store.Table != "records" {
		t.Errorf("expected store table 'records', got %s", cfg.Store.Table)
	}
	if cfg.Store.PathColumn != "path" {
		t.Errorf("expected path_column 'path', got %s", cfg.Store.PathColumn)
	}
	if cfg.Store.ContentColumn != "content" {
		t.Errorf("expected content_column 'content', got %s", cfg.Store.ContentColumn)
	}

	// Test traversal defaults
	if cfg.Traversal.MaxRounds != 10 {
		t.Errorf("expected max_rounds 10, got %d", cfg.Traversal.MaxRounds)
	}
	if cfg.Traversal.BatchSize != 25 {
		t.Errorf("expected batch_size 25, got %d", cfg.Traversal.BatchSize)
	}
	if cfg.Traversal.CategoryCap != 50 {
		t.Errorf("expected category_cap 50, got %d", cfg.Traversal.CategoryCap)
	}
	if cfg.Traversal.MaxRecords != 0 {
		t.Errorf("expected max_records 0 (unbounded), got %d", cfg.Traversal.MaxRecords)
	}

	// Test output defaults
	if cfg.Output.Dir != "export" {
		t.Errorf("expected output dir 'export', got %s", cfg.Output.Dir)
	}

	// Test verification defaults
	if cfg.Verification.Method != "count" {
		t.Errorf("expected verification method 'count', got %s", cfg.Verification.Method)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected logging format 'text', got %s", cfg.Logging.Format)
	}
}

func TestConfigJobsMap(t *testing.T) {
	// Test that jobs can be stored as a map
	cfg := &Config{
		Jobs: map[string]JobConfig{
			"export_weapons": {
				Seed: "Items.WeaponCatalog",
			},
			"export_quests": {
				Seed: "Quests.MainStoryline",
			},
		},
	}

	if len(cfg.Jobs) != 2 {
		t.Errorf("expected 2 jobs, got %d", len(cfg.Jobs))
	}

	job, exists := cfg.Jobs["export_weapons"]
	if !exists {
		t.Error("expected 'export_weapons' job to exist")
	}
	if job.Seed != "Items.WeaponCatalog" {
		t.Errorf("expected seed 'Items.WeaponCatalog', got %s", job.Seed)
	}
}

func TestGetJobTraversalFallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jobs = map[string]JobConfig{
		"plain": {Seed: "A.one"},
	}

	// Job without overrides uses the global traversal settings
	traversal := cfg.GetJobTraversal("plain")
	if traversal.MaxRounds != 10 {
		t.Errorf("expected global max_rounds 10, got %d", traversal.MaxRounds)
	}
	if traversal.BatchSize != 25 {
		t.Errorf("expected global batch_size 25, got %d", traversal.BatchSize)
	}

	// Unknown job also falls back to global
	traversal = cfg.GetJobTraversal("nonexistent")
	if traversal.MaxRounds != 10 {
		t.Errorf("expected global max_rounds 10 for unknown job, got %d", traversal.MaxRounds)
	}
}

func TestGetJobTraversalMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jobs = map[string]JobConfig{
		"deep": {
			Seed: "A.one",
			Traversal: &TraversalConfig{
				MaxRounds: 50,
				// BatchSize left zero, falls back to global
			},
		},
	}

	traversal := cfg.GetJobTraversal("deep")
	if traversal.MaxRounds != 50 {
		t.Errorf("expected job max_rounds 50, got %d", traversal.MaxRounds)
	}
	if traversal.BatchSize != 25 {
		t.Errorf("expected global batch_size 25, got %d", traversal.BatchSize)
	}
	if traversal.CategoryCap != 50 {
		t.Errorf("expected global category_cap 50, got %d", traversal.CategoryCap)
	}
}

func TestGetJobOutputMerge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Jobs = map[string]JobConfig{
		"custom_dir": {
			Seed:   "A.one",
			Output: &OutputConfig{Dir: "custom/export"},
		},
		"default_dir": {
			Seed: "B.two",
		},
	}

	out := cfg.GetJobOutput("custom_dir")
	if out.Dir != "custom/export" {
		t.Errorf("expected job output dir 'custom/export', got %s", out.Dir)
	}

	out = cfg.GetJobOutput("default_dir")
	if out.Dir != "export" {
		t.Errorf("expected global output dir 'export', got %s", out.Dir)
	}
}
