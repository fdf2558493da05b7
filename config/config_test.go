package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Source != "csv" {
		t.Fatalf("Source = %q, want csv", cfg.Source)
	}
	if cfg.DataDir != "dataset" {
		t.Fatalf("DataDir = %q, want dataset", cfg.DataDir)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.ResultsPath != "output/results.json" {
		t.Fatalf("ResultsPath = %q, want output/results.json", cfg.ResultsPath)
	}
	if cfg.TopProducts != 20 {
		t.Fatalf("TopProducts = %d, want 20", cfg.TopProducts)
	}
	if cfg.SaveToPostgres || cfg.Verbose {
		t.Fatalf("boolean flags should default to false: %+v", cfg)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ANALYTICS_SOURCE", "postgres")
	t.Setenv("ANALYTICS_DATA_DIR", "/data")
	t.Setenv("MAX_RETRIES", "7")
	t.Setenv("TOP_PRODUCTS", "5")
	t.Setenv("SAVE_TO_POSTGRES", "true")
	t.Setenv("VERBOSE", "1")

	cfg := Load()
	if cfg.Source != "postgres" || cfg.DataDir != "/data" {
		t.Fatalf("source overrides not applied: %+v", cfg)
	}
	if cfg.MaxRetries != 7 || cfg.TopProducts != 5 {
		t.Fatalf("int overrides not applied: %+v", cfg)
	}
	if !cfg.SaveToPostgres || !cfg.Verbose {
		t.Fatalf("bool overrides not applied: %+v", cfg)
	}
}

func TestLoad_InvalidEnvValuesFallBack(t *testing.T) {
	t.Setenv("MAX_RETRIES", "lots")
	t.Setenv("VERBOSE", "sure")

	cfg := Load()
	if cfg.MaxRetries != 3 {
		t.Fatalf("MaxRetries = %d, want default 3 for a non-numeric value", cfg.MaxRetries)
	}
	if cfg.Verbose {
		t.Fatal("Verbose should keep its default for an unparseable value")
	}
}

func TestApplyFile_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "source: mysql\ntop_products: 10\nverbose: true\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Load()
	if err := cfg.ApplyFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source != "mysql" || cfg.TopProducts != 10 || !cfg.Verbose {
		t.Fatalf("file overrides not applied: %+v", cfg)
	}
	// Fields absent from the file keep their prior values.
	if cfg.DataDir != "dataset" || cfg.MaxRetries != 3 {
		t.Fatalf("absent fields were clobbered: %+v", cfg)
	}
}

func TestApplyFile_Missing(t *testing.T) {
	cfg := Load()
	if err := cfg.ApplyFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestApplyFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("source: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := Load()
	if err := cfg.ApplyFile(path); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
