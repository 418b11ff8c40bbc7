package config

import (
	"os"
	"path/filepath"
	"testing"

	cperrors "github.com/standardbeagle/codeprofile/internal/errors"
	"github.com/standardbeagle/codeprofile/internal/types"
)

func TestValidateAndSetDefaults(t *testing.T) {
	cfg := Default(t.TempDir())
	cfg.Performance.Workers = 0
	cfg.Graph.CentralLimit = 0

	validator := NewValidator()
	if err := validator.ValidateAndSetDefaults(cfg); err != nil {
		t.Fatalf("ValidateAndSetDefaults failed: %v", err)
	}

	if cfg.Performance.Workers < 1 {
		t.Errorf("Workers should have been set from the CPU count, got %d", cfg.Performance.Workers)
	}
	if cfg.Graph.CentralLimit != types.DefaultCentralLimit {
		t.Errorf("CentralLimit should default to %d, got %d", types.DefaultCentralLimit, cfg.Graph.CentralLimit)
	}
}

func TestValidateProjectConfig(t *testing.T) {
	validator := NewValidator()
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		root    string
		wantErr bool
	}{
		{"existing directory", dir, false},
		{"empty root", "", true},
		{"missing root", filepath.Join(dir, "nope"), true},
		{"root is a file", file, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.validateProjectConfig(&Project{Root: tt.root})
			if (err != nil) != tt.wantErr {
				t.Errorf("validateProjectConfig(%q) error = %v, wantErr %v", tt.root, err, tt.wantErr)
			}
		})
	}
}

func TestValidateErrorsAreConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad mode", func(c *Config) { c.Scan.Mode = "turbo" }},
		{"zero max file size", func(c *Config) { c.Scan.MaxFileSize = 0 }},
		{"deep sample smaller than shallow", func(c *Config) { c.Scan.DeepSampleBytes = 10 }},
		{"negative graph cap", func(c *Config) { c.Graph.DeepMaxFiles = -1 }},
		{"negative workers", func(c *Config) { c.Performance.Workers = -2 }},
		{"threshold above 100", func(c *Config) { c.Thresholds.PrimaryLanguage = 101 }},
		{"zero repeats", func(c *Config) { c.Thresholds.CodePatternMinRepeats = 0 }},
		{"negative weight", func(c *Config) { c.Heuristics.SetWeight("MVC", IndicatorDir, "models", -5) }},
		{"marker confidence out of range", func(c *Config) { c.Heuristics.MarkerConfidence = 150 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default(t.TempDir())
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !cperrors.IsConfigError(err) {
				t.Errorf("expected a ConfigError, got %T", err)
			}
		})
	}
}

func TestSuggestKey(t *testing.T) {
	known := []string{"workers", "timeout_sec", "cache_size", "watch_debounce_ms"}

	tests := []struct {
		key  string
		want string
	}{
		{"worker", "workers"},
		{"cache_sise", "cache_size"},
		{"timeout", "timeout_sec"},
		{"zzzzzz", ""},
	}

	for _, tt := range tests {
		if got := SuggestKey(tt.key, known); got != tt.want {
			t.Errorf("SuggestKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestUnknownKeyMessage(t *testing.T) {
	msg := unknownKeyMessage("scan", "mdoe", knownKeys["scan"])
	want := `unknown key "scan.mdoe", did you mean "mode"?`
	if msg != want {
		t.Errorf("got %q, want %q", msg, want)
	}

	msg = unknownKeyMessage("", "qqqq", knownKeys[""])
	want = `unknown key "qqqq" ignored`
	if msg != want {
		t.Errorf("got %q, want %q", msg, want)
	}
}
