// Package testhelpers provides shared utilities for testing codeprofile
package testhelpers

import (
	"github.com/standardbeagle/codeprofile/internal/config"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// TestConfigBuilder provides a fluent API for building test configs with safe defaults
// Usage:
//
//	cfg := testhelpers.NewTestConfigBuilder(root).
//		WithExclusions("fixtures/").
//		WithMode(types.ScanModeDeep).
//		Build()
type TestConfigBuilder struct {
	projectRoot string
	exclusions  []string
	mode        types.ScanMode
	workers     int
	debounceMs  int
	gitignore   bool
}

// NewTestConfigBuilder creates a config builder with safe defaults for a project path:
// two workers, a short watch debounce and no ~/.codeprofile.kdl or .gitignore influence.
func NewTestConfigBuilder(projectRoot string) *TestConfigBuilder {
	return &TestConfigBuilder{
		projectRoot: projectRoot,
		mode:        types.ScanModeShallow,
		workers:     2,
		debounceMs:  50,
	}
}

// WithExclusions adds additional exclusion patterns
func (b *TestConfigBuilder) WithExclusions(patterns ...string) *TestConfigBuilder {
	b.exclusions = append(b.exclusions, patterns...)
	return b
}

// WithMode sets the scan mode
func (b *TestConfigBuilder) WithMode(mode types.ScanMode) *TestConfigBuilder {
	b.mode = mode
	return b
}

// WithWorkers sets the per-stage worker count
func (b *TestConfigBuilder) WithWorkers(n int) *TestConfigBuilder {
	b.workers = n
	return b
}

// WithDebounce sets the watch debounce in milliseconds
func (b *TestConfigBuilder) WithDebounce(ms int) *TestConfigBuilder {
	b.debounceMs = ms
	return b
}

// WithGitignore makes traversal honor the root .gitignore
func (b *TestConfigBuilder) WithGitignore() *TestConfigBuilder {
	b.gitignore = true
	return b
}

// Build creates the final test config with all settings
func (b *TestConfigBuilder) Build() *config.Config {
	cfg := config.Default(b.projectRoot)
	cfg.Project.Name = "test-project"
	cfg.Scan.Mode = b.mode
	cfg.Scan.RespectGitignore = b.gitignore
	cfg.Performance.Workers = b.workers
	cfg.Performance.WatchDebounceMs = b.debounceMs
	cfg.Exclude = append(cfg.Exclude, b.exclusions...)
	return cfg
}
