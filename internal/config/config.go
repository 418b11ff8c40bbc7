package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// ConfigFileName is the project-local (and home directory) config file.
const ConfigFileName = ".codeprofile.kdl"

type Config struct {
	Version     int
	Project     Project
	Scan        Scan
	Graph       Graph
	Performance Performance
	Thresholds  Thresholds
	Heuristics  Heuristics
	Include     []string
	Exclude     []string // applied before .gitignore and caller patterns
}

type Project struct {
	Root string
	Name string
}

type Scan struct {
	Mode               types.ScanMode
	MaxFileSize        int64 // files above this are recorded but never sampled
	ShallowSampleBytes int
	DeepSampleBytes    int
	FollowSymlinks     bool
	RespectGitignore   bool // append the root .gitignore to the active patterns
}

type Graph struct {
	ShallowMaxFiles int
	DeepMaxFiles    int
	CentralLimit    int
}

type Performance struct {
	Workers         int // 0 = auto-detect (NumCPU-1, min 1)
	TimeoutSec      int // 0 = no deadline
	CacheSize       int // result cache entries
	WatchDebounceMs int
}

type Thresholds struct {
	PrimaryLanguage       float64 // percent of source files
	ArchitectureMinScore  float64
	CodePatternMinRepeats int
}

// SampleBytes returns the per-file sample size for the configured mode.
func (c *Config) SampleBytes() int {
	if c.Scan.Mode == types.ScanModeDeep {
		return c.Scan.DeepSampleBytes
	}
	return c.Scan.ShallowSampleBytes
}

// MaxGraphFiles returns the dependency-graph file cap for the configured mode.
func (c *Config) MaxGraphFiles() int {
	if c.Scan.Mode == types.ScanModeDeep {
		return c.Graph.DeepMaxFiles
	}
	return c.Graph.ShallowMaxFiles
}

// WorkerCount resolves Performance.Workers, applying the auto default.
func (c *Config) WorkerCount() int {
	if c.Performance.Workers > 0 {
		return c.Performance.Workers
	}
	return max(1, runtime.NumCPU()-1)
}

// ScoringKey renders every setting that changes an analysis without
// changing the scanned structure: thresholds, heuristic weights and the
// graph limits.
func (c *Config) ScoringKey() string {
	return fmt.Sprintf("%+v|%+v|%+v", c.Thresholds, c.Heuristics, c.Graph)
}

// Clone returns a deep copy so callers can apply per-run overrides.
func (c *Config) Clone() *Config {
	out := *c
	out.Include = append([]string(nil), c.Include...)
	out.Exclude = append([]string(nil), c.Exclude...)
	out.Heuristics = c.Heuristics.Clone()
	return &out
}

// Default returns the built-in configuration rooted at root.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{
			Root: root,
		},
		Scan: Scan{
			Mode:               types.ScanModeShallow,
			MaxFileSize:        types.DefaultMaxFileSize,
			ShallowSampleBytes: types.DefaultShallowSampleBytes,
			DeepSampleBytes:    types.DefaultDeepSampleBytes,
			FollowSymlinks:     true,
			RespectGitignore:   true,
		},
		Graph: Graph{
			ShallowMaxFiles: types.DefaultShallowGraphFiles,
			DeepMaxFiles:    types.DefaultDeepGraphFiles,
			CentralLimit:    types.DefaultCentralLimit,
		},
		Performance: Performance{
			Workers:         0,
			TimeoutSec:      0,
			CacheSize:       64,
			WatchDebounceMs: 300,
		},
		Thresholds: Thresholds{
			PrimaryLanguage:       types.DefaultPrimaryLanguageThreshold,
			ArchitectureMinScore:  types.DefaultArchitectureMinScore,
			CodePatternMinRepeats: 2,
		},
		Heuristics: DefaultHeuristics(),
		Include:    []string{},
		Exclude: []string{
			// VCS metadata
			".git/",
			".hg/",
			".svn/",

			// Package managers & dependencies
			"node_modules/",
			"bower_components/",
			"jspm_packages/",
			".venv/",
			"venv/",
			"__pycache__/",

			// Tool caches
			".idea/",
			".vscode/",
			".next/",
			".nuxt/",
			".turbo/",
			".cache/",

			// OS files
			".DS_Store",
			"Thumbs.db",
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

// LoadWithRoot resolves the effective configuration: the global
// ~/.codeprofile.kdl is the base, the project file overrides it, and
// built-in defaults fill the rest.
func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	} else if path != "" {
		searchDir = path
	}

	var baseConfig *Config
	if homeDir, err := os.UserHomeDir(); err == nil && homeDir != searchDir {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	projectConfig, err := LoadKDL(searchDir)
	if err != nil {
		return nil, err
	}

	switch {
	case baseConfig != nil && projectConfig != nil:
		return mergeConfigs(baseConfig, projectConfig), nil
	case projectConfig != nil:
		return projectConfig, nil
	case baseConfig != nil:
		baseConfig.Project.Root = searchDir
		return baseConfig, nil
	}

	return Default(searchDir), nil
}

// mergeConfigs merges a base config with a project config.
// Project config takes precedence, but base exclusions are preserved.
func mergeConfigs(base, project *Config) *Config {
	merged := project.Clone()

	if len(base.Exclude) > 0 {
		combined := make([]string, 0, len(base.Exclude)+len(project.Exclude))
		combined = append(combined, base.Exclude...)
		combined = append(combined, project.Exclude...)
		merged.Exclude = DeduplicatePatterns(combined)
	}

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = append([]string(nil), base.Include...)
	}

	return merged
}

// DeduplicatePatterns removes repeated patterns, keeping the first occurrence.
// Order matters for gitignore semantics so this never sorts.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
