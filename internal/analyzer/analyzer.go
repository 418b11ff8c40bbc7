// Package analyzer runs the profiling pipeline: traverse the tree, profile
// the tech stack and build the dependency graph concurrently, then profile
// patterns against the detected stack and merge everything into one
// ProjectAnalysis.
package analyzer

import (
	"context"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codeprofile/internal/cache"
	"github.com/standardbeagle/codeprofile/internal/config"
	"github.com/standardbeagle/codeprofile/internal/debug"
	"github.com/standardbeagle/codeprofile/internal/depgraph"
	cperrors "github.com/standardbeagle/codeprofile/internal/errors"
	"github.com/standardbeagle/codeprofile/internal/patterns"
	"github.com/standardbeagle/codeprofile/internal/techstack"
	"github.com/standardbeagle/codeprofile/internal/traverse"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithCache makes Analyze consult and fill rc. Without it every call runs
// the full pipeline.
func WithCache(rc *cache.ResultCache) Option {
	return func(a *Analyzer) {
		a.cache = rc
	}
}

// WithMode overrides the configured scan mode.
func WithMode(mode types.ScanMode) Option {
	return func(a *Analyzer) {
		a.mode = mode
	}
}

// Analyzer is safe for concurrent use. Each Analyze call works on its own
// copy of the configuration.
type Analyzer struct {
	cfg   *config.Config
	cache *cache.ResultCache
	mode  types.ScanMode
}

// New creates an analyzer. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) *Analyzer {
	if cfg == nil {
		cfg = config.Default(".")
	}
	a := &Analyzer{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cache returns the cache passed with WithCache, or nil.
func (a *Analyzer) Cache() *cache.ResultCache {
	return a.cache
}

// Invalidate drops cached analyses for root. It is a no-op without a cache.
func (a *Analyzer) Invalidate(root string) int {
	if a.cache == nil {
		return 0
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return a.cache.Invalidate(abs)
}

// prepare validates root and the effective configuration. Only this step
// can fail an analysis.
func (a *Analyzer) prepare(root string) (*config.Config, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, cperrors.NewConfigError("root", root, err)
	}
	cfg := a.cfg.Clone()
	cfg.Project.Root = abs
	if a.mode != "" {
		cfg.Scan.Mode = a.mode
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func withDeadline(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	if cfg.Performance.TimeoutSec > 0 {
		return context.WithTimeout(ctx, time.Duration(cfg.Performance.TimeoutSec)*time.Second)
	}
	return context.WithCancel(ctx)
}

// Structure runs only the traversal stage.
func (a *Analyzer) Structure(ctx context.Context, root string, ignore []string) (*traverse.Result, error) {
	cfg, err := a.prepare(root)
	if err != nil {
		return nil, err
	}
	ctx, cancel := withDeadline(ctx, cfg)
	defer cancel()
	return a.traverse(ctx, cfg, ignore)
}

func (a *Analyzer) traverse(ctx context.Context, cfg *config.Config, ignore []string) (*traverse.Result, error) {
	m, err := traverse.BuildMatcher(cfg, cfg.Project.Root, ignore)
	if err != nil {
		return nil, err
	}
	return traverse.New(cfg, m).Traverse(ctx, cfg.Project.Root)
}

// Analyze profiles the project at root. ignore holds extra gitignore-style
// patterns applied after the configured ones.
//
// An error is returned only for invalid input: a missing root or bad
// configuration values. Everything that goes wrong per file ends up in
// Diagnostics. On cancellation or timeout the partial analysis is returned
// with Truncated set.
func (a *Analyzer) Analyze(ctx context.Context, root string, ignore []string) (*types.ProjectAnalysis, error) {
	cfg, err := a.prepare(root)
	if err != nil {
		return nil, err
	}
	defer debug.Stage(debug.ComponentAnalyze, "analyze "+cfg.Project.Root)()

	ctx, cancel := withDeadline(ctx, cfg)
	defer cancel()

	tr, err := a.traverse(ctx, cfg, ignore)
	if err != nil {
		return nil, err
	}
	ps := &tr.Structure
	mode := cfg.Scan.Mode
	fingerprint := cache.Fingerprint(ps, mode, cfg.ScoringKey())

	if a.cache != nil && !ps.Truncated {
		if cached, ok := a.cache.Get(ps.Root, fingerprint); ok {
			debug.LogAnalyze("cache hit for %s\n", ps.Root)
			return &cached, nil
		}
	}

	var (
		tech  *techstack.Result
		graph *depgraph.Result
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		tech = techstack.New(cfg).Profile(ctx, ps)
		return nil
	})
	g.Go(func() error {
		graph = depgraph.New(cfg).Build(ctx, ps)
		return nil
	})
	_ = g.Wait()

	pat := patterns.New(cfg).Profile(ctx, ps, &tech.Profile)

	analysis := &types.ProjectAnalysis{
		Mode:        mode,
		Fingerprint: fingerprint,
		Structure:   *ps,
		TechStack:   tech.Profile,
		Patterns:    pat.Profile,
		Graph:       graph.Graph,
		Metrics:     graph.Metrics,
	}

	diags := make([]types.Diagnostic, 0,
		len(tr.Diagnostics)+len(tech.Diagnostics)+len(graph.Diagnostics)+len(pat.Diagnostics))
	diags = append(diags, tr.Diagnostics...)
	diags = append(diags, tech.Diagnostics...)
	diags = append(diags, graph.Diagnostics...)
	diags = append(diags, pat.Diagnostics...)
	analysis.Diagnostics = diags

	analysis.Truncated = ps.Truncated || tech.Truncated || graph.Metrics.Truncated || pat.Profile.Truncated
	if ctx.Err() != nil {
		analysis.Truncated = true
	}

	debug.LogAnalyze("%d files, %d diagnostics, truncated=%v\n",
		len(ps.Files), len(analysis.Diagnostics), analysis.Truncated)

	// A cancelled run is partial; file caps are deterministic and cacheable.
	if a.cache != nil && ctx.Err() == nil && !ps.Truncated {
		a.cache.Put(ps.Root, fingerprint, *analysis)
	}
	return analysis, nil
}
