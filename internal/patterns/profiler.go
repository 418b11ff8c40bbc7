// Package patterns derives naming conventions, architecture patterns and
// recurring code shapes from a project's structure and content samples.
package patterns

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codeprofile/internal/config"
	"github.com/standardbeagle/codeprofile/internal/debug"
	cperrors "github.com/standardbeagle/codeprofile/internal/errors"
	"github.com/standardbeagle/codeprofile/internal/extract"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// Stage is the diagnostic stage name used by the pattern profiler.
const Stage = "patterns"

// Result is the pattern profile plus per-file extraction failures.
type Result struct {
	Profile     types.PatternProfile
	Diagnostics []types.Diagnostic
}

// Profiler runs extraction over every sampled file and aggregates.
type Profiler struct {
	cfg *config.Config
}

// New creates a pattern profiler.
func New(cfg *config.Config) *Profiler {
	return &Profiler{cfg: cfg}
}

type extraction struct {
	res *extract.Result
	err error
}

// Profile analyzes ps. tech enables framework-aware constructs and
// indicators; it may be nil. A file whose extraction fails is skipped with
// a diagnostic. Cancellation stops scheduling and the partial profile is
// returned with Truncated set.
func (p *Profiler) Profile(ctx context.Context, ps *types.ProjectStructure, tech *types.TechStackProfile) *Result {
	defer debug.Stage(debug.ComponentPattern, "profile")()

	registry := extract.NewRegistry(tech)
	defer registry.Close()

	var jobs []*types.FileRecord
	for i := range ps.Files {
		f := &ps.Files[i]
		if registry.Supports(f.Category) && f.HasSample() {
			jobs = append(jobs, f)
		}
	}

	res := &Result{}
	truncated := false
	slots := make([]extraction, len(jobs))
	g := new(errgroup.Group)
	g.SetLimit(p.cfg.WorkerCount())
	for i, f := range jobs {
		if ctx.Err() != nil {
			truncated = true
			break
		}
		g.Go(func() error {
			r, err := registry.Extract(f)
			slots[i] = extraction{res: r, err: err}
			return nil
		})
	}
	_ = g.Wait()

	identifiers := make(map[types.IdentifierCategory][]string)
	results := make([]*extract.Result, 0, len(slots))
	analyzed := 0
	for i, s := range slots {
		if s.err != nil {
			res.Diagnostics = append(res.Diagnostics, cperrors.ToDiagnostic(Stage, jobs[i].RelPath, s.err))
			continue
		}
		if s.res == nil {
			continue
		}
		analyzed++
		results = append(results, s.res)
		for cat, names := range s.res.Identifiers {
			identifiers[cat] = append(identifiers[cat], names...)
		}
	}
	identifiers[types.IdentFile], identifiers[types.IdentDirectory] = structureNames(ps)

	profile := types.PatternProfile{
		Naming:        make(map[types.IdentifierCategory]types.NamingConventionResult),
		FilesAnalyzed: analyzed,
		Truncated:     truncated,
	}
	for _, cat := range types.AllIdentifierCategories {
		if r, ok := dominantStyle(cat, identifiers[cat]); ok {
			profile.Naming[cat] = r
		}
	}
	profile.Consistency = consistency(profile.Naming)
	profile.Architecture = scoreArchitecture(indexStructure(ps), p.cfg.Heuristics, tech, p.cfg.Thresholds.ArchitectureMinScore)
	profile.CodePatterns = recurringPatterns(ps, results, p.cfg.Thresholds.CodePatternMinRepeats)

	debug.LogPattern("%d/%d files extracted, %d architecture matches, %d code patterns\n",
		analyzed, len(jobs), len(profile.Architecture), len(profile.CodePatterns))
	res.Profile = profile
	return res
}

// consistency reports each category's naming confidence and their mean.
func consistency(naming map[types.IdentifierCategory]types.NamingConventionResult) types.ConsistencyMetrics {
	m := types.ConsistencyMetrics{PerCategory: make(map[types.IdentifierCategory]float64)}
	if len(naming) == 0 {
		return m
	}
	var sum float64
	for _, cat := range types.AllIdentifierCategories {
		r, ok := naming[cat]
		if !ok {
			continue
		}
		m.PerCategory[cat] = r.Confidence
		sum += r.Confidence
	}
	m.Overall = types.Round2(sum / float64(len(naming)))
	return m
}
