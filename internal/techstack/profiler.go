package techstack

import (
	"context"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codeprofile/internal/config"
	"github.com/standardbeagle/codeprofile/internal/debug"
	cperrors "github.com/standardbeagle/codeprofile/internal/errors"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// Stage is the diagnostic stage name used by the technology profiler.
const Stage = "techstack"

// finding is a single piece of evidence for one technology.
type finding struct {
	Tech     tech
	Source   types.DetectionSource
	Evidence string
}

// Result is the technology profile plus the manifests that could not be used.
type Result struct {
	Profile     types.TechStackProfile
	Diagnostics []types.Diagnostic
	Truncated   bool
}

// Profiler detects languages, frameworks and tooling from a ProjectStructure.
type Profiler struct {
	cfg *config.Config
}

// New creates a profiler.
func New(cfg *config.Config) *Profiler {
	return &Profiler{cfg: cfg}
}

type manifestOutcome struct {
	findings []finding
	err      error
}

// Profile runs the manifest and marker passes and merges them. A manifest
// that cannot be parsed only costs the findings it would have contributed.
func (p *Profiler) Profile(ctx context.Context, ps *types.ProjectStructure) *Result {
	defer debug.Stage(debug.ComponentTech, "profile")()
	res := &Result{}

	var jobs []*types.FileRecord
	for i := range ps.Files {
		f := &ps.Files[i]
		if f.Category == types.CategoryBuildArtifact {
			continue
		}
		if IsManifest(path.Base(f.RelPath)) {
			jobs = append(jobs, f)
		}
	}

	outcomes := make([]manifestOutcome, len(jobs))
	g := new(errgroup.Group)
	g.SetLimit(p.cfg.WorkerCount())
	for i, f := range jobs {
		if ctx.Err() != nil {
			res.Truncated = true
			break
		}
		g.Go(func() error {
			outcomes[i] = p.parseManifest(f)
			return nil
		})
	}
	_ = g.Wait()

	var findings []finding
	for i, out := range outcomes {
		if out.err != nil {
			res.Diagnostics = append(res.Diagnostics, cperrors.ToDiagnostic(Stage, jobs[i].RelPath, out.err))
			continue
		}
		findings = append(findings, out.findings...)
	}
	findings = append(findings, detectMarkers(ps)...)

	res.Profile = p.merge(findings)
	res.Profile.PrimaryLanguages = rankLanguages(ps, p.cfg.Thresholds.PrimaryLanguage)

	debug.LogTech("%d manifests, %d detections, %d stacks\n",
		len(jobs), len(res.Profile.Detections), len(res.Profile.Stacks))
	return res
}

func (p *Profiler) parseManifest(f *types.FileRecord) manifestOutcome {
	parser := manifestParsers[strings.ToLower(path.Base(f.RelPath))]
	eco := parser.Ecosystem.Name

	if f.Size > p.cfg.Scan.MaxFileSize {
		err := fmt.Errorf("size %d exceeds limit %d", f.Size, p.cfg.Scan.MaxFileSize)
		return manifestOutcome{err: cperrors.NewManifestError(f.RelPath, eco, err)}
	}
	data, err := os.ReadFile(f.AbsPath)
	if err != nil {
		return manifestOutcome{err: cperrors.NewManifestError(f.RelPath, eco, err)}
	}
	deps, err := parser.Parse(f.RelPath, data)
	if err != nil {
		return manifestOutcome{err: cperrors.NewManifestError(f.RelPath, eco, err)}
	}

	var out []finding
	for _, dep := range deps {
		for _, t := range parser.Ecosystem.lookup(dep) {
			out = append(out, finding{
				Tech:     t,
				Source:   types.SourceManifest,
				Evidence: f.RelPath + " declares " + dep,
			})
		}
	}
	debug.LogTech("%s: %d dependencies, %d recognized\n", f.RelPath, len(deps), len(out))
	return manifestOutcome{findings: out}
}

// merge unions findings by canonical name. A technology seen by any marker
// is reported with marker confidence; manifest-only technologies get the
// lower manifest confidence.
func (p *Profiler) merge(findings []finding) types.TechStackProfile {
	type entry struct {
		tech     tech
		marker   bool
		evidence map[string]bool
	}
	byName := make(map[string]*entry)
	for _, f := range findings {
		e, ok := byName[f.Tech.Name]
		if !ok {
			e = &entry{tech: f.Tech, evidence: make(map[string]bool)}
			byName[f.Tech.Name] = e
		}
		if f.Source == types.SourceMarker {
			e.marker = true
		}
		e.evidence[f.Evidence] = true
	}

	h := p.cfg.Heuristics
	profile := types.TechStackProfile{
		Frameworks:        []string{},
		Libraries:         []string{},
		BuildTools:        []string{},
		TestingFrameworks: []string{},
	}
	detected := make(map[string]bool, len(byName))
	for name, e := range byName {
		d := types.TechDetection{
			Name:       name,
			Kind:       e.tech.Kind,
			Source:     types.SourceManifest,
			Confidence: types.ClampScore(h.ManifestConfidence),
		}
		if e.marker {
			d.Source = types.SourceMarker
			d.Confidence = types.ClampScore(h.MarkerConfidence)
		}
		for ev := range e.evidence {
			d.Evidence = append(d.Evidence, ev)
		}
		sort.Strings(d.Evidence)
		profile.Detections = append(profile.Detections, d)
		detected[name] = true

		switch e.tech.Kind {
		case types.TechFramework:
			profile.Frameworks = append(profile.Frameworks, name)
		case types.TechLibrary:
			profile.Libraries = append(profile.Libraries, name)
		case types.TechBuildTool:
			profile.BuildTools = append(profile.BuildTools, name)
		case types.TechTesting:
			profile.TestingFrameworks = append(profile.TestingFrameworks, name)
		}
	}

	sort.Slice(profile.Detections, func(i, j int) bool {
		return profile.Detections[i].Name < profile.Detections[j].Name
	})
	sort.Strings(profile.Frameworks)
	sort.Strings(profile.Libraries)
	sort.Strings(profile.BuildTools)
	sort.Strings(profile.TestingFrameworks)
	profile.Stacks = matchStacks(detected)
	if profile.Stacks == nil {
		profile.Stacks = []string{}
	}
	return profile
}
