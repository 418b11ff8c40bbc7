// Package depgraph builds the module dependency graph from import
// statements and derives centrality, layering and cycles from it.
package depgraph

import (
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/mod/modfile"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/codeprofile/internal/config"
	"github.com/standardbeagle/codeprofile/internal/debug"
	cperrors "github.com/standardbeagle/codeprofile/internal/errors"
	"github.com/standardbeagle/codeprofile/internal/types"
)

// Stage is the diagnostic stage name used by the graph builder.
const Stage = "graph"

// Result is the graph, its metrics and any per-file failures.
type Result struct {
	Graph       types.DependencyGraph
	Metrics     types.GraphMetrics
	Diagnostics []types.Diagnostic
}

// Builder extracts imports from source files and assembles the graph.
type Builder struct {
	cfg *config.Config
}

// New creates a graph builder.
func New(cfg *config.Config) *Builder {
	return &Builder{cfg: cfg}
}

type fileEdges struct {
	edges  []types.Edge
	parsed bool
	err    error
}

// Build selects the source files that have an import scanner, caps them in
// path order, resolves every import to a selected file and computes the
// metrics. Layers are only computed for acyclic graphs.
func (b *Builder) Build(ctx context.Context, ps *types.ProjectStructure) *Result {
	defer debug.Stage(debug.ComponentGraph, "build")()
	res := &Result{}

	var selected []*types.FileRecord
	for i := range ps.Files {
		f := &ps.Files[i]
		if f.Category != types.CategorySource {
			continue
		}
		if _, ok := scanners[f.Language]; ok {
			selected = append(selected, f)
		}
	}
	if limit := b.cfg.MaxGraphFiles(); limit > 0 && len(selected) > limit {
		err := cperrors.NewResourceCapError("dependency graph files", limit, len(selected))
		res.Diagnostics = append(res.Diagnostics, cperrors.ToDiagnostic(Stage, "", err))
		res.Metrics.Truncated = true
		selected = selected[:limit]
	}

	modules, diags := b.goModules(ps)
	res.Diagnostics = append(res.Diagnostics, diags...)
	r := newResolver(selected, modules)

	slots := make([]fileEdges, len(selected))
	g := new(errgroup.Group)
	g.SetLimit(b.cfg.WorkerCount())
	for i, f := range selected {
		if ctx.Err() != nil {
			res.Metrics.Truncated = true
			break
		}
		g.Go(func() error {
			slots[i] = fileImports(r, f)
			return nil
		})
	}
	_ = g.Wait()

	nodeSet := make(map[string]bool, len(selected))
	for _, f := range selected {
		nodeSet[r.node(f.RelPath)] = true
	}
	edgeSet := make(map[types.Edge]bool)
	for i, s := range slots {
		if s.err != nil {
			res.Diagnostics = append(res.Diagnostics, cperrors.ToDiagnostic(Stage, selected[i].RelPath, s.err))
			continue
		}
		if s.parsed {
			res.Metrics.FilesParsed++
		}
		for _, e := range s.edges {
			edgeSet[e] = true
		}
	}

	graph := types.DependencyGraph{Nodes: make([]string, 0, len(nodeSet)), Edges: make([]types.Edge, 0, len(edgeSet))}
	for n := range nodeSet {
		graph.Nodes = append(graph.Nodes, n)
	}
	sort.Strings(graph.Nodes)
	for e := range edgeSet {
		graph.Edges = append(graph.Edges, e)
	}
	sort.Slice(graph.Edges, func(i, j int) bool {
		a, b := graph.Edges[i], graph.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Kind < b.Kind
	})
	res.Graph = graph

	adj := sortedAdjacency(&graph)
	res.Metrics.Central = centrality(&graph, adj, b.cfg.Graph.CentralLimit)
	res.Metrics.Cycles = findCycles(graph.Nodes, adj)
	res.Metrics.CyclesDetected = len(res.Metrics.Cycles) > 0
	if res.Metrics.CyclesDetected {
		res.Metrics.Layers = [][]string{}
	} else {
		res.Metrics.Layers = layers(graph.Nodes, adj)
	}
	if res.Metrics.Cycles == nil {
		res.Metrics.Cycles = [][]string{}
	}

	debug.LogGraph("%d nodes, %d edges, %d cycles, %d layers\n",
		len(graph.Nodes), len(graph.Edges), len(res.Metrics.Cycles), len(res.Metrics.Layers))
	return res
}

// fileImports scans one file's sample. A panic in a scanner costs only
// this file's edges.
func fileImports(r *resolver, f *types.FileRecord) (out fileEdges) {
	defer func() {
		if rec := recover(); rec != nil {
			out = fileEdges{err: cperrors.NewParseError(f.RelPath, f.Language, fmt.Errorf("import scan panic: %v", rec))}
		}
	}()

	if !f.HasSample() {
		return fileEdges{}
	}
	from := r.node(f.RelPath)
	for _, ref := range scanners[f.Language](f.Sample) {
		target := r.resolve(f, ref)
		if target == "" {
			continue
		}
		to := r.node(target)
		if to == from {
			continue
		}
		out.edges = append(out.edges, types.Edge{From: from, To: to, Kind: ref.Kind})
	}
	out.parsed = true
	return out
}

// goModules reads every go.mod in the tree for its module path.
func (b *Builder) goModules(ps *types.ProjectStructure) ([]goModule, []types.Diagnostic) {
	var mods []goModule
	var diags []types.Diagnostic
	for _, f := range ps.Files {
		if f.Name != "go.mod" || f.Category == types.CategoryBuildArtifact {
			continue
		}
		data, err := os.ReadFile(f.AbsPath)
		if err != nil {
			diags = append(diags, cperrors.ToDiagnostic(Stage, f.RelPath, cperrors.NewFileError("read", f.RelPath, err)))
			continue
		}
		modPath := modfile.ModulePath(data)
		if modPath == "" {
			diags = append(diags, cperrors.ToDiagnostic(Stage, f.RelPath,
				cperrors.NewManifestError(f.RelPath, "go", fmt.Errorf("no module directive"))))
			continue
		}
		dir := "."
		if i := len(f.RelPath) - len("/go.mod"); i > 0 {
			dir = f.RelPath[:i]
		}
		mods = append(mods, goModule{Dir: dir, Path: modPath})
		debug.LogGraph("go module %s at %s\n", modPath, dir)
	}
	return mods, diags
}
