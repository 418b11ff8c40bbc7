package main

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/standardbeagle/codeprofile/internal/types"
)

func printAnalysis(w io.Writer, res *types.ProjectAnalysis) {
	fmt.Fprintf(w, "Project: %s\n", res.Structure.Root)
	fmt.Fprintf(w, "Mode: %s  Fingerprint: %s", res.Mode, res.Fingerprint)
	if res.Truncated {
		fmt.Fprint(w, "  (truncated)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w)

	printCategories(w, &res.Structure)
	fmt.Fprintln(w)
	printTechStack(w, &res.TechStack)
	fmt.Fprintln(w)
	printPatterns(w, &res.Patterns)
	fmt.Fprintln(w)
	printGraph(w, &res.Graph, &res.Metrics)
	printDiagnostics(w, res.Diagnostics)
}

func printCategories(w io.Writer, ps *types.ProjectStructure) {
	fmt.Fprintf(w, "Files: %d in %d directories (%s)\n", len(ps.Files), len(ps.Directories), formatSize(ps.TotalSize))

	categories := make([]types.FileCategory, 0, len(ps.CategoryCounts))
	for cat := range ps.CategoryCounts {
		categories = append(categories, cat)
	}
	sort.Slice(categories, func(i, j int) bool {
		ci, cj := ps.CategoryCounts[categories[i]], ps.CategoryCounts[categories[j]]
		if ci != cj {
			return ci > cj
		}
		return categories[i] < categories[j]
	})
	for _, cat := range categories {
		fmt.Fprintf(w, "  %-16s %d\n", cat, ps.CategoryCounts[cat])
	}
	if len(ps.Extensions) > 0 {
		fmt.Fprintf(w, "Extensions: %s\n", strings.Join(ps.Extensions, " "))
	}
}

func printStructure(w io.Writer, ps *types.ProjectStructure, maxDepth int) {
	printCategories(w, ps)
	fmt.Fprintln(w)

	dirs := make(map[string]types.DirectoryRecord, len(ps.Directories))
	for _, d := range ps.Directories {
		dirs[d.Path] = d
	}
	fileCounts := make(map[string]int)
	for _, f := range ps.Files {
		fileCounts[path.Dir(f.RelPath)]++
	}

	var walk func(p string, depth int)
	walk = func(p string, depth int) {
		d, ok := dirs[p]
		if !ok {
			return
		}
		name := path.Base(p)
		if p == "." {
			name = "."
		}
		fmt.Fprintf(w, "%s%s/ (%d files)\n", strings.Repeat("  ", depth), name, fileCounts[p])
		if maxDepth > 0 && depth >= maxDepth {
			return
		}
		for _, child := range d.Children {
			walk(child, depth+1)
		}
	}
	walk(".", 0)
}

func printTechStack(w io.Writer, tp *types.TechStackProfile) {
	fmt.Fprintln(w, "Tech stack:")
	if len(tp.PrimaryLanguages) == 0 {
		fmt.Fprintln(w, "  languages: none detected")
	}
	for _, l := range tp.PrimaryLanguages {
		fmt.Fprintf(w, "  %-12s %5.1f%%  (%d files)\n", l.Language, l.Percentage, l.FileCount)
	}
	printList(w, "frameworks", tp.Frameworks)
	printList(w, "libraries", tp.Libraries)
	printList(w, "build tools", tp.BuildTools)
	printList(w, "testing", tp.TestingFrameworks)
	printList(w, "stacks", tp.Stacks)
}

func printPatterns(w io.Writer, pp *types.PatternProfile) {
	fmt.Fprintf(w, "Patterns (%d files sampled):\n", pp.FilesAnalyzed)
	for _, cat := range types.AllIdentifierCategories {
		n, ok := pp.Naming[cat]
		if !ok || n.Total == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-10s %-12s %3.0f%% of %d", cat, n.Style, n.Confidence*100, n.Total)
		if n.Example != "" {
			fmt.Fprintf(w, "  e.g. %s", n.Example)
		}
		fmt.Fprintln(w)
	}
	if len(pp.Architecture) == 0 {
		fmt.Fprintln(w, "  architecture: none detected")
	}
	for _, a := range pp.Architecture {
		fmt.Fprintf(w, "  %-24s %.2f  %s\n", a.Name, a.Score, strings.Join(a.Evidence, ", "))
	}
	printList(w, "code patterns", pp.CodePatterns)
	fmt.Fprintf(w, "  consistency: %.2f\n", pp.Consistency.Overall)
}

func printGraph(w io.Writer, g *types.DependencyGraph, m *types.GraphMetrics) {
	fmt.Fprintf(w, "Dependency graph: %d modules, %d edges, %d files parsed\n", len(g.Nodes), len(g.Edges), m.FilesParsed)
	if len(m.Central) > 0 {
		fmt.Fprintln(w, "  central modules:")
		for _, c := range m.Central {
			fmt.Fprintf(w, "    %-40s %d dependents\n", c.Module, c.InDegree)
		}
	}
	if m.CyclesDetected {
		fmt.Fprintf(w, "  cycles: %d\n", len(m.Cycles))
		for _, cycle := range m.Cycles {
			fmt.Fprintf(w, "    %s -> %s\n", strings.Join(cycle, " -> "), cycle[0])
		}
		return
	}
	if len(m.Layers) > 0 {
		fmt.Fprintf(w, "  layers: %d\n", len(m.Layers))
		for i, layer := range m.Layers {
			fmt.Fprintf(w, "    %d: %s\n", i, strings.Join(layer, ", "))
		}
	}
}

// writeDOT renders the graph for Graphviz. Modules on a cycle are drawn red.
func writeDOT(w io.Writer, g *types.DependencyGraph, m *types.GraphMetrics) {
	onCycle := make(map[string]bool)
	for _, cycle := range m.Cycles {
		for _, n := range cycle {
			onCycle[n] = true
		}
	}

	fmt.Fprintln(w, "digraph dependencies {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, fontsize=10];")
	for _, n := range g.Nodes {
		if onCycle[n] {
			fmt.Fprintf(w, "  %q [color=red];\n", n)
		} else {
			fmt.Fprintf(w, "  %q;\n", n)
		}
	}
	for _, e := range g.Edges {
		if e.Kind == types.EdgeDynamicImport {
			fmt.Fprintf(w, "  %q -> %q [style=dashed];\n", e.From, e.To)
		} else {
			fmt.Fprintf(w, "  %q -> %q;\n", e.From, e.To)
		}
	}
	fmt.Fprintln(w, "}")
}

func printDiagnostics(w io.Writer, diags []types.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	fmt.Fprintf(w, "\nDiagnostics (%d):\n", len(diags))
	for _, d := range diags {
		if d.Path != "" {
			fmt.Fprintf(w, "  [%s] %s %s: %s\n", d.Stage, d.Kind, d.Path, d.Message)
		} else {
			fmt.Fprintf(w, "  [%s] %s: %s\n", d.Stage, d.Kind, d.Message)
		}
	}
}

func printList(w io.Writer, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "  %s: %s\n", label, strings.Join(items, ", "))
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
