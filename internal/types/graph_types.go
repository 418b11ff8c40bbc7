package types

// EdgeKind describes how a module references another.
type EdgeKind string

const (
	EdgeStaticImport  EdgeKind = "static-import"
	EdgeDynamicImport EdgeKind = "dynamic-import"
	EdgeRequire       EdgeKind = "require"
)

// Edge is a directed dependency between two module nodes.
type Edge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// DependencyGraph holds module nodes (relative paths without extension) and edges.
type DependencyGraph struct {
	Nodes []string `json:"nodes"`
	Edges []Edge   `json:"edges"`
}

// Adjacency returns the deduplicated outgoing neighbours of every node in edge order.
func (g *DependencyGraph) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.Nodes))
	for _, n := range g.Nodes {
		adj[n] = nil
	}
	seen := make(map[[2]string]bool, len(g.Edges))
	for _, e := range g.Edges {
		key := [2]string{e.From, e.To}
		if seen[key] {
			continue
		}
		seen[key] = true
		adj[e.From] = append(adj[e.From], e.To)
	}
	return adj
}

// Centrality is a module's in-degree rank entry.
type Centrality struct {
	Module   string `json:"module"`
	InDegree int    `json:"in_degree"`
}

// GraphMetrics are the derived properties of a DependencyGraph.
type GraphMetrics struct {
	Central        []Centrality `json:"central"`
	Layers         [][]string   `json:"layers"`
	CyclesDetected bool         `json:"cycles_detected"`
	Cycles         [][]string   `json:"cycles"`
	FilesParsed    int          `json:"files_parsed"`
	Truncated      bool         `json:"truncated,omitempty"`
}
