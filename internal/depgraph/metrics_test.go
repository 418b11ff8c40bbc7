package depgraph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/codeprofile/internal/types"
)

func graphOf(nodes []string, edges ...[2]string) *types.DependencyGraph {
	g := &types.DependencyGraph{Nodes: nodes}
	for _, e := range edges {
		g.Edges = append(g.Edges, types.Edge{From: e[0], To: e[1], Kind: types.EdgeStaticImport})
	}
	return g
}

func TestFindCycles(t *testing.T) {
	tests := []struct {
		name  string
		nodes []string
		edges [][2]string
		want  [][]string
	}{
		{
			name:  "acyclic",
			nodes: []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}},
			want:  nil,
		},
		{
			name:  "triangle is rotated to its smallest node",
			nodes: []string{"A", "B", "C"},
			edges: [][2]string{{"B", "C"}, {"C", "A"}, {"A", "B"}},
			want:  [][]string{{"A", "B", "C"}},
		},
		{
			name:  "self loop",
			nodes: []string{"x"},
			edges: [][2]string{{"x", "x"}},
			want:  [][]string{{"x"}},
		},
		{
			name:  "two independent cycles sorted",
			nodes: []string{"p", "q", "m", "n"},
			edges: [][2]string{{"p", "q"}, {"q", "p"}, {"m", "n"}, {"n", "m"}},
			want:  [][]string{{"m", "n"}, {"p", "q"}},
		},
		{
			name:  "duplicate edges do not duplicate cycles",
			nodes: []string{"a", "b"},
			edges: [][2]string{{"a", "b"}, {"a", "b"}, {"b", "a"}},
			want:  [][]string{{"a", "b"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graphOf(tt.nodes, tt.edges...)
			assert.Equal(t, tt.want, findCycles(tt.nodes, sortedAdjacency(g)))
		})
	}
}

func TestFindCycles_DeepChainDoesNotRecurse(t *testing.T) {
	const n = 50000
	nodes := make([]string, n)
	var edges [][2]string
	for i := range nodes {
		nodes[i] = fmt.Sprintf("n%05d", i)
	}
	for i := 0; i+1 < n; i++ {
		edges = append(edges, [2]string{nodes[i], nodes[i+1]})
	}
	edges = append(edges, [2]string{nodes[n-1], nodes[0]})

	cycles := findCycles(nodes, sortedAdjacency(graphOf(nodes, edges...)))
	assert.Len(t, cycles, 1)
	assert.Len(t, cycles[0], n)
}

func TestLayers(t *testing.T) {
	g := graphOf([]string{"main", "api", "db", "log", "util"},
		[2]string{"main", "api"},
		[2]string{"main", "log"},
		[2]string{"api", "db"},
		[2]string{"api", "log"},
		[2]string{"db", "log"},
	)
	assert.Equal(t, [][]string{{"main", "util"}, {"api"}, {"db"}, {"log"}}, layers(g.Nodes, sortedAdjacency(g)))
	assert.Equal(t, [][]string{}, layers(nil, map[string][]string{}))
}

func TestCentrality(t *testing.T) {
	g := graphOf([]string{"a", "b", "c", "d", "e"},
		[2]string{"a", "c"},
		[2]string{"a", "c"},
		[2]string{"b", "c"},
		[2]string{"a", "d"},
		[2]string{"e", "b"},
	)
	adj := sortedAdjacency(g)

	assert.Equal(t, []types.Centrality{
		{Module: "c", InDegree: 2},
		{Module: "b", InDegree: 1},
		{Module: "d", InDegree: 1},
	}, centrality(g, adj, 0))
	assert.Equal(t, []types.Centrality{{Module: "c", InDegree: 2}}, centrality(g, adj, 1))
	assert.Empty(t, centrality(graphOf([]string{"solo"}), map[string][]string{}, 5))
}
