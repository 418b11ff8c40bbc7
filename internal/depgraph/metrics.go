package depgraph

import (
	"sort"
	"strings"

	"github.com/standardbeagle/codeprofile/internal/types"
)

// sortedAdjacency returns deduplicated outgoing neighbours per node, each
// list sorted so traversal order never depends on edge order.
func sortedAdjacency(g *types.DependencyGraph) map[string][]string {
	adj := g.Adjacency()
	for n := range adj {
		sort.Strings(adj[n])
	}
	return adj
}

// centrality ranks modules by the number of distinct importers, highest
// first, ties by module path. Modules nobody imports are left out.
func centrality(g *types.DependencyGraph, adj map[string][]string, limit int) []types.Centrality {
	in := make(map[string]int)
	for _, targets := range adj {
		for _, t := range targets {
			in[t]++
		}
	}
	out := make([]types.Centrality, 0, len(in))
	for _, n := range g.Nodes {
		if in[n] > 0 {
			out = append(out, types.Centrality{Module: n, InDegree: in[n]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].InDegree != out[j].InDegree {
			return out[i].InDegree > out[j].InDegree
		}
		return out[i].Module < out[j].Module
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// findCycles runs a depth-first search from every unvisited node in sorted
// order, keeping the recursion stack explicit. Each edge back onto the
// stack yields the stack slice from its target as a cycle. Cycles are
// rotated to start at their smallest node and deduplicated.
func findCycles(nodes []string, adj map[string][]string) [][]string {
	const (
		unvisited = iota
		onStack
		done
	)
	type frame struct {
		node string
		next int
	}

	state := make(map[string]int, len(nodes))
	seen := make(map[string]bool)
	var cycles [][]string

	for _, start := range nodes {
		if state[start] != unvisited {
			continue
		}
		stack := []frame{{node: start}}
		path := []string{start}
		pos := map[string]int{start: 0}
		state[start] = onStack

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			nbrs := adj[top.node]
			if top.next < len(nbrs) {
				n := nbrs[top.next]
				top.next++
				switch state[n] {
				case unvisited:
					state[n] = onStack
					pos[n] = len(path)
					path = append(path, n)
					stack = append(stack, frame{node: n})
				case onStack:
					cycle := canonicalCycle(path[pos[n]:])
					key := strings.Join(cycle, "\x00")
					if !seen[key] {
						seen[key] = true
						cycles = append(cycles, cycle)
					}
				}
				continue
			}
			state[top.node] = done
			delete(pos, top.node)
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}

	sort.Slice(cycles, func(i, j int) bool {
		return strings.Join(cycles[i], "\x00") < strings.Join(cycles[j], "\x00")
	})
	return cycles
}

func canonicalCycle(c []string) []string {
	lo := 0
	for i := range c {
		if c[i] < c[lo] {
			lo = i
		}
	}
	out := make([]string, 0, len(c))
	out = append(out, c[lo:]...)
	return append(out, c[:lo]...)
}

// layers groups nodes by Kahn rounds: each round removes every node with no
// remaining importers. Only meaningful for acyclic graphs.
func layers(nodes []string, adj map[string][]string) [][]string {
	in := make(map[string]int, len(nodes))
	for _, targets := range adj {
		for _, t := range targets {
			in[t]++
		}
	}

	var ready []string
	for _, n := range nodes {
		if in[n] == 0 {
			ready = append(ready, n)
		}
	}

	out := [][]string{}
	for len(ready) > 0 {
		sort.Strings(ready)
		out = append(out, ready)
		var next []string
		for _, n := range ready {
			for _, t := range adj[n] {
				in[t]--
				if in[t] == 0 {
					next = append(next, t)
				}
			}
		}
		ready = next
	}
	return out
}
