package topology

import (
	"slices"

	"github.com/roach88/tgis/internal/relation"
)

// SharesTime selects the relations of extents that have time in common
// beyond a shared boundary.
var SharesTime = relation.Universe() &^ relation.NewSet(relation.Before, relation.After, relation.Meets, relation.MetBy)

// Components returns the groups of nodes connected by edges whose relation
// is in sel, read from either end. Each group lists IDs in insertion order
// and groups are ordered by their first member. Nodes without a selected
// edge form singleton groups.
func (t *Topology) Components(sel relation.Set) [][]string {
	graph := make([][]int, len(t.nodes))
	for i, links := range t.adj {
		for _, l := range links {
			if sel.Has(l.rel) || sel.Has(l.rel.Inverse()) {
				graph[i] = append(graph[i], l.to)
			}
		}
	}

	sccs := tarjanSCC(graph)
	for _, scc := range sccs {
		slices.Sort(scc)
	}
	slices.SortFunc(sccs, func(a, b []int) int { return a[0] - b[0] })

	out := make([][]string, len(sccs))
	for i, scc := range sccs {
		ids := make([]string, len(scc))
		for k, idx := range scc {
			ids[k] = t.nodes[idx].Object.ID
		}
		out[i] = ids
	}
	return out
}

// tarjanSCC finds the strongly connected components of graph with
// Tarjan's algorithm. Since Components adds every selected edge in both
// directions, these are the connected components.
func tarjanSCC(graph [][]int) [][]int {
	var (
		index   = 0
		stack   []int
		indices = make([]int, len(graph))
		lowlink = make([]int, len(graph))
		onStack = make([]bool, len(graph))
		sccs    [][]int
	)
	for i := range indices {
		indices[i] = -1
	}

	var strongConnect func(int)
	strongConnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if indices[w] < 0 {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for v := range graph {
		if indices[v] < 0 {
			strongConnect(v)
		}
	}
	return sccs
}
