package preprocess

import "github.com/mrabkin/ignis/internal/sat"

// sccEquivalence condenses the binary implication graph (edge ¬a -> b for
// every binary clause (a v b)) with Tarjan's algorithm. A literal found in
// the same component as its own negation proves the formula false; this
// pass records that in p.contradiction, which Run checks right after it and
// turns into an error. Every other component is rewritten to
// a single representative literal, shrinking the literal space the rest of
// the pipeline (and eventually the core) has to carry.
//
// Implemented on the standard library only: no graph/SCC library appears
// anywhere in the retrieved corpus (see DESIGN.md).
func (p *Preprocessor) sccEquivalence(f *Formula) bool {
	g := newImplicationGraph(f)
	comps := g.tarjanSCC()

	rep := make(map[sat.Literal]sat.Literal, len(comps)*2)
	changed := false

	for _, comp := range comps {
		if len(comp) < 2 {
			continue
		}
		for _, l := range comp {
			for _, m := range comp {
				if m == l.Opposite() {
					p.contradiction = true
				}
			}
		}
		r := comp[0]
		for _, l := range comp {
			if l < r {
				r = l
			}
		}
		for _, l := range comp {
			rep[l] = r
			if l != r {
				changed = true
			}
		}
	}
	if !changed {
		return false
	}

	lookup := func(l sat.Literal) sat.Literal {
		if r, ok := rep[l]; ok {
			return r
		}
		return l
	}

	newClauses := make([][]sat.Literal, 0, len(f.Clauses))
	for _, c := range f.Clauses {
		seen := map[sat.Literal]bool{}
		tautology := false
		var nc []sat.Literal
		for _, l := range c {
			rl := lookup(l)
			if seen[rl.Opposite()] {
				tautology = true
				break
			}
			if seen[rl] {
				continue
			}
			seen[rl] = true
			nc = append(nc, rl)
		}
		if tautology {
			continue
		}
		newClauses = append(newClauses, nc)
	}
	f.Clauses = newClauses

	for l, r := range rep {
		if l == r || l.Var() == r.Var() {
			continue
		}
		p.equivTo[l.Var()] = r
	}
	return true
}

// implicationGraph is the binary-clause implication graph, edges stored as
// an adjacency list keyed by the packed sat.Literal encoding.
type implicationGraph struct {
	adj map[sat.Literal][]sat.Literal
}

func newImplicationGraph(f *Formula) *implicationGraph {
	g := &implicationGraph{adj: map[sat.Literal][]sat.Literal{}}
	for _, c := range f.Clauses {
		if len(c) != 2 {
			continue
		}
		a, b := c[0], c[1]
		g.adj[a.Opposite()] = append(g.adj[a.Opposite()], b)
		g.adj[b.Opposite()] = append(g.adj[b.Opposite()], a)
	}
	return g
}

// tarjanSCC returns the graph's strongly connected components, implemented
// iteratively to avoid stack-depth limits on large formulas.
func (g *implicationGraph) tarjanSCC() [][]sat.Literal {
	index := map[sat.Literal]int{}
	low := map[sat.Literal]int{}
	onStack := map[sat.Literal]bool{}
	var stack []sat.Literal
	var comps [][]sat.Literal
	next := 0

	var nodes []sat.Literal
	for n := range g.adj {
		nodes = append(nodes, n)
	}

	type frame struct {
		v      sat.Literal
		edgeAt int
	}

	var visit func(start sat.Literal)
	visit = func(start sat.Literal) {
		var work []frame
		work = append(work, frame{v: start})
		index[start] = next
		low[start] = next
		next++
		stack = append(stack, start)
		onStack[start] = true

		for len(work) > 0 {
			top := &work[len(work)-1]
			edges := g.adj[top.v]

			if top.edgeAt < len(edges) {
				w := edges[top.edgeAt]
				top.edgeAt++

				if _, ok := index[w]; !ok {
					index[w] = next
					low[w] = next
					next++
					stack = append(stack, w)
					onStack[w] = true
					work = append(work, frame{v: w})
					continue
				} else if onStack[w] {
					if index[w] < low[top.v] {
						low[top.v] = index[w]
					}
				}
				continue
			}

			// Done with v's edges: pop it, propagate low-link to parent.
			v := top.v
			work = work[:len(work)-1]
			if len(work) > 0 {
				parent := &work[len(work)-1]
				if low[v] < low[parent.v] {
					low[parent.v] = low[v]
				}
			}

			if low[v] == index[v] {
				var comp []sat.Literal
				for {
					n := len(stack) - 1
					w := stack[n]
					stack = stack[:n]
					onStack[w] = false
					comp = append(comp, w)
					if w == v {
						break
					}
				}
				comps = append(comps, comp)
			}
		}
	}

	for _, n := range nodes {
		if _, ok := index[n]; !ok {
			visit(n)
		}
	}
	return comps
}
