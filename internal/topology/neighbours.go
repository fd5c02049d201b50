package topology

import (
	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/relation"
)

// Link is the result of a single-neighbour query. ID is empty when there is
// no neighbour. Warning is set when several neighbours were equally near;
// ID is then the earliest inserted of them.
type Link struct {
	ID      string
	Warning *AmbiguousLinkError
}

var (
	earlier = relation.NewSet(relation.After, relation.MetBy)
	later   = relation.NewSet(relation.Before, relation.Meets)
)

// PredecessorsOf returns the immediate predecessors of id: the nodes that
// lie before it or meet it and have the latest end among those. Ties are
// returned in insertion order.
func (t *Topology) PredecessorsOf(id string) ([]Node, error) {
	return t.neighbours(id, earlier, func(e ir.Extent) ir.Point { return e.End() }, 1)
}

// SuccessorsOf returns the immediate successors of id: the nodes that lie
// after it or are met by it and have the earliest start among those.
func (t *Topology) SuccessorsOf(id string) ([]Node, error) {
	return t.neighbours(id, later, func(e ir.Extent) ir.Point { return e.Start() }, -1)
}

// neighbours keeps the candidates whose key compares best in direction dir.
func (t *Topology) neighbours(id string, sel relation.Set, key func(ir.Extent) ir.Point, dir int) ([]Node, error) {
	i, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	var (
		best []int
		bk   ir.Point
	)
	for _, l := range t.adj[i] {
		if !sel.Has(l.rel) {
			continue
		}
		k := key(t.nodes[l.to].Object.Extent)
		switch c := k.Compare(bk); {
		case len(best) == 0 || c == dir:
			best, bk = []int{l.to}, k
		case c == 0:
			best = append(best, l.to)
		}
	}
	out := make([]Node, len(best))
	for n, idx := range best {
		out[n] = t.nodes[idx]
	}
	return out, nil
}

// Predecessor returns the single immediate predecessor of id.
func (t *Topology) Predecessor(id string) (Link, error) {
	nodes, err := t.PredecessorsOf(id)
	if err != nil {
		return Link{}, err
	}
	return pick(id, "predecessor", nodes), nil
}

// Successor returns the single immediate successor of id.
func (t *Topology) Successor(id string) (Link, error) {
	nodes, err := t.SuccessorsOf(id)
	if err != nil {
		return Link{}, err
	}
	return pick(id, "successor", nodes), nil
}

func pick(id, direction string, nodes []Node) Link {
	switch len(nodes) {
	case 0:
		return Link{}
	case 1:
		return Link{ID: nodes[0].Object.ID}
	}
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.Object.ID
	}
	return Link{
		ID:      ids[0],
		Warning: &AmbiguousLinkError{Object: id, Direction: direction, Candidates: ids},
	}
}
