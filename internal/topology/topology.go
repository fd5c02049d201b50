package topology

import (
	"fmt"

	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/relation"
)

// Node is one object of the topology.
type Node struct {
	Object  ir.Object
	Dataset string
}

// Edge is the relation from one node to another.
type Edge struct {
	From       string                   `json:"from"`
	To         string                   `json:"to"`
	Dataset    string                   `json:"dataset,omitempty"`
	Relation   relation.Relation        `json:"relation"`
	Spatial    relation.SpatialRelation `json:"-"`
	HasSpatial bool                     `json:"-"`
}

// adjacency entry; to is an arena index
type link struct {
	to         int
	rel        relation.Relation
	spatial    relation.SpatialRelation
	hasSpatial bool
}

// Topology is an immutable relation graph.
type Topology struct {
	nodes []Node
	adj   [][]link
	index map[string]int

	classifier *relation.Classifier
}

// Option configures a build.
type Option func(*Topology)

// WithPolicy sets the instant policy of the classifier.
func WithPolicy(p relation.Policy) Option {
	return func(t *Topology) {
		t.classifier = relation.NewClassifier(relation.WithPolicy(p))
	}
}

func newTopology(opts []Option) *Topology {
	t := &Topology{
		index:      make(map[string]int),
		classifier: relation.NewClassifier(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Topology) add(obj ir.Object, dataset string) error {
	if _, dup := t.index[obj.ID]; dup {
		return &DuplicateIDError{ID: obj.ID}
	}
	if obj.Extent.IsZero() {
		return fmt.Errorf("object %s has no extent", obj.ID)
	}
	t.index[obj.ID] = len(t.nodes)
	t.nodes = append(t.nodes, Node{Object: obj, Dataset: dataset})
	t.adj = append(t.adj, nil)
	return nil
}

// relate classifies nodes i and j and records the edge on both lists.
func (t *Topology) relate(i, j int) error {
	a, b := t.nodes[i].Object, t.nodes[j].Object
	rel, err := t.classifier.Classify(a.Extent, b.Extent)
	if err != nil {
		return fmt.Errorf("relate %s and %s: %w", a.ID, b.ID, err)
	}
	ab := link{to: j, rel: rel}
	ba := link{to: i, rel: rel.Inverse()}
	if a.Spatial != nil && b.Spatial != nil {
		sp := relation.ClassifySpatial(*a.Spatial, *b.Spatial)
		ab.spatial, ab.hasSpatial = sp, true
		ba.spatial, ba.hasSpatial = sp.Inverse(), true
	}
	t.adj[i] = append(t.adj[i], ab)
	t.adj[j] = append(t.adj[j], ba)
	return nil
}

// Build relates every unordered pair of objects.
func Build(objects []ir.Object, opts ...Option) (*Topology, error) {
	if len(objects) == 0 {
		return nil, &EmptyInputError{}
	}
	t := newTopology(opts)
	for _, obj := range objects {
		if err := t.add(obj, ""); err != nil {
			return nil, err
		}
	}
	for i := range t.nodes {
		for j := i + 1; j < len(t.nodes); j++ {
			if err := t.relate(i, j); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// BuildBetween relates every object of a to every object of b. Objects of
// the same side are not related to each other.
func BuildBetween(a, b []ir.Object, opts ...Option) (*Topology, error) {
	if len(a) == 0 || len(b) == 0 {
		return nil, &EmptyInputError{}
	}
	t := newTopology(opts)
	for _, obj := range a {
		if err := t.add(obj, "a"); err != nil {
			return nil, err
		}
	}
	for _, obj := range b {
		if err := t.add(obj, "b"); err != nil {
			return nil, err
		}
	}
	for i := range a {
		for j := len(a); j < len(t.nodes); j++ {
			if err := t.relate(i, j); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

// BuildDatasets relates every object to every object of the other datasets.
// Objects of one dataset are not related to each other.
func BuildDatasets(datasets []ir.Dataset, opts ...Option) (*Topology, error) {
	if len(datasets) == 0 {
		return nil, &EmptyInputError{}
	}
	t := newTopology(opts)
	bounds := make([]int, 0, len(datasets)+1)
	for _, ds := range datasets {
		if len(ds.Objects) == 0 {
			return nil, &EmptyInputError{Dataset: ds.ID}
		}
		bounds = append(bounds, len(t.nodes))
		for _, obj := range ds.Objects {
			if err := t.add(obj, ds.ID); err != nil {
				return nil, err
			}
		}
	}
	bounds = append(bounds, len(t.nodes))

	for d := 0; d < len(datasets); d++ {
		for i := bounds[d]; i < bounds[d+1]; i++ {
			for j := bounds[d+1]; j < len(t.nodes); j++ {
				if err := t.relate(i, j); err != nil {
					return nil, err
				}
			}
		}
	}
	return t, nil
}

// Len returns the number of nodes.
func (t *Topology) Len() int { return len(t.nodes) }

// Policy returns the instant policy used to classify edges.
func (t *Topology) Policy() relation.Policy { return t.classifier.Policy() }

// Nodes returns the nodes in insertion order.
func (t *Topology) Nodes() []Node {
	out := make([]Node, len(t.nodes))
	copy(out, t.nodes)
	return out
}

// Node returns the node with the given ID.
func (t *Topology) Node(id string) (Node, bool) {
	i, ok := t.index[id]
	if !ok {
		return Node{}, false
	}
	return t.nodes[i], true
}

func (t *Topology) lookup(id string) (int, error) {
	i, ok := t.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownObject, id)
	}
	return i, nil
}

func (t *Topology) edge(from int, l link) Edge {
	return Edge{
		From:       t.nodes[from].Object.ID,
		To:         t.nodes[l.to].Object.ID,
		Dataset:    t.nodes[l.to].Dataset,
		Relation:   l.rel,
		Spatial:    l.spatial,
		HasSpatial: l.hasSpatial,
	}
}

// RelationsOf returns the edges from id to every related node, in the
// insertion order of the related nodes.
func (t *Topology) RelationsOf(id string) ([]Edge, error) {
	i, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	out := make([]Edge, len(t.adj[i]))
	for k, l := range t.adj[i] {
		out[k] = t.edge(i, l)
	}
	return out, nil
}

// Relation returns the relation of a to b. ok is false when the two nodes
// were not related by the build.
func (t *Topology) Relation(a, b string) (rel relation.Relation, ok bool) {
	i, ia := t.index[a]
	j, ib := t.index[b]
	if !ia || !ib {
		return 0, false
	}
	for _, l := range t.adj[i] {
		if l.to == j {
			return l.rel, true
		}
	}
	return 0, false
}
