package topology

import (
	"github.com/roach88/tgis/internal/relation"
)

// Summary condenses a topology for reports.
type Summary struct {
	Objects   int                       `json:"objects"`
	Edges     int                       `json:"edges"`
	Relations map[relation.Relation]int `json:"relations"`
	Gaps      int                       `json:"gaps"`
	Clusters  int                       `json:"clusters"`
}

// Summary counts the edges per relation (read from the earlier inserted
// end), the objects followed by a gap before their successor, and the
// groups of two or more objects that share time.
func (t *Topology) Summary() Summary {
	s := Summary{Objects: len(t.nodes), Relations: make(map[relation.Relation]int)}
	for i, links := range t.adj {
		for _, l := range links {
			if l.to > i {
				s.Edges++
				s.Relations[l.rel]++
			}
		}
	}
	for i := range t.nodes {
		succ, _ := t.SuccessorsOf(t.nodes[i].Object.ID)
		if len(succ) == 0 {
			continue
		}
		if rel, _ := t.Relation(t.nodes[i].Object.ID, succ[0].Object.ID); rel == relation.Before {
			s.Gaps++
		}
	}
	for _, c := range t.Components(SharesTime) {
		if len(c) > 1 {
			s.Clusters++
		}
	}
	return s
}
