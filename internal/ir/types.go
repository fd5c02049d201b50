package ir

import (
	"fmt"
	"strconv"
)

// BBox is a two-dimensional bounding box.
type BBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// Validate rejects boxes whose north edge is below the south edge or whose
// east edge is left of the west edge.
func (b BBox) Validate() error {
	if b.North < b.South {
		return fmt.Errorf("bbox north %s is below south %s", ftoa(b.North), ftoa(b.South))
	}
	if b.East < b.West {
		return fmt.Errorf("bbox east %s is left of west %s", ftoa(b.East), ftoa(b.West))
	}
	return nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Object is one time-stamped map of a dataset. Identity is ID. Payload is a
// handle back to the caller's native map representation and is never
// inspected.
type Object struct {
	ID      string `json:"id"`
	Extent  Extent `json:"extent"`
	Spatial *BBox  `json:"bbox,omitempty"`
	Payload any    `json:"-"`
}

// Dataset is an ordered collection of objects sharing one logical identity.
type Dataset struct {
	ID          string       `json:"id"`
	Type        TemporalType `json:"temporal_type"`
	Unit        Unit         `json:"unit,omitempty"`        // relative datasets only
	Granularity string       `json:"granularity,omitempty"` // declared, e.g. "1 month"
	Objects     []Object     `json:"objects"`
}

// Validate checks that every object extent matches the dataset's temporal
// type and that object IDs are unique.
func (d Dataset) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("dataset id is required")
	}
	seen := make(map[string]bool, len(d.Objects))
	for i, obj := range d.Objects {
		if obj.ID == "" {
			return fmt.Errorf("dataset %s: object %d has no id", d.ID, i)
		}
		if seen[obj.ID] {
			return fmt.Errorf("dataset %s: duplicate object id %q", d.ID, obj.ID)
		}
		seen[obj.ID] = true
		if obj.Extent.IsZero() {
			return fmt.Errorf("dataset %s: object %s has no extent", d.ID, obj.ID)
		}
		if d.Type != "" && obj.Extent.Type() != d.Type {
			return &IncompatibleTemporalTypeError{Left: d.Type, Right: obj.Extent.Type(),
				Context: fmt.Sprintf("dataset %s object %s", d.ID, obj.ID)}
		}
		if obj.Spatial != nil {
			if err := obj.Spatial.Validate(); err != nil {
				return fmt.Errorf("dataset %s object %s: %w", d.ID, obj.ID, err)
			}
		}
	}
	return nil
}

// Extent returns the span of all objects. ok is false for an empty dataset.
func (d Dataset) Extent() (ext Extent, ok bool) {
	for i, obj := range d.Objects {
		if i == 0 {
			ext = obj.Extent
			continue
		}
		ext = ext.Span(obj.Extent)
	}
	return ext, len(d.Objects) > 0
}

// Members lists the objects one dataset contributes to a granule.
type Members struct {
	DatasetID string   `json:"dataset"`
	Objects   []Object `json:"objects"`
}

// Granule is one aligned output unit: a resulting time extent with the
// contributing objects of every input dataset, in dataset argument order.
type Granule struct {
	Extent  Extent    `json:"extent"`
	Members []Members `json:"members"`
	Count   int       `json:"count,omitempty"` // set by the count function
}

// Start returns the granule start.
func (g Granule) Start() Point { return g.Extent.Start() }

// End returns the granule end.
func (g Granule) End() Point { return g.Extent.End() }

// Member returns the objects contributed by dataset id. ok is false when the
// dataset took no part in the operation.
func (g Granule) Member(id string) (objs []Object, ok bool) {
	for _, m := range g.Members {
		if m.DatasetID == id {
			return m.Objects, true
		}
	}
	return nil, false
}

// MemberIDs returns the object IDs per dataset, for logging and assertions.
func (g Granule) MemberIDs() map[string][]string {
	out := make(map[string][]string, len(g.Members))
	for _, m := range g.Members {
		ids := make([]string, 0, len(m.Objects))
		for _, obj := range m.Objects {
			ids = append(ids, obj.ID)
		}
		out[m.DatasetID] = ids
	}
	return out
}

// HasGap reports whether any dataset contributes no objects.
func (g Granule) HasGap() bool {
	for _, m := range g.Members {
		if len(m.Objects) == 0 {
			return true
		}
	}
	return false
}
