package relation

import (
	"fmt"

	"github.com/roach88/tgis/internal/ir"
)

// Policy selects how instants are placed against interval boundaries.
type Policy uint8

const (
	// PolicyZeroLength treats an instant as a closed zero-length interval.
	// An instant at an interval's end finishes it.
	PolicyZeroLength Policy = iota

	// PolicyPointStart treats intervals as half-open [start, end). An
	// instant at an interval's start starts it and an instant at its end
	// is met by it.
	PolicyPointStart
)

func (p Policy) String() string {
	switch p {
	case PolicyZeroLength:
		return "zero-length"
	case PolicyPointStart:
		return "point-start"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// ParsePolicy parses "zero-length" or "point-start".
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "zero-length":
		return PolicyZeroLength, nil
	case "point-start":
		return PolicyPointStart, nil
	default:
		return 0, fmt.Errorf("unknown instant policy %q: must be zero-length or point-start", s)
	}
}

// Classifier classifies extents under a fixed instant policy.
// The zero value uses PolicyZeroLength.
type Classifier struct {
	policy Policy
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithPolicy sets the instant policy.
func WithPolicy(p Policy) Option {
	return func(c *Classifier) {
		c.policy = p
	}
}

// NewClassifier creates a Classifier.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the classifier's instant policy.
func (c *Classifier) Policy() Policy { return c.policy }

// Classify returns the relation of a to b under PolicyZeroLength.
func Classify(a, b ir.Extent) (Relation, error) {
	return (&Classifier{}).Classify(a, b)
}

// Classify returns the relation of a to b. It fails with
// *ir.IncompatibleTemporalTypeError when a and b mix absolute and relative
// time or relative units.
func (c *Classifier) Classify(a, b ir.Extent) (Relation, error) {
	if err := ir.SameType(a, b); err != nil {
		return 0, err
	}
	if c.policy == PolicyPointStart {
		switch {
		case a.IsInstant() && !b.IsInstant() && a.Start().Equal(b.End()):
			return MetBy, nil
		case b.IsInstant() && !a.IsInstant() && b.Start().Equal(a.End()):
			return Meets, nil
		}
	}
	return classify(a.Start(), a.End(), b.Start(), b.End()), nil
}

// classify compares the boundary points of two closed intervals. The order
// of the checks matters: degenerate intervals satisfy several comparisons
// at once and the first match wins.
func classify(as, ae, bs, be ir.Point) Relation {
	ss := as.Compare(bs)
	ee := ae.Compare(be)
	es := ae.Compare(bs)
	se := as.Compare(be)

	switch {
	case ss == 0 && ee == 0:
		return Equal
	case es < 0:
		return Before
	case se > 0:
		return After
	case ss == 0:
		if ee < 0 {
			return Starts
		}
		return StartedBy
	case ee == 0:
		if ss > 0 {
			return Finishes
		}
		return FinishedBy
	case es == 0:
		return Meets
	case se == 0:
		return MetBy
	case ss < 0 && ee > 0:
		return Contains
	case ss > 0 && ee < 0:
		return During
	case ss < 0:
		return Overlaps
	default:
		return OverlappedBy
	}
}
