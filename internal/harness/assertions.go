package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/relation"
	"github.com/roach88/tgis/internal/topology"
)

// AssertionContext carries what assertions need beyond the result.
type AssertionContext struct {
	Datasets []ir.Dataset
	Policy   relation.Policy

	topo *topology.Topology
}

// AssertionError is returned when an assertion fails.
// It includes the granules to help debug the failure.
type AssertionError struct {
	Type     string            // Assertion type for categorization
	Expected string            // Human-readable expected outcome
	Actual   string            // Human-readable actual outcome
	Granules []GranuleSnapshot // Full output for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Granules) > 0 {
		fmt.Fprintf(&buf, "\nGranules:\n")
		for _, g := range e.Granules {
			fmt.Fprintf(&buf, "  [%d] %s .. %s %s\n", g.Index, g.Start, g.End, formatMembers(g.Members))
		}
	}

	return buf.String()
}

func formatMembers(m map[string][]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, m[k])
	}
	return strings.Join(parts, " ")
}

func assertGranuleCount(result *Result, a Assertion) error {
	if len(result.Granules) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertGranuleCount,
		Expected: fmt.Sprintf("%d granules", a.Count),
		Actual:   fmt.Sprintf("%d granules", len(result.Granules)),
		Granules: result.Granules,
	}
}

func assertGranularity(result *Result, a Assertion) error {
	if result.Granularity == a.Expect {
		return nil
	}
	actual := result.Granularity
	if actual == "" {
		actual = "unresolved"
	}
	return &AssertionError{
		Type:     AssertGranularity,
		Expected: a.Expect,
		Actual:   actual,
	}
}

func granuleAt(result *Result, a Assertion) (GranuleSnapshot, error) {
	if a.Index < 0 || a.Index >= len(result.Granules) {
		return GranuleSnapshot{}, &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("granule %d", a.Index),
			Actual:   fmt.Sprintf("%d granules", len(result.Granules)),
			Granules: result.Granules,
		}
	}
	return result.Granules[a.Index], nil
}

// assertGranuleMembers requires an exact match: every dataset listed with
// exactly the given IDs, in order, and no other dataset with members.
func assertGranuleMembers(result *Result, a Assertion) error {
	g, err := granuleAt(result, a)
	if err != nil {
		return err
	}
	if membersEqual(g.Members, a.Members) {
		return nil
	}
	return &AssertionError{
		Type:     AssertGranuleMembers,
		Expected: formatMembers(a.Members),
		Actual:   formatMembers(g.Members),
		Granules: result.Granules,
	}
}

// membersEqual treats a missing dataset and an empty list alike.
func membersEqual(actual, expected map[string][]string) bool {
	keys := make(map[string]bool)
	for k := range actual {
		keys[k] = true
	}
	for k := range expected {
		keys[k] = true
	}
	for k := range keys {
		x, y := actual[k], expected[k]
		if len(x) == 0 && len(y) == 0 {
			continue
		}
		if !reflect.DeepEqual(x, y) {
			return false
		}
	}
	return true
}

func assertGranuleExtent(result *Result, a Assertion) error {
	g, err := granuleAt(result, a)
	if err != nil {
		return err
	}
	if g.Start == a.Start && g.End == a.End {
		return nil
	}
	return &AssertionError{
		Type:     AssertGranuleExtent,
		Expected: fmt.Sprintf("[%s, %s]", a.Start, a.End),
		Actual:   fmt.Sprintf("[%s, %s]", g.Start, g.End),
		Granules: result.Granules,
	}
}

func assertRelation(actx *AssertionContext, a Assertion) error {
	want, err := relation.Parse(a.Expect)
	if err != nil {
		return err
	}
	topo, err := actx.topologyOf()
	if err != nil {
		return err
	}
	got, ok := topo.Relation(a.From, a.To)
	if !ok {
		return &AssertionError{
			Type:     AssertRelation,
			Expected: fmt.Sprintf("%s %s %s", a.From, want, a.To),
			Actual:   "not related",
		}
	}
	if got == want {
		return nil
	}
	return &AssertionError{
		Type:     AssertRelation,
		Expected: fmt.Sprintf("%s %s %s", a.From, want, a.To),
		Actual:   fmt.Sprintf("%s %s %s", a.From, got, a.To),
	}
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertGranuleCount:
			err = assertGranuleCount(result, a)
		case AssertGranularity:
			err = assertGranularity(result, a)
		case AssertGranuleMembers:
			err = assertGranuleMembers(result, a)
		case AssertGranuleExtent:
			err = assertGranuleExtent(result, a)
		case AssertRelation:
			err = assertRelation(actx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %s", i, err.Error()))
		}
	}
	return errs
}
