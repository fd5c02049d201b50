package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tgis/internal/ir"
)

// Snapshot captures the granules of a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type Snapshot struct {
	ScenarioName string            `json:"scenario_name"`
	Granularity  string            `json:"granularity,omitempty"`
	Granules     []GranuleSnapshot `json:"granules"`
}

// toCanonicalMap converts a Snapshot to a map[string]any for canonical JSON
// serialization.
func (s *Snapshot) toCanonicalMap() map[string]any {
	granules := make([]any, len(s.Granules))
	for i, g := range s.Granules {
		members := make(map[string]any, len(g.Members))
		for k, ids := range g.Members {
			if ids == nil {
				ids = []string{}
			}
			members[k] = ids
		}
		m := map[string]any{
			"index":   g.Index,
			"start":   g.Start,
			"end":     g.End,
			"members": members,
		}
		if g.Count > 0 {
			m["count"] = g.Count
		}
		granules[i] = m
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"granules":      granules,
	}
	if s.Granularity != "" {
		result["granularity"] = s.Granularity
	}
	return result
}

// MarshalSnapshot renders the canonical JSON compared against golden files.
func MarshalSnapshot(name string, result *Result) ([]byte, error) {
	snapshot := Snapshot{
		ScenarioName: name,
		Granularity:  result.Granularity,
		Granules:     result.Granules,
	}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its granules against a
// golden file stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := MarshalSnapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
