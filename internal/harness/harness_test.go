package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inlineMonthly(id string, count int) DatasetDef {
	return DatasetDef{
		ID:          id,
		Granularity: "1 month",
		Series:      &SeriesDef{Start: "2001-01-01", Count: count},
	}
}

func TestRun_MinimalScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "minimal",
		Description: "Two aligned monthly series",
		Datasets:    []DatasetDef{inlineMonthly("a", 2), inlineMonthly("b", 2)},
		Assertions: []Assertion{
			{Type: AssertGranuleCount, Count: 2},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Pass, result.Errors)
	assert.Empty(t, result.Errors)
	assert.Len(t, result.SampleID, 64)
	assert.Equal(t, "1 month", result.Granularity)
	assert.Equal(t, map[string][]string{"a": {"a_1"}, "b": {"b_1"}}, result.Granules[0].Members)
}

func TestRun_FailingAssertionsAreReported(t *testing.T) {
	scenario := &Scenario{
		Name:        "failing",
		Description: "Every assertion is wrong",
		Datasets:    []DatasetDef{inlineMonthly("a", 2), inlineMonthly("b", 1)},
		Assertions: []Assertion{
			{Type: AssertGranuleCount, Count: 5},
			{Type: AssertGranularity, Expect: "1 year"},
			{Type: AssertGranuleMembers, Index: 0, Members: map[string][]string{"a": {"a_2"}}},
			{Type: AssertGranuleExtent, Index: 7, Start: "x", End: "y"},
			{Type: AssertRelation, From: "a_1", To: "b_1", Expect: "before"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "Expected: 5 granules")
	assert.Contains(t, result.Errors[1], "Actual: 1 month")
	assert.Contains(t, result.Errors[2], "a=[a_2]")
	assert.Contains(t, result.Errors[3], "granule 7")
	assert.Contains(t, result.Errors[4], "a_1 equal b_1")
}

func TestRun_GapsAndOrder(t *testing.T) {
	scenario := &Scenario{
		Name:        "gaps",
		Description: "The shorter series leaves a gap",
		Datasets:    []DatasetDef{inlineMonthly("short", 1), inlineMonthly("long", 3)},
		Sample:      SampleDef{Datasets: []string{"long", "short"}, Gaps: true},
		Assertions: []Assertion{
			{Type: AssertGranuleCount, Count: 3},
			{Type: AssertGranuleMembers, Index: 2, Members: map[string][]string{"long": {"long_3"}}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestRun_Relative(t *testing.T) {
	scenario := &Scenario{
		Name:        "relative",
		Description: "Relative day steps",
		Datasets: []DatasetDef{
			{ID: "coarse", Type: "relative", Unit: "days", Maps: []MapDef{
				{ID: "c1", Start: 0, End: 4},
			}},
			{ID: "fine", Type: "relative", Unit: "days", Maps: []MapDef{
				{ID: "f1", Start: 0, End: 2},
				{ID: "f2", Start: 2, End: 4},
			}},
		},
		Sample: SampleDef{Expression: "{contains,started,finished}"},
		Assertions: []Assertion{
			{Type: AssertGranuleCount, Count: 1},
			{Type: AssertGranularity, Expect: "2 days"},
			{Type: AssertRelation, From: "c1", To: "f1", Expect: "started_by"},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
	assert.Equal(t, []string{"f1", "f2"}, result.Granules[0].Members["fine"])
}

func TestRun_InvalidDatasets(t *testing.T) {
	scenario := &Scenario{
		Name:        "invalid",
		Description: "Duplicate ids",
		Datasets:    []DatasetDef{inlineMonthly("a", 1), inlineMonthly("a", 1)},
		Assertions:  []Assertion{{Type: AssertGranuleCount}},
	}
	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[E110]")
}

func TestRun_UnknownSampleDataset(t *testing.T) {
	scenario := &Scenario{
		Name:        "unknown",
		Description: "Sample names a dataset that is not declared",
		Datasets:    []DatasetDef{inlineMonthly("a", 1)},
		Sample:      SampleDef{Datasets: []string{"a", "b"}},
		Assertions:  []Assertion{{Type: AssertGranuleCount}},
	}
	_, err := Run(scenario)
	assert.Error(t, err)
}
