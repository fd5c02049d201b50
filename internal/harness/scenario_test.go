package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Fixture(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/monthly_alignment.yaml")
	require.NoError(t, err)

	assert.Equal(t, "monthly_alignment", s.Name)
	require.Len(t, s.Specs, 1)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "datasets.cue"), s.Specs[0])
	require.Len(t, s.Datasets, 1)
	assert.Equal(t, "yearly", s.Datasets[0].ID)
	assert.Equal(t, "granularity", s.Sample.Mode)
	assert.Len(t, s.Assertions, 6)
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "has a typo"
datasets:
  - id: a
    series: { start: "2001-01-01", count: 1 }
assertion:
  - type: granule_count
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: `description: x`,
			wantErr: "name is required",
		},
		{
			name: "no datasets",
			content: `
name: x
description: x
assertions: [{type: granule_count}]`,
			wantErr: "specs or datasets are required",
		},
		{
			name: "missing spec file",
			content: `
name: x
description: x
specs: [nope.cue]
assertions: [{type: granule_count}]`,
			wantErr: "spec file not found",
		},
		{
			name: "dataset without maps",
			content: `
name: x
description: x
datasets: [{id: a}]
assertions: [{type: granule_count}]`,
			wantErr: "maps or series is required",
		},
		{
			name: "bad expression",
			content: `
name: x
description: x
datasets: [{id: a, maps: [{start: "2001-01-01"}]}]
sample: {expression: "{sideways}"}
assertions: [{type: granule_count}]`,
			wantErr: "sample.expression",
		},
		{
			name: "bad mode",
			content: `
name: x
description: x
datasets: [{id: a, maps: [{start: "2001-01-01"}]}]
sample: {mode: cells}
assertions: [{type: granule_count}]`,
			wantErr: "sample.mode",
		},
		{
			name: "no assertions",
			content: `
name: x
description: x
datasets: [{id: a, maps: [{start: "2001-01-01"}]}]`,
			wantErr: "assertions list is required",
		},
		{
			name: "unknown assertion",
			content: `
name: x
description: x
datasets: [{id: a, maps: [{start: "2001-01-01"}]}]
assertions: [{type: trace_order}]`,
			wantErr: "unknown assertion type",
		},
		{
			name: "relation without maps",
			content: `
name: x
description: x
datasets: [{id: a, maps: [{start: "2001-01-01"}]}]
assertions: [{type: relation, expect: equal}]`,
			wantErr: "from and to are required",
		},
		{
			name: "unknown relation",
			content: `
name: x
description: x
datasets: [{id: a, maps: [{start: "2001-01-01"}]}]
assertions: [{type: relation, from: a, to: b, expect: near}]`,
			wantErr: "unknown temporal relation",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestDiscoverScenarios(t *testing.T) {
	files, err := DiscoverScenarios("testdata/scenarios")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("testdata", "scenarios", "monthly_alignment.yaml"),
		filepath.Join("testdata", "scenarios", "sparse_observations.yaml"),
	}, files)

	single, err := DiscoverScenarios(files[0])
	require.NoError(t, err)
	assert.Equal(t, files[:1], single)

	_, err = DiscoverScenarios("testdata/missing")
	var nf *ScenarioNotFoundError
	assert.ErrorAs(t, err, &nf)
}
