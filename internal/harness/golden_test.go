package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden_Scenarios(t *testing.T) {
	files, err := DiscoverScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, path := range files {
		scenario, err := LoadScenario(path)
		require.NoError(t, err)

		t.Run(scenario.Name, func(t *testing.T) {
			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, result.Errors)
		})
	}
}

func TestMarshalSnapshot_Canonical(t *testing.T) {
	result := NewResult()
	result.Granules = append(result.Granules, GranuleSnapshot{
		Index:   0,
		Start:   "2001-01-01 00:00:00",
		End:     "2001-02-01 00:00:00",
		Members: map[string][]string{"b": nil, "a": {"a_1"}},
	})

	data, err := MarshalSnapshot("snap", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"granules":[{"end":"2001-02-01 00:00:00","index":0,"members":{"a":["a_1"],"b":[]},"start":"2001-01-01 00:00:00"}],"scenario_name":"snap"}`,
		string(data))
}
