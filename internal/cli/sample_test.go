package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleFromFile(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSampleCommand(&RootOptions{Format: "json", InstantPolicy: "zero-length"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", datasetsDir, "precip", "obs", "--expr", "{contains,#}", "--gaps"})

	require.NoError(t, cmd.Execute())

	var result SampleResult
	resp := decodeData(t, buf.String(), &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, result.ID, 64)
	assert.False(t, result.Recorded)
	assert.Equal(t, []string{"precip", "obs"}, result.Params.Datasets)

	require.Len(t, result.Granules, 4)
	assert.Equal(t, []string{"obs_1"}, result.Granules[0].Members["obs"])
	assert.Equal(t, 1, result.Granules[0].Count)
	assert.Empty(t, result.Granules[1].Members["obs"])
	assert.Equal(t, []string{"precip_2"}, result.Granules[1].Members["precip"])
	assert.Equal(t, "2001-05-01 00:00:00", result.Granules[3].Start)
	assert.Equal(t, []string{"obs_3"}, result.Granules[3].Members["obs"])
}

func TestSampleWithoutGapsDropsEmptyGranules(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSampleCommand(&RootOptions{Format: "json", InstantPolicy: "zero-length"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", datasetsDir, "precip", "obs", "-e", "{contains}"})

	require.NoError(t, cmd.Execute())

	var result SampleResult
	decodeData(t, buf.String(), &result)
	require.Len(t, result.Granules, 2)
	assert.Equal(t, []string{"precip_1"}, result.Granules[0].Members["precip"])
	assert.Equal(t, []string{"precip_3"}, result.Granules[1].Members["precip"])
}

func TestSampleIsDeterministic(t *testing.T) {
	ids := make([]string, 2)
	for i := range ids {
		buf := &bytes.Buffer{}
		cmd := NewSampleCommand(&RootOptions{Format: "json", InstantPolicy: "zero-length"})
		cmd.SetOut(buf)
		cmd.SetArgs([]string{"-f", datasetsDir, "precip", "obs", "-e", "{contains,#}"})
		require.NoError(t, cmd.Execute())

		var result SampleResult
		decodeData(t, buf.String(), &result)
		ids[i] = result.ID
	}
	assert.Equal(t, ids[0], ids[1])
}

func TestSampleText(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewSampleCommand(&RootOptions{Format: "text", InstantPolicy: "zero-length"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", datasetsDir, "precip", "obs", "-e", "{contains,#}", "--gaps"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "{contains,#} over precip, obs (topology): 4 granule(s)")
	assert.Contains(t, output, "  [2001-01-01 00:00:00, 2001-02-01 00:00:00] count=1\n")
	assert.NotContains(t, output, "recorded as")
}

func TestSampleErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		exit int
		code string
	}{
		{"bad expression", []string{"-f", datasetsDir, "precip", "obs", "-e", "{sometimes}"}, ExitFailure, "PARSE_ERROR"},
		{"unknown mode", []string{"-f", datasetsDir, "precip", "--mode", "random"}, ExitCommandError, ErrCodeArgument},
		{"unknown dataset", []string{"-f", datasetsDir, "precip", "temp"}, ExitCommandError, ErrCodeNotFound},
		{"record from file", []string{"-f", datasetsDir, "precip", "--record"}, ExitCommandError, ErrCodeArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			cmd := NewSampleCommand(&RootOptions{Format: "json", InstantPolicy: "zero-length"})
			cmd.SetOut(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, tt.exit, GetExitCode(err))

			resp := decodeData(t, buf.String(), nil)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
