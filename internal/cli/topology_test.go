package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopologySingleDataset(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTopologyCommand(&RootOptions{Format: "text", InstantPolicy: "zero-length"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", datasetsDir, "precip"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "Topology of [precip] (zero-length)")
	assert.Contains(t, output, "maps:     3")
	assert.Contains(t, output, "meets")
}

func TestTopologyObjectReport(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTopologyCommand(&RootOptions{Format: "json", InstantPolicy: "zero-length"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", datasetsDir, "precip", "--object", "precip_2"})

	require.NoError(t, cmd.Execute())

	var result struct {
		Datasets []string       `json:"datasets"`
		Summary  map[string]any `json:"summary"`
		Object   *ObjectReport  `json:"object"`
	}
	decodeData(t, buf.String(), &result)
	assert.Equal(t, []string{"precip"}, result.Datasets)
	assert.EqualValues(t, 3, result.Summary["objects"])
	require.NotNil(t, result.Object)
	assert.Equal(t, "precip_2", result.Object.ID)
	assert.Equal(t, "precip_1", result.Object.Predecessor)
	assert.Equal(t, "precip_3", result.Object.Successor)
	assert.Empty(t, result.Object.Warnings)
}

func TestTopologyAcrossDatasets(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTopologyCommand(&RootOptions{Format: "json", InstantPolicy: "zero-length"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", datasetsDir, "precip", "obs"})

	require.NoError(t, cmd.Execute())

	var result struct {
		Datasets []string       `json:"datasets"`
		Summary  map[string]any `json:"summary"`
	}
	decodeData(t, buf.String(), &result)
	assert.Equal(t, []string{"precip", "obs"}, result.Datasets)
	assert.EqualValues(t, 6, result.Summary["objects"])

	relations, ok := result.Summary["relations"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, relations, "contains")
}

func TestTopologyUnknownObject(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewTopologyCommand(&RootOptions{Format: "text", InstantPolicy: "zero-length"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"-f", datasetsDir, "precip", "--object", "precip_9"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "precip_9")
}
