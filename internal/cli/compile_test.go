package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileValidDatasets(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{datasetsDir})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "✓ Compiled 2 dataset(s)")
	assert.Contains(t, output, "precip: 3 map(s)")
	assert.Contains(t, output, "obs: 3 map(s)")
}

func TestCompileValidDatasetsJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{datasetsDir})

	require.NoError(t, cmd.Execute())

	var stats []DatasetStats
	resp := decodeData(t, buf.String(), &stats)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, stats, 2)
	assert.Equal(t, "precip", stats[0].ID)
	assert.Equal(t, "1 month", stats[0].Granularity)
	assert.Equal(t, "[2001-01-01 00:00:00, 2001-04-01 00:00:00]", stats[0].Extent)
	assert.Len(t, stats[0].Fingerprint, 64)
	assert.Equal(t, "obs", stats[1].ID)
}

func TestCompileSingleFile(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join(datasetsDir, "datasets.cue")})

	require.NoError(t, cmd.Execute())

	var stats []DatasetStats
	decodeData(t, buf.String(), &stats)
	assert.Len(t, stats, 2)
}

func TestCompileOutputToFile(t *testing.T) {
	outFile := filepath.Join(t.TempDir(), "datasets.json")

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{datasetsDir, "-o", outFile})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "Wrote datasets to")

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)

	var result map[string][]map[string]any
	require.NoError(t, json.Unmarshal(data, &result))
	require.Len(t, result["datasets"], 2)
}

func TestCompileNonExistentDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"/nonexistent/directory/path"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestCompileEmptyDirectory(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeNoFiles)
	assert.Contains(t, buf.String(), "no CUE files found")
}

func TestCompileInvalidDataset(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{filepath.Join("testdata", "invalid")})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), "✗ Compilation failed")
	assert.Contains(t, buf.String(), ErrCodeMaps)
	assert.Contains(t, buf.String(), "at least one map is required")
}

func TestCompileBadGranularity(t *testing.T) {
	dir := t.TempDir()
	src := `package bad

dataset: precip: {
	granularity: "3 fortnights"
	maps: [{start: "2001-01-01"}]
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.cue"), []byte(src), 0644))

	buf := &bytes.Buffer{}
	cmd := NewCompileCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{dir})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, buf.String(), ErrCodeGranularity)
}

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.cue"), []byte("package x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("not cue"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "c.cue"), []byte("package x"), 0644))

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field    string
		expected string
	}{
		{"cue", ErrCodeCUE},
		{"type", ErrCodeType},
		{"unit", ErrCodeUnit},
		{"granularity", ErrCodeGranularity},
		{"maps", ErrCodeMaps},
		{"maps.start", ErrCodeMaps},
		{"bbox", ErrCodeBBox},
		{"bbox.north", ErrCodeBBox},
		{"series", ErrCodeSeries},
		{"series.count", ErrCodeSeries},
		{"dataset", ErrCodeGeneric},
		{"unknown", ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapFieldToErrorCode(tt.field))
		})
	}
}
