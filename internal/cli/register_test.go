package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tgis/internal/store"
)

const grownDatasets = `package datasets

dataset: precip: {
	granularity: "1 month"
	series: {start: "2001-01-01", count: 4}
}

dataset: obs: {
	maps: [
		{id: "obs_1", start: "2001-01-15"},
		{id: "obs_2", start: "2001-03-10 06:00:00"},
		{id: "obs_3", start: "2001-05-01"},
	]
}
`

func TestRegisterAndList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tgis.db")

	out, err := execute(t, "register", datasetsDir, "--db", db, "--format", "json")
	require.NoError(t, err)

	var registered RegisterResult
	decodeData(t, out, &registered)
	require.Len(t, registered.Datasets, 2)
	assert.Equal(t, "precip", registered.Datasets[0].ID)
	assert.Equal(t, store.StatusCreated, registered.Datasets[0].Status)

	out, err = execute(t, "register", datasetsDir, "--db", db, "--format", "json")
	require.NoError(t, err)
	decodeData(t, out, &registered)
	assert.Equal(t, store.StatusUnchanged, registered.Datasets[0].Status)

	out, err = execute(t, "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Datasets:")
	assert.Contains(t, out, "precip")
	assert.Contains(t, out, "1 month")

	out, err = execute(t, "list", "--db", db, "--format", "json")
	require.NoError(t, err)
	var listed ListResult
	decodeData(t, out, &listed)
	require.Len(t, listed.Datasets, 2)
	assert.Equal(t, "precip", listed.Datasets[0].ID)
	assert.Equal(t, 3, listed.Datasets[0].Maps)
	assert.Equal(t, "obs", listed.Datasets[1].ID)
}

func TestRegisterRequiresDatabase(t *testing.T) {
	_, err := execute(t, "register", datasetsDir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "database path required")
}

func TestDatabaseRequiredJSON(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"register", []string{"register", datasetsDir}},
		{"remove", []string{"remove", "obs"}},
		{"list", []string{"list"}},
		{"replay", []string{"replay"}},
		{"sample record", []string{"sample", "precip", "obs", "--record"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--format", "json")...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))

			resp := decodeData(t, out, nil)
			assert.Equal(t, "error", resp.Status)
			require.NotNil(t, resp.Error)
			assert.Equal(t, ErrCodeDatabase, resp.Error.Code)
			assert.Contains(t, resp.Error.Message, "database path required")
		})
	}
}

func TestRegisterDatabaseFromEnvironment(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tgis.db")
	t.Setenv("TGIS_DB", db)

	_, err := execute(t, "register", datasetsDir)
	require.NoError(t, err)

	out, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "obs")
}

func TestRegisterInvalidDataset(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tgis.db")

	out, err := execute(t, "register", filepath.Join("testdata", "invalid"), "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, ErrCodeMaps)

	out, err = execute(t, "list", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No datasets registered.")
}

func TestRemove(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tgis.db")

	_, err := execute(t, "register", datasetsDir, "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "remove", "obs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Removed obs")

	_, err = execute(t, "remove", "obs", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeNotFound)
}

func TestSampleRecordAndReplay(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "tgis.db")

	_, err := execute(t, "register", datasetsDir, "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "sample", "precip", "obs", "-e", "{contains,#}", "--gaps", "--record", "--db", db, "--format", "json")
	require.NoError(t, err)
	var sampled SampleResult
	decodeData(t, out, &sampled)
	assert.True(t, sampled.Recorded)
	require.Len(t, sampled.Granules, 4)

	// Recording the same run again keeps a single sample.
	_, err = execute(t, "sample", "precip", "obs", "-e", "{contains,#}", "--gaps", "--record", "--db", db)
	require.NoError(t, err)

	out, err = execute(t, "list", "--samples", "--db", db, "--format", "json")
	require.NoError(t, err)
	var listed ListResult
	decodeData(t, out, &listed)
	require.Len(t, listed.Samples, 1)
	assert.Equal(t, sampled.ID, listed.Samples[0].ID)
	assert.Equal(t, 4, listed.Samples[0].Granules)

	out, err = execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All samples replayed identically")

	out, err = execute(t, "replay", sampled.ID, "--db", db, "--format", "json")
	require.NoError(t, err)
	var replayed ReplayResult
	decodeData(t, out, &replayed)
	assert.True(t, replayed.AllIdentical)
	require.Len(t, replayed.Samples, 1)
	assert.Equal(t, sampled.ID, replayed.Samples[0].ReplayID)

	// A grown series changes the replayed granules.
	grown := filepath.Join(dir, "grown.cue")
	require.NoError(t, os.WriteFile(grown, []byte(grownDatasets), 0644))
	_, err = execute(t, "register", grown, "--db", db)
	require.NoError(t, err)

	out, err = execute(t, "replay", "--db", db, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decodeData(t, out, &replayed)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E_NONDETERMINISTIC", resp.Error.Code)
	assert.False(t, replayed.AllIdentical)
	assert.Equal(t, 4, replayed.Samples[0].Recorded)
	assert.NotEqual(t, replayed.Samples[0].SampleID, replayed.Samples[0].ReplayID)
}

func TestReplayEmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tgis.db")

	out, err := execute(t, "replay", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "No samples found in database.")
}

func TestReplayUnknownSample(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tgis.db")

	_, err := execute(t, "replay", "deadbeef", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestSampleFromRegister(t *testing.T) {
	db := filepath.Join(t.TempDir(), "tgis.db")

	_, err := execute(t, "register", datasetsDir, "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "granularity", "--db", db, "--format", "json")
	require.NoError(t, err)
	var gran GranularityResult
	decodeData(t, out, &gran)
	assert.Equal(t, "6 hours", gran.Granularity)

	out, err = execute(t, "topology", "precip", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "maps:     3")
}
