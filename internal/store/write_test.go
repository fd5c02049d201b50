package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tgis/internal/ir"
	"github.com/roach88/tgis/internal/testutil"
)

func TestWriteDataset_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ds := monthly("precip", 3)
	ds.Objects[1].Spatial = &ir.BBox{North: 10, South: -5.5, East: 20, West: 0}

	res, err := s.WriteDataset(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, res.Status)
	assert.Equal(t, int64(1), res.Seq)

	got, err := s.ReadDataset(ctx, "precip")
	require.NoError(t, err)
	assert.Equal(t, ds.Type, got.Type)
	assert.Equal(t, ds.Granularity, got.Granularity)
	require.Len(t, got.Objects, 3)
	for i := range ds.Objects {
		assert.Equal(t, ds.Objects[i].ID, got.Objects[i].ID)
		assert.True(t, ds.Objects[i].Extent.Equal(got.Objects[i].Extent), "map %d extent", i)
	}
	assert.Nil(t, got.Objects[0].Spatial)
	assert.Equal(t, ds.Objects[1].Spatial, got.Objects[1].Spatial)

	fp, err := ir.DatasetFingerprint(got)
	require.NoError(t, err)
	assert.Equal(t, res.Fingerprint, fp)
}

func TestWriteDataset_Relative(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ds := ir.Dataset{ID: "steps", Type: ir.TypeRelative, Unit: ir.UnitDay}
	for i := int64(0); i < 3; i++ {
		ext, err := ir.NewRelativeExtent(i, i+1, ir.UnitDay)
		require.NoError(t, err)
		ds.Objects = append(ds.Objects, ir.Object{ID: "s" + string(rune('a'+i)), Extent: ext})
	}
	_, err := s.WriteDataset(ctx, ds)
	require.NoError(t, err)

	got, err := s.ReadDataset(ctx, "steps")
	require.NoError(t, err)
	assert.Equal(t, ir.UnitDay, got.Unit)
	assert.Equal(t, ir.UnitDay, got.Objects[2].Extent.Unit())
	assert.Equal(t, int64(2), got.Objects[2].Extent.Start().Value())
}

func TestWriteDataset_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	ds := monthly("precip", 2)
	first, err := s.WriteDataset(ctx, ds)
	require.NoError(t, err)
	second, err := s.WriteDataset(ctx, ds)
	require.NoError(t, err)

	assert.Equal(t, StatusUnchanged, second.Status)
	assert.Equal(t, first.Seq, second.Seq)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
}

func TestWriteDataset_Replace(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.WriteDataset(ctx, monthly("precip", 2))
	require.NoError(t, err)
	_, err = s.WriteDataset(ctx, monthly("temp", 2))
	require.NoError(t, err)

	res, err := s.WriteDataset(ctx, monthly("precip", 5))
	require.NoError(t, err)
	assert.Equal(t, StatusReplaced, res.Status)
	assert.Equal(t, int64(3), res.Seq)

	got, err := s.ReadDataset(ctx, "precip")
	require.NoError(t, err)
	assert.Len(t, got.Objects, 5)

	infos, err := s.ListDatasets(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "temp", infos[0].ID)
	assert.Equal(t, "precip", infos[1].ID)
	assert.Equal(t, 5, infos[1].Maps)
}

func TestWriteDataset_RejectsInvalid(t *testing.T) {
	s := createTestStore(t)
	ds := monthly("precip", 2)
	ds.Objects[1].ID = ds.Objects[0].ID

	_, err := s.WriteDataset(context.Background(), ds)
	require.Error(t, err)

	infos, err := s.ListDatasets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestReadDataset_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.ReadDataset(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	_, err = s.ReadDatasets(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}

func TestDeleteDataset(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.WriteDataset(ctx, monthly("precip", 2))
	require.NoError(t, err)

	require.NoError(t, s.DeleteDataset(ctx, "precip"))
	_, err = s.ReadDataset(ctx, "precip")
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	var maps int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM maps").Scan(&maps))
	assert.Zero(t, maps, "maps must cascade")

	assert.ErrorIs(t, s.DeleteDataset(ctx, "precip"), ErrDatasetNotFound)
}

func TestListDatasets_Empty(t *testing.T) {
	s := createTestStore(t)
	infos, err := s.ListDatasets(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, infos)
	assert.Empty(t, infos)
}

func TestReadMapsBetween(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	_, err := s.WriteDataset(ctx, monthly("precip", 12))
	require.NoError(t, err)

	objs, err := s.ReadMapsBetween(ctx, "precip",
		ir.At(testutil.Date(2001, 3, 1)), ir.At(testutil.Date(2001, 5, 1)))
	require.NoError(t, err)
	ids := make([]string, len(objs))
	for i, o := range objs {
		ids[i] = o.ID
	}
	assert.Equal(t, []string{"precip_3", "precip_4", "precip_5"}, ids)

	_, err = s.ReadMapsBetween(ctx, "precip", ir.Rel(0), ir.Rel(1))
	assert.True(t, ir.IsIncompatibleType(err))
}
