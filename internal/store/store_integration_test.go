//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waste-bknd/internal/models"
	"waste-bknd/internal/store"
	"waste-bknd/internal/testhelpers"
)

func setup(t *testing.T) (*store.Store, *testhelpers.Hierarchy) {
	t.Helper()
	tdb := testhelpers.GetTestDB(t)
	tdb.Truncate(t)

	h := testhelpers.NewHierarchy("it", "Demo Gram Panchayat")
	h.Seed(t, tdb.DB)
	return store.New(tdb.DB), h
}

func estimationAt(h *testhelpers.Hierarchy, at time.Time, weight, volume, confidence float64) *models.WasteEstimation {
	return &models.WasteEstimation{
		ID:                    uuid.NewString(),
		PanchayatID:           h.Panchayat.ID,
		WardID:                h.FirstWard().ID,
		CollectorID:           h.Collector.ID,
		CollectionDate:        at,
		EstimatedWeightKg:     weight,
		EstimatedVolumeLiters: volume,
		MaterialType:          models.MaterialPlastic,
		DensityKgPerL:         0.04,
		ImageQuality:          models.ImageQualityGood,
		Confidence:            confidence,
		Status:                models.StatusPending,
	}
}

func TestStore_HierarchyLookups(t *testing.T) {
	s, h := setup(t)
	ctx := context.Background()

	p, err := s.FirstPanchayatNameContaining(ctx, "Demo")
	require.NoError(t, err)
	assert.Equal(t, h.Panchayat.ID, p.ID)

	_, err = s.FirstPanchayatNameContaining(ctx, "Nowhere")
	assert.ErrorIs(t, err, store.ErrNotFound)

	w, err := s.FirstWardInPanchayat(ctx, h.Panchayat.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, w.WardNumber)

	c, err := s.FirstCollectorInPanchayat(ctx, h.Panchayat.ID)
	require.NoError(t, err)
	assert.Equal(t, h.Collector.ID, c.ID)

	_, err = s.FindCollector(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_CreateAndListEstimations(t *testing.T) {
	s, h := setup(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := s.CreateEstimation(ctx, estimationAt(h, base.Add(time.Duration(i)*24*time.Hour), 1, 25, 0.8))
		require.NoError(t, err)
	}

	created, err := s.CreateEstimation(ctx, estimationAt(h, base.Add(-48*time.Hour), 2.5, 10, 0.5))
	require.NoError(t, err)
	require.NotNil(t, created.GramPanchayat)
	assert.Equal(t, h.Panchayat.Name, created.GramPanchayat.Name)
	require.NotNil(t, created.Collector)

	all, err := s.ListEstimations(ctx, models.EstimationFilter{Limit: 50})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.True(t, all[0].CollectionDate.After(all[1].CollectionDate))
	assert.Equal(t, created.ID, all[3].ID)

	page, err := s.ListEstimations(ctx, models.EstimationFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	from := base
	to := base.Add(24 * time.Hour)
	ranged, err := s.ListEstimations(ctx, models.EstimationFilter{FromDate: &from, ToDate: &to})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	none, err := s.ListEstimations(ctx, models.EstimationFilter{Status: string(models.StatusVerified)})
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := s.GetEstimation(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.5, got.EstimatedWeightKg)
}

func TestStore_Panchayats(t *testing.T) {
	s, h := setup(t)
	ctx := context.Background()

	_, err := s.CreateEstimation(ctx, estimationAt(h, time.Now().UTC(), 1, 25, 0.8))
	require.NoError(t, err)

	list, err := s.ListPanchayats(ctx, h.Block.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Count.Estimations)
	assert.Equal(t, 1, list[0].Count.Collectors)
	require.Len(t, list[0].Wards, 2)
	assert.Equal(t, 1, list[0].Wards[0].WardNumber)
	require.NotNil(t, list[0].Block)
	require.NotNil(t, list[0].Block.ZillaPanchayat)
	assert.Equal(t, h.Zilla.ID, list[0].Block.ZillaPanchayat.ID)

	created, err := s.CreatePanchayat(ctx, &models.GramPanchayat{
		ID: uuid.NewString(), Name: "Second GP", Code: "GP-2", BlockID: h.Block.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, created.Block)
	assert.Equal(t, h.Zilla.ID, created.Block.ZillaPanchayat.ID)

	_, err = s.CreatePanchayat(ctx, &models.GramPanchayat{
		ID: uuid.NewString(), Name: "Dup", Code: "GP-2", BlockID: h.Block.ID,
	})
	assert.True(t, errors.Is(err, store.ErrDuplicate), "got %v", err)

	_, err = s.CreatePanchayat(ctx, &models.GramPanchayat{
		ID: uuid.NewString(), Name: "Orphan", Code: "GP-3", BlockID: "no-such-block",
	})
	assert.True(t, errors.Is(err, store.ErrForeignKey), "got %v", err)
}

func TestStore_AdminListings(t *testing.T) {
	s, h := setup(t)
	ctx := context.Background()

	zillas, err := s.ListZillas(ctx)
	require.NoError(t, err)
	assert.Len(t, zillas, 1)

	blocks, err := s.ListBlocks(ctx, h.Zilla.ID)
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.NotNil(t, blocks[0].ZillaPanchayat)

	wards, err := s.ListWards(ctx, h.Panchayat.ID)
	require.NoError(t, err)
	require.Len(t, wards, 2)
	assert.Equal(t, 1, wards[0].WardNumber)

	collectors, err := s.ListCollectors(ctx, models.CollectorFilter{Role: models.RoleSupervisor})
	require.NoError(t, err)
	assert.Empty(t, collectors)

	require.NoError(t, s.Ping(ctx))
}
