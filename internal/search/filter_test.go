package search

import (
	"context"
	"testing"

	"roomadmin/internal/cascade"
	"roomadmin/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeLocations struct{}

func (fakeLocations) Branches(context.Context) ([]domain.Branch, error) {
	return []domain.Branch{{ID: 1, BranchName: "Downtown"}}, nil
}

func (fakeLocations) Buildings(_ context.Context, branchID int64) ([]domain.Building, error) {
	return []domain.Building{{ID: branchID * 10, BuildingName: "Tower"}}, nil
}

func (fakeLocations) Levels(_ context.Context, buildingID int64) ([]domain.Level, error) {
	return []domain.Level{{ID: buildingID * 10, LevelName: "L1"}}, nil
}

type fakeStore struct {
	searched []domain.RoomFilter
	resets   int
}

func (s *fakeStore) Search(_ context.Context, f domain.RoomFilter) error {
	s.searched = append(s.searched, f)
	return nil
}

func (s *fakeStore) ResetSearch() { s.resets++ }

func setupFilter(t *testing.T) (*Filter, *fakeStore) {
	t.Helper()
	loc := cascade.NewLocation(fakeLocations{}, zap.NewNop())
	require.NoError(t, loc.Start(context.Background()))
	store := &fakeStore{}
	return New(loc, store, zap.NewNop()), store
}

func TestFilter_AllRemovesKey(t *testing.T) {
	f, _ := setupFilter(t)
	ctx := context.Background()

	require.NoError(t, f.Set(ctx, "roomTypeId", "4"))
	v, ok := f.Get("roomTypeId")
	require.True(t, ok)
	assert.Equal(t, int64(4), v)

	require.NoError(t, f.Set(ctx, "roomTypeId", "all"))
	_, ok = f.Get("roomTypeId")
	assert.False(t, ok)

	require.NoError(t, f.Set(ctx, "minRent", "100"))
	require.NoError(t, f.Set(ctx, "minRent", ""))
	assert.Equal(t, 0, f.Len())
	assert.True(t, f.Filter().IsEmpty())
}

func TestFilter_NumericCoercion(t *testing.T) {
	f, _ := setupFilter(t)
	ctx := context.Background()

	require.NoError(t, f.Set(ctx, "minSpace", "12.5"))
	require.NoError(t, f.Set(ctx, "isAvailable", "true"))

	v, _ := f.Get("minSpace")
	assert.Equal(t, 12.5, v)
	v, _ = f.Get("isAvailable")
	assert.Equal(t, "true", v)

	assert.Error(t, f.Set(ctx, "maxRent", "lots"))
	_, ok := f.Get("maxRent")
	assert.False(t, ok)

	assert.ErrorIs(t, f.Set(ctx, "color", "red"), ErrUnknownField)
}

func TestFilter_RejectsNonBooleanAvailability(t *testing.T) {
	f, store := setupFilter(t)
	ctx := context.Background()

	assert.Error(t, f.Set(ctx, "isAvailable", "yes"))
	_, ok := f.Get("isAvailable")
	assert.False(t, ok)
	assert.Nil(t, f.Filter().IsAvailable)

	require.NoError(t, f.Set(ctx, "isAvailable", "false"))
	assert.Error(t, f.Set(ctx, "isAvailable", "maybe"))
	v, ok := f.Get("isAvailable")
	require.True(t, ok)
	assert.Equal(t, "false", v)

	require.NoError(t, f.Submit(ctx))
	require.Len(t, store.searched, 1)
	require.NotNil(t, store.searched[0].IsAvailable)
	assert.False(t, *store.searched[0].IsAvailable)
}

func TestFilter_BranchChangeClearsDescendants(t *testing.T) {
	f, _ := setupFilter(t)
	ctx := context.Background()

	require.NoError(t, f.Set(ctx, "branchId", "1"))
	require.NoError(t, f.Set(ctx, "buildingId", "10"))
	require.NoError(t, f.Set(ctx, "levelId", "100"))
	require.Len(t, f.Location.Options(cascade.Level), 1)

	require.NoError(t, f.Set(ctx, "branchId", "all"))
	for _, k := range []string{"branchId", "buildingId", "levelId"} {
		_, ok := f.Get(k)
		assert.False(t, ok, k)
	}
	assert.Empty(t, f.Location.Options(cascade.Building))
	assert.Empty(t, f.Location.Options(cascade.Level))
}

func TestFilter_ChildNeverClearsParent(t *testing.T) {
	f, _ := setupFilter(t)
	ctx := context.Background()

	require.NoError(t, f.Set(ctx, "branchId", "1"))
	require.NoError(t, f.Set(ctx, "buildingId", "10"))
	require.NoError(t, f.Set(ctx, "levelId", "100"))

	require.NoError(t, f.Set(ctx, "buildingId", "all"))
	v, ok := f.Get("branchId")
	require.True(t, ok)
	assert.Equal(t, int64(1), v)
	_, ok = f.Get("levelId")
	assert.False(t, ok)
	assert.Empty(t, f.Location.Options(cascade.Level))
	assert.Len(t, f.Location.Options(cascade.Building), 1)

	require.NoError(t, f.Set(ctx, "buildingId", "10"))
	require.NoError(t, f.Set(ctx, "levelId", ""))
	_, ok = f.Get("buildingId")
	assert.True(t, ok)
}

func TestFilter_SubmitAndReset(t *testing.T) {
	f, store := setupFilter(t)
	ctx := context.Background()

	require.NoError(t, f.Set(ctx, "branchId", "1"))
	require.NoError(t, f.Set(ctx, "isAvailable", "false"))
	require.NoError(t, f.Set(ctx, "maxSpace", "40"))
	require.NoError(t, f.Submit(ctx))

	require.Len(t, store.searched, 1)
	got := store.searched[0]
	require.NotNil(t, got.BranchID)
	assert.Equal(t, int64(1), *got.BranchID)
	require.NotNil(t, got.IsAvailable)
	assert.False(t, *got.IsAvailable)
	require.NotNil(t, got.MaxSpace)
	assert.Equal(t, 40.0, *got.MaxSpace)
	assert.Nil(t, got.MinSpace)
	assert.Nil(t, got.BuildingID)

	f.Reset()
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 1, store.resets)
	_, ok := f.Location.Selected(cascade.Branch)
	assert.False(t, ok)
}
