package detail

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"roomadmin/internal/client"
	"roomadmin/internal/domain"
	"roomadmin/internal/mockapi"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRoomWithUtilities(t *testing.T) (*View, *mockapi.MemoryRepo, mockapi.Seeded, domain.Room) {
	t.Helper()
	repo := mockapi.NewMemoryRepo()
	s := mockapi.Seed(repo)
	room, err := repo.CreateRoom(mockapi.RoomInput{
		RoomNumber:     "D-1",
		LevelID:        s.Levels[0],
		RoomTypeID:     s.RoomTypes[0],
		RoomSpace:      30,
		RentalFee:      decimal.NewFromInt(700),
		UtilityTypeIDs: s.UtilityTypes,
		ImageURLs:      []string{"/1.jpg", "/2.jpg", "/3.jpg"},
	})
	require.NoError(t, err)
	for _, id := range s.UtilityTypes[1:] {
		require.NoError(t, repo.SetUtilityActive(room.ID, id, false))
	}

	srv := httptest.NewServer(mockapi.NewRouter(repo, mockapi.Options{}, zap.NewNop()))
	t.Cleanup(srv.Close)
	c := client.New(srv.URL, 5*time.Second, zap.NewNop())
	return NewView(c.Rooms, zap.NewNop()), repo, s, room
}

func TestView_ToggleRecomputesSummary(t *testing.T) {
	v, _, s, room := setupRoomWithUtilities(t)
	ctx := context.Background()

	require.NoError(t, v.Open(ctx, room.ID))
	assert.Equal(t, "1 active / 5 total", v.Summary())

	require.NoError(t, v.ToggleUtility(ctx, s.UtilityTypes[3]))
	assert.Equal(t, "2 active / 5 total", v.Summary())

	v.Close()
	require.NoError(t, v.Open(ctx, room.ID))
	got, ok := v.Room()
	require.True(t, ok)
	for _, u := range got.Utilities {
		want := u.UtilityTypeID == s.UtilityTypes[0] || u.UtilityTypeID == s.UtilityTypes[3]
		assert.Equal(t, want, u.IsActive, u.UtilityName)
	}
	assert.Len(t, got.Utilities, 5)
}

func TestView_ToggleRequiresOpenRoomAndKnownUtility(t *testing.T) {
	v, _, _, room := setupRoomWithUtilities(t)
	ctx := context.Background()

	assert.ErrorIs(t, v.ToggleUtility(ctx, 1), ErrNoRoom)
	require.NoError(t, v.Open(ctx, room.ID))
	assert.ErrorIs(t, v.ToggleUtility(ctx, 9999), ErrUnknownUtility)
}

func TestView_OpenMissingRoom(t *testing.T) {
	v, _, _, _ := setupRoomWithUtilities(t)
	err := v.Open(context.Background(), 9999)
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrNotFound)
	_, ok := v.Room()
	assert.False(t, ok)
	assert.Equal(t, "0 active / 0 total", v.Summary())
}

func TestView_OpenMissingRoomClearsPreviousRoom(t *testing.T) {
	v, _, s, room := setupRoomWithUtilities(t)
	ctx := context.Background()

	require.NoError(t, v.Open(ctx, room.ID))
	v.Gallery.Open()
	require.True(t, v.Gallery.IsOpen())

	err := v.Open(ctx, 9999)
	assert.ErrorIs(t, err, client.ErrNotFound)
	assert.ErrorIs(t, v.Err(), client.ErrNotFound)

	_, ok := v.Room()
	assert.False(t, ok)
	assert.Equal(t, "0 active / 0 total", v.Summary())
	assert.False(t, v.Gallery.IsOpen())
	assert.ErrorIs(t, v.ToggleUtility(ctx, s.UtilityTypes[0]), ErrNoRoom)
}

// blockingAPI holds toggles for one utility until released.
type blockingAPI struct {
	room    domain.Room
	blockID int64
	entered chan struct{}
	release chan struct{}
	toggled []int64
}

func (b *blockingAPI) Get(context.Context, int64) (*domain.Room, error) {
	r := b.room
	return &r, nil
}

func (b *blockingAPI) ToggleUtilityStatus(_ context.Context, _ int64, utilityTypeID int64, _ bool) error {
	if utilityTypeID == b.blockID {
		close(b.entered)
		<-b.release
	}
	b.toggled = append(b.toggled, utilityTypeID)
	return nil
}

func TestView_PerUtilityInFlightLock(t *testing.T) {
	api := &blockingAPI{
		room: domain.Room{ID: 1, Utilities: []domain.RoomUtility{
			{UtilityTypeID: 10}, {UtilityTypeID: 20},
		}},
		blockID: 10,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	v := NewView(api, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, v.Open(ctx, 1))

	done := make(chan error)
	go func() { done <- v.ToggleUtility(ctx, 10) }()
	<-api.entered

	assert.True(t, v.Busy(10))
	assert.False(t, v.Busy(20))
	assert.ErrorIs(t, v.ToggleUtility(ctx, 10), ErrToggleInFlight)
	require.NoError(t, v.ToggleUtility(ctx, 20))

	close(api.release)
	require.NoError(t, <-done)
	assert.False(t, v.Busy(10))
	assert.ElementsMatch(t, []int64{10, 20}, api.toggled)
}

type failingAPI struct{ blockingAPI }

func (f *failingAPI) ToggleUtilityStatus(context.Context, int64, int64, bool) error {
	return errors.New("gateway timeout")
}

func TestView_ToggleFailureReleasesLock(t *testing.T) {
	api := &failingAPI{blockingAPI{room: domain.Room{ID: 1, Utilities: []domain.RoomUtility{{UtilityTypeID: 10}}}}}
	v := NewView(api, zap.NewNop())
	require.NoError(t, v.Open(context.Background(), 1))

	require.Error(t, v.ToggleUtility(context.Background(), 10))
	assert.False(t, v.Busy(10))
	assert.EqualError(t, v.Err(), "gateway timeout")
}
