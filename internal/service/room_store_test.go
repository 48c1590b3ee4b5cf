package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"roomadmin/internal/client"
	"roomadmin/internal/domain"
	"roomadmin/internal/mockapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeRoomAPI 记录调用次数的假实现
type fakeRoomAPI struct {
	rooms      []domain.Room
	searchHits []domain.Room
	listErr    error
	writeErr   error

	listCalls   int
	searchCalls int
	writes      []string
}

func (f *fakeRoomAPI) List(context.Context) ([]domain.Room, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rooms, nil
}

func (f *fakeRoomAPI) Search(context.Context, domain.RoomFilter) ([]domain.Room, error) {
	f.searchCalls++
	return f.searchHits, nil
}

func (f *fakeRoomAPI) Create(context.Context, *client.Payload) (*domain.Room, error) {
	f.writes = append(f.writes, "create")
	return nil, f.writeErr
}

func (f *fakeRoomAPI) Update(_ context.Context, id int64, _ *client.Payload) (*domain.Room, error) {
	f.writes = append(f.writes, "update:"+strconv.FormatInt(id, 10))
	return nil, f.writeErr
}

func (f *fakeRoomAPI) Delete(_ context.Context, id int64) error {
	f.writes = append(f.writes, "delete:"+strconv.FormatInt(id, 10))
	return f.writeErr
}

func TestRoomStore_LoadReplacesBothViews(t *testing.T) {
	api := &fakeRoomAPI{rooms: []domain.Room{{ID: 1}, {ID: 2}}}
	s := NewRoomStore(api, zap.NewNop())

	require.NoError(t, s.Load(context.Background()))
	assert.Len(t, s.Rooms(), 2)
	assert.Len(t, s.Filtered(), 2)
	assert.False(t, s.Loading())
	assert.NoError(t, s.Err())
}

func TestRoomStore_LoadFailureKeepsPreviousState(t *testing.T) {
	api := &fakeRoomAPI{rooms: []domain.Room{{ID: 1}}}
	s := NewRoomStore(api, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))

	api.listErr = &client.APIError{StatusCode: 500, Message: "database unavailable"}
	require.Error(t, s.Load(context.Background()))
	assert.Len(t, s.Rooms(), 1)
	assert.Equal(t, "database unavailable", s.ErrorMessage())

	s.ClearError()
	assert.Empty(t, s.ErrorMessage())
}

func TestRoomStore_TransportErrorMessage(t *testing.T) {
	api := &fakeRoomAPI{listErr: errors.New("dial tcp: connection refused")}
	s := NewRoomStore(api, zap.NewNop())

	require.Error(t, s.Load(context.Background()))
	assert.Equal(t, "dial tcp: connection refused", s.ErrorMessage())
}

func TestRoomStore_SearchTouchesOnlyFilteredView(t *testing.T) {
	api := &fakeRoomAPI{
		rooms:      []domain.Room{{ID: 1}, {ID: 2}, {ID: 3}},
		searchHits: []domain.Room{{ID: 2}},
	}
	s := NewRoomStore(api, zap.NewNop())
	require.NoError(t, s.Load(context.Background()))

	require.NoError(t, s.Search(context.Background(), domain.RoomFilter{}))
	assert.Len(t, s.Rooms(), 3)
	require.Len(t, s.Filtered(), 1)
	assert.Equal(t, int64(2), s.Filtered()[0].ID)

	calls := api.listCalls
	s.ResetSearch()
	assert.Len(t, s.Filtered(), 3)
	assert.Equal(t, calls, api.listCalls)
}

func TestRoomStore_MutationsReload(t *testing.T) {
	api := &fakeRoomAPI{rooms: []domain.Room{{ID: 1}}}
	s := NewRoomStore(api, zap.NewNop())
	ctx := context.Background()

	assert.True(t, s.Create(ctx, client.NewPayload()))
	assert.True(t, s.Update(ctx, 7, client.NewPayload()))
	assert.True(t, s.Delete(ctx, 7))
	assert.Equal(t, []string{"create", "update:7", "delete:7"}, api.writes)
	assert.Equal(t, 3, api.listCalls)
}

func TestRoomStore_FailedMutationRecordsError(t *testing.T) {
	api := &fakeRoomAPI{rooms: []domain.Room{{ID: 1}}}
	s := NewRoomStore(api, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, s.Load(ctx))

	api.writeErr = &client.APIError{StatusCode: 409, Message: "room B-101 already exists"}
	assert.False(t, s.Create(ctx, client.NewPayload()))
	assert.Equal(t, "room B-101 already exists", s.ErrorMessage())
	assert.Len(t, s.Rooms(), 1)
	assert.Equal(t, 1, api.listCalls)
}

func TestRoomStore_AgainstMockAPI(t *testing.T) {
	repo := mockapi.NewMemoryRepo()
	seeded := mockapi.Seed(repo)
	srv := httptest.NewServer(mockapi.NewRouter(repo, mockapi.Options{}, zap.NewNop()))
	defer srv.Close()

	c := client.New(srv.URL, 5*time.Second, zap.NewNop())
	s := NewRoomStore(c.Rooms, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.Rooms())

	p := client.NewPayload().
		AddField(client.FieldRoomNumber, "C-1").
		AddField(client.FieldLevelID, strconv.FormatInt(seeded.Levels[0], 10)).
		AddField(client.FieldRoomTypeID, strconv.FormatInt(seeded.RoomTypes[0], 10)).
		AddField(client.FieldRoomSpace, "18").
		AddField(client.FieldRentalFee, "900")
	require.True(t, s.Create(ctx, p))
	require.Len(t, s.Rooms(), 1)
	assert.Equal(t, "North Tower", s.Rooms()[0].BuildingName)

	other := seeded.Branches[1]
	require.NoError(t, s.Search(ctx, domain.RoomFilter{BranchID: &other}))
	assert.Empty(t, s.Filtered())
	assert.Len(t, s.Rooms(), 1)

	require.True(t, s.Delete(ctx, s.Rooms()[0].ID))
	assert.Empty(t, s.Rooms())
}
