package page

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"roomadmin/internal/auth"
	"roomadmin/internal/client"
	"roomadmin/internal/config"
	"roomadmin/internal/form"
	"roomadmin/internal/mockapi"
	"roomadmin/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const apiToken = "secret-token"

type harness struct {
	repo      *mockapi.MemoryRepo
	seeded    mockapi.Seeded
	api       *client.Client
	session   *auth.Session
	requests  *atomic.Int32
	redirects []string
	delays    []time.Duration
	pending   []func()
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{repo: mockapi.NewMemoryRepo(), requests: &atomic.Int32{}}
	h.seeded = mockapi.Seed(h.repo)

	router := mockapi.NewRouter(h.repo, mockapi.Options{AuthToken: apiToken}, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.requests.Add(1)
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	cfg := config.AuthConfig{TokenKey: "test:token", LoginRoute: "/login", RedirectDelayMS: 1500}
	nav := auth.NavigatorFunc(func(route string) { h.redirects = append(h.redirects, route) })
	h.session = auth.NewSession(store.NewMemoryKV(), cfg, nav, zap.NewNop(),
		auth.WithScheduler(func(d time.Duration, f func()) {
			h.delays = append(h.delays, d)
			h.pending = append(h.pending, f)
		}))
	h.api = client.New(srv.URL, 5*time.Second, zap.NewNop(), client.WithTokenSource(h.session.Token))
	return h
}

func (h *harness) login(t *testing.T, token string) {
	t.Helper()
	_, err := h.session.Login(context.Background(), token)
	require.NoError(t, err)
}

func (h *harness) roomsPage(t *testing.T) *RoomsPage {
	t.Helper()
	return NewRoomsPage(h.api, h.session, "Rooms", zap.NewNop())
}

func (h *harness) seedRoom(t *testing.T, number string, images ...string) int64 {
	t.Helper()
	room, err := h.repo.CreateRoom(mockapi.RoomInput{
		RoomNumber:     number,
		LevelID:        h.seeded.Levels[0],
		RoomTypeID:     h.seeded.RoomTypes[0],
		RoomSpace:      20,
		RentalFee:      decimal.NewFromInt(800),
		UtilityTypeIDs: h.seeded.UtilityTypes,
		ImageURLs:      images,
	})
	require.NoError(t, err)
	return room.ID
}

func fillCreateForm(t *testing.T, h *harness, f *form.RoomForm) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.SelectBranch(ctx, h.seeded.Branches[0]))
	require.NoError(t, f.SelectBuilding(ctx, h.seeded.Buildings[0]))
	require.NoError(t, f.SelectLevel(ctx, h.seeded.Levels[0]))
	f.SetRoomNumber("B-101")
	f.SetRoomType(strconv.FormatInt(h.seeded.RoomTypes[0], 10))
	f.SetRoomSpace("25.5")
	f.SetRentalFee("150000")
}

func TestRoomsPage_CreateRoomEndToEnd(t *testing.T) {
	h := newHarness(t)
	h.login(t, apiToken)
	p := h.roomsPage(t)
	ctx := context.Background()

	require.NoError(t, p.Mount(ctx))
	assert.True(t, p.Empty())
	assert.Empty(t, p.Banner())

	f, err := p.OpenCreate(ctx)
	require.NoError(t, err)
	require.True(t, f.Ready())
	fillCreateForm(t, h, f)
	require.NoError(t, f.ToggleUtility(h.seeded.UtilityTypes[1]))
	require.NoError(t, f.ToggleUtility(h.seeded.UtilityTypes[4]))
	f.StageImage("room.jpg", "image/jpeg", []byte("jpeg"))
	assert.Equal(t, 1, p.Previews.Live())

	ok, err := p.Submit(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Nil(t, p.Form())
	assert.Equal(t, 0, p.Previews.Live())
	require.Len(t, p.Rooms(), 1)
	room := p.Rooms()[0]
	assert.Equal(t, "B-101", room.RoomNumber)
	assert.Equal(t, "Downtown", room.BranchName)
	assert.Len(t, room.Utilities, 2)
	assert.Len(t, room.ImageURLs, 1)
	assert.False(t, p.Empty())
}

func TestRoomsPage_SubmitWithoutCredentialMakesNoRequest(t *testing.T) {
	h := newHarness(t)
	h.login(t, apiToken)
	p := h.roomsPage(t)
	ctx := context.Background()

	f, err := p.OpenCreate(ctx)
	require.NoError(t, err)
	fillCreateForm(t, h, f)
	require.NoError(t, h.session.Clear(ctx))

	before := h.requests.Load()
	ok, err := p.Submit(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, auth.ErrNoCredential)
	assert.Equal(t, auth.MsgLoginRequired, p.Banner())
	assert.Equal(t, before, h.requests.Load())
	assert.NotNil(t, p.Form())

	assert.False(t, p.Delete(ctx, 1))
	assert.Equal(t, before, h.requests.Load())
}

func TestRoomsPage_ValidationBlocksSubmit(t *testing.T) {
	h := newHarness(t)
	h.login(t, apiToken)
	p := h.roomsPage(t)
	ctx := context.Background()

	f, err := p.OpenCreate(ctx)
	require.NoError(t, err)
	fillCreateForm(t, h, f)
	f.SetRoomSpace("0")

	before := h.requests.Load()
	ok, err := p.Submit(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, form.ErrValidation)
	assert.Contains(t, f.Errors(), "roomSpace")
	assert.Equal(t, before, h.requests.Load())
	assert.Empty(t, p.Banner())
}

func TestRoomsPage_UnauthorizedClearsAndRedirects(t *testing.T) {
	h := newHarness(t)
	h.login(t, "stale-token")
	p := h.roomsPage(t)
	ctx := context.Background()

	require.Error(t, p.Mount(ctx))
	assert.Equal(t, auth.MsgSessionExpired, p.Banner())
	assert.ErrorIs(t, h.session.Check(ctx), auth.ErrNoCredential)
	assert.False(t, p.Empty())

	require.Len(t, h.pending, 1)
	assert.Equal(t, 1500*time.Millisecond, h.delays[0])
	assert.Empty(t, h.redirects)
	h.pending[0]()
	assert.Equal(t, []string{"/login"}, h.redirects)
}

func TestRoomsPage_ServerErrorShowsBannerAndKeepsForm(t *testing.T) {
	h := newHarness(t)
	h.login(t, apiToken)
	h.seedRoom(t, "B-101")
	p := h.roomsPage(t)
	ctx := context.Background()
	require.NoError(t, p.Mount(ctx))

	f, err := p.OpenCreate(ctx)
	require.NoError(t, err)
	fillCreateForm(t, h, f)

	ok, err := p.Submit(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, p.Banner(), "already exists")
	assert.NotNil(t, p.Form())
	assert.Len(t, p.Rooms(), 1)

	p.DismissBanner()
	assert.Empty(t, p.Banner())
	assert.NoError(t, p.Store.Err())
}

func TestRoomsPage_EditRemovesStagedImages(t *testing.T) {
	h := newHarness(t)
	h.login(t, apiToken)
	id := h.seedRoom(t, "E-1", "/uploads/a.jpg", "/uploads/b c.jpg", "/uploads/d.jpg")
	p := h.roomsPage(t)
	ctx := context.Background()
	require.NoError(t, p.Mount(ctx))

	f, err := p.OpenEdit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, form.ModeEdit, f.Mode())
	ok, err := f.MarkImageForRemoval("/uploads/b c.jpg")
	require.NoError(t, err)
	require.True(t, ok)
	f.SetMeterType("WATER")
	f.StageImage("new.png", "image/png", []byte("png"))

	ok, err = p.Submit(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	room, err := h.repo.GetRoom(id)
	require.NoError(t, err)
	require.Len(t, room.ImageURLs, 3)
	assert.Equal(t, "/uploads/a.jpg", room.ImageURLs[0])
	assert.Equal(t, "/uploads/d.jpg", room.ImageURLs[1])
	assert.Equal(t, "WATER", string(room.MeterType))
	assert.Len(t, room.Utilities, 5)
}

func TestRoomsPage_DetailToggleAndDelete(t *testing.T) {
	h := newHarness(t)
	h.login(t, apiToken)
	id := h.seedRoom(t, "T-1")
	for _, u := range h.seeded.UtilityTypes[1:] {
		require.NoError(t, h.repo.SetUtilityActive(id, u, false))
	}
	p := h.roomsPage(t)
	ctx := context.Background()
	require.NoError(t, p.Mount(ctx))

	require.NoError(t, p.OpenDetail(ctx, id))
	assert.Equal(t, "1 active / 5 total", p.Detail.Summary())
	require.NoError(t, p.ToggleUtility(ctx, h.seeded.UtilityTypes[2]))
	assert.Equal(t, "2 active / 5 total", p.Detail.Summary())
	p.CloseDetail()

	assert.True(t, p.Delete(ctx, id))
	assert.True(t, p.Empty())
}

func TestRoomsPage_SearchAndReset(t *testing.T) {
	h := newHarness(t)
	h.login(t, apiToken)
	h.seedRoom(t, "S-1")
	h.seedRoom(t, "S-2")
	p := h.roomsPage(t)
	ctx := context.Background()
	require.NoError(t, p.Mount(ctx))

	require.NoError(t, p.SetFilter(ctx, "branchId", strconv.FormatInt(h.seeded.Branches[1], 10)))
	require.NoError(t, p.RunSearch(ctx))
	assert.Empty(t, p.Rooms())
	assert.True(t, p.Empty())
	assert.Len(t, p.Store.Rooms(), 2)

	p.ResetSearch()
	assert.Len(t, p.Rooms(), 2)

	require.NoError(t, p.SetFilter(ctx, "maxSpace", "10"))
	require.NoError(t, p.RunSearch(ctx))
	assert.Empty(t, p.Rooms())
}

func TestRoomsPage_Export(t *testing.T) {
	h := newHarness(t)
	h.login(t, apiToken)
	h.seedRoom(t, "X-1")
	p := h.roomsPage(t)
	require.NoError(t, p.Mount(context.Background()))

	data, err := p.Export()
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
