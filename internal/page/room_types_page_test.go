package page

import (
	"context"
	"testing"

	"roomadmin/internal/auth"
	"roomadmin/internal/form"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRoomTypesPage_Flow(t *testing.T) {
	h := newHarness(t)
	h.login(t, apiToken)
	p := NewRoomTypesPage(h.api, h.session, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, p.Mount(ctx))
	assert.Len(t, p.RoomTypes(), 3)

	f := p.OpenCreate()
	ok, err := p.Submit(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, form.ErrValidation)

	f.SetTypeName("Suite")
	f.SetDescription("Two bedrooms")
	ok, err = p.Submit(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Nil(t, p.Form())
	require.Len(t, p.RoomTypes(), 4)

	id := p.RoomTypes()[3].ID
	edit, err := p.OpenEdit(id)
	require.NoError(t, err)
	edit.SetDescription("Three bedrooms")
	ok, err = p.Submit(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Three bedrooms", p.RoomTypes()[3].Description)

	assert.True(t, p.Delete(ctx, id))
	assert.Len(t, p.RoomTypes(), 3)

	_, err = p.OpenEdit(id)
	assert.Error(t, err)
	assert.NotEmpty(t, p.Banner())
	p.DismissBanner()
	assert.Empty(t, p.Banner())
}

func TestRoomTypesPage_BlockedWithoutCredential(t *testing.T) {
	h := newHarness(t)
	p := NewRoomTypesPage(h.api, h.session, zap.NewNop())
	ctx := context.Background()

	f := p.OpenCreate()
	f.SetTypeName("Suite")
	f.SetDescription("x")

	before := h.requests.Load()
	ok, err := p.Submit(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, auth.ErrNoCredential)
	assert.Equal(t, auth.MsgLoginRequired, p.Banner())
	assert.Equal(t, before, h.requests.Load())
}
