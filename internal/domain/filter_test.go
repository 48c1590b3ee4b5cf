package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomFilter_ValuesIsSparse(t *testing.T) {
	assert.True(t, RoomFilter{}.IsEmpty())

	branch := int64(2)
	minRent := 0.0
	avail := false
	f := RoomFilter{BranchID: &branch, MinRent: &minRent, IsAvailable: &avail}

	v := f.Values()
	assert.Len(t, v, 3)
	assert.Equal(t, "2", v.Get("branchId"))
	// zero is a real constraint when present
	assert.Equal(t, "0", v.Get("minRent"))
	assert.Equal(t, "false", v.Get("isAvailable"))
	assert.NotContains(t, v, "buildingId")
}

func TestParseRoomFilter_RoundTripsPresentKeys(t *testing.T) {
	level := int64(9)
	maxSpace := 40.5
	in := RoomFilter{LevelID: &level, MaxSpace: &maxSpace}

	out := ParseRoomFilter(in.Values())
	assert.Equal(t, in.Values(), out.Values())
	assert.Nil(t, out.BranchID)
}
