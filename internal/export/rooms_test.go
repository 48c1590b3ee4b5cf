package export

import (
	"bytes"
	"testing"

	"roomadmin/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestRooms_WritesHeaderAndRows(t *testing.T) {
	rooms := []domain.Room{
		{
			RoomNumber:   "B-101",
			BranchName:   "Downtown",
			BuildingName: "North Tower",
			LevelName:    "Level 1",
			RoomTypeName: "Studio",
			RoomSpace:    25.5,
			MeterType:    domain.MeterWater,
			IsAvailable:  true,
			RentalFee:    decimal.NewFromInt(150000),
			ImageURLs:    []string{"/a.jpg", "/b.jpg"},
			Utilities: []domain.RoomUtility{
				{UtilityTypeID: 1, IsActive: true},
				{UtilityTypeID: 2},
			},
		},
	}

	data, err := Rooms(rooms, "")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{DefaultSheet}, f.GetSheetList())
	rows, err := f.GetRows(DefaultSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, RoomsHeader, rows[0])
	assert.Equal(t, []string{
		"B-101", "Downtown", "North Tower", "Level 1", "Studio",
		"25.5", "WATER", "Yes", "150000", "1/2", "2",
	}, rows[1])
}

func TestRooms_EmptyListHasHeaderOnly(t *testing.T) {
	data, err := Rooms(nil, "Export")
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Export")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
