package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MeterType 计量表类型
type MeterType string

const (
	MeterElectricity MeterType = "ELECTRICITY"
	MeterWater       MeterType = "WATER"
)

// DefaultMeterType is used when a room has no meter type yet.
const DefaultMeterType = MeterElectricity

func ParseMeterType(s string) (MeterType, error) {
	switch MeterType(strings.ToUpper(strings.TrimSpace(s))) {
	case MeterElectricity:
		return MeterElectricity, nil
	case MeterWater:
		return MeterWater, nil
	case "":
		return DefaultMeterType, nil
	}
	return "", fmt.Errorf("unknown meter type %q", s)
}

// Room 房间领域模型
// Level, building, branch and room type names are denormalized by the backend
// and must not be reconstructed client-side.
type Room struct {
	ID           int64           `json:"id"`
	RoomNumber   string          `json:"roomNumber"`
	LevelID      int64           `json:"levelId"`
	LevelName    string          `json:"levelName,omitempty"`
	LevelNumber  int             `json:"levelNumber,omitempty"`
	BuildingID   int64           `json:"buildingId,omitempty"`
	BuildingName string          `json:"buildingName,omitempty"`
	BranchID     int64           `json:"branchId,omitempty"`
	BranchName   string          `json:"branchName,omitempty"`
	RoomTypeID   int64           `json:"roomTypeId"`
	RoomTypeName string          `json:"roomTypeName,omitempty"`
	RoomSpace    float64         `json:"roomSpace"`
	MeterType    MeterType       `json:"meterType,omitempty"`
	IsAvailable  bool            `json:"isAvailable"`
	RentalFee    decimal.Decimal `json:"rentalFee"`
	ImageURLs    []string        `json:"imageUrls,omitempty"`
	Utilities    []RoomUtility   `json:"utilities,omitempty"`
	CreatedAt    Timestamp       `json:"createdAt"`
	UpdatedAt    Timestamp       `json:"updatedAt"`
}

var (
	ErrRoomNumberRequired = errors.New("room number is required")
	ErrRoomSpaceInvalid   = errors.New("room space must be greater than 0")
	ErrRentalFeeNegative  = errors.New("rental fee cannot be negative")
)

func (r *Room) Validate() error {
	if strings.TrimSpace(r.RoomNumber) == "" {
		return ErrRoomNumberRequired
	}
	if r.RoomSpace <= 0 {
		return ErrRoomSpaceInvalid
	}
	if r.RentalFee.IsNegative() {
		return ErrRentalFeeNegative
	}
	return nil
}

// ActiveUtilityCount counts associations whose per-room flag is on.
func (r *Room) ActiveUtilityCount() int {
	n := 0
	for _, u := range r.Utilities {
		if u.IsActive {
			n++
		}
	}
	return n
}

// Utility returns the association for utilityTypeID, if the room has one.
func (r *Room) Utility(utilityTypeID int64) (RoomUtility, bool) {
	for _, u := range r.Utilities {
		if u.UtilityTypeID == utilityTypeID {
			return u, true
		}
	}
	return RoomUtility{}, false
}

// Location renders "Branch / Building / Level" for list views.
func (r *Room) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{r.BranchName, r.BuildingName, r.LevelName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " / ")
}
