package domain

import (
	"net/url"
	"strconv"
)

// RoomFilter 房间搜索条件
// Every field is optional; nil means unconstrained, never zero.
type RoomFilter struct {
	BranchID    *int64
	BuildingID  *int64
	LevelID     *int64
	RoomTypeID  *int64
	IsAvailable *bool
	MinSpace    *float64
	MaxSpace    *float64
	MinRent     *float64
	MaxRent     *float64
}

func (f RoomFilter) IsEmpty() bool {
	return len(f.Values()) == 0
}

// Values encodes only the constraints that are present.
func (f RoomFilter) Values() url.Values {
	v := url.Values{}
	setInt := func(key string, p *int64) {
		if p != nil {
			v.Set(key, strconv.FormatInt(*p, 10))
		}
	}
	setFloat := func(key string, p *float64) {
		if p != nil {
			v.Set(key, strconv.FormatFloat(*p, 'f', -1, 64))
		}
	}
	setInt("branchId", f.BranchID)
	setInt("buildingId", f.BuildingID)
	setInt("levelId", f.LevelID)
	setInt("roomTypeId", f.RoomTypeID)
	if f.IsAvailable != nil {
		v.Set("isAvailable", strconv.FormatBool(*f.IsAvailable))
	}
	setFloat("minSpace", f.MinSpace)
	setFloat("maxSpace", f.MaxSpace)
	setFloat("minRent", f.MinRent)
	setFloat("maxRent", f.MaxRent)
	return v
}

// ParseRoomFilter is the inverse of Values; unknown or malformed keys are ignored.
func ParseRoomFilter(v url.Values) RoomFilter {
	var f RoomFilter
	getInt := func(key string) *int64 {
		if s := v.Get(key); s != "" {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
		return nil
	}
	getFloat := func(key string) *float64 {
		if s := v.Get(key); s != "" {
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				return &n
			}
		}
		return nil
	}
	f.BranchID = getInt("branchId")
	f.BuildingID = getInt("buildingId")
	f.LevelID = getInt("levelId")
	f.RoomTypeID = getInt("roomTypeId")
	if s := v.Get("isAvailable"); s != "" {
		if b, err := strconv.ParseBool(s); err == nil {
			f.IsAvailable = &b
		}
	}
	f.MinSpace = getFloat("minSpace")
	f.MaxSpace = getFloat("maxSpace")
	f.MinRent = getFloat("minRent")
	f.MaxRent = getFloat("maxRent")
	return f
}
