package mockapi

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Seeded holds the ids created by Seed so tests can refer to them.
type Seeded struct {
	Branches     []int64
	Buildings    []int64
	Levels       []int64
	RoomTypes    []int64
	UtilityTypes []int64
}

// Seed 写入演示数据：2 个分店、3 栋楼、若干楼层、房型与公用事业类型
func Seed(r *MemoryRepo) Seeded {
	var s Seeded

	downtown := r.AddBranch("Downtown")
	riverside := r.AddBranch("Riverside")
	s.Branches = []int64{downtown.ID, riverside.ID}

	north := r.AddBuilding(downtown.ID, "North Tower")
	south := r.AddBuilding(downtown.ID, "South Tower")
	annex := r.AddBuilding(riverside.ID, "Annex")
	s.Buildings = []int64{north.ID, south.ID, annex.ID}

	for _, b := range []int64{north.ID, south.ID, annex.ID} {
		for n := 1; n <= 2; n++ {
			l := r.AddLevel(b, levelName(n), n)
			s.Levels = append(s.Levels, l.ID)
		}
	}

	for _, rt := range [][2]string{
		{"Studio", "Single open-plan unit"},
		{"Office", "Commercial office space"},
		{"Retail", "Ground-floor shop unit"},
	} {
		t, _ := r.CreateRoomType(rt[0], rt[1])
		s.RoomTypes = append(s.RoomTypes, t.ID)
	}

	for _, ut := range []struct {
		name, rate, method string
	}{
		{"Electricity", "0.25", "PER_UNIT"},
		{"Water", "1.10", "PER_UNIT"},
		{"Internet", "30", "FIXED"},
		{"Cleaning", "45", "FIXED"},
		{"Parking", "60", "FIXED"},
	} {
		u := r.AddUtilityType(ut.name, decimal.RequireFromString(ut.rate), ut.method)
		s.UtilityTypes = append(s.UtilityTypes, u.ID)
	}
	return s
}

func levelName(n int) string {
	return "Level " + strconv.Itoa(n)
}
