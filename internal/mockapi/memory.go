package mockapi

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"roomadmin/internal/domain"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrBadInput = errors.New("bad input")
)

// RoomInput is what create/update handlers extract from the multipart form.
type RoomInput struct {
	RoomNumber     string
	LevelID        int64
	RoomTypeID     int64
	RoomSpace      float64
	RentalFee      decimal.Decimal
	MeterType      domain.MeterType
	UtilityTypeIDs []int64
	ImageURLs      []string
	ImagesToRemove []string
}

type roomRecord struct {
	room      domain.Room
	utilities []domain.RoomUtility
}

// MemoryRepo 内存后端：branches -> buildings -> levels -> rooms
// 仅用于联测与本地运行；ids 自增。
type MemoryRepo struct {
	mu sync.RWMutex

	nextID int64
	now    func() time.Time

	branches     map[int64]domain.Branch
	buildings    map[int64]domain.Building
	levels       map[int64]domain.Level
	roomTypes    map[int64]domain.RoomType
	utilityTypes map[int64]domain.UtilityType
	rooms        map[int64]*roomRecord
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		now:          time.Now,
		branches:     map[int64]domain.Branch{},
		buildings:    map[int64]domain.Building{},
		levels:       map[int64]domain.Level{},
		roomTypes:    map[int64]domain.RoomType{},
		utilityTypes: map[int64]domain.UtilityType{},
		rooms:        map[int64]*roomRecord{},
	}
}

func (r *MemoryRepo) id() int64 {
	r.nextID++
	return r.nextID
}

// ---- reference data ----

func (r *MemoryRepo) AddBranch(name string) domain.Branch {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := domain.Branch{ID: r.id(), BranchName: name}
	r.branches[b.ID] = b
	return b
}

func (r *MemoryRepo) AddBuilding(branchID int64, name string) domain.Building {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := domain.Building{ID: r.id(), BuildingName: name, BranchID: branchID}
	r.buildings[b.ID] = b
	return b
}

func (r *MemoryRepo) AddLevel(buildingID int64, name string, number int) domain.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	l := domain.Level{ID: r.id(), LevelName: name, LevelNumber: number, BuildingID: buildingID}
	r.levels[l.ID] = l
	return r.levelView(l)
}

func (r *MemoryRepo) AddUtilityType(name string, rate decimal.Decimal, method string) domain.UtilityType {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := domain.UtilityType{ID: r.id(), UtilityName: name, RatePerUnit: rate, CalculationMethod: method}
	r.utilityTypes[u.ID] = u
	return u
}

func (r *MemoryRepo) Branches() []domain.Branch {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Branch, 0, len(r.branches))
	for _, b := range r.branches {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryRepo) BuildingsByBranch(branchID int64) []domain.Building {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Building{}
	for _, b := range r.buildings {
		if b.BranchID == branchID {
			b.BranchName = r.branches[b.BranchID].BranchName
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryRepo) LevelsByBuilding(buildingID int64) []domain.Level {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Level{}
	for _, l := range r.levels {
		if l.BuildingID == buildingID {
			out = append(out, r.levelView(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryRepo) UtilityTypes() []domain.UtilityType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.UtilityType, 0, len(r.utilityTypes))
	for _, u := range r.utilityTypes {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// levelView fills denormalized parent names. Caller holds the lock.
func (r *MemoryRepo) levelView(l domain.Level) domain.Level {
	b := r.buildings[l.BuildingID]
	l.BuildingName = b.BuildingName
	l.BranchID = b.BranchID
	l.BranchName = r.branches[b.BranchID].BranchName
	return l
}

// ---- room types ----

func (r *MemoryRepo) ListRoomTypes() []domain.RoomType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RoomType, 0, len(r.roomTypes))
	for _, t := range r.roomTypes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryRepo) GetRoomType(id int64) (domain.RoomType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.roomTypes[id]
	if !ok {
		return domain.RoomType{}, ErrNotFound
	}
	return t, nil
}

func (r *MemoryRepo) CreateRoomType(name, description string) (domain.RoomType, error) {
	t := domain.RoomType{TypeName: name, Description: description}
	if err := t.Validate(); err != nil {
		return domain.RoomType{}, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.id()
	t.CreatedAt = domain.Timestamp{Time: r.now()}
	r.roomTypes[t.ID] = t
	return t, nil
}

func (r *MemoryRepo) UpdateRoomType(id int64, name, description string) (domain.RoomType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.roomTypes[id]
	if !ok {
		return domain.RoomType{}, ErrNotFound
	}
	t.TypeName, t.Description = name, description
	if err := t.Validate(); err != nil {
		return domain.RoomType{}, fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	r.roomTypes[id] = t
	return t, nil
}

func (r *MemoryRepo) DeleteRoomType(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.roomTypes[id]; !ok {
		return ErrNotFound
	}
	delete(r.roomTypes, id)
	return nil
}

// ---- rooms ----

func (r *MemoryRepo) ListRooms() []domain.Room {
	return r.filterRooms(func(domain.Room) bool { return true })
}

func (r *MemoryRepo) AvailableRooms() []domain.Room {
	return r.filterRooms(func(room domain.Room) bool { return room.IsAvailable })
}

func (r *MemoryRepo) SearchRooms(f domain.RoomFilter) []domain.Room {
	return r.filterRooms(func(room domain.Room) bool { return matches(room, f) })
}

func matches(room domain.Room, f domain.RoomFilter) bool {
	eq := func(p *int64, v int64) bool { return p == nil || *p == v }
	rent, _ := room.RentalFee.Float64()
	switch {
	case !eq(f.BranchID, room.BranchID),
		!eq(f.BuildingID, room.BuildingID),
		!eq(f.LevelID, room.LevelID),
		!eq(f.RoomTypeID, room.RoomTypeID):
		return false
	case f.IsAvailable != nil && *f.IsAvailable != room.IsAvailable:
		return false
	case f.MinSpace != nil && room.RoomSpace < *f.MinSpace,
		f.MaxSpace != nil && room.RoomSpace > *f.MaxSpace:
		return false
	case f.MinRent != nil && rent < *f.MinRent,
		f.MaxRent != nil && rent > *f.MaxRent:
		return false
	}
	return true
}

func (r *MemoryRepo) filterRooms(keep func(domain.Room) bool) []domain.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Room{}
	for _, rec := range r.rooms {
		room := r.roomView(rec)
		if keep(room) {
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *MemoryRepo) GetRoom(id int64) (domain.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.rooms[id]
	if !ok {
		return domain.Room{}, ErrNotFound
	}
	return r.roomView(rec), nil
}

// roomView denormalizes names from the hierarchy. Caller holds the lock.
func (r *MemoryRepo) roomView(rec *roomRecord) domain.Room {
	room := rec.room
	l := r.levelView(r.levels[room.LevelID])
	room.LevelName, room.LevelNumber = l.LevelName, l.LevelNumber
	room.BuildingID, room.BuildingName = l.BuildingID, l.BuildingName
	room.BranchID, room.BranchName = l.BranchID, l.BranchName
	room.RoomTypeName = r.roomTypes[room.RoomTypeID].TypeName
	room.ImageURLs = append([]string(nil), room.ImageURLs...)
	room.Utilities = append([]domain.RoomUtility(nil), rec.utilities...)
	return room
}

func (r *MemoryRepo) checkRoomInput(in RoomInput, selfID int64) error {
	if strings.TrimSpace(in.RoomNumber) == "" || in.RoomSpace <= 0 || in.RentalFee.IsNegative() {
		return fmt.Errorf("%w: roomNumber, roomSpace > 0 and rentalFee >= 0 are required", ErrBadInput)
	}
	if _, ok := r.levels[in.LevelID]; !ok {
		return fmt.Errorf("%w: level %d does not exist", ErrBadInput, in.LevelID)
	}
	if _, ok := r.roomTypes[in.RoomTypeID]; !ok {
		return fmt.Errorf("%w: room type %d does not exist", ErrBadInput, in.RoomTypeID)
	}
	for id, rec := range r.rooms {
		if id != selfID && rec.room.LevelID == in.LevelID && rec.room.RoomNumber == in.RoomNumber {
			return fmt.Errorf("%w: room %s already exists on this level", ErrConflict, in.RoomNumber)
		}
	}
	return nil
}

func (r *MemoryRepo) utilitiesFor(ids []int64, existing []domain.RoomUtility) ([]domain.RoomUtility, error) {
	out := []domain.RoomUtility{}
	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if prev, ok := findUtility(existing, id); ok {
			out = append(out, prev)
			continue
		}
		ut, ok := r.utilityTypes[id]
		if !ok {
			return nil, fmt.Errorf("%w: utility type %d does not exist", ErrBadInput, id)
		}
		out = append(out, domain.RoomUtility{
			UtilityTypeID:     ut.ID,
			UtilityName:       ut.UtilityName,
			Description:       ut.Description,
			RatePerUnit:       ut.RatePerUnit,
			CalculationMethod: ut.CalculationMethod,
			IsActive:          true,
		})
	}
	return out, nil
}

func findUtility(list []domain.RoomUtility, id int64) (domain.RoomUtility, bool) {
	for _, u := range list {
		if u.UtilityTypeID == id {
			return u, true
		}
	}
	return domain.RoomUtility{}, false
}

func (r *MemoryRepo) CreateRoom(in RoomInput) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkRoomInput(in, 0); err != nil {
		return domain.Room{}, err
	}
	utilities, err := r.utilitiesFor(in.UtilityTypeIDs, nil)
	if err != nil {
		return domain.Room{}, err
	}
	meter := in.MeterType
	if meter == "" {
		meter = domain.DefaultMeterType
	}
	now := domain.Timestamp{Time: r.now()}
	rec := &roomRecord{
		room: domain.Room{
			ID:          r.id(),
			RoomNumber:  strings.TrimSpace(in.RoomNumber),
			LevelID:     in.LevelID,
			RoomTypeID:  in.RoomTypeID,
			RoomSpace:   in.RoomSpace,
			MeterType:   meter,
			IsAvailable: true,
			RentalFee:   in.RentalFee,
			ImageURLs:   append([]string{}, in.ImageURLs...),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		utilities: utilities,
	}
	r.rooms[rec.room.ID] = rec
	return r.roomView(rec), nil
}

// UpdateRoom applies scalar fields, appends new images and drops imagesToRemove.
// Utility associations are kept unless UtilityTypeIDs is non-empty.
func (r *MemoryRepo) UpdateRoom(id int64, in RoomInput) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rooms[id]
	if !ok {
		return domain.Room{}, ErrNotFound
	}
	if err := r.checkRoomInput(in, id); err != nil {
		return domain.Room{}, err
	}
	if len(in.UtilityTypeIDs) > 0 {
		utilities, err := r.utilitiesFor(in.UtilityTypeIDs, rec.utilities)
		if err != nil {
			return domain.Room{}, err
		}
		rec.utilities = utilities
	}
	rec.room.RoomNumber = strings.TrimSpace(in.RoomNumber)
	rec.room.LevelID = in.LevelID
	rec.room.RoomTypeID = in.RoomTypeID
	rec.room.RoomSpace = in.RoomSpace
	rec.room.RentalFee = in.RentalFee
	if in.MeterType != "" {
		rec.room.MeterType = in.MeterType
	}
	rec.room.ImageURLs = removeAll(rec.room.ImageURLs, in.ImagesToRemove)
	rec.room.ImageURLs = append(rec.room.ImageURLs, in.ImageURLs...)
	rec.room.UpdatedAt = domain.Timestamp{Time: r.now()}
	return r.roomView(rec), nil
}

func removeAll(list, drop []string) []string {
	if len(drop) == 0 {
		return list
	}
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	out := list[:0:0]
	for _, v := range list {
		if !skip[v] {
			out = append(out, v)
		}
	}
	return out
}

func (r *MemoryRepo) DeleteRoom(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[id]; !ok {
		return ErrNotFound
	}
	delete(r.rooms, id)
	return nil
}

func (r *MemoryRepo) AddImages(id int64, urls []string) (domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rooms[id]
	if !ok {
		return domain.Room{}, ErrNotFound
	}
	rec.room.ImageURLs = append(rec.room.ImageURLs, urls...)
	return r.roomView(rec), nil
}

// RemoveImage matches the stored URL exactly.
func (r *MemoryRepo) RemoveImage(id int64, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rooms[id]
	if !ok {
		return ErrNotFound
	}
	before := len(rec.room.ImageURLs)
	rec.room.ImageURLs = removeAll(rec.room.ImageURLs, []string{url})
	if len(rec.room.ImageURLs) == before {
		return fmt.Errorf("%w: image %s", ErrNotFound, url)
	}
	return nil
}

func (r *MemoryRepo) AddUtilities(id int64, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rooms[id]
	if !ok {
		return ErrNotFound
	}
	merged := make([]int64, 0, len(rec.utilities)+len(ids))
	for _, u := range rec.utilities {
		merged = append(merged, u.UtilityTypeID)
	}
	utilities, err := r.utilitiesFor(append(merged, ids...), rec.utilities)
	if err != nil {
		return err
	}
	rec.utilities = utilities
	return nil
}

func (r *MemoryRepo) ReplaceUtilities(id int64, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rooms[id]
	if !ok {
		return ErrNotFound
	}
	utilities, err := r.utilitiesFor(ids, nil)
	if err != nil {
		return err
	}
	rec.utilities = utilities
	return nil
}

func (r *MemoryRepo) RemoveUtility(id, utilityTypeID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rooms[id]
	if !ok {
		return ErrNotFound
	}
	out := rec.utilities[:0:0]
	for _, u := range rec.utilities {
		if u.UtilityTypeID != utilityTypeID {
			out = append(out, u)
		}
	}
	if len(out) == len(rec.utilities) {
		return ErrNotFound
	}
	rec.utilities = out
	return nil
}

// ToggleUtility receives the client's current flag and stores its inverse.
func (r *MemoryRepo) ToggleUtility(id, utilityTypeID int64, current bool) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rooms[id]
	if !ok {
		return false, ErrNotFound
	}
	for i := range rec.utilities {
		if rec.utilities[i].UtilityTypeID == utilityTypeID {
			rec.utilities[i].IsActive = !current
			return rec.utilities[i].IsActive, nil
		}
	}
	return false, ErrNotFound
}

// SetUtilityActive forces a flag; used to prepare fixtures.
func (r *MemoryRepo) SetUtilityActive(id, utilityTypeID int64, active bool) error {
	_, err := r.ToggleUtility(id, utilityTypeID, !active)
	return err
}

// SetAvailable flips a room's availability; used to prepare fixtures.
func (r *MemoryRepo) SetAvailable(id int64, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rooms[id]
	if !ok {
		return ErrNotFound
	}
	rec.room.IsAvailable = available
	return nil
}
