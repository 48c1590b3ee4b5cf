package detail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"roomadmin/internal/domain"

	"go.uber.org/zap"
)

var (
	ErrToggleInFlight = errors.New("utility toggle already in progress")
	ErrNoRoom         = errors.New("no room is open")
	ErrUnknownUtility = errors.New("room has no such utility")
)

// RoomAPI is satisfied by client.RoomsClient.
type RoomAPI interface {
	Get(ctx context.Context, id int64) (*domain.Room, error)
	ToggleUtilityStatus(ctx context.Context, id, utilityTypeID int64, isActive bool) error
}

// View 房间详情
// Shows every utility association, active or not. A toggle locks only its own
// utility and is followed by a full refetch of the room.
type View struct {
	api    RoomAPI
	logger *zap.Logger

	mu       sync.Mutex
	room     *domain.Room
	loading  bool
	err      error
	inFlight map[int64]bool

	Gallery *Gallery
}

func NewView(api RoomAPI, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{api: api, logger: logger, inFlight: map[int64]bool{}, Gallery: &Gallery{}}
}

// Open loads the room's full record. On failure nothing is shown.
func (v *View) Open(ctx context.Context, roomID int64) error {
	v.mu.Lock()
	v.loading = true
	v.mu.Unlock()

	room, err := v.api.Get(ctx, roomID)

	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = false
	if err != nil {
		v.err = err
		v.room = nil
		v.Gallery.Close()
		v.logger.Error("Failed to load room detail", zap.Int64("room_id", roomID), zap.Error(err))
		return err
	}
	v.set(room)
	return nil
}

// set replaces the shown room. Caller holds the lock.
func (v *View) set(room *domain.Room) {
	v.room = room
	v.err = nil
	v.Gallery.Load(room.ID, room.ImageURLs)
}

// Close hides the view. The gallery keeps its cursor for the same room.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.room = nil
	v.Gallery.Close()
}

func (v *View) Room() (domain.Room, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.room == nil {
		return domain.Room{}, false
	}
	return *v.room, true
}

func (v *View) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loading
}

func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Summary renders "N active / M total".
func (v *View) Summary() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.room == nil {
		return "0 active / 0 total"
	}
	return fmt.Sprintf("%d active / %d total", v.room.ActiveUtilityCount(), len(v.room.Utilities))
}

// Busy reports whether a toggle for utilityTypeID is in flight.
func (v *View) Busy(utilityTypeID int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.inFlight[utilityTypeID]
}

// ToggleUtility sends the utility's current flag; the server inverts it. The
// room is then refetched rather than patched locally.
func (v *View) ToggleUtility(ctx context.Context, utilityTypeID int64) error {
	v.mu.Lock()
	if v.room == nil {
		v.mu.Unlock()
		return ErrNoRoom
	}
	if v.inFlight[utilityTypeID] {
		v.mu.Unlock()
		return ErrToggleInFlight
	}
	u, ok := v.room.Utility(utilityTypeID)
	if !ok {
		v.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownUtility, utilityTypeID)
	}
	roomID := v.room.ID
	v.inFlight[utilityTypeID] = true
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.inFlight, utilityTypeID)
		v.mu.Unlock()
	}()

	logFields := []zap.Field{zap.Int64("room_id", roomID), zap.Int64("utility_type_id", utilityTypeID)}
	if err := v.api.ToggleUtilityStatus(ctx, roomID, utilityTypeID, u.IsActive); err != nil {
		v.logger.Error("Failed to toggle utility", append(logFields, zap.Error(err))...)
		v.mu.Lock()
		v.err = err
		v.mu.Unlock()
		return err
	}

	room, err := v.api.Get(ctx, roomID)
	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.logger.Error("Failed to refetch room after toggle", append(logFields, zap.Error(err))...)
		v.err = err
		return err
	}
	// the view may have been closed or moved to another room meanwhile
	if v.room != nil && v.room.ID == roomID {
		v.set(room)
	}
	v.logger.Info("Utility toggled", logFields...)
	return nil
}
