package service

import (
	"context"
	"sync"

	"roomadmin/internal/client"
	"roomadmin/internal/domain"

	"go.uber.org/zap"
)

// RoomAPI 房间资源接口（由 client.RoomsClient 实现）
type RoomAPI interface {
	List(ctx context.Context) ([]domain.Room, error)
	Search(ctx context.Context, filter domain.RoomFilter) ([]domain.Room, error)
	Create(ctx context.Context, p *client.Payload) (*domain.Room, error)
	Update(ctx context.Context, id int64, p *client.Payload) (*domain.Room, error)
	Delete(ctx context.Context, id int64) error
}

// RoomStore 房间列表状态
// The canonical list only changes through Load (directly or after a mutation);
// Search replaces the filtered view alone.
type RoomStore struct {
	api    RoomAPI
	logger *zap.Logger

	mu        sync.RWMutex
	rooms     []domain.Room
	filtered  []domain.Room
	loading   bool
	searching bool
	err       error
}

// NewRoomStore 创建 RoomStore
func NewRoomStore(api RoomAPI, logger *zap.Logger) *RoomStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomStore{api: api, logger: logger, rooms: []domain.Room{}, filtered: []domain.Room{}}
}

// Load fetches the canonical list and resets the filtered view to it. On failure
// the previous lists are kept.
func (s *RoomStore) Load(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	rooms, err := s.api.List(ctx)
	if err != nil {
		s.fail("load rooms", err)
		return err
	}
	s.mu.Lock()
	s.rooms = rooms
	s.filtered = rooms
	s.err = nil
	s.mu.Unlock()
	s.logger.Debug("Rooms loaded", zap.Int("count", len(rooms)))
	return nil
}

// Search replaces only the filtered view. Overlapping searches are not
// cancelled; whichever response lands last wins.
func (s *RoomStore) Search(ctx context.Context, filter domain.RoomFilter) error {
	s.mu.Lock()
	s.searching = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.searching = false
		s.mu.Unlock()
	}()

	rooms, err := s.api.Search(ctx, filter)
	if err != nil {
		s.fail("search rooms", err)
		return err
	}
	s.mu.Lock()
	s.filtered = rooms
	s.err = nil
	s.mu.Unlock()
	s.logger.Debug("Rooms searched", zap.Any("filter", filter.Values()), zap.Int("count", len(rooms)))
	return nil
}

// ResetSearch points the filtered view back at the canonical list.
func (s *RoomStore) ResetSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filtered = s.rooms
}

// Create 创建房间并重新加载
func (s *RoomStore) Create(ctx context.Context, p *client.Payload) bool {
	return s.mutate(ctx, "create room", func() error {
		_, err := s.api.Create(ctx, p)
		return err
	})
}

// Update 更新房间并重新加载
func (s *RoomStore) Update(ctx context.Context, id int64, p *client.Payload) bool {
	return s.mutate(ctx, "update room", func() error {
		_, err := s.api.Update(ctx, id, p)
		return err
	}, zap.Int64("room_id", id))
}

// Delete 删除房间并重新加载
func (s *RoomStore) Delete(ctx context.Context, id int64) bool {
	return s.mutate(ctx, "delete room", func() error {
		return s.api.Delete(ctx, id)
	}, zap.Int64("room_id", id))
}

// mutate reports whether the write itself succeeded. A failed reload after a
// successful write is recorded in Err but does not turn the result false.
func (s *RoomStore) mutate(ctx context.Context, op string, write func() error, fields ...zap.Field) bool {
	s.setLoading(true)
	err := write()
	s.setLoading(false)
	if err != nil {
		s.fail(op, err, fields...)
		return false
	}
	s.logger.Info("Room mutation succeeded", append(fields, zap.String("op", op))...)
	_ = s.Load(ctx)
	return true
}

func (s *RoomStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *RoomStore) fail(op string, err error, fields ...zap.Field) {
	s.logger.Error("Room store operation failed", append(fields, zap.String("op", op), zap.Error(err))...)
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Rooms returns the canonical list.
func (s *RoomStore) Rooms() []domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rooms
}

// Filtered returns the current filtered view.
func (s *RoomStore) Filtered() []domain.Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filtered
}

func (s *RoomStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *RoomStore) Searching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searching
}

// Err is the last recorded failure, nil after a successful load or search.
func (s *RoomStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// ErrorMessage is Err rendered for display.
func (s *RoomStore) ErrorMessage() string {
	return client.MessageOf(s.Err())
}

func (s *RoomStore) ClearError() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
}
