package service

import (
	"context"
	"sync"

	"roomadmin/internal/client"
	"roomadmin/internal/domain"

	"go.uber.org/zap"
)

// RoomTypeAPI 房型资源接口
type RoomTypeAPI interface {
	List(ctx context.Context) ([]domain.RoomType, error)
	Create(ctx context.Context, in client.RoomTypeInput) (*domain.RoomType, error)
	Update(ctx context.Context, id int64, in client.RoomTypeInput) (*domain.RoomType, error)
	Delete(ctx context.Context, id int64) error
}

// RoomTypeStore 房型列表状态，写操作后整体重新加载
type RoomTypeStore struct {
	api    RoomTypeAPI
	logger *zap.Logger

	mu      sync.RWMutex
	types   []domain.RoomType
	loading bool
	err     error
}

func NewRoomTypeStore(api RoomTypeAPI, logger *zap.Logger) *RoomTypeStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomTypeStore{api: api, logger: logger, types: []domain.RoomType{}}
}

func (s *RoomTypeStore) Load(ctx context.Context) error {
	s.setLoading(true)
	defer s.setLoading(false)

	types, err := s.api.List(ctx)
	if err != nil {
		s.fail("load room types", err)
		return err
	}
	s.mu.Lock()
	s.types = types
	s.err = nil
	s.mu.Unlock()
	return nil
}

func (s *RoomTypeStore) Create(ctx context.Context, in client.RoomTypeInput) bool {
	return s.mutate(ctx, "create room type", func() error {
		_, err := s.api.Create(ctx, in)
		return err
	})
}

func (s *RoomTypeStore) Update(ctx context.Context, id int64, in client.RoomTypeInput) bool {
	return s.mutate(ctx, "update room type", func() error {
		_, err := s.api.Update(ctx, id, in)
		return err
	}, zap.Int64("room_type_id", id))
}

func (s *RoomTypeStore) Delete(ctx context.Context, id int64) bool {
	return s.mutate(ctx, "delete room type", func() error {
		return s.api.Delete(ctx, id)
	}, zap.Int64("room_type_id", id))
}

func (s *RoomTypeStore) mutate(ctx context.Context, op string, write func() error, fields ...zap.Field) bool {
	s.setLoading(true)
	err := write()
	s.setLoading(false)
	if err != nil {
		s.fail(op, err, fields...)
		return false
	}
	_ = s.Load(ctx)
	return true
}

func (s *RoomTypeStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *RoomTypeStore) fail(op string, err error, fields ...zap.Field) {
	s.logger.Error("Room type store operation failed", append(fields, zap.String("op", op), zap.Error(err))...)
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *RoomTypeStore) RoomTypes() []domain.RoomType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.types
}

func (s *RoomTypeStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *RoomTypeStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *RoomTypeStore) ErrorMessage() string {
	return client.MessageOf(s.Err())
}

func (s *RoomTypeStore) ClearError() {
	s.mu.Lock()
	s.err = nil
	s.mu.Unlock()
}
