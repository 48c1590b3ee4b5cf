package form

import (
	"context"
	"fmt"

	"roomadmin/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReferenceSources are the independent lookups a room form needs before it renders.
type ReferenceSources struct {
	Branches     func(ctx context.Context) ([]domain.Branch, error)
	RoomTypes    func(ctx context.Context) ([]domain.RoomType, error)
	UtilityTypes func(ctx context.Context) ([]domain.UtilityType, error)
}

// Reference 表单所需的参考数据
type Reference struct {
	Branches     []domain.Branch
	RoomTypes    []domain.RoomType
	UtilityTypes []domain.UtilityType
}

// LoadReference issues the three lookups concurrently and joins them. Any
// failure fails the whole load; partial results are dropped.
func LoadReference(ctx context.Context, src ReferenceSources, logger *zap.Logger) (*Reference, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var ref Reference
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		branches, err := src.Branches(gctx)
		if err != nil {
			return fmt.Errorf("load branches: %w", err)
		}
		ref.Branches = branches
		return nil
	})
	g.Go(func() error {
		types, err := src.RoomTypes(gctx)
		if err != nil {
			return fmt.Errorf("load room types: %w", err)
		}
		ref.RoomTypes = types
		return nil
	})
	g.Go(func() error {
		utilities, err := src.UtilityTypes(gctx)
		if err != nil {
			return fmt.Errorf("load utility types: %w", err)
		}
		ref.UtilityTypes = utilities
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("Failed to load form reference data", zap.Error(err))
		return nil, err
	}
	return &ref, nil
}
