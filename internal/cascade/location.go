package cascade

import (
	"context"

	"roomadmin/internal/domain"

	"go.uber.org/zap"
)

const (
	Branch   Node = "branch"
	Building Node = "building"
	Level    Node = "level"
)

// LocationAPI is satisfied by client.LocationsClient.
type LocationAPI interface {
	Branches(ctx context.Context) ([]domain.Branch, error)
	Buildings(ctx context.Context, branchID int64) ([]domain.Building, error)
	Levels(ctx context.Context, buildingID int64) ([]domain.Level, error)
}

// NewLocation builds the branch -> building -> level selection.
func NewLocation(api LocationAPI, logger *zap.Logger) *Selection {
	s, err := New(logger,
		Spec{Node: Branch, Load: func(ctx context.Context, _ int64) ([]Option, error) {
			branches, err := api.Branches(ctx)
			if err != nil {
				return nil, err
			}
			out := make([]Option, 0, len(branches))
			for _, b := range branches {
				out = append(out, Option{ID: b.ID, Label: b.BranchName})
			}
			return out, nil
		}},
		Spec{Node: Building, Parent: Branch, Load: func(ctx context.Context, branchID int64) ([]Option, error) {
			buildings, err := api.Buildings(ctx, branchID)
			if err != nil {
				return nil, err
			}
			out := make([]Option, 0, len(buildings))
			for _, b := range buildings {
				out = append(out, Option{ID: b.ID, Label: b.BuildingName})
			}
			return out, nil
		}},
		Spec{Node: Level, Parent: Building, Load: func(ctx context.Context, buildingID int64) ([]Option, error) {
			levels, err := api.Levels(ctx, buildingID)
			if err != nil {
				return nil, err
			}
			out := make([]Option, 0, len(levels))
			for _, l := range levels {
				out = append(out, Option{ID: l.ID, Label: l.LevelName})
			}
			return out, nil
		}},
	)
	if err != nil {
		// the specs above are static
		panic(err)
	}
	return s
}

// SelectPath seeds the chain from an existing room, e.g. when an edit form opens.
// Stops at the first failing load.
func SelectPath(ctx context.Context, s *Selection, branchID, buildingID, levelID int64) error {
	if err := s.Select(ctx, Branch, branchID); err != nil {
		return err
	}
	if err := s.Select(ctx, Building, buildingID); err != nil {
		return err
	}
	return s.Select(ctx, Level, levelID)
}
