package ports

import (
	"context"
	"fire-dispatch-service/internal/domain"
)

// Contract for turning firefighter positions and fires into an ordered decision list.
type Planner interface {
	// Name identifies the strategy (used in cache keys and persisted runs).
	Name() string
	// Plan returns one decision per distinct fire. positions holds the current
	// location of every firefighter in roster order.
	Plan(ctx context.Context, positions []domain.Coordinate, fires []domain.Coordinate) (*domain.DispatchPlan, error)
}
