package ports

import (
	"context"
	"fire-dispatch-service/internal/domain"
)

// Optional store of previously computed decision lists, keyed by a canonical
// rendering of the planning input.
type PlanCache interface {
	// Return the cached decisions for key. ok is false on a miss.
	Get(ctx context.Context, key string) (decisions []domain.Decision, ok bool, err error)
	Put(ctx context.Context, key string, decisions []domain.Decision) error
}
