package ports

import (
	"context"
	"fire-dispatch-service/internal/domain"
)

// Port: a boundary for persisting completed dispatches.
type DispatchRepository interface {
	SaveRun(ctx context.Context, run *domain.DispatchRun) error
	// Return the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*domain.DispatchRun, error)
}
