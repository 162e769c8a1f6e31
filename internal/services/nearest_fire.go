package services

import (
	"context"
	"fire-dispatch-service/internal/domain"
	"fire-dispatch-service/internal/platform/obs"
	"fmt"
	"math"
	"slices"
)

// Plan a dispatch using a greedy nearest-fire-first algorithm.
//
// At each step the closest (fire, firefighter) pair is chosen and that
// firefighter moves. It does not attempt global optimization and can lose to
// OptimalPlanner when an early short hop strands the rest of the route.
// Ties go to the first fire in input order, then the first firefighter in
// roster order.
type NearestFirePlanner struct{}

func NewNearestFirePlanner() *NearestFirePlanner { return &NearestFirePlanner{} }

func (g *NearestFirePlanner) Name() string { return StrategyGreedy }

func (g *NearestFirePlanner) Plan(
	ctx context.Context,
	positions []domain.Coordinate,
	fires []domain.Coordinate,
) (_ *domain.DispatchPlan, err error) {
	defer obs.Time(ctx, "planner.greedy.Plan")(&err)

	remaining := distinctInOrder(fires)
	if len(remaining) == 0 {
		return emptyPlan(StrategyGreedy), nil
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("greedy plan: %w", ErrNoFirefighters)
	}

	current := slices.Clone(positions)
	decisions := make([]domain.Decision, 0, len(remaining))
	total := 0

	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("greedy plan: %w", err)
		}

		bestFire, bestFirefighter := -1, -1
		minDistance := math.MaxInt

		// Select next fire by minimum travel distance (greedy step).
		for fi, fire := range remaining {
			for ci, loc := range current {
				if d := domain.Distance(loc, fire); d < minDistance {
					minDistance = d
					bestFire = fi
					bestFirefighter = ci
				}
			}
		}

		fire := remaining[bestFire]
		decisions = append(decisions, domain.Decision{From: current[bestFirefighter], To: fire})
		total += minDistance

		current[bestFirefighter] = fire
		remaining = slices.Delete(remaining, bestFire, bestFire+1)
	}

	return &domain.DispatchPlan{
		Strategy:      StrategyGreedy,
		Decisions:     decisions,
		TotalDistance: total,
	}, nil
}

// distinctInOrder drops repeated coordinates, keeping first occurrences.
func distinctInOrder(in []domain.Coordinate) []domain.Coordinate {
	seen := make(map[domain.Coordinate]struct{}, len(in))
	out := make([]domain.Coordinate, 0, len(in))
	for _, c := range in {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
