package services

import (
	"errors"
	"fire-dispatch-service/internal/domain"
	"fire-dispatch-service/internal/ports"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	StrategyOptimal = "optimal"
	StrategyGreedy  = "greedy"
)

var ErrUnknownStrategy = errors.New("unknown dispatch strategy")

// NewPlanner returns the planner for a strategy name. An empty name selects
// the optimal planner.
func NewPlanner(strategy string, maxExpansions int) (ports.Planner, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", StrategyOptimal:
		return NewOptimalPlanner(maxExpansions), nil
	case StrategyGreedy:
		return NewNearestFirePlanner(), nil
	default:
		return nil, fmt.Errorf("new planner: %w: %q", ErrUnknownStrategy, strategy)
	}
}

func emptyPlan(strategy string) *domain.DispatchPlan {
	return &domain.DispatchPlan{Strategy: strategy, Decisions: []domain.Decision{}}
}

// PlanCacheKey renders a planning input as a stable cache key.
//
// The optimal planner only sees the multiset of positions and the set of
// fires, so both are canonicalized. The greedy planner breaks ties by input
// order, so its key keeps roster and fire order.
func PlanCacheKey(strategy string, positions []domain.Coordinate, fires []domain.Coordinate) string {
	pos := slices.Clone(positions)
	var fs []domain.Coordinate
	if strategy == StrategyGreedy {
		fs = distinctInOrder(fires)
	} else {
		slices.SortFunc(pos, domain.Coordinate.Compare)
		fs = distinctSorted(fires)
	}

	var b strings.Builder
	b.WriteString("plan:v1:")
	b.WriteString(strategy)
	b.WriteString(":ff=")
	writeCoords(&b, pos)
	b.WriteString(":fires=")
	writeCoords(&b, fs)
	return b.String()
}

func writeCoords(b *strings.Builder, coords []domain.Coordinate) {
	for i, c := range coords {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(strconv.Itoa(c.X))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(c.Y))
	}
}
