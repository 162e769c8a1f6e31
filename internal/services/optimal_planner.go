package services

import (
	"context"
	"errors"
	"fire-dispatch-service/internal/domain"
	"fire-dispatch-service/internal/platform/obs"
	"fmt"
	"log"
	"slices"
)

var (
	ErrInvalidFirefighterCount = errors.New("invalid firefighter count")
	ErrNoFirefighters          = errors.New("no firefighters available")
	ErrSearchBudgetExceeded    = errors.New("search budget exceeded")
)

// How often (in expanded nodes) the search polls its context.
const cancelCheckInterval = 1024

// OptimalPlanner finds a minimum total-distance decision list with a
// depth-first branch-and-bound search over partial solutions.
//
// Firefighters are tracked as counts per location rather than as identities,
// so states that differ only by which of two co-located firefighters moved
// are never generated twice. Expansion order is lexicographic on targets and
// sources, which makes the chosen plan deterministic among equal-cost optima.
type OptimalPlanner struct {
	// MaxExpansions bounds the number of expanded nodes; zero means unbounded.
	MaxExpansions int
}

func NewOptimalPlanner(maxExpansions int) *OptimalPlanner {
	return &OptimalPlanner{MaxExpansions: maxExpansions}
}

func (o *OptimalPlanner) Name() string { return StrategyOptimal }

// Plan collapses the roster into an availability map and searches it.
func (o *OptimalPlanner) Plan(
	ctx context.Context,
	positions []domain.Coordinate,
	fires []domain.Coordinate,
) (_ *domain.DispatchPlan, err error) {
	defer obs.Time(ctx, "planner.optimal.Plan")(&err)

	if len(fires) == 0 {
		return emptyPlan(StrategyOptimal), nil
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("optimal plan: %w", ErrNoFirefighters)
	}

	available := make(map[domain.Coordinate]int, len(positions))
	for _, p := range positions {
		available[p]++
	}

	return o.search(ctx, available, fires)
}

// FindOptimalAssignment plans for firefighterCount firefighters that all start at home.
func (o *OptimalPlanner) FindOptimalAssignment(
	ctx context.Context,
	targets []domain.Coordinate,
	home domain.Coordinate,
	firefighterCount int,
) ([]domain.Decision, error) {
	if firefighterCount < 1 {
		return nil, fmt.Errorf("find optimal assignment: %w: got %d", ErrInvalidFirefighterCount, firefighterCount)
	}
	if len(targets) == 0 {
		return []domain.Decision{}, nil
	}

	plan, err := o.search(ctx, map[domain.Coordinate]int{home: firefighterCount}, targets)
	if err != nil {
		return nil, fmt.Errorf("find optimal assignment: %w", err)
	}
	return plan.Decisions, nil
}

// FindOptimalAssignment runs an unbounded search from a single home location.
func FindOptimalAssignment(
	ctx context.Context,
	targets []domain.Coordinate,
	home domain.Coordinate,
	firefighterCount int,
) ([]domain.Decision, error) {
	return NewOptimalPlanner(0).FindOptimalAssignment(ctx, targets, home, firefighterCount)
}

func (o *OptimalPlanner) search(
	ctx context.Context,
	available map[domain.Coordinate]int,
	fires []domain.Coordinate,
) (*domain.DispatchPlan, error) {
	s := &searchSession{
		ctx:    ctx,
		budget: o.MaxExpansions,
	}

	best, err := s.run(newPartialSolution(available, distinctSorted(fires)))
	if err != nil {
		return nil, err
	}

	log.Printf(
		"op=planner.optimal.search targets=%d sources=%d expanded=%d pruned=%d cost=%d",
		best.decisions.size(), len(available), s.expanded, s.pruned, best.cost,
	)

	return &domain.DispatchPlan{
		Strategy:      StrategyOptimal,
		Decisions:     best.decisions.slice(),
		TotalDistance: best.cost,
		Expanded:      s.expanded,
		Pruned:        s.pruned,
	}, nil
}

// searchSession holds the state of one search: the frontier and the best
// complete solution so far. It does not outlive the search call.
type searchSession struct {
	ctx      context.Context
	budget   int
	frontier []*partialSolution
	best     *partialSolution
	expanded int
	pruned   int
}

func (s *searchSession) run(root *partialSolution) (*partialSolution, error) {
	if root.complete() {
		return root, nil
	}

	s.frontier = append(s.frontier, root)
	for len(s.frontier) > 0 {
		if s.expanded%cancelCheckInterval == 0 {
			if err := s.ctx.Err(); err != nil {
				return nil, fmt.Errorf("search: %w", err)
			}
		}
		if s.budget > 0 && s.expanded >= s.budget {
			return nil, fmt.Errorf("search: %w after %d expansions", ErrSearchBudgetExceeded, s.expanded)
		}

		last := len(s.frontier) - 1
		p := s.frontier[last]
		s.frontier[last] = nil
		s.frontier = s.frontier[:last]

		// The bound may have tightened since p was pushed.
		if !s.improves(p.cost) {
			s.pruned++
			continue
		}

		s.expanded++
		s.expand(p)
	}

	if s.best == nil {
		panic(fmt.Sprintf("search: frontier exhausted without a complete solution for %d targets", len(root.remaining)))
	}
	return s.best, nil
}

// expand generates every child of p. Complete children compete for best;
// partial children are pushed only while they can still beat it.
func (s *searchSession) expand(p *partialSolution) {
	sources := p.sources()
	children := make([]*partialSolution, 0, len(p.remaining)*len(sources))

	for i, target := range p.remaining {
		for _, src := range sources {
			cost := p.cost + domain.Distance(src, target)
			if !s.improves(cost) {
				s.pruned++
				continue
			}

			child := p.next(src, i, cost)
			if child.complete() {
				s.best = child
				continue
			}
			children = append(children, child)
		}
	}

	// Push in reverse so the first generated child is explored first.
	for i := len(children) - 1; i >= 0; i-- {
		if !s.improves(children[i].cost) {
			s.pruned++
			continue
		}
		s.frontier = append(s.frontier, children[i])
	}
}

func (s *searchSession) improves(cost int) bool {
	return s.best == nil || cost < s.best.cost
}

// partialSolution is an immutable search node. Children are derived with next;
// a node is never modified once built.
type partialSolution struct {
	cost      int
	decisions *decisionTrail
	// remaining is sorted by Coordinate.Less.
	remaining []domain.Coordinate
	// available maps location -> firefighter count; counts are always >= 1.
	available map[domain.Coordinate]int
}

func newPartialSolution(available map[domain.Coordinate]int, targets []domain.Coordinate) *partialSolution {
	avail := make(map[domain.Coordinate]int, len(available))
	for loc, n := range available {
		if n > 0 {
			avail[loc] = n
		}
	}
	return &partialSolution{remaining: targets, available: avail}
}

func (p *partialSolution) complete() bool { return len(p.remaining) == 0 }

// sources returns the occupied locations in lexicographic order.
func (p *partialSolution) sources() []domain.Coordinate {
	out := make([]domain.Coordinate, 0, len(p.available))
	for loc := range p.available {
		out = append(out, loc)
	}
	slices.SortFunc(out, domain.Coordinate.Compare)
	return out
}

// next returns the child reached by moving one firefighter from src to
// remaining[i]. cost must already include the move.
func (p *partialSolution) next(src domain.Coordinate, i int, cost int) *partialSolution {
	target := p.remaining[i]

	remaining := make([]domain.Coordinate, 0, len(p.remaining)-1)
	remaining = append(remaining, p.remaining[:i]...)
	remaining = append(remaining, p.remaining[i+1:]...)

	available := make(map[domain.Coordinate]int, len(p.available)+1)
	for loc, n := range p.available {
		available[loc] = n
	}
	if available[src] <= 1 {
		delete(available, src)
	} else {
		available[src]--
	}
	available[target]++

	return &partialSolution{
		cost:      cost,
		decisions: p.decisions.push(domain.Decision{From: src, To: target}),
		remaining: remaining,
		available: available,
	}
}

// decisionTrail is a persistent list of decisions: children share their
// parent's prefix instead of copying it.
type decisionTrail struct {
	decision domain.Decision
	prev     *decisionTrail
	depth    int
}

func (t *decisionTrail) size() int {
	if t == nil {
		return 0
	}
	return t.depth
}

func (t *decisionTrail) push(d domain.Decision) *decisionTrail {
	return &decisionTrail{decision: d, prev: t, depth: t.size() + 1}
}

// slice returns the decisions in the order they were taken.
func (t *decisionTrail) slice() []domain.Decision {
	out := make([]domain.Decision, t.size())
	for n := t; n != nil; n = n.prev {
		out[n.depth-1] = n.decision
	}
	return out
}

// distinctSorted returns the unique coordinates of in, ordered by Coordinate.Less.
func distinctSorted(in []domain.Coordinate) []domain.Coordinate {
	out := slices.Clone(in)
	slices.SortFunc(out, domain.Coordinate.Compare)
	return slices.Compact(out)
}
