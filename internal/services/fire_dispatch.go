package services

import (
	"context"
	"fire-dispatch-service/internal/domain"
	"fire-dispatch-service/internal/platform/obs"
	"fire-dispatch-service/internal/ports"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"
)

// FireDispatch owns a city's firefighter roster and applies plans to it.
//
// It is not safe for concurrent use: each city gets its own FireDispatch.
type FireDispatch struct {
	city         *domain.City
	firefighters []*domain.Firefighter
	planner      ports.Planner
	cache        ports.PlanCache
	runs         ports.DispatchRepository
}

type FireDispatchOption func(*FireDispatch)

func WithPlanner(p ports.Planner) FireDispatchOption {
	return func(d *FireDispatch) { d.planner = p }
}

func WithPlanCache(c ports.PlanCache) FireDispatchOption {
	return func(d *FireDispatch) { d.cache = c }
}

func WithDispatchRepository(r ports.DispatchRepository) FireDispatchOption {
	return func(d *FireDispatch) { d.runs = r }
}

// NewFireDispatch uses the unbounded optimal planner unless WithPlanner says otherwise.
func NewFireDispatch(city *domain.City, opts ...FireDispatchOption) *FireDispatch {
	d := &FireDispatch{
		city:    city,
		planner: NewOptimalPlanner(0),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Replace the roster with n firefighters waiting at the fire station.
func (d *FireDispatch) SetFirefighters(n int) error {
	if n < 0 {
		return fmt.Errorf("set firefighters: %w: got %d", ErrInvalidFirefighterCount, n)
	}

	station := d.city.FireStation().Location()
	d.firefighters = make([]*domain.Firefighter, 0, n)
	for i := 0; i < n; i++ {
		d.firefighters = append(d.firefighters, domain.NewFirefighter(station))
	}
	return nil
}

func (d *FireDispatch) Firefighters() []*domain.Firefighter {
	return slices.Clone(d.firefighters)
}

// DispatchFirefighters plans against the roster's current locations and then
// moves firefighters decision by decision. Each decision is bound to the first
// firefighter standing at its source, so a firefighter that has just arrived
// can be sent on by a later decision of the same plan.
//
// Every fire is validated before anything moves.
func (d *FireDispatch) DispatchFirefighters(
	ctx context.Context,
	fires ...domain.Coordinate,
) (_ *domain.DispatchPlan, err error) {
	defer obs.Time(ctx, "dispatch.DispatchFirefighters")(&err)

	started := time.Now()

	for _, f := range fires {
		if _, err := d.city.BuildingAt(f); err != nil {
			return nil, fmt.Errorf("dispatch firefighters: %w", err)
		}
	}

	if len(fires) > 0 && len(d.firefighters) == 0 {
		return nil, fmt.Errorf("dispatch firefighters: %w", ErrNoFirefighters)
	}

	positions := make([]domain.Coordinate, 0, len(d.firefighters))
	for _, ff := range d.firefighters {
		positions = append(positions, ff.Location())
	}

	plan, err := d.plan(ctx, positions, fires)
	if err != nil {
		return nil, fmt.Errorf("dispatch firefighters: %w", err)
	}

	for i, dec := range plan.Decisions {
		ff := d.firefighterAt(dec.From)
		if ff == nil {
			return nil, fmt.Errorf("dispatch firefighters: decision #%d: no firefighter at %s", i+1, dec.From)
		}

		b, err := d.city.BuildingAt(dec.To)
		if err != nil {
			return nil, fmt.Errorf("dispatch firefighters: decision #%d: %w", i+1, err)
		}
		ff.DispatchTo(b)
	}

	plan.ID = uuid.NewString()
	d.record(ctx, plan, fires, started)

	return plan, nil
}

func (d *FireDispatch) plan(
	ctx context.Context,
	positions []domain.Coordinate,
	fires []domain.Coordinate,
) (*domain.DispatchPlan, error) {
	key := PlanCacheKey(d.planner.Name(), positions, fires)

	// Check the plan cache before running the planner.
	if d.cache != nil && len(fires) > 0 {
		decisions, ok, err := d.cache.Get(ctx, key)
		if err != nil {
			log.Printf("plan cache read failed: key=%s err=%v", key, err)
		} else if ok {
			if err := replay(positions, fires, decisions); err != nil {
				// Stale or corrupt entry: plan again and overwrite it.
				log.Printf("plan cache entry rejected: key=%s err=%v", key, err)
			} else {
				return &domain.DispatchPlan{
					Strategy:      d.planner.Name(),
					Decisions:     decisions,
					TotalDistance: domain.TotalDistance(decisions),
					Cached:        true,
				}, nil
			}
		}
	}

	plan, err := d.planner.Plan(ctx, positions, fires)
	if err != nil {
		return nil, fmt.Errorf("plan %s: %w", d.planner.Name(), err)
	}

	if d.cache != nil && len(plan.Decisions) > 0 {
		if err := d.cache.Put(ctx, key, plan.Decisions); err != nil {
			log.Printf("plan cache write failed: key=%s err=%v", key, err)
		}
	}

	return plan, nil
}

// replay walks decisions over the roster without moving anyone. Every source
// must hold a firefighter at that point and every distinct fire must be
// visited exactly once.
func replay(positions, fires []domain.Coordinate, decisions []domain.Decision) error {
	available := make(map[domain.Coordinate]int, len(positions))
	for _, p := range positions {
		available[p]++
	}
	pending := make(map[domain.Coordinate]bool, len(fires))
	for _, f := range fires {
		pending[f] = true
	}

	if len(decisions) != len(pending) {
		return fmt.Errorf("replay: %d decisions for %d fires", len(decisions), len(pending))
	}

	for i, dec := range decisions {
		if available[dec.From] == 0 {
			return fmt.Errorf("replay: decision #%d: no firefighter at %s", i+1, dec.From)
		}
		if !pending[dec.To] {
			return fmt.Errorf("replay: decision #%d: %s is not a pending fire", i+1, dec.To)
		}
		available[dec.From]--
		available[dec.To]++
		delete(pending, dec.To)
	}
	return nil
}

func (d *FireDispatch) firefighterAt(loc domain.Coordinate) *domain.Firefighter {
	for _, ff := range d.firefighters {
		if ff.Location() == loc {
			return ff
		}
	}
	return nil
}

// record persists the run. Storage failures are logged, the dispatch already happened.
func (d *FireDispatch) record(ctx context.Context, plan *domain.DispatchPlan, fires []domain.Coordinate, started time.Time) {
	if d.runs == nil || len(plan.Decisions) == 0 {
		return
	}

	run := &domain.DispatchRun{
		ID:            plan.ID,
		Strategy:      plan.Strategy,
		Firefighters:  len(d.firefighters),
		Fires:         slices.Clone(fires),
		Decisions:     plan.Decisions,
		TotalDistance: plan.TotalDistance,
		StartedAt:     started.UTC(),
		FinishedAt:    time.Now().UTC(),
	}
	if err := d.runs.SaveRun(ctx, run); err != nil {
		log.Printf("dispatch run save failed: id=%s err=%v", run.ID, err)
	}
}
