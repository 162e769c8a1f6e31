package services

import (
	"context"
	"fire-dispatch-service/internal/config"
	"fire-dispatch-service/internal/domain"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// ScenarioResult is the outcome of one scenario run.
type ScenarioResult struct {
	Name            string
	Strategy        string
	TotalDistance   int
	Expected        *int
	AllExtinguished bool
	Plan            *domain.DispatchPlan
}

// Passed reports whether every fire is out and, when an expectation is set,
// the firefighters travelled exactly that far.
func (r *ScenarioResult) Passed() bool {
	if !r.AllExtinguished {
		return false
	}
	return r.Expected == nil || *r.Expected == r.TotalDistance
}

// RunScenario builds an isolated city for sc, sets its fires and dispatches.
// Total distance is read back from the firefighters, not from the plan.
func RunScenario(ctx context.Context, sc config.Scenario, maxExpansions int) (*ScenarioResult, error) {
	city, err := domain.NewCity(sc.Width, sc.Height, sc.Station)
	if err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", sc.Name, err)
	}

	if err := domain.SetFires(city, sc.Fires...); err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", sc.Name, err)
	}

	planner, err := NewPlanner(sc.Strategy, maxExpansions)
	if err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", sc.Name, err)
	}

	dispatch := NewFireDispatch(city, WithPlanner(planner))
	if err := dispatch.SetFirefighters(sc.Firefighters); err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", sc.Name, err)
	}

	plan, err := dispatch.DispatchFirefighters(ctx, sc.Fires...)
	if err != nil {
		return nil, fmt.Errorf("run scenario %s: %w", sc.Name, err)
	}

	total := 0
	for _, ff := range dispatch.Firefighters() {
		total += ff.DistanceTraveled()
	}

	return &ScenarioResult{
		Name:            sc.Name,
		Strategy:        planner.Name(),
		TotalDistance:   total,
		Expected:        sc.ExpectedDistance,
		AllExtinguished: len(city.BurningBuildings()) == 0,
		Plan:            plan,
	}, nil
}

// RunScenarios runs independent scenarios concurrently, at most limit at a time.
// Results keep the input order. The first error cancels the remaining runs.
func RunScenarios(
	ctx context.Context,
	scenarios []config.Scenario,
	limit int,
	maxExpansions int,
) ([]*ScenarioResult, error) {
	if limit < 1 {
		limit = 1
	}

	results := make([]*ScenarioResult, len(scenarios))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, sc := range scenarios {
		i, sc := i, sc
		g.Go(func() error {
			res, err := RunScenario(ctx, sc, maxExpansions)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("run scenarios: %w", err)
	}
	return results, nil
}
