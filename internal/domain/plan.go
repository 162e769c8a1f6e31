package domain

import "time"

// One atomic dispatch: move a firefighter currently at From to To.
type Decision struct {
	From Coordinate `json:"from"`
	To   Coordinate `json:"to"`
}

// Sum of the Manhattan lengths of all decisions.
func TotalDistance(decisions []Decision) int {
	total := 0
	for _, d := range decisions {
		total += Distance(d.From, d.To)
	}
	return total
}

// Represents the decisions applied by one dispatch call, in application order.
// It is immutable planning data and contains no side effects.
type DispatchPlan struct {
	ID            string
	Strategy      string
	Decisions     []Decision
	TotalDistance int
	// Expanded and Pruned are search counters; both are zero for cached or greedy plans.
	Expanded int
	Pruned   int
	Cached   bool
}

// A persisted record of a completed dispatch.
type DispatchRun struct {
	ID            string
	Strategy      string
	Firefighters  int
	Fires         []Coordinate
	Decisions     []Decision
	TotalDistance int
	StartedAt     time.Time
	FinishedAt    time.Time
}
