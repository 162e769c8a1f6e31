package repositories

import (
	"encoding/json"
	"fire-dispatch-service/internal/domain"
	"fmt"
)

// Fires and decisions are stored as JSON arrays of {"x","y"} / {"from","to"}.
func encodeRunBody(run *domain.DispatchRun) (fires, decisions string, err error) {
	f, err := json.Marshal(nonNilCoords(run.Fires))
	if err != nil {
		return "", "", fmt.Errorf("encode fires: %w", err)
	}
	d, err := json.Marshal(nonNilDecisions(run.Decisions))
	if err != nil {
		return "", "", fmt.Errorf("encode decisions: %w", err)
	}
	return string(f), string(d), nil
}

func decodeRunBody(run *domain.DispatchRun, fires, decisions []byte) error {
	if err := json.Unmarshal(fires, &run.Fires); err != nil {
		return fmt.Errorf("decode fires for run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal(decisions, &run.Decisions); err != nil {
		return fmt.Errorf("decode decisions for run %s: %w", run.ID, err)
	}
	return nil
}

func nonNilCoords(in []domain.Coordinate) []domain.Coordinate {
	if in == nil {
		return []domain.Coordinate{}
	}
	return in
}

func nonNilDecisions(in []domain.Decision) []domain.Decision {
	if in == nil {
		return []domain.Decision{}
	}
	return in
}
