package dto

import (
	"fire-dispatch-service/internal/domain"
	"time"
)

type DispatchRequest struct {
	Width        int                 `json:"width"`
	Height       int                 `json:"height"`
	Station      domain.Coordinate   `json:"station"`
	Firefighters int                 `json:"firefighters"`
	Fires        []domain.Coordinate `json:"fires"`
	Strategy     string              `json:"strategy"`
}

type FirefighterResponse struct {
	Location         domain.Coordinate `json:"location"`
	DistanceTraveled int               `json:"distance_traveled"`
}

type DispatchResponse struct {
	DispatchID    string                `json:"dispatch_id"`
	Strategy      string                `json:"strategy"`
	TotalDistance int                   `json:"total_distance"`
	Cached        bool                  `json:"cached"`
	Decisions     []domain.Decision     `json:"decisions"`
	Firefighters  []FirefighterResponse `json:"firefighters"`
}

type DispatchRunResponse struct {
	DispatchID    string              `json:"dispatch_id"`
	Strategy      string              `json:"strategy"`
	Firefighters  int                 `json:"firefighters"`
	Fires         []domain.Coordinate `json:"fires"`
	Decisions     []domain.Decision   `json:"decisions"`
	TotalDistance int                 `json:"total_distance"`
	StartedAt     time.Time           `json:"started_at"`
	FinishedAt    time.Time           `json:"finished_at"`
}

type ListDispatchesResponse struct {
	Dispatches []DispatchRunResponse `json:"dispatches"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
