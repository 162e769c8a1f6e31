package api

import (
	"fire-dispatch-service/internal/api/handlers"
	"fire-dispatch-service/internal/ports"
	"net/http"
	"time"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// runs and cache may be nil; dispatches then go unrecorded or uncached.
// maxExpansions and searchTimeout bound each dispatch search (zero timeout
// means handlers.DefaultSearchTimeout).
func NewRouter(
	runs ports.DispatchRepository,
	cache ports.PlanCache,
	maxExpansions int,
	searchTimeout time.Duration,
) http.Handler {
	mux := http.NewServeMux()

	dispatchHandler := &handlers.DispatchHandler{
		Runs:          runs,
		Cache:         cache,
		MaxExpansions: maxExpansions,
		SearchTimeout: searchTimeout,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/dispatches", dispatchHandler)

	return requestIDMiddleware(loggingMiddleware(mux))
}
