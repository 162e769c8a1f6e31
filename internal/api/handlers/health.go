package handlers

import (
	"fire-dispatch-service/internal/api/dto"
	"net/http"
)

// Health answers load balancer checks. It touches no storage, so a slow
// database or Redis never marks the dispatcher down.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.HealthResponse{Status: "ok", Service: "fire-dispatch"})
}
