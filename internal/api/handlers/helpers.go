package handlers

import (
	"encoding/json"
	"fire-dispatch-service/internal/api/dto"
	"fire-dispatch-service/internal/platform/obs"
	"log"
	"net/http"
	"strings"
)

// writeJSON sends v as the response body. Encoding failures can only be logged,
// the status line is already out.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("req_id=%s op=http.writeJSON path=%s err=%v", obs.RequestID(r.Context()), r.URL.Path, err)
	}
}

// writeError carries the request id so a client report can be matched to the server log.
func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{
		Error:     msg,
		RequestID: obs.RequestID(r.Context()),
	})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}
