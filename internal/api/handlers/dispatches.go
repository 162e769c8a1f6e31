package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fire-dispatch-service/internal/api/dto"
	"fire-dispatch-service/internal/domain"
	"fire-dispatch-service/internal/ports"
	"fire-dispatch-service/internal/services"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

const (
	maxGridSide      = 100
	maxFirefighters  = 50
	maxFires         = 64
	defaultListLimit = 20
	maxListLimit     = 100

	DefaultSearchTimeout = 10 * time.Second
)

// DispatchHandler plans and applies one dispatch per request against a fresh city.
// Planning is cut off by MaxExpansions and by SearchTimeout (DefaultSearchTimeout
// when zero), whichever comes first.
type DispatchHandler struct {
	Runs          ports.DispatchRepository
	Cache         ports.PlanCache
	MaxExpansions int
	SearchTimeout time.Duration
}

func (h *DispatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.Create(w, r)
	case http.MethodGet:
		h.List(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (h *DispatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.DispatchRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if err := validateDispatchRequest(req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	planner, err := services.NewPlanner(req.Strategy, h.MaxExpansions)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "strategy must be optimal or greedy")
		return
	}

	city, err := domain.NewCity(req.Width, req.Height, req.Station)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := domain.SetFires(city, req.Fires...); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	opts := []services.FireDispatchOption{services.WithPlanner(planner)}
	if h.Cache != nil {
		opts = append(opts, services.WithPlanCache(h.Cache))
	}
	if h.Runs != nil {
		opts = append(opts, services.WithDispatchRepository(h.Runs))
	}

	dispatch := services.NewFireDispatch(city, opts...)
	if err := dispatch.SetFirefighters(req.Firefighters); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	timeout := h.SearchTimeout
	if timeout <= 0 {
		timeout = DefaultSearchTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	plan, err := dispatch.DispatchFirefighters(ctx, req.Fires...)
	if errors.Is(err, services.ErrSearchBudgetExceeded) {
		writeError(w, r, http.StatusUnprocessableEntity, "search budget exceeded, try fewer fires or the greedy strategy")
		return
	}
	if errors.Is(err, context.DeadlineExceeded) {
		writeError(w, r, http.StatusServiceUnavailable, "search timed out, try fewer fires or the greedy strategy")
		return
	}
	if err != nil {
		log.Printf("dispatch failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.DispatchResponse{
		DispatchID:    plan.ID,
		Strategy:      plan.Strategy,
		TotalDistance: plan.TotalDistance,
		Cached:        plan.Cached,
		Decisions:     plan.Decisions,
	}
	for _, ff := range dispatch.Firefighters() {
		res.Firefighters = append(res.Firefighters, dto.FirefighterResponse{
			Location:         ff.Location(),
			DistanceTraveled: ff.DistanceTraveled(),
		})
	}

	writeJSON(w, r, http.StatusCreated, res)
}

func (h *DispatchHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.Runs == nil {
		writeError(w, r, http.StatusServiceUnavailable, "dispatch history is not configured")
		return
	}

	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxListLimit {
			writeError(w, r, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", maxListLimit))
			return
		}
		limit = n
	}

	runs, err := h.Runs.ListRuns(r.Context(), limit)
	if err != nil {
		log.Printf("list dispatches failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListDispatchesResponse{
		Dispatches: make([]dto.DispatchRunResponse, 0, len(runs)),
	}
	for _, run := range runs {
		res.Dispatches = append(res.Dispatches, dto.DispatchRunResponse{
			DispatchID:    run.ID,
			Strategy:      run.Strategy,
			Firefighters:  run.Firefighters,
			Fires:         run.Fires,
			Decisions:     run.Decisions,
			TotalDistance: run.TotalDistance,
			StartedAt:     run.StartedAt,
			FinishedAt:    run.FinishedAt,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func validateDispatchRequest(req dto.DispatchRequest) error {
	if req.Width < 1 || req.Width > maxGridSide || req.Height < 1 || req.Height > maxGridSide {
		return fmt.Errorf("width and height must be between 1 and %d", maxGridSide)
	}
	if req.Firefighters < 1 || req.Firefighters > maxFirefighters {
		return fmt.Errorf("firefighters must be between 1 and %d", maxFirefighters)
	}
	if len(req.Fires) < 1 || len(req.Fires) > maxFires {
		return fmt.Errorf("fires must contain between 1 and %d locations", maxFires)
	}

	inGrid := func(c domain.Coordinate) bool {
		return c.X >= 0 && c.X < req.Width && c.Y >= 0 && c.Y < req.Height
	}
	if !inGrid(req.Station) {
		return fmt.Errorf("station %s is outside the grid", req.Station)
	}
	for _, f := range req.Fires {
		if !inGrid(f) {
			return fmt.Errorf("fire %s is outside the grid", f)
		}
		if f == req.Station {
			return fmt.Errorf("fire %s is on the fire station", f)
		}
	}
	return nil
}
