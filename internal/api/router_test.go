package api

import (
	"encoding/json"
	"fire-dispatch-service/internal/adapters/cache"
	"fire-dispatch-service/internal/adapters/repositories"
	"fire-dispatch-service/internal/api/dto"
	"fire-dispatch-service/internal/platform/db"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const staircaseBody = `{
	"width": 4, "height": 4,
	"station": {"x": 3, "y": 0},
	"firefighters": 4,
	"fires": [{"x": 2, "y": 2}, {"x": 1, "y": 1}, {"x": 0, "y": 0}, {"x": 3, "y": 3}]
}`

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	conn, err := db.OpenSqlite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := repositories.InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	return NewRouter(
		repositories.NewSqliteDispatchRepository(conn),
		cache.NewSqlitePlanCache(conn, time.Hour),
		0,
		0,
	)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}

	var health dto.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if health.Status != "ok" || health.Service != "fire-dispatch" {
		t.Fatalf("health = %+v", health)
	}

	rec = do(t, h, http.MethodPost, "/health", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health status = %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "GET" {
		t.Fatalf("Allow = %q", got)
	}
}

func TestErrorBodyCarriesRequestID(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/dispatches", strings.NewReader("{"))
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}

	var res dto.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.RequestID != "req-42" || res.Error != "invalid json body" {
		t.Fatalf("error body = %+v", res)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Fatalf("X-Request-ID = %q", got)
	}
}

func TestCreateDispatch(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/dispatches", staircaseBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	var res dto.DispatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if res.DispatchID == "" {
		t.Errorf("missing dispatch_id")
	}
	if res.Strategy != "optimal" {
		t.Errorf("strategy = %q", res.Strategy)
	}
	if res.TotalDistance != 9 {
		t.Errorf("total_distance = %d, want 9", res.TotalDistance)
	}
	if len(res.Decisions) != 4 {
		t.Errorf("decisions = %d, want 4", len(res.Decisions))
	}
	if len(res.Firefighters) != 4 {
		t.Fatalf("firefighters = %d, want 4", len(res.Firefighters))
	}

	traveled := 0
	for _, ff := range res.Firefighters {
		traveled += ff.DistanceTraveled
	}
	if traveled != 9 {
		t.Errorf("distance traveled = %d, want 9", traveled)
	}

	// Same input again is served from the plan cache.
	rec = do(t, h, http.MethodPost, "/dispatches", staircaseBody)
	if rec.Code != http.StatusCreated {
		t.Fatalf("second status = %d", rec.Code)
	}
	var again dto.DispatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &again); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !again.Cached || again.TotalDistance != 9 {
		t.Errorf("second dispatch: cached=%v total=%d", again.Cached, again.TotalDistance)
	}
	if again.DispatchID == res.DispatchID {
		t.Errorf("dispatch ids should differ")
	}
}

func TestCreateDispatchGreedy(t *testing.T) {
	h := newTestRouter(t)

	body := strings.Replace(staircaseBody, `"firefighters": 4,`, `"firefighters": 4, "strategy": "greedy",`, 1)
	rec := do(t, h, http.MethodPost, "/dispatches", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	var res dto.DispatchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Strategy != "greedy" || res.TotalDistance != 10 {
		t.Fatalf("strategy=%q total=%d, want greedy 10", res.Strategy, res.TotalDistance)
	}
}

func TestCreateDispatchValidation(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"unknown field", `{"width":2,"height":2,"station":{"x":0,"y":0},"firefighters":1,"fires":[{"x":1,"y":1}],"hub":"x"}`},
		{"trailing object", `{"width":2,"height":2,"station":{"x":0,"y":0},"firefighters":1,"fires":[{"x":1,"y":1}]}{}`},
		{"zero width", `{"width":0,"height":2,"station":{"x":0,"y":0},"firefighters":1,"fires":[{"x":1,"y":1}]}`},
		{"huge grid", `{"width":101,"height":2,"station":{"x":0,"y":0},"firefighters":1,"fires":[{"x":1,"y":1}]}`},
		{"no firefighters", `{"width":2,"height":2,"station":{"x":0,"y":0},"firefighters":0,"fires":[{"x":1,"y":1}]}`},
		{"no fires", `{"width":2,"height":2,"station":{"x":0,"y":0},"firefighters":1,"fires":[]}`},
		{"fire outside grid", `{"width":2,"height":2,"station":{"x":0,"y":0},"firefighters":1,"fires":[{"x":2,"y":0}]}`},
		{"station outside grid", `{"width":2,"height":2,"station":{"x":5,"y":0},"firefighters":1,"fires":[{"x":1,"y":1}]}`},
		{"fire on station", `{"width":2,"height":2,"station":{"x":0,"y":0},"firefighters":1,"fires":[{"x":0,"y":0}]}`},
		{"unknown strategy", `{"width":2,"height":2,"station":{"x":0,"y":0},"firefighters":1,"fires":[{"x":1,"y":1}],"strategy":"random"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/dispatches", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestListDispatches(t *testing.T) {
	h := newTestRouter(t)

	for i := 0; i < 3; i++ {
		if rec := do(t, h, http.MethodPost, "/dispatches", staircaseBody); rec.Code != http.StatusCreated {
			t.Fatalf("create #%d status = %d", i, rec.Code)
		}
	}

	rec := do(t, h, http.MethodGet, "/dispatches?limit=2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var res dto.ListDispatchesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Dispatches) != 2 {
		t.Fatalf("dispatches = %d, want 2", len(res.Dispatches))
	}
	for _, d := range res.Dispatches {
		if d.TotalDistance != 9 || len(d.Fires) != 4 || d.Firefighters != 4 {
			t.Errorf("unexpected run: %+v", d)
		}
	}

	for _, bad := range []string{"0", "101", "x"} {
		if rec := do(t, h, http.MethodGet, "/dispatches?limit="+bad, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d", bad, rec.Code)
		}
	}

	rec = do(t, h, http.MethodDelete, "/dispatches", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("DELETE status = %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "GET, POST" {
		t.Errorf("Allow = %q", got)
	}
}

func TestListDispatchesWithoutHistory(t *testing.T) {
	h := NewRouter(nil, nil, 0, 0)

	if rec := do(t, h, http.MethodGet, "/dispatches", ""); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/dispatches", staircaseBody); rec.Code != http.StatusCreated {
		t.Fatalf("create without adapters status = %d", rec.Code)
	}
}

// twelveFiresBody spreads fires across a large grid; the unbounded optimal
// search on it runs for minutes.
func twelveFiresBody(strategy string) string {
	fires := make([]string, 0, 12)
	for i := 0; i < 12; i++ {
		fires = append(fires, fmt.Sprintf(`{"x": %d, "y": %d}`, (i*37+11)%100, (i*53+29)%100))
	}
	return fmt.Sprintf(`{
	"width": 100, "height": 100,
	"station": {"x": 50, "y": 50},
	"firefighters": 5,
	"strategy": %q,
	"fires": [%s]
}`, strategy, strings.Join(fires, ", "))
}

func TestCreateDispatchStopsAtSearchBudget(t *testing.T) {
	h := NewRouter(nil, nil, 1000, time.Minute)

	start := time.Now()
	rec := do(t, h, http.MethodPost, "/dispatches", twelveFiresBody("optimal"))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("budgeted search took %v", elapsed)
	}

	// Greedy is not subject to the budget.
	rec = do(t, h, http.MethodPost, "/dispatches", twelveFiresBody("greedy"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("greedy status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCreateDispatchStopsAtSearchTimeout(t *testing.T) {
	h := NewRouter(nil, nil, 0, 50*time.Millisecond)

	start := time.Now()
	rec := do(t, h, http.MethodPost, "/dispatches", twelveFiresBody("optimal"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Fatalf("search ran for %v after its deadline", elapsed)
	}
}
