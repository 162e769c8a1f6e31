package repositories

import (
	"context"
	"database/sql"
	"fire-dispatch-service/internal/domain"
	"fire-dispatch-service/internal/platform/db"
	"reflect"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenSqlite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return conn
}

func TestSqliteDispatchRepositorySaveAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewSqliteDispatchRepository(openTestDB(t))

	base := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	older := &domain.DispatchRun{
		ID:            "run-1",
		Strategy:      "optimal",
		Firefighters:  1,
		Fires:         []domain.Coordinate{{X: 1, Y: 1}, {X: 0, Y: 1}},
		Decisions:     []domain.Decision{{From: domain.Coordinate{X: 0, Y: 0}, To: domain.Coordinate{X: 0, Y: 1}}, {From: domain.Coordinate{X: 0, Y: 1}, To: domain.Coordinate{X: 1, Y: 1}}},
		TotalDistance: 2,
		StartedAt:     base,
		FinishedAt:    base.Add(1500 * time.Microsecond),
	}
	newer := &domain.DispatchRun{
		ID:            "run-2",
		Strategy:      "greedy",
		Firefighters:  2,
		Fires:         []domain.Coordinate{{X: 2, Y: 2}},
		Decisions:     []domain.Decision{{From: domain.Coordinate{X: 0, Y: 0}, To: domain.Coordinate{X: 2, Y: 2}}},
		TotalDistance: 4,
		StartedAt:     base.Add(time.Second),
		FinishedAt:    base.Add(time.Second + 10*time.Microsecond),
	}

	for _, run := range []*domain.DispatchRun{older, newer} {
		if err := repo.SaveRun(ctx, run); err != nil {
			t.Fatalf("save %s: %v", run.ID, err)
		}
	}

	runs, err := repo.ListRuns(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-2" || runs[1].ID != "run-1" {
		t.Fatalf("order = %s, %s; want newest first", runs[0].ID, runs[1].ID)
	}
	if !reflect.DeepEqual(runs[1].Decisions, older.Decisions) || !reflect.DeepEqual(runs[1].Fires, older.Fires) {
		t.Fatalf("run-1 body mismatch: %+v", runs[1])
	}
	if !runs[1].FinishedAt.Equal(older.FinishedAt) {
		t.Fatalf("finished_at = %v, want %v", runs[1].FinishedAt, older.FinishedAt)
	}

	limited, err := repo.ListRuns(ctx, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "run-2" {
		t.Fatalf("limit 1 returned %v", limited)
	}
}

func TestSqliteDispatchRepositoryRejectsMissingID(t *testing.T) {
	repo := NewSqliteDispatchRepository(openTestDB(t))
	if err := repo.SaveRun(context.Background(), &domain.DispatchRun{}); err == nil {
		t.Fatalf("expected error for empty id")
	}

	var nilRepo SqliteDispatchRepository
	if _, err := nilRepo.ListRuns(context.Background(), 5); err == nil {
		t.Fatalf("expected error for nil DB")
	}
}
