package cache

import (
	"context"
	"fire-dispatch-service/internal/adapters/repositories"
	"fire-dispatch-service/internal/platform/db"
	"reflect"
	"testing"
	"time"
)

func TestSqlitePlanCacheRoundTrip(t *testing.T) {
	conn, err := db.OpenSqlite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := NewSqlitePlanCache(conn, time.Hour)
	c.now = func() time.Time { return now }

	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "plan:a"); err != nil || ok {
		t.Fatalf("miss: ok=%v err=%v", ok, err)
	}

	if err := c.Put(ctx, "plan:a", sampleDecisions); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.Get(ctx, "plan:a")
	if err != nil || !ok {
		t.Fatalf("hit: ok=%v err=%v", ok, err)
	}
	if !reflect.DeepEqual(got, sampleDecisions) {
		t.Fatalf("decisions = %v, want %v", got, sampleDecisions)
	}

	now = now.Add(2 * time.Hour)
	if _, ok, err := c.Get(ctx, "plan:a"); err != nil || ok {
		t.Fatalf("expired: ok=%v err=%v", ok, err)
	}

	if err := c.Put(ctx, " ", sampleDecisions); err == nil {
		t.Fatalf("expected error for blank key")
	}
}
