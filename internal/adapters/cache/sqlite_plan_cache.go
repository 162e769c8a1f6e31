package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fire-dispatch-service/internal/domain"
	"fire-dispatch-service/internal/platform/obs"
	"fmt"
	"strings"
	"time"
)

// SQLite backed plan cache. Used when no Redis is configured so plans
// survive restarts of a single instance.
type SqlitePlanCache struct {
	DB  *sql.DB
	TTL time.Duration
	now func() time.Time
}

func NewSqlitePlanCache(db *sql.DB, ttl time.Duration) *SqlitePlanCache {
	return &SqlitePlanCache{DB: db, TTL: ttl, now: time.Now}
}

// Fetch the cached decisions for key. Expired entries count as misses.
func (s *SqlitePlanCache) Get(ctx context.Context, key string) (_ []domain.Decision, _ bool, err error) {
	defer obs.Time(ctx, "plan.cache.sqlite.Get")(&err)

	if s.DB == nil {
		return nil, false, errors.New("plan cache: db is nil")
	}

	var raw string
	var createdAt int64
	err = s.DB.QueryRowContext(ctx, `
	SELECT
		decisions,
		created_at
	FROM plan_cache
	WHERE cache_key = ?;
	`, key).Scan(&raw, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get plan cache: query plan_cache table: %w", err)
	}

	if s.TTL > 0 && s.clock().Sub(time.Unix(0, createdAt)) > s.TTL {
		return nil, false, nil
	}

	var decisions []domain.Decision
	if err := json.Unmarshal([]byte(raw), &decisions); err != nil {
		return nil, false, fmt.Errorf("get plan cache: decode %q: %w", key, err)
	}

	return decisions, true, nil
}

// Store the decisions for key, replacing any previous entry.
func (s *SqlitePlanCache) Put(ctx context.Context, key string, decisions []domain.Decision) error {
	if s.DB == nil {
		return errors.New("plan cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert plan cache: empty key")
	}

	raw, err := json.Marshal(decisions)
	if err != nil {
		return fmt.Errorf("insert plan cache: encode %q: %w", key, err)
	}

	if _, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO plan_cache (
		cache_key,
		decisions,
		created_at
	)
	VALUES (?, ?, ?);
	`, key, string(raw), s.clock().UnixNano()); err != nil {
		return fmt.Errorf("insert plan cache %q: %w", key, err)
	}

	return nil
}

func (s *SqlitePlanCache) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
