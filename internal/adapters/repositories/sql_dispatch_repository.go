package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fire-dispatch-service/internal/domain"
	"fire-dispatch-service/internal/platform/obs"
	"fmt"
)

// SQLDispatchRepository is the Postgres (pgx) implementation of the
// DispatchRepository port.
type SQLDispatchRepository struct {
	DB *sql.DB
}

func NewSQLDispatchRepository(db *sql.DB) *SQLDispatchRepository {
	return &SQLDispatchRepository{DB: db}
}

func (s *SQLDispatchRepository) SaveRun(ctx context.Context, run *domain.DispatchRun) (err error) {
	defer obs.Time(ctx, "runs.postgres.SaveRun")(&err)

	if s.DB == nil {
		return errors.New("dispatch repository: db is nil")
	}
	if run == nil || run.ID == "" {
		return errors.New("save run: run id must not be empty")
	}

	fires, decisions, err := encodeRunBody(run)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT INTO dispatch_runs (id, strategy, firefighters, fires, decisions, total_distance, started_at, finished_at)
	VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE
	SET strategy = EXCLUDED.strategy,
		firefighters = EXCLUDED.firefighters,
		fires = EXCLUDED.fires,
		decisions = EXCLUDED.decisions,
		total_distance = EXCLUDED.total_distance,
		started_at = EXCLUDED.started_at,
		finished_at = EXCLUDED.finished_at;
	`,
		run.ID, run.Strategy, run.Firefighters, fires, decisions, run.TotalDistance,
		run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save run %s: insert: %w", run.ID, err)
	}

	return nil
}

func (s *SQLDispatchRepository) ListRuns(ctx context.Context, limit int) (_ []*domain.DispatchRun, err error) {
	defer obs.Time(ctx, "runs.postgres.ListRuns")(&err)

	if s.DB == nil {
		return nil, errors.New("dispatch repository: db is nil")
	}
	if limit <= 0 {
		return []*domain.DispatchRun{}, nil
	}

	q := `
	SELECT id, strategy, firefighters, fires::text, decisions::text, total_distance, started_at, finished_at
	FROM dispatch_runs
	ORDER BY finished_at DESC, id
	LIMIT $1;
	`

	rows, err := s.DB.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: query dispatch_runs table: %w", err)
	}
	defer rows.Close()

	runs := make([]*domain.DispatchRun, 0, limit)
	for rows.Next() {
		var run domain.DispatchRun
		var fires, decisions string
		if err := rows.Scan(
			&run.ID, &run.Strategy, &run.Firefighters, &fires, &decisions,
			&run.TotalDistance, &run.StartedAt, &run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("list runs: scan rows: %w", err)
		}
		if err := decodeRunBody(&run, []byte(fires), []byte(decisions)); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: row iteration: %w", err)
	}

	return runs, nil
}
