package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fire-dispatch-service/internal/domain"
	"fire-dispatch-service/internal/platform/obs"
	"fmt"
	"time"
)

// Fixed-width UTC layout so that text ordering matches time ordering.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite-backed implementation of the DispatchRepository port.
type SqliteDispatchRepository struct{ DB *sql.DB }

func NewSqliteDispatchRepository(db *sql.DB) *SqliteDispatchRepository {
	return &SqliteDispatchRepository{DB: db}
}

func (s *SqliteDispatchRepository) SaveRun(ctx context.Context, run *domain.DispatchRun) (err error) {
	defer obs.Time(ctx, "runs.sqlite.SaveRun")(&err)

	if s.DB == nil {
		return errors.New("sqlite dispatch repository: DB is nil")
	}
	if run == nil || run.ID == "" {
		return errors.New("save run: run id must not be empty")
	}

	fires, decisions, err := encodeRunBody(run)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}

	query := `
	INSERT OR REPLACE INTO dispatch_runs (
		id,
		strategy,
		firefighters,
		fires,
		decisions,
		total_distance,
		started_at,
		finished_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err = s.DB.ExecContext(ctx, query,
		run.ID,
		run.Strategy,
		run.Firefighters,
		fires,
		decisions,
		run.TotalDistance,
		run.StartedAt.UTC().Format(sqliteTimeLayout),
		run.FinishedAt.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("save run %s: insert: %w", run.ID, err)
	}

	return nil
}

// Return the most recent runs, newest first.
func (s *SqliteDispatchRepository) ListRuns(ctx context.Context, limit int) (_ []*domain.DispatchRun, err error) {
	defer obs.Time(ctx, "runs.sqlite.ListRuns")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite dispatch repository: DB is nil")
	}
	if limit <= 0 {
		return []*domain.DispatchRun{}, nil
	}

	query := `
	SELECT
		id,
		strategy,
		firefighters,
		fires,
		decisions,
		total_distance,
		started_at,
		finished_at
	FROM dispatch_runs
	ORDER BY finished_at DESC, id
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: query dispatch_runs table: %w", err)
	}
	defer rows.Close()

	runs := make([]*domain.DispatchRun, 0, limit)
	for rows.Next() {
		var (
			run                 domain.DispatchRun
			fires, decisions    string
			startedAt, finished string
		)
		if err := rows.Scan(
			&run.ID,
			&run.Strategy,
			&run.Firefighters,
			&fires,
			&decisions,
			&run.TotalDistance,
			&startedAt,
			&finished,
		); err != nil {
			return nil, fmt.Errorf("list runs: scan row: %w", err)
		}

		if err := decodeRunBody(&run, []byte(fires), []byte(decisions)); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		if run.StartedAt, err = time.Parse(sqliteTimeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("list runs: parse started_at for %s: %w", run.ID, err)
		}
		if run.FinishedAt, err = time.Parse(sqliteTimeLayout, finished); err != nil {
			return nil, fmt.Errorf("list runs: parse finished_at for %s: %w", run.ID, err)
		}

		runs = append(runs, &run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: row iteration: %w", err)
	}

	return runs, nil
}
