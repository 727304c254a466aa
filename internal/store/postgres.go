package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/wardwatch/rent-cli/internal/model"
)

// pgxPool is the subset of pgxpool.Pool the store uses; pgxmock satisfies
// it in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool pgxPool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS properties (
	id         BIGSERIAL PRIMARY KEY,
	name       TEXT NOT NULL,
	address    TEXT,
	rent       BIGINT NOT NULL,
	admin_fee  BIGINT NOT NULL DEFAULT 0,
	total      BIGINT NOT NULL,
	layout     TEXT,
	area_size  TEXT,
	area_name  TEXT NOT NULL,
	scraped_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS scrape_runs (
	id          TEXT PRIMARY KEY,
	areas       TEXT NOT NULL,
	pages       INTEGER NOT NULL,
	records     INTEGER NOT NULL DEFAULT 0,
	skips       INTEGER NOT NULL DEFAULT 0,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_properties_area_name ON properties(area_name);
CREATE INDEX IF NOT EXISTS idx_properties_layout ON properties(layout);
CREATE INDEX IF NOT EXISTS idx_scrape_runs_started_at ON scrape_runs(started_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveAll(ctx context.Context, records []model.ListingRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: begin save")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batchTime := time.Now().UTC()
	for _, r := range records {
		if _, err := tx.Exec(ctx,
			`INSERT INTO properties (name, address, rent, admin_fee, total, layout, area_size, area_name, scraped_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			r.Name, r.Address, r.Rent, r.AdminFee, r.Rent+r.AdminFee,
			r.Layout, r.AreaSize, r.AreaName, batchTime,
		); err != nil {
			return 0, eris.Wrapf(err, "postgres: insert listing %q", r.Name)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "postgres: commit save")
	}
	return len(records), nil
}

func (s *PostgresStore) ClearAll(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM properties`)
	return eris.Wrap(err, "postgres: clear all")
}

func (s *PostgresStore) GetAll(ctx context.Context) ([]model.ListingRecord, error) {
	return s.GetByConditions(ctx, Filter{})
}

func (s *PostgresStore) GetByArea(ctx context.Context, areaName string) ([]model.ListingRecord, error) {
	return s.GetByConditions(ctx, Filter{Area: &areaName})
}

func (s *PostgresStore) GetByConditions(ctx context.Context, f Filter) ([]model.ListingRecord, error) {
	where, args := f.where(dollarPlaceholder)
	query := `SELECT ` + listingColumns + ` FROM properties` + where + ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query listings")
	}
	defer rows.Close()

	var records []model.ListingRecord
	for rows.Next() {
		var r model.ListingRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.Rent, &r.AdminFee, &r.Total,
			&r.Layout, &r.AreaSize, &r.AreaName, &r.ScrapedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan listing")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "postgres: iterate listings")
}

func (s *PostgresStore) GetCount(ctx context.Context) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n)
	return n, eris.Wrap(err, "postgres: count")
}

func (s *PostgresStore) GetAreaStats(ctx context.Context) ([]model.GroupStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT area_name, COUNT(*), AVG(total), MIN(total), MAX(total)
		 FROM properties GROUP BY area_name ORDER BY AVG(total) DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: area stats")
	}
	defer rows.Close()
	return scanGroupStats(rows, "postgres")
}

func (s *PostgresStore) GetLayoutStats(ctx context.Context) ([]model.GroupStats, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT layout, COUNT(*), AVG(total), MIN(total), MAX(total)
		 FROM properties WHERE layout != ''
		 GROUP BY layout HAVING COUNT(*) >= $1
		 ORDER BY AVG(total) DESC`,
		layoutSupportFloor,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: layout stats")
	}
	defer rows.Close()
	return scanGroupStats(rows, "postgres")
}

func (s *PostgresStore) StartRun(ctx context.Context, areas []string, pages int) (*model.ScrapeRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	areasJSON, err := json.Marshal(areas)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal areas")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO scrape_runs (id, areas, pages, started_at) VALUES ($1, $2, $3, $4)`,
		id, string(areasJSON), pages, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.ScrapeRun{ID: id, Areas: areas, Pages: pages, StartedAt: now}, nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, runID string, records, skips int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE scrape_runs SET records = $1, skips = $2, finished_at = $3 WHERE id = $4`,
		records, skips, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.ScrapeRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, areas, pages, records, skips, started_at, finished_at
		 FROM scrape_runs ORDER BY started_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.ScrapeRun
	for rows.Next() {
		var run model.ScrapeRun
		var areasJSON string
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &areasJSON, &run.Pages, &run.Records, &run.Skips,
			&run.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal([]byte(areasJSON), &run.Areas); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal areas")
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
