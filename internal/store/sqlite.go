package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/wardwatch/rent-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS properties (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	address    TEXT,
	rent       INTEGER NOT NULL,
	admin_fee  INTEGER NOT NULL DEFAULT 0,
	total      INTEGER NOT NULL,
	layout     TEXT,
	area_size  TEXT,
	area_name  TEXT NOT NULL,
	scraped_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS scrape_runs (
	id          TEXT PRIMARY KEY,
	areas       TEXT NOT NULL,
	pages       INTEGER NOT NULL,
	records     INTEGER NOT NULL DEFAULT 0,
	skips       INTEGER NOT NULL DEFAULT 0,
	started_at  DATETIME NOT NULL,
	finished_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_properties_area_name ON properties(area_name);
CREATE INDEX IF NOT EXISTS idx_properties_layout ON properties(layout);
CREATE INDEX IF NOT EXISTS idx_scrape_runs_started_at ON scrape_runs(started_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveAll appends all records in one transaction, stamping each row with
// the batch time. Duplicate calls duplicate rows; ClearAll first for a
// fresh run.
func (s *SQLiteStore) SaveAll(ctx context.Context, records []model.ListingRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin save")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO properties (name, address, rent, admin_fee, total, layout, area_size, area_name, scraped_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	batchTime := time.Now().UTC()
	for _, r := range records {
		if _, err := stmt.ExecContext(ctx,
			r.Name, r.Address, r.Rent, r.AdminFee, r.Rent+r.AdminFee,
			r.Layout, r.AreaSize, r.AreaName, batchTime,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert listing %q", r.Name)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit save")
	}
	return len(records), nil
}

func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM properties`)
	return eris.Wrap(err, "sqlite: clear all")
}

const listingColumns = `id, name, address, rent, admin_fee, total, layout, area_size, area_name, scraped_at`

func (s *SQLiteStore) GetAll(ctx context.Context) ([]model.ListingRecord, error) {
	return s.GetByConditions(ctx, Filter{})
}

func (s *SQLiteStore) GetByArea(ctx context.Context, areaName string) ([]model.ListingRecord, error) {
	return s.GetByConditions(ctx, Filter{Area: &areaName})
}

func (s *SQLiteStore) GetByConditions(ctx context.Context, f Filter) ([]model.ListingRecord, error) {
	where, args := f.where(questionPlaceholder)
	query := `SELECT ` + listingColumns + ` FROM properties` + where + ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query listings")
	}
	defer rows.Close()

	var records []model.ListingRecord
	for rows.Next() {
		var r model.ListingRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Address, &r.Rent, &r.AdminFee, &r.Total,
			&r.Layout, &r.AreaSize, &r.AreaName, &r.ScrapedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan listing")
		}
		records = append(records, r)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: iterate listings")
}

func (s *SQLiteStore) GetCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count")
}

func (s *SQLiteStore) GetAreaStats(ctx context.Context) ([]model.GroupStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT area_name, COUNT(*), AVG(total), MIN(total), MAX(total)
		 FROM properties GROUP BY area_name ORDER BY AVG(total) DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: area stats")
	}
	defer rows.Close()
	return scanGroupStats(rows, "sqlite")
}

func (s *SQLiteStore) GetLayoutStats(ctx context.Context) ([]model.GroupStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT layout, COUNT(*), AVG(total), MIN(total), MAX(total)
		 FROM properties WHERE layout != ''
		 GROUP BY layout HAVING COUNT(*) >= ?
		 ORDER BY AVG(total) DESC`,
		layoutSupportFloor,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: layout stats")
	}
	defer rows.Close()
	return scanGroupStats(rows, "sqlite")
}

func (s *SQLiteStore) StartRun(ctx context.Context, areas []string, pages int) (*model.ScrapeRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	areasJSON, err := json.Marshal(areas)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal areas")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scrape_runs (id, areas, pages, started_at) VALUES (?, ?, ?, ?)`,
		id, string(areasJSON), pages, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.ScrapeRun{ID: id, Areas: areas, Pages: pages, StartedAt: now}, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, records, skips int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE scrape_runs SET records = ?, skips = ?, finished_at = ? WHERE id = ?`,
		records, skips, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.ScrapeRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, areas, pages, records, skips, started_at, finished_at
		 FROM scrape_runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.ScrapeRun
	for rows.Next() {
		var run model.ScrapeRun
		var areasJSON string
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &areasJSON, &run.Pages, &run.Records, &run.Skips,
			&run.StartedAt, &finished); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if err := json.Unmarshal([]byte(areasJSON), &run.Areas); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal areas")
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type statRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanGroupStats(rows statRows, backend string) ([]model.GroupStats, error) {
	var stats []model.GroupStats
	for rows.Next() {
		var g model.GroupStats
		if err := rows.Scan(&g.Group, &g.Count, &g.Mean, &g.Min, &g.Max); err != nil {
			return nil, eris.Wrapf(err, "%s: scan group stats", backend)
		}
		stats = append(stats, g)
	}
	return stats, eris.Wrapf(rows.Err(), "%s: iterate group stats", backend)
}
