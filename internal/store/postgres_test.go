package store

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardwatch/rent-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return &PostgresStore{pool: mock}, mock
}

func TestPostgres_SaveAll(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO properties`).
		WithArgs("テストマンション", "東京都新宿区", int64(80000), int64(5000), int64(85000),
			"1K", "25m²", "新宿区", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	n, err := s.SaveAll(context.Background(), []model.ListingRecord{{
		Name:     "テストマンション",
		Address:  "東京都新宿区",
		Rent:     80000,
		AdminFee: 5000,
		Total:    85000,
		Layout:   "1K",
		AreaSize: "25m²",
		AreaName: "新宿区",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_SaveAll_Empty(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	n, err := s.SaveAll(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetCount(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM properties`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(7))

	n, err := s.GetCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetByConditions_BuildsPlaceholders(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT .* FROM properties WHERE area_name = \$1 AND total <= \$2 ORDER BY id`).
		WithArgs("新宿区", int64(100000)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "name", "address", "rent", "admin_fee", "total",
			"layout", "area_size", "area_name", "scraped_at",
		}).AddRow(int64(1), "マンション", "住所", int64(80000), int64(5000), int64(85000),
			"1K", "25m²", "新宿区", now))

	area := "新宿区"
	maxTotal := int64(100000)
	got, err := s.GetByConditions(context.Background(), Filter{Area: &area, MaxTotal: &maxTotal})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(85000), got[0].Total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetLayoutStats_FloorParam(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT layout, COUNT\(\*\), AVG\(total\), MIN\(total\), MAX\(total\)`).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"layout", "count", "avg", "min", "max"}).
			AddRow("1K", 6, 85000.0, 70000.0, 110000.0))

	stats, err := s.GetLayoutStats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "1K", stats[0].Group)
	assert.Equal(t, 6, stats[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_FinishRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE scrape_runs SET`).
		WithArgs(10, 2, pgxmock.AnyArg(), "missing-id").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.FinishRun(context.Background(), "missing-id", 10, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ClearAll(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`DELETE FROM properties`).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	require.NoError(t, s.ClearAll(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
