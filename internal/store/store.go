// Package store persists scraped listings and answers the aggregate
// queries the analysis layer runs over them.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/wardwatch/rent-cli/internal/model"
)

// Filter selects listings by optional conjunctive conditions. A nil field
// contributes no clause at all; the zero Filter matches everything. Rent
// bounds are inclusive and apply to the total (rent + admin fee).
type Filter struct {
	Area     *string `json:"area,omitempty"`
	MinTotal *int64  `json:"min_total,omitempty"`
	MaxTotal *int64  `json:"max_total,omitempty"`
	Layout   *string `json:"layout,omitempty"`
}

// clauses renders the present conditions as SQL fragments plus their args.
// placeholder formats the 1-based positional parameter for the backend.
func (f Filter) clauses(placeholder func(n int) string) ([]string, []any) {
	var parts []string
	var args []any

	add := func(column, op string, v any) {
		args = append(args, v)
		parts = append(parts, fmt.Sprintf("%s %s %s", column, op, placeholder(len(args))))
	}

	if f.Area != nil {
		add("area_name", "=", *f.Area)
	}
	if f.MinTotal != nil {
		add("total", ">=", *f.MinTotal)
	}
	if f.MaxTotal != nil {
		add("total", "<=", *f.MaxTotal)
	}
	if f.Layout != nil {
		add("layout", "=", *f.Layout)
	}
	return parts, args
}

// where composes the clauses into a WHERE fragment, or returns an empty
// string when no condition is present.
func (f Filter) where(placeholder func(n int) string) (string, []any) {
	parts, args := f.clauses(placeholder)
	if len(parts) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

// Store is the persistence interface for the collection pipeline.
//
// SaveAll is append-only and not idempotent; a fresh run clears first.
// Persisted rows are never updated.
type Store interface {
	// Listings
	SaveAll(ctx context.Context, records []model.ListingRecord) (int, error)
	ClearAll(ctx context.Context) error
	GetAll(ctx context.Context) ([]model.ListingRecord, error)
	GetByArea(ctx context.Context, areaName string) ([]model.ListingRecord, error)
	GetByConditions(ctx context.Context, f Filter) ([]model.ListingRecord, error)
	GetCount(ctx context.Context) (int, error)

	// Aggregates
	GetAreaStats(ctx context.Context) ([]model.GroupStats, error)
	GetLayoutStats(ctx context.Context) ([]model.GroupStats, error)

	// Scrape run bookkeeping
	StartRun(ctx context.Context, areas []string, pages int) (*model.ScrapeRun, error)
	FinishRun(ctx context.Context, runID string, records, skips int) error
	ListRuns(ctx context.Context, limit int) ([]model.ScrapeRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// layoutSupportFloor is the minimum group size before a layout statistic is
// reported. Smaller groups are statistically meaningless noise.
const layoutSupportFloor = 5

func questionPlaceholder(int) string { return "?" }

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }
