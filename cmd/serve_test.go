package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardwatch/rent-cli/internal/model"
	"github.com/wardwatch/rent-cli/internal/store"
)

// fakeStore serves canned records for router tests.
type fakeStore struct {
	records    []model.ListingRecord
	lastFilter store.Filter
}

func (f *fakeStore) SaveAll(context.Context, []model.ListingRecord) (int, error) { return 0, nil }
func (f *fakeStore) ClearAll(context.Context) error                              { return nil }
func (f *fakeStore) GetAll(context.Context) ([]model.ListingRecord, error)       { return f.records, nil }
func (f *fakeStore) GetByArea(_ context.Context, area string) ([]model.ListingRecord, error) {
	return f.GetByConditions(context.Background(), store.Filter{Area: &area})
}
func (f *fakeStore) GetByConditions(_ context.Context, flt store.Filter) ([]model.ListingRecord, error) {
	f.lastFilter = flt
	return f.records, nil
}
func (f *fakeStore) GetCount(context.Context) (int, error) { return len(f.records), nil }
func (f *fakeStore) GetAreaStats(context.Context) ([]model.GroupStats, error) {
	return []model.GroupStats{{Group: "新宿区", Count: len(f.records)}}, nil
}
func (f *fakeStore) GetLayoutStats(context.Context) ([]model.GroupStats, error) { return nil, nil }
func (f *fakeStore) StartRun(context.Context, []string, int) (*model.ScrapeRun, error) {
	return &model.ScrapeRun{ID: "run-1"}, nil
}
func (f *fakeStore) FinishRun(context.Context, string, int, int) error { return nil }
func (f *fakeStore) ListRuns(context.Context, int) ([]model.ScrapeRun, error) {
	return []model.ScrapeRun{{ID: "run-1"}}, nil
}
func (f *fakeStore) Migrate(context.Context) error { return nil }
func (f *fakeStore) Close() error                  { return nil }

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newRouter(&fakeStore{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_ListingsFilter(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{records: []model.ListingRecord{{Name: "A", Total: 90000, AreaName: "新宿区"}}}
	srv := httptest.NewServer(newRouter(fs))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/listings?area=%E6%96%B0%E5%AE%BF%E5%8C%BA&max_rent=100000")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count    int                   `json:"count"`
		Listings []model.ListingRecord `json:"listings"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)

	require.NotNil(t, fs.lastFilter.Area)
	assert.Equal(t, "新宿区", *fs.lastFilter.Area)
	require.NotNil(t, fs.lastFilter.MaxTotal)
	assert.Equal(t, int64(100000), *fs.lastFilter.MaxTotal)
	assert.Nil(t, fs.lastFilter.MinTotal)
	assert.Nil(t, fs.lastFilter.Layout)
}

func TestRouter_ListingsBadBound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newRouter(&fakeStore{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/listings?min_rent=abc")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_HypothesisTooFewRecords(t *testing.T) {
	t.Parallel()

	// One record per group: the precondition fails and surfaces as 422.
	fs := &fakeStore{records: []model.ListingRecord{
		{Total: 150000, AreaName: "新宿区"},
		{Total: 100000, AreaName: "世田谷区"},
	}}
	srv := httptest.NewServer(newRouter(fs))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/hypothesis")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestRouter_Hypothesis(t *testing.T) {
	t.Parallel()

	fs := &fakeStore{records: []model.ListingRecord{
		{Total: 140000, AreaName: "新宿区"},
		{Total: 160000, AreaName: "新宿区"},
		{Total: 90000, AreaName: "世田谷区"},
		{Total: 110000, AreaName: "世田谷区"},
	}}
	srv := httptest.NewServer(newRouter(fs))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/hypothesis")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res model.HypothesisResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.InDelta(t, 50.0, res.RelativeDiffPct, 1e-9)
	assert.True(t, res.Accepted)
}
