package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingPacer records how often the fetcher waited.
type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(context.Context) error {
	p.waits++
	return nil
}

func TestFetchPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		assert.Equal(t, "13104", r.URL.Query().Get("sc"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		w.Write([]byte("<html>page</html>")) //nolint:errcheck
	}))
	defer srv.Close()

	pacer := &countingPacer{}
	f := NewPageFetcher(pacer, FetchOptions{SearchURL: srv.URL, UserAgent: "test-agent"})

	body, err := f.FetchPage(context.Background(), "13104", 2)
	require.NoError(t, err)
	assert.Equal(t, "<html>page</html>", string(body))
	assert.Equal(t, 1, pacer.waits)
}

func TestFetchPage_PacesEveryRequest(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	pacer := &countingPacer{}
	f := NewPageFetcher(pacer, FetchOptions{SearchURL: srv.URL})

	// The pacer is consulted before every attempt, failures included.
	for page := 1; page <= 3; page++ {
		_, err := f.FetchPage(context.Background(), "13104", page)
		require.Error(t, err)
	}
	assert.Equal(t, 3, pacer.waits)
}

func TestFetchPage_NonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewPageFetcher(&countingPacer{}, FetchOptions{SearchURL: srv.URL})
	_, err := f.FetchPage(context.Background(), "13104", 1)
	require.Error(t, err)

	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, FailStatus, ferr.Kind)
	assert.Equal(t, http.StatusNotFound, ferr.Status)
}

func TestFetchPage_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	f := NewPageFetcher(&countingPacer{}, FetchOptions{SearchURL: srv.URL})
	_, err := f.FetchPage(context.Background(), "13104", 1)
	require.Error(t, err)

	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, FailNetwork, ferr.Kind)
}

func TestFetchPage_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewPageFetcher(&countingPacer{}, FetchOptions{SearchURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, err := f.FetchPage(context.Background(), "13104", 1)
	require.Error(t, err)

	var ferr *FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, FailTimeout, ferr.Kind)
}

func TestIntervalPacer_DelaysFirstRequest(t *testing.T) {
	t.Parallel()

	p := NewIntervalPacer(50 * time.Millisecond)
	start := time.Now()
	require.NoError(t, p.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestPageURL(t *testing.T) {
	t.Parallel()

	f := NewPageFetcher(&countingPacer{}, FetchOptions{})
	assert.Equal(t,
		"https://suumo.jp/jj/chintai/ichiran/FR301FC001/?ar=030&bs=040&ta=13&sc=13112&page=3",
		f.PageURL("13112", 3),
	)
}
