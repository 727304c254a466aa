package scrape

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultSearchURL is the SUUMO rental search endpoint.
const DefaultSearchURL = "https://suumo.jp/jj/chintai/ichiran/FR301FC001/"

// DefaultInterval is the minimum delay honored before every page request.
// This is part of the contract with the source site, not a tuning knob.
const DefaultInterval = 3 * time.Second

// FailureKind classifies a page fetch failure.
type FailureKind string

const (
	FailNetwork FailureKind = "network"
	FailStatus  FailureKind = "status"
	FailTimeout FailureKind = "timeout"
)

// FetchError is a typed page fetch failure. Callers log it and move on to
// the next page; there is no retry layer.
type FetchError struct {
	Kind   FailureKind
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Kind == FailStatus {
		return fmt.Sprintf("fetch %s: http %d", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Pacer blocks until the next request is allowed to go out.
type Pacer interface {
	Wait(ctx context.Context) error
}

type intervalPacer struct {
	lim *rate.Limiter
}

// NewIntervalPacer returns a Pacer that honors the given minimum interval
// before every request, including the first.
func NewIntervalPacer(interval time.Duration) Pacer {
	lim := rate.NewLimiter(rate.Every(interval), 1)
	lim.Allow() // spend the initial burst token so the first Wait also blocks
	return &intervalPacer{lim: lim}
}

func (p *intervalPacer) Wait(ctx context.Context) error {
	return p.lim.Wait(ctx)
}

// FetchOptions configures the page fetcher.
type FetchOptions struct {
	SearchURL string
	UserAgent string
	Timeout   time.Duration
}

// PageFetcher retrieves one search results page at a time, pacing every
// request through the injected Pacer.
type PageFetcher struct {
	client *http.Client
	pacer  Pacer
	opts   FetchOptions
}

// NewPageFetcher creates a fetcher using the given pacing policy.
func NewPageFetcher(pacer Pacer, opts FetchOptions) *PageFetcher {
	if opts.SearchURL == "" {
		opts.SearchURL = DefaultSearchURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}
	return &PageFetcher{
		client: &http.Client{Timeout: opts.Timeout},
		pacer:  pacer,
		opts:   opts,
	}
}

// PageURL builds the search URL for one ward page.
func (f *PageFetcher) PageURL(wardCode string, page int) string {
	return fmt.Sprintf("%s?ar=030&bs=040&ta=13&sc=%s&page=%d", f.opts.SearchURL, wardCode, page)
}

// FetchPage retrieves one results page. Every call waits on the pacer
// first, regardless of the previous outcome. Failures come back as
// *FetchError and are never retried here.
func (f *PageFetcher) FetchPage(ctx context.Context, wardCode string, page int) ([]byte, error) {
	if err := f.pacer.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "fetch: pacer wait")
	}

	pageURL := f.PageURL(wardCode, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: build request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: classifyErr(err), URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: FailStatus, URL: pageURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: classifyErr(err), URL: pageURL, Err: err}
	}
	return body, nil
}

func classifyErr(err error) FailureKind {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Timeout() {
		return FailTimeout
	}
	var terr interface{ Timeout() bool }
	if errors.As(err, &terr) && terr.Timeout() {
		return FailTimeout
	}
	return FailNetwork
}
