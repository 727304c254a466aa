package model

import "time"

// MinRent is the floor below which a parsed rent is treated as scrape noise
// and the room is skipped.
const MinRent = 10000

// ListingRecord is one rentable unit scraped from a listings page. Records
// are immutable once persisted; corrections require a re-scrape after
// clearing the table.
type ListingRecord struct {
	ID        int64     `json:"id,omitempty"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Rent      int64     `json:"rent"`
	AdminFee  int64     `json:"admin_fee"`
	Total     int64     `json:"total"`
	Layout    string    `json:"layout"`
	AreaSize  string    `json:"area_size"`
	AreaName  string    `json:"area_name"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// Area identifies one collection target. Code is the prefecture-level code
// supplied by callers; ward selection is by Name against the supported ward
// table, so Code is carried for forward compatibility only.
type Area struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// GroupStats holds aggregate figures for one group of listings. Computed on
// demand from stored records, never cached.
type GroupStats struct {
	Group string  `json:"group"`
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// SampleStats holds the per-group figures used by the hypothesis test.
type SampleStats struct {
	Area   string  `json:"area"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"` // sample standard deviation
}

// HypothesisResult is the outcome of the two-ward rent comparison.
//
// Accepted depends only on the magnitude criterion (RelativeDiffPct against
// the premium threshold); Significant reports the Welch test separately. The
// two are independent: a result can be accepted yet not significant.
type HypothesisResult struct {
	High SampleStats `json:"high"`
	Low  SampleStats `json:"low"`

	Diff            float64 `json:"diff"`              // mean(high) - mean(low), yen/month
	RelativeDiffPct float64 `json:"relative_diff_pct"` // Diff / mean(low) * 100

	TStat       float64 `json:"t_stat"`
	PValue      float64 `json:"p_value"`
	Significant bool    `json:"significant"` // PValue < 0.05

	Accepted bool `json:"accepted"`

	AnnualDiff   float64 `json:"annual_diff"`    // Diff * 12
	FiveYearDiff float64 `json:"five_year_diff"` // Diff * 60
}

// ScrapeRun records one collection invocation for diagnostics.
type ScrapeRun struct {
	ID         string     `json:"id"`
	Areas      []string   `json:"areas"`
	Pages      int        `json:"pages"`
	Records    int        `json:"records"`
	Skips      int        `json:"skips"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}
