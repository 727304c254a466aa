package scrape

import (
	"context"

	"go.uber.org/zap"

	"github.com/wardwatch/rent-cli/internal/model"
)

// AreaResult summarizes one area's collection for diagnostics.
type AreaResult struct {
	Area        string `json:"area"`
	Records     int    `json:"records"`
	Skips       int    `json:"skips"`
	FailedPages int    `json:"failed_pages"`
}

// Summary aggregates per-area results across a collection run.
type Summary struct {
	Areas       []AreaResult `json:"areas"`
	Records     int          `json:"records"`
	Skips       int          `json:"skips"`
	FailedPages int          `json:"failed_pages"`
}

// Collector drives the page fetcher across areas and pages, sequentially.
type Collector struct {
	fetcher *PageFetcher
}

// NewCollector creates a collector over the given fetcher.
func NewCollector(fetcher *PageFetcher) *Collector {
	return &Collector{fetcher: fetcher}
}

// CollectArea fetches the given number of pages for one area and extracts
// every listing. An unsupported ward name yields an empty result with a
// diagnostic log, not an error. A failed page or malformed fragment is
// logged, counted and skipped; nothing aborts the batch.
func (c *Collector) CollectArea(ctx context.Context, area model.Area, pages int) ([]model.ListingRecord, AreaResult) {
	result := AreaResult{Area: area.Name}

	code, ok := wardCodes[area.Name]
	if !ok {
		zap.L().Warn("unsupported ward, skipping",
			zap.String("ward", area.Name),
			zap.Strings("supported", SupportedWards()),
		)
		return nil, result
	}

	var records []model.ListingRecord
	for page := 1; page <= pages; page++ {
		zap.L().Info("fetching page",
			zap.String("ward", area.Name),
			zap.Int("page", page),
			zap.Int("pages", pages),
		)

		body, err := c.fetcher.FetchPage(ctx, code, page)
		if err != nil {
			result.FailedPages++
			zap.L().Warn("page fetch failed, skipping",
				zap.String("ward", area.Name),
				zap.Int("page", page),
				zap.Error(err),
			)
			continue
		}

		extract, err := ExtractPage(body, area.Name)
		if err != nil {
			result.FailedPages++
			zap.L().Warn("page unparseable, skipping",
				zap.String("ward", area.Name),
				zap.Int("page", page),
				zap.Error(err),
			)
			continue
		}

		records = append(records, extract.Records...)
		result.Skips += len(extract.Skips)
		for _, reason := range extract.Skips {
			zap.L().Debug("fragment skipped",
				zap.String("ward", area.Name),
				zap.Int("page", page),
				zap.String("reason", reason),
			)
		}
		zap.L().Info("page extracted",
			zap.String("ward", area.Name),
			zap.Int("page", page),
			zap.Int("records", len(extract.Records)),
			zap.Int("skips", len(extract.Skips)),
			zap.Int("running_total", len(records)),
		)
	}

	result.Records = len(records)
	return records, result
}

// CollectAll runs CollectArea once per area in the given order and
// concatenates the results. An area yielding zero records is reported in
// the summary but does not stop the remaining areas.
func (c *Collector) CollectAll(ctx context.Context, areas []model.Area, pages int) ([]model.ListingRecord, Summary) {
	var all []model.ListingRecord
	var summary Summary

	zap.L().Info("collection starting",
		zap.Int("areas", len(areas)),
		zap.Int("pages_per_area", pages),
	)

	for _, area := range areas {
		records, res := c.CollectArea(ctx, area, pages)
		all = append(all, records...)
		summary.Areas = append(summary.Areas, res)
		summary.Records += res.Records
		summary.Skips += res.Skips
		summary.FailedPages += res.FailedPages

		if res.Records == 0 {
			zap.L().Warn("area yielded no records", zap.String("ward", area.Name))
		} else {
			zap.L().Info("area collected",
				zap.String("ward", area.Name),
				zap.Int("records", res.Records),
			)
		}
	}

	zap.L().Info("collection finished",
		zap.Int("records", summary.Records),
		zap.Int("skips", summary.Skips),
		zap.Int("failed_pages", summary.FailedPages),
	)
	return all, summary
}
