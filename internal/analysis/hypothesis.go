package analysis

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/gonum/stat"

	"github.com/wardwatch/rent-cli/internal/model"
)

// The two fixed comparison groups.
const (
	HighArea = "新宿区"
	LowArea  = "世田谷区"
)

// AcceptThresholdPct is the premium the high-rent ward must show over the
// low-rent ward for the hypothesis to be accepted. Acceptance is a pure
// magnitude criterion; statistical significance is reported alongside but
// never gates it.
const AcceptThresholdPct = 30.0

const significanceLevel = 0.05

// Engine runs the rent-premium hypothesis test over a full record set.
type Engine struct {
	high string
	low  string
}

// NewEngine creates an engine comparing the two fixed wards.
func NewEngine() *Engine {
	return &Engine{high: HighArea, low: LowArea}
}

// Verify partitions the records into the two comparison groups and tests
// whether the high group's mean total clears the premium threshold over
// the low group's. Groups with fewer than two records make the standard
// deviation and the t-test undefined, so that fails loudly.
func (e *Engine) Verify(records []model.ListingRecord) (*model.HypothesisResult, error) {
	high := totalsFor(records, e.high)
	low := totalsFor(records, e.low)

	if len(high) < 2 {
		return nil, eris.Errorf("hypothesis: group %q has %d records, need at least 2", e.high, len(high))
	}
	if len(low) < 2 {
		return nil, eris.Errorf("hypothesis: group %q has %d records, need at least 2", e.low, len(low))
	}

	welch, err := WelchTTest(high, low)
	if err != nil {
		return nil, err
	}

	highStats := sampleStats(e.high, high)
	lowStats := sampleStats(e.low, low)

	diff := highStats.Mean - lowStats.Mean
	relPct := diff / lowStats.Mean * 100

	return &model.HypothesisResult{
		High:            highStats,
		Low:             lowStats,
		Diff:            diff,
		RelativeDiffPct: relPct,
		TStat:           welch.TStat,
		PValue:          welch.PValue,
		Significant:     welch.PValue < significanceLevel,
		Accepted:        relPct >= AcceptThresholdPct,
		AnnualDiff:      diff * 12,
		FiveYearDiff:    diff * 60,
	}, nil
}

func totalsFor(records []model.ListingRecord, area string) []float64 {
	var totals []float64
	for _, r := range records {
		if r.AreaName == area {
			totals = append(totals, float64(r.Total))
		}
	}
	return totals
}

func sampleStats(area string, totals []float64) model.SampleStats {
	return model.SampleStats{
		Area:   area,
		Count:  len(totals),
		Mean:   stat.Mean(totals, nil),
		StdDev: stat.StdDev(totals, nil),
	}
}
