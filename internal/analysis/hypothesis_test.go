package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wardwatch/rent-cli/internal/model"
)

func recordsWithTotals(area string, totals ...int64) []model.ListingRecord {
	records := make([]model.ListingRecord, len(totals))
	for i, total := range totals {
		records[i] = model.ListingRecord{
			Name:     "物件",
			Rent:     total,
			Total:    total,
			AreaName: area,
		}
	}
	return records
}

func TestVerify_AcceptedAtFiftyPercent(t *testing.T) {
	t.Parallel()

	records := append(
		recordsWithTotals("新宿区", 140000, 160000),
		recordsWithTotals("世田谷区", 90000, 110000)...,
	)

	res, err := NewEngine().Verify(records)
	require.NoError(t, err)

	assert.InDelta(t, 150000, res.High.Mean, 1e-9)
	assert.InDelta(t, 100000, res.Low.Mean, 1e-9)
	assert.InDelta(t, 50000, res.Diff, 1e-9)
	assert.InDelta(t, 50.0, res.RelativeDiffPct, 1e-9)
	assert.True(t, res.Accepted)

	assert.InDelta(t, 600000, res.AnnualDiff, 1e-9)
	assert.InDelta(t, 3000000, res.FiveYearDiff, 1e-9)
}

func TestVerify_RejectedBelowThreshold(t *testing.T) {
	t.Parallel()

	// 20% premium: below the 30% threshold regardless of significance.
	records := append(
		recordsWithTotals("新宿区", 110000, 130000),
		recordsWithTotals("世田谷区", 90000, 110000)...,
	)

	res, err := NewEngine().Verify(records)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, res.RelativeDiffPct, 1e-9)
	assert.False(t, res.Accepted)
}

func TestVerify_AcceptanceIndependentOfSignificance(t *testing.T) {
	t.Parallel()

	// Huge spread inside tiny groups: a 50% premium that is nowhere near
	// statistically significant must still be accepted.
	records := append(
		recordsWithTotals("新宿区", 50000, 250000),
		recordsWithTotals("世田谷区", 30000, 170000)...,
	)

	res, err := NewEngine().Verify(records)
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.False(t, res.Significant)
}

func TestVerify_GroupTooSmall(t *testing.T) {
	t.Parallel()

	records := append(
		recordsWithTotals("新宿区", 150000),
		recordsWithTotals("世田谷区", 90000, 110000)...,
	)

	_, err := NewEngine().Verify(records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "新宿区")
	assert.Contains(t, err.Error(), "at least 2")
}

func TestVerify_OtherAreasIgnored(t *testing.T) {
	t.Parallel()

	records := append(
		recordsWithTotals("新宿区", 140000, 160000),
		recordsWithTotals("世田谷区", 90000, 110000)...,
	)
	records = append(records, recordsWithTotals("渋谷区", 999999, 999999)...)

	res, err := NewEngine().Verify(records)
	require.NoError(t, err)
	assert.Equal(t, 2, res.High.Count)
	assert.Equal(t, 2, res.Low.Count)
}

func TestVerify_SampleStdDev(t *testing.T) {
	t.Parallel()

	records := append(
		recordsWithTotals("新宿区", 140000, 160000),
		recordsWithTotals("世田谷区", 100000, 100000, 100000, 120000)...,
	)

	res, err := NewEngine().Verify(records)
	require.NoError(t, err)
	// sample (n-1) standard deviation
	assert.InDelta(t, 14142.1356, res.High.StdDev, 1e-3)
	assert.InDelta(t, 10000, res.Low.StdDev, 1e-6)
}
