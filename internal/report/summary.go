// Package report renders the analysis into narrative text, chart PNGs and
// an xlsx workbook. It only consumes the tidy record table and the
// hypothesis result; it never queries the store itself.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/wardwatch/rent-cli/internal/analysis"
	"github.com/wardwatch/rent-cli/internal/model"
)

// wardEN maps ward names to the labels used in report artifacts.
var wardEN = map[string]string{
	"新宿区":  "Shinjuku",
	"世田谷区": "Setagaya",
}

// WardLabel returns the report label for a ward name.
func WardLabel(name string) string {
	if en, ok := wardEN[name]; ok {
		return en
	}
	return name
}

// Artifacts lists the files a Render call produced.
type Artifacts struct {
	ReportPath      string
	AreaChartPath   string
	LayoutChartPath string
	WorkbookPath    string
}

// Sink writes all report artifacts into one output directory.
type Sink struct {
	outDir  string
	printer *message.Printer
}

// NewSink creates a sink writing into outDir.
func NewSink(outDir string) *Sink {
	return &Sink{
		outDir:  outDir,
		printer: message.NewPrinter(language.Japanese),
	}
}

// yen formats an amount with grouped digits and a yen sign.
func (s *Sink) yen(v float64) string {
	return s.printer.Sprintf("¥%d", int64(v))
}

// Render writes the narrative report, both charts and the workbook.
func (s *Sink) Render(records []model.ListingRecord, areaStats, layoutStats []model.GroupStats, res *model.HypothesisResult) (Artifacts, error) {
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return Artifacts{}, eris.Wrap(err, "report: create output dir")
	}

	art := Artifacts{
		ReportPath:      filepath.Join(s.outDir, "report.txt"),
		AreaChartPath:   filepath.Join(s.outDir, "area_comparison.png"),
		LayoutChartPath: filepath.Join(s.outDir, "layout_comparison.png"),
		WorkbookPath:    filepath.Join(s.outDir, "listings.xlsx"),
	}

	if err := os.WriteFile(art.ReportPath, []byte(s.Summary(records, areaStats, res)), 0o644); err != nil {
		return art, eris.Wrap(err, "report: write summary")
	}
	if err := s.areaChart(areaStats, art.AreaChartPath); err != nil {
		return art, err
	}
	if err := s.layoutChart(records, layoutStats, art.LayoutChartPath); err != nil {
		return art, err
	}
	if err := s.workbook(records, areaStats, layoutStats, art.WorkbookPath); err != nil {
		return art, err
	}
	return art, nil
}

// PDisplay buckets a p-value the way the narrative reports it.
func PDisplay(p float64) string {
	if p < 0.001 {
		return "p < 0.001"
	}
	return fmt.Sprintf("p = %.3f", p)
}

// Summary renders the narrative text report.
func (s *Sink) Summary(records []model.ListingRecord, areaStats []model.GroupStats, res *model.HypothesisResult) string {
	var b strings.Builder
	rule := strings.Repeat("=", 70)

	date := "N/A"
	if len(records) > 0 {
		date = records[0].ScrapedAt.Format("2006-01-02")
	}

	fmt.Fprintf(&b, "%s\nTokyo 2 Wards: Rental Listing Analysis Report\n%s\n\n", rule, rule)

	fmt.Fprintf(&b, "[1. Data Overview]\n")
	fmt.Fprintf(&b, "   Total listings: %d\n", len(records))
	fmt.Fprintf(&b, "   Target areas:   %s, %s\n", WardLabel(res.High.Area), WardLabel(res.Low.Area))
	fmt.Fprintf(&b, "   Scraped:        %s\n", date)
	fmt.Fprintf(&b, "   Source:         SUUMO\n\n")

	fmt.Fprintf(&b, "[2. Area Statistics]\n")
	for _, g := range areaStats {
		fmt.Fprintf(&b, "   %-10s: avg %s (%d units)\n", WardLabel(g.Group), s.yen(g.Mean), g.Count)
	}
	b.WriteString("\n")

	verdict := "REJECTED"
	if res.Accepted {
		verdict = "ACCEPTED"
	}
	significance := "No (p >= 0.05)"
	if res.Significant {
		significance = "Yes (p < 0.05)"
	}

	fmt.Fprintf(&b, "[3. Hypothesis Test]\n")
	fmt.Fprintf(&b, "   Hypothesis: %q rent is %.0f%%+ higher than %q\n",
		WardLabel(res.High.Area), analysis.AcceptThresholdPct, WardLabel(res.Low.Area))
	fmt.Fprintf(&b, "   Result: %s\n\n", verdict)
	fmt.Fprintf(&b, "   %-10s avg: %s (SD %s, n=%d)\n", WardLabel(res.High.Area), s.yen(res.High.Mean), s.yen(res.High.StdDev), res.High.Count)
	fmt.Fprintf(&b, "   %-10s avg: %s (SD %s, n=%d)\n", WardLabel(res.Low.Area), s.yen(res.Low.Mean), s.yen(res.Low.StdDev), res.Low.Count)
	fmt.Fprintf(&b, "   Difference:     %s (%.1f%%)\n", s.yen(res.Diff), res.RelativeDiffPct)
	fmt.Fprintf(&b, "   Welch's t-test: t = %.3f, %s\n", res.TStat, PDisplay(res.PValue))
	fmt.Fprintf(&b, "   Significant:    %s\n\n", significance)

	fmt.Fprintf(&b, "[4. Projected Savings]\n")
	fmt.Fprintf(&b, "   Monthly: %s\n", s.yen(res.Diff))
	fmt.Fprintf(&b, "   Annual:  %s\n", s.yen(res.AnnualDiff))
	fmt.Fprintf(&b, "   5-year:  %s\n\n", s.yen(res.FiveYearDiff))
	fmt.Fprintf(&b, "   Choosing %s over %s saves %s over five years.\n",
		WardLabel(res.Low.Area), WardLabel(res.High.Area), s.yen(res.FiveYearDiff))

	fmt.Fprintf(&b, "%s\n", rule)
	return b.String()
}
