package report

import (
	"github.com/rotisserie/eris"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/wardwatch/rent-cli/internal/model"
)

// areaChart renders a bar chart of mean total rent per ward.
func (s *Sink) areaChart(areaStats []model.GroupStats, path string) error {
	p := plot.New()
	p.Title.Text = "Average Rent by Area"
	p.Y.Label.Text = "Average Rent (JPY)"

	values := make(plotter.Values, len(areaStats))
	labels := make([]string, len(areaStats))
	for i, g := range areaStats {
		values[i] = g.Mean
		labels[i] = WardLabel(g.Group)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(60))
	if err != nil {
		return eris.Wrap(err, "report: area bar chart")
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = plotutil.Color(0)

	p.Add(bars)
	p.NominalX(labels...)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return eris.Wrap(err, "report: save area chart")
	}
	return nil
}

// layoutChart renders a grouped horizontal bar chart of mean total rent by
// layout and ward, restricted to the layouts the support floor admits.
func (s *Sink) layoutChart(records []model.ListingRecord, layoutStats []model.GroupStats, path string) error {
	layouts := make([]string, len(layoutStats))
	for i, g := range layoutStats {
		// layoutStats comes ordered by mean descending; flip so the
		// cheapest layout sits at the bottom of the horizontal chart.
		layouts[len(layoutStats)-1-i] = g.Group
	}

	wards := []string{"新宿区", "世田谷区"}
	means := layoutWardMeans(records, layouts, wards)

	p := plot.New()
	p.Title.Text = "Average Rent by Layout and Area"
	p.X.Label.Text = "Average Rent (JPY)"

	width := vg.Points(10)
	for wi, ward := range wards {
		values := make(plotter.Values, len(layouts))
		for li := range layouts {
			values[li] = means[wi][li]
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return eris.Wrap(err, "report: layout bar chart")
		}
		bars.Horizontal = true
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(wi)
		bars.Offset = width * vg.Length(wi) // stack the ward bars side by side
		p.Add(bars)
		p.Legend.Add(WardLabel(ward), bars)
	}

	p.NominalY(layouts...)
	p.Legend.Top = true

	if err := p.Save(7*vg.Inch, 6*vg.Inch, path); err != nil {
		return eris.Wrap(err, "report: save layout chart")
	}
	return nil
}

// layoutWardMeans computes mean total per (ward, layout) over the records,
// zero where a ward has no listings of a layout.
func layoutWardMeans(records []model.ListingRecord, layouts, wards []string) [][]float64 {
	type key struct{ ward, layout string }
	sums := make(map[key]float64)
	counts := make(map[key]int)
	for _, r := range records {
		k := key{r.AreaName, r.Layout}
		sums[k] += float64(r.Total)
		counts[k]++
	}

	means := make([][]float64, len(wards))
	for wi, ward := range wards {
		means[wi] = make([]float64, len(layouts))
		for li, layout := range layouts {
			k := key{ward, layout}
			if n := counts[k]; n > 0 {
				means[wi][li] = sums[k] / float64(n)
			}
		}
	}
	return means
}
