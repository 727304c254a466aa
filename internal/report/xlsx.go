package report

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/wardwatch/rent-cli/internal/model"
)

// workbook writes the listings plus both aggregate tables into one xlsx
// file, one sheet each.
func (s *Sink) workbook(records []model.ListingRecord, areaStats, layoutStats []model.GroupStats, path string) error {
	f := xlsx.NewFile()

	listings, err := f.AddSheet("Listings")
	if err != nil {
		return eris.Wrap(err, "report: add listings sheet")
	}
	header := listings.AddRow()
	for _, h := range []string{"name", "address", "rent", "admin_fee", "total", "layout", "area_size", "area_name", "scraped_at"} {
		header.AddCell().Value = h
	}
	for _, r := range records {
		row := listings.AddRow()
		row.AddCell().Value = r.Name
		row.AddCell().Value = r.Address
		row.AddCell().SetInt64(r.Rent)
		row.AddCell().SetInt64(r.AdminFee)
		row.AddCell().SetInt64(r.Total)
		row.AddCell().Value = r.Layout
		row.AddCell().Value = r.AreaSize
		row.AddCell().Value = r.AreaName
		row.AddCell().Value = r.ScrapedAt.Format("2006-01-02 15:04:05")
	}

	if err := addStatsSheet(f, "Area Stats", "area", areaStats); err != nil {
		return err
	}
	if err := addStatsSheet(f, "Layout Stats", "layout", layoutStats); err != nil {
		return err
	}

	return eris.Wrap(f.Save(path), "report: save workbook")
}

func addStatsSheet(f *xlsx.File, name, groupLabel string, stats []model.GroupStats) error {
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "report: add %s sheet", name)
	}
	header := sheet.AddRow()
	for _, h := range []string{groupLabel, "count", "mean_total", "min_total", "max_total"} {
		header.AddCell().Value = h
	}
	for _, g := range stats {
		row := sheet.AddRow()
		row.AddCell().Value = g.Group
		row.AddCell().SetInt(g.Count)
		row.AddCell().SetFloat(g.Mean)
		row.AddCell().SetFloat(g.Min)
		row.AddCell().SetFloat(g.Max)
	}
	return nil
}
