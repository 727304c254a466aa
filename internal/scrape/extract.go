package scrape

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/wardwatch/rent-cli/internal/model"
)

// RoomResult is the outcome of extracting one room sub-fragment: either a
// record or a skip with its reason. Skips are expected (missing price,
// parse noise) and are counted, never escalated.
type RoomResult struct {
	Record *model.ListingRecord
	Skip   string
}

// Skipped reports whether the room produced no record.
func (r RoomResult) Skipped() bool { return r.Record == nil }

func skip(reason string) RoomResult { return RoomResult{Skip: reason} }

// PageExtract holds everything pulled from one results page.
type PageExtract struct {
	Records []model.ListingRecord
	Skips   []string // one reason per skipped cassette or room
}

// ExtractPage parses one search results page and extracts every room of
// every listing cassette. Malformed fragments are skipped individually;
// only an unreadable document is an error.
func ExtractPage(html []byte, areaName string) (PageExtract, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return PageExtract{}, eris.Wrap(err, "extract: parse document")
	}

	var out PageExtract
	doc.Find("div.cassetteitem").Each(func(_ int, cassette *goquery.Selection) {
		name := strings.TrimSpace(cassette.Find("div.cassetteitem_content-title").First().Text())
		if name == "" {
			out.Skips = append(out.Skips, "cassette missing title")
			return
		}
		address := strings.TrimSpace(cassette.Find("li.cassetteitem_detail-col1").First().Text())

		cassette.Find("tbody").Each(func(_ int, room *goquery.Selection) {
			res := ExtractRoom(name, address, areaName, room)
			if res.Skipped() {
				out.Skips = append(out.Skips, res.Skip)
				return
			}
			out.Records = append(out.Records, *res.Record)
		})
	})
	return out, nil
}

// ExtractRoom turns one room sub-fragment into a record or a skip. Rent is
// required and must clear the noise floor; the admin fee defaults to zero
// when absent or marked "-". Total is always recomputed.
func ExtractRoom(name, address, areaName string, room *goquery.Selection) RoomResult {
	priceSel := room.Find("span.cassetteitem_price--rent").First()
	if priceSel.Length() == 0 {
		return skip("room missing rent")
	}
	rent, ok := ParseMoney(strings.TrimSpace(priceSel.Text()))
	if !ok {
		return skip("room rent unparseable")
	}
	if rent < model.MinRent {
		return skip("room rent below noise floor")
	}

	var adminFee int64
	if adminText := strings.TrimSpace(room.Find("span.cassetteitem_price--administration").First().Text()); adminText != "" && adminText != "-" {
		if fee, ok := ParseMoney(adminText); ok {
			adminFee = fee
		}
	}

	return RoomResult{Record: &model.ListingRecord{
		Name:     name,
		Address:  address,
		Rent:     rent,
		AdminFee: adminFee,
		Total:    rent + adminFee,
		Layout:   strings.TrimSpace(room.Find("span.cassetteitem_madori").First().Text()),
		AreaSize: strings.TrimSpace(room.Find("span.cassetteitem_menseki").First().Text()),
		AreaName: areaName,
	}}
}
