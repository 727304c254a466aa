package scrape

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	tenThousandRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)万`)
	numberRe      = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
)

// ParseMoney extracts a yen amount from money-like listing text.
//
// Text containing the 万 multiplier takes the leading decimal number times
// 10000 ("8.5万円" -> 85000). Otherwise thousands separators and the 円
// suffix are stripped and the first decimal number wins ("5,000円" -> 5000).
// ok is false when no number is present.
func ParseMoney(text string) (amount int64, ok bool) {
	if strings.Contains(text, "万") {
		m := tenThousandRe.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return int64(math.Round(v * 10000)), true
	}

	cleaned := strings.NewReplacer(",", "", "円", "").Replace(text)
	m := numberRe.FindString(cleaned)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return int64(math.Round(v)), true
}
