// Package scrape collects rental listings from SUUMO search result pages
// for a fixed set of Tokyo wards.
package scrape

// wardCodes maps supported ward names to SUUMO district codes. Collection
// for any other ward yields an empty result.
var wardCodes = map[string]string{
	"新宿区":  "13104",
	"世田谷区": "13112",
}

// SupportedWards returns the names of the wards the collector can scrape.
func SupportedWards() []string {
	names := make([]string, 0, len(wardCodes))
	for name := range wardCodes {
		names = append(names, name)
	}
	return names
}

// WardSupported reports whether the given ward name has a district code.
func WardSupported(name string) bool {
	_, ok := wardCodes[name]
	return ok
}
