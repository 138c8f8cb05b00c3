package validate

import (
	"strings"
	"sync"

	"github.com/biter777/countries"

	"github.com/wdm0006/frameguard/pkg/frame"
)

// regionDenyList holds region names that resolve to no single country.
// "aisa" is kept because it shows up in upstream data.
var regionDenyList = map[string]struct{}{
	"asia":              {},
	"aisa":              {},
	"africa":            {},
	"europe":            {},
	"north america":     {},
	"south america":     {},
	"australia/oceania": {},
	"oceania":           {},
	"antarctica":        {},
}

var iso2Codes = sync.OnceValue(func() map[string]struct{} {
	all := countries.All()
	codes := make(map[string]struct{}, len(all))
	for _, c := range all {
		// user-assigned codes (International and friends) sit above 900
		if c == countries.Unknown || int(c) >= 900 {
			continue
		}
		if a2 := strings.ToLower(c.Alpha2()); len(a2) == 2 {
			codes[a2] = struct{}{}
		}
	}
	return codes
})

// ValidCountry reports whether s is an ISO-3166 alpha-2 code, or a longer
// string the country lookup resolves.
func ValidCountry(s string) bool {
	clean := strings.ToLower(s)
	if _, denied := regionDenyList[clean]; denied || strings.Contains(clean, "world") {
		return false
	}
	if len(clean) == 2 {
		_, ok := iso2Codes()[clean]
		return ok
	}
	return countries.ByName(clean) != countries.Unknown
}

func validateISO2(t frame.Table, r Rule, acc Accumulator) (Accumulator, error) {
	rule, ok := r.(ISO2)
	if !ok {
		return acc, invalidRule(KindISO2, "unexpected payload %T", r)
	}
	for _, col := range targetColumns(t, rule.Columns, KindISO2) {
		verdicts := make(map[string]bool)
		acc = checkCells(t, acc, col, KindISO2, KindISO2.String(), func(v any, present bool) bool {
			s, ok := v.(string)
			if !present || !ok {
				return true
			}
			valid, seen := verdicts[s]
			if !seen {
				valid = ValidCountry(s)
				verdicts[s] = valid
			}
			return valid
		})
	}
	return acc, nil
}
