// Package mains detects the local electrical mains frequency so the
// mastering chain can place its optional hum notch at 50 or 60 Hz.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// Frequency returns the local mains frequency in Hz (50 or 60), resolved
// from the system timezone. Falls back to 50 Hz when detection fails.
func Frequency() int {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return 50
	}
	return FrequencyForTimezone(timezone)
}

// FrequencyForTimezone returns the mains frequency for an IANA timezone.
func FrequencyForTimezone(timezone string) int {
	// UTC/GMT carry no country association.
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return 50
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return 50
	}
	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return 50
	}

	// Japan is split 50/60 by region; the Tokyo grid is 50 Hz.
	if country == "Japan" {
		return 50
	}
	if hz60[country] {
		return 60
	}
	// 50 Hz is the more common grid worldwide.
	return 50
}

// hz60 lists countries on 60 Hz grids. Everything absent is treated as
// 50 Hz. Source: https://en.wikipedia.org/wiki/Mains_electricity_by_country
var hz60 = map[string]bool{
	"United States": true,
	"Canada":        true,
	"Mexico":        true,

	"Belize":      true,
	"Costa Rica":  true,
	"El Salvador": true,
	"Guatemala":   true,
	"Honduras":    true,
	"Nicaragua":   true,
	"Panama":      true,

	"Bahamas":             true,
	"Cuba":                true,
	"Dominican Republic":  true,
	"Haiti":               true,
	"Jamaica":             true,
	"Puerto Rico":         true,
	"Trinidad and Tobago": true,

	"Brazil":    true, // both grids exist; 60 Hz predominant
	"Colombia":  true,
	"Ecuador":   true,
	"Guyana":    true,
	"Peru":      true,
	"Suriname":  true,
	"Venezuela": true,

	"South Korea":  true,
	"Taiwan":       true,
	"Philippines":  true,
	"Saudi Arabia": true,

	"Guam":           true,
	"American Samoa": true,
}
