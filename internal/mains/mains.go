// Package mains works out the local electrical mains frequency, so test
// signals can carry the hum a real recording made nearby would pick up.
package mains

import (
	"strings"

	tz "github.com/medama-io/go-timezone-country"
	"github.com/thlib/go-timezone-local/tzlocal"
)

// Fallback is used when the location is unknown; most of the world is on 50 Hz.
const Fallback = 50

// Supply describes the local mains as detected from the system timezone
type Supply struct {
	Timezone  string // IANA name, empty if detection failed
	Country   string // Country for Timezone, empty if unknown
	Frequency int    // 50 or 60 Hz
}

// Detect reads the system timezone and resolves it to a mains supply.
// It never fails: unknown locations report Fallback.
func Detect() Supply {
	timezone, err := tzlocal.RuntimeTZ()
	if err != nil {
		return Supply{Frequency: Fallback}
	}
	return ForTimezone(timezone)
}

// Frequency returns the local mains frequency in Hz (50 or 60).
func Frequency() int {
	return Detect().Frequency
}

// ForTimezone resolves an IANA timezone to a mains supply.
func ForTimezone(timezone string) Supply {
	s := Supply{Timezone: timezone, Frequency: Fallback}

	// UTC and friends have no country
	if timezone == "UTC" || timezone == "GMT" || strings.HasPrefix(timezone, "Etc/") {
		return s
	}

	tzMap, err := tz.NewTimezoneCountryMap()
	if err != nil {
		return s
	}

	country, err := tzMap.GetCountry(timezone)
	if err != nil {
		return s
	}

	s.Country = country
	s.Frequency = frequencyForCountry(country)
	return s
}

// FrequencyForTimezone returns the mains frequency for an IANA timezone.
func FrequencyForTimezone(timezone string) int {
	return ForTimezone(timezone).Frequency
}

// Harmonics returns the first n multiples of the fundamental, starting with
// the fundamental itself. Hum from transformers and rectifiers sits on these.
func Harmonics(fundamental float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	h := make([]float64, n)
	for i := range h {
		h[i] = fundamental * float64(i+1)
	}
	return h
}

// frequencyForCountry returns the mains frequency for a country name.
func frequencyForCountry(country string) int {
	if _, ok := sixtyHertz[country]; ok {
		return 60
	}
	return Fallback
}

// sixtyHertzByRegion lists the countries on 60 Hz mains; everywhere else is
// 50 Hz. Japan is split (50 Hz east, 60 Hz west) and counted with the more
// populous east. Brazil has both and is counted as 60 Hz.
// See https://en.wikipedia.org/wiki/Mains_electricity_by_country
var sixtyHertzByRegion = [][]string{
	{"United States", "Canada", "Mexico"},
	{"Belize", "Costa Rica", "El Salvador", "Guatemala", "Honduras", "Nicaragua", "Panama"},
	{"Bahamas", "Barbados", "Cayman Islands", "Cuba", "Dominican Republic", "Haiti",
		"Jamaica", "Puerto Rico", "Trinidad and Tobago", "U.S. Virgin Islands"},
	{"Brazil", "Colombia", "Ecuador", "Guyana", "Peru", "Suriname", "Venezuela"},
	{"South Korea", "Taiwan", "Philippines", "Saudi Arabia"},
	{"Guam", "American Samoa", "Marshall Islands", "Micronesia", "Palau"},
}

var sixtyHertz = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, region := range sixtyHertzByRegion {
		for _, country := range region {
			set[country] = struct{}{}
		}
	}
	return set
}()
