// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package geo provides the geographic primitives used by global matching and
// travel recommendations: coordinates, locations, and great-circle distance.
package geo

import (
	"math"
	"strings"
)

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// unknownCoordEpsilon guards against treating (0,0) float noise as a real
// position. Direct float equality is unreliable for IEEE 754 values.
const unknownCoordEpsilon = 1e-9

// IsUnknown reports whether c carries no real position. The (0,0) point in
// the Gulf of Guinea is used as the "no data" sentinel by the upstream
// geocoding sources.
func (c Coordinates) IsUnknown() bool {
	return math.Abs(c.Lat) < unknownCoordEpsilon && math.Abs(c.Lon) < unknownCoordEpsilon
}

// Location is a user- or restaurant-level place record.
type Location struct {
	Country     string       `json:"country"`
	City        string       `json:"city"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

// Matches reports whether the location is in the given country/city pair.
// Comparison is case-insensitive; an empty city matches any city in the
// country.
func (l Location) Matches(country, city string) bool {
	if !strings.EqualFold(l.Country, country) {
		return false
	}
	return city == "" || strings.EqualFold(l.City, city)
}

// Destination is a travel target for local-expert lookup.
type Destination struct {
	Country string `json:"country"`
	City    string `json:"city,omitempty"`
}

// HaversineKm calculates the great-circle distance between two points on
// Earth using the Haversine formula. Returns distance in kilometers.
func HaversineKm(a, b Coordinates) float64 {
	const earthRadiusKm = 6371.0

	lat1Rad := a.Lat * math.Pi / 180.0
	lon1Rad := a.Lon * math.Pi / 180.0
	lat2Rad := b.Lat * math.Pi / 180.0
	lon2Rad := b.Lon * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// RoundTo2Decimals rounds a float64 to 2 decimal places, used for distances
// reported in results and logs.
func RoundTo2Decimals(f float64) float64 {
	return math.Round(f*100) / 100
}
