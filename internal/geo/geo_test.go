// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package geo

import (
	"math"
	"testing"
)

func TestHaversineKm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		a, b      Coordinates
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         Coordinates{Lat: 37.5665, Lon: 126.9780},
			b:         Coordinates{Lat: 37.5665, Lon: 126.9780},
			wantKm:    0,
			tolerance: 0.001,
		},
		{
			name:      "seoul to busan",
			a:         Coordinates{Lat: 37.5665, Lon: 126.9780},
			b:         Coordinates{Lat: 35.1796, Lon: 129.0756},
			wantKm:    325,
			tolerance: 10,
		},
		{
			name:      "seoul to tokyo",
			a:         Coordinates{Lat: 37.5665, Lon: 126.9780},
			b:         Coordinates{Lat: 35.6762, Lon: 139.6503},
			wantKm:    1155,
			tolerance: 20,
		},
		{
			name:      "antipodal points",
			a:         Coordinates{Lat: 0, Lon: 0},
			b:         Coordinates{Lat: 0, Lon: 180},
			wantKm:    20015,
			tolerance: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := HaversineKm(tt.a, tt.b)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("HaversineKm() = %.2f, want %.2f +/- %.2f", got, tt.wantKm, tt.tolerance)
			}
			// Distance is symmetric.
			if rev := HaversineKm(tt.b, tt.a); math.Abs(rev-got) > 0.001 {
				t.Errorf("HaversineKm() not symmetric: %.4f vs %.4f", got, rev)
			}
		})
	}
}

func TestCoordinates_IsUnknown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		coords Coordinates
		want   bool
	}{
		{"zero value", Coordinates{}, true},
		{"float noise", Coordinates{Lat: 1e-12, Lon: -1e-12}, true},
		{"real position", Coordinates{Lat: 37.5665, Lon: 126.9780}, false},
		{"on equator", Coordinates{Lat: 0, Lon: 126.9780}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.coords.IsUnknown(); got != tt.want {
				t.Errorf("IsUnknown() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLocation_Matches(t *testing.T) {
	t.Parallel()

	loc := Location{Country: "South Korea", City: "Seoul"}

	tests := []struct {
		name          string
		country, city string
		want          bool
	}{
		{"exact match", "South Korea", "Seoul", true},
		{"case insensitive", "south korea", "SEOUL", true},
		{"empty city matches country", "South Korea", "", true},
		{"wrong city", "South Korea", "Busan", false},
		{"wrong country", "Japan", "Seoul", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := loc.Matches(tt.country, tt.city); got != tt.want {
				t.Errorf("Matches(%q, %q) = %v, want %v", tt.country, tt.city, got, tt.want)
			}
		})
	}
}

func TestRoundTo2Decimals(t *testing.T) {
	t.Parallel()

	if got := RoundTo2Decimals(27.3456); got != 27.35 {
		t.Errorf("RoundTo2Decimals(27.3456) = %v, want 27.35", got)
	}
	if got := RoundTo2Decimals(-1.005); got != -1.0 && got != -1.01 {
		t.Errorf("RoundTo2Decimals(-1.005) = %v", got)
	}
}
