// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package cache

import (
	"testing"

	"github.com/chonamwoo/bobjido-sub005/internal/geo"
)

var (
	seoul   = geo.Coordinates{Lat: 37.5665, Lon: 126.9780}
	incheon = geo.Coordinates{Lat: 37.4563, Lon: 126.7052}
	busan   = geo.Coordinates{Lat: 35.1796, Lon: 129.0756}
	tokyo   = geo.Coordinates{Lat: 35.6762, Lon: 139.6503}
)

func TestSpatialHash_QueryNearby(t *testing.T) {
	t.Parallel()

	s := NewSpatialHash(50)
	s.Insert("user-seoul", seoul)
	s.Insert("user-incheon", incheon)
	s.Insert("user-busan", busan)
	s.Insert("user-tokyo", tokyo)

	// Seoul and Incheon are ~27 km apart; Busan ~325 km; Tokyo ~1150 km.
	got := s.QueryNearby(seoul, 100)
	if len(got) != 2 {
		t.Fatalf("QueryNearby(seoul, 100) returned %d users, want 2", len(got))
	}
	if got[0].UserID != "user-seoul" {
		t.Fatalf("nearest = %s, want user-seoul", got[0].UserID)
	}
	if got[1].UserID != "user-incheon" {
		t.Fatalf("second = %s, want user-incheon", got[1].UserID)
	}
	if got[1].DistanceKm < 20 || got[1].DistanceKm > 35 {
		t.Fatalf("Seoul-Incheon distance = %.1f km, want ~27", got[1].DistanceKm)
	}

	got = s.QueryNearby(seoul, 400)
	if len(got) != 3 {
		t.Fatalf("QueryNearby(seoul, 400) returned %d users, want 3", len(got))
	}
	if got[2].UserID != "user-busan" {
		t.Fatalf("farthest within 400 km = %s, want user-busan", got[2].UserID)
	}
}

func TestSpatialHash_InsertRelocates(t *testing.T) {
	t.Parallel()

	s := NewSpatialHash(50)
	s.Insert("u1", seoul)
	s.Insert("u1", busan)

	if got := s.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
	if got := s.QueryNearby(seoul, 100); len(got) != 0 {
		t.Fatalf("u1 still found near Seoul after relocation: %v", got)
	}
	got := s.QueryNearby(busan, 100)
	if len(got) != 1 || got[0].UserID != "u1" {
		t.Fatalf("u1 not found near Busan after relocation: %v", got)
	}
}

func TestSpatialHash_Remove(t *testing.T) {
	t.Parallel()

	s := NewSpatialHash(50)
	s.Insert("u1", seoul)

	if !s.Remove("u1") {
		t.Fatal("Remove(u1) = false, want true")
	}
	if s.Remove("u1") {
		t.Fatal("second Remove(u1) = true, want false")
	}
	if got := s.Len(); got != 0 {
		t.Fatalf("Len() = %d, want 0", got)
	}
}

func TestSpatialHash_DeterministicTieBreak(t *testing.T) {
	t.Parallel()

	s := NewSpatialHash(50)
	// Same point, so identical distance; order must fall back to user ID.
	s.Insert("b-user", seoul)
	s.Insert("a-user", seoul)
	s.Insert("c-user", seoul)

	got := s.QueryNearby(seoul, 10)
	if len(got) != 3 {
		t.Fatalf("got %d users, want 3", len(got))
	}
	want := []string{"a-user", "b-user", "c-user"}
	for i, w := range want {
		if got[i].UserID != w {
			t.Fatalf("order[%d] = %s, want %s", i, got[i].UserID, w)
		}
	}
}

func TestSpatialHash_ZeroRadius(t *testing.T) {
	t.Parallel()

	s := NewSpatialHash(50)
	s.Insert("u1", seoul)

	if got := s.QueryNearby(seoul, 0); got != nil {
		t.Fatalf("QueryNearby with zero radius = %v, want nil", got)
	}
}
