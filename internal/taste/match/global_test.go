// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package match

import (
	"context"
	"errors"
	"testing"

	"github.com/chonamwoo/bobjido-sub005/internal/geo"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

type fakeDirectory struct {
	connections map[string]*taste.GlobalConnection
}

func newFakeDirectory(conns ...*taste.GlobalConnection) *fakeDirectory {
	d := &fakeDirectory{connections: make(map[string]*taste.GlobalConnection)}
	for _, c := range conns {
		d.connections[c.UserID] = c
	}
	return d
}

func (d *fakeDirectory) GlobalConnection(_ context.Context, userID string) (*taste.GlobalConnection, error) {
	return d.connections[userID], nil
}

func (d *fakeDirectory) OpenConnections(_ context.Context) ([]*taste.GlobalConnection, error) {
	var out []*taste.GlobalConnection
	for _, c := range d.connections {
		if c.Preferences.OpenToTravelers {
			out = append(out, c)
		}
	}
	return out, nil
}

func openConnection(userID string, recs int) *taste.GlobalConnection {
	conn := &taste.GlobalConnection{
		UserID:      userID,
		Location:    geo.Location{Country: "South Korea", City: "Seoul"},
		Preferences: taste.GlobalPreferences{OpenToTravelers: true, CulturalAdventure: 1, SocialLevel: 1},
	}
	for i := 0; i < recs; i++ {
		conn.LocalRecommendations = append(conn.LocalRecommendations, taste.LocalRecommendation{RestaurantID: "r"})
	}
	return conn
}

func TestFindGlobalMatches_Bonuses(t *testing.T) {
	t.Parallel()

	store := newFakeProfileStore(
		profileWith("me", true, 10, 0, 0),
		profileWith("plain", true, 10, 0, 0),
		profileWith("adventurer", true, 0, 10, 0),
	)
	adventurer := openConnection("adventurer", 2)
	adventurer.Preferences.CulturalAdventure = 5
	adventurer.Preferences.SocialLevel = 4
	directory := newFakeDirectory(openConnection("plain", 0), adventurer)
	m := newTestMatcher(t, store, directory)

	matches, err := m.FindGlobalMatches(context.Background(), "me", 10)
	if err != nil {
		t.Fatalf("FindGlobalMatches: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}

	byUser := make(map[string]GlobalMatch, len(matches))
	for _, gm := range matches {
		byUser[gm.UserID] = gm
	}

	// plain: identical vector, no bonuses -> 100, grade S.
	if got := byUser["plain"]; got.Compatibility != 100.0 || got.Grade != "S" {
		t.Errorf("plain = %.1f/%s, want 100.0/S", got.Compatibility, got.Grade)
	}
	// adventurer: orthogonal vector (base 0) + 5 cultural + 3 social
	// + min(2*2, 10) = 12, grade C.
	if got := byUser["adventurer"]; got.Compatibility != 12.0 || got.Grade != "C" {
		t.Errorf("adventurer = %.1f/%s, want 12.0/C", got.Compatibility, got.Grade)
	}
	if got := byUser["adventurer"].LocalRecommendationCount; got != 2 {
		t.Errorf("recommendation count = %d, want 2", got)
	}
}

func TestFindGlobalMatches_LocalRecommendationCapped(t *testing.T) {
	t.Parallel()

	store := newFakeProfileStore(
		profileWith("me", true, 10, 0, 0),
		profileWith("prolific", true, 0, 10, 0),
	)
	directory := newFakeDirectory(openConnection("prolific", 20))
	m := newTestMatcher(t, store, directory)

	matches, err := m.FindGlobalMatches(context.Background(), "me", 10)
	if err != nil {
		t.Fatalf("FindGlobalMatches: %v", err)
	}
	// Base 0 + min(2*20, 10) = 10.
	if matches[0].Compatibility != 10.0 {
		t.Errorf("compatibility = %v, want 10.0 (capped)", matches[0].Compatibility)
	}
}

func TestFindGlobalMatches_ClampsAt100(t *testing.T) {
	t.Parallel()

	store := newFakeProfileStore(
		profileWith("me", true, 10, 0, 0),
		profileWith("super", true, 10, 0, 0),
	)
	super := openConnection("super", 5)
	super.Preferences.CulturalAdventure = 5
	super.Preferences.SocialLevel = 5
	directory := newFakeDirectory(super)
	m := newTestMatcher(t, store, directory)

	matches, err := m.FindGlobalMatches(context.Background(), "me", 10)
	if err != nil {
		t.Fatalf("FindGlobalMatches: %v", err)
	}
	if matches[0].Compatibility != 100.0 {
		t.Errorf("compatibility = %v, want clamped 100.0", matches[0].Compatibility)
	}
}

func TestFindGlobalMatches_ProximityBonus(t *testing.T) {
	t.Parallel()

	store := newFakeProfileStore(
		profileWith("me", true, 10, 0, 0),
		profileWith("neighbor", true, 0, 10, 0),
	)

	me := openConnection("me", 0)
	me.Location.Coordinates = &geo.Coordinates{Lat: 37.5665, Lon: 126.9780}
	neighbor := openConnection("neighbor", 0)
	neighbor.Location.Coordinates = &geo.Coordinates{Lat: 37.5660, Lon: 126.9790} // a few hundred meters away
	directory := newFakeDirectory(me, neighbor)
	m := newTestMatcher(t, store, directory)

	matches, err := m.FindGlobalMatches(context.Background(), "me", 10)
	if err != nil {
		t.Fatalf("FindGlobalMatches: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	// Base 0 + near proximity bonus 5.
	if matches[0].Compatibility != 5.0 {
		t.Errorf("compatibility = %v, want 5.0", matches[0].Compatibility)
	}
	if matches[0].DistanceKm <= 0 || matches[0].DistanceKm > 1 {
		t.Errorf("distance = %v km, want under 1", matches[0].DistanceKm)
	}
}

func TestFindGlobalMatches_SkipsClosedAndUnconfirmed(t *testing.T) {
	t.Parallel()

	store := newFakeProfileStore(
		profileWith("me", true, 10, 0, 0),
		profileWith("closed", true, 10, 0, 0),
		profileWith("provisional", false, 10, 0, 0),
	)
	closed := openConnection("closed", 0)
	closed.Preferences.OpenToTravelers = false
	directory := newFakeDirectory(closed, openConnection("provisional", 0), openConnection("no-profile", 0))
	m := newTestMatcher(t, store, directory)

	matches, err := m.FindGlobalMatches(context.Background(), "me", 10)
	if err != nil {
		t.Fatalf("FindGlobalMatches: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %v, want none", matches)
	}
}

func TestFindGlobalMatches_RequiresConfirmedProfile(t *testing.T) {
	t.Parallel()

	store := newFakeProfileStore(profileWith("me", false, 10, 0, 0))
	m := newTestMatcher(t, store, newFakeDirectory())

	_, err := m.FindGlobalMatches(context.Background(), "me", 10)
	if !errors.Is(err, taste.ErrProfileNotConfirmed) {
		t.Fatalf("err = %v, want ErrProfileNotConfirmed", err)
	}
}
