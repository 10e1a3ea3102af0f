// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chonamwoo/bobjido-sub005/internal/expertise"
	"github.com/chonamwoo/bobjido-sub005/internal/geo"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

var (
	_ taste.HistoryProvider   = (*Store)(nil)
	_ taste.CatalogProvider   = (*Store)(nil)
	_ taste.PlaylistProvider  = (*Store)(nil)
	_ taste.ProfileStore      = (*Store)(nil)
	_ taste.DirectoryProvider = (*Store)(nil)
	_ expertise.Store         = (*Store)(nil)
)

// openTestStore opens an in-memory database.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(Config{Path: "", MaxMemory: "256MB", Threads: 2})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return s
}

func TestTasteProfileRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.TasteProfile(ctx, "nobody"); !errors.Is(err, taste.ErrUserNotFound) {
		t.Fatalf("unknown user error = %v, want ErrUserNotFound", err)
	}

	confirmed := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	profile := &taste.TasteProfile{
		UserID: "user-1",
		TypeScores: []taste.TypeScore{
			{TypeID: "spicy_adventurer", Raw: 6, Percentage: 75},
			{TypeID: "cafe_nomad", Raw: 2, Percentage: 25},
		},
		PrimaryType:     "spicy_adventurer",
		SecondaryType:   "cafe_nomad",
		ConfirmedByUser: true,
		ConfirmedAt:     &confirmed,
		MatchingUsers: []taste.MatchEntry{
			{UserID: "user-2", Compatibility: 92.5, SharedTypeIDs: []string{"spicy_adventurer"}},
		},
		GeneratedAt: confirmed.Add(-time.Hour),
	}
	if err := s.SaveTasteProfile(ctx, profile); err != nil {
		t.Fatalf("SaveTasteProfile: %v", err)
	}

	got, err := s.TasteProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("TasteProfile: %v", err)
	}
	if got.PrimaryType != "spicy_adventurer" || !got.ConfirmedByUser {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.MatchingUsers) != 1 || got.MatchingUsers[0].Compatibility != 92.5 {
		t.Errorf("matching users = %+v", got.MatchingUsers)
	}

	// Overwrite with an unconfirmed re-analysis.
	profile.ConfirmedByUser = false
	profile.ConfirmedAt = nil
	profile.MatchingUsers = nil
	if err := s.SaveTasteProfile(ctx, profile); err != nil {
		t.Fatalf("SaveTasteProfile overwrite: %v", err)
	}

	pool, err := s.ConfirmedProfiles(ctx)
	if err != nil {
		t.Fatalf("ConfirmedProfiles: %v", err)
	}
	if len(pool) != 0 {
		t.Errorf("unconfirmed profile still in candidate pool: %+v", pool)
	}
}

func TestTasteProfileDistinguishesUnknownUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.TasteProfile(ctx, "ghost"); !errors.Is(err, taste.ErrUserNotFound) {
		t.Fatalf("unknown user error = %v, want ErrUserNotFound", err)
	}

	// A single visit makes the user known; the missing profile then reports
	// ErrProfileNotFound instead.
	visit := taste.VisitedRestaurant{
		RestaurantID: "r1", Category: taste.CategoryKorean,
		PriceBand: taste.PriceBandCasual, Rating: 4.0,
	}
	if err := s.RecordVisit(ctx, "ghost", visit, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("RecordVisit: %v", err)
	}
	if _, err := s.TasteProfile(ctx, "ghost"); !errors.Is(err, taste.ErrProfileNotFound) {
		t.Fatalf("known user error = %v, want ErrProfileNotFound", err)
	}
}

func TestVisitHistory(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 7, 1, 19, 0, 0, 0, time.UTC)
	visits := []taste.VisitedRestaurant{
		{RestaurantID: "r1", Category: taste.CategoryKorean, PriceBand: taste.PriceBandCasual,
			AtmosphereTags: []string{"활기찬"}, Rating: 4.5},
		{RestaurantID: "r2", Category: taste.CategoryCafe, PriceBand: taste.PriceBandBudget, Rating: 3},
	}
	for i, v := range visits {
		if err := s.RecordVisit(ctx, "user-1", v, base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatalf("RecordVisit: %v", err)
		}
	}

	got, err := s.VisitedRestaurants(ctx, "user-1")
	if err != nil {
		t.Fatalf("VisitedRestaurants: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d visits, want 2", len(got))
	}
	if got[0].RestaurantID != "r1" || got[0].Rating != 4.5 || got[0].AtmosphereTags[0] != "활기찬" {
		t.Errorf("first visit = %+v", got[0])
	}

	empty, err := s.VisitedRestaurants(ctx, "stranger")
	if err != nil {
		t.Fatalf("VisitedRestaurants(stranger): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("stranger has %d visits, want 0", len(empty))
	}
}

func TestFindCandidates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	restaurants := []taste.Restaurant{
		{ID: "a", Name: "국밥집", Category: taste.CategoryKorean, PriceBand: taste.PriceBandBudget,
			AverageRating: 4.7, City: "Seoul"},
		{ID: "b", Name: "스시야", Category: taste.CategoryJapanese, PriceBand: taste.PriceBandPremium,
			AverageRating: 4.9, City: "Seoul"},
		{ID: "c", Name: "돼지국밥", Category: taste.CategoryKorean, PriceBand: taste.PriceBandBudget,
			AverageRating: 4.2, City: "Busan"},
	}
	for _, r := range restaurants {
		if err := s.SaveRestaurant(ctx, r); err != nil {
			t.Fatalf("SaveRestaurant: %v", err)
		}
	}

	got, err := s.FindCandidates(ctx, taste.CandidateFilter{
		City:         "seoul",
		Categories:   []taste.Category{taste.CategoryKorean},
		MaxPriceBand: taste.PriceBandCasual,
	})
	if err != nil {
		t.Fatalf("FindCandidates: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("filtered candidates = %+v, want only a", got)
	}

	all, err := s.FindCandidates(ctx, taste.CandidateFilter{})
	if err != nil {
		t.Fatalf("FindCandidates(unfiltered): %v", err)
	}
	if len(all) != 3 || all[0].ID != "b" {
		t.Errorf("unfiltered candidates = %+v, want rating order b a c", all)
	}
}

func TestPlaylistsAndLikes(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := taste.Playlist{
		ID:        "pl-1",
		Title:     "혼밥 성지",
		Category:  taste.CategoryKorean,
		Tags:      []string{"혼밥"},
		AuthorID:  "author-1",
		Public:    true,
		LikeCount: 7,
		ViewCount: 120,
		CreatedAt: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		Restaurants: []taste.PlaylistRestaurant{
			{Category: taste.CategoryKorean, AtmosphereTags: []string{"정겨운"}},
			{Category: taste.CategorySnack},
		},
	}
	hidden := taste.Playlist{
		ID: "pl-2", Title: "비공개", Category: taste.CategoryCafe,
		AuthorID: "author-1", Public: false,
		CreatedAt: time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC),
	}
	for _, pl := range []taste.Playlist{p, hidden} {
		if err := s.SavePlaylist(ctx, pl); err != nil {
			t.Fatalf("SavePlaylist: %v", err)
		}
	}

	public, err := s.PublicPlaylists(ctx)
	if err != nil {
		t.Fatalf("PublicPlaylists: %v", err)
	}
	if len(public) != 1 || public[0].ID != "pl-1" {
		t.Errorf("public playlists = %+v, want only pl-1", public)
	}
	if len(public[0].Restaurants) != 2 {
		t.Errorf("restaurant entries = %+v", public[0].Restaurants)
	}

	if err := s.LikePlaylist(ctx, "user-1", "pl-1"); err != nil {
		t.Fatalf("LikePlaylist: %v", err)
	}
	if err := s.LikePlaylist(ctx, "user-1", "pl-1"); err != nil {
		t.Fatalf("LikePlaylist twice: %v", err)
	}

	liked, err := s.LikedPlaylists(ctx, "user-1")
	if err != nil {
		t.Fatalf("LikedPlaylists: %v", err)
	}
	if len(liked) != 1 || liked[0].ID != "pl-1" {
		t.Errorf("liked playlists = %+v", liked)
	}

	flat, err := s.LikedPlaylistRestaurants(ctx, "user-1")
	if err != nil {
		t.Fatalf("LikedPlaylistRestaurants: %v", err)
	}
	if len(flat) != 2 || flat[0].Category != taste.CategoryKorean {
		t.Errorf("flattened restaurants = %+v", flat)
	}

	if err := s.UnlikePlaylist(ctx, "user-1", "pl-1"); err != nil {
		t.Fatalf("UnlikePlaylist: %v", err)
	}
	liked, err = s.LikedPlaylists(ctx, "user-1")
	if err != nil {
		t.Fatalf("LikedPlaylists after unlike: %v", err)
	}
	if len(liked) != 0 {
		t.Errorf("liked playlists after unlike = %+v", liked)
	}
}

func TestGlobalConnections(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	missing, err := s.GlobalConnection(ctx, "nobody")
	if err != nil {
		t.Fatalf("GlobalConnection(nobody): %v", err)
	}
	if missing != nil {
		t.Errorf("missing record = %+v, want nil", missing)
	}

	open := &taste.GlobalConnection{
		UserID: "host-1",
		Location: geo.Location{
			Country:     "South Korea",
			City:        "Seoul",
			Coordinates: &geo.Coordinates{Lat: 37.5665, Lon: 126.978},
		},
		Preferences: taste.GlobalPreferences{
			OpenToTravelers:   true,
			Languages:         []string{"ko", "en"},
			CulturalAdventure: 5,
			SocialLevel:       4,
		},
		LocalRecommendations: []taste.LocalRecommendation{
			{RestaurantID: "r1", Description: "새벽까지 하는 곱창", Tags: []string{"야식"},
				RecommendedForTypeNames: []string{"매운맛 모험가"}},
		},
	}
	closed := &taste.GlobalConnection{
		UserID:      "host-2",
		Location:    geo.Location{Country: "South Korea", City: "Busan"},
		Preferences: taste.GlobalPreferences{OpenToTravelers: false, CulturalAdventure: 2, SocialLevel: 2},
	}
	for _, conn := range []*taste.GlobalConnection{open, closed} {
		if err := s.SaveGlobalConnection(ctx, conn); err != nil {
			t.Fatalf("SaveGlobalConnection: %v", err)
		}
	}

	discoverable, err := s.OpenConnections(ctx)
	if err != nil {
		t.Fatalf("OpenConnections: %v", err)
	}
	if len(discoverable) != 1 || discoverable[0].UserID != "host-1" {
		t.Errorf("open connections = %+v, want only host-1", discoverable)
	}
	if got := discoverable[0].LocalRecommendations; len(got) != 1 || got[0].RestaurantID != "r1" {
		t.Errorf("recommendations = %+v", got)
	}
	if discoverable[0].Location.Coordinates == nil {
		t.Error("coordinates lost in round trip")
	}

	if err := s.DeleteGlobalConnection(ctx, "host-1"); err != nil {
		t.Fatalf("DeleteGlobalConnection: %v", err)
	}
	gone, err := s.GlobalConnection(ctx, "host-1")
	if err != nil {
		t.Fatalf("GlobalConnection after delete: %v", err)
	}
	if gone != nil {
		t.Errorf("deleted record still present: %+v", gone)
	}
}

func TestExpertiseScores(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.ExpertiseScore(ctx, "nobody", taste.CategoryKorean); !errors.Is(err, expertise.ErrScoreNotFound) {
		t.Fatalf("missing score error = %v, want ErrScoreNotFound", err)
	}

	now := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	scores := []*expertise.Score{
		{UserID: "a", Category: taste.CategoryKorean, Points: 120, Level: 1,
			RestaurantsAdded: 12, UpdatedAt: now},
		{UserID: "b", Category: taste.CategoryKorean, Points: 45, Level: 0,
			ListsCreated: 3, UpdatedAt: now},
		{UserID: "c", Category: taste.CategoryCafe, Points: 200, Level: 2, UpdatedAt: now},
	}
	for _, sc := range scores {
		if err := s.SaveExpertiseScore(ctx, sc); err != nil {
			t.Fatalf("SaveExpertiseScore: %v", err)
		}
	}

	got, err := s.ExpertiseScore(ctx, "a", taste.CategoryKorean)
	if err != nil {
		t.Fatalf("ExpertiseScore: %v", err)
	}
	if got.Points != 120 || got.Level != 1 || got.RestaurantsAdded != 12 {
		t.Errorf("score = %+v", got)
	}

	korean, err := s.CategoryScores(ctx, taste.CategoryKorean)
	if err != nil {
		t.Fatalf("CategoryScores: %v", err)
	}
	if len(korean) != 2 {
		t.Errorf("got %d korean scores, want 2", len(korean))
	}

	// Rank update round trip.
	got.Rank = 1
	if err := s.SaveExpertiseScore(ctx, got); err != nil {
		t.Fatalf("SaveExpertiseScore(rank): %v", err)
	}
	ranked, err := s.ExpertiseScore(ctx, "a", taste.CategoryKorean)
	if err != nil {
		t.Fatalf("ExpertiseScore after rank: %v", err)
	}
	if ranked.Rank != 1 {
		t.Errorf("rank = %d, want 1", ranked.Rank)
	}
}
