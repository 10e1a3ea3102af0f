// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package recommend ranks playlists for a user's feed and locates local
// experts for travel destinations. Both paths degrade to popularity or an
// empty list rather than erroring when personalization data is missing.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chonamwoo/bobjido-sub005/internal/cache"
	"github.com/chonamwoo/bobjido-sub005/internal/logging"
	"github.com/chonamwoo/bobjido-sub005/internal/metrics"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// Ranker produces playlist and travel recommendations.
type Ranker struct {
	catalog   *taste.Catalog
	limits    taste.RecommendLimits
	playlists taste.PlaylistProvider
	profiles  taste.ProfileStore
	directory taste.DirectoryProvider
	logger    zerolog.Logger

	// experts is a spatial index over globally discoverable users with
	// coordinates, rebuilt lazily from the directory.
	expertsMu    sync.Mutex
	experts      *cache.SpatialHash
	expertsTTL   time.Duration
	expertsBuilt time.Time
}

// NewRanker creates a Ranker. The directory provider may be nil when
// travel recommendations are disabled; playlist recommendations still work.
func NewRanker(catalog *taste.Catalog, limits taste.RecommendLimits, playlists taste.PlaylistProvider, profiles taste.ProfileStore, directory taste.DirectoryProvider) (*Ranker, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("catalog must not be empty")
	}
	if err := limits.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend limits: %w", err)
	}
	if playlists == nil {
		return nil, fmt.Errorf("playlist provider is required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile store is required")
	}

	return &Ranker{
		catalog:    catalog,
		limits:     limits,
		playlists:  playlists,
		profiles:   profiles,
		directory:  directory,
		logger:     logging.With().Str("component", "recommend").Logger(),
		experts:    cache.NewSpatialHash(50),
		expertsTTL: 5 * time.Minute,
	}, nil
}

// GetRecommendedPlaylists returns public playlists matching the user's
// mined preferences, most popular first. Users with no liked playlists get
// the global popularity ranking instead of an error.
func (r *Ranker) GetRecommendedPlaylists(ctx context.Context, userID string, limit int) ([]taste.Playlist, error) {
	limit = r.clampLimit(limit)
	start := time.Now()

	liked, err := r.playlists.LikedPlaylists(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching liked playlists: %w", err)
	}
	public, err := r.playlists.PublicPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching public playlists: %w", err)
	}

	likedIDs := make(map[string]struct{}, len(liked))
	for _, p := range liked {
		likedIDs[p.ID] = struct{}{}
	}

	var out []taste.Playlist
	if len(liked) == 0 {
		// Popularity fallback: no personalization signal yet.
		metrics.RecommendationFallbacks.Inc()
		out = filterPlaylists(public, userID, likedIDs, nil, nil)
	} else {
		topCats := r.topCategories(liked)
		topTags := r.topTags(liked)
		out = filterPlaylists(public, userID, likedIDs, topCats, topTags)
	}

	sortByPopularity(out)
	if len(out) > limit {
		out = out[:limit]
	}

	metrics.RecordRecommendation("playlist", time.Since(start), len(out))
	return out, nil
}

func (r *Ranker) clampLimit(limit int) int {
	if limit <= 0 {
		return r.limits.DefaultLimit
	}
	if limit > r.limits.MaxLimit {
		return r.limits.MaxLimit
	}
	return limit
}

// topCategories mines the most frequent categories from liked playlists'
// restaurants, including the playlist's own category. Ties resolve by
// category declaration order.
func (r *Ranker) topCategories(liked []taste.Playlist) map[taste.Category]struct{} {
	counts := make(map[taste.Category]int)
	for _, p := range liked {
		if p.Category.Valid() {
			counts[p.Category]++
		}
		for _, rest := range p.Restaurants {
			if rest.Category.Valid() {
				counts[rest.Category]++
			}
		}
	}

	type entry struct {
		cat   taste.Category
		count int
	}
	entries := make([]entry, 0, len(counts))
	for _, cat := range taste.Categories() {
		if counts[cat] > 0 {
			entries = append(entries, entry{cat: cat, count: counts[cat]})
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].count > entries[j].count })
	if len(entries) > r.limits.TopCategories {
		entries = entries[:r.limits.TopCategories]
	}

	out := make(map[taste.Category]struct{}, len(entries))
	for _, e := range entries {
		out[e.cat] = struct{}{}
	}
	return out
}

// topTags mines the most frequent tags from liked playlists and their
// restaurants' atmosphere tags. Ties resolve by first appearance.
func (r *Ranker) topTags(liked []taste.Playlist) map[string]struct{} {
	counts := make(map[string]int)
	var order []string
	note := func(tag string) {
		if counts[tag] == 0 {
			order = append(order, tag)
		}
		counts[tag]++
	}
	for _, p := range liked {
		for _, tag := range p.Tags {
			note(tag)
		}
		for _, rest := range p.Restaurants {
			for _, tag := range rest.AtmosphereTags {
				note(tag)
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > r.limits.TopTags {
		order = order[:r.limits.TopTags]
	}

	out := make(map[string]struct{}, len(order))
	for _, tag := range order {
		out[tag] = struct{}{}
	}
	return out
}

// filterPlaylists keeps public playlists the user has not liked and did not
// author. With preference sets, a playlist must match by category or share
// at least one tag; nil preference sets keep everything (popularity mode).
func filterPlaylists(public []taste.Playlist, userID string, likedIDs map[string]struct{}, topCats map[taste.Category]struct{}, topTags map[string]struct{}) []taste.Playlist {
	var out []taste.Playlist
	for _, p := range public {
		if !p.Public || p.AuthorID == userID {
			continue
		}
		if _, already := likedIDs[p.ID]; already {
			continue
		}
		if topCats != nil || topTags != nil {
			if !matchesPreferences(&p, topCats, topTags) {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

func matchesPreferences(p *taste.Playlist, topCats map[taste.Category]struct{}, topTags map[string]struct{}) bool {
	if _, ok := topCats[p.Category]; ok {
		return true
	}
	for _, tag := range p.Tags {
		if _, ok := topTags[tag]; ok {
			return true
		}
	}
	return false
}

// sortByPopularity orders by like count, then view count, then recency,
// then ID for full determinism.
func sortByPopularity(playlists []taste.Playlist) {
	sort.Slice(playlists, func(i, j int) bool {
		a, b := &playlists[i], &playlists[j]
		if a.LikeCount != b.LikeCount {
			return a.LikeCount > b.LikeCount
		}
		if a.ViewCount != b.ViewCount {
			return a.ViewCount > b.ViewCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}
