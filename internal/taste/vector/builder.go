// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package vector derives per-user taste profiles from observed dining
// behavior. Each analysis run is a full recompute over the user's visit
// history and liked playlists; nothing is incremental and nothing beyond
// the profile write has side effects.
package vector

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/chonamwoo/bobjido-sub005/internal/logging"
	"github.com/chonamwoo/bobjido-sub005/internal/metrics"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// Builder turns interaction history into a TasteProfile scored over the
// catalog. Safe for concurrent use; each call is request-scoped.
type Builder struct {
	catalog  *taste.Catalog
	weights  taste.ScoringWeights
	history  taste.HistoryProvider
	profiles taste.ProfileStore
	logger   zerolog.Logger
}

// NewBuilder creates a Builder. The weights are validated once here so the
// per-request path can trust them.
func NewBuilder(catalog *taste.Catalog, weights taste.ScoringWeights, history taste.HistoryProvider, profiles taste.ProfileStore) (*Builder, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("catalog must not be empty")
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring weights: %w", err)
	}
	if history == nil {
		return nil, fmt.Errorf("history provider is required")
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile store is required")
	}

	return &Builder{
		catalog:  catalog,
		weights:  weights,
		history:  history,
		profiles: profiles,
		logger:   logging.With().Str("component", "taste-vector").Logger(),
	}, nil
}

// AnalyzeUserTaste builds and persists the user's taste profile. The stored
// profile is overwritten in full and confirmation resets to provisional.
// Returns taste.ErrInsufficientData, without persisting, when the user has
// no visits and no liked playlists.
func (b *Builder) AnalyzeUserTaste(ctx context.Context, userID string) (*taste.TasteProfile, error) {
	start := time.Now()
	profile, err := b.analyze(ctx, userID)
	metrics.RecordTasteAnalysis(time.Since(start), err)
	return profile, err
}

func (b *Builder) analyze(ctx context.Context, userID string) (*taste.TasteProfile, error) {
	visits, err := b.history.VisitedRestaurants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching visit history: %w", err)
	}
	playlistRests, err := b.history.LikedPlaylistRestaurants(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetching liked playlist restaurants: %w", err)
	}

	if len(visits) == 0 && len(playlistRests) == 0 {
		return nil, taste.ErrInsufficientData
	}

	scores := b.scoreTypes(visits, playlistRests)
	normalizePercentages(scores)
	primary, secondary := pickTopTypes(scores)

	profile := &taste.TasteProfile{
		UserID:        userID,
		TypeScores:    scores,
		PrimaryType:   primary,
		SecondaryType: secondary,
		Analysis:      b.buildAnalysis(visits, playlistRests),
		GeneratedAt:   time.Now().UTC(),
	}

	if err := b.profiles.SaveTasteProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("persisting taste profile: %w", err)
	}

	b.logger.Info().
		Str("user_id", userID).
		Str("primary_type", primary).
		Str("secondary_type", secondary).
		Int("visits", len(visits)).
		Int("playlist_restaurants", len(playlistRests)).
		Msg("Taste profile generated")

	return profile, nil
}

// scoreTypes accumulates one raw score per catalog type, in catalog order.
func (b *Builder) scoreTypes(visits []taste.VisitedRestaurant, playlistRests []taste.PlaylistRestaurant) []taste.TypeScore {
	w := b.weights
	types := b.catalog.Types()
	scores := make([]taste.TypeScore, len(types))

	for i := range types {
		t := &types[i]
		var raw float64

		for vi := range visits {
			v := &visits[vi]
			if t.PrefersCategory(v.Category) {
				switch {
				case v.Rating >= w.StrongRatingMin:
					raw += w.VisitStrongSignal
				case v.Rating >= w.MildRatingMin:
					raw += w.VisitMildSignal
				}
			}
			if v.PriceBand.Valid() && v.PriceBand == t.PreferredPriceBand {
				raw += w.PriceBandMatch
			}
			raw += w.AtmosphereTagOverlap * float64(cappedOverlap(t.AtmosphereTags, v.AtmosphereTags, w.AtmosphereTagCap))
		}

		for pi := range playlistRests {
			p := &playlistRests[pi]
			if t.PrefersCategory(p.Category) {
				raw += w.PlaylistCategoryMatch
			}
			raw += w.AtmosphereTagOverlap * float64(cappedOverlap(t.AtmosphereTags, p.AtmosphereTags, w.AtmosphereTagCap))
		}

		scores[i] = taste.TypeScore{TypeID: t.ID, Raw: raw}
	}
	return scores
}

// cappedOverlap counts tags present in both sets, capped at limit per
// restaurant so tag spam cannot dominate a score.
func cappedOverlap(typeTags, restaurantTags []string, limit int) int {
	if len(typeTags) == 0 || len(restaurantTags) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(typeTags))
	for _, t := range typeTags {
		set[t] = struct{}{}
	}
	count := 0
	for _, t := range restaurantTags {
		if _, ok := set[t]; ok {
			delete(set, t)
			count++
			if count >= limit {
				break
			}
		}
	}
	return count
}

// normalizePercentages fills Percentage in place so entries sum to 100.
// Percentages are stored unrounded; rounding each entry separately could
// push the sum outside the 0.1 tolerance.
func normalizePercentages(scores []taste.TypeScore) {
	var total float64
	for i := range scores {
		total += scores[i].Raw
	}
	if total == 0 {
		return
	}
	for i := range scores {
		scores[i].Percentage = scores[i].Raw / total * 100
	}
}

// pickTopTypes selects the two highest-scoring type IDs. Ties resolve to
// the earlier catalog entry; zero-score types are never selected.
func pickTopTypes(scores []taste.TypeScore) (primary, secondary string) {
	best, second := -1, -1
	for i := range scores {
		if scores[i].Raw == 0 {
			continue
		}
		switch {
		case best == -1 || scores[i].Raw > scores[best].Raw:
			second = best
			best = i
		case second == -1 || scores[i].Raw > scores[second].Raw:
			second = i
		}
	}
	if best >= 0 {
		primary = scores[best].TypeID
	}
	if second >= 0 {
		secondary = scores[second].TypeID
	}
	return primary, secondary
}

// buildAnalysis aggregates the signals the scores were built from.
func (b *Builder) buildAnalysis(visits []taste.VisitedRestaurant, playlistRests []taste.PlaylistRestaurant) taste.AnalysisData {
	bandCounts := make(map[taste.PriceBand]int)
	catCounts := make(map[taste.Category]int)
	for i := range visits {
		if visits[i].PriceBand.Valid() {
			bandCounts[visits[i].PriceBand]++
		}
		catCounts[visits[i].Category]++
	}

	return taste.AnalysisData{
		AveragePriceBand:        modePriceBand(bandCounts),
		DominantCategories:      topCategories(catCounts, 3),
		Adventurousness:         float64(len(catCounts)) / float64(len(taste.Categories())),
		VisitCount:              len(visits),
		PlaylistRestaurantCount: len(playlistRests),
	}
}

// modePriceBand returns the most frequent band; ties resolve to the lower
// band. Unknown when no visit carries price data.
func modePriceBand(counts map[taste.PriceBand]int) taste.PriceBand {
	mode := taste.PriceBandUnknown
	best := 0
	for band := taste.PriceBandBudget; band <= taste.PriceBandPremium; band++ {
		if counts[band] > best {
			best = counts[band]
			mode = band
		}
	}
	return mode
}

// topCategories returns the n most-visited categories; ties resolve by
// category declaration order.
func topCategories(counts map[taste.Category]int, n int) []taste.Category {
	type entry struct {
		cat   taste.Category
		count int
		order int
	}
	entries := make([]entry, 0, len(counts))
	for order, cat := range taste.Categories() {
		if counts[cat] > 0 {
			entries = append(entries, entry{cat: cat, count: counts[cat], order: order})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].order < entries[j].order
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]taste.Category, len(entries))
	for i := range entries {
		out[i] = entries[i].cat
	}
	return out
}
