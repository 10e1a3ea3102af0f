// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package match computes pairwise taste compatibility. The base matcher is
// pure cosine similarity over percentage vectors and is symmetric; the
// global variant layers candidate-side bonuses on top and is therefore
// directional.
package match

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/chonamwoo/bobjido-sub005/internal/cache"
	"github.com/chonamwoo/bobjido-sub005/internal/logging"
	"github.com/chonamwoo/bobjido-sub005/internal/metrics"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// DefaultLimit is the match-list size when the caller passes limit <= 0.
const DefaultLimit = 10

// Matcher finds compatible users among confirmed taste profiles.
type Matcher struct {
	catalog   *taste.Catalog
	bonuses   taste.MatchBonuses
	profiles  taste.ProfileStore
	directory taste.DirectoryProvider
	results   *cache.LRU[[]taste.MatchEntry]
	logger    zerolog.Logger
}

// NewMatcher creates a Matcher. The directory provider is only consulted by
// the global variant and may be nil when global discovery is disabled.
func NewMatcher(catalog *taste.Catalog, bonuses taste.MatchBonuses, profiles taste.ProfileStore, directory taste.DirectoryProvider) (*Matcher, error) {
	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("catalog must not be empty")
	}
	if err := bonuses.Validate(); err != nil {
		return nil, fmt.Errorf("invalid match bonuses: %w", err)
	}
	if profiles == nil {
		return nil, fmt.Errorf("profile store is required")
	}

	return &Matcher{
		catalog:   catalog,
		bonuses:   bonuses,
		profiles:  profiles,
		directory: directory,
		results:   cache.NewLRU[[]taste.MatchEntry](1024, 5*time.Minute),
		logger:    logging.With().Str("component", "match").Logger(),
	}, nil
}

// FindMatchingUsers returns the most compatible confirmed users, best first.
// The caller's profile must exist and be confirmed, otherwise
// taste.ErrProfileNotConfirmed is returned. Results are ordered by
// descending compatibility with ties broken by ascending user ID.
func (m *Matcher) FindMatchingUsers(ctx context.Context, userID string, limit int) ([]taste.MatchEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	// The confirmation gate runs before the cache lookup: a profile
	// recompute resets ConfirmedByUser, and a cached result must not
	// outlive that reset.
	profile, err := m.confirmedProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("%s:%d", userID, limit)
	if entries, ok := m.results.Get(cacheKey); ok {
		metrics.CacheHits.WithLabelValues("match").Inc()
		return entries, nil
	}
	metrics.CacheMisses.WithLabelValues("match").Inc()

	start := time.Now()
	entries, compared, err := m.match(ctx, profile, limit)
	if err != nil {
		return nil, err
	}
	metrics.RecordMatch("local", time.Since(start), compared)

	m.results.Add(cacheKey, entries)
	return entries, nil
}

func (m *Matcher) match(ctx context.Context, profile *taste.TasteProfile, limit int) ([]taste.MatchEntry, int, error) {
	candidates, err := m.profiles.ConfirmedProfiles(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("fetching confirmed profiles: %w", err)
	}

	own := profile.PercentageVector()
	entries := make([]taste.MatchEntry, 0, len(candidates))
	compared := 0
	for _, candidate := range candidates {
		if candidate.UserID == profile.UserID || !candidate.ConfirmedByUser {
			continue
		}
		compared++
		entries = append(entries, taste.MatchEntry{
			UserID:        candidate.UserID,
			Compatibility: roundTo1Decimal(cosineCompatibility(own, candidate.PercentageVector())),
			SharedTypeIDs: sharedTypeIDs(profile, candidate),
		})
	}

	sortMatches(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, compared, nil
}

// ConfirmTasteProfile flips the confirmation flag. Confirming runs a match
// pass and caches the result on the profile; unconfirming clears the cached
// matches. The updated profile is persisted and returned.
func (m *Matcher) ConfirmTasteProfile(ctx context.Context, userID string, confirm bool) (*taste.TasteProfile, error) {
	profile, err := m.profiles.TasteProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if confirm {
		now := time.Now().UTC()
		profile.ConfirmedByUser = true
		profile.ConfirmedAt = &now

		// The profile must be visible as confirmed before matching so it
		// passes its own precondition, and so a persistence failure does
		// not leave a confirmed-but-unsaved profile in memory only.
		if err := m.profiles.SaveTasteProfile(ctx, profile); err != nil {
			return nil, fmt.Errorf("persisting confirmation: %w", err)
		}

		entries, _, err := m.match(ctx, profile, DefaultLimit)
		if err != nil {
			return nil, err
		}
		profile.MatchingUsers = entries
	} else {
		profile.ConfirmedByUser = false
		profile.ConfirmedAt = nil
		profile.MatchingUsers = nil
	}

	if err := m.profiles.SaveTasteProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("persisting profile: %w", err)
	}
	if confirm {
		metrics.TasteProfilesConfirmed.Inc()
	}
	m.results.Clear()

	m.logger.Info().
		Str("user_id", userID).
		Bool("confirmed", confirm).
		Int("cached_matches", len(profile.MatchingUsers)).
		Msg("Taste profile confirmation updated")

	return profile, nil
}

// confirmedProfile loads the profile and enforces the confirmation gate.
func (m *Matcher) confirmedProfile(ctx context.Context, userID string) (*taste.TasteProfile, error) {
	profile, err := m.profiles.TasteProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !profile.ConfirmedByUser {
		return nil, taste.ErrProfileNotConfirmed
	}
	return profile, nil
}

// cosineCompatibility returns cosine similarity scaled to [0,100]. Vectors
// are aligned by catalog order; a zero norm on either side yields 0.
func cosineCompatibility(u, v []float64) float64 {
	if len(u) != len(v) {
		return 0
	}
	var dot, normU, normV float64
	for i := range u {
		dot += u[i] * v[i]
		normU += u[i] * u[i]
		normV += v[i] * v[i]
	}
	if normU == 0 || normV == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normU) * math.Sqrt(normV))
	// Percentage entries are non-negative, so sim is in [0,1] up to float
	// error; clamp to keep the contract exact.
	return math.Min(math.Max(sim, 0), 1) * 100
}

// sharedTypeIDs lists types where both profiles score nonzero, in catalog
// order.
func sharedTypeIDs(a, b *taste.TasteProfile) []string {
	var shared []string
	for i := range a.TypeScores {
		if a.TypeScores[i].Raw == 0 {
			continue
		}
		if s := b.Score(a.TypeScores[i].TypeID); s != nil && s.Raw != 0 {
			shared = append(shared, a.TypeScores[i].TypeID)
		}
	}
	return shared
}

// sortMatches orders by descending compatibility, then ascending user ID
// for determinism.
func sortMatches(entries []taste.MatchEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Compatibility != entries[j].Compatibility {
			return entries[i].Compatibility > entries[j].Compatibility
		}
		return entries[i].UserID < entries[j].UserID
	})
}

func roundTo1Decimal(f float64) float64 {
	return math.Round(f*10) / 10
}
