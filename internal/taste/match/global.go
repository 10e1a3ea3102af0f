// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package match

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/chonamwoo/bobjido-sub005/internal/geo"
	"github.com/chonamwoo/bobjido-sub005/internal/metrics"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// GlobalMatch is one candidate from cross-border discovery. Unlike the base
// matcher the score carries candidate-side bonuses, so A's score for B and
// B's score for A can differ.
type GlobalMatch struct {
	UserID string `json:"user_id"`

	// Compatibility is the bonused score, clamped to [0,100], one decimal.
	Compatibility float64 `json:"compatibility"`

	// Grade buckets the score: S, A, B, or C.
	Grade string `json:"grade"`

	SharedTypeIDs []string     `json:"shared_type_ids,omitempty"`
	Location      geo.Location `json:"location"`

	// DistanceKm is the great-circle distance between the two users, or -1
	// when either side has no coordinates.
	DistanceKm float64 `json:"distance_km"`

	// LocalRecommendationCount is how many tips the candidate has published.
	LocalRecommendationCount int `json:"local_recommendation_count"`
}

// FindGlobalMatches scores the requester against every globally
// discoverable user with a confirmed profile. The requester's own profile
// must be confirmed; their global-discovery record is optional and only
// contributes coordinates for the proximity bonus.
func (m *Matcher) FindGlobalMatches(ctx context.Context, userID string, limit int) ([]GlobalMatch, error) {
	if m.directory == nil {
		return nil, fmt.Errorf("global discovery is not configured")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	start := time.Now()

	profile, err := m.confirmedProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var ownCoords *geo.Coordinates
	if conn, err := m.directory.GlobalConnection(ctx, userID); err != nil {
		return nil, fmt.Errorf("fetching own discovery record: %w", err)
	} else if conn != nil {
		ownCoords = conn.Location.Coordinates
	}

	connections, err := m.directory.OpenConnections(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching open connections: %w", err)
	}

	own := profile.PercentageVector()
	matches := make([]GlobalMatch, 0, len(connections))
	compared := 0
	for _, conn := range connections {
		if conn.UserID == userID || !conn.Preferences.OpenToTravelers {
			continue
		}

		candidate, err := m.profiles.TasteProfile(ctx, conn.UserID)
		if errors.Is(err, taste.ErrProfileNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("fetching candidate profile: %w", err)
		}
		if !candidate.ConfirmedByUser {
			continue
		}
		compared++

		score := cosineCompatibility(own, candidate.PercentageVector())
		score += m.candidateBonuses(conn)

		distance := -1.0
		if ownCoords != nil && !ownCoords.IsUnknown() &&
			conn.Location.Coordinates != nil && !conn.Location.Coordinates.IsUnknown() {
			distance = geo.HaversineKm(*ownCoords, *conn.Location.Coordinates)
			score += m.proximityBonus(distance)
			distance = geo.RoundTo2Decimals(distance)
		}

		score = roundTo1Decimal(math.Min(math.Max(score, 0), 100))
		matches = append(matches, GlobalMatch{
			UserID:                   conn.UserID,
			Compatibility:            score,
			Grade:                    m.gradeFor(score),
			SharedTypeIDs:            sharedTypeIDs(profile, candidate),
			Location:                 conn.Location,
			DistanceKm:               distance,
			LocalRecommendationCount: len(conn.LocalRecommendations),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Compatibility != matches[j].Compatibility {
			return matches[i].Compatibility > matches[j].Compatibility
		}
		return matches[i].UserID < matches[j].UserID
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}

	metrics.RecordMatch("global", time.Since(start), compared)
	return matches, nil
}

// candidateBonuses sums the candidate-side additive bonuses.
func (m *Matcher) candidateBonuses(conn *taste.GlobalConnection) float64 {
	b := m.bonuses
	var bonus float64
	if conn.Preferences.CulturalAdventure >= b.CulturalAdventureMin {
		bonus += b.CulturalAdventureBonus
	}
	if conn.Preferences.SocialLevel >= b.SocialLevelMin {
		bonus += b.SocialLevelBonus
	}
	bonus += math.Min(b.PerLocalRecommendation*float64(len(conn.LocalRecommendations)), b.LocalRecommendationCap)
	return bonus
}

// proximityBonus buckets the distance between both users. No bonus beyond
// the far threshold.
func (m *Matcher) proximityBonus(distanceKm float64) float64 {
	b := m.bonuses
	switch {
	case distanceKm <= b.ProximityNearKm:
		return b.ProximityNearBonus
	case distanceKm <= b.ProximityMidKm:
		return b.ProximityMidBonus
	case distanceKm <= b.ProximityFarKm:
		return b.ProximityFarBonus
	default:
		return 0
	}
}

// gradeFor buckets a final score into the S/A/B/C grades.
func (m *Matcher) gradeFor(score float64) string {
	b := m.bonuses
	switch {
	case score >= b.GradeSMin:
		return "S"
	case score >= b.GradeAMin:
		return "A"
	case score >= b.GradeBMin:
		return "B"
	default:
		return "C"
	}
}
