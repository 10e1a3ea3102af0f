// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/chonamwoo/bobjido-sub005/internal/cache"
	"github.com/chonamwoo/bobjido-sub005/internal/geo"
	"github.com/chonamwoo/bobjido-sub005/internal/metrics"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// TravelExpert is one local expert matched for a destination.
type TravelExpert struct {
	UserID   string       `json:"user_id"`
	Location geo.Location `json:"location"`

	// DistanceKm is measured from the requester's home coordinates, or -1
	// when either side has no coordinates.
	DistanceKm float64 `json:"distance_km"`

	Recommendations []taste.LocalRecommendation `json:"recommendations"`
}

// TravelRecommendation groups the experts found for one destination.
type TravelRecommendation struct {
	Destination geo.Destination `json:"destination"`
	Experts     []TravelExpert  `json:"experts"`
}

// GetTravelRecommendations locates local experts for each destination:
// globally discoverable users located there who have published at least one
// recommendation aimed at the requester's taste types. Requesters without a
// confirmed profile get location-only matching instead of an error. A
// destination with no experts yields an empty expert list.
func (r *Ranker) GetTravelRecommendations(ctx context.Context, userID string, destinations []geo.Destination) ([]TravelRecommendation, error) {
	if r.directory == nil {
		return nil, fmt.Errorf("global discovery is not configured")
	}
	start := time.Now()

	typeNames, err := r.requesterTypeNames(ctx, userID)
	if err != nil {
		return nil, err
	}

	var homeCoords *geo.Coordinates
	if conn, err := r.directory.GlobalConnection(ctx, userID); err != nil {
		return nil, fmt.Errorf("fetching requester discovery record: %w", err)
	} else if conn != nil {
		homeCoords = conn.Location.Coordinates
	}

	connections, err := r.directory.OpenConnections(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching open connections: %w", err)
	}

	results := make([]TravelRecommendation, 0, len(destinations))
	total := 0
	for _, dest := range destinations {
		experts := r.expertsFor(dest, connections, userID, typeNames, homeCoords)
		total += len(experts)
		results = append(results, TravelRecommendation{Destination: dest, Experts: experts})
	}

	metrics.RecordRecommendation("travel", time.Since(start), total)
	return results, nil
}

// requesterTypeNames resolves the taste-type names the requester scores
// meaningfully on. An absent or unconfirmed profile yields nil, which
// disables the type-overlap filter rather than failing the request.
func (r *Ranker) requesterTypeNames(ctx context.Context, userID string) ([]string, error) {
	profile, err := r.profiles.TasteProfile(ctx, userID)
	if errors.Is(err, taste.ErrProfileNotFound) || errors.Is(err, taste.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetching requester profile: %w", err)
	}
	if !profile.ConfirmedByUser {
		return nil, nil
	}
	return profile.TypeNamesAbove(r.catalog, r.limits.TravelTypePercentMin), nil
}

// expertsFor selects and orders the experts for one destination.
func (r *Ranker) expertsFor(dest geo.Destination, connections []*taste.GlobalConnection, userID string, typeNames []string, homeCoords *geo.Coordinates) []TravelExpert {
	var experts []TravelExpert
	for _, conn := range connections {
		if conn.UserID == userID || !conn.Preferences.OpenToTravelers {
			continue
		}
		if !conn.Location.Matches(dest.Country, dest.City) {
			continue
		}
		if len(conn.LocalRecommendations) == 0 {
			continue
		}

		recs := matchingRecommendations(conn.LocalRecommendations, typeNames)
		if len(recs) == 0 {
			continue
		}
		if len(recs) > r.limits.TravelMaxRecsPerExpert {
			recs = recs[:r.limits.TravelMaxRecsPerExpert]
		}

		distance := -1.0
		if homeCoords != nil && !homeCoords.IsUnknown() &&
			conn.Location.Coordinates != nil && !conn.Location.Coordinates.IsUnknown() {
			distance = geo.RoundTo2Decimals(geo.HaversineKm(*homeCoords, *conn.Location.Coordinates))
		}

		experts = append(experts, TravelExpert{
			UserID:          conn.UserID,
			Location:        conn.Location,
			DistanceKm:      distance,
			Recommendations: recs,
		})
	}

	// Nearest experts first when distances are known; unknown distances
	// sink to the end. Remaining ties favor the better-stocked expert,
	// then ascending user ID.
	sort.Slice(experts, func(i, j int) bool {
		di, dj := experts[i].DistanceKm, experts[j].DistanceKm
		if di >= 0 && dj >= 0 && di != dj {
			return di < dj
		}
		if (di >= 0) != (dj >= 0) {
			return di >= 0
		}
		if len(experts[i].Recommendations) != len(experts[j].Recommendations) {
			return len(experts[i].Recommendations) > len(experts[j].Recommendations)
		}
		return experts[i].UserID < experts[j].UserID
	})

	if len(experts) > r.limits.TravelMaxExperts {
		experts = experts[:r.limits.TravelMaxExperts]
	}
	return experts
}

// matchingRecommendations keeps tips aimed at the requester's types. A nil
// typeNames (anonymous or unconfirmed requester) keeps everything.
func matchingRecommendations(recs []taste.LocalRecommendation, typeNames []string) []taste.LocalRecommendation {
	if typeNames == nil {
		out := make([]taste.LocalRecommendation, len(recs))
		copy(out, recs)
		return out
	}

	names := make(map[string]struct{}, len(typeNames))
	for _, n := range typeNames {
		names[n] = struct{}{}
	}

	var out []taste.LocalRecommendation
	for _, rec := range recs {
		// Untargeted tips are for everyone.
		if len(rec.RecommendedForTypeNames) == 0 {
			out = append(out, rec)
			continue
		}
		for _, n := range rec.RecommendedForTypeNames {
			if _, ok := names[n]; ok {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

// LocalExpertsNear returns globally discoverable users within radiusKm of
// the given point, nearest first. Backed by a spatial index rebuilt from
// the directory at most once per TTL window.
func (r *Ranker) LocalExpertsNear(ctx context.Context, center geo.Coordinates, radiusKm float64) ([]cache.Neighbor, error) {
	if r.directory == nil {
		return nil, fmt.Errorf("global discovery is not configured")
	}
	index, err := r.expertIndex(ctx)
	if err != nil {
		return nil, err
	}
	return index.QueryNearby(center, radiusKm), nil
}

// expertIndex returns the spatial index, rebuilding it when stale.
func (r *Ranker) expertIndex(ctx context.Context) (*cache.SpatialHash, error) {
	r.expertsMu.Lock()
	defer r.expertsMu.Unlock()

	if time.Since(r.expertsBuilt) < r.expertsTTL {
		metrics.CacheHits.WithLabelValues("spatial").Inc()
		return r.experts, nil
	}
	metrics.CacheMisses.WithLabelValues("spatial").Inc()

	connections, err := r.directory.OpenConnections(ctx)
	if err != nil {
		return nil, fmt.Errorf("rebuilding expert index: %w", err)
	}

	index := cache.NewSpatialHash(50)
	for _, conn := range connections {
		if conn.Location.Coordinates == nil || conn.Location.Coordinates.IsUnknown() {
			continue
		}
		index.Insert(conn.UserID, *conn.Location.Coordinates)
	}

	r.experts = index
	r.expertsBuilt = time.Now()
	metrics.CacheSize.WithLabelValues("spatial").Set(float64(index.Len()))

	r.logger.Debug().Int("experts", index.Len()).Msg("Expert spatial index rebuilt")
	return index, nil
}
