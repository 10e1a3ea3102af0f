// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package storage

import (
	"context"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// VisitedRestaurants returns the user's visit history, oldest first. An
// empty slice means the user has no visits.
func (s *Store) VisitedRestaurants(ctx context.Context, userID string) ([]taste.VisitedRestaurant, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, `
		SELECT restaurant_id, category, price_band, atmosphere_tags, rating
		FROM restaurant_visits
		WHERE user_id = ?
		ORDER BY visited_at, id`, userID)
	observe("select", "restaurant_visits", start, err)
	if err != nil {
		return nil, fmt.Errorf("querying visits for %s: %w", userID, err)
	}
	defer closeQuietly(rows)

	var visits []taste.VisitedRestaurant
	for rows.Next() {
		var (
			v    taste.VisitedRestaurant
			tags string
		)
		if err := rows.Scan(&v.RestaurantID, &v.Category, &v.PriceBand, &tags, &v.Rating); err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &v.AtmosphereTags); err != nil {
			return nil, fmt.Errorf("decoding visit tags: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visits: %w", err)
	}
	return visits, nil
}

// RecordVisit appends one visit to the user's history.
func (s *Store) RecordVisit(ctx context.Context, userID string, visit taste.VisitedRestaurant, visitedAt time.Time) error {
	tags, err := json.Marshal(emptyIfNil(visit.AtmosphereTags))
	if err != nil {
		return fmt.Errorf("encoding visit tags: %w", err)
	}

	start := time.Now()
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO restaurant_visits
			(id, user_id, restaurant_id, category, price_band, atmosphere_tags, rating, visited_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New(), userID, visit.RestaurantID, visit.Category, visit.PriceBand,
		string(tags), visit.Rating, visitedAt)
	observe("insert", "restaurant_visits", start, err)
	if err != nil {
		return fmt.Errorf("recording visit for %s: %w", userID, err)
	}
	return nil
}

// LikedPlaylistRestaurants flattens the restaurant entries of every playlist
// the user has liked.
func (s *Store) LikedPlaylistRestaurants(ctx context.Context, userID string) ([]taste.PlaylistRestaurant, error) {
	playlists, err := s.LikedPlaylists(ctx, userID)
	if err != nil {
		return nil, err
	}
	var restaurants []taste.PlaylistRestaurant
	for _, p := range playlists {
		restaurants = append(restaurants, p.Restaurants...)
	}
	return restaurants, nil
}

func emptyIfNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
