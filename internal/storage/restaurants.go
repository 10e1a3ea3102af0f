// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// FindCandidates returns catalog restaurants matching the filter, best rated
// first. Zero filter fields mean no constraint; an empty pool is a valid
// result.
func (s *Store) FindCandidates(ctx context.Context, filter taste.CandidateFilter) ([]taste.Restaurant, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.City != "" {
		conditions = append(conditions, "lower(city) = lower(?)")
		args = append(args, filter.City)
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, c := range filter.Categories {
			placeholders[i] = "?"
			args = append(args, string(c))
		}
		conditions = append(conditions, fmt.Sprintf("category IN (%s)", strings.Join(placeholders, ", ")))
	}
	if filter.MaxPriceBand != taste.PriceBandUnknown {
		conditions = append(conditions, "price_band <= ?")
		args = append(args, int(filter.MaxPriceBand))
	}

	query := `SELECT id, name, category, price_band, tags, atmosphere_tags, average_rating, city
		FROM restaurants`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY average_rating DESC, id"

	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, query, args...)
	observe("select", "restaurants", start, err)
	if err != nil {
		return nil, fmt.Errorf("querying restaurant candidates: %w", err)
	}
	defer closeQuietly(rows)

	var restaurants []taste.Restaurant
	for rows.Next() {
		var (
			r              taste.Restaurant
			tags, atmoTags string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Category, &r.PriceBand, &tags,
			&atmoTags, &r.AverageRating, &r.City); err != nil {
			return nil, fmt.Errorf("scanning restaurant: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &r.Tags); err != nil {
			return nil, fmt.Errorf("decoding restaurant tags: %w", err)
		}
		if err := json.Unmarshal([]byte(atmoTags), &r.AtmosphereTags); err != nil {
			return nil, fmt.Errorf("decoding restaurant atmosphere tags: %w", err)
		}
		restaurants = append(restaurants, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating restaurants: %w", err)
	}
	return restaurants, nil
}

// SaveRestaurant upserts one catalog restaurant.
func (s *Store) SaveRestaurant(ctx context.Context, r taste.Restaurant) error {
	tags, err := json.Marshal(emptyIfNil(r.Tags))
	if err != nil {
		return fmt.Errorf("encoding restaurant tags: %w", err)
	}
	atmoTags, err := json.Marshal(emptyIfNil(r.AtmosphereTags))
	if err != nil {
		return fmt.Errorf("encoding restaurant atmosphere tags: %w", err)
	}

	start := time.Now()
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO restaurants
			(id, name, category, price_band, tags, atmosphere_tags, average_rating, city)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			price_band = EXCLUDED.price_band,
			tags = EXCLUDED.tags,
			atmosphere_tags = EXCLUDED.atmosphere_tags,
			average_rating = EXCLUDED.average_rating,
			city = EXCLUDED.city`,
		r.ID, r.Name, r.Category, int(r.PriceBand), string(tags), string(atmoTags),
		r.AverageRating, r.City)
	observe("upsert", "restaurants", start, err)
	if err != nil {
		return fmt.Errorf("saving restaurant %s: %w", r.ID, err)
	}
	return nil
}
