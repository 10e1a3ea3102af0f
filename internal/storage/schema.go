// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package storage

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core tables and indexes.
func (s *Store) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := s.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("executing schema statement: %s: %w", query, err)
		}
	}
	return nil
}

func tableCreationQueries() []string {
	return []string{
		// Taste profiles are read and written as whole documents, so the
		// vector lives in a JSON column. Confirmation and generation time
		// get their own columns for the candidate-pool query.
		`CREATE TABLE IF NOT EXISTS taste_profiles (
			user_id TEXT PRIMARY KEY,
			confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			generated_at TIMESTAMP NOT NULL,
			document TEXT NOT NULL
		)`,

		// One row per visit; atmosphere tags are a JSON array.
		`CREATE TABLE IF NOT EXISTS restaurant_visits (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			restaurant_id TEXT NOT NULL,
			category TEXT NOT NULL,
			price_band INTEGER NOT NULL DEFAULT 0,
			atmosphere_tags TEXT NOT NULL DEFAULT '[]',
			rating DOUBLE NOT NULL DEFAULT 0,
			visited_at TIMESTAMP NOT NULL
		)`,

		// Restaurant catalog used for recommendation candidate queries.
		`CREATE TABLE IF NOT EXISTS restaurants (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			price_band INTEGER NOT NULL DEFAULT 0,
			tags TEXT NOT NULL DEFAULT '[]',
			atmosphere_tags TEXT NOT NULL DEFAULT '[]',
			average_rating DOUBLE NOT NULL DEFAULT 0,
			city TEXT NOT NULL DEFAULT ''
		)`,

		// Playlists carry their restaurant entries as a JSON document;
		// the counters and visibility flag are queried directly.
		`CREATE TABLE IF NOT EXISTS playlists (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '[]',
			author_id TEXT NOT NULL,
			public BOOLEAN NOT NULL DEFAULT FALSE,
			like_count INTEGER NOT NULL DEFAULT 0,
			view_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL,
			restaurants TEXT NOT NULL DEFAULT '[]'
		)`,

		`CREATE TABLE IF NOT EXISTS playlist_likes (
			user_id TEXT NOT NULL,
			playlist_id TEXT NOT NULL,
			liked_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, playlist_id)
		)`,

		`CREATE TABLE IF NOT EXISTS expertise_scores (
			user_id TEXT NOT NULL,
			category TEXT NOT NULL,
			points INTEGER NOT NULL DEFAULT 0,
			level INTEGER NOT NULL DEFAULT 0,
			restaurants_added INTEGER NOT NULL DEFAULT 0,
			lists_created INTEGER NOT NULL DEFAULT 0,
			total_likes INTEGER NOT NULL DEFAULT 0,
			total_saves INTEGER NOT NULL DEFAULT 0,
			category_rank INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, category)
		)`,

		// Global discovery records are opt-in whole documents.
		`CREATE TABLE IF NOT EXISTS global_connections (
			user_id TEXT PRIMARY KEY,
			open_to_travelers BOOLEAN NOT NULL DEFAULT FALSE,
			document TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_visits_user ON restaurant_visits(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_restaurants_category ON restaurants(category)`,
		`CREATE INDEX IF NOT EXISTS idx_playlists_public ON playlists(public)`,
		`CREATE INDEX IF NOT EXISTS idx_playlist_likes_user ON playlist_likes(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expertise_category ON expertise_scores(category)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_confirmed ON taste_profiles(confirmed)`,
	}
}
