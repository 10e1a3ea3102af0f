// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// TasteProfile returns the stored profile for userID. A known user who has
// never been analyzed gets taste.ErrProfileNotFound; a user ID with no
// record anywhere in the store gets taste.ErrUserNotFound.
func (s *Store) TasteProfile(ctx context.Context, userID string) (*taste.TasteProfile, error) {
	start := time.Now()

	var doc string
	err := s.conn.QueryRowContext(ctx,
		`SELECT document FROM taste_profiles WHERE user_id = ?`, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		observe("select", "taste_profiles", start, nil)
		known, err := s.userKnown(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !known {
			return nil, taste.ErrUserNotFound
		}
		return nil, taste.ErrProfileNotFound
	}
	if err != nil {
		observe("select", "taste_profiles", start, err)
		return nil, fmt.Errorf("querying taste profile: %w", err)
	}
	observe("select", "taste_profiles", start, nil)

	var profile taste.TasteProfile
	if err := json.Unmarshal([]byte(doc), &profile); err != nil {
		return nil, fmt.Errorf("decoding taste profile for %s: %w", userID, err)
	}
	return &profile, nil
}

// userKnown reports whether the user has left any footprint: a visit, a
// playlist like, an expertise score, or a discovery record.
func (s *Store) userKnown(ctx context.Context, userID string) (bool, error) {
	start := time.Now()
	var known bool
	err := s.conn.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM restaurant_visits WHERE user_id = ?)
			OR EXISTS (SELECT 1 FROM playlist_likes WHERE user_id = ?)
			OR EXISTS (SELECT 1 FROM expertise_scores WHERE user_id = ?)
			OR EXISTS (SELECT 1 FROM global_connections WHERE user_id = ?)`,
		userID, userID, userID, userID).Scan(&known)
	observe("select", "taste_profiles", start, err)
	if err != nil {
		return false, fmt.Errorf("checking user footprint for %s: %w", userID, err)
	}
	return known, nil
}

// SaveTasteProfile overwrites the stored profile document.
func (s *Store) SaveTasteProfile(ctx context.Context, profile *taste.TasteProfile) error {
	doc, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encoding taste profile for %s: %w", profile.UserID, err)
	}

	start := time.Now()
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO taste_profiles (user_id, confirmed, generated_at, document)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			confirmed = EXCLUDED.confirmed,
			generated_at = EXCLUDED.generated_at,
			document = EXCLUDED.document`,
		profile.UserID, profile.ConfirmedByUser, profile.GeneratedAt, string(doc))
	observe("upsert", "taste_profiles", start, err)
	if err != nil {
		return fmt.Errorf("saving taste profile for %s: %w", profile.UserID, err)
	}
	return nil
}

// ConfirmedProfiles returns every confirmed profile, the matching candidate
// pool.
func (s *Store) ConfirmedProfiles(ctx context.Context) ([]*taste.TasteProfile, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT document FROM taste_profiles WHERE confirmed ORDER BY user_id`)
	observe("select", "taste_profiles", start, err)
	if err != nil {
		return nil, fmt.Errorf("querying confirmed profiles: %w", err)
	}
	defer closeQuietly(rows)

	var profiles []*taste.TasteProfile
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning taste profile: %w", err)
		}
		var profile taste.TasteProfile
		if err := json.Unmarshal([]byte(doc), &profile); err != nil {
			return nil, fmt.Errorf("decoding taste profile: %w", err)
		}
		profiles = append(profiles, &profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating confirmed profiles: %w", err)
	}
	return profiles, nil
}
