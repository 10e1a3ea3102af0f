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

	"github.com/chonamwoo/bobjido-sub005/internal/expertise"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

const expertiseColumns = `user_id, category, points, level, restaurants_added,
	lists_created, total_likes, total_saves, category_rank, updated_at`

// ExpertiseScore returns the record for (userID, category), or
// expertise.ErrScoreNotFound.
func (s *Store) ExpertiseScore(ctx context.Context, userID string, category taste.Category) (*expertise.Score, error) {
	start := time.Now()
	row := s.conn.QueryRowContext(ctx, `
		SELECT `+expertiseColumns+`
		FROM expertise_scores
		WHERE user_id = ? AND category = ?`, userID, string(category))

	score, err := scanExpertiseScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		observe("select", "expertise_scores", start, nil)
		return nil, expertise.ErrScoreNotFound
	}
	observe("select", "expertise_scores", start, err)
	if err != nil {
		return nil, fmt.Errorf("querying expertise score: %w", err)
	}
	return score, nil
}

// SaveExpertiseScore overwrites the record.
func (s *Store) SaveExpertiseScore(ctx context.Context, score *expertise.Score) error {
	start := time.Now()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO expertise_scores
			(user_id, category, points, level, restaurants_added, lists_created,
			 total_likes, total_saves, category_rank, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, category) DO UPDATE SET
			points = EXCLUDED.points,
			level = EXCLUDED.level,
			restaurants_added = EXCLUDED.restaurants_added,
			lists_created = EXCLUDED.lists_created,
			total_likes = EXCLUDED.total_likes,
			total_saves = EXCLUDED.total_saves,
			category_rank = EXCLUDED.category_rank,
			updated_at = EXCLUDED.updated_at`,
		score.UserID, string(score.Category), score.Points, score.Level,
		score.RestaurantsAdded, score.ListsCreated, score.TotalLikes,
		score.TotalSaves, score.Rank, score.UpdatedAt)
	observe("upsert", "expertise_scores", start, err)
	if err != nil {
		return fmt.Errorf("saving expertise score for %s/%s: %w", score.UserID, score.Category, err)
	}
	return nil
}

// CategoryScores returns every record with nonzero points in the category.
func (s *Store) CategoryScores(ctx context.Context, category taste.Category) ([]*expertise.Score, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+expertiseColumns+`
		FROM expertise_scores
		WHERE category = ? AND points > 0
		ORDER BY user_id`, string(category))
	observe("select", "expertise_scores", start, err)
	if err != nil {
		return nil, fmt.Errorf("querying category scores: %w", err)
	}
	defer closeQuietly(rows)

	var scores []*expertise.Score
	for rows.Next() {
		score, err := scanExpertiseScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expertise score: %w", err)
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category scores: %w", err)
	}
	return scores, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpertiseScore(row rowScanner) (*expertise.Score, error) {
	var score expertise.Score
	if err := row.Scan(&score.UserID, &score.Category, &score.Points, &score.Level,
		&score.RestaurantsAdded, &score.ListsCreated, &score.TotalLikes,
		&score.TotalSaves, &score.Rank, &score.UpdatedAt); err != nil {
		return nil, err
	}
	return &score, nil
}
