// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package expertise tracks per-category contribution points, levels, and
// leaderboard ranks. Points are strictly monotonic; the rank field is a
// derived total order refreshed by a decoupled batch pass, so reads treat
// it as approximately current rather than linearizable.
package expertise

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/chonamwoo/bobjido-sub005/internal/logging"
	"github.com/chonamwoo/bobjido-sub005/internal/metrics"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// Action is a point-earning event type.
type Action string

const (
	ActionAddRestaurant Action = "ADD_RESTAURANT"
	ActionCreateList    Action = "CREATE_LIST"
	ActionReceiveLike   Action = "RECEIVE_LIKE"
	ActionReceiveSave   Action = "RECEIVE_SAVE"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionAddRestaurant, ActionCreateList, ActionReceiveLike, ActionReceiveSave:
		return true
	default:
		return false
	}
}

// ErrScoreNotFound is returned by stores when a (user, category) pair has
// never earned points.
var ErrScoreNotFound = errors.New("expertise score not found")

// PointsPerLevel is the fixed level step: level = points / 100.
const PointsPerLevel = 100

// Score is the per-(user, category) expertise record.
type Score struct {
	UserID   string         `json:"user_id"`
	Category taste.Category `json:"category"`

	// Points never decrease. Level is always Points / PointsPerLevel.
	Points int `json:"points"`
	Level  int `json:"level"`

	RestaurantsAdded int `json:"restaurants_added"`
	ListsCreated     int `json:"lists_created"`
	TotalLikes       int `json:"total_likes"`
	TotalSaves       int `json:"total_saves"`

	// Rank is 1-based within the category, valid as of the last recompute
	// pass. Zero means never ranked.
	Rank int `json:"rank"`

	UpdatedAt time.Time `json:"updated_at"`
}

// PointValues centralizes the per-action point awards.
type PointValues struct {
	AddRestaurant int `json:"add_restaurant" koanf:"add_restaurant"`
	CreateList    int `json:"create_list" koanf:"create_list"`
	PerLike       int `json:"per_like" koanf:"per_like"`
	PerSave       int `json:"per_save" koanf:"per_save"`
}

// DefaultPointValues returns the production point schedule.
func DefaultPointValues() PointValues {
	return PointValues{
		AddRestaurant: 10,
		CreateList:    15,
		PerLike:       2,
		PerSave:       3,
	}
}

// Validate checks that no award is negative, which would break points
// monotonicity.
func (p PointValues) Validate() error {
	if p.AddRestaurant < 0 || p.CreateList < 0 || p.PerLike < 0 || p.PerSave < 0 {
		return fmt.Errorf("point values must be non-negative")
	}
	return nil
}

// Store persists expertise scores.
type Store interface {
	// ExpertiseScore returns the record for (userID, category), or
	// ErrScoreNotFound.
	ExpertiseScore(ctx context.Context, userID string, category taste.Category) (*Score, error)

	// SaveExpertiseScore overwrites the record.
	SaveExpertiseScore(ctx context.Context, score *Score) error

	// CategoryScores returns every record with nonzero points in the
	// category.
	CategoryScores(ctx context.Context, category taste.Category) ([]*Score, error)
}

// Ranker applies scored actions and maintains category leaderboards. Rank
// recomputation is decoupled from the write path: writes only mark the
// category dirty, and RecomputeDirty (run on a schedule or on demand) does
// the O(N) pass.
type Ranker struct {
	points PointValues
	store  Store
	logger zerolog.Logger

	mu    sync.Mutex
	dirty map[taste.Category]struct{}
}

// NewRanker creates a Ranker.
func NewRanker(points PointValues, store Store) (*Ranker, error) {
	if err := points.Validate(); err != nil {
		return nil, fmt.Errorf("invalid point values: %w", err)
	}
	if store == nil {
		return nil, fmt.Errorf("expertise store is required")
	}
	return &Ranker{
		points: points,
		store:  store,
		logger: logging.With().Str("component", "expertise").Logger(),
		dirty:  make(map[taste.Category]struct{}),
	}, nil
}

// UpdateExpertiseScore applies one scored action and persists the result.
// value scales the like/save actions (number of likes or saves received)
// and is clamped to at least 1; add/create actions always count once.
// The category leaderboard is marked dirty, not recomputed inline.
func (r *Ranker) UpdateExpertiseScore(ctx context.Context, userID string, category taste.Category, action Action, value int) (*Score, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", taste.ErrCategoryNotFound, category)
	}
	if !action.Valid() {
		return nil, fmt.Errorf("unknown expertise action %q", action)
	}
	if value < 1 {
		value = 1
	}

	score, err := r.store.ExpertiseScore(ctx, userID, category)
	if errors.Is(err, ErrScoreNotFound) {
		score = &Score{UserID: userID, Category: category}
	} else if err != nil {
		return nil, fmt.Errorf("fetching expertise score: %w", err)
	}

	previousLevel := score.Level

	switch action {
	case ActionAddRestaurant:
		score.Points += r.points.AddRestaurant
		score.RestaurantsAdded++
	case ActionCreateList:
		score.Points += r.points.CreateList
		score.ListsCreated++
	case ActionReceiveLike:
		score.Points += r.points.PerLike * value
		score.TotalLikes += value
	case ActionReceiveSave:
		score.Points += r.points.PerSave * value
		score.TotalSaves += value
	}

	score.Level = score.Points / PointsPerLevel
	score.UpdatedAt = time.Now().UTC()

	if err := r.store.SaveExpertiseScore(ctx, score); err != nil {
		return nil, fmt.Errorf("persisting expertise score: %w", err)
	}

	r.markDirty(category)
	metrics.ExpertiseActionsRecorded.WithLabelValues(string(action)).Inc()
	if score.Level > previousLevel {
		metrics.ExpertiseLevelUps.Inc()
		r.logger.Info().
			Str("user_id", userID).
			Str("category", category.String()).
			Int("level", score.Level).
			Msg("Expertise level up")
	}

	return score, nil
}

// RecomputeCategoryRanks runs a full leaderboard pass for one category:
// every nonzero score is fetched, ordered, and written back with its
// 1-based rank. Ordering is deterministic: level desc, then points desc,
// then user ID asc.
func (r *Ranker) RecomputeCategoryRanks(ctx context.Context, category taste.Category) error {
	if !category.Valid() {
		return fmt.Errorf("%w: %q", taste.ErrCategoryNotFound, category)
	}

	start := time.Now()
	err := r.recompute(ctx, category)
	metrics.RecordRankRecompute(time.Since(start), err)
	return err
}

func (r *Ranker) recompute(ctx context.Context, category taste.Category) error {
	scores, err := r.store.CategoryScores(ctx, category)
	if err != nil {
		return fmt.Errorf("fetching category scores: %w", err)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].Level != scores[j].Level {
			return scores[i].Level > scores[j].Level
		}
		if scores[i].Points != scores[j].Points {
			return scores[i].Points > scores[j].Points
		}
		return scores[i].UserID < scores[j].UserID
	})

	for i, score := range scores {
		if score.Rank == i+1 {
			continue
		}
		score.Rank = i + 1
		if err := r.store.SaveExpertiseScore(ctx, score); err != nil {
			return fmt.Errorf("writing rank for %s: %w", score.UserID, err)
		}
	}

	r.logger.Debug().
		Str("category", category.String()).
		Int("users", len(scores)).
		Msg("Category ranks recomputed")
	return nil
}

// RecomputeDirty recomputes every category marked dirty since the last
// pass. Categories that fail stay dirty for the next pass.
func (r *Ranker) RecomputeDirty(ctx context.Context) error {
	r.mu.Lock()
	pending := make([]taste.Category, 0, len(r.dirty))
	for c := range r.dirty {
		pending = append(pending, c)
	}
	r.dirty = make(map[taste.Category]struct{})
	r.mu.Unlock()

	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })

	var firstErr error
	for _, category := range pending {
		if err := r.RecomputeCategoryRanks(ctx, category); err != nil {
			r.markDirty(category)
			if firstErr == nil {
				firstErr = err
			}
			r.logger.Error().Err(err).Str("category", category.String()).Msg("Rank recompute failed")
		}
	}
	return firstErr
}

// DirtyCategories returns the categories awaiting a recompute pass.
func (r *Ranker) DirtyCategories() []taste.Category {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]taste.Category, 0, len(r.dirty))
	for c := range r.dirty {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Ranker) markDirty(category taste.Category) {
	r.mu.Lock()
	r.dirty[category] = struct{}{}
	r.mu.Unlock()
}
