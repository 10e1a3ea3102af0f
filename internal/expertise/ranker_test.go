// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package expertise

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

type fakeStore struct {
	scores map[string]*Score // keyed by userID + "/" + category
}

func newFakeStore() *fakeStore {
	return &fakeStore{scores: make(map[string]*Score)}
}

func key(userID string, category taste.Category) string {
	return userID + "/" + string(category)
}

func (s *fakeStore) ExpertiseScore(_ context.Context, userID string, category taste.Category) (*Score, error) {
	score, ok := s.scores[key(userID, category)]
	if !ok {
		return nil, ErrScoreNotFound
	}
	clone := *score
	return &clone, nil
}

func (s *fakeStore) SaveExpertiseScore(_ context.Context, score *Score) error {
	clone := *score
	s.scores[key(score.UserID, score.Category)] = &clone
	return nil
}

func (s *fakeStore) CategoryScores(_ context.Context, category taste.Category) ([]*Score, error) {
	var out []*Score
	for _, score := range s.scores {
		if score.Category == category && score.Points > 0 {
			clone := *score
			out = append(out, &clone)
		}
	}
	return out, nil
}

func newTestRanker(t *testing.T) (*Ranker, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	r, err := NewRanker(DefaultPointValues(), store)
	if err != nil {
		t.Fatalf("NewRanker: %v", err)
	}
	return r, store
}

func TestUpdateExpertiseScore_PointTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		action     Action
		value      int
		wantPoints int
		check      func(*Score) bool
	}{
		{"add restaurant", ActionAddRestaurant, 1, 10, func(s *Score) bool { return s.RestaurantsAdded == 1 }},
		{"create list", ActionCreateList, 1, 15, func(s *Score) bool { return s.ListsCreated == 1 }},
		{"receive likes scale by value", ActionReceiveLike, 4, 8, func(s *Score) bool { return s.TotalLikes == 4 }},
		{"receive saves scale by value", ActionReceiveSave, 3, 9, func(s *Score) bool { return s.TotalSaves == 3 }},
		{"zero value clamps to one", ActionReceiveLike, 0, 2, func(s *Score) bool { return s.TotalLikes == 1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r, _ := newTestRanker(t)
			score, err := r.UpdateExpertiseScore(context.Background(), "u1", taste.CategoryKorean, tt.action, tt.value)
			if err != nil {
				t.Fatalf("UpdateExpertiseScore: %v", err)
			}
			if score.Points != tt.wantPoints {
				t.Errorf("points = %d, want %d", score.Points, tt.wantPoints)
			}
			if !tt.check(score) {
				t.Errorf("secondary counter wrong: %+v", score)
			}
		})
	}
}

func TestUpdateExpertiseScore_TenAddsReachLevelOne(t *testing.T) {
	t.Parallel()

	r, _ := newTestRanker(t)
	var score *Score
	var err error
	for i := 0; i < 10; i++ {
		score, err = r.UpdateExpertiseScore(context.Background(), "u1", taste.CategoryJapanese, ActionAddRestaurant, 1)
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	if score.Points != 100 || score.Level != 1 {
		t.Errorf("points/level = %d/%d, want 100/1", score.Points, score.Level)
	}
	if score.RestaurantsAdded != 10 {
		t.Errorf("restaurantsAdded = %d, want 10", score.RestaurantsAdded)
	}
}

func TestUpdateExpertiseScore_MonotonicPoints(t *testing.T) {
	t.Parallel()

	r, _ := newTestRanker(t)
	actions := []struct {
		action Action
		value  int
	}{
		{ActionAddRestaurant, 1},
		{ActionReceiveLike, 5},
		{ActionCreateList, 1},
		{ActionReceiveSave, 2},
		{ActionReceiveLike, 0},
	}

	prev := 0
	for i, a := range actions {
		score, err := r.UpdateExpertiseScore(context.Background(), "u1", taste.CategoryKorean, a.action, a.value)
		if err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
		if score.Points < prev {
			t.Fatalf("points decreased: %d -> %d", prev, score.Points)
		}
		if score.Level != score.Points/PointsPerLevel {
			t.Fatalf("level %d != floor(%d/100)", score.Level, score.Points)
		}
		prev = score.Points
	}
}

func TestUpdateExpertiseScore_InvalidInputs(t *testing.T) {
	t.Parallel()

	r, _ := newTestRanker(t)

	_, err := r.UpdateExpertiseScore(context.Background(), "u1", taste.Category("피자"), ActionAddRestaurant, 1)
	if !errors.Is(err, taste.ErrCategoryNotFound) {
		t.Errorf("unknown category err = %v, want ErrCategoryNotFound", err)
	}

	if _, err := r.UpdateExpertiseScore(context.Background(), "u1", taste.CategoryKorean, Action("STEAL_POINTS"), 1); err == nil {
		t.Error("unknown action accepted")
	}
}

func TestUpdateExpertiseScore_MarksCategoryDirty(t *testing.T) {
	t.Parallel()

	r, _ := newTestRanker(t)
	if _, err := r.UpdateExpertiseScore(context.Background(), "u1", taste.CategoryKorean, ActionAddRestaurant, 1); err != nil {
		t.Fatalf("UpdateExpertiseScore: %v", err)
	}
	if got := r.DirtyCategories(); !reflect.DeepEqual(got, []taste.Category{taste.CategoryKorean}) {
		t.Errorf("dirty = %v, want [한식]", got)
	}
}

func TestRecomputeCategoryRanks_DeterministicOrder(t *testing.T) {
	t.Parallel()

	r, store := newTestRanker(t)
	ctx := context.Background()

	seed := []*Score{
		{UserID: "c", Category: taste.CategoryKorean, Points: 250, Level: 2},
		{UserID: "a", Category: taste.CategoryKorean, Points: 210, Level: 2},
		// Same level and points as "a": user ID breaks the tie.
		{UserID: "b", Category: taste.CategoryKorean, Points: 210, Level: 2},
		{UserID: "d", Category: taste.CategoryKorean, Points: 90, Level: 0},
		// Different category, must not be touched.
		{UserID: "e", Category: taste.CategoryJapanese, Points: 500, Level: 5},
	}
	for _, s := range seed {
		if err := store.SaveExpertiseScore(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	if err := r.RecomputeCategoryRanks(ctx, taste.CategoryKorean); err != nil {
		t.Fatalf("RecomputeCategoryRanks: %v", err)
	}

	wantRanks := map[string]int{"c": 1, "a": 2, "b": 3, "d": 4}
	for userID, want := range wantRanks {
		got := store.scores[key(userID, taste.CategoryKorean)].Rank
		if got != want {
			t.Errorf("rank[%s] = %d, want %d", userID, got, want)
		}
	}
	if got := store.scores[key("e", taste.CategoryJapanese)].Rank; got != 0 {
		t.Errorf("other category rank touched: %d", got)
	}
}

func TestRecomputeDirty_ClearsDirtySet(t *testing.T) {
	t.Parallel()

	r, _ := newTestRanker(t)
	ctx := context.Background()

	if _, err := r.UpdateExpertiseScore(ctx, "u1", taste.CategoryKorean, ActionAddRestaurant, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := r.UpdateExpertiseScore(ctx, "u2", taste.CategoryCafe, ActionCreateList, 1); err != nil {
		t.Fatal(err)
	}

	if err := r.RecomputeDirty(ctx); err != nil {
		t.Fatalf("RecomputeDirty: %v", err)
	}
	if got := r.DirtyCategories(); len(got) != 0 {
		t.Errorf("dirty after recompute = %v, want empty", got)
	}
}

func TestBadgesForLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level int
		want  int
	}{
		{0, 0},
		{1, 1},
		{4, 1},
		{5, 2},
		{10, 3},
		{20, 4},
		{50, 5},
		{99, 5},
	}
	for _, tt := range tests {
		if got := BadgesForLevel(tt.level); len(got) != tt.want {
			t.Errorf("BadgesForLevel(%d) returned %d badges, want %d", tt.level, len(got), tt.want)
		}
	}

	full := BadgesForLevel(50)
	if full[0] != "새싹 미식가" || full[len(full)-1] != "전설의 미식가" {
		t.Errorf("badge order wrong: %v", full)
	}
}
