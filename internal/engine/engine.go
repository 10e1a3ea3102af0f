// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package engine assembles the taste analysis, matching, typing,
// recommendation, and expertise components into one embeddable facade.
// The embedding application (or cmd/engine) talks to this type; the
// components stay independently testable.
package engine

import (
	"context"

	"github.com/chonamwoo/bobjido-sub005/internal/cache"
	"github.com/chonamwoo/bobjido-sub005/internal/expertise"
	"github.com/chonamwoo/bobjido-sub005/internal/geo"
	"github.com/chonamwoo/bobjido-sub005/internal/recommend"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
	"github.com/chonamwoo/bobjido-sub005/internal/taste/match"
	"github.com/chonamwoo/bobjido-sub005/internal/taste/typer"
	"github.com/chonamwoo/bobjido-sub005/internal/taste/vector"
)

// Providers bundles the storage interfaces the engine consumes. A single
// *storage.Store satisfies all of them.
type Providers struct {
	History   taste.HistoryProvider
	Catalog   taste.CatalogProvider
	Playlists taste.PlaylistProvider
	Profiles  taste.ProfileStore
	Directory taste.DirectoryProvider
	Expertise expertise.Store
}

// Settings bundles the tunable weight tables.
type Settings struct {
	Scoring   taste.ScoringWeights
	Match     taste.MatchBonuses
	Typer     taste.TyperWeights
	Recommend taste.RecommendLimits
	Points    expertise.PointValues
}

// DefaultSettings returns the production weight tables.
func DefaultSettings() Settings {
	return Settings{
		Scoring:   taste.DefaultScoringWeights(),
		Match:     taste.DefaultMatchBonuses(),
		Typer:     taste.DefaultTyperWeights(),
		Recommend: taste.DefaultRecommendLimits(),
		Points:    expertise.DefaultPointValues(),
	}
}

// Engine is the assembled facade.
type Engine struct {
	catalog *taste.Catalog

	builder     *vector.Builder
	matcher     *match.Matcher
	typer       *typer.Typer
	recommender *recommend.Ranker
	expertise   *expertise.Ranker
}

// New wires the components. The catalog is shared so all score vectors
// align.
func New(catalog *taste.Catalog, settings Settings, providers Providers) (*Engine, error) {
	builder, err := vector.NewBuilder(catalog, settings.Scoring, providers.History, providers.Profiles)
	if err != nil {
		return nil, err
	}
	matcher, err := match.NewMatcher(catalog, settings.Match, providers.Profiles, providers.Directory)
	if err != nil {
		return nil, err
	}
	questionnaire, err := typer.NewTyper(settings.Typer, providers.Catalog)
	if err != nil {
		return nil, err
	}
	recommender, err := recommend.NewRanker(catalog, settings.Recommend,
		providers.Playlists, providers.Profiles, providers.Directory)
	if err != nil {
		return nil, err
	}
	expertiseRanker, err := expertise.NewRanker(settings.Points, providers.Expertise)
	if err != nil {
		return nil, err
	}

	return &Engine{
		catalog:     catalog,
		builder:     builder,
		matcher:     matcher,
		typer:       questionnaire,
		recommender: recommender,
		expertise:   expertiseRanker,
	}, nil
}

// Catalog returns the shared taste-type catalog.
func (e *Engine) Catalog() *taste.Catalog { return e.catalog }

// ExpertiseRanker exposes the ranker for the background rank scheduler.
func (e *Engine) ExpertiseRanker() *expertise.Ranker { return e.expertise }

// AnalyzeUserTaste derives a provisional taste profile from the user's
// history.
func (e *Engine) AnalyzeUserTaste(ctx context.Context, userID string) (*taste.TasteProfile, error) {
	return e.builder.AnalyzeUserTaste(ctx, userID)
}

// ConfirmTasteProfile flips profile confirmation and refreshes the cached
// matches.
func (e *Engine) ConfirmTasteProfile(ctx context.Context, userID string, confirm bool) (*taste.TasteProfile, error) {
	return e.matcher.ConfirmTasteProfile(ctx, userID, confirm)
}

// FindMatchingUsers returns compatibility-ranked confirmed users.
func (e *Engine) FindMatchingUsers(ctx context.Context, userID string, limit int) ([]taste.MatchEntry, error) {
	return e.matcher.FindMatchingUsers(ctx, userID, limit)
}

// FindGlobalMatches ranks globally discoverable users with bonus and
// proximity scoring.
func (e *Engine) FindGlobalMatches(ctx context.Context, userID string, limit int) ([]match.GlobalMatch, error) {
	return e.matcher.FindGlobalMatches(ctx, userID, limit)
}

// AnalyzeAnswers folds questionnaire answers into preferences and a
// four-axis type code.
func (e *Engine) AnalyzeAnswers(answers []typer.Answer) (*typer.Result, error) {
	return e.typer.AnalyzeAnswers(answers)
}

// PersonalizedRecommendations scores catalog restaurants against
// questionnaire preferences.
func (e *Engine) PersonalizedRecommendations(ctx context.Context, prefs typer.Preferences, city string) ([]taste.Restaurant, error) {
	return e.typer.PersonalizedRecommendations(ctx, prefs, city)
}

// GetRecommendedPlaylists returns preference-filtered public playlists,
// falling back to popularity for cold-start users.
func (e *Engine) GetRecommendedPlaylists(ctx context.Context, userID string, limit int) ([]taste.Playlist, error) {
	return e.recommender.GetRecommendedPlaylists(ctx, userID, limit)
}

// GetTravelRecommendations finds local experts for each destination.
func (e *Engine) GetTravelRecommendations(ctx context.Context, userID string, destinations []geo.Destination) ([]recommend.TravelRecommendation, error) {
	return e.recommender.GetTravelRecommendations(ctx, userID, destinations)
}

// LocalExpertsNear returns discoverable users within radiusKm of a point.
func (e *Engine) LocalExpertsNear(ctx context.Context, center geo.Coordinates, radiusKm float64) ([]cache.Neighbor, error) {
	return e.recommender.LocalExpertsNear(ctx, center, radiusKm)
}

// UpdateExpertiseScore applies one scored action and marks the category for
// rank recomputation.
func (e *Engine) UpdateExpertiseScore(ctx context.Context, userID string, category taste.Category, action expertise.Action, value int) (*expertise.Score, error) {
	return e.expertise.UpdateExpertiseScore(ctx, userID, category, action, value)
}

// RecomputeCategoryRanks rebuilds one category leaderboard immediately.
func (e *Engine) RecomputeCategoryRanks(ctx context.Context, category taste.Category) error {
	return e.expertise.RecomputeCategoryRanks(ctx, category)
}

// BadgesForLevel returns the badges earned at the given level.
func (e *Engine) BadgesForLevel(level int) []string {
	return expertise.BadgesForLevel(level)
}
