// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package typer is the questionnaire-based classifier. It is deliberately
// independent from the vector model: a single pass over a short
// questionnaire yields a 4-letter categorical code and a tag-overlap
// restaurant shortlist, with no stored state beyond the code string on the
// user record.
package typer

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/chonamwoo/bobjido-sub005/internal/logging"
	"github.com/chonamwoo/bobjido-sub005/internal/metrics"
	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// Atmosphere tags produced by answer keyword matching.
const (
	AtmosphereQuiet    = "조용한"
	AtmosphereLively   = "활기찬"
	AtmosphereRomantic = "로맨틱한"
)

// PriceRangePremium is the questionnaire answer that flips the fourth code
// axis to P.
const PriceRangePremium = "고급"

// atmosphereKeywords maps answer-text keywords to atmosphere tags, in
// fixed order so the fold stays deterministic.
var atmosphereKeywords = [][2]string{
	{"조용", AtmosphereQuiet},
	{"활기", AtmosphereLively},
	{"로맨틱", AtmosphereRomantic},
	{"데이트", AtmosphereRomantic},
}

// Answer is one questionnaire response.
type Answer struct {
	QuestionID string         `json:"question_id"`
	Text       string         `json:"text" validate:"required"`
	Metadata   AnswerMetadata `json:"metadata"`
}

// AnswerMetadata carries the structured hints attached to an answer option.
type AnswerMetadata struct {
	// Category is a cuisine category referenced by the chosen option.
	Category string `json:"category,omitempty"`

	// Tags are free-form feature tags attached to the option.
	Tags []string `json:"tags,omitempty"`

	// PriceRange is a budget hint; the last answered one wins.
	PriceRange string `json:"price_range,omitempty"`
}

// Preferences is the folded questionnaire state the code is derived from.
type Preferences struct {
	SpicyLevel   int      `json:"spicy_level"`
	SweetLevel   int      `json:"sweet_level"`
	Atmosphere   []string `json:"atmosphere,omitempty"`
	CuisineTypes []string `json:"cuisine_types,omitempty"`
	PriceRange   string   `json:"price_range,omitempty"`
	Features     []string `json:"features,omitempty"`
}

// Result pairs the folded preferences with the derived 4-letter code.
type Result struct {
	Preferences Preferences `json:"preferences"`
	Code        string      `json:"mbti_type"`
}

// Typer classifies questionnaire sessions and produces shortlists from the
// restaurant catalog.
type Typer struct {
	weights    taste.TyperWeights
	candidates taste.CatalogProvider
	validate   *validator.Validate
	logger     zerolog.Logger
}

// NewTyper creates a Typer.
func NewTyper(weights taste.TyperWeights, candidates taste.CatalogProvider) (*Typer, error) {
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid typer weights: %w", err)
	}
	if candidates == nil {
		return nil, fmt.Errorf("catalog provider is required")
	}
	return &Typer{
		weights:    weights,
		candidates: candidates,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		logger:     logging.With().Str("component", "typer").Logger(),
	}, nil
}

// AnalyzeAnswers folds a questionnaire session into preferences and the
// 4-letter code. The fold is a single pass; answer order only matters for
// the price range, where the last answer wins.
func (t *Typer) AnalyzeAnswers(answers []Answer) (*Result, error) {
	if len(answers) == 0 {
		return nil, fmt.Errorf("questionnaire has no answers")
	}
	for i := range answers {
		if err := t.validate.Struct(&answers[i]); err != nil {
			return nil, fmt.Errorf("invalid answer %d: %w", i, err)
		}
	}

	prefs := Preferences{}
	seenAtmosphere := make(map[string]struct{})
	seenCuisine := make(map[string]struct{})
	seenFeature := make(map[string]struct{})

	for i := range answers {
		a := &answers[i]
		text := a.Text

		// Negated phrasings ("안 매운", "안 맵게") contain the spicy
		// keywords as substrings, so the mild case must match first.
		switch {
		case strings.Contains(text, "순한") || strings.Contains(text, "안 매운") || strings.Contains(text, "안 맵"):
			prefs.SpicyLevel--
		case strings.Contains(text, "매운") || strings.Contains(text, "맵"):
			prefs.SpicyLevel += 2
		}
		if strings.Contains(text, "디저트") || strings.Contains(text, "달콤") || strings.Contains(text, "단 ") {
			prefs.SweetLevel += 2
		}

		for _, kw := range atmosphereKeywords {
			keyword, tag := kw[0], kw[1]
			if strings.Contains(text, keyword) {
				if _, ok := seenAtmosphere[tag]; !ok {
					seenAtmosphere[tag] = struct{}{}
					prefs.Atmosphere = append(prefs.Atmosphere, tag)
				}
			}
		}

		if c := a.Metadata.Category; c != "" {
			if _, ok := seenCuisine[c]; !ok {
				seenCuisine[c] = struct{}{}
				prefs.CuisineTypes = append(prefs.CuisineTypes, c)
			}
		}
		if a.Metadata.PriceRange != "" {
			prefs.PriceRange = a.Metadata.PriceRange
		}
		for _, tag := range a.Metadata.Tags {
			if _, ok := seenFeature[tag]; !ok {
				seenFeature[tag] = struct{}{}
				prefs.Features = append(prefs.Features, tag)
			}
		}
	}

	code := deriveCode(prefs)
	t.logger.Debug().
		Str("code", code).
		Int("answers", len(answers)).
		Msg("Questionnaire analyzed")

	return &Result{Preferences: prefs, Code: code}, nil
}

// deriveCode maps preferences to the 4-axis code. Each axis is independent
// and the axis order is fixed: S/M, A/T, G/I, P/B.
func deriveCode(prefs Preferences) string {
	var code strings.Builder
	if prefs.SpicyLevel > 0 {
		code.WriteByte('S')
	} else {
		code.WriteByte('M')
	}
	if len(prefs.CuisineTypes) > 3 {
		code.WriteByte('A')
	} else {
		code.WriteByte('T')
	}
	if containsTag(prefs.Atmosphere, AtmosphereLively) {
		code.WriteByte('G')
	} else {
		code.WriteByte('I')
	}
	if prefs.PriceRange == PriceRangePremium {
		code.WriteByte('P')
	} else {
		code.WriteByte('B')
	}
	return code.String()
}

// PersonalizedRecommendations scores a location-filtered candidate pool by
// tag overlap with the preferences. An empty pool after filtering returns
// an empty list, never an error.
func (t *Typer) PersonalizedRecommendations(ctx context.Context, prefs Preferences, city string) ([]taste.Restaurant, error) {
	start := time.Now()

	filter := taste.CandidateFilter{
		City:         city,
		Categories:   cuisineCategories(prefs.CuisineTypes),
		MaxPriceBand: maxBandFor(prefs.PriceRange),
	}
	pool, err := t.candidates.FindCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}
	if len(pool) == 0 {
		metrics.RecordRecommendation("typer", time.Since(start), 0)
		return []taste.Restaurant{}, nil
	}

	type scored struct {
		restaurant taste.Restaurant
		score      float64
		order      int
	}
	ranked := make([]scored, len(pool))
	for i, r := range pool {
		ranked[i] = scored{restaurant: r, score: t.scoreCandidate(&prefs, &pool[i]), order: i}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].order < ranked[j].order
	})

	n := t.weights.MaxResults
	if len(ranked) < n {
		n = len(ranked)
	}
	out := make([]taste.Restaurant, n)
	for i := 0; i < n; i++ {
		out[i] = ranked[i].restaurant
	}

	metrics.RecordRecommendation("typer", time.Since(start), len(out))
	return out, nil
}

// scoreCandidate applies the flat tag-overlap formula.
func (t *Typer) scoreCandidate(prefs *Preferences, r *taste.Restaurant) float64 {
	w := t.weights
	var score float64
	if prefs.SpicyLevel > 0 && hasSpicyTag(r) {
		score += w.SpicyTagBonus
	}
	score += w.AtmosphereOverlap * float64(overlapCount(prefs.Atmosphere, r.AtmosphereTags))
	score += w.FeatureOverlap * float64(overlapCount(prefs.Features, r.Tags))
	score += w.RatingWeight * r.AverageRating
	return score
}

func hasSpicyTag(r *taste.Restaurant) bool {
	for _, tag := range r.Tags {
		if strings.Contains(tag, "매운") || strings.Contains(tag, "맵") {
			return true
		}
	}
	return false
}

func overlapCount(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		set[s] = struct{}{}
	}
	count := 0
	for _, s := range b {
		if _, ok := set[s]; ok {
			delete(set, s)
			count++
		}
	}
	return count
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// cuisineCategories keeps only cuisine strings that are members of the
// closed category set.
func cuisineCategories(cuisines []string) []taste.Category {
	var out []taste.Category
	for _, c := range cuisines {
		if cat := taste.Category(c); cat.Valid() {
			out = append(out, cat)
		}
	}
	return out
}

// maxBandFor maps a budget answer to a price band ceiling. Unknown answers
// leave the pool unconstrained.
func maxBandFor(priceRange string) taste.PriceBand {
	switch priceRange {
	case "저렴":
		return taste.PriceBandBudget
	case "보통":
		return taste.PriceBandCasual
	case PriceRangePremium:
		return taste.PriceBandPremium
	default:
		return taste.PriceBandUnknown
	}
}
