// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package taste

import "fmt"

// ScoringWeights centralizes every literal used when accumulating raw type
// scores from interaction history. Weights are a data dependency of the
// vector builder, never embedded constants, so tuning does not require code
// changes and property tests stay stable.
type ScoringWeights struct {
	// VisitStrongSignal is awarded per visited restaurant whose category is
	// in the type's preferred set and whose personal rating is at or above
	// StrongRatingMin.
	VisitStrongSignal float64 `json:"visit_strong_signal" koanf:"visit_strong_signal"`

	// VisitMildSignal is awarded when the rating falls in
	// [MildRatingMin, StrongRatingMin) instead.
	VisitMildSignal float64 `json:"visit_mild_signal" koanf:"visit_mild_signal"`

	// StrongRatingMin and MildRatingMin are the rating thresholds on the
	// 1-5 scale. A rating of exactly 4 counts as a mild signal.
	StrongRatingMin float64 `json:"strong_rating_min" koanf:"strong_rating_min"`
	MildRatingMin   float64 `json:"mild_rating_min" koanf:"mild_rating_min"`

	// PlaylistCategoryMatch is awarded per liked-playlist restaurant whose
	// category matches the type's preferred set. Ratings are unknown for
	// playlist restaurants, so the weight is flat.
	PlaylistCategoryMatch float64 `json:"playlist_category_match" koanf:"playlist_category_match"`

	// PriceBandMatch is awarded per visited restaurant whose price band
	// equals the type's preferred band.
	PriceBandMatch float64 `json:"price_band_match" koanf:"price_band_match"`

	// AtmosphereTagOverlap is awarded per overlapping atmosphere tag between
	// a visited restaurant and the type, capped at AtmosphereTagCap per
	// restaurant so tag spam cannot dominate.
	AtmosphereTagOverlap float64 `json:"atmosphere_tag_overlap" koanf:"atmosphere_tag_overlap"`
	AtmosphereTagCap     int     `json:"atmosphere_tag_cap" koanf:"atmosphere_tag_cap"`
}

// DefaultScoringWeights returns the production weights.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		VisitStrongSignal:     2,
		VisitMildSignal:       1,
		StrongRatingMin:       4.5,
		MildRatingMin:         3,
		PlaylistCategoryMatch: 1,
		PriceBandMatch:        1,
		AtmosphereTagOverlap:  1,
		AtmosphereTagCap:      3,
	}
}

// Validate checks internal consistency.
func (w ScoringWeights) Validate() error {
	if w.VisitStrongSignal < 0 || w.VisitMildSignal < 0 || w.PlaylistCategoryMatch < 0 ||
		w.PriceBandMatch < 0 || w.AtmosphereTagOverlap < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if w.MildRatingMin > w.StrongRatingMin {
		return fmt.Errorf("mild_rating_min %.2f exceeds strong_rating_min %.2f", w.MildRatingMin, w.StrongRatingMin)
	}
	if w.AtmosphereTagCap < 0 {
		return fmt.Errorf("atmosphere_tag_cap must be non-negative")
	}
	return nil
}

// MatchBonuses centralizes the contextual bonuses and grade thresholds used
// by the global compatibility variant. The base matcher is pure cosine and
// takes no bonuses, which keeps it symmetric.
type MatchBonuses struct {
	// CulturalAdventureBonus applies when the candidate's self-reported
	// cultural adventurousness is at least CulturalAdventureMin.
	CulturalAdventureBonus float64 `json:"cultural_adventure_bonus" koanf:"cultural_adventure_bonus"`
	CulturalAdventureMin   int     `json:"cultural_adventure_min" koanf:"cultural_adventure_min"`

	// SocialLevelBonus applies when the candidate's social level is at
	// least SocialLevelMin.
	SocialLevelBonus float64 `json:"social_level_bonus" koanf:"social_level_bonus"`
	SocialLevelMin   int     `json:"social_level_min" koanf:"social_level_min"`

	// PerLocalRecommendation is added per published local recommendation,
	// capped at LocalRecommendationCap.
	PerLocalRecommendation float64 `json:"per_local_recommendation" koanf:"per_local_recommendation"`
	LocalRecommendationCap float64 `json:"local_recommendation_cap" koanf:"local_recommendation_cap"`

	// Proximity bonuses apply only when both sides expose coordinates.
	ProximityNearKm    float64 `json:"proximity_near_km" koanf:"proximity_near_km"`
	ProximityNearBonus float64 `json:"proximity_near_bonus" koanf:"proximity_near_bonus"`
	ProximityMidKm     float64 `json:"proximity_mid_km" koanf:"proximity_mid_km"`
	ProximityMidBonus  float64 `json:"proximity_mid_bonus" koanf:"proximity_mid_bonus"`
	ProximityFarKm     float64 `json:"proximity_far_km" koanf:"proximity_far_km"`
	ProximityFarBonus  float64 `json:"proximity_far_bonus" koanf:"proximity_far_bonus"`

	// Grade thresholds for global discovery results.
	GradeSMin float64 `json:"grade_s_min" koanf:"grade_s_min"`
	GradeAMin float64 `json:"grade_a_min" koanf:"grade_a_min"`
	GradeBMin float64 `json:"grade_b_min" koanf:"grade_b_min"`
}

// DefaultMatchBonuses returns the production bonus schedule.
func DefaultMatchBonuses() MatchBonuses {
	return MatchBonuses{
		CulturalAdventureBonus: 5,
		CulturalAdventureMin:   4,
		SocialLevelBonus:       3,
		SocialLevelMin:         4,
		PerLocalRecommendation: 2,
		LocalRecommendationCap: 10,
		ProximityNearKm:        10,
		ProximityNearBonus:     5,
		ProximityMidKm:         50,
		ProximityMidBonus:      3,
		ProximityFarKm:         200,
		ProximityFarBonus:      1,
		GradeSMin:              85,
		GradeAMin:              75,
		GradeBMin:              65,
	}
}

// Validate checks threshold ordering.
func (b MatchBonuses) Validate() error {
	if b.GradeBMin > b.GradeAMin || b.GradeAMin > b.GradeSMin {
		return fmt.Errorf("grade thresholds must be ordered: B %.1f <= A %.1f <= S %.1f", b.GradeBMin, b.GradeAMin, b.GradeSMin)
	}
	if b.ProximityNearKm > b.ProximityMidKm || b.ProximityMidKm > b.ProximityFarKm {
		return fmt.Errorf("proximity buckets must be ordered: near %.0f <= mid %.0f <= far %.0f", b.ProximityNearKm, b.ProximityMidKm, b.ProximityFarKm)
	}
	if b.LocalRecommendationCap < 0 || b.PerLocalRecommendation < 0 {
		return fmt.Errorf("local recommendation bonuses must be non-negative")
	}
	return nil
}

// TyperWeights centralizes the questionnaire recommendation scoring
// literals.
type TyperWeights struct {
	// SpicyTagBonus applies to candidates carrying a spicy tag when the
	// questionnaire showed positive spicy preference.
	SpicyTagBonus float64 `json:"spicy_tag_bonus" koanf:"spicy_tag_bonus"`

	// AtmosphereOverlap is multiplied by the atmosphere-tag overlap count.
	AtmosphereOverlap float64 `json:"atmosphere_overlap" koanf:"atmosphere_overlap"`

	// FeatureOverlap is multiplied by the feature-tag overlap count.
	FeatureOverlap float64 `json:"feature_overlap" koanf:"feature_overlap"`

	// RatingWeight is multiplied by the candidate's average rating.
	RatingWeight float64 `json:"rating_weight" koanf:"rating_weight"`

	// MaxResults caps the recommendation list.
	MaxResults int `json:"max_results" koanf:"max_results"`
}

// DefaultTyperWeights returns the production weights.
func DefaultTyperWeights() TyperWeights {
	return TyperWeights{
		SpicyTagBonus:     3,
		AtmosphereOverlap: 2,
		FeatureOverlap:    1,
		RatingWeight:      0.5,
		MaxResults:        10,
	}
}

// Validate checks internal consistency.
func (w TyperWeights) Validate() error {
	if w.SpicyTagBonus < 0 || w.AtmosphereOverlap < 0 || w.FeatureOverlap < 0 || w.RatingWeight < 0 {
		return fmt.Errorf("typer weights must be non-negative")
	}
	if w.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive")
	}
	return nil
}

// RecommendLimits bounds playlist and travel recommendation runs.
type RecommendLimits struct {
	// TopCategories and TopTags bound the preference sets mined from liked
	// playlists.
	TopCategories int `json:"top_categories" koanf:"top_categories"`
	TopTags       int `json:"top_tags" koanf:"top_tags"`

	// DefaultLimit and MaxLimit bound playlist result counts.
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`
	MaxLimit     int `json:"max_limit" koanf:"max_limit"`

	// TravelTypePercentMin is the profile percentage a type must strictly
	// exceed to count toward local-expert overlap.
	TravelTypePercentMin float64 `json:"travel_type_percent_min" koanf:"travel_type_percent_min"`

	// TravelMaxExperts and TravelMaxRecsPerExpert cap travel results.
	TravelMaxExperts       int `json:"travel_max_experts" koanf:"travel_max_experts"`
	TravelMaxRecsPerExpert int `json:"travel_max_recs_per_expert" koanf:"travel_max_recs_per_expert"`
}

// DefaultRecommendLimits returns the production limits.
func DefaultRecommendLimits() RecommendLimits {
	return RecommendLimits{
		TopCategories:          3,
		TopTags:                5,
		DefaultLimit:           10,
		MaxLimit:               50,
		TravelTypePercentMin:   15,
		TravelMaxExperts:       5,
		TravelMaxRecsPerExpert: 3,
	}
}

// Validate checks internal consistency.
func (l RecommendLimits) Validate() error {
	if l.TopCategories <= 0 || l.TopTags <= 0 {
		return fmt.Errorf("top_categories and top_tags must be positive")
	}
	if l.DefaultLimit <= 0 || l.MaxLimit < l.DefaultLimit {
		return fmt.Errorf("limits must satisfy 0 < default_limit <= max_limit")
	}
	if l.TravelMaxExperts <= 0 || l.TravelMaxRecsPerExpert <= 0 {
		return fmt.Errorf("travel caps must be positive")
	}
	return nil
}
