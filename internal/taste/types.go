// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package taste

import (
	"time"

	"github.com/chonamwoo/bobjido-sub005/internal/geo"
)

// Category is a closed enumeration of restaurant categories.
//
// The catalog of categories is deliberately fixed at compile time so that
// per-category bookkeeping (expertise scores, dominant-category analysis)
// cannot be keyed by arbitrary strings.
type Category string

const (
	CategoryKorean   Category = "한식"
	CategoryChinese  Category = "중식"
	CategoryJapanese Category = "일식"
	CategoryWestern  Category = "양식"
	CategoryAsian    Category = "아시안"
	CategorySnack    Category = "분식"
	CategoryCafe     Category = "카페"
	CategoryBar      Category = "주점"
)

// Categories lists every valid category in declaration order.
func Categories() []Category {
	return []Category{
		CategoryKorean,
		CategoryChinese,
		CategoryJapanese,
		CategoryWestern,
		CategoryAsian,
		CategorySnack,
		CategoryCafe,
		CategoryBar,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	switch c {
	case CategoryKorean, CategoryChinese, CategoryJapanese, CategoryWestern,
		CategoryAsian, CategorySnack, CategoryCafe, CategoryBar:
		return true
	default:
		return false
	}
}

// String returns the category name.
func (c Category) String() string { return string(c) }

// PriceBand is a restaurant price tier on a 1-4 scale (₩ to ₩₩₩₩).
type PriceBand int

const (
	// PriceBandUnknown marks restaurants without price data.
	PriceBandUnknown PriceBand = 0
	PriceBandBudget  PriceBand = 1
	PriceBandCasual  PriceBand = 2
	PriceBandUpscale PriceBand = 3
	PriceBandPremium PriceBand = 4
)

// Valid reports whether p is within the 1-4 scale.
func (p PriceBand) Valid() bool {
	return p >= PriceBandBudget && p <= PriceBandPremium
}

// TasteType is a catalog archetype. Instances are immutable after catalog
// construction.
type TasteType struct {
	// ID is the stable identifier used in profiles and match results.
	ID string `json:"id"`

	// Name is the display name shown to users.
	Name string `json:"name"`

	// PreferredCategories is the set of categories this archetype favors.
	PreferredCategories []Category `json:"preferred_categories"`

	// PreferredPriceBand is the price tier this archetype gravitates toward.
	PreferredPriceBand PriceBand `json:"preferred_price_band"`

	// AtmosphereTags describe the venue atmosphere this archetype seeks out.
	AtmosphereTags []string `json:"atmosphere_tags"`
}

// PrefersCategory reports whether c is in the archetype's preferred set.
func (t *TasteType) PrefersCategory(c Category) bool {
	for _, pc := range t.PreferredCategories {
		if pc == c {
			return true
		}
	}
	return false
}

// TypeScore is one entry of a profile's score vector. Entries are stored in
// catalog order, not significance order.
type TypeScore struct {
	// TypeID references a TasteType in the catalog.
	TypeID string `json:"type_id"`

	// Raw is the accumulated unnormalized score.
	Raw float64 `json:"raw"`

	// Percentage is Raw normalized so all entries sum to 100.
	Percentage float64 `json:"percentage"`
}

// AnalysisData aggregates the signals a profile was built from.
type AnalysisData struct {
	// AveragePriceBand is the mode of visited restaurants' price bands.
	AveragePriceBand PriceBand `json:"average_price_band"`

	// DominantCategories are the top 3 categories by visit count.
	DominantCategories []Category `json:"dominant_categories"`

	// Adventurousness estimates category breadth: distinct visited
	// categories divided by the size of the category set, in [0,1].
	Adventurousness float64 `json:"adventurousness"`

	// VisitCount and PlaylistRestaurantCount record input sizes.
	VisitCount              int `json:"visit_count"`
	PlaylistRestaurantCount int `json:"playlist_restaurant_count"`
}

// MatchEntry is one cached match result on a profile.
type MatchEntry struct {
	// UserID identifies the matched user.
	UserID string `json:"user_id"`

	// Compatibility is the cosine-derived score in [0,100], one decimal.
	Compatibility float64 `json:"compatibility"`

	// SharedTypeIDs lists TasteTypes where both users score nonzero,
	// in catalog order.
	SharedTypeIDs []string `json:"shared_type_ids"`
}

// TasteProfile is a user's derived score vector over all TasteTypes.
//
// A profile is provisional until the user confirms it; matching against
// other users is only permitted once confirmed. Each analysis run overwrites
// the profile in full and resets confirmation.
type TasteProfile struct {
	// UserID identifies the profile owner.
	UserID string `json:"user_id"`

	// TypeScores holds one entry per catalog TasteType, in catalog order.
	TypeScores []TypeScore `json:"type_scores"`

	// PrimaryType and SecondaryType are the two highest-scoring type IDs.
	// Empty when no type scored. Ties break by catalog order.
	PrimaryType   string `json:"primary_type"`
	SecondaryType string `json:"secondary_type"`

	// Analysis holds the aggregate signals used to build the scores.
	Analysis AnalysisData `json:"analysis"`

	// ConfirmedByUser gates matching. ConfirmedAt is nil while provisional.
	ConfirmedByUser bool       `json:"confirmed_by_user"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`

	// MatchingUsers caches the last match run. Cleared whenever
	// ConfirmedByUser flips to false. Stale-read tolerant with respect to
	// other users' later profile changes.
	MatchingUsers []MatchEntry `json:"matching_users,omitempty"`

	// GeneratedAt records when the profile was last recomputed.
	GeneratedAt time.Time `json:"generated_at"`
}

// Score returns the entry for typeID, or nil if absent.
func (p *TasteProfile) Score(typeID string) *TypeScore {
	for i := range p.TypeScores {
		if p.TypeScores[i].TypeID == typeID {
			return &p.TypeScores[i]
		}
	}
	return nil
}

// PercentageVector returns the percentage values in catalog order.
// Profiles built against the same catalog produce aligned vectors.
func (p *TasteProfile) PercentageVector() []float64 {
	v := make([]float64, len(p.TypeScores))
	for i := range p.TypeScores {
		v[i] = p.TypeScores[i].Percentage
	}
	return v
}

// TypeNamesAbove returns the names of types whose percentage strictly
// exceeds threshold, resolved against the catalog, in catalog order.
func (p *TasteProfile) TypeNamesAbove(catalog *Catalog, threshold float64) []string {
	var names []string
	for i := range p.TypeScores {
		if p.TypeScores[i].Percentage > threshold {
			if t, ok := catalog.ByID(p.TypeScores[i].TypeID); ok {
				names = append(names, t.Name)
			}
		}
	}
	return names
}

// VisitedRestaurant is one entry of a user's visit history.
type VisitedRestaurant struct {
	RestaurantID   string    `json:"restaurant_id"`
	Category       Category  `json:"category"`
	PriceBand      PriceBand `json:"price_band"`
	AtmosphereTags []string  `json:"atmosphere_tags"`

	// Rating is the user's personal rating on a 1-5 scale; 0 means unrated.
	Rating float64 `json:"rating"`
}

// PlaylistRestaurant is a restaurant reference carried by a playlist. Only
// category and tags are known; personal ratings are not.
type PlaylistRestaurant struct {
	Category       Category `json:"category"`
	AtmosphereTags []string `json:"atmosphere_tags"`
}

// Restaurant is a catalog candidate for recommendation scoring.
type Restaurant struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       Category  `json:"category"`
	PriceBand      PriceBand `json:"price_band"`
	Tags           []string  `json:"tags"`
	AtmosphereTags []string  `json:"atmosphere_tags"`
	AverageRating  float64   `json:"average_rating"`
	City           string    `json:"city,omitempty"`
}

// Playlist is a shareable list of restaurants.
type Playlist struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Category    Category             `json:"category"`
	Tags        []string             `json:"tags"`
	AuthorID    string               `json:"author_id"`
	Public      bool                 `json:"public"`
	LikeCount   int                  `json:"like_count"`
	ViewCount   int                  `json:"view_count"`
	CreatedAt   time.Time            `json:"created_at"`
	Restaurants []PlaylistRestaurant `json:"restaurants,omitempty"`
}

// GlobalPreferences describe a user's openness to cross-border matching.
type GlobalPreferences struct {
	OpenToTravelers bool     `json:"open_to_travelers"`
	Languages       []string `json:"languages,omitempty"`

	// CulturalAdventure and SocialLevel are self-reported 1-5 scales.
	CulturalAdventure int `json:"cultural_adventure" validate:"min=1,max=5"`
	SocialLevel       int `json:"social_level" validate:"min=1,max=5"`
}

// LocalRecommendation is a location-tagged restaurant tip published by a
// globally discoverable user.
type LocalRecommendation struct {
	RestaurantID            string   `json:"restaurant_id"`
	Description             string   `json:"description,omitempty"`
	Tags                    []string `json:"tags,omitempty"`
	RecommendedForTypeNames []string `json:"recommended_for_type_names,omitempty"`
}

// GlobalConnection is a user's opt-in record for global discovery. Its
// lifecycle is independent from TasteProfile; absence means the user is not
// discoverable globally.
type GlobalConnection struct {
	UserID               string                `json:"user_id"`
	Location             geo.Location          `json:"location"`
	Preferences          GlobalPreferences     `json:"preferences"`
	LocalRecommendations []LocalRecommendation `json:"local_recommendations,omitempty"`
}
