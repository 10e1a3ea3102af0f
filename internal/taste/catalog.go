// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package taste

import "fmt"

// Catalog is the read-only registry of TasteTypes. It is built once at
// startup and safe for concurrent reads without locking.
type Catalog struct {
	types []TasteType
	index map[string]int
}

// NewCatalog builds a catalog from the given types. Type IDs must be unique
// and nonempty; registration order is preserved and significant.
func NewCatalog(types []TasteType) (*Catalog, error) {
	if len(types) == 0 {
		return nil, fmt.Errorf("catalog requires at least one taste type")
	}

	index := make(map[string]int, len(types))
	for i, t := range types {
		if t.ID == "" {
			return nil, fmt.Errorf("taste type at position %d has empty id", i)
		}
		if _, dup := index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate taste type id %q", t.ID)
		}
		for _, c := range t.PreferredCategories {
			if !c.Valid() {
				return nil, fmt.Errorf("taste type %q references unknown category %q", t.ID, c)
			}
		}
		index[t.ID] = i
	}

	cloned := make([]TasteType, len(types))
	copy(cloned, types)

	return &Catalog{types: cloned, index: index}, nil
}

// Types returns all catalog entries in registration order. Callers must not
// mutate the returned slice.
func (c *Catalog) Types() []TasteType {
	return c.types
}

// Len returns the number of registered types.
func (c *Catalog) Len() int {
	return len(c.types)
}

// ByID returns the type with the given ID.
func (c *Catalog) ByID(id string) (*TasteType, bool) {
	i, ok := c.index[id]
	if !ok {
		return nil, false
	}
	return &c.types[i], true
}

// IndexOf returns the catalog position of the given type ID, or -1.
func (c *Catalog) IndexOf(id string) int {
	i, ok := c.index[id]
	if !ok {
		return -1
	}
	return i
}

// DefaultCatalog returns the production archetype set. Registration order is
// part of the contract: score vectors align by position and ties resolve to
// the earlier entry.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog([]TasteType{
		{
			ID:                  "spicy_adventurer",
			Name:                "매운맛 모험가",
			PreferredCategories: []Category{CategoryKorean, CategoryChinese},
			PreferredPriceBand:  PriceBandCasual,
			AtmosphereTags:      []string{"활기찬", "캐주얼"},
		},
		{
			ID:                  "traditional_connoisseur",
			Name:                "전통 미식가",
			PreferredCategories: []Category{CategoryKorean},
			PreferredPriceBand:  PriceBandUpscale,
			AtmosphereTags:      []string{"조용한", "전통적인"},
		},
		{
			ID:                  "trend_hunter",
			Name:                "트렌드 헌터",
			PreferredCategories: []Category{CategoryCafe, CategoryWestern},
			PreferredPriceBand:  PriceBandUpscale,
			AtmosphereTags:      []string{"트렌디한", "감성적인"},
		},
		{
			ID:                  "comfort_seeker",
			Name:                "소울푸드 러버",
			PreferredCategories: []Category{CategorySnack, CategoryKorean},
			PreferredPriceBand:  PriceBandBudget,
			AtmosphereTags:      []string{"캐주얼", "정겨운"},
		},
		{
			ID:                  "global_explorer",
			Name:                "세계 미식 탐험가",
			PreferredCategories: []Category{CategoryAsian, CategoryWestern},
			PreferredPriceBand:  PriceBandUpscale,
			AtmosphereTags:      []string{"이국적인", "활기찬"},
		},
		{
			ID:                  "omakase_purist",
			Name:                "오마카세 순례자",
			PreferredCategories: []Category{CategoryJapanese},
			PreferredPriceBand:  PriceBandPremium,
			AtmosphereTags:      []string{"조용한", "고급스러운"},
		},
		{
			ID:                  "cafe_nomad",
			Name:                "카페 유목민",
			PreferredCategories: []Category{CategoryCafe},
			PreferredPriceBand:  PriceBandCasual,
			AtmosphereTags:      []string{"감성적인", "조용한"},
		},
		{
			ID:                  "social_foodie",
			Name:                "소셜 푸디",
			PreferredCategories: []Category{CategoryBar, CategoryWestern},
			PreferredPriceBand:  PriceBandCasual,
			AtmosphereTags:      []string{"활기찬", "시끌벅적한"},
		},
	})
	if err != nil {
		// The default set is static; a construction error is a programming
		// bug, not a runtime condition.
		panic(err)
	}
	return catalog
}
