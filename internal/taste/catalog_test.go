// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package taste

import "testing"

func TestNewCatalog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		types   []TasteType
		wantErr bool
	}{
		{
			name:    "empty type list rejected",
			types:   nil,
			wantErr: true,
		},
		{
			name: "duplicate id rejected",
			types: []TasteType{
				{ID: "a", Name: "A"},
				{ID: "a", Name: "A2"},
			},
			wantErr: true,
		},
		{
			name: "empty id rejected",
			types: []TasteType{
				{ID: "", Name: "anon"},
			},
			wantErr: true,
		},
		{
			name: "unknown category rejected",
			types: []TasteType{
				{ID: "a", Name: "A", PreferredCategories: []Category{"우주식"}},
			},
			wantErr: true,
		},
		{
			name: "valid types accepted",
			types: []TasteType{
				{ID: "a", Name: "A", PreferredCategories: []Category{CategoryKorean}},
				{ID: "b", Name: "B", PreferredCategories: []Category{CategoryJapanese}},
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := NewCatalog(tt.types)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCatalog() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && c.Len() != len(tt.types) {
				t.Errorf("Len() = %d, want %d", c.Len(), len(tt.types))
			}
		})
	}
}

func TestCatalog_OrderingIsStable(t *testing.T) {
	t.Parallel()

	c := DefaultCatalog()
	types := c.Types()
	for i, typ := range types {
		if got := c.IndexOf(typ.ID); got != i {
			t.Errorf("IndexOf(%q) = %d, want %d", typ.ID, got, i)
		}
		byID, ok := c.ByID(typ.ID)
		if !ok || byID.Name != typ.Name {
			t.Errorf("ByID(%q) = %+v, ok=%v", typ.ID, byID, ok)
		}
	}

	if c.IndexOf("missing") != -1 {
		t.Error("IndexOf(missing) should be -1")
	}
}

func TestDefaultCatalog_CategoriesValid(t *testing.T) {
	t.Parallel()

	for _, typ := range DefaultCatalog().Types() {
		for _, cat := range typ.PreferredCategories {
			if !cat.Valid() {
				t.Errorf("type %q has invalid category %q", typ.ID, cat)
			}
		}
		if !typ.PreferredPriceBand.Valid() {
			t.Errorf("type %q has invalid price band %d", typ.ID, typ.PreferredPriceBand)
		}
	}
}

func TestCategory_Valid(t *testing.T) {
	t.Parallel()

	for _, c := range Categories() {
		if !c.Valid() {
			t.Errorf("Categories() entry %q reported invalid", c)
		}
	}
	if Category("피자").Valid() {
		t.Error("unknown category reported valid")
	}
}

func TestDefaultConfigs_Validate(t *testing.T) {
	t.Parallel()

	if err := DefaultScoringWeights().Validate(); err != nil {
		t.Errorf("DefaultScoringWeights: %v", err)
	}
	if err := DefaultMatchBonuses().Validate(); err != nil {
		t.Errorf("DefaultMatchBonuses: %v", err)
	}
	if err := DefaultTyperWeights().Validate(); err != nil {
		t.Errorf("DefaultTyperWeights: %v", err)
	}
	if err := DefaultRecommendLimits().Validate(); err != nil {
		t.Errorf("DefaultRecommendLimits: %v", err)
	}
}

func TestScoringWeights_Validate(t *testing.T) {
	t.Parallel()

	w := DefaultScoringWeights()
	w.MildRatingMin = 5
	if err := w.Validate(); err == nil {
		t.Error("expected error when mild_rating_min exceeds strong_rating_min")
	}

	w = DefaultScoringWeights()
	w.VisitStrongSignal = -1
	if err := w.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}

func TestMatchBonuses_Validate(t *testing.T) {
	t.Parallel()

	b := DefaultMatchBonuses()
	b.GradeBMin = 90
	if err := b.Validate(); err == nil {
		t.Error("expected error for unordered grade thresholds")
	}
}
