// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package taste defines the core domain model for the taste engine.
//
// # Architecture
//
// The engine derives a per-user "taste profile" from observed dining
// behavior, matches users with compatible taste, and ranks restaurant and
// playlist candidates. Responsibilities are split across packages:
//
//   - taste (this package): domain types, the TasteType catalog, scoring
//     weights, sentinel errors, and the provider interfaces implemented by
//     the storage layer
//   - taste/vector: builds a TasteProfile from interaction history
//   - taste/match: cosine-similarity compatibility matching, local and global
//   - taste/typer: questionnaire-driven four-axis categorical typing
//   - expertise: per-category contribution points, levels, and ranks
//   - recommend: playlist and travel-destination recommendation ranking
//
// # Design Principles
//
//   - Deterministic: identical inputs produce identical profiles and rankings
//   - Request-scoped: no shared mutable state beyond the read-only catalog
//   - Data-driven weights: every scoring literal lives in ScoringWeights or
//     its sibling config structs, never inline in ranking code
//   - Explicit errors: all failures are returned values; sentinel errors are
//     matched with errors.Is at the boundary
//
// # Catalog Ordering
//
// The TasteType catalog is created once at startup and never mutated.
// Catalog order is load-bearing: profile score vectors are aligned by catalog
// index so that position i refers to the same TasteType for every user, and
// catalog order breaks ties when selecting primary and secondary types.
package taste
