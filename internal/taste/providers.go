// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package taste

import "context"

// The engine never talks to a database directly. It consumes narrow provider
// interfaces implemented by the storage layer (or by test fakes), which keeps
// the computation request-scoped and the persistence technology opaque.

// HistoryProvider exposes a user's observed dining behavior.
type HistoryProvider interface {
	// VisitedRestaurants returns the user's visit history. An empty slice
	// (not an error) means the user has no visits.
	VisitedRestaurants(ctx context.Context, userID string) ([]VisitedRestaurant, error)

	// LikedPlaylistRestaurants returns the restaurants contained in
	// playlists the user has liked or saved.
	LikedPlaylistRestaurants(ctx context.Context, userID string) ([]PlaylistRestaurant, error)
}

// CandidateFilter narrows the restaurant candidate pool before scoring.
// Zero values mean "no constraint".
type CandidateFilter struct {
	City         string
	Categories   []Category
	MaxPriceBand PriceBand
}

// CatalogProvider exposes the restaurant catalog for recommendation scoring.
type CatalogProvider interface {
	// FindCandidates returns restaurants matching the filter. An empty pool
	// is a valid result, not an error.
	FindCandidates(ctx context.Context, filter CandidateFilter) ([]Restaurant, error)
}

// PlaylistProvider exposes shareable playlists.
type PlaylistProvider interface {
	// LikedPlaylists returns playlists the user has liked, including their
	// restaurant entries.
	LikedPlaylists(ctx context.Context, userID string) ([]Playlist, error)

	// PublicPlaylists returns all publicly visible playlists.
	PublicPlaylists(ctx context.Context) ([]Playlist, error)
}

// ProfileStore persists taste profiles. Writes are atomic per profile
// document.
type ProfileStore interface {
	// TasteProfile returns the stored profile for userID.
	// ErrProfileNotFound means the user is known but has never been
	// analyzed; ErrUserNotFound means the store has no record of the user
	// at all.
	TasteProfile(ctx context.Context, userID string) (*TasteProfile, error)

	// SaveTasteProfile overwrites the stored profile.
	SaveTasteProfile(ctx context.Context, profile *TasteProfile) error

	// ConfirmedProfiles returns every profile with ConfirmedByUser set,
	// used as the matching candidate pool.
	ConfirmedProfiles(ctx context.Context) ([]*TasteProfile, error)
}

// DirectoryProvider exposes the opt-in global discovery records.
type DirectoryProvider interface {
	// GlobalConnection returns the user's discovery record, or nil when the
	// user has not opted in.
	GlobalConnection(ctx context.Context, userID string) (*GlobalConnection, error)

	// OpenConnections returns every record whose owner opted into being
	// discovered by travelers.
	OpenConnections(ctx context.Context) ([]*GlobalConnection, error)
}
