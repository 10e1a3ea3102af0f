// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package taste

import "errors"

// Sentinel errors returned by engine operations. Callers distinguish them
// with errors.Is; everything else is an infrastructure fault that propagates
// to the caller's own error handling.
var (
	// ErrInsufficientData means the user has no visit history and no liked
	// playlists, so no profile can be built. Non-fatal: the caller should
	// prompt the user to interact more before retrying.
	ErrInsufficientData = errors.New("insufficient interaction history")

	// ErrProfileNotConfirmed means matching was requested before the user
	// explicitly confirmed their profile. Non-fatal: re-prompt for
	// confirmation.
	ErrProfileNotConfirmed = errors.New("taste profile not confirmed")

	// ErrUserNotFound means a referenced user record is absent in the store.
	ErrUserNotFound = errors.New("user not found")

	// ErrProfileNotFound means the user exists but has never been analyzed.
	ErrProfileNotFound = errors.New("taste profile not found")

	// ErrCategoryNotFound means a category string is outside the closed
	// category set.
	ErrCategoryNotFound = errors.New("category not found")
)
