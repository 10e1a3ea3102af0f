// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

// Package cache provides the in-process data structures backing the engine's
// hot paths: a TTL-aware LRU for match and recommendation responses, and a
// spatial hash grid for proximity lookup of globally discoverable users.
//
// Both structures are safe for concurrent use and deliberately small; they
// are request accelerators, not systems of record. Every caller tolerates
// a stale read.
package cache
