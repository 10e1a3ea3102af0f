// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package cache

import (
	"sort"
	"sync"

	"github.com/chonamwoo/bobjido-sub005/internal/geo"
)

// CellKey identifies a grid cell in the spatial hash.
type CellKey struct {
	X int32
	Y int32
}

// Neighbor is a user returned from a proximity query, with the great-circle
// distance from the query point.
type Neighbor struct {
	UserID     string
	Coords     geo.Coordinates
	DistanceKm float64
}

// SpatialHash indexes user coordinates on a fixed-size grid for fast
// radius queries. Cell size is expressed in kilometers and converted to
// degrees using the ~111 km per degree approximation; queries scan the
// bounding-box cells and filter candidates by haversine distance.
type SpatialHash struct {
	mu sync.RWMutex

	// cellSizeDeg is the grid cell size in degrees.
	cellSizeDeg float64

	// cells maps grid cells to the user IDs located in them.
	cells map[CellKey]map[string]geo.Coordinates

	// users maps user IDs to their current cell for O(1) removal.
	users map[string]CellKey
}

// NewSpatialHash creates a spatial hash with the given cell size in
// kilometers. Larger cells mean fewer cells per query but more haversine
// filtering per cell.
func NewSpatialHash(cellSizeKm float64) *SpatialHash {
	if cellSizeKm <= 0 {
		cellSizeKm = 50
	}
	return &SpatialHash{
		cellSizeDeg: cellSizeKm / 111.0,
		cells:       make(map[CellKey]map[string]geo.Coordinates),
		users:       make(map[string]CellKey),
	}
}

// Insert adds or relocates a user. A user present in another cell is moved.
func (s *SpatialHash) Insert(userID string, coords geo.Coordinates) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.cellFor(coords)

	if prev, ok := s.users[userID]; ok {
		if prev == key {
			s.cells[prev][userID] = coords
			return
		}
		s.removeFromCell(userID, prev)
	}

	cell, ok := s.cells[key]
	if !ok {
		cell = make(map[string]geo.Coordinates)
		s.cells[key] = cell
	}
	cell[userID] = coords
	s.users[userID] = key
}

// Remove deletes a user from the index. Returns true if the user was present.
func (s *SpatialHash) Remove(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, ok := s.users[userID]
	if !ok {
		return false
	}
	s.removeFromCell(userID, key)
	return true
}

// Len returns the number of indexed users.
func (s *SpatialHash) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// QueryNearby returns all users within radiusKm of the given point,
// ordered nearest first. Ties on distance break by ascending user ID so
// results are deterministic.
func (s *SpatialHash) QueryNearby(center geo.Coordinates, radiusKm float64) []Neighbor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if radiusKm <= 0 {
		return nil
	}

	radiusDeg := radiusKm / 111.0
	minX := int32((center.Lon - radiusDeg) / s.cellSizeDeg)
	maxX := int32((center.Lon + radiusDeg) / s.cellSizeDeg)
	minY := int32((center.Lat - radiusDeg) / s.cellSizeDeg)
	maxY := int32((center.Lat + radiusDeg) / s.cellSizeDeg)

	var out []Neighbor
	for x := minX - 1; x <= maxX+1; x++ {
		for y := minY - 1; y <= maxY+1; y++ {
			cell, ok := s.cells[CellKey{X: x, Y: y}]
			if !ok {
				continue
			}
			for id, coords := range cell {
				d := geo.HaversineKm(center, coords)
				if d <= radiusKm {
					out = append(out, Neighbor{UserID: id, Coords: coords, DistanceKm: d})
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

// Callers hold the write lock.

func (s *SpatialHash) cellFor(coords geo.Coordinates) CellKey {
	return CellKey{
		X: int32(coords.Lon / s.cellSizeDeg),
		Y: int32(coords.Lat / s.cellSizeDeg),
	}
}

func (s *SpatialHash) removeFromCell(userID string, key CellKey) {
	if cell, ok := s.cells[key]; ok {
		delete(cell, userID)
		if len(cell) == 0 {
			delete(s.cells, key)
		}
	}
	delete(s.users, userID)
}
