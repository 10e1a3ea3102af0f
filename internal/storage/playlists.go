// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

const playlistColumns = `id, title, category, tags, author_id, public,
	like_count, view_count, created_at, restaurants`

// LikedPlaylists returns playlists the user has liked, including their
// restaurant entries, in like order.
func (s *Store) LikedPlaylists(ctx context.Context, userID string) ([]taste.Playlist, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists p
		JOIN playlist_likes l ON l.playlist_id = p.id
		WHERE l.user_id = ?
		ORDER BY l.liked_at, p.id`, userID)
	observe("select", "playlists", start, err)
	if err != nil {
		return nil, fmt.Errorf("querying liked playlists for %s: %w", userID, err)
	}
	defer closeQuietly(rows)
	return scanPlaylists(rows)
}

// PublicPlaylists returns all publicly visible playlists.
func (s *Store) PublicPlaylists(ctx context.Context) ([]taste.Playlist, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE public
		ORDER BY id`)
	observe("select", "playlists", start, err)
	if err != nil {
		return nil, fmt.Errorf("querying public playlists: %w", err)
	}
	defer closeQuietly(rows)
	return scanPlaylists(rows)
}

func scanPlaylists(rows *sql.Rows) ([]taste.Playlist, error) {
	var playlists []taste.Playlist
	for rows.Next() {
		var (
			p                 taste.Playlist
			tags, restaurants string
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Category, &tags, &p.AuthorID,
			&p.Public, &p.LikeCount, &p.ViewCount, &p.CreatedAt, &restaurants); err != nil {
			return nil, fmt.Errorf("scanning playlist: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &p.Tags); err != nil {
			return nil, fmt.Errorf("decoding playlist tags: %w", err)
		}
		if err := json.Unmarshal([]byte(restaurants), &p.Restaurants); err != nil {
			return nil, fmt.Errorf("decoding playlist restaurants: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating playlists: %w", err)
	}
	return playlists, nil
}

// SavePlaylist upserts one playlist with its restaurant entries.
func (s *Store) SavePlaylist(ctx context.Context, p taste.Playlist) error {
	tags, err := json.Marshal(emptyIfNil(p.Tags))
	if err != nil {
		return fmt.Errorf("encoding playlist tags: %w", err)
	}
	restaurants := p.Restaurants
	if restaurants == nil {
		restaurants = []taste.PlaylistRestaurant{}
	}
	doc, err := json.Marshal(restaurants)
	if err != nil {
		return fmt.Errorf("encoding playlist restaurants: %w", err)
	}

	start := time.Now()
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO playlists
			(id, title, category, tags, author_id, public, like_count, view_count, created_at, restaurants)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			author_id = EXCLUDED.author_id,
			public = EXCLUDED.public,
			like_count = EXCLUDED.like_count,
			view_count = EXCLUDED.view_count,
			created_at = EXCLUDED.created_at,
			restaurants = EXCLUDED.restaurants`,
		p.ID, p.Title, p.Category, string(tags), p.AuthorID, p.Public,
		p.LikeCount, p.ViewCount, p.CreatedAt, string(doc))
	observe("upsert", "playlists", start, err)
	if err != nil {
		return fmt.Errorf("saving playlist %s: %w", p.ID, err)
	}
	return nil
}

// LikePlaylist records that userID liked playlistID. Liking twice is a
// no-op.
func (s *Store) LikePlaylist(ctx context.Context, userID, playlistID string) error {
	start := time.Now()
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO playlist_likes (user_id, playlist_id, liked_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id, playlist_id) DO NOTHING`,
		userID, playlistID, time.Now().UTC())
	observe("insert", "playlist_likes", start, err)
	if err != nil {
		return fmt.Errorf("recording playlist like: %w", err)
	}
	return nil
}

// UnlikePlaylist removes a like.
func (s *Store) UnlikePlaylist(ctx context.Context, userID, playlistID string) error {
	start := time.Now()
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM playlist_likes WHERE user_id = ? AND playlist_id = ?`,
		userID, playlistID)
	observe("delete", "playlist_likes", start, err)
	if err != nil {
		return fmt.Errorf("removing playlist like: %w", err)
	}
	return nil
}
