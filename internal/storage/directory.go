// BobJido - Taste Compatibility & Recommendation Engine
// Copyright 2026 Cho Namwoo (chonamwoo)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chonamwoo/bobjido-sub005

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/chonamwoo/bobjido-sub005/internal/taste"
)

// GlobalConnection returns the user's discovery record, or nil when the
// user has not opted in.
func (s *Store) GlobalConnection(ctx context.Context, userID string) (*taste.GlobalConnection, error) {
	start := time.Now()

	var doc string
	err := s.conn.QueryRowContext(ctx,
		`SELECT document FROM global_connections WHERE user_id = ?`, userID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		observe("select", "global_connections", start, nil)
		return nil, nil
	}
	if err != nil {
		observe("select", "global_connections", start, err)
		return nil, fmt.Errorf("querying global connection for %s: %w", userID, err)
	}
	observe("select", "global_connections", start, nil)

	var conn taste.GlobalConnection
	if err := json.Unmarshal([]byte(doc), &conn); err != nil {
		return nil, fmt.Errorf("decoding global connection for %s: %w", userID, err)
	}
	return &conn, nil
}

// OpenConnections returns every record whose owner opted into being
// discovered by travelers.
func (s *Store) OpenConnections(ctx context.Context) ([]*taste.GlobalConnection, error) {
	start := time.Now()
	rows, err := s.conn.QueryContext(ctx,
		`SELECT document FROM global_connections WHERE open_to_travelers ORDER BY user_id`)
	observe("select", "global_connections", start, err)
	if err != nil {
		return nil, fmt.Errorf("querying open connections: %w", err)
	}
	defer closeQuietly(rows)

	var connections []*taste.GlobalConnection
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scanning global connection: %w", err)
		}
		var conn taste.GlobalConnection
		if err := json.Unmarshal([]byte(doc), &conn); err != nil {
			return nil, fmt.Errorf("decoding global connection: %w", err)
		}
		connections = append(connections, &conn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating open connections: %w", err)
	}
	return connections, nil
}

// SaveGlobalConnection upserts the user's opt-in discovery record.
func (s *Store) SaveGlobalConnection(ctx context.Context, conn *taste.GlobalConnection) error {
	doc, err := json.Marshal(conn)
	if err != nil {
		return fmt.Errorf("encoding global connection for %s: %w", conn.UserID, err)
	}

	start := time.Now()
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO global_connections (user_id, open_to_travelers, document)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			open_to_travelers = EXCLUDED.open_to_travelers,
			document = EXCLUDED.document`,
		conn.UserID, conn.Preferences.OpenToTravelers, string(doc))
	observe("upsert", "global_connections", start, err)
	if err != nil {
		return fmt.Errorf("saving global connection for %s: %w", conn.UserID, err)
	}
	return nil
}

// DeleteGlobalConnection withdraws the user from global discovery.
func (s *Store) DeleteGlobalConnection(ctx context.Context, userID string) error {
	start := time.Now()
	_, err := s.conn.ExecContext(ctx,
		`DELETE FROM global_connections WHERE user_id = ?`, userID)
	observe("delete", "global_connections", start, err)
	if err != nil {
		return fmt.Errorf("deleting global connection for %s: %w", userID, err)
	}
	return nil
}
