package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vertextoedge/ocs-userinfo/internal/domain"
)

// SaveSnapshot stores a snapshot and assigns its ID
func (s *Store) SaveSnapshot(ctx context.Context, snapshot *domain.Snapshot) error {
	if snapshot == nil || snapshot.Info == nil {
		return domain.ErrNilUserInfo
	}
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = time.Now()
	}

	info, err := json.Marshal(snapshot.Info)
	if err != nil {
		return fmt.Errorf("failed to encode user info: %w", err)
	}

	var used, total sql.NullInt64
	var relative sql.NullFloat64
	if q := snapshot.Info.Quota; q != nil {
		used = sql.NullInt64{Int64: q.Used, Valid: true}
		total = sql.NullInt64{Int64: q.Total, Valid: true}
		relative = sql.NullFloat64{Float64: q.Relative, Valid: true}
	}

	query := `
		INSERT INTO user_snapshots (server, user_id, display_name, quota_used, quota_total, quota_relative, info, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.db.ExecContext(ctx, query,
		snapshot.Server, snapshot.Info.ID, snapshot.Info.DisplayName,
		used, total, relative, string(info), snapshot.FetchedAt.UTC(),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	snapshot.ID = id

	return nil
}

// LatestSnapshot returns the most recent snapshot for a user.
// Returns domain.ErrNotFound if none exists.
func (s *Store) LatestSnapshot(ctx context.Context, userID string) (*domain.Snapshot, error) {
	snapshots, err := s.ListSnapshots(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, domain.ErrNotFound
	}
	return snapshots[0], nil
}

// ListSnapshots returns up to limit snapshots for a user, newest first
func (s *Store) ListSnapshots(ctx context.Context, userID string, limit int) ([]*domain.Snapshot, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidInput
	}

	query := `
		SELECT id, server, info, fetched_at
		FROM user_snapshots
		WHERE user_id = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*domain.Snapshot
	for rows.Next() {
		snapshot := &domain.Snapshot{}
		var info string

		if err := rows.Scan(&snapshot.ID, &snapshot.Server, &info, &snapshot.FetchedAt); err != nil {
			return nil, err
		}

		snapshot.Info = &domain.UserInfo{}
		if err := json.Unmarshal([]byte(info), snapshot.Info); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %d: %w", snapshot.ID, err)
		}

		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}
