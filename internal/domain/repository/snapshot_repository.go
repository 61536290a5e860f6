package repository

import (
	"context"

	"github.com/vertextoedge/ocs-userinfo/internal/domain"
)

// SnapshotRepository defines the interface for user info snapshot persistence
type SnapshotRepository interface {
	// SaveSnapshot stores a snapshot and assigns its ID
	SaveSnapshot(ctx context.Context, snapshot *domain.Snapshot) error

	// LatestSnapshot returns the most recent snapshot for a user, or domain.ErrNotFound
	LatestSnapshot(ctx context.Context, userID string) (*domain.Snapshot, error)

	// ListSnapshots returns up to limit snapshots for a user, newest first
	ListSnapshots(ctx context.Context, userID string, limit int) ([]*domain.Snapshot, error)
}
