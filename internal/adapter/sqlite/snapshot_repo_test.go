package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vertextoedge/ocs-userinfo/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "db", "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_SaveAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.Ping())

	enabled := true
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		snapshot := &domain.Snapshot{
			Server:    "https://cloud.example.com",
			FetchedAt: base.Add(time.Duration(i) * time.Hour),
			Info: &domain.UserInfo{
				ID:          "alice",
				DisplayName: "Alice",
				Enabled:     &enabled,
				Quota: &domain.Quota{
					Free:     int64(100 - i),
					Used:     int64(i),
					Total:    100,
					Relative: float64(i),
					Limit:    domain.QuotaLimitNotAvailable,
				},
			},
		}
		require.NoError(t, store.SaveSnapshot(ctx, snapshot))
		assert.NotZero(t, snapshot.ID)
	}
	require.NoError(t, store.SaveSnapshot(ctx, &domain.Snapshot{
		Server: "https://cloud.example.com",
		Info:   &domain.UserInfo{ID: "bob", DisplayName: "Bob"},
	}))

	snapshots, err := store.ListSnapshots(ctx, "alice", 2)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.True(t, snapshots[0].FetchedAt.Equal(base.Add(2*time.Hour)))
	assert.True(t, snapshots[1].FetchedAt.Equal(base.Add(time.Hour)))
	assert.Equal(t, int64(2), snapshots[0].Info.Quota.Used)
	assert.Equal(t, domain.QuotaLimitNotAvailable, snapshots[0].Info.Quota.Limit)
	assert.Equal(t, &enabled, snapshots[0].Info.Enabled)
	assert.Equal(t, "https://cloud.example.com", snapshots[0].Server)

	latest, err := store.LatestSnapshot(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "Bob", latest.Info.DisplayName)
	assert.Nil(t, latest.Info.Quota)
	assert.False(t, latest.FetchedAt.IsZero())
}

func TestStore_LatestSnapshotMissing(t *testing.T) {
	store := openTestStore(t)

	latest, err := store.LatestSnapshot(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, latest)
}

func TestStore_InvalidInput(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	assert.ErrorIs(t, store.SaveSnapshot(ctx, nil), domain.ErrNilUserInfo)
	assert.ErrorIs(t, store.SaveSnapshot(ctx, &domain.Snapshot{}), domain.ErrNilUserInfo)

	_, err := store.ListSnapshots(ctx, "alice", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
