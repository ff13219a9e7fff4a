package syncstate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tcg-collection-api/internal/model"
)

func TestMemoryStore_KeepsLatestPerKey(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, model.SyncReport{RunID: "r1", Kind: model.SyncKindExpansions, StartedAt: base, Inserted: 5}))
	require.NoError(t, store.Record(ctx, model.SyncReport{RunID: "r2", Kind: model.SyncKindBackfill, StartedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Record(ctx, model.SyncReport{RunID: "r3", Kind: model.SyncKindExpansions, StartedAt: base.Add(2 * time.Minute)}))
	require.NoError(t, store.Record(ctx, model.SyncReport{RunID: "r4", Kind: model.SyncKindSet, Scope: "base1", StartedAt: base}))

	reports, err := store.Latest(ctx)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, "r3", reports[0].RunID)
	assert.Equal(t, "r2", reports[1].RunID)
	assert.Equal(t, "r4", reports[2].RunID)
	assert.Equal(t, "memory", store.Backend())
	assert.NoError(t, store.Close())
}

func TestMemoryStore_Empty(t *testing.T) {
	reports, err := NewMemoryStore().Latest(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestLatestKey(t *testing.T) {
	assert.Equal(t, "tcg:sync:latest", latestKey(""))
	assert.Equal(t, "app:sync:latest", latestKey("app:sync"))
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	_, err := NewRedisStore(RedisConfig{Addr: "127.0.0.1:1"})
	require.Error(t, err)
}
