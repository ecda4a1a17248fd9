package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func savedBuild(userID, name string, savedAt time.Time) *SavedBuild {
	return &SavedBuild{
		UserID:       userID,
		Name:         name,
		BuildDetails: json.RawMessage(`{"build_name": "` + name + `"}`),
		SavedAt:      savedAt,
	}
}

func TestMemoryBuildRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBuildRepository()

	b := savedBuild("user-1", "My Build", time.Time{})
	require.NoError(t, repo.Save(ctx, b))
	assert.NotEmpty(t, b.ID)
	assert.False(t, b.SavedAt.IsZero())

	got, err := repo.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Name, got.Name)
	assert.Equal(t, b.UserID, got.UserID)

	require.NoError(t, repo.Delete(ctx, b.ID))
	_, err = repo.Get(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, b.ID), ErrNotFound)
}

func TestMemoryBuildRepository_ListOrderingAndScope(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBuildRepository()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	older := savedBuild("user-1", "older", base)
	newer := savedBuild("user-1", "newer", base.Add(time.Hour))
	other := savedBuild("user-2", "other", base.Add(2*time.Hour))
	for _, b := range []*SavedBuild{older, newer, other} {
		require.NoError(t, repo.Save(ctx, b))
	}

	mine, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "newer", mine[0].Name)
	assert.Equal(t, "older", mine[1].Name)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "other", all[0].Name)

	none, err := repo.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCollectStats(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBuildRepository()
	rl := NewMemoryRequestLog()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, savedBuild("user-1", "a", base)))
	require.NoError(t, repo.Save(ctx, savedBuild("user-1", "b", base.Add(time.Minute))))
	require.NoError(t, repo.Save(ctx, savedBuild("user-2", "c", base.Add(2*time.Minute))))

	rl.Log(ctx, "user-1", map[string]any{"budget": 30000})
	rl.Log(ctx, "", nil)

	stats, err := CollectStats(ctx, repo, rl)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalUsers)
	assert.Equal(t, int64(3), stats.TotalSavedSpecs)
	assert.Equal(t, int64(2), stats.RecommendationsToday)
}
