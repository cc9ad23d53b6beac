package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/advent-api/pkg/errors"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	repo := NewMemoryCacheRepository()
	type payload struct {
		Doors map[int]string `json:"doors"`
	}

	require.NoError(t, repo.Set(context.Background(), "k", payload{Doors: map[int]string{1: "1.txt"}}, time.Minute))

	var got payload
	require.NoError(t, repo.Get(context.Background(), "k", &got))
	assert.Equal(t, map[int]string{1: "1.txt"}, got.Doors)
}

func TestMemoryCacheMissOnUnknownKey(t *testing.T) {
	repo := NewMemoryCacheRepository()
	var dest string
	err := repo.Get(context.Background(), "absent", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestMemoryCacheEntryExpires(t *testing.T) {
	repo := NewMemoryCacheRepository()
	now := time.Now()
	repo.clock = func() time.Time { return now }

	require.NoError(t, repo.Set(context.Background(), "k", "value", 10*time.Second))

	var dest string
	require.NoError(t, repo.Get(context.Background(), "k", &dest))
	assert.Equal(t, "value", dest)

	now = now.Add(11 * time.Second)
	err := repo.Get(context.Background(), "k", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
}

func TestMemoryCacheDelete(t *testing.T) {
	repo := NewMemoryCacheRepository()
	require.NoError(t, repo.Set(context.Background(), "k", "value", time.Minute))
	require.NoError(t, repo.Delete(context.Background(), "k"))

	var dest string
	err := repo.Get(context.Background(), "k", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)

	// Deleting a missing key is fine.
	require.NoError(t, repo.Delete(context.Background(), "k"))
}

func TestMemoryCacheSetReplaces(t *testing.T) {
	repo := NewMemoryCacheRepository()
	require.NoError(t, repo.Set(context.Background(), "k", "old", time.Minute))
	require.NoError(t, repo.Set(context.Background(), "k", "new", time.Minute))

	var dest string
	require.NoError(t, repo.Get(context.Background(), "k", &dest))
	assert.Equal(t, "new", dest)
}
