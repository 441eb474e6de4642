package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskvich/trip-planner/pkg/domain"
)

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository(0)

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	s := domain.NewSession("abc")
	require.NoError(t, repo.Create(ctx, s))
	assert.EqualValues(t, 1, s.Version)

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	got.Profile.Destination = "Kyoto"
	got.Messages = append(got.Messages, domain.ChatMessage{Role: domain.RoleAssistant, Content: "hi"})

	stored, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, stored.Profile.Destination, "caller mutations must not leak into the store")

	require.NoError(t, repo.Update(ctx, got))
	assert.EqualValues(t, 2, got.Version)

	stored, err = repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "Kyoto", stored.Profile.Destination)
	assert.Len(t, stored.Messages, 1)

	require.NoError(t, repo.Delete(ctx, "abc"))
	_, err = repo.Get(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMemorySessionRepositoryVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewMemorySessionRepository(0)
	require.NoError(t, repo.Create(ctx, domain.NewSession("abc")))

	first, _ := repo.Get(ctx, "abc")
	second, _ := repo.Get(ctx, "abc")

	require.NoError(t, repo.Update(ctx, first))
	assert.ErrorIs(t, repo.Update(ctx, second), domain.ErrVersionConflict)
}

func TestMemorySessionRepositoryTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	repo := NewMemorySessionRepository(time.Hour)
	repo.now = func() time.Time { return now }
	require.NoError(t, repo.Create(ctx, domain.NewSession("abc")))

	now = now.Add(59 * time.Minute)
	s, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, s))

	now = now.Add(59 * time.Minute)
	_, err = repo.Get(ctx, "abc")
	assert.NoError(t, err, "update refreshes idle time")

	now = now.Add(2 * time.Minute)
	_, err = repo.Get(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, s), domain.ErrNotFound)
}

func TestMemorySessionRepositorySweepsExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	repo := NewMemorySessionRepository(time.Hour)
	repo.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		require.NoError(t, repo.Create(ctx, domain.NewSession(fmt.Sprintf("s%d", i))))
	}

	now = now.Add(48 * time.Hour)
	for i := 0; i < 1000; i++ {
		_, err := repo.Get(ctx, fmt.Sprintf("s%d", i))
		require.ErrorIs(t, err, domain.ErrNotFound)
	}

	require.NoError(t, repo.Create(ctx, domain.NewSession("fresh")))
	assert.Len(t, repo.sessions, 1)

	_, err := repo.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMemorySessionRepositoryKeepsLiveSessionsOnSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	repo := NewMemorySessionRepository(time.Hour)
	repo.now = func() time.Time { return now }

	require.NoError(t, repo.Create(ctx, domain.NewSession("old")))
	now = now.Add(50 * time.Minute)
	require.NoError(t, repo.Create(ctx, domain.NewSession("recent")))

	now = now.Add(20 * time.Minute)
	require.NoError(t, repo.Create(ctx, domain.NewSession("new")))

	assert.Len(t, repo.sessions, 2)
	assert.Contains(t, repo.sessions, "recent")
	assert.Contains(t, repo.sessions, "new")
}
