package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStyleLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, ok, err := s.Style(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetStyle(ctx, 1, "candy"))
	style, ok, err := s.Style(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "candy", style)

	// Re-selection overwrites, never stacks.
	require.NoError(t, s.SetStyle(ctx, 1, "mosaic"))
	style, ok, err = s.Style(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "mosaic", style)

	require.NoError(t, s.ClearStyle(ctx, 1))
	_, ok, err = s.Style(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.ClearStyle(ctx, 1))
}

func TestEntitlementExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()

	ok, err := s.IsEntitled(ctx, 7, now)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.GrantEntitlement(ctx, 7, 24*time.Hour))

	ok, err = s.IsEntitled(ctx, 7, now)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.IsEntitled(ctx, 7, now.Add(25*time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	// Expired check must not resurrect the grant.
	ok, err = s.IsEntitled(ctx, 7, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGrantOverwritesExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.GrantEntitlement(ctx, 3, time.Minute))
	require.NoError(t, s.GrantEntitlement(ctx, 3, 24*time.Hour))

	ok, err := s.IsEntitled(ctx, 3, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestProofAndAwaitingFlag(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	awaiting, err := s.AwaitingProof(ctx, 5)
	require.NoError(t, err)
	assert.False(t, awaiting)

	require.NoError(t, s.SetAwaitingProof(ctx, 5, true))
	awaiting, err = s.AwaitingProof(ctx, 5)
	require.NoError(t, err)
	assert.True(t, awaiting)

	require.NoError(t, s.RecordProof(ctx, 5, "file-abc"))
	require.NoError(t, s.RecordProof(ctx, 5, "file-def"))
	ref, ok, err := s.PendingProof(ctx, 5)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "file-def", ref)

	require.NoError(t, s.SetAwaitingProof(ctx, 5, false))
	awaiting, err = s.AwaitingProof(ctx, 5)
	require.NoError(t, err)
	assert.False(t, awaiting)
}

func TestUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.SetStyle(ctx, 1, "candy"))
	require.NoError(t, s.GrantEntitlement(ctx, 2, time.Hour))

	_, ok, err := s.Style(ctx, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	entitled, err := s.IsEntitled(ctx, 1, time.Now())
	require.NoError(t, err)
	assert.False(t, entitled)
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = s.SetStyle(ctx, id, "udnie")
			_, _, _ = s.Style(ctx, id)
			_ = s.GrantEntitlement(ctx, id, time.Hour)
			_, _ = s.IsEntitled(ctx, id, time.Now())
			_ = s.ClearStyle(ctx, id)
		}(int64(i % 4))
	}
	wg.Wait()
}
