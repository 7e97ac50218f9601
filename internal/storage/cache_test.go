package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relay-router/internal/models"
	"relay-router/internal/redis"
)

// countingStore stubs the Storage interface and counts active-rule
// lookups so cache hits are observable.
type countingStore struct {
	Storage
	rules map[string]*models.Rule
	finds int
}

func (s *countingStore) FindActiveRule(ctx context.Context, userID string) (*models.Rule, error) {
	s.finds++
	for _, r := range s.rules {
		if r.UserID == userID && r.IsActive {
			return r, nil
		}
	}
	return nil, nil
}

func (s *countingStore) GetRule(ctx context.Context, id string) (*models.Rule, error) {
	return s.rules[id], nil
}

func (s *countingStore) CreateRule(ctx context.Context, rule *models.Rule) error {
	s.rules[rule.ID] = rule
	return nil
}

func (s *countingStore) DeactivateRule(ctx context.Context, id string) error {
	if r, ok := s.rules[id]; ok {
		r.IsActive = false
	}
	return nil
}

func (s *countingStore) DeleteRule(ctx context.Context, id string) error {
	delete(s.rules, id)
	return nil
}

func setupCachedStore(t *testing.T) (*CachedStore, *countingStore) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient(&redis.Config{Address: mr.Addr(), PoolSize: 5})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	inner := &countingStore{rules: make(map[string]*models.Rule)}
	return NewCachedStore(inner, client, time.Minute), inner
}

func TestCachedStoreReadThrough(t *testing.T) {
	store, inner := setupCachedStore(t)
	ctx := context.Background()

	rule := &models.Rule{ID: "r1", UserID: "u1", Keyword: "billing", DelegateID: "jane", IsActive: true}
	require.NoError(t, inner.CreateRule(ctx, rule))

	got, err := store.FindActiveRule(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, inner.finds)

	// Second lookup is served from cache.
	got, err = store.FindActiveRule(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "billing", got.Keyword)
	assert.Equal(t, 1, inner.finds)
}

func TestCachedStoreCachesAbsence(t *testing.T) {
	store, inner := setupCachedStore(t)
	ctx := context.Background()

	got, err := store.FindActiveRule(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = store.FindActiveRule(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, inner.finds)
}

func TestCachedStoreCreateInvalidates(t *testing.T) {
	store, inner := setupCachedStore(t)
	ctx := context.Background()

	// Prime a negative cache entry.
	_, err := store.FindActiveRule(ctx, "u1")
	require.NoError(t, err)

	rule := &models.Rule{ID: "r1", UserID: "u1", Keyword: "billing", DelegateID: "jane", IsActive: true}
	require.NoError(t, store.CreateRule(ctx, rule))

	got, err := store.FindActiveRule(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "r1", got.ID)
	assert.Equal(t, 2, inner.finds)
}

func TestCachedStoreDeactivateInvalidates(t *testing.T) {
	store, inner := setupCachedStore(t)
	ctx := context.Background()

	rule := &models.Rule{ID: "r1", UserID: "u1", Keyword: "billing", DelegateID: "jane", IsActive: true}
	require.NoError(t, inner.CreateRule(ctx, rule))

	got, err := store.FindActiveRule(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, store.DeactivateRule(ctx, "r1"))

	got, err = store.FindActiveRule(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCachedStoreDeleteInvalidates(t *testing.T) {
	store, _ := setupCachedStore(t)
	ctx := context.Background()

	rule := &models.Rule{ID: "r1", UserID: "u1", Keyword: "billing", DelegateID: "jane", IsActive: true}
	require.NoError(t, store.CreateRule(ctx, rule))

	got, err := store.FindActiveRule(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)

	require.NoError(t, store.DeleteRule(ctx, "r1"))

	got, err = store.FindActiveRule(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got)
}
