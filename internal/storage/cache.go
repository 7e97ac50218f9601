package storage

import (
	"context"
	"time"

	"relay-router/internal/common/logging"
	"relay-router/internal/models"
	"relay-router/internal/redis"
)

// CachedStore wraps a Storage with a Redis read-through cache for
// active-rule lookups, the hottest query in the system. Negative
// lookups are cached too so users without rules do not hit the
// database on every message. Every cache failure degrades to the
// underlying store.
type CachedStore struct {
	Storage
	cache *redis.Client
	ttl   time.Duration
}

// NewCachedStore wraps store with a rule cache. ttl bounds staleness
// for writes that bypass this process.
func NewCachedStore(store Storage, cache *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{Storage: store, cache: cache, ttl: ttl}
}

// FindActiveRule serves from cache when possible and populates it on
// a miss. Both a present rule and a confirmed absence are cached.
func (s *CachedStore) FindActiveRule(ctx context.Context, userID string) (*models.Rule, error) {
	rule, found, err := s.cache.GetActiveRule(ctx, userID)
	if err != nil {
		logging.Warn("rule cache read failed",
			logging.String("user_id", userID),
			logging.Err(err),
		)
	} else if found {
		return rule, nil
	}

	rule, err = s.Storage.FindActiveRule(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetActiveRule(ctx, userID, rule, s.ttl); err != nil {
		logging.Warn("rule cache write failed",
			logging.String("user_id", userID),
			logging.Err(err),
		)
	}
	return rule, nil
}

// CreateRule writes through and drops the owner's cache entry so the
// next lookup sees the new rule.
func (s *CachedStore) CreateRule(ctx context.Context, rule *models.Rule) error {
	if err := s.Storage.CreateRule(ctx, rule); err != nil {
		return err
	}
	s.invalidate(ctx, rule.UserID)
	return nil
}

// DeactivateRule invalidates by the rule's owner, which requires
// resolving the rule first.
func (s *CachedStore) DeactivateRule(ctx context.Context, id string) error {
	userID := s.ownerOf(ctx, id)
	if err := s.Storage.DeactivateRule(ctx, id); err != nil {
		return err
	}
	if userID != "" {
		s.invalidate(ctx, userID)
	}
	return nil
}

// DeleteRule invalidates by the rule's owner before removal.
func (s *CachedStore) DeleteRule(ctx context.Context, id string) error {
	userID := s.ownerOf(ctx, id)
	if err := s.Storage.DeleteRule(ctx, id); err != nil {
		return err
	}
	if userID != "" {
		s.invalidate(ctx, userID)
	}
	return nil
}

func (s *CachedStore) ownerOf(ctx context.Context, id string) string {
	rule, err := s.Storage.GetRule(ctx, id)
	if err != nil || rule == nil {
		return ""
	}
	return rule.UserID
}

func (s *CachedStore) invalidate(ctx context.Context, userID string) {
	if err := s.cache.InvalidateActiveRule(ctx, userID); err != nil {
		logging.Warn("rule cache invalidation failed",
			logging.String("user_id", userID),
			logging.Err(err),
		)
	}
}
