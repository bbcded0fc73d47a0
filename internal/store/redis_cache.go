package store

import (
	"context"
	"strconv"
	"time"

	"github.com/grafheim/linklytics/internal/link"
	"github.com/redis/go-redis/v9"
)

// RedisCachedLinkStore wraps a link.Repository with Redis caching for
// reads. The redirect path is read-heavy and links are immutable once
// created, so a positive cache with TTL is safe. Cache failures fall
// through to the underlying store.
type RedisCachedLinkStore struct {
	store  link.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCachedLinkStore creates a Redis-cached repository decorator.
func NewRedisCachedLinkStore(store link.Repository, client *redis.Client, ttl time.Duration) *RedisCachedLinkStore {
	return &RedisCachedLinkStore{
		store:  store,
		client: client,
		prefix: "link:",
		ttl:    ttl,
	}
}

// Save stores the link in the underlying store and writes through to the
// cache under both lookup keys.
func (r *RedisCachedLinkStore) Save(ctx context.Context, l *link.Link) error {
	if err := r.store.Save(ctx, l); err != nil {
		return err
	}

	r.cacheLink(ctx, l)

	return nil
}

// FindByIDOrCode checks the cache first and falls back to the store,
// populating the cache on a hit from storage.
func (r *RedisCachedLinkStore) FindByIDOrCode(ctx context.Context, code string) (*link.Link, error) {
	if l, err := r.getFromCache(ctx, code); err == nil {
		return l, nil
	}

	l, err := r.store.FindByIDOrCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, l)

	return l, nil
}

func (r *RedisCachedLinkStore) getFromCache(ctx context.Context, code string) (*link.Link, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+code).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, link.ErrNotFound
	}

	l := &link.Link{
		ID:        result["id"],
		ShortCode: result["short_code"],
		TargetURL: result["target_url"],
	}

	if nanos, err := strconv.ParseInt(result["created_at"], 10, 64); err == nil {
		l.CreatedAt = time.Unix(0, nanos)
	}

	if v, ok := result["expires_at"]; ok && v != "" {
		if nanos, err := strconv.ParseInt(v, 10, 64); err == nil {
			t := time.Unix(0, nanos)
			l.ExpiresAt = &t
		}
	}

	return l, nil
}

func (r *RedisCachedLinkStore) cacheLink(ctx context.Context, l *link.Link) {
	fields := map[string]interface{}{
		"id":         l.ID,
		"short_code": l.ShortCode,
		"target_url": l.TargetURL,
		"created_at": l.CreatedAt.UnixNano(),
	}

	if l.ExpiresAt != nil {
		fields["expires_at"] = l.ExpiresAt.UnixNano()
	}

	pipe := r.client.Pipeline()

	// Cache under both lookup keys so id and alias hits are equally warm.
	for _, key := range []string{r.prefix + l.ID, r.prefix + l.ShortCode} {
		pipe.HSet(ctx, key, fields)

		if r.ttl > 0 {
			pipe.Expire(ctx, key, r.ttl)
		}
	}

	_, _ = pipe.Exec(ctx)
}

// Compile-time check.
var _ link.Repository = (*RedisCachedLinkStore)(nil)
