//go:build integration

package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/grafheim/linklytics/internal/link"
	"github.com/grafheim/linklytics/internal/store"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisAddr() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "localhost:6379"
}

func TestRedisCachedLinkStoreIntegration(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr: getRedisAddr(),
	})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	newLink := func(id, code string) *link.Link {
		return &link.Link{
			ID:        id,
			ShortCode: code,
			TargetURL: "https://example.com/" + code,
			CreatedAt: time.Now().Truncate(time.Second),
		}
	}

	cleanup := func(l *link.Link) {
		client.Del(ctx, "link:"+l.ID, "link:"+l.ShortCode)
	}

	t.Run("save writes through under both lookup keys", func(t *testing.T) {
		inner := store.NewMemoryLinkStore()
		cached := store.NewRedisCachedLinkStore(inner, client, time.Minute)

		l := newLink("cache-id-1", "cachecode1")
		defer cleanup(l)

		require.NoError(t, cached.Save(ctx, l))

		byID, err := cached.FindByIDOrCode(ctx, l.ID)
		require.NoError(t, err)
		assert.Equal(t, l.TargetURL, byID.TargetURL)

		byCode, err := cached.FindByIDOrCode(ctx, l.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, l.ID, byCode.ID)
	})

	t.Run("storage hit populates the cache", func(t *testing.T) {
		inner := store.NewMemoryLinkStore()
		cached := store.NewRedisCachedLinkStore(inner, client, time.Minute)

		l := newLink("cache-id-2", "cachecode2")
		defer cleanup(l)

		// Seed the inner store directly so the first read misses the cache.
		require.NoError(t, inner.Save(ctx, l))

		got, err := cached.FindByIDOrCode(ctx, l.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, l.TargetURL, got.TargetURL)

		fields, err := client.HGetAll(ctx, "link:"+l.ShortCode).Result()
		require.NoError(t, err)
		assert.Equal(t, l.ID, fields["id"])
	})

	t.Run("cache hit survives inner store loss", func(t *testing.T) {
		inner := store.NewMemoryLinkStore()
		cached := store.NewRedisCachedLinkStore(inner, client, time.Minute)

		l := newLink("cache-id-3", "cachecode3")
		defer cleanup(l)

		require.NoError(t, cached.Save(ctx, l))

		// A fresh decorator over an empty inner store still serves the entry.
		warm := store.NewRedisCachedLinkStore(store.NewMemoryLinkStore(), client, time.Minute)

		got, err := warm.FindByIDOrCode(ctx, l.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, l.TargetURL, got.TargetURL)
	})

	t.Run("expiry round-trips through the cache", func(t *testing.T) {
		inner := store.NewMemoryLinkStore()
		cached := store.NewRedisCachedLinkStore(inner, client, time.Minute)

		l := newLink("cache-id-4", "cachecode4")
		expires := time.Now().Add(time.Hour).Truncate(time.Second)
		l.ExpiresAt = &expires
		defer cleanup(l)

		require.NoError(t, cached.Save(ctx, l))

		got, err := cached.FindByIDOrCode(ctx, l.ShortCode)
		require.NoError(t, err)
		require.NotNil(t, got.ExpiresAt)
		assert.True(t, got.ExpiresAt.Equal(expires))
	})

	t.Run("miss propagates ErrNotFound", func(t *testing.T) {
		cached := store.NewRedisCachedLinkStore(store.NewMemoryLinkStore(), client, time.Minute)

		_, err := cached.FindByIDOrCode(ctx, "never-cached")

		assert.ErrorIs(t, err, link.ErrNotFound)
	})

	t.Run("unreachable cache falls through to the store", func(t *testing.T) {
		broken := redis.NewClient(&redis.Options{Addr: "localhost:1"})
		defer broken.Close()

		inner := store.NewMemoryLinkStore()
		cached := store.NewRedisCachedLinkStore(inner, broken, time.Minute)

		l := newLink("cache-id-5", "cachecode5")
		require.NoError(t, inner.Save(ctx, l))

		got, err := cached.FindByIDOrCode(ctx, l.ShortCode)
		require.NoError(t, err)
		assert.Equal(t, l.TargetURL, got.TargetURL)
	})
}
