package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benesafe/registry/internal/core/domain"
)

func newTestStore(t *testing.T, ttl time.Duration) (*TokenStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewTokenStore(rdb, ttl), mr
}

func TestTokenStore_IssueAndConsume(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	token, err := store.Issue(ctx, "user-1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := store.Consume(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = store.Consume(ctx, token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenStore_Expired(t *testing.T) {
	store, mr := newTestStore(t, time.Minute)
	ctx := context.Background()

	token, err := store.Issue(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, mr.TTL("verify:"+token))

	mr.FastForward(2 * time.Minute)

	_, err = store.Consume(ctx, token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenStore_UnknownToken(t *testing.T) {
	store, _ := newTestStore(t, 0)

	_, err := store.Consume(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestTokenStore_DistinctTokens(t *testing.T) {
	store, _ := newTestStore(t, time.Hour)
	ctx := context.Background()

	a, err := store.Issue(ctx, "user-1")
	require.NoError(t, err)
	b, err := store.Issue(ctx, "user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	// Both stay valid until used.
	_, err = store.Consume(ctx, a)
	require.NoError(t, err)
	_, err = store.Consume(ctx, b)
	require.NoError(t, err)
}
