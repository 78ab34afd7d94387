//go:build integration

package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

// Run with: go test -tags integration ./pkg/service/...
// Requires Redis on REDIS_HOST:REDIS_PORT (default localhost:6379).

func setupIntegrationLedger(t *testing.T) (*RedisLedgerStore, *redis.Client) {
	t.Helper()

	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port)})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	uow := NewUnitOfWork(client, UnitOfWorkConfig{
		MaxRetries:      100,
		InitialInterval: time.Millisecond,
		MaxInterval:     20 * time.Millisecond,
	})
	return NewRedisLedgerStore(uow, RedisLedgerStoreConfig{HistoryPageSize: 10}), client
}

func cleanupUser(t *testing.T, client *redis.Client, userID string) {
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, fmt.Sprintf("*%s*", userID)).Result()
		if len(keys) > 0 {
			_ = client.Del(ctx, keys...).Err()
		}
	})
}

func TestIntegration_ConcurrentAppendsKeepChain(t *testing.T) {
	ledger, client := setupIntegrationLedger(t)
	ctx := context.Background()

	userID := fmt.Sprintf("integration-user-%d", time.Now().UnixNano())
	cleanupUser(t, client, userID)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := earn(userID, 10)
			entry.SourceID = fmt.Sprintf("session-%d", i)
			_, err := ledger.Append(ctx, entry)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	balance, err := ledger.CurrentBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(writers*10), balance)
	require.NoError(t, ledger.Verify(ctx, userID))
}

func TestIntegration_DuplicateSourceIsIdempotent(t *testing.T) {
	ledger, client := setupIntegrationLedger(t)
	ctx := context.Background()

	userID := fmt.Sprintf("integration-user-%d", time.Now().UnixNano())
	cleanupUser(t, client, userID)

	entry := earn(userID, 50)
	entry.SourceID = "session-1"

	first, err := ledger.Append(ctx, entry)
	require.NoError(t, err)

	replay, err := ledger.Append(ctx, entry)
	require.ErrorIs(t, err, state.ErrDuplicateSource)
	require.NotNil(t, replay)
	assert.Equal(t, first.ID, replay.ID)

	balance, err := ledger.CurrentBalance(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), balance)
}
