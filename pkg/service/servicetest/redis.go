// Package servicetest provides Redis-backed stores on top of miniredis for tests.
package servicetest

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/AccelByte/extend-fitness-gamification/pkg/service"
)

// NewRedis starts a miniredis instance that is closed with the test
func NewRedis(t testing.TB) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

// NewStores builds every store on a fresh miniredis instance.
// The unit of work retries generously so concurrent tests rarely see contention.
func NewStores(t testing.TB) (*service.Stores, *miniredis.Miniredis) {
	t.Helper()

	client, mr := NewRedis(t)
	stores := service.NewStores(client, service.StoresConfig{
		UnitOfWork: service.UnitOfWorkConfig{
			MaxRetries:      50,
			InitialInterval: time.Millisecond,
			MaxInterval:     10 * time.Millisecond,
		},
	})
	return stores, mr
}
