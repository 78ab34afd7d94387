package service

import (
	"github.com/go-redis/redis/v8"
)

// Stores bundles the Redis-backed stores that share one client and one unit of work.
// Components receive this struct and use only the stores they need.
type Stores struct {
	UnitOfWork *UnitOfWork
	Ledger     *RedisLedgerStore
	Progress   *RedisProgressStore
	Catalog    *RedisCatalogStore
	Rewards    *RedisRewardStore
	Settings   *RedisSettingsStore
}

// StoresConfig configures every store built by NewStores
type StoresConfig struct {
	UnitOfWork UnitOfWorkConfig
	Ledger     RedisLedgerStoreConfig
	Settings   RedisSettingsStoreConfig
}

// NewStores creates the stores on top of a single Redis client
func NewStores(client *redis.Client, cfg StoresConfig) *Stores {
	uow := NewUnitOfWork(client, cfg.UnitOfWork)
	return &Stores{
		UnitOfWork: uow,
		Ledger:     NewRedisLedgerStore(uow, cfg.Ledger),
		Progress:   NewRedisProgressStore(client),
		Catalog:    NewRedisCatalogStore(client),
		Rewards:    NewRedisRewardStore(client),
		Settings:   NewRedisSettingsStore(client, cfg.Settings),
	}
}
