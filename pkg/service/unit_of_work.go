package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/metrics"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const (
	defaultUnitOfWorkMaxRetries      = 5
	defaultUnitOfWorkInitialInterval = 5 * time.Millisecond
	defaultUnitOfWorkMaxInterval     = 200 * time.Millisecond
)

// UnitOfWork runs a function as one atomic Redis transaction.
// Every key read through the Tx is watched; buffered writes are sent in a
// single MULTI/EXEC. When a watched key changes before EXEC the whole
// function runs again, up to MaxRetries times, and then fails with
// state.ErrContention.
type UnitOfWork struct {
	client *redis.Client
	cfg    UnitOfWorkConfig
}

type UnitOfWorkConfig struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func NewUnitOfWork(client *redis.Client, cfg UnitOfWorkConfig) *UnitOfWork {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultUnitOfWorkMaxRetries
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = defaultUnitOfWorkInitialInterval
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = defaultUnitOfWorkMaxInterval
	}
	return &UnitOfWork{client: client, cfg: cfg}
}

// Client exposes the underlying Redis client for read-only queries
func (u *UnitOfWork) Client() *redis.Client {
	return u.client
}

func (u *UnitOfWork) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = u.cfg.InitialInterval
	b.MaxInterval = u.cfg.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, u.cfg.MaxRetries), ctx)
}

// Do runs fn atomically. name labels metrics and log lines.
// Any error returned by fn aborts the unit without writing anything.
func (u *UnitOfWork) Do(ctx context.Context, name string, fn func(tx *Tx) error) error {
	start := time.Now()
	defer func() {
		metrics.UnitOfWorkDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	attempts := 0
	var committed *Tx

	operation := func() error {
		attempts++
		err := u.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := newTx(ctx, rtx)
			if err := fn(tx); err != nil {
				return err
			}
			if len(tx.ops) > 0 {
				_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					for _, op := range tx.ops {
						op(pipe)
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			committed = tx
			return nil
		})

		if errors.Is(err, redis.TxFailedErr) {
			metrics.UnitOfWorkRetries.WithLabelValues(name).Inc()
			logrus.Debugf("%s: watched key changed, retrying (attempt %d)", name, attempts)
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	if err := backoff.Retry(operation, u.newBackOff(ctx)); err != nil {
		if errors.Is(err, redis.TxFailedErr) {
			metrics.UnitOfWorkContention.WithLabelValues(name).Inc()
			logrus.Warnf("%s: gave up after %d attempts", name, attempts)
			return fmt.Errorf("%w: %s gave up after %d attempts", state.ErrContention, name, attempts)
		}
		return err
	}

	for _, hook := range committed.afterCommit {
		hook()
	}
	return nil
}

// Tx is the view of one attempt of a unit of work
type Tx struct {
	ctx         context.Context
	rtx         *redis.Tx
	overlay     map[string]string
	watched     map[string]struct{}
	ops         []func(redis.Pipeliner)
	afterCommit []func()
}

func newTx(ctx context.Context, rtx *redis.Tx) *Tx {
	return &Tx{
		ctx:     ctx,
		rtx:     rtx,
		overlay: make(map[string]string),
		watched: make(map[string]struct{}),
	}
}

// Context returns the context of the unit
func (t *Tx) Context() context.Context {
	return t.ctx
}

// Watch adds keys to the watch set without reading them
func (t *Tx) Watch(keys ...string) error {
	var pending []string
	for _, k := range keys {
		if _, ok := t.watched[k]; !ok {
			pending = append(pending, k)
			t.watched[k] = struct{}{}
		}
	}
	if len(pending) == 0 {
		return nil
	}
	if err := t.rtx.Watch(t.ctx, pending...).Err(); err != nil {
		return fmt.Errorf("failed to watch keys: %w", err)
	}
	return nil
}

// Get reads a string key, returning false when it does not exist.
// Values written earlier in the same unit are returned from the overlay.
func (t *Tx) Get(key string) (string, bool, error) {
	if v, ok := t.overlay[key]; ok {
		return v, true, nil
	}
	if err := t.Watch(key); err != nil {
		return "", false, err
	}

	v, err := t.rtx.Get(t.ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

// GetJSON reads and decodes a JSON value
func (t *Tx) GetJSON(key string, v interface{}) (bool, error) {
	data, ok, err := t.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// GetInt reads an integer key, 0 when absent
func (t *Tx) GetInt(key string) (int64, error) {
	data, ok, err := t.Get(key)
	if err != nil || !ok {
		return 0, err
	}
	n, err := strconv.ParseInt(data, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", key, err)
	}
	return n, nil
}

// Set buffers a string write
func (t *Tx) Set(key, value string) {
	t.overlay[key] = value
	t.Queue(func(pipe redis.Pipeliner) {
		pipe.Set(t.ctx, key, value, 0)
	})
}

// SetJSON buffers a JSON write
func (t *Tx) SetJSON(key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	t.Set(key, string(data))
	return nil
}

// SetInt buffers an integer write
func (t *Tx) SetInt(key string, n int64) {
	t.Set(key, strconv.FormatInt(n, 10))
}

// Queue buffers a raw command for the EXEC block. Queued commands are not
// visible to reads in the same unit.
func (t *Tx) Queue(op func(pipe redis.Pipeliner)) {
	t.ops = append(t.ops, op)
}

// AfterCommit registers a hook that runs once the unit has committed
func (t *Tx) AfterCommit(hook func()) {
	t.afterCommit = append(t.afterCommit, hook)
}
