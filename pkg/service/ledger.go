package service

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/metrics"
	"github.com/AccelByte/extend-fitness-gamification/pkg/state"
)

const (
	ledgerKeyPrefix      = "gamification:ledger:"
	leaderboardKey       = "gamification:leaderboard:points"
	defaultHistoryPage   = 100
	ledgerAppendUnitName = "ledger.append"
)

// RedisLedgerStore keeps an append-only log of point transactions per user.
// The balance key always equals the balance of the last log row; both are
// written in the same EXEC.
type RedisLedgerStore struct {
	uow *UnitOfWork
	cfg RedisLedgerStoreConfig
}

type RedisLedgerStoreConfig struct {
	// HistoryPageSize is the number of rows read per LRANGE
	HistoryPageSize int64
}

func NewRedisLedgerStore(uow *UnitOfWork, cfg RedisLedgerStoreConfig) *RedisLedgerStore {
	if cfg.HistoryPageSize <= 0 {
		cfg.HistoryPageSize = defaultHistoryPage
	}
	return &RedisLedgerStore{uow: uow, cfg: cfg}
}

func makeBalanceKey(userID string) string {
	return fmt.Sprintf("%s%s:balance", ledgerKeyPrefix, userID)
}

func makeLogKey(userID string) string {
	return fmt.Sprintf("%s%s:log", ledgerKeyPrefix, userID)
}

func makeEarnedKey(userID string) string {
	return fmt.Sprintf("%s%s:earned", ledgerKeyPrefix, userID)
}

func makeSourceKey(userID string, source state.Source, sourceID string) string {
	return fmt.Sprintf("%s%s:source:%s:%s", ledgerKeyPrefix, userID, source, sourceID)
}

// Append writes one transaction in its own unit of work.
// A replayed source id returns the original row together with state.ErrDuplicateSource.
func (l *RedisLedgerStore) Append(ctx context.Context, entry state.LedgerEntry) (*state.PointTransaction, error) {
	var row *state.PointTransaction
	err := l.uow.Do(ctx, ledgerAppendUnitName, func(tx *Tx) error {
		var err error
		row, err = l.AppendTx(tx, entry, time.Now().UTC())
		return err
	})
	if err != nil {
		return row, err
	}
	return row, nil
}

// AppendTx writes one transaction inside the caller's unit of work
func (l *RedisLedgerStore) AppendTx(tx *Tx, entry state.LedgerEntry, now time.Time) (*state.PointTransaction, error) {
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	var sourceKey string
	if entry.SourceID != "" {
		sourceKey = makeSourceKey(entry.UserID, entry.Source, entry.SourceID)
		var original state.PointTransaction
		found, err := tx.GetJSON(sourceKey, &original)
		if err != nil {
			return nil, err
		}
		if found {
			metrics.DuplicateSources.WithLabelValues(string(entry.Source)).Inc()
			logrus.Infof("source %s/%s already recorded for user %s as %s",
				entry.Source, entry.SourceID, entry.UserID, original.ID)
			return &original, fmt.Errorf("%w: %s/%s", state.ErrDuplicateSource, entry.Source, entry.SourceID)
		}
	}

	balance, err := l.BalanceTx(tx, entry.UserID)
	if err != nil {
		return nil, err
	}

	row := &state.PointTransaction{
		ID:          uuid.NewString(),
		UserID:      entry.UserID,
		Points:      entry.Points,
		Balance:     balance + entry.Points,
		Type:        entry.Type,
		Source:      entry.Source,
		SourceID:    entry.SourceID,
		Description: entry.Description,
		AwardedBy:   entry.AwardedBy,
		CreatedAt:   now,
	}
	if entry.Metadata != nil {
		meta, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal metadata: %w", err)
		}
		row.Metadata = meta
	}

	data, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}

	tx.SetInt(makeBalanceKey(entry.UserID), row.Balance)
	logKey := makeLogKey(entry.UserID)
	tx.Queue(func(pipe redis.Pipeliner) {
		pipe.RPush(tx.Context(), logKey, data)
		pipe.ZAdd(tx.Context(), leaderboardKey, &redis.Z{Score: float64(row.Balance), Member: entry.UserID})
	})
	if sourceKey != "" {
		tx.Set(sourceKey, string(data))
	}
	if entry.Type.CountsTowardLifetime() {
		earned, err := tx.GetInt(makeEarnedKey(entry.UserID))
		if err != nil {
			return nil, err
		}
		tx.SetInt(makeEarnedKey(entry.UserID), earned+entry.Points)
	}

	tx.AfterCommit(func() {
		points := row.Points
		if points < 0 {
			points = -points
		}
		metrics.PointsAwarded.WithLabelValues(string(row.Source), string(row.Type)).Add(float64(points))
		metrics.LedgerAppends.WithLabelValues(string(row.Type)).Inc()
		logrus.Debugf("appended %s %+d for user %s, balance %d", row.Type, row.Points, row.UserID, row.Balance)
	})

	return row, nil
}

// BalanceTx reads and watches the user's balance inside a unit of work
func (l *RedisLedgerStore) BalanceTx(tx *Tx, userID string) (int64, error) {
	return tx.GetInt(makeBalanceKey(userID))
}

// LifetimeEarnedTx reads and watches the user's lifetime-earned total inside a unit of work
func (l *RedisLedgerStore) LifetimeEarnedTx(tx *Tx, userID string) (int64, error) {
	return tx.GetInt(makeEarnedKey(userID))
}

// CurrentBalance returns the balance of the user's latest transaction, 0 if there is none.
// The balance key and the last log row are read in one MULTI; disagreement is
// reported as state.ErrLedgerInconsistent and left for manual reconciliation.
func (l *RedisLedgerStore) CurrentBalance(ctx context.Context, userID string) (int64, error) {
	var balanceCmd *redis.StringCmd
	var lastCmd *redis.StringCmd
	_, err := l.uow.Client().TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		balanceCmd = pipe.Get(ctx, makeBalanceKey(userID))
		lastCmd = pipe.LIndex(ctx, makeLogKey(userID), -1)
		return nil
	})
	if err != nil && err != redis.Nil {
		logrus.Errorf("failed to read balance for user %s: %v", userID, err)
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}

	stored, balanceErr := balanceCmd.Int64()
	last, lastErr := lastCmd.Result()

	switch {
	case balanceErr == redis.Nil && lastErr == redis.Nil:
		return 0, nil
	case balanceErr != nil && balanceErr != redis.Nil:
		return 0, fmt.Errorf("failed to parse balance: %w", balanceErr)
	case lastErr != nil && lastErr != redis.Nil:
		return 0, fmt.Errorf("failed to read last transaction: %w", lastErr)
	}

	var row state.PointTransaction
	if lastErr == nil {
		if err := json.Unmarshal([]byte(last), &row); err != nil {
			return 0, fmt.Errorf("failed to unmarshal last transaction: %w", err)
		}
	}

	if balanceErr == redis.Nil || lastErr == redis.Nil || row.Balance != stored {
		logrus.Errorf("ledger inconsistency for user %s: balance key %d, last row %s balance %d",
			userID, stored, row.ID, row.Balance)
		return 0, fmt.Errorf("%w: user %s", state.ErrLedgerInconsistent, userID)
	}

	return stored, nil
}

// LifetimeEarned returns the sum of the user's earn and bonus rows
func (l *RedisLedgerStore) LifetimeEarned(ctx context.Context, userID string) (int64, error) {
	v, err := l.uow.Client().Get(ctx, makeEarnedKey(userID)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get lifetime earned: %w", err)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse lifetime earned: %w", err)
	}
	return n, nil
}

// HistoryFilter narrows a history scan. Zero values match everything.
type HistoryFilter struct {
	Types   []state.TransactionType
	Sources []state.Source
	Since   time.Time
	Until   time.Time
	Limit   int
}

func (f HistoryFilter) matches(row *state.PointTransaction) bool {
	if len(f.Types) > 0 && !slices.Contains(f.Types, row.Type) {
		return false
	}
	if len(f.Sources) > 0 && !slices.Contains(f.Sources, row.Source) {
		return false
	}
	if !f.Since.IsZero() && row.CreatedAt.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !row.CreatedAt.Before(f.Until) {
		return false
	}
	return true
}

// History returns the user's transactions in ascending order. Rows are read
// lazily one page at a time; every range over the sequence starts again
// from the first row.
func (l *RedisLedgerStore) History(ctx context.Context, userID string, filter HistoryFilter) iter.Seq2[state.PointTransaction, error] {
	return func(yield func(state.PointTransaction, error) bool) {
		key := makeLogKey(userID)
		page := l.cfg.HistoryPageSize
		yielded := 0

		for start := int64(0); ; start += page {
			rows, err := l.uow.Client().LRange(ctx, key, start, start+page-1).Result()
			if err != nil {
				yield(state.PointTransaction{}, fmt.Errorf("failed to read history page: %w", err))
				return
			}

			for _, data := range rows {
				var row state.PointTransaction
				if err := json.Unmarshal([]byte(data), &row); err != nil {
					yield(state.PointTransaction{}, fmt.Errorf("failed to unmarshal transaction: %w", err))
					return
				}
				if !filter.matches(&row) {
					continue
				}
				if !yield(row, nil) {
					return
				}
				yielded++
				if filter.Limit > 0 && yielded >= filter.Limit {
					return
				}
			}

			if int64(len(rows)) < page {
				return
			}
		}
	}
}

// Verify walks the full history and checks the running-sum invariant
func (l *RedisLedgerStore) Verify(ctx context.Context, userID string) error {
	var prev int64
	n := 0
	for row, err := range l.History(ctx, userID, HistoryFilter{}) {
		if err != nil {
			return err
		}
		if row.Balance != prev+row.Points {
			logrus.Errorf("ledger row %d (%s) of user %s: balance %d, expected %d",
				n, row.ID, userID, row.Balance, prev+row.Points)
			return fmt.Errorf("%w: row %s of user %s", state.ErrLedgerInconsistent, row.ID, userID)
		}
		prev = row.Balance
		n++
	}
	return nil
}

// LeaderboardEntry is one ranked balance
type LeaderboardEntry struct {
	Rank    int64  `json:"rank"`
	UserID  string `json:"userId"`
	Balance int64  `json:"balance"`
}

// Leaderboard returns the top balances, highest first
func (l *RedisLedgerStore) Leaderboard(ctx context.Context, limit int64) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	zs, err := l.uow.Client().ZRevRangeWithScores(ctx, leaderboardKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]LeaderboardEntry, 0, len(zs))
	for i, z := range zs {
		member, _ := z.Member.(string)
		entries = append(entries, LeaderboardEntry{
			Rank:    int64(i + 1),
			UserID:  member,
			Balance: int64(z.Score),
		})
	}
	return entries, nil
}
