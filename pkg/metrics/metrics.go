// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package metrics holds the Prometheus collectors of the gamification service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gamification"

var (
	// PointsAwarded counts points written to the ledger, by source and transaction type.
	PointsAwarded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_total",
			Help:      "Sum of absolute point deltas appended to the ledger",
		},
		[]string{"source", "type"},
	)

	// LedgerAppends counts ledger rows, by transaction type.
	LedgerAppends = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_appends_total",
			Help:      "Number of ledger rows appended",
		},
		[]string{"type"},
	)

	// DuplicateSources counts replayed (user, source, sourceId) awards.
	DuplicateSources = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_sources_total",
			Help:      "Number of awards rejected because their source id was already recorded",
		},
		[]string{"source"},
	)

	// Redemptions counts redeem attempts, by outcome code.
	Redemptions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemptions_total",
			Help:      "Number of redeem attempts by outcome",
		},
		[]string{"outcome"},
	)

	// RedemptionTransitions counts redemption status changes.
	RedemptionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redemption_transitions_total",
			Help:      "Number of redemptions moved to a terminal status",
		},
		[]string{"status"},
	)

	// AchievementsUnlocked counts achievement completions.
	AchievementsUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "achievements_unlocked_total",
			Help:      "Number of achievements completed",
		},
		[]string{"achievement_id"},
	)

	// MilestonesReached counts milestone crossings.
	MilestonesReached = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "milestones_reached_total",
			Help:      "Number of milestones reached",
		},
		[]string{"milestone_id"},
	)

	// TierChanges counts tier promotions, by new tier.
	TierChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_changes_total",
			Help:      "Number of tier changes",
		},
		[]string{"tier"},
	)

	// UnitOfWorkRetries counts optimistic transactions retried after a watched key changed.
	UnitOfWorkRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_of_work_retries_total",
			Help:      "Number of atomic units retried because of a concurrent write",
		},
		[]string{"operation"},
	)

	// UnitOfWorkContention counts units that gave up after the retry cap.
	UnitOfWorkContention = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unit_of_work_contention_total",
			Help:      "Number of atomic units that failed with contention",
		},
		[]string{"operation"},
	)

	// UnitOfWorkDuration observes the time spent in an atomic unit, retries included.
	UnitOfWorkDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "unit_of_work_duration_seconds",
			Help:      "Duration of atomic units including retries",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// EventsProcessed counts intake events, by event type and outcome.
	EventsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_processed_total",
			Help:      "Number of intake events processed",
		},
		[]string{"event", "outcome"},
	)

	// RuleTriggers counts bonus rule triggers.
	RuleTriggers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_triggers_total",
			Help:      "Number of bonus rule triggers",
		},
		[]string{"rule_id"},
	)

	// NotificationsPublished counts sink deliveries, by sink and outcome.
	NotificationsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_published_total",
			Help:      "Number of notification events delivered to sinks",
		},
		[]string{"sink", "outcome"},
	)
)

// Collectors returns every collector of this package
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		PointsAwarded,
		LedgerAppends,
		DuplicateSources,
		Redemptions,
		RedemptionTransitions,
		AchievementsUnlocked,
		MilestonesReached,
		TierChanges,
		UnitOfWorkRetries,
		UnitOfWorkContention,
		UnitOfWorkDuration,
		EventsProcessed,
		RuleTriggers,
		NotificationsPublished,
	}
}

// Register adds every collector to reg
func Register(reg prometheus.Registerer) error {
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
