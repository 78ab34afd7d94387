// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"log/slog"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/pipeline"
	"github.com/AccelByte/extend-fitness-gamification/pkg/rule"
	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
)

// InitPipeline creates the pipeline manager.
//
// ============================================================
// DEVELOPER: Pipeline flow
// ============================================================
// Events → Signals → Earn (ledger + activity) → Rules → Bonus awards
//
// The refresher reloads the player context after the base award
// committed, so bonus rules see the streak the event produced.
// ============================================================
func InitPipeline(
	processor *signal.Processor,
	ruleEngine *rule.Engine,
	refresher pipeline.ContextRefresher,
) *pipeline.Manager {
	manager := pipeline.NewManager(processor, ruleEngine, refresher, slog.Default().With("component", "pipeline"))
	logrus.Infof("initialized pipeline manager")

	return manager
}
