// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/signal"
	signalBuiltin "github.com/AccelByte/extend-fitness-gamification/pkg/signal/builtin"
)

// InitSignalProcessor creates and initializes a signal processor with builtin event processors.
//
// ============================================================
// DEVELOPER: Register custom event processors here.
// ============================================================
// Event processors normalize raw activity events into signals.
// Each processor handles one event type (session completed,
// purchase completed, ...) and loads the player context with the
// settings snapshot the event will be processed under.
//
// Steps to add a new event processor:
// 1. Create your processor in pkg/signal/builtin/ (see examples)
// 2. Implement the EventProcessor interface
// 3. Register it in pkg/signal/builtin/event_processors.go
// ============================================================
func InitSignalProcessor(loader signal.PlayerContextLoader) *signal.Processor {
	processor := signal.NewProcessor(loader)

	signalBuiltin.RegisterEventProcessors(processor.GetEventProcessorRegistry())

	logrus.Infof("initialized signal processor with %d event processors",
		processor.GetEventProcessorRegistry().Count())

	return processor
}
