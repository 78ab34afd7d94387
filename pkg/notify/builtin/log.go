package builtin

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-fitness-gamification/pkg/notify"
)

const (
	// LogSinkType writes every event as a structured log line
	LogSinkType = "log"
)

type LogSink struct {
	config notify.SinkConfig
	level  logrus.Level
}

func NewLogSink(config notify.SinkConfig) *LogSink {
	level, err := logrus.ParseLevel(config.GetParameterString("level", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	return &LogSink{config: config, level: level}
}

func (s *LogSink) ID() string {
	return s.config.ID
}

func (s *LogSink) Name() string {
	return "Log"
}

func (s *LogSink) Config() notify.SinkConfig {
	return s.config
}

func (s *LogSink) Publish(ctx context.Context, event notify.Event) error {
	fields := logrus.Fields{
		"sink":   s.config.ID,
		"event":  event.Kind(),
		"userId": event.UserID(),
	}

	switch e := event.(type) {
	case *notify.AchievementUnlocked:
		fields["achievementId"] = e.Achievement.ID
		fields["points"] = e.PointsAwarded
	case *notify.MilestoneReached:
		fields["milestoneId"] = e.Milestone.ID
		fields["balance"] = e.Balance
	case *notify.TierChanged:
		fields["from"] = e.From
		fields["to"] = e.To
	}

	logrus.WithFields(fields).Log(s.level, "gamification event")
	return nil
}
