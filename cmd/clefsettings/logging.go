package main

import (
	"context"

	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/sirupsen/logrus"

	settings "github.com/goliatone/go-clef-settings"
)

// newSettingsLogger reports resolver events through logrus. Failures log at
// warn, everything else at debug.
func newSettingsLogger(logger *logrus.Logger) settings.Logger {
	return settings.LoggerFunc(func(event settings.LogEvent) {
		entry := logger.WithFields(logrus.Fields{
			"operation": event.Operation,
			"mode":      event.Mode.String(),
		})
		if event.Option != "" {
			entry = entry.WithField("option", event.Option)
		}
		if event.Key != "" {
			entry = entry.WithField("key", event.Key)
		}
		if event.Duration > 0 {
			entry = entry.WithField("duration", event.Duration.String())
		}
		message := event.Message
		if message == "" {
			message = "settings " + event.Operation
		}
		if event.Err != nil {
			entry.WithError(event.Err).Warn(message)
			return
		}
		entry.Debug(message)
	})
}

// activitySink writes go-users activity records to the log.
type activitySink struct {
	logger *logrus.Logger
}

func newActivitySink(logger *logrus.Logger) usertypes.ActivitySink {
	return activitySink{logger: logger}
}

func (s activitySink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.logger.WithFields(logrus.Fields{
		"verb":        record.Verb,
		"actor_id":    record.ActorID.String(),
		"tenant_id":   record.TenantID.String(),
		"object_type": record.ObjectType,
		"object_id":   record.ObjectID,
		"channel":     record.Channel,
		"data":        record.Data,
		"occurred_at": record.OccurredAt,
	}).Info("Setting changed")
	return nil
}
