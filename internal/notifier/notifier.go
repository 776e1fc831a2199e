package notifier

import (
	"github.com/rs/zerolog"

	"github.com/Alias1177/skinflip/models"
)

// LogSink writes alerts to a zerolog logger.
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger.With().Str("component", "alerts").Logger()}
}

func (s *LogSink) Notify(alert models.Alert) {
	var ev *zerolog.Event
	switch alert.Level {
	case models.AlertCritical:
		ev = s.logger.Error()
	case models.AlertHigh:
		ev = s.logger.Warn()
	default:
		ev = s.logger.Info()
	}
	ev.Str("level_tag", alert.Level.String()).
		Str("type", alert.Type).
		Fields(alert.Data).
		Msg(alert.Message)
}

// FanOut delivers each alert to every sink in order.
type FanOut []models.AlertSink

func (f FanOut) Notify(alert models.Alert) {
	for _, s := range f {
		if s != nil {
			s.Notify(alert)
		}
	}
}

// MinLevel forwards only alerts at or above Level.
type MinLevel struct {
	Level models.AlertLevel
	Next  models.AlertSink
}

func (m MinLevel) Notify(alert models.Alert) {
	if alert.Level < m.Level || m.Next == nil {
		return
	}
	m.Next.Notify(alert)
}
