package notifier

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Alias1177/skinflip/models"
)

const telegramQueueSize = 64

// sender is the part of tgbotapi.BotAPI the sink uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramSink posts alerts to one chat. Messages are queued and sent from a
// background goroutine; when the queue is full new alerts are dropped.
type TelegramSink struct {
	bot     sender
	chatID  int64
	limiter *rate.Limiter
	logger  zerolog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan models.Alert
	done   chan struct{}
}

// NewTelegramSink connects to the bot API and starts the delivery loop.
func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	return newTelegramSink(bot, chatID), nil
}

func newTelegramSink(bot sender, chatID int64) *TelegramSink {
	s := &TelegramSink{
		bot:    bot,
		chatID: chatID,
		// Telegram allows about one message per second into a single chat.
		limiter: rate.NewLimiter(1, 3),
		logger:  log.With().Str("component", "telegram_notifier").Logger(),
		queue:   make(chan models.Alert, telegramQueueSize),
		done:    make(chan struct{}),
	}
	go s.loop()
	return s
}

// Notify queues an alert. After Close it drops the alert.
func (s *TelegramSink) Notify(alert models.Alert) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.Debug().Str("type", alert.Type).Msg("Telegram sink closed, alert dropped")
		return
	}
	select {
	case s.queue <- alert:
	default:
		s.logger.Warn().Str("type", alert.Type).Msg("Telegram queue full, alert dropped")
	}
}

// Close stops accepting alerts and waits for the queue to drain.
func (s *TelegramSink) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.done
}

func (s *TelegramSink) loop() {
	defer close(s.done)
	for alert := range s.queue {
		if err := s.limiter.Wait(context.Background()); err != nil {
			continue
		}
		msg := tgbotapi.NewMessage(s.chatID, formatAlert(alert))
		if _, err := s.bot.Send(msg); err != nil {
			s.logger.Error().Err(err).Str("type", alert.Type).Msg("Failed to send alert")
		}
	}
}

var levelIcons = map[models.AlertLevel]string{
	models.AlertLow:      "ℹ️",
	models.AlertMedium:   "🔔",
	models.AlertHigh:     "⚠️",
	models.AlertCritical: "🚨",
}

func formatAlert(alert models.Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s\n%s", levelIcons[alert.Level], strings.ToUpper(alert.Level.String()), alert.Type, alert.Message)

	keys := make([]string, 0, len(alert.Data))
	for k := range alert.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "\n• %s: %v", k, alert.Data[k])
	}
	return b.String()
}
