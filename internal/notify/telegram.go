// ABOUTME: Telegram notification sink for remote alerting
// ABOUTME: Sends asynchronously with bounded retries so callers never block

package notify

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Telegram forwards messages to a chat.
type Telegram struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
	logger         *log.Logger
	wg             sync.WaitGroup
}

// TelegramOptions configures the sink.
type TelegramOptions struct {
	BotToken string
	ChatID   string
	// Endpoint overrides the Bot API URL format, e.g. for a local relay.
	Endpoint       string
	MaxRetries     int
	RetryDelayBase time.Duration
	Logger         *log.Logger
}

// NewTelegram connects to the Bot API and validates the chat ID.
func NewTelegram(opts TelegramOptions) (*Telegram, error) {
	chatID, err := strconv.ParseInt(opts.ChatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(opts.BotToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.RetryDelayBase <= 0 {
		opts.RetryDelayBase = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &Telegram{
		bot:            bot,
		chatID:         chatID,
		maxRetries:     opts.MaxRetries,
		retryDelayBase: opts.RetryDelayBase,
		logger:         opts.Logger,
	}, nil
}

// NotifyError implements Notifier. Delivery happens in the background.
func (t *Telegram) NotifyError(message string) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.Send(message); err != nil {
			t.logger.Warn("telegram notification failed", "err", err)
		}
	}()
}

// Send delivers one message, retrying with exponential backoff.
func (t *Telegram) Send(message string) error {
	msg := tgbotapi.NewMessage(t.chatID, message)

	var lastErr error
	for attempt := 0; attempt < t.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(t.retryDelayBase * time.Duration(1<<(attempt-1)))
		}
		if _, err := t.bot.Send(msg); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("failed after %d attempts: %w", t.maxRetries, lastErr)
}

// Flush waits for background deliveries to finish.
func (t *Telegram) Flush() {
	t.wg.Wait()
}
