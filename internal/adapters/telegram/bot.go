package telegram

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/kirillkom/paperless-concierge/internal/core/ports"
	"github.com/kirillkom/paperless-concierge/internal/observability/metrics"
)

// Bot is the interaction dispatcher: it consumes the Telegram long-poll
// stream and routes each update to exactly one handler. Every update is
// handled in its own goroutine so a slow upload never blocks another
// user's query.
type Bot struct {
	api      *tgbotapi.BotAPI
	uploader ports.Uploader
	checker  ports.StatusChecker
	querier  ports.Querier
	auth     ports.Authorizer

	// limiter paces outbound sends and edits below the Telegram API
	// limits; progress edits for many concurrent jobs go through it.
	limiter *rate.Limiter

	downloads *http.Client

	service string
	log     *slog.Logger
	metrics *metrics.BotMetrics
}

type Options struct {
	PollTimeout time.Duration
	SendRate    rate.Limit
	SendBurst   int
}

func New(
	token string,
	uploader ports.Uploader,
	checker ports.StatusChecker,
	querier ports.Querier,
	auth ports.Authorizer,
	service string,
	log *slog.Logger,
	botMetrics *metrics.BotMetrics,
	options Options,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	sendRate := options.SendRate
	if sendRate <= 0 {
		sendRate = 20
	}
	sendBurst := options.SendBurst
	if sendBurst <= 0 {
		sendBurst = 5
	}

	return &Bot{
		api:       api,
		uploader:  uploader,
		checker:   checker,
		querier:   querier,
		auth:      auth,
		limiter:   rate.NewLimiter(sendRate, sendBurst),
		downloads: &http.Client{Timeout: 60 * time.Second},
		service:   service,
		log:       log,
		metrics:   botMetrics,
	}, nil
}

// Run consumes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30

	updates := b.api.GetUpdatesChan(updateConfig)
	b.log.Info("bot_started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("bot_stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error("update_handler_panic", "panic", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.observeUpdate("callback")
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		b.observeUpdate("other")
	case update.Message.IsCommand():
		b.observeUpdate("command")
		b.handleCommand(ctx, update.Message)
	case update.Message.Document != nil || len(update.Message.Photo) > 0:
		b.observeUpdate("file")
		b.handleFile(ctx, update.Message)
	default:
		b.observeUpdate("other")
	}
}

func (b *Bot) observeUpdate(kind string) {
	if b.metrics != nil {
		b.metrics.ObserveUpdate(b.service, kind)
	}
}

// SendMessage sends text to a chat and returns the new message id.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) (int, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	sent, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// EditMessage rewrites an earlier message. Re-applying the same text is
// not an error: Telegram rejects no-op edits and we swallow that.
func (b *Bot) EditMessage(ctx context.Context, chatID int64, messageID int, text string) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func (b *Bot) editWithKeyboard(ctx context.Context, chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	_, err := b.api.Send(edit)
	if err != nil && strings.Contains(err.Error(), "message is not modified") {
		return nil
	}
	return err
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, chatID, text); err != nil {
		b.log.Error("send_failed", "chat_id", chatID, "error", err)
	}
}
