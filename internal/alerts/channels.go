package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	httpClient "cryptointel/internal/platform/http"
	"cryptointel/models"
)

// TelegramChannel delivers alerts to a Telegram chat.
type TelegramChannel struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramChannel creates a Telegram delivery channel.
func NewTelegramChannel(botToken string, chatID int64) (*TelegramChannel, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	return &TelegramChannel{bot: bot, chatID: chatID}, nil
}

// Send implements Channel.
func (t *TelegramChannel) Send(_ context.Context, event models.AlertEvent) error {
	msg := tgbotapi.NewMessage(t.chatID, event.Message)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("sending telegram alert: %w", err)
	}
	return nil
}

// WebhookChannel POSTs fired alerts as JSON to a configured URL.
type WebhookChannel struct {
	url    string
	client *httpClient.Client
}

// NewWebhookChannel creates a webhook delivery channel.
func NewWebhookChannel(url string, timeout time.Duration) *WebhookChannel {
	return &WebhookChannel{
		url: url,
		client: httpClient.NewClient(httpClient.ClientOptions{
			Timeout: timeout,
		}),
	}
}

// Send implements Channel.
func (w *WebhookChannel) Send(ctx context.Context, event models.AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding alert payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.DoRequest(ctx, req)
	if err != nil {
		return fmt.Errorf("posting alert webhook: %w", err)
	}
	resp.Body.Close()
	return nil
}
