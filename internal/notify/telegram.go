package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramConfig identifies the bot and the staff chat it posts to
type TelegramConfig struct {
	BotToken string
	ChatID   string
}

// TelegramChannel delivers notifications through the Telegram Bot API
type TelegramChannel struct {
	cfg     TelegramConfig
	client  *http.Client
	baseURL string
}

func NewTelegramChannel(cfg TelegramConfig) *TelegramChannel {
	return &TelegramChannel{
		cfg:     cfg,
		client:  &http.Client{Timeout: sendTimeout},
		baseURL: telegramAPIBase,
	}
}

func (c *TelegramChannel) Name() string { return "telegram" }

func (c *TelegramChannel) Configured() bool {
	return c.cfg.BotToken != "" && c.cfg.ChatID != ""
}

func (c *TelegramChannel) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(map[string]string{
		"chat_id":    c.cfg.ChatID,
		"text":       msg.HTML,
		"parse_mode": "HTML",
	})
	if err != nil {
		return fmt.Errorf("failed to encode telegram payload: %v", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.cfg.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// newTestTelegramChannel points the channel at a stand-in server
func newTestTelegramChannel(cfg TelegramConfig, baseURL string) *TelegramChannel {
	return &TelegramChannel{
		cfg:     cfg,
		client:  &http.Client{Timeout: time.Second},
		baseURL: baseURL,
	}
}
