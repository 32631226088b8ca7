package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// SMSConfig points at an SMS gateway webhook
type SMSConfig struct {
	WebhookURL string
	APIKey     string
	Recipient  string
}

// SMSChannel delivers the short form of a notification through an SMS
// gateway webhook
type SMSChannel struct {
	cfg    SMSConfig
	client *http.Client
}

func NewSMSChannel(cfg SMSConfig) *SMSChannel {
	return &SMSChannel{
		cfg:    cfg,
		client: &http.Client{Timeout: sendTimeout},
	}
}

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Configured() bool {
	return c.cfg.WebhookURL != "" && c.cfg.Recipient != ""
}

func (c *SMSChannel) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(map[string]string{
		"to":      c.cfg.Recipient,
		"message": msg.Short,
	})
	if err != nil {
		return fmt.Errorf("failed to encode sms payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build sms request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
