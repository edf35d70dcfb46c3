package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Notification carries the context of one emitted buy-order alert.
type Notification struct {
	SourceName string
	SourceURL  string
	Faction    string
	PrevCount  int
	BuyCount   int
	Diff       int
}

// Notifier delivers alert notifications.
type Notifier interface {
	Notify(ctx context.Context, notification Notification) error
}

// DiscordNotifier pushes alerts to a Discord webhook as a single embed.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
	logger     zerolog.Logger
}

// NewDiscordNotifier constructs a webhook notifier.
func NewDiscordNotifier(webhookURL string, timeout time.Duration, logger zerolog.Logger) *DiscordNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &DiscordNotifier{
		webhookURL: strings.TrimSpace(webhookURL),
		client:     &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "alert_discord").Logger(),
	}
}

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Color       int    `json:"color"`
}

type webhookPayload struct {
	Username string  `json:"username"`
	Embeds   []embed `json:"embeds"`
}

// Notify POSTs the embed to the webhook. Discord answers 204 on success.
func (n *DiscordNotifier) Notify(ctx context.Context, note Notification) error {
	if n.webhookURL == "" {
		return fmt.Errorf("webhook url not configured")
	}

	emoji, color := factionHint(note.Faction)
	payload := webhookPayload{
		Username: fmt.Sprintf("%s %s", emoji, note.SourceName),
		Embeds: []embed{{
			Title:       fmt.Sprintf("BUY ORDERS updated — %s", note.SourceName),
			Description: renderDescription(note),
			URL:         note.SourceURL,
			Color:       color,
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return fmt.Errorf("webhook status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	n.logger.Info().Str("source", note.SourceName).
		Int("buy_count", note.BuyCount).
		Int("diff", note.Diff).
		Msg("alert delivered")
	return nil
}

func renderDescription(note Notification) string {
	sign := ""
	if note.Diff >= 0 {
		sign = "+"
	}
	return fmt.Sprintf("BUY rows changed: %d → %d (%s%d)\n%s",
		note.PrevCount, note.BuyCount, sign, note.Diff, note.SourceURL)
}

// factionHint maps the optional faction tag to the display emoji and embed
// color used in the webhook message.
func factionHint(faction string) (string, int) {
	switch faction {
	case "oni":
		return "🔵", 0x3498db
	case "mud":
		return "🔴", 0xe74c3c
	case "ustur":
		return "🟡", 0xf1c40f
	default:
		return "⚪", 0x95a5a6
	}
}

var _ Notifier = (*DiscordNotifier)(nil)
