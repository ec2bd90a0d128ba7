package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Notifier pushes human-facing event messages. Delivery is best effort; a
// failed notification must never affect trading behavior.
type Notifier interface {
	Notify(ctx context.Context, text string)
}

// TelegramNotifier sends messages through the Telegram bot API.
type TelegramNotifier struct {
	token   string
	chatID  string
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

func NewTelegramNotifier(token, chatID string, log *slog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		token:   token,
		chatID:  chatID,
		baseURL: "https://api.telegram.org",
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log.With("component", "telegram"),
	}
}

// Notify posts the message. Errors are logged and swallowed.
func (n *TelegramNotifier) Notify(ctx context.Context, text string) {
	if n.token == "" || n.chatID == "" {
		return
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	form := url.Values{
		"chat_id": {n.chatID},
		"text":    {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		n.log.Warn("failed to build telegram request", "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.http.Do(req)
	if err != nil {
		n.log.Warn("failed to send telegram message", "err", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.log.Warn("telegram rejected message", "status", resp.StatusCode)
	}
}

// NopNotifier discards every message. Used when no chat is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string) {}
