package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lunara-app/lunara/internal/models"
)

// DeliverySender hands a due reminder to whatever transport actually reaches
// the subject (push, email, chat bot). The dispatcher treats it as opaque:
// a failure leaves the reminder unsent so the next sweep retries it.
type DeliverySender interface {
	Send(ctx context.Context, reminder models.Reminder) error
}

// LogSender writes reminders to the process log. It is the default transport
// for deployments without an external channel configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, reminder models.Reminder) error {
	log.Printf("delivering reminder %d to subject %d: %s", reminder.ID, reminder.SubjectID, reminder.Message)
	return nil
}

type TelegramSender struct {
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegramSenderFromEnv builds a Telegram transport from
// TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID. Reports false when either is
// missing.
func NewTelegramSenderFromEnv() (*TelegramSender, bool) {
	botToken := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if botToken == "" || chatID == "" {
		return nil, false
	}
	return &TelegramSender{
		botToken: botToken,
		chatID:   chatID,
		client: &http.Client{
			Timeout: 8 * time.Second,
		},
	}, true
}

func (sender *TelegramSender) Send(ctx context.Context, reminder models.Reminder) error {
	text := reminder.Message
	if reminder.Title != "" {
		text = reminder.Title + "\n" + reminder.Message
	}

	values := url.Values{}
	values.Set("chat_id", sender.chatID)
	values.Set("text", text)

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", sender.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := sender.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("telegram status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
