package telegram

import (
	"campuscart/backend/internal/models"
	"campuscart/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of the Bot API the notifier needs. *tgbotapi.BotAPI implements it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier pushes persisted notifications to users who linked a Telegram chat. It
// implements notify.Pusher.
type Notifier struct {
	Bot   Sender
	Users storage.Users
}

func NewNotifier(bot Sender, users storage.Users) *Notifier {
	return &Notifier{Bot: bot, Users: users}
}

func (n *Notifier) Push(ctx context.Context, notification *models.Notification) error {
	user, err := n.Users.GetUserByID(ctx, notification.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("telegram: load user %s: %w", notification.UserID, err)
	}
	if user.TelegramChatID == nil || !user.IsActive() {
		return nil
	}

	msg := tgbotapi.NewMessage(*user.TelegramChatID, FormatNotification(notification))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := n.Bot.Send(msg); err != nil {
		return fmt.Errorf("telegram: send to chat %d: %w", *user.TelegramChatID, err)
	}
	return nil
}

// FormatNotification renders a notification as MarkdownV2: bold title, then the body.
func FormatNotification(n *models.Notification) string {
	var b strings.Builder
	b.WriteString("🔔 *")
	b.WriteString(escapeMarkdownV2(n.Title))
	b.WriteString("*")
	if n.Message != "" {
		b.WriteString("\n\n")
		b.WriteString(escapeMarkdownV2(n.Message))
	}
	return b.String()
}

// escapeMarkdownV2 екранує всі зарезервовані символи MarkdownV2.
var markdownV2Replacer = strings.NewReplacer(
	"\\", "\\\\",
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"]", "\\]",
	"(", "\\(",
	")", "\\)",
	"~", "\\~",
	"`", "\\`",
	">", "\\>",
	"#", "\\#",
	"+", "\\+",
	"-", "\\-",
	"=", "\\=",
	"|", "\\|",
	"{", "\\{",
	"}", "\\}",
	".", "\\.",
	"!", "\\!",
)

func escapeMarkdownV2(text string) string {
	return markdownV2Replacer.Replace(text)
}
