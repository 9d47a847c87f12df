package notify

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"casino_platform/pkg/logger"
)

// TelegramNotifier mirrors admin events into an operators' chat. It is
// optional; a nil notifier is a no-op.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *logger.Logger
}

func NewTelegramNotifier(token string, chatID int64, log *logger.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram bot: %w", err)
	}
	log.Infof("telegram notifier authorized as @%s", bot.Self.UserName)
	return &TelegramNotifier{bot: bot, chatID: chatID, logger: log}, nil
}

func (t *TelegramNotifier) SendAdminEvent(ev Event) error {
	if t == nil {
		return nil
	}

	msg := tgbotapi.NewMessage(t.chatID, formatAdminEvent(ev))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func formatAdminEvent(ev Event) string {
	text := fmt.Sprintf("*%s*\noperator: `%s`\nuser: `%s`", ev.Kind, ev.OperatorID, ev.UserID)
	for k, v := range ev.Data {
		text += fmt.Sprintf("\n%s: `%v`", k, v)
	}
	return text
}
