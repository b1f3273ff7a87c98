package telegram

import (
	"fmt"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers a message to a single Telegram chat
type Sender interface {
	Send(chatID int64, text string) error
}

// Notifier sends messages through the Telegram Bot API. Recipients are either
// a numeric chat ID or the "admin_group" alias which fans out to every
// configured admin chat.
type Notifier struct {
	bot        Sender
	adminChats []int64
}

// botSender wraps the tgbotapi client behind the Sender interface
type botSender struct {
	api *tgbotapi.BotAPI
}

func (b *botSender) Send(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

// NewNotifier creates a notifier backed by the Telegram Bot API.
// An empty token returns a nil notifier; callers treat that as "disabled".
func NewNotifier(botToken string, adminChats []int64) (*Notifier, error) {
	if botToken == "" {
		return nil, nil
	}

	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Printf("✅ Telegram bot authorized [@%s]", api.Self.UserName)
	return &Notifier{bot: &botSender{api: api}, adminChats: adminChats}, nil
}

// NewNotifierWithSender creates a notifier with a custom sender (used in tests)
func NewNotifierWithSender(sender Sender, adminChats []int64) *Notifier {
	return &Notifier{bot: sender, adminChats: adminChats}
}

// Deliver sends the message to the recipient. For the admin group alias the
// message goes to every admin chat; the first failure is returned after all
// chats were attempted.
func (n *Notifier) Deliver(recipient, message string) error {
	if recipient == "admin_group" {
		var firstErr error
		for _, chatID := range n.adminChats {
			if err := n.bot.Send(chatID, message); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid recipient '%s': %w", recipient, err)
	}
	return n.bot.Send(chatID, message)
}
