package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"eilbot/internal/notify"
)

// Send delivers one rendered payload to one chat and classifies the
// outcome. It implements notify.Sender.
func (b *Bot) Send(ctx context.Context, chatID int64, p notify.Payload) notify.SendResult {
	select {
	case <-ctx.Done():
		return notify.SendResult{Outcome: notify.Transient, Err: ctx.Err()}
	default:
	}

	msg := tgbotapi.NewMessage(chatID, p.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if p.ButtonURL != "" {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(p.ButtonText, p.ButtonURL),
			),
		)
	}

	_, err := b.api.Send(msg)
	return classify(err)
}

// goneMessages are API error texts that mean the chat is permanently
// unreachable and should be dropped from the subscriber set.
var goneMessages = []string{
	"chat not found",
	"user is deactivated",
	"bot was kicked",
	"chat was deleted",
}

// classify maps a Telegram API error onto the closed delivery outcome
// set consumed by the dispatcher.
func classify(err error) notify.SendResult {
	if err == nil {
		return notify.SendResult{Outcome: notify.Delivered}
	}

	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		// transport failure or context timeout, not an API verdict
		return notify.SendResult{Outcome: notify.Transient, Err: err}
	}

	if apiErr.ResponseParameters.MigrateToChatID != 0 {
		return notify.SendResult{
			Outcome:    notify.Migrated,
			MigratedTo: apiErr.ResponseParameters.MigrateToChatID,
			Err:        err,
		}
	}

	switch apiErr.Code {
	case 403:
		return notify.SendResult{Outcome: notify.Gone, Err: err}
	case 429:
		return notify.SendResult{Outcome: notify.Transient, Err: err}
	case 400:
		lower := strings.ToLower(apiErr.Message)
		for _, m := range goneMessages {
			if strings.Contains(lower, m) {
				return notify.SendResult{Outcome: notify.Gone, Err: err}
			}
		}
		return notify.SendResult{Outcome: notify.Malformed, Err: err}
	}

	// unknown codes (5xx and friends) must not cost a subscription
	return notify.SendResult{Outcome: notify.Transient, Err: err}
}
