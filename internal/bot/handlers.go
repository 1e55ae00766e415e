package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if isGroup(msg.Chat) && !b.isGroupAdmin(chatID, msg.From.ID) {
		b.reply(chatID, "❌ Nur Gruppenadministratoren können Eilmeldungen abonnieren.")
		return
	}

	subscribed, err := b.store.IsSubscriber(ctx, chatID)
	if err != nil {
		b.log.Error("check subscription", "chat_id", chatID, "error", err)
		b.reply(chatID, "❌ Beim Abonnieren ist ein Fehler aufgetreten.")
		return
	}
	if subscribed {
		b.reply(chatID, "<b>✅ Du erhältst bereits Eilmeldungen.</b>\nNutze /stop zum Deabonnieren.")
		return
	}

	if err := b.store.AddSubscriber(ctx, chatID); err != nil {
		b.log.Error("add subscriber", "chat_id", chatID, "error", err)
		b.reply(chatID, "❌ Beim Abonnieren ist ein Fehler aufgetreten.")
		return
	}

	b.log.Info("new subscriber", "chat_id", chatID)

	text := "<b>✅ Du erhältst jetzt neue Eilmeldungen!</b>\n" +
		"Nutze /stop, um keine Eilmeldungen mehr zu erhalten.\n\n" +
		"<b>ACHTUNG:</b> "
	if isGroup(msg.Chat) {
		text += "Wenn du den Bot aus der Gruppe entfernst, musst du die Eilmeldungen erneut abonnieren!"
	} else {
		text += "Wenn du den Bot blockierst, musst du die Eilmeldungen erneut abonnieren!"
	}
	b.reply(chatID, text)
}

func (b *Bot) handleStop(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if isGroup(msg.Chat) && !b.isGroupAdmin(chatID, msg.From.ID) {
		b.reply(chatID, "❌ Nur Gruppenadministratoren können Eilmeldungen deabonnieren.")
		return
	}

	subscribed, err := b.store.IsSubscriber(ctx, chatID)
	if err != nil {
		b.log.Error("check subscription", "chat_id", chatID, "error", err)
		b.reply(chatID, "❌ Beim Deabonnieren ist ein Fehler aufgetreten.")
		return
	}
	if !subscribed {
		b.reply(chatID, "<b>❌ Eilmeldungen wurden noch nicht abonniert.</b>\nNutze /start zum Abonnieren.")
		return
	}

	if err := b.store.RemoveSubscriber(ctx, chatID); err != nil {
		b.log.Error("remove subscriber", "chat_id", chatID, "error", err)
		b.reply(chatID, "❌ Beim Deabonnieren ist ein Fehler aufgetreten.")
		return
	}

	b.log.Info("removed subscription", "chat_id", chatID)
	b.reply(chatID, "<b>✅ Du erhältst jetzt keine Eilmeldungen mehr.</b>\nNutze /start, um wieder Eilmeldungen zu erhalten.")
}

func (b *Bot) handleHelp(chatID int64) {
	b.reply(chatID, "<b>Eilmeldungen-Bot</b>\n"+
		"<b>/start:</b> Eilmeldungen erhalten\n"+
		"<b>/stop:</b> Eilmeldungen nicht mehr erhalten")
}

// handleCheck force-runs one poll cycle. Only allow-listed users may
// trigger it; anyone else is ignored without a reply.
func (b *Bot) handleCheck(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !b.cfg.IsAdmin(msg.From.ID) {
		return
	}

	b.log.Info("manual check triggered", "user_id", msg.From.ID)
	b.reply(msg.Chat.ID, "Prüfe auf neue Eilmeldungen…")
	go b.checker.Check(ctx)
}

func isGroup(chat *tgbotapi.Chat) bool {
	return chat.IsGroup() || chat.IsSuperGroup()
}
