package handlers

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSnagHandler returns a handler for the /snag command. Without an
// argument it arms the global one-shot override so the next message is
// archived; with a nickname argument it arms the per-nick override.
func NewSnagHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return snagHandler{deps}.Handle
}

type snagHandler struct {
	deps HandlerDeps
}

func (h snagHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "snag")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	nick := commandArg(update.Message.Text)
	if nick == "" {
		h.deps.Engine.ArmSnagNext()
		log.InfoContext(ctx, "Armed snag-next override", "chat_id", chatID)
		sendReply(ctx, b, h.deps, chatID, "Will snag the next line.")
		return
	}

	h.deps.Engine.ArmSnagNextFor(nick)
	log.InfoContext(ctx, "Armed snag-next override for nickname", "chat_id", chatID, "nickname", nick)
	sendReply(ctx, b, h.deps, chatID, fmt.Sprintf("Will snag the next line by %s.", nick))
}
