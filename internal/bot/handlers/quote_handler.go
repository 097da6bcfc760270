package handlers

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewQuoteHandler returns a handler for the /quote command: it searches the
// archived quotes for a term and replies with a match.
func NewQuoteHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return quoteHandler{deps}.Handle
}

type quoteHandler struct {
	deps HandlerDeps
}

func (h quoteHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "quote")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	search := commandArg(update.Message.Text)
	if search == "" {
		sendReply(ctx, b, h.deps, chatID, "Usage: /quote <search text>")
		return
	}

	quotes, err := h.deps.Engine.SearchQuotes(ctx, search)
	if err != nil {
		log.ErrorContext(ctx, "Quote search failed", "error", err, "search", search)
		sendReply(ctx, b, h.deps, chatID, "Something went wrong searching quotes.")
		return
	}
	if len(quotes) == 0 {
		sendReply(ctx, b, h.deps, chatID, fmt.Sprintf("No quotes matching %q.", search))
		return
	}

	q := quotes[len(quotes)-1]
	sendReply(ctx, b, h.deps, chatID, fmt.Sprintf("%q (taken %s)", q.Text, q.TakenAt.Format("2006-01-02")))
}
