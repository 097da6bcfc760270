package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mvisser/snagbot/internal/stats"
)

// NewMessageHandler returns the default handler that feeds every non-command
// group message through the stats engine.
func NewMessageHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	if update.Message == nil || update.Message.From == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message

	sender, err := resolveSender(ctx, h.deps.Engine, msg.From)
	if err != nil {
		log.ErrorContext(ctx, "Failed to resolve sender", "error", err, "user_id", msg.From.ID)
		return
	}

	// Telegram has no native /me; emulate the IRC action convention.
	body := msg.Text
	action := false
	if rest, ok := strings.CutPrefix(body, "/me "); ok {
		body = rest
		action = true
	}

	sentAt := time.Unix(int64(msg.Date), 0).UTC()
	inbound := stats.InboundMessage{
		Sender:  sender,
		Channel: strconv.FormatInt(msg.Chat.ID, 10),
		Body:    body,
		Action:  action,
		SentAt:  sentAt,
	}

	reply := func(text string) {
		sendReply(ctx, b, h.deps, msg.Chat.ID, text)
	}

	if err := h.deps.Engine.ProcessMessage(ctx, inbound, reply); err != nil {
		// Aggregation failures are logged and dropped; they must never
		// break processing of other messages.
		log.ErrorContext(ctx, "Message aggregation failed", "error", err, "user_id", sender.ID, "chat_id", msg.Chat.ID)
	}
}
