package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mvisser/snagbot/internal/database"
)

// NewTopicsHandler returns a handler for the /topics command: it reports
// the words most characteristic of a user's vocabulary in this chat.
func NewTopicsHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return topicsHandler{deps}.Handle
}

type topicsHandler struct {
	deps HandlerDeps
}

func (h topicsHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "topics")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	subject, err := h.subject(ctx, update.Message)
	if err != nil {
		sendReply(ctx, b, h.deps, chatID, err.Error())
		return
	}

	channel := strconv.FormatInt(chatID, 10)
	topics, err := h.deps.Engine.FindTopics(ctx, subject.ID, channel)
	if err != nil {
		log.ErrorContext(ctx, "Failed to compute topics", "error", err, "user_id", subject.ID)
		sendReply(ctx, b, h.deps, chatID, "Something went wrong computing topics.")
		return
	}
	if len(topics) == 0 {
		sendReply(ctx, b, h.deps, chatID, fmt.Sprintf("No topics available for %s yet.", subject.Nickname))
		return
	}

	limit := h.deps.Config.Stats.TopicLimit
	if len(topics) > limit {
		topics = topics[:limit]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Topics for %s:\n", subject.Nickname)
	for i, t := range topics {
		fmt.Fprintf(&sb, "%d. %s (%.2f)\n", i+1, t.Word, t.Score)
	}
	sendReply(ctx, b, h.deps, chatID, sb.String())
}

// subject resolves whose topics to report: the nickname argument if given,
// otherwise the requester themselves.
func (h topicsHandler) subject(ctx context.Context, msg *models.Message) (*database.User, error) {
	if nick := commandArg(msg.Text); nick != "" {
		return userByNickname(ctx, h.deps.Engine, nick)
	}
	return resolveSender(ctx, h.deps.Engine, msg.From)
}
