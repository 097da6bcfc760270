package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mvisser/snagbot/internal/database"
	"github.com/mvisser/snagbot/internal/stats"
)

// NewStatsHandler returns a handler for the /stats command: it reports a
// user's counters plus the global line and word totals.
func NewStatsHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	chatID := update.Message.Chat.ID

	var subject *database.User
	var err error
	if nick := commandArg(update.Message.Text); nick != "" {
		subject, err = userByNickname(ctx, h.deps.Engine, nick)
	} else {
		subject, err = resolveSender(ctx, h.deps.Engine, update.Message.From)
	}
	if err != nil {
		sendReply(ctx, b, h.deps, chatID, err.Error())
		return
	}

	stat, err := h.deps.Engine.UserStatistic(ctx, subject.ID)
	if errors.Is(err, database.ErrNotFound) {
		sendReply(ctx, b, h.deps, chatID, fmt.Sprintf("No statistics recorded for %s yet.", subject.Nickname))
		return
	}
	if err != nil {
		log.ErrorContext(ctx, "Failed to read user statistics", "error", err, "user_id", subject.ID)
		sendReply(ctx, b, h.deps, chatID, "Something went wrong reading statistics.")
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Stats for %s: %d lines, %d words, %d actions, %d profanities.",
		subject.Nickname, stat.Lines, stat.Words, stat.Actions, stat.Profanities)

	globalLines, linesErr := h.deps.Engine.GlobalVar(ctx, stats.VarGlobalLineCount)
	globalWords, wordsErr := h.deps.Engine.GlobalVar(ctx, stats.VarGlobalWordCount)
	if linesErr == nil && wordsErr == nil {
		fmt.Fprintf(&sb, "\nCommunity total: %d lines, %d words.", globalLines, globalWords)
	}

	sendReply(ctx, b, h.deps, chatID, sb.String())
}
