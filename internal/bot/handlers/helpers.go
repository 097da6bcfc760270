package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mvisser/snagbot/internal/database"
	"github.com/mvisser/snagbot/internal/stats"
)

// resolveSender maps a Telegram user to a stored user, creating or updating
// the row. The Telegram user ID is the stable unique identifier; the
// nickname tracks the current username (falling back to the first name).
func resolveSender(ctx context.Context, engine *stats.Engine, from *models.User) (*database.User, error) {
	nickname := from.Username
	if nickname == "" {
		nickname = from.FirstName
	}
	addressable := from.FirstName
	if addressable == "" {
		addressable = nickname
	}
	return engine.UpsertUser(ctx, &database.User{
		UniqueID:        strconv.FormatInt(from.ID, 10),
		Nickname:        nickname,
		AddressableName: addressable,
	})
}

// userByNickname finds exactly one user by nickname. Zero or multiple
// matches are reported as errors for the caller to surface.
func userByNickname(ctx context.Context, engine *stats.Engine, nickname string) (*database.User, error) {
	matches, err := engine.UsersByNickname(ctx, nickname)
	if err != nil {
		return nil, err
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no user known by nickname %q", nickname)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("multiple users known by nickname %q", nickname)
	}
}

// commandArg returns the argument text after the command itself, trimmed.
func commandArg(text string) string {
	_, arg, _ := strings.Cut(text, " ")
	return strings.TrimSpace(arg)
}

// sendReply sends a plain text message to the chat, logging failures.
func sendReply(ctx context.Context, b *tgbot.Bot, deps HandlerDeps, chatID int64, text string) {
	if text == "" {
		return
	}
	if _, err := b.SendMessage(ctx, &tgbot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
