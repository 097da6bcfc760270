package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/mvisser/snagbot/internal/database"
	"github.com/mvisser/snagbot/internal/stats"
)

const (
	digestTimeout  = time.Minute
	digestTopWords = 5
)

// newStatsDigestTask returns a task that posts a community stats digest
// (global totals and the most-used words) to the configured chat.
func newStatsDigestTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "stats_digest")

	return func(ctx context.Context) error {
		chatID := deps.Config.Telegram.DigestChatID
		if chatID == 0 {
			log.WarnContext(ctx, "No digest chat configured, skipping digest")
			return nil
		}

		taskCtx, cancel := context.WithTimeout(ctx, digestTimeout)
		defer cancel()

		lines, err := deps.Engine.GlobalVar(taskCtx, stats.VarGlobalLineCount)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("failed to read global line count: %w", err)
		}
		words, err := deps.Engine.GlobalVar(taskCtx, stats.VarGlobalWordCount)
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("failed to read global word count: %w", err)
		}

		top, err := deps.Store.TopWords(taskCtx, digestTopWords)
		if err != nil {
			return fmt.Errorf("failed to read top words: %w", err)
		}

		var sb strings.Builder
		fmt.Fprintf(&sb, "Community digest: %d lines, %d words so far.", lines, words)
		if len(top) > 0 {
			sb.WriteString("\nMost used words:")
			for _, w := range top {
				fmt.Fprintf(&sb, " %s (%d)", w.Word, w.Uses)
			}
		}

		if _, err := deps.Bot.SendMessage(taskCtx, &tgbot.SendMessageParams{ChatID: chatID, Text: sb.String()}); err != nil {
			return fmt.Errorf("failed to send digest: %w", err)
		}

		log.InfoContext(taskCtx, "Posted stats digest", "chat_id", chatID)
		return nil
	}
}
