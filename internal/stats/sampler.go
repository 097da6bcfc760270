package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mvisser/snagbot/internal/database"
)

// minSnagWords is the word-count gate: only messages with strictly more
// tokens than this are eligible for probabilistic snagging.
const minSnagWords = 6

const manualSnagReply = "Snagged line on request."

var snagPhrases = []string{
	"Snagged the shit outta that one!",
	"What a lame quote. Snagged!",
	"Imma stash those words for you.",
	"Snagged, motherfucker!",
	"Everything looks great out of context. Snagged!",
	"Yoink!",
	"That'll look nice on the stats page.",
}

// ArmSnagNext arms the global one-shot override: the next processed message
// is archived unconditionally, regardless of sender, cooldown, or length.
func (e *Engine) ArmSnagNext() {
	e.guard.enter("ArmSnagNext")
	defer e.guard.exit()
	e.snagNext = true
}

// ArmSnagNextFor arms the per-nickname one-shot override: the next processed
// message whose sender has the given nickname is archived unconditionally.
func (e *Engine) ArmSnagNextFor(nickname string) {
	e.guard.enter("ArmSnagNextFor")
	defer e.guard.exit()
	e.snagNextTarget = nickname
}

// SnagNextArmed reports whether the global one-shot override is armed.
func (e *Engine) SnagNextArmed() bool {
	e.guard.enter("SnagNextArmed")
	defer e.guard.exit()
	return e.snagNext
}

// SnagNextTarget returns the nickname the per-nick override is armed for,
// or the empty string.
func (e *Engine) SnagNextTarget() string {
	e.guard.enter("SnagNextTarget")
	defer e.guard.exit()
	return e.snagNextTarget
}

// sampleQuote decides whether to archive the message as a quote. Manual
// overrides fire first and bypass every other check; otherwise the sender's
// cooldown, the word-count gate, and the configured chance apply, in that
// order. Callers must hold the engine lock.
func (e *Engine) sampleQuote(ctx context.Context, msg InboundMessage, wordCount int, reply ReplyFunc) error {
	text := msg.Body
	if msg.Action {
		text = fmt.Sprintf("*%s %s*", msg.Sender.Nickname, msg.Body)
	}

	if e.snagNext {
		e.snagNext = false
		if err := e.snag(ctx, msg.Sender.ID, text); err != nil {
			return err
		}
		reply(manualSnagReply)
		return nil
	}

	if e.snagNextTarget != "" && e.snagNextTarget == msg.Sender.Nickname {
		e.snagNextTarget = ""
		if err := e.snag(ctx, msg.Sender.ID, text); err != nil {
			return err
		}
		reply(manualSnagReply)
		return nil
	}

	last, err := e.store.LastQuoteTime(ctx, msg.Sender.ID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		// Never quoted before; no cooldown applies.
	case err != nil:
		return fmt.Errorf("failed to check quote cooldown: %w", err)
	default:
		cooldown := time.Duration(e.cfg.Quotes.MinDelayHours) * time.Hour
		if time.Since(last) < cooldown {
			return nil
		}
	}

	if wordCount <= minSnagWords {
		return nil
	}

	if e.rng.Float64() >= e.cfg.Quotes.Chance {
		return nil
	}

	hide := e.rng.Float64() < e.cfg.Quotes.SilentChance
	if !e.cfg.Quotes.AllowNotifications || hide {
		e.logger.DebugContext(ctx, "Silently snagging message", "user_id", msg.Sender.ID)
		return e.snag(ctx, msg.Sender.ID, text)
	}

	// 50/50 between a canned phrase and the generic reply.
	ack := "Snagged!"
	if n := e.rng.Intn(len(snagPhrases) * 2); n < len(snagPhrases) {
		ack = snagPhrases[n]
	}
	reply(ack)
	return e.snag(ctx, msg.Sender.ID, text)
}

// snag archives a message as a quote. Callers must hold the engine lock.
func (e *Engine) snag(ctx context.Context, authorID int64, text string) error {
	if err := e.store.SaveQuote(ctx, &database.Quote{
		AuthorID: authorID,
		Text:     text,
		TakenAt:  time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("failed to archive quote: %w", err)
	}
	e.logger.InfoContext(ctx, "Added quote", "author_id", authorID)
	return nil
}
