// Package stats implements the chat-analytics engine: per-user and global
// counter aggregation, probabilistic quote snagging, and on-demand topic
// scoring. All operations are serialized behind a single lock; the engine is
// safe for use from any number of message-processing goroutines.
package stats

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/mvisser/snagbot/internal/config"
	"github.com/mvisser/snagbot/internal/database"
)

// Global counter variable keys.
const (
	VarGlobalLineCount = "global_line_count"
	VarGlobalWordCount = "global_word_count"
)

// ReplyFunc delivers a textual reply back to the origin of the message being
// processed. The engine never knows how replies are transmitted.
type ReplyFunc func(text string)

// InboundMessage is one chat message handed to the engine. The sender must
// already be resolved to a stored user (see Engine.UpsertUser).
type InboundMessage struct {
	Sender  *database.User
	Channel string
	Body    string
	Action  bool
	SentAt  time.Time
}

// Engine aggregates chat statistics into the store. Every public operation
// acquires the engine's serialization lock, runs to completion, and releases
// it; there is no per-entity locking and no lock-free path.
type Engine struct {
	store  database.Store
	cfg    *config.Config
	logger *slog.Logger
	guard  *opGuard
	rng    *rand.Rand

	// One-shot snag overrides, owned by the engine and guarded by the
	// same lock as everything else.
	snagNext       bool
	snagNextTarget string
}

// NewEngine creates a stats engine over the given store. If rng is nil a
// time-seeded source is used; tests pass a fixed-seed source.
func NewEngine(store database.Store, cfg *config.Config, logger *slog.Logger, rng *rand.Rand) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		store:  store,
		cfg:    cfg,
		logger: logger.With("component", "stats_engine"),
		guard:  newOpGuard(),
		rng:    rng,
	}
}

// CurrentOperation returns the name of the operation currently holding the
// engine lock, or "none". Diagnostic only.
func (e *Engine) CurrentOperation() string {
	return e.guard.current()
}

// UpsertUser resolves a chat identity to a stored user, creating or updating
// the row as needed. The returned user carries the store-assigned ID.
func (e *Engine) UpsertUser(ctx context.Context, candidate *database.User) (*database.User, error) {
	e.guard.enter("UpsertUser")
	defer e.guard.exit()
	return e.store.UpsertUser(ctx, candidate)
}

// ProcessMessage runs the full aggregation pipeline for one inbound message:
// history append, line/action counting, word counting, global counters,
// quote sampling, reactions, emoticon and per-word processing.
//
// If the store is unreachable the message is skipped silently. Any other
// failure aborts the remaining aggregation for this message and is returned
// to the caller; it never affects other messages.
func (e *Engine) ProcessMessage(ctx context.Context, msg InboundMessage, reply ReplyFunc) error {
	if msg.Sender == nil {
		return fmt.Errorf("%w: message has no resolved sender", database.ErrInvalidArgument)
	}
	if reply == nil {
		reply = func(string) {}
	}

	e.guard.enter("ProcessMessage")
	defer e.guard.exit()

	// Can't save statistics without a working store. Not a failure.
	if err := e.store.Ping(ctx); err != nil {
		e.logger.DebugContext(ctx, "Store unavailable, skipping aggregation", "error", err)
		return nil
	}

	userID := msg.Sender.ID

	e.guard.mark("ProcessMessage:AddMessage")
	if err := e.store.AddMessage(ctx, &database.Message{
		SentAt:   msg.SentAt,
		SenderID: nullInt64(userID),
		Channel:  msg.Channel,
		Nick:     msg.Sender.Nickname,
		Message:  msg.Body,
	}); err != nil {
		return fmt.Errorf("failed to append message history: %w", err)
	}

	e.guard.mark("ProcessMessage:LineCount")
	if msg.Action {
		if err := e.store.IncrementActions(ctx, userID); err != nil {
			return err
		}
	} else {
		if err := e.store.IncrementLines(ctx, userID); err != nil {
			return err
		}
	}

	words := Words(msg.Body)

	e.guard.mark("ProcessMessage:WordCount")
	if err := e.store.AddWords(ctx, userID, len(words)); err != nil {
		return err
	}
	if err := e.store.IncrementVar(ctx, VarGlobalLineCount, 1); err != nil {
		return err
	}
	if err := e.store.IncrementVar(ctx, VarGlobalWordCount, int64(len(words))); err != nil {
		return err
	}

	e.guard.mark("ProcessMessage:QuoteSampler")
	if err := e.sampleQuote(ctx, msg, len(words), reply); err != nil {
		return err
	}

	e.guard.mark("ProcessMessage:Reactions")
	e.react(msg.Body, reply)

	e.guard.mark("ProcessMessage:Emoticons")
	for _, word := range words {
		if IsEmoticon(word) {
			if err := e.store.IncrementEmoticon(ctx, word, userID); err != nil {
				return err
			}
		}
	}

	e.guard.mark("ProcessMessage:Words")
	for _, word := range words {
		if err := e.processWord(ctx, msg, word, userID); err != nil {
			return err
		}
	}

	return nil
}

// processWord updates the URL, word, and profanity counters for one token.
func (e *Engine) processWord(ctx context.Context, msg InboundMessage, word string, userID int64) error {
	lword := strings.ToLower(word)

	if IsURL(word) {
		if err := e.store.IncrementURL(ctx, word, userID, msg.Body); err != nil {
			return err
		}
	} else if cword := CleanWord(word); countable(cword) {
		if err := e.store.IncrementWord(ctx, cword); err != nil {
			return err
		}
	}

	if IsProfanity(lword) {
		if err := e.store.IncrementProfanities(ctx, userID); err != nil {
			return err
		}
	}
	return nil
}

// react answers the first configured reaction whose trigger substring occurs
// in the message. Triggers are checked in sorted order so behavior is stable.
func (e *Engine) react(body string, reply ReplyFunc) {
	if len(e.cfg.Stats.Reactions) == 0 {
		return
	}
	lbody := strings.ToLower(body)
	triggers := make([]string, 0, len(e.cfg.Stats.Reactions))
	for t := range e.cfg.Stats.Reactions {
		triggers = append(triggers, t)
	}
	sort.Strings(triggers)
	for _, t := range triggers {
		if strings.Contains(lbody, strings.ToLower(t)) {
			reply(e.cfg.Stats.Reactions[t])
			return
		}
	}
}

// IncrementLineCount adds one to the user's line count.
func (e *Engine) IncrementLineCount(ctx context.Context, userID int64) error {
	e.guard.enter("IncrementLineCount")
	defer e.guard.exit()
	return e.store.IncrementLines(ctx, userID)
}

// IncrementActions adds one to the user's action count.
func (e *Engine) IncrementActions(ctx context.Context, userID int64) error {
	e.guard.enter("IncrementActions")
	defer e.guard.exit()
	return e.store.IncrementActions(ctx, userID)
}

// IncrementProfanities adds one to the user's profanity count.
func (e *Engine) IncrementProfanities(ctx context.Context, userID int64) error {
	e.guard.enter("IncrementProfanities")
	defer e.guard.exit()
	return e.store.IncrementProfanities(ctx, userID)
}

// IncrementWordCount adds n to the user's word count, creating the
// statistics row if the user has none yet.
func (e *Engine) IncrementWordCount(ctx context.Context, userID int64, n int) error {
	e.guard.enter("IncrementWordCount")
	defer e.guard.exit()
	return e.store.AddWords(ctx, userID, n)
}

// IncrementWord adds one use to a word.
func (e *Engine) IncrementWord(ctx context.Context, word string) error {
	e.guard.enter("IncrementWord")
	defer e.guard.exit()
	return e.store.IncrementWord(ctx, word)
}

// IncrementEmoticon adds one use to an emoticon.
func (e *Engine) IncrementEmoticon(ctx context.Context, emoticon string, userID int64) error {
	e.guard.enter("IncrementEmoticon")
	defer e.guard.exit()
	return e.store.IncrementEmoticon(ctx, emoticon, userID)
}

// IncrementURL adds one use to a URL and records its usage context.
func (e *Engine) IncrementURL(ctx context.Context, url string, userID int64, usage string) error {
	e.guard.enter("IncrementURL")
	defer e.guard.exit()
	return e.store.IncrementURL(ctx, url, userID, usage)
}

// SetVar overwrites a global integer variable.
func (e *Engine) SetVar(ctx context.Context, key string, value int64) error {
	e.guard.enter("SetVar")
	defer e.guard.exit()
	return e.store.SetVar(ctx, key, value)
}

// IncrementVar adds amount to a global integer variable.
func (e *Engine) IncrementVar(ctx context.Context, key string, amount int64) error {
	e.guard.enter("IncrementVar")
	defer e.guard.exit()
	return e.store.IncrementVar(ctx, key, amount)
}

// GlobalVar reads a global integer variable. Returns database.ErrNotFound
// if it was never set.
func (e *Engine) GlobalVar(ctx context.Context, key string) (int64, error) {
	e.guard.enter("GlobalVar")
	defer e.guard.exit()
	return e.store.GetVar(ctx, key)
}

// AddMessage appends a line to the canonical message history.
func (e *Engine) AddMessage(ctx context.Context, message *database.Message) error {
	e.guard.enter("AddMessage")
	defer e.guard.exit()
	return e.store.AddMessage(ctx, message)
}

// UserStatistic reads the counter row for a user.
func (e *Engine) UserStatistic(ctx context.Context, userID int64) (*database.UserStatistic, error) {
	e.guard.enter("UserStatistic")
	defer e.guard.exit()
	return e.store.GetUserStatistic(ctx, userID)
}

// UsersByNickname finds the users currently known by a nickname.
func (e *Engine) UsersByNickname(ctx context.Context, nickname string) ([]database.User, error) {
	e.guard.enter("UsersByNickname")
	defer e.guard.exit()
	return e.store.GetUsersByNickname(ctx, nickname)
}

// SearchQuotes finds archived quotes containing the search term.
func (e *Engine) SearchQuotes(ctx context.Context, search string) ([]database.Quote, error) {
	e.guard.enter("SearchQuotes")
	defer e.guard.exit()
	return e.store.SearchQuotes(ctx, search)
}

func nullInt64(v int64) sql.NullInt64 {
	return sql.NullInt64{Int64: v, Valid: true}
}
