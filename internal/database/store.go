package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the data access layer used by the stats engine. All methods
// accept a context for cancellation and timeouts. Find-or-create semantics
// are expressed as SQL upserts keyed on the logical key of each table, so a
// counter increment can never produce a duplicate row.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertUser matches a candidate user by unique ID. If absent, it
	// inserts a new row and returns it re-fetched so the caller observes
	// the store-assigned ID. If exactly one row matches, its nickname and
	// addressable name are updated. More than one match returns
	// ErrCorrupted.
	UpsertUser(ctx context.Context, candidate *User) (*User, error)

	// GetUserByID retrieves a user by store-assigned ID. Returns
	// ErrNotFound if no such user exists.
	GetUserByID(ctx context.Context, id int64) (*User, error)

	// GetUsersByNickname retrieves all users currently using a nickname.
	GetUsersByNickname(ctx context.Context, nickname string) ([]User, error)

	// IncrementLines adds one to the user's line count, creating the
	// statistics row if needed.
	IncrementLines(ctx context.Context, userID int64) error

	// IncrementActions adds one to the user's action count.
	IncrementActions(ctx context.Context, userID int64) error

	// IncrementProfanities adds one to the user's profanity count.
	IncrementProfanities(ctx context.Context, userID int64) error

	// AddWords adds n to the user's word count. Negative n is rejected
	// with ErrInvalidArgument before any mutation.
	AddWords(ctx context.Context, userID int64, n int) error

	// GetUserStatistic retrieves the counter row for a user. Returns
	// ErrNotFound if the user has no statistics yet.
	GetUserStatistic(ctx context.Context, userID int64) (*UserStatistic, error)

	// IncrementWord adds one use to a word, creating it if needed.
	IncrementWord(ctx context.Context, word string) error

	// IncrementEmoticon adds one use to an emoticon and records who used it.
	IncrementEmoticon(ctx context.Context, emoticon string, userID int64) error

	// IncrementURL adds one use to a URL and overwrites the last-usage
	// context and last user.
	IncrementURL(ctx context.Context, url string, userID int64, usage string) error

	// SetVar overwrites an integer variable, creating it if needed.
	SetVar(ctx context.Context, key string, value int64) error

	// IncrementVar adds amount to an integer variable, creating it with
	// that value if needed.
	IncrementVar(ctx context.Context, key string, amount int64) error

	// GetVar retrieves an integer variable. Returns ErrNotFound if the
	// variable was never set.
	GetVar(ctx context.Context, key string) (int64, error)

	// SetMiscData overwrites the value for a (type, key) pair.
	SetMiscData(ctx context.Context, dataType, key, value string) error

	// GetMiscData retrieves the value for a (type, key) pair. Returns
	// ErrNotFound if it was never set; absence is never conflated with an
	// empty string.
	GetMiscData(ctx context.Context, dataType, key string) (string, error)

	// AddMessage appends a line to the canonical message history.
	AddMessage(ctx context.Context, message *Message) error

	// GetUserMessages retrieves the full text of every history line sent
	// by a user in a channel, oldest first.
	GetUserMessages(ctx context.Context, senderID int64, channel string) ([]string, error)

	// SearchLines retrieves history lines containing the search term,
	// case-insensitively. A userID of 0 matches any sender.
	SearchLines(ctx context.Context, search string, userID int64) ([]Message, error)

	// GetGlobalWordCounts retrieves every word used more than minUses times.
	GetGlobalWordCounts(ctx context.Context, minUses int64) ([]UsedWord, error)

	// TopWords retrieves the most-used words, highest first.
	TopWords(ctx context.Context, limit int) ([]UsedWord, error)

	// SaveQuote archives a quote.
	SaveQuote(ctx context.Context, quote *Quote) error

	// LastQuoteTime retrieves the capture time of the author's most recent
	// quote. Returns ErrNotFound if the author has never been quoted.
	LastQuoteTime(ctx context.Context, authorID int64) (time.Time, error)

	// SearchQuotes retrieves quotes containing the search term,
	// case-insensitively.
	SearchQuotes(ctx context.Context, search string) ([]Quote, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore implements Store on top of sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given sqlx connection.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) UpsertUser(ctx context.Context, candidate *User) (*User, error) {
	if candidate == nil {
		return nil, fmt.Errorf("%w: nil user", ErrInvalidArgument)
	}
	if candidate.UniqueID == "" {
		return nil, fmt.Errorf("%w: user has empty unique ID", ErrInvalidArgument)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	var matches []User
	err = tx.SelectContext(ctx, &matches,
		`SELECT id, unique_id, nickname, addressable_name, original_nickname, created_at, updated_at
		 FROM users WHERE unique_id = ?`, candidate.UniqueID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user by unique ID: %w", err)
	}

	now := time.Now().UTC()
	switch len(matches) {
	case 0:
		s.logger.InfoContext(ctx, "Adding new user", "nickname", candidate.Nickname, "unique_id", candidate.UniqueID)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO users (unique_id, nickname, addressable_name, original_nickname, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			candidate.UniqueID, candidate.Nickname, candidate.AddressableName, candidate.Nickname, now, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert user: %w", err)
		}
	case 1:
		_, err = tx.ExecContext(ctx,
			`UPDATE users SET nickname = ?, addressable_name = ?, updated_at = ? WHERE unique_id = ?`,
			candidate.Nickname, candidate.AddressableName, now, candidate.UniqueID)
		if err != nil {
			return nil, fmt.Errorf("failed to update user %d: %w", matches[0].ID, err)
		}
	default:
		return nil, fmt.Errorf("%w: multiple users share unique ID %q", ErrCorrupted, candidate.UniqueID)
	}

	// Re-fetch so the caller observes the store-assigned ID and timestamps.
	var user User
	err = tx.GetContext(ctx, &user,
		`SELECT id, unique_id, nickname, addressable_name, original_nickname, created_at, updated_at
		 FROM users WHERE unique_id = ?`, candidate.UniqueID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-fetch user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	return &user, nil
}

func (s *sqlxStore) GetUserByID(ctx context.Context, id int64) (*User, error) {
	var user User
	err := s.db.GetContext(ctx, &user,
		`SELECT id, unique_id, nickname, addressable_name, original_nickname, created_at, updated_at
		 FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

func (s *sqlxStore) GetUsersByNickname(ctx context.Context, nickname string) ([]User, error) {
	var users []User
	err := s.db.SelectContext(ctx, &users,
		`SELECT id, unique_id, nickname, addressable_name, original_nickname, created_at, updated_at
		 FROM users WHERE nickname = ?`, nickname)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by nickname %q: %w", nickname, err)
	}
	return users, nil
}

// bumpStatistic upserts the user_statistics row, adding delta to one column.
// The column name is taken from a fixed set, never from user input.
func (s *sqlxStore) bumpStatistic(ctx context.Context, userID int64, column string, delta int64) error {
	query := fmt.Sprintf(
		`INSERT INTO user_statistics (user_id, %[1]s) VALUES (?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET %[1]s = %[1]s + excluded.%[1]s`, column)
	if _, err := s.db.ExecContext(ctx, query, userID, delta); err != nil {
		return fmt.Errorf("failed to increment %s for user %d: %w", column, userID, err)
	}
	s.logger.DebugContext(ctx, "Incremented user statistic", "user_id", userID, "column", column, "delta", delta)
	return nil
}

func (s *sqlxStore) IncrementLines(ctx context.Context, userID int64) error {
	return s.bumpStatistic(ctx, userID, "lines", 1)
}

func (s *sqlxStore) IncrementActions(ctx context.Context, userID int64) error {
	return s.bumpStatistic(ctx, userID, "actions", 1)
}

func (s *sqlxStore) IncrementProfanities(ctx context.Context, userID int64) error {
	return s.bumpStatistic(ctx, userID, "profanities", 1)
}

func (s *sqlxStore) AddWords(ctx context.Context, userID int64, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative word count %d", ErrInvalidArgument, n)
	}
	if n == 0 {
		return nil
	}
	return s.bumpStatistic(ctx, userID, "words", int64(n))
}

func (s *sqlxStore) GetUserStatistic(ctx context.Context, userID int64) (*UserStatistic, error) {
	var stat UserStatistic
	err := s.db.GetContext(ctx, &stat,
		`SELECT user_id, lines, words, actions, profanities FROM user_statistics WHERE user_id = ?`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: no statistics for user %d", ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statistics for user %d: %w", userID, err)
	}
	return &stat, nil
}

func (s *sqlxStore) IncrementWord(ctx context.Context, word string) error {
	if word == "" {
		return fmt.Errorf("%w: empty word", ErrInvalidArgument)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO used_words (word, uses) VALUES (?, 1)
		 ON CONFLICT (word) DO UPDATE SET uses = uses + 1`, word)
	if err != nil {
		return fmt.Errorf("failed to increment word %q: %w", word, err)
	}
	return nil
}

func (s *sqlxStore) IncrementEmoticon(ctx context.Context, emoticon string, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO used_emoticons (emoticon, uses, last_used_by) VALUES (?, 1, ?)
		 ON CONFLICT (emoticon) DO UPDATE SET uses = uses + 1, last_used_by = excluded.last_used_by`,
		emoticon, userID)
	if err != nil {
		return fmt.Errorf("failed to increment emoticon %q: %w", emoticon, err)
	}
	s.logger.DebugContext(ctx, "Incremented emoticon count", "emoticon", emoticon, "user_id", userID)
	return nil
}

func (s *sqlxStore) IncrementURL(ctx context.Context, url string, userID int64, usage string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO linked_urls (url, uses, last_used_by, last_usage) VALUES (?, 1, ?, ?)
		 ON CONFLICT (url) DO UPDATE SET uses = uses + 1, last_used_by = excluded.last_used_by, last_usage = excluded.last_usage`,
		url, userID, usage)
	if err != nil {
		return fmt.Errorf("failed to increment URL %q: %w", url, err)
	}
	s.logger.DebugContext(ctx, "Incremented URL count", "url", url, "user_id", userID)
	return nil
}

func (s *sqlxStore) SetVar(ctx context.Context, key string, value int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO key_value_pairs (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set var %q: %w", key, err)
	}
	return nil
}

func (s *sqlxStore) IncrementVar(ctx context.Context, key string, amount int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO key_value_pairs (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = value + excluded.value`, key, amount)
	if err != nil {
		return fmt.Errorf("failed to increment var %q: %w", key, err)
	}
	return nil
}

func (s *sqlxStore) GetVar(ctx context.Context, key string) (int64, error) {
	var value int64
	err := s.db.GetContext(ctx, &value, `SELECT value FROM key_value_pairs WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: var %q", ErrNotFound, key)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get var %q: %w", key, err)
	}
	return value, nil
}

func (s *sqlxStore) SetMiscData(ctx context.Context, dataType, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO misc_data (type, key, value, enabled) VALUES (?, ?, ?, TRUE)
		 ON CONFLICT (type, key) DO UPDATE SET value = excluded.value`, dataType, key, value)
	if err != nil {
		return fmt.Errorf("failed to set misc data %s/%s: %w", dataType, key, err)
	}
	return nil
}

func (s *sqlxStore) GetMiscData(ctx context.Context, dataType, key string) (string, error) {
	var values []string
	err := s.db.SelectContext(ctx, &values,
		`SELECT value FROM misc_data WHERE type = ? AND key = ?`, dataType, key)
	if err != nil {
		return "", fmt.Errorf("failed to get misc data %s/%s: %w", dataType, key, err)
	}
	switch len(values) {
	case 0:
		return "", fmt.Errorf("%w: misc data %s/%s", ErrNotFound, dataType, key)
	case 1:
		return values[0], nil
	default:
		return "", fmt.Errorf("%w: multiple values for misc data %s/%s", ErrCorrupted, dataType, key)
	}
}

func (s *sqlxStore) AddMessage(ctx context.Context, message *Message) error {
	if message == nil {
		return fmt.Errorf("%w: nil message", ErrInvalidArgument)
	}
	if message.SentAt.IsZero() {
		return fmt.Errorf("%w: message has zero timestamp", ErrInvalidArgument)
	}

	result, err := s.db.NamedExecContext(ctx,
		`INSERT INTO messages (sent_at, sender_id, channel, nick, message)
		 VALUES (:sent_at, :sender_id, :channel, :nick, :message)`, message)
	if err != nil {
		return fmt.Errorf("failed to add message from %q: %w", message.Nick, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		message.ID = id
	}
	return nil
}

func (s *sqlxStore) GetUserMessages(ctx context.Context, senderID int64, channel string) ([]string, error) {
	var lines []string
	err := s.db.SelectContext(ctx, &lines,
		`SELECT message FROM messages WHERE sender_id = ? AND channel = ? ORDER BY sent_at ASC, id ASC`,
		senderID, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages for user %d in %q: %w", senderID, channel, err)
	}
	return lines, nil
}

func (s *sqlxStore) SearchLines(ctx context.Context, search string, userID int64) ([]Message, error) {
	var lines []Message
	var err error
	if userID == 0 {
		err = s.db.SelectContext(ctx, &lines,
			`SELECT id, sent_at, sender_id, channel, nick, message FROM messages
			 WHERE message LIKE '%' || ? || '%' COLLATE NOCASE ORDER BY sent_at ASC`, search)
	} else {
		err = s.db.SelectContext(ctx, &lines,
			`SELECT id, sent_at, sender_id, channel, nick, message FROM messages
			 WHERE message LIKE '%' || ? || '%' COLLATE NOCASE AND sender_id = ? ORDER BY sent_at ASC`,
			search, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to search lines for %q: %w", search, err)
	}
	return lines, nil
}

func (s *sqlxStore) GetGlobalWordCounts(ctx context.Context, minUses int64) ([]UsedWord, error) {
	var words []UsedWord
	err := s.db.SelectContext(ctx, &words,
		`SELECT word, uses FROM used_words WHERE uses > ?`, minUses)
	if err != nil {
		return nil, fmt.Errorf("failed to get global word counts: %w", err)
	}
	return words, nil
}

func (s *sqlxStore) TopWords(ctx context.Context, limit int) ([]UsedWord, error) {
	if limit <= 0 {
		limit = 10
	}
	var words []UsedWord
	err := s.db.SelectContext(ctx, &words,
		`SELECT word, uses FROM used_words ORDER BY uses DESC, word ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top words: %w", err)
	}
	return words, nil
}

func (s *sqlxStore) SaveQuote(ctx context.Context, quote *Quote) error {
	if quote == nil {
		return fmt.Errorf("%w: nil quote", ErrInvalidArgument)
	}
	result, err := s.db.NamedExecContext(ctx,
		`INSERT INTO quotes (author_id, text, taken_at) VALUES (:author_id, :text, :taken_at)`, quote)
	if err != nil {
		return fmt.Errorf("failed to save quote for user %d: %w", quote.AuthorID, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		quote.ID = id
	}
	s.logger.DebugContext(ctx, "Quote archived", "author_id", quote.AuthorID, "quote_id", quote.ID)
	return nil
}

func (s *sqlxStore) LastQuoteTime(ctx context.Context, authorID int64) (time.Time, error) {
	var takenAt time.Time
	err := s.db.GetContext(ctx, &takenAt,
		`SELECT taken_at FROM quotes WHERE author_id = ? ORDER BY taken_at DESC LIMIT 1`, authorID)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, fmt.Errorf("%w: no quotes for user %d", ErrNotFound, authorID)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last quote time for user %d: %w", authorID, err)
	}
	return takenAt, nil
}

func (s *sqlxStore) SearchQuotes(ctx context.Context, search string) ([]Quote, error) {
	var quotes []Quote
	err := s.db.SelectContext(ctx, &quotes,
		`SELECT id, author_id, text, taken_at FROM quotes
		 WHERE text LIKE '%' || ? || '%' COLLATE NOCASE ORDER BY taken_at ASC`, search)
	if err != nil {
		return nil, fmt.Errorf("failed to search quotes for %q: %w", search, err)
	}
	return quotes, nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)
	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed")
	return nil
}
