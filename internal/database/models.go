package database

import (
	"database/sql"
	"time"
)

// User is the identity record for a chat participant. Users are created the
// first time a message is seen from an unknown unique ID and are never
// deleted. The unique ID is supplied by the chat transport and survives
// nickname changes and reconnects.
type User struct {
	ID               int64     `db:"id"`
	UniqueID         string    `db:"unique_id"`
	Nickname         string    `db:"nickname"`
	AddressableName  string    `db:"addressable_name"`
	OriginalNickname string    `db:"original_nickname"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// UserStatistic holds the per-user aggregate counters. One row per user,
// created lazily on first increment. All counters only ever grow.
type UserStatistic struct {
	UserID      int64 `db:"user_id"`
	Lines       int64 `db:"lines"`
	Words       int64 `db:"words"`
	Actions     int64 `db:"actions"`
	Profanities int64 `db:"profanities"`
}

// UsedWord tracks how often a (normalized) word has been used community-wide.
type UsedWord struct {
	Word string `db:"word"`
	Uses int64  `db:"uses"`
}

// UsedEmoticon tracks emoticon usage and who used it last.
type UsedEmoticon struct {
	Emoticon   string `db:"emoticon"`
	Uses       int64  `db:"uses"`
	LastUsedBy int64  `db:"last_used_by"`
}

// LinkedURL tracks posted URLs, who posted one last, and the message it
// last appeared in.
type LinkedURL struct {
	URL        string `db:"url"`
	Uses       int64  `db:"uses"`
	LastUsedBy int64  `db:"last_used_by"`
	LastUsage  string `db:"last_usage"`
}

// KeyValuePair is an integer variable keyed by name, used for global
// counters such as the total line and word counts.
type KeyValuePair struct {
	Key   string `db:"key"`
	Value int64  `db:"value"`
}

// MiscData is a generic typed key-value extension point.
type MiscData struct {
	Type    string `db:"type"`
	Key     string `db:"key"`
	Value   string `db:"value"`
	Enabled bool   `db:"enabled"`
}

// Quote is an archived chat message. Quotes are append-only.
type Quote struct {
	ID       int64     `db:"id"`
	AuthorID int64     `db:"author_id"`
	Text     string    `db:"text"`
	TakenAt  time.Time `db:"taken_at"`
}

// Message is one line of the canonical message history. SenderID is null
// for lines whose sender could not be resolved to a user.
type Message struct {
	ID       int64         `db:"id"`
	SentAt   time.Time     `db:"sent_at"`
	SenderID sql.NullInt64 `db:"sender_id"`
	Channel  string        `db:"channel"`
	Nick     string        `db:"nick"`
	Message  string        `db:"message"`
}
