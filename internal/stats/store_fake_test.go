package stats_test

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mvisser/snagbot/internal/database"
)

// fakeStore is an in-memory database.Store used by the engine tests.
type fakeStore struct {
	pingErr error

	nextUserID int64
	users      map[int64]*database.User
	stats      map[int64]*database.UserStatistic
	words      map[string]int64
	emoticons  map[string]int64
	urls       map[string]int64
	vars       map[string]int64
	misc       map[string]string
	messages   []database.Message
	quotes     []database.Quote
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextUserID: 1,
		users:      make(map[int64]*database.User),
		stats:      make(map[int64]*database.UserStatistic),
		words:      make(map[string]int64),
		emoticons:  make(map[string]int64),
		urls:       make(map[string]int64),
		vars:       make(map[string]int64),
		misc:       make(map[string]string),
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) UpsertUser(_ context.Context, candidate *database.User) (*database.User, error) {
	for _, u := range f.users {
		if u.UniqueID == candidate.UniqueID {
			u.Nickname = candidate.Nickname
			u.AddressableName = candidate.AddressableName
			return u, nil
		}
	}
	u := *candidate
	u.ID = f.nextUserID
	f.nextUserID++
	f.users[u.ID] = &u
	return &u, nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*database.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return u, nil
}

func (f *fakeStore) GetUsersByNickname(_ context.Context, nickname string) ([]database.User, error) {
	var out []database.User
	for _, u := range f.users {
		if u.Nickname == nickname {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeStore) stat(userID int64) *database.UserStatistic {
	s, ok := f.stats[userID]
	if !ok {
		s = &database.UserStatistic{UserID: userID}
		f.stats[userID] = s
	}
	return s
}

func (f *fakeStore) IncrementLines(_ context.Context, userID int64) error {
	f.stat(userID).Lines++
	return nil
}

func (f *fakeStore) IncrementActions(_ context.Context, userID int64) error {
	f.stat(userID).Actions++
	return nil
}

func (f *fakeStore) IncrementProfanities(_ context.Context, userID int64) error {
	f.stat(userID).Profanities++
	return nil
}

func (f *fakeStore) AddWords(_ context.Context, userID int64, n int) error {
	if n < 0 {
		return database.ErrInvalidArgument
	}
	if n == 0 {
		return nil
	}
	f.stat(userID).Words += int64(n)
	return nil
}

func (f *fakeStore) GetUserStatistic(_ context.Context, userID int64) (*database.UserStatistic, error) {
	s, ok := f.stats[userID]
	if !ok {
		return nil, database.ErrNotFound
	}
	return s, nil
}

func (f *fakeStore) IncrementWord(_ context.Context, word string) error {
	f.words[word]++
	return nil
}

func (f *fakeStore) IncrementEmoticon(_ context.Context, emoticon string, _ int64) error {
	f.emoticons[emoticon]++
	return nil
}

func (f *fakeStore) IncrementURL(_ context.Context, url string, _ int64, _ string) error {
	f.urls[url]++
	return nil
}

func (f *fakeStore) SetVar(_ context.Context, key string, value int64) error {
	f.vars[key] = value
	return nil
}

func (f *fakeStore) IncrementVar(_ context.Context, key string, amount int64) error {
	f.vars[key] += amount
	return nil
}

func (f *fakeStore) GetVar(_ context.Context, key string) (int64, error) {
	v, ok := f.vars[key]
	if !ok {
		return 0, database.ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) SetMiscData(_ context.Context, dataType, key, value string) error {
	f.misc[dataType+"\x00"+key] = value
	return nil
}

func (f *fakeStore) GetMiscData(_ context.Context, dataType, key string) (string, error) {
	v, ok := f.misc[dataType+"\x00"+key]
	if !ok {
		return "", database.ErrNotFound
	}
	return v, nil
}

func (f *fakeStore) AddMessage(_ context.Context, message *database.Message) error {
	f.messages = append(f.messages, *message)
	return nil
}

func (f *fakeStore) GetUserMessages(_ context.Context, senderID int64, channel string) ([]string, error) {
	var out []string
	for _, m := range f.messages {
		if m.SenderID.Valid && m.SenderID.Int64 == senderID && m.Channel == channel {
			out = append(out, m.Message)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchLines(_ context.Context, search string, userID int64) ([]database.Message, error) {
	var out []database.Message
	for _, m := range f.messages {
		if userID != 0 && (!m.SenderID.Valid || m.SenderID.Int64 != userID) {
			continue
		}
		if strings.Contains(strings.ToLower(m.Message), strings.ToLower(search)) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) GetGlobalWordCounts(_ context.Context, minUses int64) ([]database.UsedWord, error) {
	var out []database.UsedWord
	for w, uses := range f.words {
		if uses > minUses {
			out = append(out, database.UsedWord{Word: w, Uses: uses})
		}
	}
	return out, nil
}

func (f *fakeStore) TopWords(_ context.Context, limit int) ([]database.UsedWord, error) {
	out := make([]database.UsedWord, 0, len(f.words))
	for w, uses := range f.words {
		out = append(out, database.UsedWord{Word: w, Uses: uses})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Uses > out[j].Uses })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) SaveQuote(_ context.Context, quote *database.Quote) error {
	q := *quote
	q.ID = int64(len(f.quotes) + 1)
	f.quotes = append(f.quotes, q)
	return nil
}

func (f *fakeStore) LastQuoteTime(_ context.Context, authorID int64) (time.Time, error) {
	var last time.Time
	found := false
	for _, q := range f.quotes {
		if q.AuthorID == authorID && q.TakenAt.After(last) {
			last = q.TakenAt
			found = true
		}
	}
	if !found {
		return time.Time{}, database.ErrNotFound
	}
	return last, nil
}

func (f *fakeStore) SearchQuotes(_ context.Context, search string) ([]database.Quote, error) {
	var out []database.Quote
	for _, q := range f.quotes {
		if strings.Contains(strings.ToLower(q.Text), strings.ToLower(search)) {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeStore) RunSQLMaintenance(context.Context) error { return nil }
