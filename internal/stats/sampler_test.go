package stats_test

import (
	"context"
	"testing"
	"time"

	"github.com/mvisser/snagbot/internal/database"
	"github.com/mvisser/snagbot/internal/stats"
)

// Seven tokens, one past the word-count gate.
const quotableBody = "one two three four five six seven"

func TestSnagNextOverride(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(store, testConfig())
	engine.ArmSnagNext()

	var replies []string
	err := engine.ProcessMessage(context.Background(), stats.InboundMessage{
		Sender:  testUser(7, "alice"),
		Channel: "chan",
		Body:    "hi",
	}, func(text string) { replies = append(replies, text) })
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if len(store.quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(store.quotes))
	}
	if got := store.quotes[0].Text; got != "hi" {
		t.Errorf("quote text = %q, want %q", got, "hi")
	}
	if len(replies) != 1 || replies[0] != "Snagged line on request." {
		t.Errorf("replies = %v, want the manual snag acknowledgement", replies)
	}
	if engine.SnagNextArmed() {
		t.Error("global override still armed after firing")
	}
}

func TestSnagNextFiresBeforeTargetedOverride(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(store, testConfig())
	engine.ArmSnagNext()
	engine.ArmSnagNextFor("alice")

	err := engine.ProcessMessage(context.Background(), stats.InboundMessage{
		Sender:  testUser(7, "alice"),
		Channel: "chan",
		Body:    "hi",
	}, nil)
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if len(store.quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(store.quotes))
	}
	if engine.SnagNextArmed() {
		t.Error("global override still armed after firing")
	}
	if got := engine.SnagNextTarget(); got != "alice" {
		t.Errorf("targeted override = %q, want it to stay armed for alice", got)
	}
}

func TestSnagNextForMatchesNickname(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		target     string
		sender     string
		wantQuotes int
		wantTarget string
	}{
		{
			name:       "matching nickname consumes the override",
			target:     "alice",
			sender:     "alice",
			wantQuotes: 1,
			wantTarget: "",
		},
		{
			name:       "other senders leave the override armed",
			target:     "bob",
			sender:     "alice",
			wantQuotes: 0,
			wantTarget: "bob",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			engine := newTestEngine(store, testConfig())
			engine.ArmSnagNextFor(tc.target)

			err := engine.ProcessMessage(context.Background(), stats.InboundMessage{
				Sender:  testUser(7, tc.sender),
				Channel: "chan",
				Body:    "hi",
			}, nil)
			if err != nil {
				t.Fatalf("ProcessMessage failed: %v", err)
			}

			if len(store.quotes) != tc.wantQuotes {
				t.Errorf("quotes = %d, want %d", len(store.quotes), tc.wantQuotes)
			}
			if got := engine.SnagNextTarget(); got != tc.wantTarget {
				t.Errorf("target after processing = %q, want %q", got, tc.wantTarget)
			}
		})
	}
}

func TestQuoteActionFormatting(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(store, testConfig())
	engine.ArmSnagNext()

	err := engine.ProcessMessage(context.Background(), stats.InboundMessage{
		Sender:  testUser(7, "alice"),
		Channel: "chan",
		Body:    "waves at everyone",
		Action:  true,
	}, nil)
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if len(store.quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(store.quotes))
	}
	if got := store.quotes[0].Text; got != "*alice waves at everyone*" {
		t.Errorf("quote text = %q, want action formatting", got)
	}
}

func TestQuoteCooldown(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		lastQuote  time.Duration
		wantQuotes int
	}{
		{
			name:       "recent quote suppresses snagging",
			lastQuote:  time.Hour,
			wantQuotes: 1,
		},
		{
			name:       "expired cooldown allows snagging",
			lastQuote:  5 * time.Hour,
			wantQuotes: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			cfg.Quotes.Chance = 1
			cfg.Quotes.AllowNotifications = false
			store := newFakeStore()
			store.quotes = append(store.quotes, database.Quote{
				AuthorID: 7,
				Text:     "old quote",
				TakenAt:  time.Now().UTC().Add(-tc.lastQuote),
			})
			engine := newTestEngine(store, cfg)

			err := engine.ProcessMessage(context.Background(), stats.InboundMessage{
				Sender:  testUser(7, "alice"),
				Channel: "chan",
				Body:    quotableBody,
			}, nil)
			if err != nil {
				t.Fatalf("ProcessMessage failed: %v", err)
			}

			if len(store.quotes) != tc.wantQuotes {
				t.Errorf("quotes = %d, want %d", len(store.quotes), tc.wantQuotes)
			}
		})
	}
}

func TestQuoteWordCountGate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		body       string
		wantQuotes int
	}{
		{
			name:       "six words is too short",
			body:       "one two three four five six",
			wantQuotes: 0,
		},
		{
			name:       "seven words is quotable",
			body:       quotableBody,
			wantQuotes: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := testConfig()
			cfg.Quotes.Chance = 1
			cfg.Quotes.AllowNotifications = false
			store := newFakeStore()
			engine := newTestEngine(store, cfg)

			err := engine.ProcessMessage(context.Background(), stats.InboundMessage{
				Sender:  testUser(7, "alice"),
				Channel: "chan",
				Body:    tc.body,
			}, nil)
			if err != nil {
				t.Fatalf("ProcessMessage failed: %v", err)
			}

			if len(store.quotes) != tc.wantQuotes {
				t.Errorf("quotes = %d, want %d", len(store.quotes), tc.wantQuotes)
			}
		})
	}
}

func TestQuoteChanceZeroNeverSnags(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	engine := newTestEngine(store, testConfig())

	for range 20 {
		err := engine.ProcessMessage(context.Background(), stats.InboundMessage{
			Sender:  testUser(7, "alice"),
			Channel: "chan",
			Body:    quotableBody,
		}, nil)
		if err != nil {
			t.Fatalf("ProcessMessage failed: %v", err)
		}
	}

	if len(store.quotes) != 0 {
		t.Errorf("quotes = %d, want 0", len(store.quotes))
	}
}

func TestQuoteSilentWhenNotificationsDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Quotes.Chance = 1
	cfg.Quotes.AllowNotifications = false
	store := newFakeStore()
	engine := newTestEngine(store, cfg)

	var replies []string
	err := engine.ProcessMessage(context.Background(), stats.InboundMessage{
		Sender:  testUser(7, "alice"),
		Channel: "chan",
		Body:    quotableBody,
	}, func(text string) { replies = append(replies, text) })
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if len(store.quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(store.quotes))
	}
	if len(replies) != 0 {
		t.Errorf("replies = %v, want none", replies)
	}
}

func TestQuoteSilentChanceOne(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Quotes.Chance = 1
	cfg.Quotes.SilentChance = 1
	store := newFakeStore()
	engine := newTestEngine(store, cfg)

	var replies []string
	err := engine.ProcessMessage(context.Background(), stats.InboundMessage{
		Sender:  testUser(7, "alice"),
		Channel: "chan",
		Body:    quotableBody,
	}, func(text string) { replies = append(replies, text) })
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if len(store.quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(store.quotes))
	}
	if len(replies) != 0 {
		t.Errorf("replies = %v, want none", replies)
	}
}

func TestQuoteAnnouncedSnag(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Quotes.Chance = 1
	cfg.Quotes.SilentChance = 0
	store := newFakeStore()
	engine := newTestEngine(store, cfg)

	var replies []string
	err := engine.ProcessMessage(context.Background(), stats.InboundMessage{
		Sender:  testUser(7, "alice"),
		Channel: "chan",
		Body:    quotableBody,
	}, func(text string) { replies = append(replies, text) })
	if err != nil {
		t.Fatalf("ProcessMessage failed: %v", err)
	}

	if len(store.quotes) != 1 {
		t.Fatalf("expected 1 quote, got %d", len(store.quotes))
	}
	if len(replies) != 1 || replies[0] == "" {
		t.Errorf("replies = %v, want one acknowledgement", replies)
	}
}
