package stats

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// rarityBonus is added to the score of words that are user-characteristic
// and globally uncommon.
const rarityBonus = 1.5

// Topic is one word scored as characteristic of a user's vocabulary
// relative to the whole community. Topics are derived, never persisted.
type Topic struct {
	Word        string
	UserCount   int64
	GlobalCount int64
	Score       float64
}

// FindTopics computes the ranked topic list for one user in one channel.
//
// The global frequency table is built from every word used more than once;
// the user's corpus is their full message history in the channel, excluding
// bot commands. A word qualifies when the user's count does not exceed the
// global count; its initial score is the ratio of the two. Scores are
// normalized so their mean is 1, then globally rare words get a fixed bonus.
// When no words qualify the result is empty, not an error. When every
// initial score is zero the normalization step is skipped and raw scores
// are returned.
func (e *Engine) FindTopics(ctx context.Context, userID int64, channel string) ([]Topic, error) {
	e.guard.enter("FindTopics")
	defer e.guard.exit()

	global, err := e.store.GetGlobalWordCounts(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load global word counts: %w", err)
	}
	globalCount := make(map[string]int64, len(global))
	var maxGlobalCount int64
	for _, w := range global {
		globalCount[w.Word] = w.Uses
		if w.Uses > maxGlobalCount {
			maxGlobalCount = w.Uses
		}
	}

	lines, err := e.store.GetUserMessages(ctx, userID, channel)
	if err != nil {
		return nil, fmt.Errorf("failed to load user messages: %w", err)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	userCount := make(map[string]int64)
	for _, line := range lines {
		if strings.HasPrefix(line, e.cfg.Stats.CommandPrefix) {
			continue
		}
		for _, word := range strings.Fields(line) {
			userCount[word]++
		}
	}

	topics := make([]Topic, 0, len(userCount))
	for word, uc := range userCount {
		gc, ok := globalCount[word]
		if !ok || uc > gc {
			// Words the user seems to have used more often than the
			// whole community are inconsistent noise.
			continue
		}
		topics = append(topics, Topic{
			Word:        word,
			UserCount:   uc,
			GlobalCount: gc,
			Score:       float64(uc) / float64(gc),
		})
	}
	if len(topics) == 0 {
		return nil, nil
	}

	var sum float64
	for _, t := range topics {
		sum += t.Score
	}
	avgDifference := sum / float64(len(topics))
	if avgDifference > 0 {
		multiplier := 1 / avgDifference
		for i := range topics {
			topics[i].Score *= multiplier
		}
	}

	for i, t := range topics {
		if t.UserCount != t.GlobalCount && float64(t.GlobalCount) < float64(maxGlobalCount)/2 {
			topics[i].Score += rarityBonus
		}
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Score != topics[j].Score {
			return topics[i].Score > topics[j].Score
		}
		return topics[i].Word < topics[j].Word
	})

	e.logger.DebugContext(ctx, "Computed topics", "user_id", userID, "channel", channel, "count", len(topics))
	return topics, nil
}
