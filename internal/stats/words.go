package stats

import "strings"

// Embedded word lists. Profanity matching is by substring on the lowercased
// word; ignored-word matching is by exact match on the cleaned word.
var (
	profanities = []string{
		"fuck", "cock", "dick", "bitch", "shit", "asshole", "wank", "cunt", "piss",
	}
	conjunctions = []string{"and", "but", "or", "yet", "for", "nor", "so"}
	articles     = []string{"the", "an", "a"}
	ignoredWords = []string{
		"you", "its", "not", "was", "are", "can", "now", "all", "how",
		"that", "this", "what", "thats", "they", "then", "there", "when",
		"with", "well", "from", "will", "here", "out", "dont",
	}
	emoticons = []string{
		":)", ":(", ":D", ";)", ":P", ":p", "xD", "XD", ":O", ":o",
		":'(", "<3", ":/", ":|", "D:", ":3", "^^", "o_O", ":S", ":$",
	}
)

// Words splits a message body into word tokens: split on spaces, trailing
// commas and periods stripped, empty tokens dropped.
func Words(body string) []string {
	parts := strings.Split(strings.TrimSpace(body), " ")
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimRight(p, ",.")
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

// CleanWord normalizes a word for global usage counting: lowercased with
// everything outside a-z removed. People commonly type "its" when they mean
// "it's" and telling them apart is hopeless, so both count as the same word.
func CleanWord(word string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, word)
}

// IsProfanity reports whether the lowercased word contains a profanity.
func IsProfanity(lword string) bool {
	for _, p := range profanities {
		if strings.Contains(lword, p) {
			return true
		}
	}
	return false
}

// IsIgnoredWord reports whether a cleaned word is too common to be worth
// counting: conjunctions, articles, and high-frequency filler.
func IsIgnoredWord(cword string) bool {
	cword = strings.ToLower(cword)
	for _, list := range [][]string{conjunctions, ignoredWords, articles} {
		for _, w := range list {
			if cword == w {
				return true
			}
		}
	}
	return false
}

// IsEmoticon reports whether a raw token is a known emoticon.
func IsEmoticon(word string) bool {
	for _, e := range emoticons {
		if word == e {
			return true
		}
	}
	return false
}

// IsURL reports whether a raw token looks like a linked URL.
func IsURL(word string) bool {
	return strings.HasPrefix(word, "http://") || strings.HasPrefix(word, "https://")
}

// countable reports whether a cleaned word should be added to the global
// word table. Very short words and ignored words are noise.
func countable(cword string) bool {
	return len(cword) >= 3 && !IsIgnoredWord(cword)
}
