package stats_test

import (
	"reflect"
	"testing"

	"github.com/mvisser/snagbot/internal/stats"
)

func TestWords(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: []string{},
		},
		{
			name:     "simple sentence",
			input:    "hello there world",
			expected: []string{"hello", "there", "world"},
		},
		{
			name:     "trailing commas and periods stripped",
			input:    "well, that settles it.",
			expected: []string{"well", "that", "settles", "it"},
		},
		{
			name:     "repeated spaces produce no empty tokens",
			input:    "hello   world",
			expected: []string{"hello", "world"},
		},
		{
			name:     "token of only punctuation is dropped",
			input:    "wait ... what",
			expected: []string{"wait", "what"},
		},
		{
			name:     "leading and trailing whitespace",
			input:    "  hello world  ",
			expected: []string{"hello", "world"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := stats.Words(tc.input)
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("Words(%q) = %v, want %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestCleanWord(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercase passthrough",
			input:    "hello",
			expected: "hello",
		},
		{
			name:     "uppercase folded",
			input:    "HeLLo",
			expected: "hello",
		},
		{
			name:     "apostrophe stripped",
			input:    "it's",
			expected: "its",
		},
		{
			name:     "digits and symbols stripped",
			input:    "h4x0r!",
			expected: "hxr",
		},
		{
			name:     "nothing left",
			input:    "1234!?",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := stats.CleanWord(tc.input); got != tc.expected {
				t.Errorf("CleanWord(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestIsProfanity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected bool
	}{
		{"shit", true},
		{"bullshit", true},
		{"shitty", true},
		{"ship", false},
		{"hello", false},
	}

	for _, tc := range testCases {
		if got := stats.IsProfanity(tc.input); got != tc.expected {
			t.Errorf("IsProfanity(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestIsIgnoredWord(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected bool
	}{
		{"and", true},
		{"the", true},
		{"that", true},
		{"Dont", true},
		{"banana", false},
		{"code", false},
	}

	for _, tc := range testCases {
		if got := stats.IsIgnoredWord(tc.input); got != tc.expected {
			t.Errorf("IsIgnoredWord(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestIsEmoticon(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected bool
	}{
		{":)", true},
		{"xD", true},
		{"<3", true},
		{":)extra", false},
		{"hello", false},
	}

	for _, tc := range testCases {
		if got := stats.IsEmoticon(tc.input); got != tc.expected {
			t.Errorf("IsEmoticon(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected bool
	}{
		{"http://example.com", true},
		{"https://example.com/path", true},
		{"ftp://example.com", false},
		{"example.com", false},
	}

	for _, tc := range testCases {
		if got := stats.IsURL(tc.input); got != tc.expected {
			t.Errorf("IsURL(%q) = %v, want %v", tc.input, got, tc.expected)
		}
	}
}
