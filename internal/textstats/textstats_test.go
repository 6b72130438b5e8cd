package textstats

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"lowercases", "Coffee COFFEE coffee", []string{"coffee", "coffee", "coffee"}},
		{"strips punctuation", "hmm, coffee? coffee!", []string{"hmm", "coffee", "coffee"}},
		{"drops short tokens", "go to my house", []string{"house"}},
		{"drops stop words", "the weather and the traffic", []string{"weather", "traffic"}},
		{"keeps apostrophes", "o'clock tomorrow", []string{"o'clock", "tomorrow"}},
		{"numbers attached", "gate 425b opens", []string{"gate", "425b", "opens"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Tokenize(tc.text)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

func TestWordFrequencies_OrderAndTruncation(t *testing.T) {
	texts := []string{"cat cat dog", "dog"}
	got := WordFrequencies(texts, 2)
	// Equal counts keep first-encountered order: cat before dog.
	want := []TokenCount{{"cat", 2}, {"dog", 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WordFrequencies mismatch (-want +got):\n%s", diff)
	}
}

func TestWordFrequencies_DescendingCounts(t *testing.T) {
	texts := []string{"pizza tonight", "pizza pizza", "tonight maybe pizza"}
	got := WordFrequencies(texts, 0)
	want := []TokenCount{{"pizza", 4}, {"tonight", 2}, {"maybe", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("WordFrequencies mismatch (-want +got):\n%s", diff)
	}
}

func TestWordFrequencies_EmptyAndNilTexts(t *testing.T) {
	if got := WordFrequencies([]string{"", "", ""}, 10); len(got) != 0 {
		t.Errorf("expected no tokens from empty texts, got %v", got)
	}
	if got := WordFrequencies(nil, 10); len(got) != 0 {
		t.Errorf("expected no tokens from nil input, got %v", got)
	}
}

func TestExtractEmojis(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"no emojis", "plain text", nil},
		{"single", "nice \U0001F600", []string{"\U0001F600"}},
		{"duplicates counted", "\U0001F602\U0001F602", []string{"\U0001F602", "\U0001F602"}},
		{"mixed ranges", "❤ ride \U0001F697 party \U0001F973", []string{"❤", "\U0001F697", "\U0001F973"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractEmojis(tc.text)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ExtractEmojis(%q) mismatch (-want +got):\n%s", tc.text, diff)
			}
		})
	}
}

func TestEmojiFrequencies(t *testing.T) {
	texts := []string{"\U0001F602 so funny \U0001F602", "ok \U0001F44D"}
	got := EmojiFrequencies(texts, 10)
	want := []TokenCount{{"\U0001F602", 2}, {"\U0001F44D", 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EmojiFrequencies mismatch (-want +got):\n%s", diff)
	}
}
