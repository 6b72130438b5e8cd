// Package textstats tokenizes message bodies into word and emoji frequency
// tables. It is the single implementation behind per-contact, per-group, and
// app-wide word clouds so the three can never drift apart.
package textstats

import (
	"regexp"
	"sort"
	"strings"
)

// TokenCount is one entry in a frequency table.
type TokenCount struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// nonWord matches every character that is not a word character or an
// apostrophe. Matches are replaced with whitespace before splitting.
var nonWord = regexp.MustCompile(`[^a-z0-9_']+`)

// emojiPattern covers emoticons, symbols & pictographs, transport, flags,
// miscellaneous symbols, dingbats, supplemental symbols, and the extended
// symbols block.
var emojiPattern = regexp.MustCompile(`[\x{1F600}-\x{1F64F}]|[\x{1F300}-\x{1F5FF}]|[\x{1F680}-\x{1F6FF}]|[\x{1F1E6}-\x{1F1FF}]|[\x{2600}-\x{26FF}]|[\x{2700}-\x{27BF}]|[\x{1F900}-\x{1F9FF}]|[\x{1FA70}-\x{1FAFF}]`)

// Tokenize lowercases text, strips everything that is not a word character
// or apostrophe, and returns the remaining tokens that are longer than two
// characters and not stop words.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	cleaned := nonWord.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// ExtractEmojis returns every emoji glyph in text, duplicates included.
func ExtractEmojis(text string) []string {
	if text == "" {
		return nil
	}
	return emojiPattern.FindAllString(text, -1)
}

// WordFrequencies tokenizes each text and returns the top tokens by count,
// descending. Ties keep first-encountered order. A limit <= 0 means no
// truncation.
func WordFrequencies(texts []string, limit int) []TokenCount {
	return frequencies(texts, limit, Tokenize)
}

// EmojiFrequencies is WordFrequencies over emoji glyphs.
func EmojiFrequencies(texts []string, limit int) []TokenCount {
	return frequencies(texts, limit, ExtractEmojis)
}

func frequencies(texts []string, limit int, extract func(string) []string) []TokenCount {
	counts := make(map[string]int)
	var order []string
	for _, text := range texts {
		for _, tok := range extract(text) {
			if _, seen := counts[tok]; !seen {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	results := make([]TokenCount, 0, len(order))
	for _, tok := range order {
		results = append(results, TokenCount{Token: tok, Count: counts[tok]})
	}
	// Stable sort keeps first-encountered order for equal counts.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Count > results[j].Count
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
