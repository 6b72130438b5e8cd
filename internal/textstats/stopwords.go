package textstats

// stopWords holds common English function words and chat filler excluded
// from word frequency tables. Tokens of length <= 2 are dropped before this
// set is consulted, so two-letter words are not listed.
var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"the", "and", "for", "are", "but", "not", "you", "all", "any",
		"can", "her", "was", "one", "our", "out", "has", "had", "him",
		"his", "how", "man", "new", "now", "old", "see", "two", "way",
		"who", "did", "its", "let", "she", "too", "use", "that", "with",
		"have", "this", "will", "your", "from", "they", "know", "want",
		"been", "good", "much", "some", "time", "very", "when", "come",
		"here", "just", "like", "long", "make", "many", "more", "only",
		"over", "such", "take", "than", "them", "well", "were", "what",
		"about", "after", "again", "could", "every", "first", "going",
		"their", "there", "these", "thing", "think", "those", "where",
		"which", "while", "would", "really", "should", "because",
		"dont", "cant", "didnt", "thats", "youre", "gonna", "yeah",
		"okay", "lol", "lmao", "haha", "don't", "can't", "didn't", "that's",
		"you're", "i'm", "it's",
	} {
		stopWords[w] = struct{}{}
	}
}
