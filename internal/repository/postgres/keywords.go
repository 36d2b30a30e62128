package postgres

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minKeywordLength is the shortest word, in runes, that contributes a keyword match
const minKeywordLength = 4

// stopWords contains common words to exclude from keyword matching
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "that": true, "with": true,
	"this": true, "are": true, "but": true, "not": true, "you": true,
	"all": true, "was": true, "his": true, "her": true, "from": true,
	"they": true, "have": true, "had": true, "been": true, "were": true,
	"will": true, "would": true, "could": true, "should": true, "shall": true,
	"unto": true, "them": true, "which": true, "there": true, "their": true,
	"when": true, "then": true, "than": true, "into": true, "upon": true,
	"said": true, "what": true, "about": true,
}

// tokenizeWords splits a query into distinct lower-case words worth matching on
func tokenizeWords(query string) []string {
	words := strings.FieldsFunc(strings.ToLower(query), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsDigit(c)
	})

	seen := make(map[string]bool, len(words))
	filtered := make([]string, 0, len(words))
	for _, word := range words {
		if utf8.RuneCountInString(word) < minKeywordLength || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		filtered = append(filtered, word)
	}
	return filtered
}

// keywordPatterns turns the query words into ILIKE patterns
func keywordPatterns(query string) []string {
	words := tokenizeWords(query)
	patterns := make([]string, len(words))
	for i, w := range words {
		patterns[i] = "%" + escapeLike(w) + "%"
	}
	return patterns
}
