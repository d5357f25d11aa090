package extract

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxKeywords is the keyword cap used for whole-document extraction
const DefaultMaxKeywords = 20

// maxPhrases is the number of repeated phrases returned by Phrases
const maxPhrases = 10

// stopwords is the fixed set of common English function words filtered from
// keyword and phrase candidates
var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"day": true, "get": true, "has": true, "him": true, "his": true,
	"how": true, "man": true, "new": true, "now": true, "old": true,
	"see": true, "two": true, "way": true, "who": true, "its": true,
	"did": true, "yes": true, "this": true, "that": true, "with": true,
	"from": true, "they": true, "will": true, "would": true, "there": true,
	"their": true, "what": true, "about": true, "which": true, "when": true,
	"make": true, "like": true, "time": true, "just": true, "know": true,
	"take": true, "into": true, "your": true, "some": true, "could": true,
	"them": true, "than": true, "then": true, "look": true, "only": true,
	"come": true, "over": true, "also": true, "back": true, "after": true,
	"other": true, "many": true, "must": true, "because": true, "these": true,
	"give": true, "most": true, "very": true, "have": true, "been": true,
	"were": true, "said": true, "each": true, "where": true, "does": true,
	"here": true, "more": true, "much": true, "such": true, "through": true,
	"before": true, "between": true, "under": true, "while": true, "should": true,
	"being": true, "every": true, "those": true, "same": true, "another": true,
	"against": true, "during": true, "without": true, "again": true, "both": true,
}

var tokenRe = regexp.MustCompile(`[^\pL\pN-]+`)
var digitsOnlyRe = regexp.MustCompile(`^\d+$`)

// tokenize splits text on non-word/non-hyphen characters and lowercases
func tokenize(text string) []string {
	raw := tokenRe.Split(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.Trim(t, "-")
		if t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// isCandidate reports whether a token survives keyword filtering
func isCandidate(token string) bool {
	if len(token) <= 2 {
		return false
	}
	if stopwords[token] {
		return false
	}
	if digitsOnlyRe.MatchString(token) {
		return false
	}
	return true
}

// Keywords returns the top maxKeywords tokens scored by
// frequency * (1 + ln(length)). Repeated and longer terms both score higher;
// ties keep scan order.
func Keywords(text string, maxKeywords int) []string {
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}

	counts := make(map[string]int)
	var order []string

	for _, token := range tokenize(text) {
		if !isCandidate(token) {
			continue
		}
		if counts[token] == 0 {
			order = append(order, token)
		}
		counts[token]++
	}

	score := func(token string) float64 {
		return float64(counts[token]) * (1 + math.Log(float64(len(token))))
	}

	sort.SliceStable(order, func(i, j int) bool {
		return score(order[i]) > score(order[j])
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}
	return order
}

// Phrases returns the top repeated n-grams (default bigrams when n <= 1).
// Phrases composed entirely of stopwords and phrases occurring only once are
// discarded.
func Phrases(text string, n int) []string {
	if n <= 1 {
		n = 2
	}

	tokens := tokenize(text)
	counts := make(map[string]int)
	var order []string

	for i := 0; i+n <= len(tokens); i++ {
		gram := tokens[i : i+n]

		allStopwords := true
		for _, t := range gram {
			if !stopwords[t] {
				allStopwords = false
				break
			}
		}
		if allStopwords {
			continue
		}

		phrase := strings.Join(gram, " ")
		if counts[phrase] == 0 {
			order = append(order, phrase)
		}
		counts[phrase]++
	}

	repeated := make([]string, 0, len(order))
	for _, phrase := range order {
		if counts[phrase] > 1 {
			repeated = append(repeated, phrase)
		}
	}

	sort.SliceStable(repeated, func(i, j int) bool {
		return counts[repeated[i]] > counts[repeated[j]]
	})

	if len(repeated) > maxPhrases {
		repeated = repeated[:maxPhrases]
	}
	return repeated
}
