// Package vocab picks practice words out of lecture text and turns them into
// short sentences suitable for pronunciation drills.
package vocab

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DefaultTopK is the number of words Extract returns when topK <= 0.
const DefaultTopK = 30

// minWordLength excludes very short tokens.
const minWordLength = 3

// maxSentenceWords bounds the words SampleSentences turns into sentences.
const maxSentenceWords = 10

var wordPattern = regexp.MustCompile(`[A-Za-z']+`)

var stopWords = func() map[string]struct{} {
	words := strings.Fields(`
a an the and or but if then of to in on at for from with without into onto is are was were be been being
i you he she it we they this that these those as by about
`)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// Extract returns up to topK distinct lower-case words from text, ordered by
// descending frequency. Ties keep first-occurrence order. Stop words and
// words shorter than three letters are skipped.
func Extract(text string, topK int) []string {
	if topK <= 0 {
		topK = DefaultTopK
	}

	freq := make(map[string]int)
	var order []string
	for _, w := range wordPattern.FindAllString(strings.ToLower(text), -1) {
		if len(w) < minWordLength {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		if freq[w] == 0 {
			order = append(order, w)
		}
		freq[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return freq[order[i]] > freq[order[j]]
	})
	if len(order) > topK {
		order = order[:topK]
	}
	return order
}

// SampleSentences builds two practice sentences for each of the first ten
// words.
func SampleSentences(words []string) []string {
	if len(words) > maxSentenceWords {
		words = words[:maxSentenceWords]
	}
	out := make([]string, 0, len(words)*2)
	for _, w := range words {
		out = append(out,
			fmt.Sprintf("I will practice the word '%s' every day.", w),
			fmt.Sprintf("Can you use '%s' in a sentence?", w),
		)
	}
	return out
}
