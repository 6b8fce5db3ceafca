package extractor

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// tokens is the working text. Consumed words are masked, never removed, so
// positions stay stable while each parser takes its span.
type tokens struct {
	words []string
	used  []bool
}

func newTokens(clean string) *tokens {
	w := strings.Fields(clean)
	return &tokens{words: w, used: make([]bool, len(w))}
}

func (t *tokens) free(i int) bool {
	return i >= 0 && i < len(t.words) && !t.used[i]
}

// at reports whether phrase starts at i on free words.
func (t *tokens) at(i int, phrase []string) bool {
	if len(phrase) == 0 || i < 0 || i+len(phrase) > len(t.words) {
		return false
	}
	for k, p := range phrase {
		if t.used[i+k] || t.words[i+k] != p {
			return false
		}
	}
	return true
}

// find returns the first free occurrence of phrase at or after from, or -1.
func (t *tokens) find(phrase []string, from int) int {
	for i := from; i+len(phrase) <= len(t.words); i++ {
		if t.at(i, phrase) {
			return i
		}
	}
	return -1
}

func (t *tokens) consume(i, n int) {
	for k := i; k < i+n && k < len(t.words); k++ {
		t.used[k] = true
	}
}

func (t *tokens) text() string {
	return strings.Join(t.words, " ")
}

// freeWords returns the unconsumed words, optionally skipping fillers.
func (t *tokens) freeWords(skipFillers bool) []string {
	var out []string
	for i, w := range t.words {
		if t.used[i] || (skipFillers && fillers[w]) {
			continue
		}
		out = append(out, w)
	}
	return out
}

// phrases splits a word list into token slices sorted longest first.
func phrases(list []string) [][]string {
	out := make([][]string, 0, len(list))
	for _, p := range list {
		out = append(out, strings.Fields(p))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(strings.Join(out[i], " ")) > utf8.RuneCountInString(strings.Join(out[j], " "))
	})
	return out
}

// firstPhrase finds the earliest free occurrence of any phrase; at equal
// positions the longer phrase wins.
func (t *tokens) firstPhrase(list [][]string) (int, []string) {
	for i := range t.words {
		for _, p := range list {
			if t.at(i, p) {
				return i, p
			}
		}
	}
	return -1, nil
}
