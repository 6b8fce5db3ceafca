package responder

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// banned are filler phrases that make synthesized speech sound overexcited.
var banned = []string{
	"geweldig", "fantastisch", "super", "met alle plezier", "heel graag", "absoluut", "uiteraard",
	"great", "awesome", "amazing", "fantastic", "absolutely", "perfect", "wonderful", "no problem at all",
}

var (
	bannedRe      = compileBanned(banned)
	spaceRe       = regexp.MustCompile(`\s+`)
	spacePunctRe  = regexp.MustCompile(`\s+([.,?])`)
	repeatPunctRe = regexp.MustCompile(`([.,?])[.,]+`)
)

func compileBanned(phrases []string) *regexp.Regexp {
	sorted := append([]string(nil), phrases...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, len(sorted))
	for i, p := range sorted {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b[!,]?`)
}

// Sanitize strips banned phrases, turns exclamation marks into periods and
// tidies the spacing that removal leaves behind.
func Sanitize(text string) string {
	s := bannedRe.ReplaceAllString(text, "")
	s = strings.ReplaceAll(s, "!", ".")
	s = spaceRe.ReplaceAllString(s, " ")
	s = spacePunctRe.ReplaceAllString(s, "$1")
	s = repeatPunctRe.ReplaceAllString(s, "$1")
	s = strings.TrimLeft(s, " .,")
	s = strings.TrimSpace(s)

	r, size := utf8.DecodeRuneInString(s)
	if r != utf8.RuneError && unicode.IsLower(r) {
		s = string(unicode.ToUpper(r)) + s[size:]
	}
	return s
}
