package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"phonedesk/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const minPhoneDigits = 9

var phonePartRe = regexp.MustCompile(`^\+?[\d-]+$`)

var titleCaser = cases.Title(language.Dutch)

func titleCase(s string) string {
	return titleCaser.String(s)
}

// parsePhone joins adjacent digit groups and accepts runs of at least nine digits.
func parsePhone(t *tokens) (models.Entity, bool) {
	for i := 0; i < len(t.words); i++ {
		if !t.free(i) || !phonePartRe.MatchString(t.words[i]) {
			continue
		}
		j := i
		var b strings.Builder
		for j < len(t.words) && t.free(j) && phonePartRe.MatchString(t.words[j]) {
			if j > i && strings.HasPrefix(t.words[j], "+") {
				break
			}
			b.WriteString(t.words[j])
			j++
		}
		raw := b.String()
		digits := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return r
			}
			return -1
		}, raw)
		if len(digits) >= minPhoneDigits {
			if strings.HasPrefix(raw, "+") {
				digits = "+" + digits
			}
			t.consume(i, j-i)
			return models.Entity{Kind: models.EntityPhone, Value: digits, Confidence: 1}, true
		}
		i = j - 1
	}
	return models.Entity{}, false
}

var (
	deliveryList = phrases(deliveryPhrases)
	pickupList   = phrases(pickupPhrases)
)

func parseFulfillment(t *tokens) (models.Entity, bool) {
	di, dp := t.firstPhrase(deliveryList)
	pi, pp := t.firstPhrase(pickupList)
	switch {
	case di >= 0 && (pi < 0 || di <= pi):
		t.consume(di, len(dp))
		return models.Entity{Kind: models.EntityFulfillment, Value: models.FulfillmentDelivery, Confidence: 1}, true
	case pi >= 0:
		t.consume(pi, len(pp))
		return models.Entity{Kind: models.EntityFulfillment, Value: models.FulfillmentPickup, Confidence: 1}, true
	}
	return models.Entity{}, false
}

var addressIntroList = phrases(addressIntros)

// parseAddress takes the words after an address introduction, or the whole
// answer when an address is being asked for and it contains a house number.
func parseAddress(t *tokens, expectAddress bool) (models.Entity, bool) {
	if i, p := t.firstPhrase(addressIntroList); i >= 0 {
		j := i + len(p)
		k := j
		for k < len(t.words) && t.free(k) && !segmentBreaks[t.words[k]] {
			k++
		}
		if k > j {
			value := strings.Join(t.words[j:k], " ")
			t.consume(i, k-i)
			return models.Entity{Kind: models.EntityAddress, Value: titleCase(value), Confidence: 0.9}, true
		}
	}
	if !expectAddress {
		return models.Entity{}, false
	}
	rest := t.freeWords(false)
	joined := strings.Join(rest, " ")
	if len(rest) >= 2 && strings.IndexFunc(joined, unicode.IsDigit) >= 0 && strings.IndexFunc(joined, unicode.IsLetter) >= 0 {
		for i := range t.words {
			t.used[i] = true
		}
		return models.Entity{Kind: models.EntityAddress, Value: titleCase(joined), Confidence: 0.7}, true
	}
	return models.Entity{}, false
}

var nameIntroList = phrases(nameIntros)

// parseNameIntro reads up to three words after "mijn naam is" and similar.
func parseNameIntro(t *tokens) (models.Entity, bool) {
	i, p := t.firstPhrase(nameIntroList)
	if i < 0 {
		return models.Entity{}, false
	}
	j := i + len(p)
	k := j
	for k < len(t.words) && k-j < 3 && t.free(k) && !nameStops[t.words[k]] && !hasDigit(t.words[k]) {
		k++
	}
	if k == j {
		return models.Entity{}, false
	}
	name := strings.Join(t.words[j:k], " ")
	t.consume(i, k-i)
	return models.Entity{Kind: models.EntityName, Value: titleCase(name), Confidence: 0.9}, true
}

// parseNameFallback treats a short bare answer as the name when a name is
// being asked for and nothing else was recognized.
func parseNameFallback(t *tokens) (models.Entity, bool) {
	for _, used := range t.used {
		if used {
			return models.Entity{}, false
		}
	}
	words := t.words
	for len(words) > 0 && (fillers[words[0]] || nameStops[words[0]]) {
		words = words[1:]
	}
	for len(words) > 0 && fillers[words[len(words)-1]] {
		words = words[:len(words)-1]
	}
	if len(words) == 0 || len(words) > 3 {
		return models.Entity{}, false
	}
	for _, w := range words {
		if hasDigit(w) {
			return models.Entity{}, false
		}
	}
	t.consume(0, len(t.words))
	return models.Entity{Kind: models.EntityName, Value: titleCase(strings.Join(words, " ")), Confidence: 0.5}, true
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}
