package extractor

import (
	"fmt"
	"regexp"
	"strconv"

	"phonedesk/models"
)

// pmThreshold: a bare hour below it means the afternoon ("om 3" is 15:00).
const pmThreshold = 7

var (
	clockRe  = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})$`)
	meridRe  = regexp.MustCompile(`^(\d{1,2})(am|pm)$`)
	digitsRe = regexp.MustCompile(`^\d{1,2}$`)
)

type clock struct {
	hour, minute int
	explicit     bool   // written with minutes, e.g. 14:30
	meridiem     string // "am" or "pm" glued to the number, e.g. 3pm
}

func hourValue(w string) (int, bool) {
	if digitsRe.MatchString(w) {
		n, _ := strconv.Atoi(w)
		return n, n <= 23
	}
	if n, ok := numberWords[w]; ok && n <= 23 {
		return n, true
	}
	return 0, false
}

// previousHour is the hour before h on a 12-hour dial ("kwart voor een" is 12:45).
func previousHour(h int) int {
	if h <= 1 {
		return 12
	}
	return h - 1
}

// resolveHour applies the meridiem heuristic: explicit pm adds 12, explicit
// morning keeps the hour, a spoken hour below pmThreshold is the afternoon.
// Times written with minutes ("06:30") are taken as they are.
func resolveHour(c clock, t *tokens) int {
	h := c.hour
	morning, evening := c.meridiem == "am", c.meridiem == "pm"
	for _, w := range t.words {
		morning = morning || morningMarkers[w]
		evening = evening || eveningMarkers[w]
	}
	switch {
	case evening && h < 12:
		return h + 12
	case morning:
		if h == 12 {
			return 0
		}
		return h
	case !c.explicit && h >= 1 && h < pmThreshold:
		return h + 12
	}
	return h
}

// parseTime finds the first time expression. Bare numbers count only when a
// time is being asked for. englishHalf selects "half five" = 5:30 over the
// Dutch "half vijf" = 4:30.
func parseTime(t *tokens, expectTime, englishHalf bool) (models.Entity, bool) {
	c, ok := scanTime(t, expectTime, englishHalf)
	if !ok {
		return models.Entity{}, false
	}
	h := resolveHour(c, t)
	if h > 23 || c.minute > 59 {
		return models.Entity{}, false
	}
	conf := 1.0
	if !c.explicit {
		conf = 0.9
	}
	return models.Entity{Kind: models.EntityTime, Value: fmt.Sprintf("%02d:%02d", h, c.minute), Confidence: conf}, true
}

func scanTime(t *tokens, expectTime, englishHalf bool) (clock, bool) {
	for i, w := range t.words {
		if t.used[i] {
			continue
		}
		start := i
		// optional preposition: "om half drie", "at 3"
		if timePrepositions[w] && t.free(i+1) {
			i++
			w = t.words[i]
		}

		if m := clockRe.FindStringSubmatch(w); m != nil {
			h, _ := strconv.Atoi(m[1])
			mi, _ := strconv.Atoi(m[2])
			if h <= 23 && mi <= 59 {
				n := 1
				if t.free(i+1) && (t.words[i+1] == "uur" || t.words[i+1] == "am" || t.words[i+1] == "pm") {
					n++
				}
				t.consume(start, i-start+n)
				return clock{hour: h, minute: mi, explicit: true}, true
			}
		}
		if m := meridRe.FindStringSubmatch(w); m != nil {
			h, _ := strconv.Atoi(m[1])
			t.consume(start, i-start+1)
			return clock{hour: h, meridiem: m[2]}, true
		}

		if c, n, ok := fractionTime(t, i, englishHalf); ok {
			t.consume(start, i-start+n)
			return c, true
		}

		if h, ok := hourValue(w); ok {
			if t.free(i + 1) {
				switch t.words[i+1] {
				case "uur", "o'clock", "am", "pm":
					t.consume(start, i-start+2)
					return clock{hour: h}, true
				}
			}
			if start != i {
				t.consume(start, i-start+1)
				return clock{hour: h}, true
			}
		}
	}

	if expectTime {
		// a lone number answering "what time?"
		rest := t.freeWords(true)
		if len(rest) == 1 {
			if h, ok := hourValue(rest[0]); ok && h > 0 {
				for i, w := range t.words {
					if !t.used[i] && w == rest[0] {
						t.consume(i, 1)
						break
					}
				}
				return clock{hour: h}, true
			}
		}
	}
	return clock{}, false
}

// fractionTime parses half/quarter forms starting at i and returns the
// number of words consumed.
func fractionTime(t *tokens, i int, englishHalf bool) (clock, int, bool) {
	forms := []struct {
		lead   []string
		minute int
		before bool // refers to the coming hour
	}{
		{[]string{"half", "past"}, 30, false},
		{[]string{"quarter", "past"}, 15, false},
		{[]string{"a", "quarter", "past"}, 15, false},
		{[]string{"quarter", "to"}, 45, true},
		{[]string{"a", "quarter", "to"}, 45, true},
		{[]string{"kwart", "over"}, 15, false},
		{[]string{"kwart", "voor"}, 45, true},
		{[]string{"half"}, 30, !englishHalf},
	}
	for _, f := range forms {
		if !t.at(i, f.lead) {
			continue
		}
		j := i + len(f.lead)
		if !t.free(j) {
			continue
		}
		h, ok := hourValue(t.words[j])
		if !ok || h == 0 || h > 12 {
			continue
		}
		if f.before {
			h = previousHour(h)
		}
		n := len(f.lead) + 1
		if t.free(j+1) && (t.words[j+1] == "uur" || t.words[j+1] == "o'clock") {
			n++
		}
		return clock{hour: h, minute: f.minute}, n, true
	}
	return clock{}, 0, false
}
