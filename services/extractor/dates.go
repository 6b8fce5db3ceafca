package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"phonedesk/models"
)

var (
	isoDateRe  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dayMonthRe = regexp.MustCompile(`^(\d{1,2})[-/](\d{1,2})$`)
	ordinalRe  = regexp.MustCompile(`^(\d{1,2})(?:e|ste|de|st|nd|rd|th)?$`)
)

var relativePhrases = func() [][]string {
	out := make([][]string, len(relativeDays))
	for i, r := range relativeDays {
		out[i] = strings.Fields(r.phrase)
	}
	return out
}()

// NextWeekday returns the next date strictly after today that falls on wd.
func NextWeekday(now time.Time, wd time.Weekday) time.Time {
	delta := (int(wd) - int(now.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return dateOnly(now).AddDate(0, 0, delta)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dateEntity(d time.Time, confidence float64) models.Entity {
	return models.Entity{Kind: models.EntityDate, Value: d.Format("2006-01-02"), Confidence: confidence}
}

// validDate builds y-m-d and rejects overflowing days such as 31 april.
func validDate(y int, m time.Month, d int, loc *time.Location) (time.Time, bool) {
	if m < time.January || m > time.December || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	return t, t.Month() == m && t.Day() == d
}

// upcoming resolves a day and month to this year, or next year if already past.
func upcoming(now time.Time, m time.Month, d int) (time.Time, bool) {
	t, ok := validDate(now.Year(), m, d, now.Location())
	if !ok {
		return t, false
	}
	if t.Before(dateOnly(now)) {
		return validDate(now.Year()+1, m, d, now.Location())
	}
	return t, true
}

func dayNumber(w string) (int, bool) {
	if m := ordinalRe.FindStringSubmatch(w); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, n >= 1 && n <= 31
	}
	if n, ok := numberWords[w]; ok {
		return n, true
	}
	return 0, false
}

// parseDate takes the earliest date expression in the text.
func parseDate(t *tokens, now time.Time) (models.Entity, bool) {
	for i, w := range t.words {
		if t.used[i] {
			continue
		}
		if m := isoDateRe.FindStringSubmatch(w); m != nil {
			y, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			d, _ := strconv.Atoi(m[3])
			if date, ok := validDate(y, time.Month(mo), d, now.Location()); ok {
				t.consume(i, 1)
				return dateEntity(date, 1), true
			}
		}
		if m := dayMonthRe.FindStringSubmatch(w); m != nil {
			d, _ := strconv.Atoi(m[1])
			mo, _ := strconv.Atoi(m[2])
			if date, ok := upcoming(now, time.Month(mo), d); ok {
				t.consume(i, 1)
				return dateEntity(date, 0.9), true
			}
		}
		// "3 maart", "3rd of march"
		if d, ok := dayNumber(w); ok {
			j := i + 1
			if t.free(j) && t.words[j] == "of" {
				j++
			}
			if t.free(j) {
				if mo, ok := months[t.words[j]]; ok {
					if date, ok := upcoming(now, mo, d); ok {
						t.consume(i, j-i+1)
						return dateEntity(date, 1), true
					}
				}
			}
		}
		// "march 3"
		if mo, ok := months[w]; ok && t.free(i+1) {
			if d, ok := dayNumber(t.words[i+1]); ok {
				if date, ok := upcoming(now, mo, d); ok {
					t.consume(i, 2)
					return dateEntity(date, 1), true
				}
			}
		}
		for k, p := range relativePhrases {
			if !t.at(i, p) {
				continue
			}
			// "goede morgen" is a greeting
			if p[0] == "morgen" && i > 0 && (t.words[i-1] == "goede" || t.words[i-1] == "goeie") {
				continue
			}
			t.consume(i, len(p))
			return dateEntity(dateOnly(now).AddDate(0, 0, relativeDays[k].days), 1), true
		}
		if wd, ok := weekdays[w]; ok {
			t.consume(i, 1)
			return dateEntity(NextWeekday(now, wd), 1), true
		}
	}
	return models.Entity{}, false
}
