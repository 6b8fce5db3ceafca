package responder

import (
	"fmt"
	"strings"
	"time"

	"phonedesk/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	nlWeekdays = [...]string{"zondag", "maandag", "dinsdag", "woensdag", "donderdag", "vrijdag", "zaterdag"}
	nlMonths   = [...]string{"januari", "februari", "maart", "april", "mei", "juni", "juli", "augustus", "september", "oktober", "november", "december"}
	nlNumbers  = [...]string{"nul", "een", "twee", "drie", "vier", "vijf", "zes", "zeven", "acht", "negen", "tien", "elf", "twaalf"}
	enNumbers  = [...]string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten", "eleven", "twelve"}
)

// formatter renders values the way they are spoken in one locale.
type formatter struct {
	locale  string
	printer *message.Printer
}

func newFormatter(locale string) formatter {
	tag := language.Dutch
	if locale == "en" {
		tag = language.BritishEnglish
	}
	return formatter{locale: locale, printer: message.NewPrinter(tag)}
}

// money formats an amount with two decimals and the locale's separators.
func (f formatter) money(v float64) string {
	return f.printer.Sprintf("€%.2f", v)
}

// date renders YYYY-MM-DD as weekday, day and month name.
func (f formatter) date(iso string) string {
	d, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	if f.locale == "en" {
		return d.Format("Monday 2 January")
	}
	return fmt.Sprintf("%s %d %s", nlWeekdays[d.Weekday()], d.Day(), nlMonths[d.Month()-1])
}

// weekday renders only the day name of a date.
func (f formatter) weekday(iso string) string {
	d, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	if f.locale == "en" {
		return d.Weekday().String()
	}
	return nlWeekdays[d.Weekday()]
}

// clock renders HH:mm, "14.30 uur" in Dutch and "2:30 pm" in English.
func (f formatter) clock(hhmm string) string {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return hhmm
	}
	if f.locale == "en" {
		if t.Minute() == 0 {
			return t.Format("3 pm")
		}
		return t.Format("3:04 pm")
	}
	if t.Minute() == 0 {
		return fmt.Sprintf("%d uur", t.Hour())
	}
	return fmt.Sprintf("%d.%02d uur", t.Hour(), t.Minute())
}

// count spells small quantities as words.
func (f formatter) count(n int) string {
	words := nlNumbers[:]
	if f.locale == "en" {
		words = enNumbers[:]
	}
	if n >= 0 && n < len(words) {
		return words[n]
	}
	return f.printer.Sprintf("%d", n)
}

// list joins names as "a, b en c".
func (f formatter) list(names []string) string {
	and := " en "
	if f.locale == "en" {
		and = " and "
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + and + names[len(names)-1]
}

// line renders one order line, "twee grote friet met mayonaise".
func (f formatter) line(l models.OrderLine) string {
	with, without := "met", "zonder"
	if f.locale == "en" {
		with, without = "with", "without"
	}
	var b strings.Builder
	b.WriteString(f.count(l.Quantity))
	b.WriteByte(' ')
	b.WriteString(strings.ToLower(l.Name))

	var plus, minus []string
	for _, m := range l.Modifiers {
		if m.Without {
			minus = append(minus, strings.ToLower(m.Name))
		} else {
			plus = append(plus, strings.ToLower(m.Name))
		}
	}
	if len(plus) > 0 {
		b.WriteString(" " + with + " " + f.list(plus))
	}
	if len(minus) > 0 {
		b.WriteString(" " + without + " " + f.list(minus))
	}
	return b.String()
}

func (f formatter) items(lines []models.OrderLine) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, f.line(l))
	}
	return f.list(out)
}

func (f formatter) clocks(times []string) []string {
	out := make([]string, 0, len(times))
	for _, t := range times {
		out = append(out, f.clock(t))
	}
	return out
}

// either joins alternatives as "a of b".
func (f formatter) either(names []string) string {
	sep := " of "
	if f.locale == "en" {
		sep = " or "
	}
	if len(names) < 2 {
		return strings.Join(names, "")
	}
	return strings.Join(names[:len(names)-1], ", ") + sep + names[len(names)-1]
}
