package extractor

import (
	"strings"
	"time"

	"phonedesk/models"
	"phonedesk/services/catalog"
)

// Context tells the extractor what the conversation is waiting for.
type Context struct {
	Now     time.Time // current time in the business's timezone
	Flow    models.FlowKind
	Locale  string
	Expect  string // field being asked for, e.g. "time" or "items"
	YesNo   bool   // a yes/no answer is being asked for
	Catalog *catalog.Snapshot
}

var (
	yesNoList      = yesNoPhrases()
	cancelList     = phrases(cancelPhrases)
	rescheduleList = phrases(reschedulePhrases)
	doneList       = phrases(donePhrases)
)

type yesNo struct {
	words []string
	yes   bool
}

func yesNoPhrases() []yesNo {
	var out []yesNo
	for _, p := range phrases(yesPhrases) {
		out = append(out, yesNo{words: p, yes: true})
	}
	for _, p := range phrases(noPhrases) {
		out = append(out, yesNo{words: p})
	}
	// longest first across both lists, so "klopt niet" beats "klopt"
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(strings.Join(out[j].words, " ")) > len(strings.Join(out[j-1].words, " ")); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// detectYesNo matches the whole utterance, or its first words when a yes/no
// answer is expected.
func detectYesNo(t *tokens, allowPrefix bool) (bool, bool) {
	for _, p := range yesNoList {
		if len(p.words) == len(t.words) && t.at(0, p.words) {
			return p.yes, true
		}
	}
	if !allowPrefix {
		return false, false
	}
	for _, p := range yesNoList {
		if t.at(0, p.words) {
			return p.yes, true
		}
	}
	return false, false
}

// Extract turns normalized text into entities and an intent. It never fails:
// text it does not understand yields IntentUnclear.
func Extract(clean string, c Context) models.Extraction {
	if c.Now.IsZero() {
		c.Now = time.Now()
	}
	t := newTokens(clean)
	if len(t.words) == 0 {
		return models.Extraction{Intent: models.IntentUnclear}
	}

	if yes, ok := detectYesNo(t, c.YesNo); ok {
		intent, value := models.IntentNo, "no"
		if yes {
			intent, value = models.IntentYes, "yes"
		}
		return models.Extraction{
			Intent:     intent,
			Entities:   []models.Entity{{Kind: models.EntityYesNo, Value: value, Confidence: 1}},
			Confidence: 1,
		}
	}
	if i, _ := t.firstPhrase(cancelList); i >= 0 {
		return models.Extraction{Intent: models.IntentCancel, Confidence: 1}
	}
	if i, _ := t.firstPhrase(rescheduleList); i >= 0 {
		return models.Extraction{Intent: models.IntentReschedule, Confidence: 1}
	}

	done := false
	if i, p := t.firstPhrase(doneList); i >= 0 {
		t.consume(i, len(p))
		done = true
	}

	var (
		ents      []models.Entity
		unmatched []string
	)
	add := func(e models.Entity, ok bool) {
		if ok {
			ents = append(ents, e)
		}
	}

	add(parseDate(t, c.Now))
	add(parseTime(t, c.Expect == "time", c.Locale == "en"))
	add(parsePhone(t))
	add(parseFulfillment(t))
	add(parseAddress(t, false))
	add(parseNameIntro(t))

	if c.Catalog != nil {
		switch c.Flow {
		case models.FlowOrder:
			items, missed := parseItems(t, c.Catalog, c.Expect == "items")
			ents = append(ents, items...)
			unmatched = append(unmatched, missed...)
		case models.FlowAppointment:
			svc, missed, ok := parseService(t, c.Catalog, c.Expect == "service")
			add(svc, ok)
			unmatched = append(unmatched, missed...)
		}
	}

	if len(ents) == 0 && len(unmatched) == 0 {
		switch c.Expect {
		case "name":
			add(parseNameFallback(t))
		case "address":
			add(parseAddress(t, true))
		}
	}

	x := models.Extraction{Entities: ents, Unmatched: unmatched}
	switch {
	case done:
		x.Intent = models.IntentDone
	case len(ents) > 0 || len(unmatched) > 0:
		x.Intent = models.IntentProvide
	default:
		x.Intent = models.IntentUnclear
	}
	x.Confidence = overallConfidence(ents, done)
	return x
}

// overallConfidence is the weakest entity score; advisory only.
func overallConfidence(ents []models.Entity, done bool) float64 {
	if len(ents) == 0 {
		if done {
			return 1
		}
		return 0
	}
	min := 1.0
	for _, e := range ents {
		if e.Confidence < min {
			min = e.Confidence
		}
	}
	return min
}
