package extractor

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"phonedesk/models"
	"phonedesk/services/catalog"
)

var (
	quantityRe      = regexp.MustCompile(`^(\d{1,2})x?$`)
	multiplierWords = map[string]bool{"keer": true, "x": true, "times": true}
)

type termMatch struct {
	start, end int
	term       catalog.Term
}

// scanTerms matches terms longest first inside [lo, hi) and masks every hit,
// so a short name can never match inside a longer one already taken.
func scanTerms(t *tokens, terms []catalog.Term, lo, hi int) []termMatch {
	var out []termMatch
	for _, term := range terms {
		words := strings.Fields(term.Text)
		for i := lo; i+len(words) <= hi; i++ {
			if t.at(i, words) {
				t.consume(i, len(words))
				out = append(out, termMatch{start: i, end: i + len(words), term: term})
			}
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].start < out[b].start })
	return out
}

func quantityWord(w string) (int, bool) {
	if m := quantityRe.FindStringSubmatch(w); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n, n > 0
	}
	if n, ok := numberWords[w]; ok {
		return n, true
	}
	if n, ok := articleQuantities[w]; ok {
		return n, true
	}
	return 0, false
}

// quantityBefore reads the word preceding position i ("twee friet",
// "2 keer friet") and masks it. Default is one.
func quantityBefore(t *tokens, i int) int {
	j := i - 1
	if t.free(j) && multiplierWords[t.words[j]] {
		j--
	}
	if t.free(j) {
		if n, ok := quantityWord(t.words[j]); ok {
			t.consume(j, i-j)
			return n
		}
	}
	return 1
}

func confidenceOf(term catalog.Term) float64 {
	if term.Synonym {
		return catalog.MatchSynonym.Confidence()
	}
	return catalog.MatchExact.Confidence()
}

// parseItems extracts order lines in utterance order. Fragments naming no
// catalog item are returned separately so the caller can be asked again.
func parseItems(t *tokens, snap *catalog.Snapshot, expectItems bool) ([]models.Entity, []string) {
	matches := scanTerms(t, snap.ProductTerms(), 0, len(t.words))

	qty := make([]int, len(matches))
	for k, m := range matches {
		qty[k] = quantityBefore(t, m.start)
	}

	var (
		items     []models.Entity
		unmatched []string
		spans     [][2]int
	)
	for k, m := range matches {
		hi := len(t.words)
		if k+1 < len(matches) {
			hi = matches[k+1].start
		}
		mods, missed := parseModifiers(t, snap, m.end, hi)
		unmatched = append(unmatched, missed...)
		items = append(items, models.Entity{
			Kind:       models.EntityItem,
			Value:      m.term.Entry.Name,
			Ref:        m.term.Entry.ID,
			Quantity:   qty[k],
			Price:      m.term.Entry.Price,
			Modifiers:  mods,
			Confidence: confidenceOf(m.term),
		})
		spans = append(spans, [2]int{m.start, hi})
	}

	more, missed := leftoverItems(t, snap, spans, expectItems)
	items = append(items, more...)
	unmatched = append(unmatched, missed...)
	return items, unmatched
}

// parseModifiers reads options in the words following an item.
func parseModifiers(t *tokens, snap *catalog.Snapshot, lo, hi int) ([]models.Modifier, []string) {
	type placed struct {
		pos int
		mod models.Modifier
	}
	var (
		found  []placed
		missed []string
	)

	for _, m := range scanTerms(t, snap.ModifierTerms(), lo, hi) {
		without := negated(t, lo, m.start)
		mod := models.Modifier{ID: m.term.Entry.ID, Name: m.term.Entry.Name, Price: m.term.Entry.Price, Without: without}
		if without {
			mod.Price = 0
		}
		found = append(found, placed{pos: m.start, mod: mod})
	}

	// "met X" / "zonder X" where X is not a listed option as spoken
	for i := lo; i < hi; i++ {
		w := t.words[i]
		if !t.free(i) || (!withWords[w] && !withoutWords[w]) {
			continue
		}
		j := i + 1
		for j < hi && t.free(j) && !isConnector(t.words[j]) {
			j++
		}
		t.consume(i, 1)
		if j == i+1 {
			continue
		}
		phrase := strings.Join(t.words[i+1:j], " ")
		t.consume(i+1, j-i-1)
		entry, kind := snap.ResolveModifier(phrase)
		switch {
		case withoutWords[w]:
			mod := models.Modifier{Name: phrase, Without: true}
			if kind != catalog.MatchNone {
				mod.ID, mod.Name = entry.ID, entry.Name
			}
			found = append(found, placed{pos: i, mod: mod})
		case kind != catalog.MatchNone:
			found = append(found, placed{pos: i, mod: models.Modifier{ID: entry.ID, Name: entry.Name, Price: entry.Price}})
		default:
			missed = append(missed, phrase)
		}
		i = j - 1
	}

	// connectors between options ("met mayo en curry") are spent
	for i := lo; i < hi; i++ {
		if t.free(i) && (withWords[t.words[i]] || withoutWords[t.words[i]]) {
			t.consume(i, 1)
		}
	}

	sort.SliceStable(found, func(a, b int) bool { return found[a].pos < found[b].pos })
	mods := make([]models.Modifier, 0, len(found))
	for _, f := range found {
		mods = append(mods, f.mod)
	}
	if len(mods) == 0 {
		mods = nil
	}
	return mods, missed
}

func isConnector(w string) bool {
	return segmentBreaks[w] || withWords[w] || withoutWords[w]
}

// negated reports whether the nearest with/without word before pos is a "without".
func negated(t *tokens, lo, pos int) bool {
	for i := pos - 1; i >= lo; i-- {
		switch w := t.words[i]; {
		case withoutWords[w]:
			return true
		case withWords[w]:
			return false
		}
	}
	return false
}

// leftoverItems looks at word groups that matched no item name. A group is
// considered an attempted item if it starts with a quantity or if items are
// being asked for; it is then resolved by substring or reported.
func leftoverItems(t *tokens, snap *catalog.Snapshot, spans [][2]int, expectItems bool) ([]models.Entity, []string) {
	var (
		items     []models.Entity
		unmatched []string
	)
	flush := func(lo, hi int) {
		for _, s := range spans {
			if lo < s[1] && s[0] < hi {
				return
			}
		}
		q, hasQty := 1, false
		var content []string
		for i := lo; i < hi; i++ {
			if !t.free(i) {
				continue
			}
			w := t.words[i]
			if n, ok := quantityWord(w); ok && len(content) == 0 {
				q, hasQty = n, true
				if _, article := articleQuantities[w]; article || w == "een" {
					hasQty = false
				}
				continue
			}
			if fillers[w] {
				continue
			}
			content = append(content, w)
		}
		if len(content) == 0 || (!hasQty && !expectItems) {
			return
		}
		t.consume(lo, hi-lo)
		phrase := strings.Join(content, " ")
		entry, kind := snap.ResolveProduct(phrase)
		if kind == catalog.MatchNone {
			unmatched = append(unmatched, phrase)
			return
		}
		items = append(items, models.Entity{
			Kind:       models.EntityItem,
			Value:      entry.Name,
			Ref:        entry.ID,
			Quantity:   q,
			Price:      entry.Price,
			Confidence: kind.Confidence(),
		})
	}

	lo := 0
	for i, w := range t.words {
		if segmentBreaks[w] {
			flush(lo, i)
			lo = i + 1
		}
	}
	flush(lo, len(t.words))
	return items, unmatched
}

// parseService finds one bookable service.
func parseService(t *tokens, snap *catalog.Snapshot, expectService bool) (models.Entity, []string, bool) {
	if matches := scanTerms(t, snap.ProductTerms(), 0, len(t.words)); len(matches) > 0 {
		m := matches[0]
		return models.Entity{
			Kind:       models.EntityService,
			Value:      m.term.Entry.Name,
			Ref:        m.term.Entry.ID,
			Price:      m.term.Entry.Price,
			Confidence: confidenceOf(m.term),
		}, nil, true
	}
	if !expectService {
		return models.Entity{}, nil, false
	}
	rest := t.freeWords(true)
	if len(rest) == 0 {
		return models.Entity{}, nil, false
	}
	phrase := strings.Join(rest, " ")
	entry, kind := snap.ResolveProduct(phrase)
	if kind == catalog.MatchNone {
		return models.Entity{}, []string{phrase}, false
	}
	t.consume(0, len(t.words))
	return models.Entity{
		Kind:       models.EntityService,
		Value:      entry.Name,
		Ref:        entry.ID,
		Price:      entry.Price,
		Confidence: kind.Confidence(),
	}, nil, true
}
