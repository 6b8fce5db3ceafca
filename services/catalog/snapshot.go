package catalog

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"phonedesk/models"
	"phonedesk/services/normalizer"
)

// MatchKind records how a name was resolved.
type MatchKind int

const (
	MatchNone MatchKind = iota
	MatchSubstring
	MatchSynonym
	MatchExact
)

// Confidence is the advisory score reported for a match kind.
func (k MatchKind) Confidence() float64 {
	switch k {
	case MatchExact:
		return 1.0
	case MatchSynonym:
		return 0.9
	case MatchSubstring:
		return 0.7
	}
	return 0
}

// Term is one matchable surface form of a catalog entry.
type Term struct {
	Text    string // cleaned
	Entry   models.CatalogEntry
	Synonym bool
}

// Snapshot is an immutable view of one business's catalog.
type Snapshot struct {
	Business  models.Business
	Entries   []models.CatalogEntry
	LoadedAt  time.Time
	products  []Term
	modifiers []Term
}

// NewSnapshot indexes entries for matching. Names go through the same
// cleaning as utterances; extra synonyms are keyed by the cleaned canonical name.
func NewSnapshot(b models.Business, entries []models.CatalogEntry, extra map[string][]string, loadedAt time.Time) *Snapshot {
	s := &Snapshot{Business: b, Entries: entries, LoadedAt: loadedAt}
	for _, e := range entries {
		terms := termsFor(e, extra)
		if e.IsModifier {
			s.modifiers = append(s.modifiers, terms...)
		} else {
			s.products = append(s.products, terms...)
		}
	}
	sortLongestFirst(s.products)
	sortLongestFirst(s.modifiers)
	return s
}

func termsFor(e models.CatalogEntry, extra map[string][]string) []Term {
	name := normalizer.Clean(e.Name)
	var terms []Term
	seen := map[string]bool{}
	add := func(text string, synonym bool) {
		if text == "" || seen[text] {
			return
		}
		seen[text] = true
		terms = append(terms, Term{Text: text, Entry: e, Synonym: synonym})
	}
	for _, spelled := range spellings(e.Name) {
		add(spelled, false)
	}
	alts := append(append([]string{}, e.Synonyms...), extra[name]...)
	for _, alt := range alts {
		for _, spelled := range spellings(alt) {
			add(spelled, true)
		}
	}
	return terms
}

// spellings returns the forms a written name can be heard in: "Fish & Chips"
// is said "fish and chips" or "fish en chips".
func spellings(written string) []string {
	out := []string{normalizer.Clean(written)}
	if strings.Contains(written, "&") {
		for _, and := range []string{" and ", " en "} {
			out = append(out, normalizer.Clean(strings.ReplaceAll(written, "&", and)))
		}
	}
	return out
}

func sortLongestFirst(terms []Term) {
	sort.SliceStable(terms, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(terms[i].Text), utf8.RuneCountInString(terms[j].Text)
		if li != lj {
			return li > lj
		}
		return terms[i].Text < terms[j].Text
	})
}

// ProductTerms returns sellable items (or bookable services) longest first.
func (s *Snapshot) ProductTerms() []Term { return s.products }

// ModifierTerms returns item options longest first.
func (s *Snapshot) ModifierTerms() []Term { return s.modifiers }

// Entry looks an entry up by id.
func (s *Snapshot) Entry(id string) (models.CatalogEntry, bool) {
	for _, e := range s.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return models.CatalogEntry{}, false
}

// ResolveProduct resolves a spoken name to a sellable item or service.
func (s *Snapshot) ResolveProduct(name string) (models.CatalogEntry, MatchKind) {
	return resolve(s.products, name)
}

// ResolveModifier resolves a spoken name to an item option.
func (s *Snapshot) ResolveModifier(name string) (models.CatalogEntry, MatchKind) {
	return resolve(s.modifiers, name)
}

// resolve tries exact, then synonym, then substring containment in either
// direction; among substring hits the longest term wins.
func resolve(terms []Term, name string) (models.CatalogEntry, MatchKind) {
	name = normalizer.Clean(name)
	if name == "" {
		return models.CatalogEntry{}, MatchNone
	}
	for _, t := range terms {
		if !t.Synonym && t.Text == name {
			return t.Entry, MatchExact
		}
	}
	for _, t := range terms {
		if t.Synonym && t.Text == name {
			return t.Entry, MatchSynonym
		}
	}
	// terms are sorted longest first, so the first containment hit is the longest
	for _, t := range terms {
		if containsWord(name, t.Text) || containsWord(t.Text, name) {
			return t.Entry, MatchSubstring
		}
	}
	return models.CatalogEntry{}, MatchNone
}

// containsWord reports whether needle occurs in haystack on word boundaries.
func containsWord(haystack, needle string) bool {
	return strings.Contains(" "+haystack+" ", " "+needle+" ")
}
