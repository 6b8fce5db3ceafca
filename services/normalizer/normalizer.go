package normalizer

import (
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxPasses bounds the fixpoint loop; a valid dictionary converges in two.
const maxPasses = 8

type compiled struct {
	dict  *Dictionary
	rules []rule
}

// Normalizer cleans raw transcripts. The dictionary can be swapped at runtime
// without blocking concurrent calls.
type Normalizer struct {
	path    string
	current atomic.Pointer[compiled]
	logger  *zap.Logger
}

// New returns a Normalizer over an already-parsed dictionary.
func New(dict *Dictionary, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &Normalizer{logger: logger}
	n.swap(dict)
	return n
}

// Load builds a Normalizer from path, or from the embedded dictionary when path is empty.
func Load(path string, logger *zap.Logger) (*Normalizer, error) {
	dict, err := LoadDictionary(path)
	if err != nil {
		return nil, err
	}
	n := New(dict, logger)
	n.path = path
	return n, nil
}

func (n *Normalizer) swap(dict *Dictionary) {
	n.current.Store(&compiled{dict: dict, rules: dict.rules()})
}

// Reload re-reads the dictionary source. On error the active dictionary is kept.
func (n *Normalizer) Reload() (string, error) {
	dict, err := LoadDictionary(n.path)
	if err != nil {
		n.logger.Warn("dictionary reload rejected", zap.String("path", n.path), zap.Error(err))
		return "", fmt.Errorf("reload dictionary: %w", err)
	}
	n.swap(dict)
	n.logger.Info("dictionary reloaded",
		zap.String("version", dict.Version),
		zap.Int("corrections", len(dict.Corrections)),
	)
	return dict.Version, nil
}

// Dictionary returns the active dictionary.
func (n *Normalizer) Dictionary() *Dictionary {
	return n.current.Load().dict
}

// Synonyms returns the active canonical-name to alternatives table.
func (n *Normalizer) Synonyms() map[string][]string {
	return n.current.Load().dict.Synonyms
}

// Normalize lowercases, folds accents, strips punctuation that carries no
// meaning and applies the correction dictionary until nothing changes.
// Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(raw string) string {
	c := n.current.Load()
	tokens := strings.Fields(Clean(raw))
	for pass := 0; pass < maxPasses; pass++ {
		next, changed := applyRules(tokens, c.rules)
		tokens = next
		if !changed {
			break
		}
	}
	return strings.Join(tokens, " ")
}

func applyRules(tokens []string, rules []rule) ([]string, bool) {
	out := make([]string, 0, len(tokens))
	changed := false
	for i := 0; i < len(tokens); {
		matched := false
		for _, r := range rules {
			if hasPrefix(tokens[i:], r.from) {
				out = append(out, r.to...)
				i += len(r.from)
				matched, changed = true, true
				break
			}
		}
		if !matched {
			out = append(out, tokens[i])
			i++
		}
	}
	return out, changed
}

var folder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases s and removes diacritics.
func Fold(s string) string {
	out, _, err := transform.String(folder, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// Clean folds s, drops punctuation outside numbers and contractions and
// collapses whitespace.
func Clean(s string) string {
	rs := []rune(Fold(s))
	var b strings.Builder
	b.Grow(len(rs))
	for i, r := range rs {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case strings.ContainsRune(":.,-/", r) && between(rs, i, unicode.IsDigit):
			b.WriteRune(r)
		case (r == '\'' || r == '’') && between(rs, i, unicode.IsLetter):
			b.WriteRune('\'')
		case r == '+' && (i == 0 || unicode.IsSpace(rs[i-1])) && i+1 < len(rs) && unicode.IsDigit(rs[i+1]):
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func between(rs []rune, i int, is func(rune) bool) bool {
	return i > 0 && i+1 < len(rs) && is(rs[i-1]) && is(rs[i+1])
}
