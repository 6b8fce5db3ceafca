package normalizer

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed dictionary.yaml
var defaultDictionary []byte

// Dictionary is the versioned correction and synonym data.
type Dictionary struct {
	Version     string              `yaml:"version" json:"version"`
	Corrections []Correction        `yaml:"corrections" json:"corrections"`
	Synonyms    map[string][]string `yaml:"synonyms" json:"synonyms"`
}

// Correction rewrites a misheard phrase to its intended form.
type Correction struct {
	From string `yaml:"from" json:"from"`
	To   string `yaml:"to" json:"to"`
}

type rule struct {
	from []string
	to   []string
}

// DefaultDictionary parses the embedded dictionary.
func DefaultDictionary() (*Dictionary, error) {
	return ParseDictionary(defaultDictionary)
}

// LoadDictionary reads a dictionary file; an empty path yields the embedded default.
func LoadDictionary(path string) (*Dictionary, error) {
	if path == "" {
		return DefaultDictionary()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary %s: %w", path, err)
	}
	return ParseDictionary(data)
}

// ParseDictionary decodes YAML and canonicalizes every entry into the form
// Normalize produces, rejecting dictionaries that could never reach a fixpoint.
func ParseDictionary(data []byte) (*Dictionary, error) {
	var d Dictionary
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode dictionary: %w", err)
	}

	seen := make(map[string]bool, len(d.Corrections))
	for i, c := range d.Corrections {
		from, to := Clean(c.From), Clean(c.To)
		if from == "" {
			return nil, fmt.Errorf("correction %d: empty pattern", i)
		}
		if from == to {
			return nil, fmt.Errorf("correction %d: %q maps to itself", i, c.From)
		}
		if seen[from] {
			return nil, fmt.Errorf("correction %d: duplicate pattern %q", i, from)
		}
		seen[from] = true
		d.Corrections[i] = Correction{From: from, To: to}
	}

	for i, c := range d.Corrections {
		to := strings.Fields(c.To)
		for _, other := range d.Corrections {
			if containsPhrase(to, strings.Fields(other.From)) {
				return nil, fmt.Errorf("correction %d: replacement %q contains pattern %q", i, c.To, other.From)
			}
		}
	}

	syn := make(map[string][]string, len(d.Synonyms))
	for canonical, alts := range d.Synonyms {
		key := Clean(canonical)
		for _, a := range alts {
			if a = Clean(a); a != "" && a != key {
				syn[key] = append(syn[key], a)
			}
		}
	}
	d.Synonyms = syn
	return &d, nil
}

// rules returns the corrections as token rules, longest pattern first.
func (d *Dictionary) rules() []rule {
	out := make([]rule, 0, len(d.Corrections))
	for _, c := range d.Corrections {
		out = append(out, rule{from: strings.Fields(c.From), to: strings.Fields(c.To)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		li, lj := len(strings.Join(out[i].from, " ")), len(strings.Join(out[j].from, " "))
		if li != lj {
			return li > lj
		}
		return strings.Join(out[i].from, " ") < strings.Join(out[j].from, " ")
	})
	return out
}

func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		if hasPrefix(tokens[i:], phrase) {
			return true
		}
	}
	return false
}

func hasPrefix(tokens, phrase []string) bool {
	if len(phrase) > len(tokens) {
		return false
	}
	for i, p := range phrase {
		if tokens[i] != p {
			return false
		}
	}
	return true
}
