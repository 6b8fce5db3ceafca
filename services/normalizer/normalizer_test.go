package normalizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefault(t *testing.T) *Normalizer {
	t.Helper()
	n, err := Load("", nil)
	require.NoError(t, err)
	return n
}

func TestNormalize(t *testing.T) {
	n := newDefault(t)

	cases := []struct {
		in, want string
	}{
		{"Twee grote FRIET met Mayo!", "twee grote friet met mayonaise"},
		{"  mayo   naise ", "mayonaise"},
		{"Crème brûlée, alstublieft.", "creme brulee alstublieft"},
		{"Om 14:30 graag", "om 14:30 graag"},
		{"half 3 p.m.", "half 3 pm"},
		{"Mijn nummer is +31 6-12345678", "mijn nummer is +31 6-12345678"},
		{"that's all, thanks", "that's all thanks"},
		{"Jep, klopt", "ja klopt"},
		{"kroket ten en frikandel len", "kroketten en frikandellen"},
		{"over morgen om 3 uur", "overmorgen om 3 uur"},
		{"", ""},
		{"?!", ""},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, n.Normalize(tc.in))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	n := newDefault(t)

	samples := []string{
		"Twee grote friet met mayo naise en een coca cola",
		"ik wil een knip beurt over morgen om half 3",
		"Yeah that's it, at 4 p m",
		"(+31) 020-1234567",
		"mayo mayo mayo",
	}
	for _, c := range n.Dictionary().Corrections {
		samples = append(samples, c.From, c.To, "ik wil "+c.From+" graag")
	}
	for _, s := range samples {
		once := n.Normalize(s)
		assert.Equal(t, once, n.Normalize(once), "input %q", s)
	}
}

func TestLongestPatternFirst(t *testing.T) {
	d, err := ParseDictionary([]byte(`
version: "t"
corrections:
  - from: mayo
    to: mayonaise
  - from: mayo naise
    to: mayonaise
`))
	require.NoError(t, err)
	n := New(d, nil)

	assert.Equal(t, "mayonaise", n.Normalize("mayo naise"))
	assert.Equal(t, "friet mayonaise", n.Normalize("friet mayo"))
}

func TestParseDictionaryRejectsSelfFeedingReplacement(t *testing.T) {
	_, err := ParseDictionary([]byte(`
corrections:
  - from: friet
    to: grote friet
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "contains pattern")

	_, err = ParseDictionary([]byte(`
corrections:
  - from: patat
    to: friet
  - from: frites
    to: patat speciaal
`))
	require.Error(t, err)
}

func TestParseDictionaryRejectsDuplicatesAndEmpty(t *testing.T) {
	_, err := ParseDictionary([]byte(`
corrections:
  - from: Mayo
    to: mayonaise
  - from: mayo
    to: mayonaise
`))
	assert.Error(t, err)

	_, err = ParseDictionary([]byte(`
corrections:
  - from: "!!"
    to: x
`))
	assert.Error(t, err)
}

func TestSynonymsAreCanonicalized(t *testing.T) {
	d, err := ParseDictionary([]byte(`
synonyms:
  Grote Friet: [Grote Patat, grote friet, ""]
`))
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{"grote friet": {"grote patat"}}, d.Synonyms)
}

func TestReloadSwapsDictionary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dict.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: \"1\"\ncorrections:\n  - from: patat\n    to: friet\n"), 0o600))

	n, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "friet", n.Normalize("patat"))

	require.NoError(t, os.WriteFile(path, []byte("version: \"2\"\ncorrections:\n  - from: frites\n    to: friet\n"), 0o600))
	version, err := n.Reload()
	require.NoError(t, err)
	assert.Equal(t, "2", version)
	assert.Equal(t, "patat", n.Normalize("patat"))
	assert.Equal(t, "friet", n.Normalize("frites"))

	require.NoError(t, os.WriteFile(path, []byte("corrections:\n  - from: a\n    to: a b\n"), 0o600))
	_, err = n.Reload()
	require.Error(t, err)
	assert.Equal(t, "2", n.Dictionary().Version, "a rejected reload keeps the active dictionary")
}

func TestFold(t *testing.T) {
	assert.Equal(t, "cafe creme", Fold("Café Crème"))
	assert.Equal(t, "tweeenhalf", Fold("TweeËnhalf"))
}

func TestClean(t *testing.T) {
	assert.Equal(t, "coca cola", Clean("Coca-Cola"))
	assert.Equal(t, "fish chips", Clean("Fish & Chips"))
	assert.Equal(t, "om 14:30", Clean("om 14:30!"))
	assert.Equal(t, "d'r", Clean("d'r"))
}
