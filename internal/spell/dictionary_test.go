package spell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var words = []string{"hello", "help", "held", "world", "word", "cat", "cart", "hallo", "Paris"}

func TestCheck(t *testing.T) {
	d := NewDictionary(words, "", 0)

	tests := []struct {
		word  string
		known bool
	}{
		{"hello", true},
		{"HELLO", true},
		{"paris", true},
		{"helo", false},
		{"zzzz", false},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			known, suggestions := d.Check(tt.word)
			assert.Equal(t, tt.known, known)
			if known {
				assert.Nil(t, suggestions)
			}
		})
	}
}

func TestSuggest_RankedByDistanceThenAlphabet(t *testing.T) {
	d := NewDictionary(words, "", 0)

	assert.Equal(t, []string{"held", "hello", "help", "hallo"}, d.Suggest("helo"))
	assert.Empty(t, d.Suggest("zzzzzz"))
}

func TestSuggest_Capped(t *testing.T) {
	d := NewDictionary(words, "", 2)
	assert.Len(t, d.Suggest("helo"), 2)
}

func TestUnavailableDictionaryKnowsEverything(t *testing.T) {
	d := NewDictionary(nil, "", 0)
	assert.False(t, d.Available())
	known, _ := d.Check("qwxz")
	assert.True(t, known)
}

func TestPersonalDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "personal_dict.txt")
	d := NewDictionary(words, path, 0)

	assert.True(t, d.Add("Gopher"))
	assert.False(t, d.Add("gopher"))
	assert.True(t, d.Add("inkpad"))
	assert.True(t, d.Known("GOPHER"))
	assert.Contains(t, d.Suggest("gophr"), "gopher")

	require.NoError(t, d.Save())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "gopher\ninkpad\n", string(data))

	assert.True(t, d.Remove("inkpad"))
	assert.False(t, d.Remove("inkpad"))
	assert.Equal(t, []string{"gopher"}, d.PersonalWords())
}

func TestIgnore_IsNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personal.txt")
	d := NewDictionary(words, path, 0)
	d.Ignore("teh")
	assert.True(t, d.Known("teh"))

	require.NoError(t, d.Save())
	reloaded, err := Load("", path, 0)
	require.NoError(t, err)
	assert.Empty(t, reloaded.PersonalWords())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "words")
	personal := filepath.Join(dir, "personal.txt")
	require.NoError(t, os.WriteFile(base, []byte("alpha\nBeta\n\n  gamma  \n"), 0o644))
	require.NoError(t, os.WriteFile(personal, []byte("Zeta\n"), 0o644))

	d, err := Load(base, personal, 5)
	require.NoError(t, err)
	assert.True(t, d.Available())
	assert.True(t, d.Known("beta"))
	assert.True(t, d.Known("gamma"))
	assert.True(t, d.Known("zeta"))

	missing, err := Load(filepath.Join(dir, "nope"), filepath.Join(dir, "nope2"), 5)
	require.NoError(t, err)
	assert.False(t, missing.Available())
}

func TestMisspellings(t *testing.T) {
	d := NewDictionary(words, "", 0)
	text := "héllo world, helo wrld 42 cat"

	got := Misspellings(d, text)
	require.Len(t, got, 4)
	// "héllo" splits on the accented rune into "h" and "llo"
	assert.Equal(t, Misspelling{Start: 0, End: 1, Word: "h"}, got[0])
	assert.Equal(t, Misspelling{Start: 2, End: 5, Word: "llo"}, got[1])
	assert.Equal(t, Misspelling{Start: 13, End: 17, Word: "helo"}, got[2])
	assert.Equal(t, Misspelling{Start: 18, End: 22, Word: "wrld"}, got[3])
}

type stubChecker map[string]bool

func (s stubChecker) Check(word string) (bool, []string) { return s[word], nil }

func TestMisspellings_AnyChecker(t *testing.T) {
	got := Misspellings(stubChecker{"fine": true}, "fine wrong")
	require.Len(t, got, 1)
	assert.Equal(t, "wrong", got[0].Word)
	assert.Equal(t, 5, got[0].Start)
}
