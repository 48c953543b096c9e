// Package spell checks words against a word list plus a personal dictionary
// and ranks suggestions by edit distance.
package spell

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/rs/zerolog"

	"inkpad/internal/logging"
)

// DefaultMaxSuggestions caps the suggestion list.
const DefaultMaxSuggestions = 10

// maxDistance is the largest edit distance offered as a suggestion.
const maxDistance = 2

// Checker decides whether a word is known and proposes replacements.
type Checker interface {
	Check(word string) (known bool, suggestions []string)
}

// Dictionary is a Checker backed by a base word list and a personal word list.
type Dictionary struct {
	base     map[string]bool
	personal map[string]bool
	ignored  map[string]bool

	personalPath   string
	maxSuggestions int
	log            zerolog.Logger
}

// NewDictionary creates a dictionary from base words. personalPath may be
// empty, in which case Save is a no-op.
func NewDictionary(words []string, personalPath string, maxSuggestions int) *Dictionary {
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxSuggestions
	}
	d := &Dictionary{
		base:           make(map[string]bool, len(words)),
		personal:       map[string]bool{},
		ignored:        map[string]bool{},
		personalPath:   personalPath,
		maxSuggestions: maxSuggestions,
		log:            logging.Component("spell"),
	}
	for _, w := range words {
		if w = normalize(w); w != "" {
			d.base[w] = true
		}
	}
	return d
}

// Load reads the base word list at basePath and the personal dictionary at
// personalPath. A missing base list leaves the checker unavailable rather
// than failing; a missing personal dictionary starts empty.
func Load(basePath, personalPath string, maxSuggestions int) (*Dictionary, error) {
	var words []string
	if basePath != "" {
		w, err := readWords(basePath)
		switch {
		case os.IsNotExist(err):
			l := logging.Component("spell")
			l.Warn().Str("path", basePath).Msg("word list not found, spell check unavailable")
		case err != nil:
			return nil, fmt.Errorf("read word list: %w", err)
		default:
			words = w
		}
	}

	d := NewDictionary(words, personalPath, maxSuggestions)
	if personalPath == "" {
		return d, nil
	}
	personal, err := readWords(personalPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read personal dictionary: %w", err)
	}
	for _, w := range personal {
		if w = normalize(w); w != "" {
			d.personal[w] = true
		}
	}
	return d, nil
}

func readWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return scanWords(f)
}

func scanWords(r io.Reader) ([]string, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			words = append(words, w)
		}
	}
	return words, sc.Err()
}

func normalize(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}

// Available reports whether a base word list was loaded.
func (d *Dictionary) Available() bool { return len(d.base) > 0 }

// Known reports whether word is in any list or ignored for this session.
// Without a base list every word is known.
func (d *Dictionary) Known(word string) bool {
	w := normalize(word)
	if w == "" || !d.Available() {
		return true
	}
	return d.base[w] || d.personal[w] || d.ignored[w]
}

// Check implements Checker.
func (d *Dictionary) Check(word string) (bool, []string) {
	if d.Known(word) {
		return true, nil
	}
	return false, d.Suggest(word)
}

type candidate struct {
	word string
	dist int
}

// Suggest returns known words within a small edit distance of word, closest
// first and alphabetical within a distance.
func (d *Dictionary) Suggest(word string) []string {
	w := normalize(word)
	if w == "" {
		return nil
	}

	var cands []candidate
	consider := func(known string) {
		if known == w {
			return
		}
		if diff := utf8.RuneCountInString(known) - utf8.RuneCountInString(w); diff > maxDistance || diff < -maxDistance {
			return
		}
		if dist := levenshtein.ComputeDistance(w, known); dist <= maxDistance {
			cands = append(cands, candidate{word: known, dist: dist})
		}
	}
	for known := range d.base {
		consider(known)
	}
	for known := range d.personal {
		if !d.base[known] {
			consider(known)
		}
	}

	sort.Slice(cands, func(i, j int) bool {
		if cands[i].dist != cands[j].dist {
			return cands[i].dist < cands[j].dist
		}
		return cands[i].word < cands[j].word
	})
	if len(cands) > d.maxSuggestions {
		cands = cands[:d.maxSuggestions]
	}

	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.word
	}
	return out
}

// Add puts word in the personal dictionary. It reports false if already there.
func (d *Dictionary) Add(word string) bool {
	w := normalize(word)
	if w == "" || d.personal[w] {
		return false
	}
	d.personal[w] = true
	d.log.Info().Str("word", w).Msg("added word to personal dictionary")
	return true
}

// Remove deletes word from the personal dictionary.
func (d *Dictionary) Remove(word string) bool {
	w := normalize(word)
	if !d.personal[w] {
		return false
	}
	delete(d.personal, w)
	d.log.Info().Str("word", w).Msg("removed word from personal dictionary")
	return true
}

// Ignore accepts word until the process exits. Ignored words are not saved.
func (d *Dictionary) Ignore(word string) {
	if w := normalize(word); w != "" {
		d.ignored[w] = true
	}
}

// PersonalWords returns the personal dictionary, sorted.
func (d *Dictionary) PersonalWords() []string {
	out := make([]string, 0, len(d.personal))
	for w := range d.personal {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

// Save writes the personal dictionary, one word per line, atomically.
func (d *Dictionary) Save() error {
	if d.personalPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(d.personalPath), 0o755); err != nil {
		return err
	}

	var b strings.Builder
	for _, w := range d.PersonalWords() {
		b.WriteString(w)
		b.WriteByte('\n')
	}

	tmp := d.personalPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, d.personalPath)
}

// Misspelling is an unknown word at rune offsets [Start,End).
type Misspelling struct {
	Start int
	End   int
	Word  string
}

var wordPattern = regexp.MustCompile(`[A-Za-z]+`)

// Misspellings returns every word in text that c does not know.
func Misspellings(c Checker, text string) []Misspelling {
	known := func(w string) bool {
		ok, _ := c.Check(w)
		return ok
	}
	if k, ok := c.(interface{ Known(string) bool }); ok {
		known = k.Known
	}

	var out []Misspelling
	runeOff, byteOff := 0, 0
	for _, loc := range wordPattern.FindAllStringIndex(text, -1) {
		runeOff += utf8.RuneCountInString(text[byteOff:loc[0]])
		byteOff = loc[0]
		word := text[loc[0]:loc[1]]
		if !known(word) {
			out = append(out, Misspelling{Start: runeOff, End: runeOff + len(word), Word: word})
		}
	}
	return out
}
