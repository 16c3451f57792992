package corpus

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// BlankChar is emitted by MostSimilar when the store has no entries.
const BlankChar = ' '

// Entry is one reference glyph: its fingerprint and the character it depicts.
type Entry struct {
	Fingerprint string `json:"fingerprint"`
	Char        rune   `json:"char"`
}

// Store maps glyph fingerprints to characters. It is read-only after
// construction and safe for concurrent use.
type Store struct {
	glyphHeight int
	index       map[string]rune
	// entries is ordered by Char, then Fingerprint; MostSimilar depends on it.
	entries []Entry
}

// New builds a Store from entries. Later entries replace earlier ones with the
// same fingerprint. glyphHeight records the raster height the fingerprints were
// taken at; zero means unknown.
//
// Returns a *LoadError if entries is empty or any entry is invalid.
func New(glyphHeight int, entries []Entry) (*Store, error) {
	const source = "entries"

	if glyphHeight < 0 {
		return nil, loadError(source, fmt.Errorf("negative glyph height %d", glyphHeight))
	}
	if len(entries) == 0 {
		return nil, loadError(source, ErrNoEntries)
	}

	index := make(map[string]rune, len(entries))
	for i, e := range entries {
		if err := validateFingerprint(e.Fingerprint); err != nil {
			return nil, loadError(source, fmt.Errorf("entry %d: %w", i, err))
		}
		if !utf8.ValidRune(e.Char) {
			return nil, loadError(source, fmt.Errorf("entry %d: %w", i, ErrInvalidCharacter))
		}
		index[e.Fingerprint] = e.Char
	}

	return newStore(glyphHeight, index), nil
}

func newStore(glyphHeight int, index map[string]rune) *Store {
	entries := make([]Entry, 0, len(index))
	for fp, ch := range index {
		entries = append(entries, Entry{Fingerprint: fp, Char: ch})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Char != entries[j].Char {
			return entries[i].Char < entries[j].Char
		}
		return entries[i].Fingerprint < entries[j].Fingerprint
	})

	return &Store{
		glyphHeight: glyphHeight,
		index:       index,
		entries:     entries,
	}
}

// Lookup returns the character whose fingerprint equals fingerprint exactly.
func (s *Store) Lookup(fingerprint string) (rune, bool) {
	ch, ok := s.index[fingerprint]
	return ch, ok
}

// MostSimilar scores every entry against fingerprint and returns the character
// of the best one along with its score. Ties keep the first candidate in scan
// order, which is the smallest character. An empty store yields BlankChar.
func (s *Store) MostSimilar(fingerprint string) (rune, float64) {
	best := rune(BlankChar)
	bestMatches := -1

	for _, e := range s.entries {
		matches := matchCount(fingerprint, e.Fingerprint)
		if matches > bestMatches {
			bestMatches = matches
			best = e.Char
		}
	}

	if bestMatches < 0 || len(fingerprint) == 0 {
		return best, 0
	}
	return best, float64(bestMatches) / float64(len(fingerprint))
}

// Len returns the number of distinct fingerprints.
func (s *Store) Len() int {
	return len(s.entries)
}

// GlyphHeight returns the raster height recorded in the dataset, or 0.
func (s *Store) GlyphHeight() int {
	return s.glyphHeight
}

// Entries returns a copy of all entries in scan order.
func (s *Store) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Characters returns the distinct characters known to the store, sorted.
func (s *Store) Characters() []rune {
	chars := make([]rune, 0)
	for _, e := range s.entries {
		if n := len(chars); n == 0 || chars[n-1] != e.Char {
			chars = append(chars, e.Char)
		}
	}
	return chars
}

// Similarity is the positional match ratio between a fingerprint and a
// reference key: matching positions over the paired prefix, divided by the
// length of fingerprint. Keys shorter than fingerprint can therefore never
// reach 1.0.
func Similarity(fingerprint, key string) float64 {
	if len(fingerprint) == 0 {
		return 0
	}
	return float64(matchCount(fingerprint, key)) / float64(len(fingerprint))
}

func matchCount(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	matches := 0
	for i := 0; i < n; i++ {
		if a[i] == b[i] {
			matches++
		}
	}
	return matches
}

func validateFingerprint(fp string) error {
	if fp == "" {
		return fmt.Errorf("%w: empty", ErrInvalidFingerprint)
	}
	for i := 0; i < len(fp); i++ {
		if fp[i] != '0' && fp[i] != '1' {
			return fmt.Errorf("%w: byte %q at offset %d", ErrInvalidFingerprint, fp[i], i)
		}
	}
	return nil
}
