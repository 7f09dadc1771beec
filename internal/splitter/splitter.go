// Package splitter breaks interactive input into the fragments a completion
// request works on, the way readline splits a line on its word delimiters.
package splitter

import (
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// StandardChars are the delimiters used by default. Dots split too, so
	// "os.pa" completes "pa".
	StandardChars = " \t\n`!@#$^&*()=+[{]}\\|;:'\",<>?."
	// GreedyChars only split on whitespace and assignment, so attribute
	// accesses and call arguments stay inside the current word.
	GreedyChars = " =\r\n"
)

var (
	// Standard is the default delimiter profile
	Standard = NewDelimiterSet(StandardChars)
	// Greedy is the delimiter profile selected by the greedy toggle
	Greedy = NewDelimiterSet(GreedyChars)
)

// Profile returns the delimiter set selected by the greedy toggle.
func Profile(greedy bool) DelimiterSet {
	if greedy {
		return Greedy
	}
	return Standard
}

// DelimiterSet is an ordered set of delimiter characters. Each character
// matches on its own; there are no multi-character delimiters.
type DelimiterSet struct {
	chars []rune
	ascii [utf8.RuneSelf]bool
	other map[rune]struct{}
}

// NewDelimiterSet builds a set from the characters of chars, keeping the
// first occurrence of each.
func NewDelimiterSet(chars string) DelimiterSet {
	var d DelimiterSet
	for _, r := range chars {
		if d.Contains(r) {
			continue
		}
		d.chars = append(d.chars, r)
		if r < utf8.RuneSelf {
			d.ascii[r] = true
			continue
		}
		if d.other == nil {
			d.other = make(map[rune]struct{})
		}
		d.other[r] = struct{}{}
	}
	return d
}

// Contains reports whether r is a delimiter
func (d DelimiterSet) Contains(r rune) bool {
	if r >= 0 && r < utf8.RuneSelf {
		return d.ascii[r]
	}
	_, ok := d.other[r]
	return ok
}

// Len returns the number of delimiters
func (d DelimiterSet) Len() int {
	return len(d.chars)
}

// String returns the delimiters in insertion order
func (d DelimiterSet) String() string {
	return string(d.chars)
}

// Without returns a copy of the set minus the characters of chars
func (d DelimiterSet) Without(chars string) DelimiterSet {
	var b strings.Builder
	for _, r := range d.chars {
		if !strings.ContainsRune(chars, r) {
			b.WriteRune(r)
		}
	}
	return NewDelimiterSet(b.String())
}

// Splitter splits text on its active delimiter set. Configure and Split may
// be called from different goroutines; a Split observes either the old or
// the new set, never a mix.
type Splitter struct {
	mu     sync.RWMutex
	delims DelimiterSet
}

// New creates a splitter using the standard profile
func New() *Splitter {
	return NewWithDelimiters(Standard)
}

// NewWithDelimiters creates a splitter using delims
func NewWithDelimiters(delims DelimiterSet) *Splitter {
	return &Splitter{delims: delims}
}

// Configure replaces the active delimiter set. Fragments already produced
// are not affected.
func (s *Splitter) Configure(delims DelimiterSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delims = delims
}

// Delimiters returns the active delimiter set
func (s *Splitter) Delimiters() DelimiterSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.delims
}

// Split partitions text at every maximal run of delimiters and returns the
// non-empty fragments in order. When text ends with a delimiter an empty
// fragment is appended, so "cd " yields ["cd", ""] while "cd" yields ["cd"].
// Empty text yields no fragments.
func (s *Splitter) Split(text string) []string {
	return Split(text, s.Delimiters())
}

// Split is the stateless form of Splitter.Split.
func Split(text string, delims DelimiterSet) []string {
	fragments := []string{}
	start := -1
	trailing := false

	for i, r := range text {
		if delims.Contains(r) {
			if start >= 0 {
				fragments = append(fragments, text[start:i])
				start = -1
			}
			trailing = true
			continue
		}
		if start < 0 {
			start = i
		}
		trailing = false
	}

	if start >= 0 {
		fragments = append(fragments, text[start:])
	}
	if trailing {
		fragments = append(fragments, "")
	}
	return fragments
}

// Join rejoins fragments with the first delimiter of delims.
func Join(fragments []string, delims DelimiterSet) string {
	if delims.Len() == 0 {
		return strings.Join(fragments, "")
	}
	return strings.Join(fragments, string(delims.chars[0]))
}
