package tokens

import (
	"errors"
	"strings"
	"unicode"
)

// ErrNoEnclosingCall is returned when no unclosed "(" precedes the cursor.
var ErrNoEnclosingCall = errors.New("no enclosing call")

// CallSite describes the innermost unclosed call before the cursor.
type CallSite struct {
	// Identifiers is the dotted name before the "(", in source order.
	// It is empty when the parenthesis is not preceded by a name.
	Identifiers []string
	// Tail holds the tokens from the unclosed "(" to the end of input.
	Tail []string
}

// Name joins the identifiers with dots.
func (c CallSite) Name() string {
	return strings.Join(c.Identifiers, ".")
}

// LastOpenCall scans tokens backward from the cursor (the end of the slice)
// for the nearest "(" that is not closed before the cursor, then collects
// the dotted identifier in front of it.
//
// For `foo(1+bar(x), pa` it returns Identifiers ["foo"] and a Tail starting
// at the "(" after foo.
func LastOpenCall(tokens []string) (CallSite, error) {
	open := -1
	depth := 0
	for i := len(tokens) - 1; i >= 0; i-- {
		switch tokens[i] {
		case ")":
			depth--
		case "(":
			depth++
		}
		if depth > 0 {
			open = i
			break
		}
	}
	if open < 0 {
		return CallSite{}, ErrNoEnclosingCall
	}

	var ids []string
	for j := open - 1; j >= 0; j-- {
		if !IsIdentifier(tokens[j]) {
			break
		}
		ids = append(ids, tokens[j])
		j--
		if j < 0 || tokens[j] != "." {
			break
		}
	}
	for l, r := 0, len(ids)-1; l < r; l, r = l+1, r-1 {
		ids[l], ids[r] = ids[r], ids[l]
	}

	return CallSite{
		Identifiers: ids,
		Tail:        append([]string(nil), tokens[open:]...),
	}, nil
}

// IsIdentifier reports whether tok is a non-empty run of letters, digits
// and underscores.
func IsIdentifier(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
