// Package tokens turns input text into lexical tokens and locates the call
// expression surrounding the cursor.
//
// The lexer follows Python's lexical rules closely enough for completion:
// string literals and multi-character operators stay whole, comments and
// whitespace are dropped. It never fails; input it cannot finish lexing (an
// unterminated string) ends the token stream at the last complete token.
package tokens

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer produces tokens for a request. Implementations must be total,
// deterministic and ordered.
type Tokenizer func(text string) []string

// operators longest first; anything else is a single-character token
var operators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"!=", "==", "<=", ">=", "<>", "**", "//", "<<", ">>", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
}

var stringPrefixes = map[string]bool{
	"r": true, "u": true, "b": true, "f": true,
	"br": true, "rb": true, "fr": true, "rf": true,
}

// Tokenize splits text into tokens.
//
//	Tokenize(`a + b = ["cdefg" + 10]`) == [a + b = [ "cdefg" + 10 ]]
func Tokenize(text string) []string {
	lx := &lexer{src: text}
	lx.run()
	return lx.tokens
}

type lexer struct {
	src    string
	pos    int
	tokens []string
}

func (l *lexer) peek(offset int) rune {
	i := l.pos
	for ; offset > 0 && i < len(l.src); offset-- {
		_, w := utf8.DecodeRuneInString(l.src[i:])
		i += w
	}
	if i >= len(l.src) {
		return utf8.RuneError
	}
	r, _ := utf8.DecodeRuneInString(l.src[i:])
	return r
}

func (l *lexer) emit(start int) {
	l.tokens = append(l.tokens, l.src[start:l.pos])
}

func (l *lexer) run() {
	l.tokens = []string{}
	for l.pos < len(l.src) {
		r, w := utf8.DecodeRuneInString(l.src[l.pos:])
		switch {
		case r == '\\' && l.peek(1) == '\n':
			l.pos += w + 1
		case unicode.IsSpace(r):
			l.pos += w
		case r == '#':
			l.skipComment()
		case isIdentStart(r):
			if !l.identifierOrString() {
				return
			}
		case isDigit(r) || (r == '.' && isDigit(l.peek(1))):
			l.number()
		case r == '"' || r == '\'':
			if !l.str(l.pos) {
				return
			}
		default:
			l.operator()
		}
	}
}

func (l *lexer) skipComment() {
	if i := strings.IndexByte(l.src[l.pos:], '\n'); i >= 0 {
		l.pos += i
		return
	}
	l.pos = len(l.src)
}

// identifierOrString lexes a name, or a prefixed string literal such as
// rb'...'. It reports false when the literal is unterminated.
func (l *lexer) identifierOrString() bool {
	start := l.pos
	for l.pos < len(l.src) {
		r, w := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += w
	}
	if q := l.peek(0); (q == '"' || q == '\'') && stringPrefixes[strings.ToLower(l.src[start:l.pos])] {
		return l.str(start)
	}
	l.emit(start)
	return true
}

func (l *lexer) number() {
	start := l.pos
	hex := strings.HasPrefix(strings.ToLower(l.src[l.pos:]), "0x")
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isDigit(rune(c)) || isASCIILetter(c) || c == '_' || c == '.':
			l.pos++
		case (c == '+' || c == '-') && !hex && l.pos > start && (l.src[l.pos-1] == 'e' || l.src[l.pos-1] == 'E'):
			l.pos++
		default:
			l.emit(start)
			return
		}
	}
	l.emit(start)
}

// str lexes a string literal whose opening quote is at l.pos and whose
// token starts at start (before any prefix).
func (l *lexer) str(start int) bool {
	quote := l.src[l.pos]
	delim := string(quote)
	if strings.HasPrefix(l.src[l.pos:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
	}
	l.pos += len(delim)

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\\':
			l.pos += 2
		case c == '\n' && len(delim) == 1:
			return false
		case strings.HasPrefix(l.src[l.pos:], delim):
			l.pos += len(delim)
			l.emit(start)
			return true
		default:
			l.pos++
		}
	}
	return false
}

func (l *lexer) operator() {
	start := l.pos
	for _, op := range operators {
		if strings.HasPrefix(l.src[l.pos:], op) {
			l.pos += len(op)
			l.emit(start)
			return
		}
	}
	_, w := utf8.DecodeRuneInString(l.src[l.pos:])
	l.pos += w
	l.emit(start)
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
