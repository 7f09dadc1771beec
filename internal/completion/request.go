package completion

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/NikitaCOEUR/compleat/internal/derrors"
	"github.com/NikitaCOEUR/compleat/internal/splitter"
	"github.com/NikitaCOEUR/compleat/internal/tokens"
)

// Request is the immutable snapshot of one completion call. It is the only
// place where the cursor is resolved: matchers read the current word from
// here instead of splitting the input themselves.
type Request struct {
	ctx       context.Context
	id        string
	text      string
	lines     []string
	fragments []string
	greedy    bool
	delims    splitter.DelimiterSet

	tokenize tokens.Tokenizer
	once     sync.Once
	tokens   []string
}

type requestConfig struct {
	cursor    int
	hasCursor bool
	delims    splitter.DelimiterSet
	greedy    bool
	tokenize  tokens.Tokenizer
}

// RequestOption customizes NewRequest
type RequestOption func(*requestConfig)

// WithCursor truncates the block at cursor, counted in characters.
func WithCursor(cursor int) RequestOption {
	return func(c *requestConfig) {
		c.cursor = cursor
		c.hasCursor = true
	}
}

// WithProfile selects the greedy or standard delimiter profile
func WithProfile(greedy bool) RequestOption {
	return func(c *requestConfig) {
		c.greedy = greedy
		c.delims = splitter.Profile(greedy)
	}
}

// WithDelimiters overrides the delimiter set
func WithDelimiters(delims splitter.DelimiterSet) RequestOption {
	return func(c *requestConfig) {
		c.delims = delims
	}
}

// WithTokenizer overrides the tokenizer used by Request.Tokens
func WithTokenizer(t tokens.Tokenizer) RequestOption {
	return func(c *requestConfig) {
		c.tokenize = t
	}
}

// NewRequest builds a request for block. A cursor outside [0, len(block)]
// is a contract violation.
func NewRequest(ctx context.Context, block string, opts ...RequestOption) (*Request, error) {
	cfg := requestConfig{
		delims:   splitter.Standard,
		tokenize: tokens.Tokenize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	text := block
	if cfg.hasCursor {
		var err error
		if text, err = truncate(block, cfg.cursor); err != nil {
			return nil, err
		}
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return &Request{
		ctx:       ctx,
		id:        uuid.NewString(),
		text:      text,
		lines:     lines,
		fragments: splitter.Split(text, cfg.delims),
		greedy:    cfg.greedy,
		delims:    cfg.delims,
		tokenize:  cfg.tokenize,
	}, nil
}

func truncate(block string, cursor int) (string, error) {
	n := utf8.RuneCountInString(block)
	if cursor < 0 || cursor > n {
		return "", derrors.NewContractError("complete", fmt.Sprintf("cursor position %d outside [0, %d]", cursor, n))
	}
	if cursor == n {
		return block, nil
	}
	i := 0
	for pos := range block {
		if i == cursor {
			return block[:pos], nil
		}
		i++
	}
	return block, nil
}

// Context returns the context of the call that created the request
func (r *Request) Context() context.Context { return r.ctx }

// ID identifies the request in logs
func (r *Request) ID() string { return r.id }

// Text returns the input up to the cursor
func (r *Request) Text() string { return r.text }

// Lines returns Text split on line boundaries
func (r *Request) Lines() []string { return append([]string(nil), r.lines...) }

// CurrentLine returns the last line of Text
func (r *Request) CurrentLine() string { return r.lines[len(r.lines)-1] }

// Fragments returns Text split on the active delimiters. A trailing empty
// fragment means the cursor sits right after a delimiter.
func (r *Request) Fragments() []string { return append([]string(nil), r.fragments...) }

// Fragment returns the i-th fragment, or "" when there is none
func (r *Request) Fragment(i int) string {
	if i < 0 || i >= len(r.fragments) {
		return ""
	}
	return r.fragments[i]
}

// LineFragments splits only the current line with the request delimiters.
// Matchers that look at the first word of a command use it so earlier lines
// of a cell do not interfere.
func (r *Request) LineFragments() []string {
	return splitter.Split(r.CurrentLine(), r.delims)
}

// NumFragments returns the number of fragments
func (r *Request) NumFragments() int { return len(r.fragments) }

// CurrentWord returns the fragment under the cursor, possibly empty
func (r *Request) CurrentWord() string {
	if len(r.fragments) == 0 {
		return ""
	}
	return r.fragments[len(r.fragments)-1]
}

// Delimiters returns the delimiter set the request was split with
func (r *Request) Delimiters() splitter.DelimiterSet { return r.delims }

// Greedy reports whether the greedy profile was active for this request
func (r *Request) Greedy() bool { return r.greedy }

// Tokens returns the lexical tokens of Text. They are computed on first use
// and shared by every matcher of the request.
func (r *Request) Tokens() []string {
	r.once.Do(func() {
		r.tokens = r.tokenize(r.text)
	})
	return append([]string(nil), r.tokens...)
}
