// Package completion dispatches a completion request to pluggable matchers
// and merges what they propose into one sorted, duplicate-free answer.
package completion

import (
	"fmt"
	"sort"
	"strings"
	"sync/atomic"
)

// Matcher proposes completions for a request.
//
// Match returns nil when the matcher has no opinion, an empty Result when it
// has an opinion but nothing matches, or a populated Result. A returned error
// or a panic counts as a failure of this matcher only.
type Matcher interface {
	Match(req *Request) (Result, error)
	// Exclusive reports whether a non-empty result from this matcher should
	// replace every other result. Changes after registration must be
	// reported with Manager.NotifyExclusivityChanged.
	Exclusive() bool
}

// Named is implemented by matchers that want a stable name in logs and
// status output. Other matchers are named after their type.
type Named interface {
	Name() string
}

// NameOf returns the display name of a matcher
func NameOf(m Matcher) string {
	if n, ok := m.(Named); ok {
		return n.Name()
	}
	name := fmt.Sprintf("%T", m)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "Matcher")
}

// Exclusivity is embedded by matchers whose exclusive flag can be flipped at
// runtime.
type Exclusivity struct {
	flag atomic.Bool
}

// Exclusive reports the current flag
func (e *Exclusivity) Exclusive() bool {
	return e.flag.Load()
}

// SetExclusive changes the flag. The owner of the manager must then call
// NotifyExclusivityChanged.
func (e *Exclusivity) SetExclusive(exclusive bool) {
	e.flag.Store(exclusive)
}

// Candidates is a set of completion strings
type Candidates map[string]struct{}

// NewCandidates creates a set holding values
func NewCandidates(values ...string) Candidates {
	c := make(Candidates, len(values))
	c.Add(values...)
	return c
}

// Add inserts values into the set
func (c Candidates) Add(values ...string) {
	for _, v := range values {
		c[v] = struct{}{}
	}
}

// Has reports whether value is in the set
func (c Candidates) Has(value string) bool {
	_, ok := c[value]
	return ok
}

// Sorted returns the candidates in lexicographic order
func (c Candidates) Sorted() []string {
	out := make([]string, 0, len(c))
	for v := range c {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Result maps a kind ("files", "attributes", ...) to its candidates.
// A nil Result means "no opinion".
type Result map[string]Candidates

// NewResult returns an empty, non-nil result
func NewResult() Result {
	return make(Result)
}

// Add inserts values under kind, creating the kind if needed
func (r Result) Add(kind string, values ...string) Result {
	set, ok := r[kind]
	if !ok {
		set = make(Candidates, len(values))
		r[kind] = set
	}
	set.Add(values...)
	return r
}

// Len returns the number of candidates across every kind
func (r Result) Len() int {
	n := 0
	for _, set := range r {
		n += len(set)
	}
	return n
}

// Empty reports whether the result holds no candidate at all
func (r Result) Empty() bool {
	return r.Len() == 0
}

// Func adapts a function to the Matcher interface.
type Func struct {
	Exclusivity
	name string
	fn   func(req *Request) (Result, error)
}

// NewFunc creates a named matcher from fn
func NewFunc(name string, exclusive bool, fn func(req *Request) (Result, error)) *Func {
	f := &Func{name: name, fn: fn}
	f.SetExclusive(exclusive)
	return f
}

// Name returns the name given at construction
func (f *Func) Name() string { return f.name }

// Match calls the wrapped function
func (f *Func) Match(req *Request) (Result, error) { return f.fn(req) }

// FailureReporter receives matcher failures. It is the observability sink of
// the manager; failures never reach the caller of Complete.
type FailureReporter interface {
	ReportFailure(req *Request, matcher string, err error)
}

// FailureReporterFunc adapts a function to FailureReporter
type FailureReporterFunc func(req *Request, matcher string, err error)

// ReportFailure calls f
func (f FailureReporterFunc) ReportFailure(req *Request, matcher string, err error) {
	f(req, matcher, err)
}
