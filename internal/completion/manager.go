package completion

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/NikitaCOEUR/compleat/internal/derrors"
	"github.com/NikitaCOEUR/compleat/internal/logger"
	"github.com/NikitaCOEUR/compleat/internal/splitter"
	"github.com/NikitaCOEUR/compleat/internal/timing"
	"github.com/NikitaCOEUR/compleat/internal/tokens"
	"github.com/NikitaCOEUR/compleat/internal/trace"
)

// Registration is a registry entry as seen by status output
type Registration struct {
	Matcher   Matcher
	Name      string
	Exclusive bool
}

type registration struct {
	matcher   Matcher
	exclusive bool
}

// Manager owns the ordered matcher registry and runs completion requests.
//
// Exclusive matchers always come before non-exclusive ones; within each
// group matchers keep their registration order. Matchers run one after the
// other in that order, and the first exclusive matcher returning candidates
// ends the request with its result alone.
//
// Registry changes are serialized with Complete: a request works on a
// snapshot of the registry taken when it starts.
type Manager struct {
	mu       sync.RWMutex
	registry []registration
	greedy   bool
	splitter *splitter.Splitter

	tokenize tokens.Tokenizer
	log      *logger.Logger
	reporter FailureReporter
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger used for failures and debug timings
func WithLogger(log *logger.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// WithFailureReporter forwards matcher failures to r
func WithFailureReporter(r FailureReporter) Option {
	return func(m *Manager) {
		m.reporter = r
	}
}

// WithRequestTokenizer replaces the tokenizer handed to requests
func WithRequestTokenizer(t tokens.Tokenizer) Option {
	return func(m *Manager) {
		if t != nil {
			m.tokenize = t
		}
	}
}

// WithGreedy starts the manager with the greedy delimiter profile
func WithGreedy(greedy bool) Option {
	return func(m *Manager) {
		m.greedy = greedy
		m.splitter.Configure(splitter.Profile(greedy))
	}
}

// NewManager creates a manager with an empty registry
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		splitter: splitter.New(),
		tokenize: tokens.Tokenize,
		log:      logger.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Register adds a matcher. Exclusive matchers are placed after the other
// exclusive ones and before every non-exclusive one; the rest are appended.
//
// The registry finds matchers again by identity, so a matcher must be
// comparable with ==. Pointers always are; value types holding slices, maps
// or funcs are rejected with a contract error.
func (m *Manager) Register(matcher Matcher) error {
	if isNil(matcher) {
		return derrors.NewContractError("register", "matcher is nil")
	}
	if !identifiable(matcher) {
		return derrors.NewContractError("register",
			fmt.Sprintf("matcher %s of type %T is not comparable, register a pointer", NameOf(matcher), matcher))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(matcher) >= 0 {
		name := NameOf(matcher)
		return derrors.NewAlreadyExistsError(name, fmt.Sprintf("matcher %s is already registered", name))
	}
	m.insert(registration{matcher: matcher, exclusive: matcher.Exclusive()})

	m.log.Debug().
		Str("matcher", NameOf(matcher)).
		Bool("exclusive", matcher.Exclusive()).
		Int("registered", len(m.registry)).
		Msg("Registered matcher")
	return nil
}

// RegisterAny registers v if it implements Matcher. It exists for providers
// loaded at runtime, whose type the host cannot check at compile time.
func (m *Manager) RegisterAny(v interface{}) error {
	matcher, ok := v.(Matcher)
	if !ok {
		return derrors.NewContractError("register", fmt.Sprintf("%T does not implement Matcher", v))
	}
	return m.Register(matcher)
}

// Unregister removes a matcher
func (m *Manager) Unregister(matcher Matcher) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(matcher)
	if i < 0 {
		return derrors.NewNotRegisteredError(nameOrNil(matcher))
	}
	m.registry = append(m.registry[:i], m.registry[i+1:]...)
	return nil
}

// NotifyExclusivityChanged re-reads the exclusive flag of a registered
// matcher and moves it to the position the flag calls for.
func (m *Manager) NotifyExclusivityChanged(matcher Matcher) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(matcher)
	if i < 0 {
		return derrors.NewNotRegisteredError(nameOrNil(matcher))
	}
	m.registry = append(m.registry[:i], m.registry[i+1:]...)
	m.insert(registration{matcher: matcher, exclusive: matcher.Exclusive()})

	m.log.Debug().
		Str("matcher", NameOf(matcher)).
		Bool("exclusive", matcher.Exclusive()).
		Msg("Matcher exclusivity changed")
	return nil
}

// Matchers returns the registry in dispatch order
func (m *Manager) Matchers() []Registration {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Registration, len(m.registry))
	for i, r := range m.registry {
		out[i] = Registration{Matcher: r.matcher, Name: NameOf(r.matcher), Exclusive: r.exclusive}
	}
	return out
}

// SetGreedy switches between the greedy and standard delimiter profiles.
// The change applies from the next request on.
func (m *Manager) SetGreedy(greedy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.greedy = greedy
	m.splitter.Configure(splitter.Profile(greedy))
}

// Greedy reports whether the greedy profile is active
func (m *Manager) Greedy() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.greedy
}

// SetDelimiters installs a custom delimiter set. A custom set is neither
// profile, so Greedy reports false until the next SetGreedy.
func (m *Manager) SetDelimiters(delims splitter.DelimiterSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.greedy = false
	m.splitter.Configure(delims)
}

// Complete recommends completions for block with the cursor at its end.
func (m *Manager) Complete(ctx context.Context, block string) (CompletionSet, error) {
	return m.complete(ctx, block)
}

// CompleteAt recommends completions for block with the cursor at position
// cursor (in characters). A cursor outside the block is a contract error.
func (m *Manager) CompleteAt(ctx context.Context, block string, cursor int) (CompletionSet, error) {
	return m.complete(ctx, block, WithCursor(cursor))
}

func (m *Manager) complete(ctx context.Context, block string, extra ...RequestOption) (CompletionSet, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	defer trace.Region(ctx, "completion.Complete")()

	m.mu.RLock()
	entries := append([]registration(nil), m.registry...)
	opts := []RequestOption{
		WithProfile(m.greedy),
		WithDelimiters(m.splitter.Delimiters()),
		WithTokenizer(m.tokenize),
	}
	m.mu.RUnlock()

	req, err := NewRequest(ctx, block, append(opts, extra...)...)
	if err != nil {
		return nil, err
	}

	log := m.log.With("request", req.ID())
	log.Debug().
		Str("word", req.CurrentWord()).
		Int("fragments", req.NumFragments()).
		Int("matchers", len(entries)).
		Msg("Received completion request")

	timer := timing.NewTimer()
	acc := make(map[string]Candidates)
	winner := ""

	for _, entry := range entries {
		name := NameOf(entry.matcher)
		result, err := m.invoke(req, entry.matcher, name)
		took := timer.Lap(name)

		if err != nil {
			log.Warn().Str("matcher", name).Dur("took_ms", took).Err(err).Msg("Matcher failed")
			if m.reporter != nil {
				m.reporter.ReportFailure(req, name, err)
			}
			continue
		}
		if result == nil {
			continue
		}

		if entry.exclusive && !result.Empty() {
			acc = make(map[string]Candidates, len(result))
			merge(acc, result)
			winner = name
			break
		}
		merge(acc, result)
	}

	set := newCompletionSet(acc)
	log.Debug().
		Str("exclusive", winner).
		Int("candidates", set.Len()).
		Str("timings", timer.Summary()).
		Msg("Completed request")
	return set, nil
}

// invoke runs one matcher, turning a returned error or a panic into a
// MatcherError.
func (m *Manager) invoke(req *Request, matcher Matcher, name string) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, derrors.NewMatcherPanic(name, r)
		}
	}()

	trace.WithRegion(req.Context(), "matcher."+name, func() {
		result, err = matcher.Match(req)
	})
	if err != nil {
		return nil, derrors.NewMatcherError(name, err)
	}
	return result, nil
}

func merge(acc map[string]Candidates, result Result) {
	for kind, candidates := range result {
		if len(candidates) == 0 {
			continue
		}
		set, ok := acc[kind]
		if !ok {
			set = make(Candidates, len(candidates))
			acc[kind] = set
		}
		for c := range candidates {
			set[c] = struct{}{}
		}
	}
}

// insert must be called with mu held
func (m *Manager) insert(r registration) {
	if !r.exclusive {
		m.registry = append(m.registry, r)
		return
	}
	i := 0
	for i < len(m.registry) && m.registry[i].exclusive {
		i++
	}
	m.registry = append(m.registry, registration{})
	copy(m.registry[i+1:], m.registry[i:])
	m.registry[i] = r
}

// indexOf must be called with mu held. A matcher that is not identifiable
// cannot have been registered.
func (m *Manager) indexOf(matcher Matcher) int {
	if isNil(matcher) || !identifiable(matcher) {
		return -1
	}
	for i, r := range m.registry {
		if reflect.TypeOf(r.matcher) == reflect.TypeOf(matcher) && r.matcher == matcher {
			return i
		}
	}
	return -1
}

// identifiable reports whether == on matcher can't panic, checking the
// dynamic values held in interface fields too.
func identifiable(matcher Matcher) bool {
	return reflect.ValueOf(matcher).Comparable()
}

func isNil(matcher Matcher) bool {
	if matcher == nil {
		return true
	}
	v := reflect.ValueOf(matcher)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func nameOrNil(matcher Matcher) string {
	if isNil(matcher) {
		return "<nil>"
	}
	return NameOf(matcher)
}
