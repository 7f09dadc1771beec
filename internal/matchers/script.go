package matchers

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/NikitaCOEUR/compleat/internal/completion"
	"github.com/NikitaCOEUR/compleat/internal/derrors"
)

// ScriptMatcher runs a user matcher written in Lua.
//
// The script defines a global function match(req) returning either nil or a
// table mapping each kind to a list of candidates. It may set the globals
// name and exclusive. req exposes text, line, word, lines, fragments and a
// tokens() function.
//
// Only the base, table, string and math libraries are available.
type ScriptMatcher struct {
	completion.Exclusivity
	name   string
	source string

	mu sync.Mutex
	L  *lua.LState
}

// LoadScript compiles the script at path
func LoadScript(path string) (*ScriptMatcher, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return newScript(name, path, func(L *lua.LState) error { return L.DoFile(path) })
}

// NewScript compiles a script from its source
func NewScript(name, source string) (*ScriptMatcher, error) {
	return newScript(name, name, func(L *lua.LState) error { return L.DoString(source) })
}

func newScript(name, source string, load func(L *lua.LState) error) (*ScriptMatcher, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	if err := load(L); err != nil {
		L.Close()
		return nil, derrors.NewScriptError(source, "failed to load script", err)
	}
	if fn := L.GetGlobal("match"); fn.Type() != lua.LTFunction {
		L.Close()
		return nil, derrors.NewScriptError(source, "script does not define a match function", nil)
	}

	s := &ScriptMatcher{name: name, source: source, L: L}
	if n, ok := L.GetGlobal("name").(lua.LString); ok && n != "" {
		s.name = string(n)
	}
	s.SetExclusive(lua.LVAsBool(L.GetGlobal("exclusive")))
	return s, nil
}

// openSafeLibraries opens the libraries a completion script may use and
// removes every way to load more code.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Name identifies the matcher in logs
func (s *ScriptMatcher) Name() string { return s.name }

// Source returns the file or name the script was loaded from
func (s *ScriptMatcher) Source() string { return s.source }

// Match calls the script's match function
func (s *ScriptMatcher) Match(req *completion.Request) (completion.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	L := s.L
	L.SetContext(req.Context())
	defer L.RemoveContext()

	err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("match"),
		NRet:    1,
		Protect: true,
	}, s.requestTable(req))
	if err != nil {
		return nil, derrors.NewScriptError(s.source, "match failed", err)
	}
	ret := L.Get(-1)
	L.Pop(1)

	result, err := toResult(ret)
	if err != nil {
		return nil, derrors.NewScriptError(s.source, "invalid match result", err)
	}
	return result, nil
}

// Close releases the Lua state
func (s *ScriptMatcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.L.Close()
}

func (s *ScriptMatcher) requestTable(req *completion.Request) *lua.LTable {
	L := s.L
	t := L.NewTable()
	t.RawSetString("text", lua.LString(req.Text()))
	t.RawSetString("line", lua.LString(req.CurrentLine()))
	t.RawSetString("word", lua.LString(req.CurrentWord()))
	t.RawSetString("greedy", lua.LBool(req.Greedy()))
	t.RawSetString("lines", stringList(L, req.Lines()))
	t.RawSetString("fragments", stringList(L, req.Fragments()))
	t.RawSetString("tokens", L.NewFunction(func(L *lua.LState) int {
		L.Push(stringList(L, req.Tokens()))
		return 1
	}))
	return t
}

func stringList(L *lua.LState, values []string) *lua.LTable {
	t := L.CreateTable(len(values), 0)
	for _, v := range values {
		t.Append(lua.LString(v))
	}
	return t
}

// toResult converts the value returned by match. Candidates may be given
// as a list ({"a", "b"}) or as a set ({a = true}).
func toResult(v lua.LValue) (completion.Result, error) {
	if v == lua.LNil {
		return nil, nil
	}
	kinds, ok := v.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("match must return a table or nil, got %s", v.Type())
	}

	result := completion.NewResult()
	var convErr error
	kinds.ForEach(func(k, candidates lua.LValue) {
		if convErr != nil {
			return
		}
		kind, ok := k.(lua.LString)
		if !ok {
			convErr = fmt.Errorf("kind must be a string, got %s", k.Type())
			return
		}
		list, ok := candidates.(*lua.LTable)
		if !ok {
			convErr = fmt.Errorf("candidates of %q must be a table, got %s", string(kind), candidates.Type())
			return
		}
		result.Add(string(kind))
		list.ForEach(func(key, value lua.LValue) {
			if key.Type() == lua.LTNumber {
				result.Add(string(kind), value.String())
			} else if lua.LVAsBool(value) {
				result.Add(string(kind), key.String())
			}
		})
	})
	if convErr != nil {
		return nil, convErr
	}
	return result, nil
}
