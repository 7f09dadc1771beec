// Package namespace models a snapshot of an interactive session: the names a
// user has defined, the builtins they can reach, and the attributes and call
// signatures of each object.
package namespace

import (
	"sort"
	"strings"
	"sync"
)

// Object kinds understood by the matchers
const (
	KindModule   = "module"
	KindClass    = "class"
	KindFunction = "function"
	KindMethod   = "method"
	KindBuiltin  = "builtin"
	KindInt      = "int"
	KindString   = "str"
	KindObject   = "object"
)

// Param is a named parameter of a callable. A nil Default means the
// parameter has no default value.
type Param struct {
	Name    string      `koanf:"name" json:"name" yaml:"name"`
	Default interface{} `koanf:"default" json:"default,omitempty" yaml:"default,omitempty"`
}

// HasDefault reports whether the parameter can be omitted
func (p Param) HasDefault() bool {
	return p.Default != nil
}

// Object is one named value of the namespace
type Object struct {
	Name       string   `koanf:"name" json:"name" yaml:"name"`
	Kind       string   `koanf:"kind" json:"kind,omitempty" yaml:"kind,omitempty"`
	Value      string   `koanf:"value" json:"value,omitempty" yaml:"value,omitempty"`
	Attributes []Object `koanf:"attributes" json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Params     []Param  `koanf:"params" json:"params,omitempty" yaml:"params,omitempty"`
	Doc        string   `koanf:"doc" json:"doc,omitempty" yaml:"doc,omitempty"`
	// All lists the public names of a module (its __all__). Nil means the
	// module does not declare one.
	All []string `koanf:"all" json:"all,omitempty" yaml:"all,omitempty"`
}

// Attribute returns the attribute called name
func (o *Object) Attribute(name string) (*Object, bool) {
	for i := range o.Attributes {
		if o.Attributes[i].Name == name {
			return &o.Attributes[i], true
		}
	}
	return nil, false
}

// AttributeNames returns the attribute names, sorted
func (o *Object) AttributeNames() []string {
	names := make([]string, 0, len(o.Attributes))
	for _, a := range o.Attributes {
		names = append(names, a.Name)
	}
	sort.Strings(names)
	return names
}

// Callable reports whether the object can be called
func (o *Object) Callable() bool {
	switch o.Kind {
	case KindClass, KindFunction, KindMethod, KindBuiltin:
		return true
	}
	_, ok := o.Attribute("__call__")
	return ok
}

// IsScalar reports whether the object is an int or a string, the values a
// shell line can interpolate.
func (o *Object) IsScalar() bool {
	return o.Kind == KindInt || o.Kind == KindString
}

// Namespace holds the user names (locals) and the builtins of a session.
// It is safe for concurrent use.
type Namespace struct {
	mu       sync.RWMutex
	locals   map[string]Object
	builtins map[string]Object
}

// New creates a namespace from locals and builtins
func New(locals, builtins []Object) *Namespace {
	ns := &Namespace{
		locals:   make(map[string]Object, len(locals)),
		builtins: make(map[string]Object, len(builtins)),
	}
	for _, o := range locals {
		ns.locals[o.Name] = o
	}
	for _, o := range builtins {
		ns.builtins[o.Name] = o
	}
	return ns
}

// Empty returns a namespace without any name
func Empty() *Namespace {
	return New(nil, nil)
}

// Set defines or replaces a local
func (ns *Namespace) Set(o Object) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.locals[o.Name] = o
}

// Delete removes a local
func (ns *Namespace) Delete(name string) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	delete(ns.locals, name)
}

// Locals returns the local names, sorted
func (ns *Namespace) Locals() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return sortedKeys(ns.locals)
}

// Builtins returns the builtin names, sorted
func (ns *Namespace) Builtins() []string {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return sortedKeys(ns.builtins)
}

// Get returns the object bound to name, looking at locals before builtins
func (ns *Namespace) Get(name string) (Object, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	if o, ok := ns.locals[name]; ok {
		return o, true
	}
	o, ok := ns.builtins[name]
	return o, ok
}

// Lookup resolves a dotted expression such as "os.path.join"
func (ns *Namespace) Lookup(expr string) (Object, bool) {
	parts := strings.Split(expr, ".")
	obj, ok := ns.Get(parts[0])
	if !ok {
		return Object{}, false
	}
	for _, part := range parts[1:] {
		attr, found := obj.Attribute(part)
		if !found {
			return Object{}, false
		}
		obj = *attr
	}
	return obj, true
}

// Len returns the number of locals and builtins
func (ns *Namespace) Len() int {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return len(ns.locals) + len(ns.builtins)
}

func sortedKeys(m map[string]Object) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
