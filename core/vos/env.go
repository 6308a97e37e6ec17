package vos

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// CopyEnv sets every "key=value" entry of environ in dst as an exported
// variable.
func CopyEnv(dst VarEnv, environ []string) {
	for _, e := range environ {
		key, value := splitEnv(e)
		dst.SetVar(key, Var{Value: value, Exported: true})
	}
}

func splitEnv(e string) (key, value string) {
	split := strings.SplitN(e, "=", 2)
	key = split[0]
	if len(split) > 1 {
		value = split[1]
	}
	return key, value
}

// Getenv returns the value of the variable, which will be empty if the
// variable is not present.
func Getenv(env VarEnv, key string) string {
	v, _ := env.LookupVar(key)
	return v.Value
}

// NewMapEnv creates a new environment backed by a map.
func NewMapEnv() *MapEnv {
	return &MapEnv{}
}

// NewMapEnvFromEnvList creates an environment with every entry of environ
// exported.
func NewMapEnvFromEnvList(environ []string) *MapEnv {
	out := &MapEnv{}
	CopyEnv(out, environ)
	return out
}

// MapEnv implements an in-memory variable table.
type MapEnv struct {
	rw   sync.RWMutex
	vars map[string]Var
}

var _ VarEnv = (*MapEnv)(nil)
var _ VarLister = (*MapEnv)(nil)

// LookupVar implements VarEnv.LookupVar.
func (m *MapEnv) LookupVar(name string) (Var, bool) {
	m.rw.RLock()
	defer m.rw.RUnlock()

	v, ok := m.vars[name]
	return v, ok
}

// SetVar implements VarEnv.SetVar.
func (m *MapEnv) SetVar(name string, v Var) {
	m.rw.Lock()
	defer m.rw.Unlock()

	if m.vars == nil {
		m.vars = make(map[string]Var)
	}
	m.vars[name] = v
}

// UnsetVar implements VarEnv.UnsetVar.
func (m *MapEnv) UnsetVar(name string) {
	m.rw.Lock()
	defer m.rw.Unlock()
	delete(m.vars, name)
}

// EachVar implements VarLister.EachVar. Variables are visited in name order.
func (m *MapEnv) EachVar(fn func(name string, v Var) bool) {
	m.rw.RLock()
	names := m.sortedNames()
	snapshot := make([]Var, len(names))
	for i, name := range names {
		snapshot[i] = m.vars[name]
	}
	m.rw.RUnlock()

	for i, name := range names {
		if !fn(name, snapshot[i]) {
			return
		}
	}
}

// Environ implements VarLister.Environ.
func (m *MapEnv) Environ() []string {
	var env []string
	m.EachVar(func(name string, v Var) bool {
		if v.Exported {
			env = append(env, fmt.Sprintf("%s=%s", name, v.Value))
		}
		return true
	})
	return env
}

// Clone returns an independent copy of the table.
func (m *MapEnv) Clone() *MapEnv {
	m.rw.RLock()
	defer m.rw.RUnlock()

	out := &MapEnv{vars: make(map[string]Var, len(m.vars))}
	for k, v := range m.vars {
		out.vars[k] = v
	}
	return out
}

func (m *MapEnv) sortedNames() []string {
	names := make([]string, 0, len(m.vars))
	for name := range m.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
