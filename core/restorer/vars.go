package restorer

import "github.com/josephlewis42/vsh/core/vos"

// VarRestorer records variable changes so they can be undone.
type VarRestorer interface {
	// SetVar records the original state of name then sets it.
	SetVar(env vos.VarEnv, name string, v vos.Var)

	// UnsetVar records the original state of name then unsets it.
	UnsetVar(env vos.VarEnv, name string)

	// Backup records the current state of name without changing it.
	Backup(env vos.VarEnv, name string)

	// Clear forgets every record, keeping the changes.
	Clear()

	// Restore puts every recorded variable back the way it was and forgets
	// the records.
	Restore(env vos.VarEnv)
}

// Vars is the default VarRestorer. The zero value is ready to use.
type Vars struct {
	// originals maps names to their state before the first change, nil
	// means the variable didn't exist.
	originals map[string]*vos.Var
}

var _ VarRestorer = (*Vars)(nil)

// SetVar implements VarRestorer.SetVar.
func (r *Vars) SetVar(env vos.VarEnv, name string, v vos.Var) {
	r.Backup(env, name)
	env.SetVar(name, v)
}

// UnsetVar implements VarRestorer.UnsetVar.
func (r *Vars) UnsetVar(env vos.VarEnv, name string) {
	r.Backup(env, name)
	env.UnsetVar(name)
}

// Backup implements VarRestorer.Backup.
func (r *Vars) Backup(env vos.VarEnv, name string) {
	if r.originals == nil {
		r.originals = make(map[string]*vos.Var)
	}
	if _, ok := r.originals[name]; ok {
		return
	}

	if v, ok := env.LookupVar(name); ok {
		r.originals[name] = &v
	} else {
		r.originals[name] = nil
	}
}

// Clear implements VarRestorer.Clear.
func (r *Vars) Clear() {
	r.originals = nil
}

// Restore implements VarRestorer.Restore.
func (r *Vars) Restore(env vos.VarEnv) {
	for name, orig := range r.originals {
		if orig == nil {
			env.UnsetVar(name)
		} else {
			env.SetVar(name, *orig)
		}
	}
	r.originals = nil
}

// Len returns the number of recorded variables.
func (r *Vars) Len() int {
	return len(r.originals)
}

// Allocated reports whether the restorer has allocated its records.
func (r *Vars) Allocated() bool {
	return r.originals != nil
}
