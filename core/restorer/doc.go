// Package restorer records the state of variables and descriptors before a
// command changes them so the changes can be undone afterward.
//
// A restorer remembers only the first state it sees for each key; later
// changes to the same key within its lifetime are undone to that original.
// Nothing is allocated until the first change, so commands without
// assignments or redirects cost nothing.
//
// The usual pattern is to defer Restore immediately after creation so it
// runs on every exit path, including context cancellation:
//
//	vars := &restorer.Vars{}
//	defer vars.Restore(env)
package restorer
