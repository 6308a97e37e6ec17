// Package spawn turns parsed shell statements into running units of work.
//
// Every command runs against a vos.Env. Changes a command makes for its own
// duration, like redirects and prefix assignments, are recorded in restorers
// and unwound on every exit path. Subshells and pipeline members run on
// forked environments so they never share mutable state with the caller.
package spawn
