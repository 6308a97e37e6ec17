// Package eval expands words and applies the assignments and redirects
// around a command.
//
// Evaluation is strictly left to right against the live environment, so
// each assignment observes the ones before it:
//
//	var1=foo var2=${var1:-bar} cmd
//
// runs cmd with var2 set to foo. Every change goes through a restorer so it
// can be undone once the command finishes.
package eval
