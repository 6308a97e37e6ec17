// Package logger builds the structured logger shell sessions report
// diagnostics to.
package logger
