package commands

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/josephlewis42/vsh/core/vos"
)

var simpleEscapes = map[byte]byte{
	'a':  '\a', // alert
	'b':  '\b', // backspace
	'e':  0x1b, // escape
	'E':  0x1b,
	'f':  '\f', // form feed
	'n':  '\n', // newline
	'r':  '\r', // carriage return
	't':  '\t', // horizontal tab
	'v':  '\v', // vertical tab
	'\\': '\\', // backslash literal
}

// unescape interprets backslash escapes. \c produces nothing but sets
// noNewline so the trailing newline is dropped.
func unescape(s string) (out string, noNewline bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}

		i++
		if c, ok := simpleEscapes[s[i]]; ok {
			b.WriteByte(c)
			continue
		}

		switch s[i] {
		case 'c':
			noNewline = true
		case '0':
			c, digits := parseByte(s[i+1:], 8, 3)
			if digits == 0 {
				b.WriteString(`\0`)
				continue
			}
			b.WriteByte(c)
			i += digits
		case 'x':
			c, digits := parseByte(s[i+1:], 16, 2)
			if digits == 0 {
				b.WriteString(`\x`)
				continue
			}
			b.WriteByte(c)
			i += digits
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String(), noNewline
}

// parseByte parses the longest prefix of at most maxDigits digits of s that fits
// in a byte, so \0400 is a space followed by 0.
func parseByte(s string, base, maxDigits int) (c byte, digits int) {
	if len(s) < maxDigits {
		maxDigits = len(s)
	}
	for n := maxDigits; n > 0; n-- {
		if v, err := strconv.ParseUint(s[:n], base, 8); err == nil {
			return byte(v), n
		}
	}
	return 0, 0
}

// isEchoOption reports whether word is a cluster of echo flags like -ne.
func isEchoOption(word string) bool {
	return len(word) > 1 && word[0] == '-' && strings.Trim(word[1:], "neE") == ""
}

// RunEcho writes its arguments separated by spaces. Options are only
// recognized before the first word that isn't one, so `echo -x` prints -x.
func RunEcho(ctx context.Context, env vos.IOEnv, args []string) int {
	newline, escapes := true, false

	words := args[1:]
	for len(words) > 0 && isEchoOption(words[0]) {
		for _, flag := range words[0][1:] {
			switch flag {
			case 'n':
				newline = false
			case 'e':
				escapes = true
			case 'E':
				escapes = false
			}
		}
		words = words[1:]
	}

	var b strings.Builder
	for i, word := range words {
		if i > 0 {
			b.WriteByte(' ')
		}

		if !escapes {
			b.WriteString(word)
			continue
		}

		out, noNewline := unescape(word)
		b.WriteString(out)
		if noNewline {
			newline = false
		}
	}

	if newline {
		b.WriteByte('\n')
	}

	// A closed stdout isn't echo's failure.
	_, _ = io.WriteString(vos.Stdout(ctx, env), b.String())
	return vos.ExitSuccess
}
