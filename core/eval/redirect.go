package eval

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/josephlewis42/vsh/core/fdio"
	"github.com/josephlewis42/vsh/core/restorer"
	"mvdan.cc/sh/v3/syntax"
)

// Redirect resolves rd into the actions that perform it. Targets are opened
// immediately; if the actions are never applied their handles must be
// closed by the caller.
func Redirect(ctx context.Context, env Env, cfg *Config, rd *syntax.Redirect) ([]restorer.Action, error) {
	fd, err := redirectFd(rd)
	if err != nil {
		return nil, err
	}

	switch rd.Op {
	case syntax.Hdoc, syntax.DashHdoc:
		body, err := heredocBody(ctx, env, cfg, rd)
		if err != nil {
			return nil, err
		}
		return []restorer.Action{restorer.HereDoc{FdNum: fd, Body: body}}, nil

	case syntax.WordHdoc:
		body, err := Literal(ctx, env, cfg, rd.Word)
		if err != nil {
			return nil, err
		}
		return []restorer.Action{restorer.HereDoc{FdNum: fd, Body: []byte(body + "\n")}}, nil

	case syntax.DplIn, syntax.DplOut:
		action, err := dupFd(ctx, env, cfg, fd, rd)
		if err != nil {
			return nil, err
		}
		return []restorer.Action{action}, nil
	}

	perms := fdio.Read
	flag := os.O_RDONLY
	switch rd.Op {
	case syntax.RdrOut, syntax.ClbOut, syntax.RdrAll:
		perms = fdio.Write
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case syntax.AppOut, syntax.AppAll:
		perms = fdio.Write
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	case syntax.RdrInOut:
		perms = fdio.ReadWrite
		flag = os.O_RDWR | os.O_CREATE
	}

	path, err := redirectPath(ctx, env, cfg, rd.Word)
	if err != nil {
		return nil, err
	}

	h, err := env.Open(path, flag)
	if err != nil {
		return nil, &RedirectionError{Kind: Io, Path: path, Err: err}
	}

	if rd.Op == syntax.RdrAll || rd.Op == syntax.AppAll {
		return []restorer.Action{
			restorer.Open{FdNum: fdio.Stdout, Handle: h, Perms: perms},
			restorer.Open{FdNum: fdio.Stderr, Handle: h.Dup(), Perms: perms},
		}, nil
	}
	return []restorer.Action{restorer.Open{FdNum: fd, Handle: h, Perms: perms}}, nil
}

// redirectFd returns the descriptor rd rebinds, defaulting to stdin for
// input and stdout for output.
func redirectFd(rd *syntax.Redirect) (int, error) {
	if rd.N != nil {
		fd, err := strconv.Atoi(rd.N.Value)
		if err != nil || fd < 0 {
			return 0, &RedirectionError{Kind: BadFdSrc, Path: rd.N.Value}
		}
		return fd, nil
	}

	switch rd.Op {
	case syntax.RdrIn, syntax.RdrInOut, syntax.DplIn, syntax.Hdoc, syntax.DashHdoc, syntax.WordHdoc:
		return fdio.Stdin, nil
	default:
		return fdio.Stdout, nil
	}
}

// redirectPath expands a redirection target, which must be a single field.
func redirectPath(ctx context.Context, env Env, cfg *Config, word *syntax.Word) (string, error) {
	fields, err := Fields(ctx, env, cfg, word)
	if err != nil {
		return "", err
	}
	if len(fields) != 1 {
		return "", &RedirectionError{Kind: Ambiguous, Path: wordString(word), Fields: fields}
	}
	return fields[0], nil
}

func dupFd(ctx context.Context, env Env, cfg *Config, fd int, rd *syntax.Redirect) (restorer.Action, error) {
	src, err := redirectPath(ctx, env, cfg, rd.Word)
	if err != nil {
		return nil, err
	}

	if src == "-" {
		return restorer.Close{FdNum: fd}, nil
	}

	perms := fdio.Write
	if rd.Op == syntax.DplIn {
		perms = fdio.Read
	}

	srcFd, err := strconv.Atoi(src)
	if err != nil {
		return nil, &RedirectionError{Kind: BadFdSrc, Path: src}
	}
	entry, ok := env.FileDesc(srcFd)
	if !ok {
		return nil, &RedirectionError{Kind: BadFdSrc, Path: src}
	}
	if (perms.Readable() && !entry.Perms.Readable()) || (perms.Writable() && !entry.Perms.Writable()) {
		return nil, &RedirectionError{Kind: BadFdPerms, Path: src, Perms: perms}
	}

	return restorer.Open{FdNum: fd, Handle: entry.Handle.Dup(), Perms: perms}, nil
}

// heredocBody expands a heredoc. Bodies with a quoted delimiter are kept
// literally, `<<-` strips the tabs that start each line.
func heredocBody(ctx context.Context, env Env, cfg *Config, rd *syntax.Redirect) ([]byte, error) {
	if rd.Hdoc == nil {
		return nil, nil
	}
	if rd.Op != syntax.DashHdoc {
		body, err := Document(ctx, env, cfg, rd.Hdoc)
		return []byte(body), err
	}

	var buf bytes.Buffer
	var cur []syntax.WordPart
	lines := 0
	flushLine := func() error {
		if lines > 0 {
			buf.WriteByte('\n')
		}
		lines++
		line, err := Document(ctx, env, cfg, &syntax.Word{Parts: cur})
		buf.WriteString(line)
		cur = nil
		return err
	}

	lineStart := true
	for _, wp := range rd.Hdoc.Parts {
		lit, ok := wp.(*syntax.Lit)
		if !ok {
			cur = append(cur, wp)
			lineStart = false
			continue
		}
		for i, part := range strings.Split(lit.Value, "\n") {
			if i > 0 {
				if err := flushLine(); err != nil {
					return nil, err
				}
				lineStart = true
			}
			if lineStart {
				part = strings.TrimLeft(part, "\t")
				lineStart = part == ""
			}
			cur = append(cur, &syntax.Lit{Value: part})
		}
	}
	if err := flushLine(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func wordString(word *syntax.Word) string {
	var sb strings.Builder
	syntax.NewPrinter().Print(&sb, word)
	return sb.String()
}
