package fdio

import (
	"context"
	"errors"
	"io"
	"os"
	"time"
)

// Strategy is how an async handle performs I/O.
type Strategy int

const (
	// StrategyEvented waits on the runtime netpoller; blocked operations park
	// only the calling goroutine.
	StrategyEvented Strategy = iota + 1
	// StrategyThreadPool runs blocking operations on the manager's worker
	// pool.
	StrategyThreadPool
)

func (s Strategy) String() string {
	switch s {
	case StrategyEvented:
		return "evented"
	case StrategyThreadPool:
		return "threadpool"
	default:
		return "unknown"
	}
}

// errUnsupported is returned by platform code when the netpoller can't
// register a handle.
var errUnsupported = errors.New("handle unsupported by event backend")

// aLongTimeAgo is a deadline in the past used to wake blocked evented calls.
var aLongTimeAgo = time.Unix(1, 0)

// AsyncHandle is a handle registered for context-aware I/O.
type AsyncHandle struct {
	handle   *Handle
	strategy Strategy

	// evented is set for StrategyEvented.
	evented *os.File

	pool *Pool
}

// Strategy returns the I/O strategy chosen at registration.
func (a *AsyncHandle) Strategy() Strategy {
	return a.strategy
}

// ReadContext reads into p, returning early with ctx.Err() if ctx is done
// before the read completes.
func (a *AsyncHandle) ReadContext(ctx context.Context, p []byte) (int, error) {
	if a.handle.isClosed() {
		return 0, os.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if a.strategy == StrategyEvented {
		return a.eventedIO(ctx, a.evented.SetReadDeadline, func() (int, error) {
			return a.evented.Read(p)
		})
	}

	buf := make([]byte, len(p))
	var n int
	err := a.pool.Do(ctx, func() (err error) {
		n, err = a.handle.res.file.Read(buf)
		return err
	})
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return 0, err
	}
	copy(p, buf[:n])
	return n, err
}

// WriteContext writes p, returning early with ctx.Err() if ctx is done before
// the write completes.
func (a *AsyncHandle) WriteContext(ctx context.Context, p []byte) (int, error) {
	if a.handle.isClosed() {
		return 0, os.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	if a.strategy == StrategyEvented {
		return a.eventedIO(ctx, a.evented.SetWriteDeadline, func() (int, error) {
			return a.evented.Write(p)
		})
	}

	buf := make([]byte, len(p))
	copy(buf, p)
	var n int
	err := a.pool.Do(ctx, func() (err error) {
		n, err = a.handle.res.file.Write(buf)
		return err
	})
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return 0, err
	}
	return n, err
}

func (a *AsyncHandle) eventedIO(ctx context.Context, setDeadline func(time.Time) error, op func() (int, error)) (int, error) {
	woken := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		defer close(woken)
		_ = setDeadline(aLongTimeAgo)
	})

	n, err := op()
	if !stop() {
		// The deadline was moved to wake the call, reset it so the handle stays
		// usable.
		<-woken
		_ = setDeadline(time.Time{})
		if errors.Is(err, os.ErrDeadlineExceeded) {
			err = ctx.Err()
		}
	}
	return n, err
}

// Reader returns an io.Reader whose reads are bound to ctx.
func (a *AsyncHandle) Reader(ctx context.Context) io.Reader {
	return &ctxReader{ctx: ctx, a: a}
}

// Writer returns an io.Writer whose writes are bound to ctx.
func (a *AsyncHandle) Writer(ctx context.Context) io.Writer {
	return &ctxWriter{ctx: ctx, a: a}
}

type ctxReader struct {
	ctx context.Context
	a   *AsyncHandle
}

func (r *ctxReader) Read(p []byte) (int, error) {
	return r.a.ReadContext(r.ctx, p)
}

type ctxWriter struct {
	ctx context.Context
	a   *AsyncHandle
}

func (w *ctxWriter) Write(p []byte) (int, error) {
	return w.a.WriteContext(w.ctx, p)
}
