package format

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/iw2rmb/reflow/internal/logfields"
)

// DefaultTimeout bounds a single engine call when Config.Timeout is unset.
const DefaultTimeout = 5 * time.Second

// Request kinds reported in FormatError.Op and in logs.
const (
	OpDocument  = "format-document"
	OpRange     = "format-range"
	OpStatement = "format-statement"
)

type Config struct {
	// Timeout bounds the engine call. Zero means DefaultTimeout.
	Timeout time.Duration
	// Logger receives one "format failed" record per failed request.
	// Nil means slog.Default().
	Logger *slog.Logger
	// Notify, if set, is called with every failure after it was logged.
	Notify func(error)
	// Observer, if set, sees the outcome of every request.
	Observer Observer
}

// Observer receives one call per formatting request. err is nil on success.
type Observer interface {
	ObserveFormat(op, engine string, edits int, d time.Duration, err error)
}

// FormatError reports a failed formatting request. The target is unchanged
// when a FormatError is returned.
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *FormatError) Unwrap() error { return e.Err }

// Formatter runs an Engine over a Target and applies the difference as a
// single undoable step.
type Formatter struct {
	engine  Engine
	timeout time.Duration
	log     *slog.Logger
	notify  func(error)
	obs     Observer
}

func NewFormatter(engine Engine, cfg Config) *Formatter {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Formatter{
		engine:  engine,
		timeout: cfg.Timeout,
		log:     cfg.Logger,
		notify:  cfg.Notify,
		obs:     cfg.Observer,
	}
}

func (f *Formatter) Engine() Engine { return f.engine }

// FormatDocument formats the whole contents of t.
func (f *Formatter) FormatDocument(ctx context.Context, t Target) error {
	return f.run(ctx, t, OpDocument, func(src string) (Span, error) {
		return Span{Length: utf8.RuneCountInString(src)}, nil
	})
}

// FormatRange formats [start, end). Unless exact is set the range is
// extended back to the start of the document.
func (f *Formatter) FormatRange(ctx context.Context, t Target, start, end int, exact bool) error {
	return f.run(ctx, t, OpRange, func(src string) (Span, error) {
		n := utf8.RuneCountInString(src)
		if start < 0 || start > end || end > n {
			return Span{}, fmt.Errorf("%w: range [%d,%d) in document of length %d", ErrEditOutOfRange, start, end, n)
		}
		if !exact {
			start = 0
		}
		return Span{Start: start, Length: end - start}, nil
	})
}

// FormatStatementAt formats the statement enclosing offset when the engine is
// a StatementLocator that finds one. Otherwise everything up to offset is
// formatted.
func (f *Formatter) FormatStatementAt(ctx context.Context, t Target, offset int) error {
	return f.run(ctx, t, OpStatement, func(src string) (Span, error) {
		n := utf8.RuneCountInString(src)
		if offset < 0 || offset > n {
			return Span{}, fmt.Errorf("%w: offset %d in document of length %d", ErrEditOutOfRange, offset, n)
		}
		if loc, ok := f.engine.(StatementLocator); ok {
			if stmt, found := loc.StatementSpan(src, offset); found {
				return stmt, nil
			}
		}
		return Span{Length: offset}, nil
	})
}

func (f *Formatter) run(ctx context.Context, t Target, op string, spanOf func(src string) (Span, error)) error {
	started := time.Now()
	n, err := f.format(ctx, t, spanOf)
	if f.obs != nil {
		f.obs.ObserveFormat(op, f.engine.Name(), n, time.Since(started), err)
	}
	if err != nil {
		f.log.Error("format failed",
			logfields.Op(op),
			logfields.Engine(f.engine.Name()),
			logfields.Error(err))
		ferr := &FormatError{Op: op, Err: err}
		if f.notify != nil {
			f.notify(ferr)
		}
		return ferr
	}
	f.log.Debug("formatted",
		logfields.Op(op),
		logfields.Engine(f.engine.Name()),
		logfields.Edits(n),
		logfields.Duration(time.Since(started)))
	return nil
}

func (f *Formatter) format(ctx context.Context, t Target, spanOf func(src string) (Span, error)) (n int, err error) {
	group := t.OpenUndoGroup()
	defer func() {
		if cerr := group.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close undo group: %w", cerr)
		}
	}()

	before := t.Text()
	span, err := spanOf(before)
	if err != nil {
		return 0, err
	}
	after, err := f.callEngine(ctx, before)
	if err != nil {
		return 0, err
	}

	// A character diff would split a "\r\n" pair, so the output is brought to
	// the target's terminator first.
	edits := restrict(diff(before, NormalizeEOL(after, t.EOLMarker()), f.timeout), span)
	if err := apply(t, edits); err != nil {
		return 0, err
	}
	return len(edits), nil
}

func (f *Formatter) callEngine(ctx context.Context, src string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := f.engine.Format(ctx, src)
		done <- result{out: out, err: err}
	}()

	select {
	case r := <-done:
		if r.err == nil {
			return r.out, nil
		}
		if ctx.Err() == nil {
			return "", fmt.Errorf("engine %s: %w", f.engine.Name(), r.err)
		}
	case <-ctx.Done():
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("%w: %s after %s", ErrEngineTimeout, f.engine.Name(), f.timeout)
	}
	return "", ctx.Err()
}

func restrict(edits []TextEdit, span Span) []TextEdit {
	out := edits[:0]
	for _, e := range edits {
		if span.Intersects(e) {
			out = append(out, e)
		}
	}
	return out
}
