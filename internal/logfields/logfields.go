package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field names shared by every package.
const (
	KeyOp         = "op"
	KeyEngine     = "engine"
	KeyPath       = "path"
	KeyScope      = "scope"
	KeyEdits      = "edits"
	KeySpan       = "span"
	KeyBuffer     = "buffer"
	KeyAddr       = "addr"
	KeyEvent      = "event"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Op(op string) slog.Attr       { return slog.String(KeyOp, op) }
func Engine(name string) slog.Attr { return slog.String(KeyEngine, name) }
func Path(p string) slog.Attr      { return slog.String(KeyPath, p) }
func Scope(s string) slog.Attr     { return slog.String(KeyScope, s) }
func Edits(n int) slog.Attr        { return slog.Int(KeyEdits, n) }
func Span(s string) slog.Attr      { return slog.String(KeySpan, s) }
func Buffer(id int) slog.Attr      { return slog.Int(KeyBuffer, id) }
func Addr(a string) slog.Attr      { return slog.String(KeyAddr, a) }
func Event(e string) slog.Attr     { return slog.String(KeyEvent, e) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
