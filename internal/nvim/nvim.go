// Package nvim exposes a live Neovim buffer as a format.Target over
// msgpack-RPC.
package nvim

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/neovim/go-client/nvim"

	"github.com/iw2rmb/reflow/buffer"
)

// Target is a Neovim buffer. Offsets are rune offsets into the buffer lines
// joined with "\n"; Neovim applies the file's 'fileformat' when it writes.
//
// Replacements made while an undo group is open are joined into one undo
// block with :undojoin.
type Target struct {
	v     *nvim.Nvim
	buf   nvim.Buffer
	owned bool

	doc    *buffer.Buffer
	synced bool
	err    error

	depth  int
	joined bool
}

// Dial connects to the Neovim listening on addr and targets buffer id, or the
// current buffer when id is 0. An empty addr falls back to $NVIM and then
// $NVIM_LISTEN_ADDRESS.
func Dial(addr string, id int) (*Target, error) {
	if addr == "" {
		addr = DefaultAddr()
	}
	if addr == "" {
		return nil, fmt.Errorf("nvim: no address given and neither $NVIM nor $NVIM_LISTEN_ADDRESS is set")
	}

	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("nvim: dial %s: %w", addr, err)
	}

	buf := nvim.Buffer(id)
	if id == 0 {
		if buf, err = v.CurrentBuffer(); err != nil {
			v.Close()
			return nil, fmt.Errorf("nvim: current buffer: %w", err)
		}
	}

	t := New(v, buf)
	t.owned = true
	return t, nil
}

// DefaultAddr returns the address of the enclosing Neovim, if any.
func DefaultAddr() string {
	if addr := os.Getenv("NVIM"); addr != "" {
		return addr
	}
	return os.Getenv("NVIM_LISTEN_ADDRESS")
}

// New wraps an existing connection. Close does not close v.
func New(v *nvim.Nvim, buf nvim.Buffer) *Target {
	return &Target{v: v, buf: buf, doc: mirror("")}
}

func (t *Target) Buffer() nvim.Buffer { return t.buf }

// Name returns the buffer's file name.
func (t *Target) Name() (string, error) {
	return t.v.BufferName(t.buf)
}

// ReportError shows err on Neovim's message line without blocking.
func (t *Target) ReportError(err error) {
	_ = t.v.WritelnErr("reflow: " + err.Error())
}

func (t *Target) Close() error {
	if t.owned {
		return t.v.Close()
	}
	return nil
}

// Text fetches the buffer contents. A failed read yields "" and makes the
// next Replace report the error.
func (t *Target) Text() string {
	t.err = t.load()
	return t.doc.Text()
}

func (t *Target) load() error {
	lines, err := t.v.BufferLines(t.buf, 0, -1, true)
	if err != nil {
		t.doc, t.synced = mirror(""), false
		return fmt.Errorf("nvim: read buffer %d: %w", t.buf, err)
	}
	parts := make([]string, len(lines))
	for i, l := range lines {
		parts[i] = string(l)
	}
	t.doc = mirror(strings.Join(parts, "\n"))
	t.synced = true
	return nil
}

func (t *Target) EOLMarker() string { return "\n" }

// Replace removes length runes at start and inserts text with
// nvim_buf_set_text.
func (t *Target) Replace(start, length int, text string) error {
	if t.err != nil {
		return t.err
	}
	if !t.synced {
		if err := t.load(); err != nil {
			return err
		}
	}

	startRow, startCol, ok := t.position(start)
	if !ok || length < 0 {
		return fmt.Errorf("nvim: replace [%d,+%d) out of range", start, length)
	}
	endRow, endCol, ok := t.position(start + length)
	if !ok {
		return fmt.Errorf("nvim: replace [%d,+%d) out of range", start, length)
	}

	repl := strings.Split(text, "\n")
	replacement := make([][]byte, len(repl))
	for i, s := range repl {
		replacement[i] = []byte(s)
	}

	b := t.v.NewBatch()
	if t.depth > 0 && t.joined {
		b.Command("silent! undojoin")
	}
	b.SetBufferText(t.buf, startRow, startCol, endRow, endCol, replacement)
	if err := b.Execute(); err != nil {
		t.synced = false
		return fmt.Errorf("nvim: set text in buffer %d: %w", t.buf, err)
	}

	if err := t.doc.Replace(start, length, text); err != nil {
		t.synced = false
		return err
	}
	if t.depth > 0 {
		t.joined = true
	}
	return nil
}

type undoGroup struct {
	t      *Target
	closed bool
}

// OpenUndoGroup starts joining replacements into a single undo block.
func (t *Target) OpenUndoGroup() io.Closer {
	t.depth++
	return &undoGroup{t: t}
}

func (g *undoGroup) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	g.t.depth--
	if g.t.depth == 0 {
		g.t.joined = false
		g.t.synced = false
		g.t.err = nil
	}
	return nil
}

// mirror holds the last known buffer contents; Neovim keeps the history.
func mirror(text string) *buffer.Buffer {
	return buffer.New(text, buffer.Options{HistoryLimit: -1})
}

// position converts a rune offset into a row and the byte column within it,
// which is what nvim_buf_set_text addresses.
func (t *Target) position(off int) (row, col int, ok bool) {
	strict := buffer.ConvertPolicy{ClampMode: buffer.OffsetError}
	pos, ok := t.doc.PosFromRuneOffset(off, strict)
	if !ok {
		return 0, 0, false
	}
	lineStart, _ := t.doc.ByteOffsetFromPos(buffer.Pos{Row: pos.Row}, strict)
	at, ok := t.doc.ByteOffsetFromPos(pos, strict)
	if !ok {
		return 0, 0, false
	}
	return pos.Row, at - lineStart, true
}
