package buffer

import "io"

type groupState struct {
	depth  int
	dirty  bool
	before bufferSnapshot
}

// undoGroup brackets a series of mutations so that they are undone and redone
// as a single history step. Groups nest; only the outermost one records.
type undoGroup struct {
	b      *Buffer
	closed bool
}

// OpenUndoGroup starts an undo group and returns the Closer that ends it. The
// caller must Close it on every exit path, typically with defer.
func (b *Buffer) OpenUndoGroup() io.Closer {
	if b.group.depth == 0 {
		b.group.before = b.snapshot()
		b.group.dirty = false
	}
	b.group.depth++
	return &undoGroup{b: b}
}

// InUndoGroup reports whether an undo group is currently open.
func (b *Buffer) InUndoGroup() bool { return b.group.depth > 0 }

// Close ends the group. Closing the outermost group pushes one history entry
// when the text differs from the state at open time. Close is idempotent and
// always returns nil.
func (g *undoGroup) Close() error {
	if g == nil || g.closed {
		return nil
	}
	g.closed = true

	b := g.b
	b.group.depth--
	if b.group.depth > 0 {
		return nil
	}

	before := b.group.before
	dirty := b.group.dirty
	b.group = groupState{}
	if !dirty || before.text == b.Text() {
		return nil
	}
	b.pushUndo(before)
	b.hist.redo = nil
	return nil
}
