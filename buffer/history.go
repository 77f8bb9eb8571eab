package buffer

type bufferSnapshot struct {
	text   string
	cursor Pos
	sel    selectionState
}

type historyState struct {
	undo []bufferSnapshot
	redo []bufferSnapshot
}

func (b *Buffer) snapshot() bufferSnapshot {
	return bufferSnapshot{
		text:   b.Text(),
		cursor: b.cursor,
		sel:    b.sel,
	}
}

func (b *Buffer) restore(s bufferSnapshot) {
	b.lines = splitLines(s.text)
	b.cursor = b.clampPos(s.cursor)

	if !s.sel.active {
		b.sel = selectionState{}
		return
	}

	anchor := b.clampPos(s.sel.anchor)
	end := b.clampPos(s.sel.end)
	if anchor == end {
		b.sel = selectionState{}
		return
	}
	b.sel = selectionState{active: true, anchor: anchor, end: end}
}

// recordUndo pushes prev as one history step. Inside an undo group the step
// is deferred until the outermost group closes.
func (b *Buffer) recordUndo(prev bufferSnapshot) {
	if b.group.depth > 0 {
		b.group.dirty = true
		return
	}
	b.pushUndo(prev)
	b.hist.redo = nil
}

func (b *Buffer) pushUndo(s bufferSnapshot) {
	limit := b.opt.HistoryLimit
	if limit <= 0 {
		return
	}
	b.hist.undo = append(b.hist.undo, s)
	if len(b.hist.undo) > limit {
		b.hist.undo = b.hist.undo[len(b.hist.undo)-limit:]
	}
}

func (b *Buffer) CanUndo() bool { return b.group.depth == 0 && len(b.hist.undo) > 0 }

func (b *Buffer) CanRedo() bool { return b.group.depth == 0 && len(b.hist.redo) > 0 }

// Undo reverts the most recent history step. It is refused while an undo
// group is open.
func (b *Buffer) Undo() bool {
	if !b.CanUndo() {
		return false
	}

	cur := b.snapshot()
	i := len(b.hist.undo) - 1
	prev := b.hist.undo[i]
	b.hist.undo = b.hist.undo[:i]
	b.hist.redo = append(b.hist.redo, cur)

	b.restoreStep(cur, prev)
	return true
}

func (b *Buffer) Redo() bool {
	if !b.CanRedo() {
		return false
	}

	cur := b.snapshot()
	i := len(b.hist.redo) - 1
	next := b.hist.redo[i]
	b.hist.redo = b.hist.redo[:i]
	b.pushUndo(cur)

	b.restoreStep(cur, next)
	return true
}

func (b *Buffer) restoreStep(cur, target bufferSnapshot) {
	tx := b.begin(ChangeSourceLocal)
	b.restore(target)
	b.version++
	if cur.text != target.text {
		b.textVersion++
	}
	if applied, ok := wholeDocumentEdit(cur.text, target.text); ok {
		tx.record(applied)
	}
	b.commit(tx)
}
