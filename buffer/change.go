package buffer

// ChangeSource identifies where a change originated.
type ChangeSource uint8

const (
	// ChangeSourceLocal marks cursor-driven edits, moves and history steps.
	ChangeSourceLocal ChangeSource = iota
	// ChangeSourceOffset marks Replace calls, e.g. a formatting pass.
	ChangeSourceOffset
)

func (s ChangeSource) String() string {
	switch s {
	case ChangeSourceLocal:
		return "local"
	case ChangeSourceOffset:
		return "offset"
	default:
		return "unknown"
	}
}

// SelectionState is a normalized selection at a point in time.
type SelectionState struct {
	Active bool
	Range  Range
}

// AppliedEdit is one effective edit of a change.
type AppliedEdit struct {
	RangeBefore Range
	RangeAfter  Range
	InsertText  string
	DeletedText string
}

// Change describes the most recent mutation, cursor moves included.
type Change struct {
	Source          ChangeSource
	VersionBefore   uint64
	VersionAfter    uint64
	CursorBefore    Pos
	CursorAfter     Pos
	SelectionBefore SelectionState
	SelectionAfter  SelectionState
	AppliedEdits    []AppliedEdit
}

// LastChange returns a copy of the most recent change. Consecutive Replace
// calls inside one undo group are reported as a single change.
func (b *Buffer) LastChange() (Change, bool) {
	if !b.hasLastChange {
		return Change{}, false
	}
	c := b.lastChange
	c.AppliedEdits = append([]AppliedEdit(nil), c.AppliedEdits...)
	return c, true
}

// txn collects what a mutation did until commit publishes it as LastChange.
type txn struct {
	src     ChangeSource
	version uint64
	cursor  Pos
	sel     SelectionState
	edits   []AppliedEdit
}

func (b *Buffer) begin(src ChangeSource) *txn {
	return &txn{
		src:     src,
		version: b.version,
		cursor:  b.cursor,
		sel:     selectionOf(b.sel),
	}
}

func (t *txn) record(e AppliedEdit) {
	e.RangeBefore = NormalizeRange(e.RangeBefore)
	e.RangeAfter = NormalizeRange(e.RangeAfter)
	t.edits = append(t.edits, e)
}

// commit is a no-op unless the buffer version moved since begin.
func (b *Buffer) commit(t *txn) {
	if b.version == t.version {
		return
	}
	if b.foldsInto(t) {
		last := &b.lastChange
		last.VersionAfter = b.version
		last.CursorAfter = b.cursor
		last.SelectionAfter = selectionOf(b.sel)
		last.AppliedEdits = append(last.AppliedEdits, t.edits...)
		return
	}

	b.lastChange = Change{
		Source:          t.src,
		VersionBefore:   t.version,
		VersionAfter:    b.version,
		CursorBefore:    t.cursor,
		CursorAfter:     b.cursor,
		SelectionBefore: t.sel,
		SelectionAfter:  selectionOf(b.sel),
		AppliedEdits:    append([]AppliedEdit(nil), t.edits...),
	}
	b.hasLastChange = true
}

func (b *Buffer) foldsInto(t *txn) bool {
	return t.src == ChangeSourceOffset &&
		b.group.depth > 0 &&
		b.hasLastChange &&
		b.lastChange.Source == ChangeSourceOffset &&
		b.lastChange.VersionAfter == t.version
}

func selectionOf(sel selectionState) SelectionState {
	if !sel.active {
		return SelectionState{}
	}
	r := NormalizeRange(Range{Start: sel.anchor, End: sel.end})
	if r.IsEmpty() {
		return SelectionState{}
	}
	return SelectionState{Active: true, Range: r}
}

// wholeDocumentEdit reports a history step as one edit spanning the document.
func wholeDocumentEdit(before, after string) (AppliedEdit, bool) {
	if before == after {
		return AppliedEdit{}, false
	}
	return AppliedEdit{
		RangeBefore: documentRange(before),
		RangeAfter:  documentRange(after),
		InsertText:  after,
		DeletedText: before,
	}, true
}

func documentRange(text string) Range {
	lines := splitLines(text)
	last := len(lines) - 1
	return Range{End: Pos{Row: last, Col: len(lines[last])}}
}
