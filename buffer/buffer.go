package buffer

import "strings"

// DefaultEOLMarker is the line terminator assumed when Options leave it unset.
const DefaultEOLMarker = "\n"

type Options struct {
	HistoryLimit int    // default: 1000
	EOLMarker    string // default: DefaultEOLMarker
}

type selectionState struct {
	active bool
	anchor Pos
	end    Pos
}

// Buffer is the editor document: text, cursor, selection and edit history.
//
// A Buffer is not safe for concurrent use.
type Buffer struct {
	lines       [][]rune
	version     uint64
	textVersion uint64

	cursor Pos
	sel    selectionState

	opt   Options
	hist  historyState
	group groupState

	lastChange    Change
	hasLastChange bool
}

func New(text string, opt Options) *Buffer {
	if opt.HistoryLimit == 0 {
		opt.HistoryLimit = 1000
	}
	if opt.EOLMarker == "" {
		opt.EOLMarker = DefaultEOLMarker
	}
	return &Buffer{
		lines: splitLines(text),
		opt:   opt,
	}
}

// DetectEOLMarker reports the terminator used by the first line break in
// text, falling back to DefaultEOLMarker when text has none.
func DetectEOLMarker(text string) string {
	i := strings.IndexByte(text, '\n')
	if i > 0 && text[i-1] == '\r' {
		return "\r\n"
	}
	return DefaultEOLMarker
}

func (b *Buffer) Text() string {
	var sb strings.Builder
	for i, line := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(line))
	}
	return sb.String()
}

// Len returns the document length in runes.
func (b *Buffer) Len() int { return b.docRuneLen() }

// LineCount returns the number of logical rows (always at least 1).
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns the text of row, or "" when row is out of range.
func (b *Buffer) Line(row int) string {
	if row < 0 || row >= len(b.lines) {
		return ""
	}
	return string(b.lines[row])
}

// EOLMarker returns the configured line terminator.
func (b *Buffer) EOLMarker() string { return b.opt.EOLMarker }

// Version increments on every effective change of text, cursor or selection.
func (b *Buffer) Version() uint64 { return b.version }

// TextVersion increments only when the text changes.
func (b *Buffer) TextVersion() uint64 { return b.textVersion }

func (b *Buffer) Cursor() Pos { return b.cursor }

func (b *Buffer) SetCursor(p Pos) {
	next := b.clampPos(p)
	if next == b.cursor {
		return
	}
	tx := b.begin(ChangeSourceLocal)
	b.cursor = next
	b.version++
	b.commit(tx)
}

func (b *Buffer) Selection() (Range, bool) {
	if !b.sel.active {
		return Range{}, false
	}
	r := NormalizeRange(Range{Start: b.sel.anchor, End: b.sel.end})
	if r.IsEmpty() {
		return Range{}, false
	}
	return r, true
}

// SelectionRaw returns the raw selection anchor/end without normalization.
//
// UI layers use it to preserve the selection direction while still treating
// empty selections as inactive.
func (b *Buffer) SelectionRaw() (Range, bool) {
	if !b.sel.active || b.sel.anchor == b.sel.end {
		return Range{}, false
	}
	return Range{Start: b.sel.anchor, End: b.sel.end}, true
}

func (b *Buffer) SetSelection(r Range) {
	clamped := ClampRange(r, len(b.lines), b.lineLen)
	next := selectionState{
		active: true,
		anchor: clamped.Start,
		end:    clamped.End,
	}
	if clamped.Start == clamped.End {
		next = selectionState{}
	}

	if selectionOf(b.sel) == selectionOf(next) {
		b.sel = next
		return
	}

	tx := b.begin(ChangeSourceLocal)
	b.sel = next
	b.version++
	b.commit(tx)
}

func (b *Buffer) ClearSelection() {
	if !b.sel.active {
		return
	}
	if _, ok := b.Selection(); !ok {
		b.sel = selectionState{}
		return
	}
	tx := b.begin(ChangeSourceLocal)
	b.sel = selectionState{}
	b.version++
	b.commit(tx)
}

func (b *Buffer) lineLen(row int) int {
	if row < 0 || row >= len(b.lines) {
		return 0
	}
	return len(b.lines[row])
}

func (b *Buffer) clampPos(p Pos) Pos {
	return ClampPos(p, len(b.lines), b.lineLen)
}

func splitLines(text string) [][]rune {
	parts := strings.Split(text, "\n")
	lines := make([][]rune, 0, len(parts))
	for _, s := range parts {
		lines = append(lines, []rune(s))
	}
	return lines
}
