package buffer

import "strings"

// InsertText inserts text at the cursor, or replaces the active selection.
func (b *Buffer) InsertText(s string) {
	if s == "" {
		b.DeleteSelection()
		return
	}

	r, ok := b.Selection()
	if !ok {
		r = Range{Start: b.cursor, End: b.cursor}
	}
	b.replaceLocal(r, s)
}

// InsertNewline inserts the configured line terminator at the cursor, or
// replaces the active selection with it.
func (b *Buffer) InsertNewline() {
	b.InsertText(b.opt.EOLMarker)
}

// DeleteBackward applies backspace semantics. A "\r\n" terminator is removed
// as a whole when the cursor sits at the start of a row.
func (b *Buffer) DeleteBackward() {
	if _, ok := b.Selection(); ok {
		b.DeleteSelection()
		return
	}

	row, col := b.cursor.Row, b.cursor.Col
	if row == 0 && col == 0 {
		return
	}

	end := Pos{Row: row, Col: col}
	if col > 0 {
		b.replaceLocal(Range{Start: Pos{Row: row, Col: prevBoundary(b.lines[row], col)}, End: end}, "")
		return
	}

	// Join with previous line (delete the newline).
	prev := b.lines[row-1]
	startCol := len(prev)
	if startCol > 0 && prev[startCol-1] == '\r' {
		startCol--
	}
	b.replaceLocal(Range{Start: Pos{Row: row - 1, Col: startCol}, End: end}, "")
}

// DeleteForward applies delete-key semantics.
func (b *Buffer) DeleteForward() {
	if _, ok := b.Selection(); ok {
		b.DeleteSelection()
		return
	}

	row, col := b.cursor.Row, b.cursor.Col
	line := b.lines[row]
	lastRow := len(b.lines) - 1
	if row == lastRow && col == len(line) {
		return
	}

	start := Pos{Row: row, Col: col}
	switch {
	case col < len(line) && !(line[col] == '\r' && col == len(line)-1 && row < lastRow):
		b.replaceLocal(Range{Start: start, End: Pos{Row: row, Col: nextBoundary(line, col)}}, "")
	default:
		// Join with next line (delete the line break).
		b.replaceLocal(Range{Start: start, End: Pos{Row: row + 1, Col: 0}}, "")
	}
}

// DeleteSelection deletes the active selection, if any.
func (b *Buffer) DeleteSelection() {
	r, ok := b.Selection()
	if !ok {
		return
	}
	b.replaceLocal(r, "")
}

// replaceLocal is the common path of the cursor-driven mutations: the cursor
// lands after the inserted text and the selection is cleared.
func (b *Buffer) replaceLocal(r Range, text string) {
	prev := b.snapshot()
	tx := b.begin(ChangeSourceLocal)
	nextCursor, applied, changed := b.replaceRange(r, text)
	if !changed {
		return
	}
	b.cursor = b.clampPos(nextCursor)
	b.sel = selectionState{}
	b.version++
	b.textVersion++
	b.recordUndo(prev)
	tx.record(applied)
	b.commit(tx)
}

// replaceRange swaps the text in r for text and returns the position just past
// the inserted text. It does not touch cursor, selection, versions or history.
func (b *Buffer) replaceRange(r Range, text string) (end Pos, applied AppliedEdit, changed bool) {
	r = NormalizeRange(ClampRange(r, len(b.lines), b.lineLen))
	if r.IsEmpty() && text == "" {
		return b.cursor, AppliedEdit{}, false
	}

	deletedText := textForLinesRange(b.lines, r)
	if deletedText == text {
		return b.cursor, AppliedEdit{}, false
	}

	startRow, startCol := r.Start.Row, r.Start.Col
	endRow, endCol := r.End.Row, r.End.Col
	prefix := b.lines[startRow][:startCol]
	suffix := b.lines[endRow][endCol:]

	ins := splitLines(text)
	repl := make([][]rune, 0, len(ins))
	for i, part := range ins {
		var line []rune
		if i == 0 {
			line = append(line, prefix...)
		}
		line = append(line, part...)
		if i == len(ins)-1 {
			end = Pos{Row: startRow + i, Col: len(line)}
			line = append(line, suffix...)
		}
		repl = append(repl, line)
	}

	out := make([][]rune, 0, len(b.lines)-(endRow-startRow)+len(repl))
	out = append(out, b.lines[:startRow]...)
	out = append(out, repl...)
	out = append(out, b.lines[endRow+1:]...)

	b.lines = out
	applied = AppliedEdit{
		RangeBefore: r,
		RangeAfter:  Range{Start: r.Start, End: end},
		InsertText:  text,
		DeletedText: deletedText,
	}
	return end, applied, true
}

func textForLinesRange(lines [][]rune, r Range) string {
	r = NormalizeRange(r)
	if r.IsEmpty() {
		return ""
	}

	if r.Start.Row == r.End.Row {
		return string(lines[r.Start.Row][r.Start.Col:r.End.Col])
	}

	var sb strings.Builder
	for row := r.Start.Row; row <= r.End.Row; row++ {
		if row > r.Start.Row {
			sb.WriteByte('\n')
		}
		partStart, partEnd := 0, len(lines[row])
		if row == r.Start.Row {
			partStart = r.Start.Col
		}
		if row == r.End.Row {
			partEnd = r.End.Col
		}
		sb.WriteString(string(lines[row][partStart:partEnd]))
	}
	return sb.String()
}
