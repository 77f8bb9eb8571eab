package buffer

import "github.com/iw2rmb/reflow/internal/grapheme"

type MoveUnit int

const (
	MoveGrapheme MoveUnit = iota
	MoveWord
	MoveLine
	MoveDoc
)

type MoveDir int

const (
	DirLeft MoveDir = iota
	DirRight
	DirUp
	DirDown
	DirHome // line start (or doc start for MoveDoc)
	DirEnd  // line end (or doc end for MoveDoc)
)

type Move struct {
	Unit   MoveUnit
	Dir    MoveDir
	Extend bool // if true, updates selection anchor/end; if false clears selection
}

func (b *Buffer) Move(m Move) {
	prevCursor := b.cursor
	prevSel := b.sel

	nextCursor := b.clampPos(b.moveCursor(prevCursor, m))

	nextSel := selectionState{}
	if m.Extend {
		anchor := prevCursor
		if prevSel.active && prevSel.anchor != prevSel.end {
			anchor = prevSel.anchor
		}
		if anchor != nextCursor {
			nextSel = selectionState{active: true, anchor: anchor, end: nextCursor}
		}
	}

	if prevCursor == nextCursor && selectionStateEqual(prevSel, nextSel) {
		return
	}

	tx := b.begin(ChangeSourceLocal)
	b.cursor = nextCursor
	b.sel = nextSel
	b.version++
	b.commit(tx)
}

func selectionStateEqual(a, b selectionState) bool {
	if !a.active && !b.active {
		return true
	}
	return a == b
}

func (b *Buffer) moveCursor(p Pos, m Move) Pos {
	switch m.Unit {
	case MoveGrapheme:
		return b.moveGrapheme(p, m.Dir)
	case MoveWord:
		return b.moveWord(p, m.Dir)
	case MoveLine:
		return b.moveLine(p, m.Dir)
	case MoveDoc:
		return b.moveDoc(p, m.Dir)
	default:
		return p
	}
}

func (b *Buffer) moveGrapheme(p Pos, dir MoveDir) Pos {
	row, col := p.Row, p.Col
	lastRow := len(b.lines) - 1

	switch dir {
	case DirLeft:
		if col > 0 {
			return Pos{Row: row, Col: prevBoundary(b.lines[row], col)}
		}
		if row == 0 {
			return p
		}
		return Pos{Row: row - 1, Col: b.contentLen(row - 1)}
	case DirRight:
		if col < b.contentLen(row) {
			return Pos{Row: row, Col: nextBoundary(b.lines[row], col)}
		}
		if row == lastRow {
			return Pos{Row: row, Col: len(b.lines[row])}
		}
		return Pos{Row: row + 1, Col: 0}
	default:
		return b.moveLine(p, dir)
	}
}

func (b *Buffer) moveWord(p Pos, dir MoveDir) Pos {
	line := b.lines[p.Row]

	switch dir {
	case DirLeft:
		return Pos{Row: p.Row, Col: prevWordBoundary(line, p.Col)}
	case DirRight:
		return Pos{Row: p.Row, Col: nextWordBoundary(line, p.Col)}
	default:
		return b.moveLine(p, dir)
	}
}

func (b *Buffer) moveLine(p Pos, dir MoveDir) Pos {
	row, col := p.Row, p.Col
	lastRow := len(b.lines) - 1

	switch dir {
	case DirHome:
		return Pos{Row: row, Col: 0}
	case DirEnd:
		return Pos{Row: row, Col: b.contentLen(row)}
	case DirUp:
		if row == 0 {
			return p
		}
		return Pos{Row: row - 1, Col: min(col, b.contentLen(row-1))}
	case DirDown:
		if row == lastRow {
			return p
		}
		return Pos{Row: row + 1, Col: min(col, b.contentLen(row+1))}
	default:
		return p
	}
}

func (b *Buffer) moveDoc(p Pos, dir MoveDir) Pos {
	lastRow := len(b.lines) - 1

	switch dir {
	case DirHome, DirUp:
		return Pos{}
	case DirEnd, DirDown:
		return Pos{Row: lastRow, Col: len(b.lines[lastRow])}
	default:
		return p
	}
}

// contentLen is the row length without a trailing '\r' that belongs to a
// "\r\n" terminator.
func (b *Buffer) contentLen(row int) int {
	line := b.lines[row]
	n := len(line)
	if row < len(b.lines)-1 && n > 0 && line[n-1] == '\r' {
		return n - 1
	}
	return n
}

func prevBoundary(line []rune, col int) int { return grapheme.Prev(line, col) }

func nextBoundary(line []rune, col int) int { return grapheme.Next(line, col) }

type wordClass uint8

const (
	classSpace wordClass = iota
	classPunct
	classWord
)

func classify(cluster string) wordClass {
	switch {
	case grapheme.IsSpace(cluster):
		return classSpace
	case grapheme.IsPunct(cluster):
		return classPunct
	default:
		return classWord
	}
}

// Word boundary rules:
// - skip whitespace, then skip a run of same-class clusters (word or punct)
// - newline is a hard boundary (so this operates on a single logical line)
func prevWordBoundary(line []rune, col int) int {
	bs := grapheme.Boundaries(line)
	i := clusterIndex(bs, col)
	for i > 0 && classify(clusterAt(line, bs, i-1)) == classSpace {
		i--
	}
	if i > 0 {
		c := classify(clusterAt(line, bs, i-1))
		for i > 0 && classify(clusterAt(line, bs, i-1)) == c {
			i--
		}
	}
	return bs[i]
}

func nextWordBoundary(line []rune, col int) int {
	bs := grapheme.Boundaries(line)
	n := len(bs) - 1
	i := clusterIndex(bs, col)
	for i < n && classify(clusterAt(line, bs, i)) == classSpace {
		i++
	}
	if i < n {
		c := classify(clusterAt(line, bs, i))
		for i < n && classify(clusterAt(line, bs, i)) == c {
			i++
		}
	}
	return bs[i]
}

// clusterIndex maps a rune column to the index of the boundary at or before it.
func clusterIndex(bs []int, col int) int {
	i := 0
	for i+1 < len(bs) && bs[i+1] <= col {
		i++
	}
	return i
}

func clusterAt(line []rune, bs []int, i int) string {
	return string(line[bs[i]:bs[i+1]])
}
