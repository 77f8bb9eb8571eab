package buffer

import (
	"fmt"
	"unicode/utf8"
)

// Replace removes length runes at the rune offset start and inserts text in
// their place. It is the primitive used by formatting passes.
//
// Unlike the cursor-driven edits, Replace keeps the caret and selection where
// the user left them: positions after the replaced span shift by the length
// delta, positions inside it move to the end of the inserted text.
//
// An out-of-bounds span returns an error wrapping ErrOutOfRange and leaves the
// buffer untouched.
func (b *Buffer) Replace(start, length int, text string) error {
	total := b.docRuneLen()
	if start < 0 || length < 0 || start > total || length > total-start {
		return fmt.Errorf("%w: replace [%d,+%d) in document of length %d", ErrOutOfRange, start, length, total)
	}
	if length == 0 && text == "" {
		return nil
	}

	startPos, _ := b.runeOffsetToPos(start)
	endPos, _ := b.runeOffsetToPos(start + length)

	cursorOff := b.posToRuneOffset(b.cursor)
	anchorOff := b.posToRuneOffset(b.sel.anchor)
	selEndOff := b.posToRuneOffset(b.sel.end)

	prev := b.snapshot()
	tx := b.begin(ChangeSourceOffset)
	_, applied, changed := b.replaceRange(Range{Start: startPos, End: endPos}, text)
	if !changed {
		return nil
	}

	inserted := utf8.RuneCountInString(text)
	b.cursor = b.remapOffset(cursorOff, start, length, inserted)
	if b.sel.active {
		anchor := b.remapOffset(anchorOff, start, length, inserted)
		end := b.remapOffset(selEndOff, start, length, inserted)
		if anchor == end {
			b.sel = selectionState{}
		} else {
			b.sel = selectionState{active: true, anchor: anchor, end: end}
		}
	}

	b.version++
	b.textVersion++
	b.recordUndo(prev)
	tx.record(applied)
	b.commit(tx)
	return nil
}

// Slice returns the text between the rune offsets start and end, clamped to
// the document.
func (b *Buffer) Slice(start, end int) string {
	total := b.docRuneLen()
	start = clampInt(start, 0, total)
	end = clampInt(end, start, total)
	from, _ := b.runeOffsetToPos(start)
	to, _ := b.runeOffsetToPos(end)
	return textForLinesRange(b.lines, Range{Start: from, End: to})
}

func (b *Buffer) remapOffset(off, start, length, inserted int) Pos {
	switch {
	case off >= start+length:
		off += inserted - length
	case off > start:
		off = start + inserted
	}
	p, ok := b.runeOffsetToPos(off)
	if !ok {
		return b.clampPos(b.cursor)
	}
	return p
}
