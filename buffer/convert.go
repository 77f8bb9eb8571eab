package buffer

import "unicode/utf8"

type OffsetClampMode uint8

const (
	OffsetError OffsetClampMode = iota
	OffsetClamp
)

type ConvertPolicy struct {
	ClampMode OffsetClampMode
}

func (b *Buffer) PosFromByteOffset(off int, p ConvertPolicy) (Pos, bool) {
	off, ok := clampOffset(off, b.docByteLen(), p.ClampMode)
	if !ok {
		return Pos{}, false
	}
	return b.byteOffsetToPos(off)
}

func (b *Buffer) ByteOffsetFromPos(pos Pos, p ConvertPolicy) (int, bool) {
	pos, ok := b.normalizePosForMode(pos, p.ClampMode)
	if !ok {
		return 0, false
	}
	return b.posToByteOffset(pos), true
}

func (b *Buffer) PosFromRuneOffset(off int, p ConvertPolicy) (Pos, bool) {
	off, ok := clampOffset(off, b.docRuneLen(), p.ClampMode)
	if !ok {
		return Pos{}, false
	}
	return b.runeOffsetToPos(off)
}

func (b *Buffer) RuneOffsetFromPos(pos Pos, p ConvertPolicy) (int, bool) {
	pos, ok := b.normalizePosForMode(pos, p.ClampMode)
	if !ok {
		return 0, false
	}
	return b.posToRuneOffset(pos), true
}

func clampOffset(off, max int, mode OffsetClampMode) (int, bool) {
	switch mode {
	case OffsetError:
		if off < 0 || off > max {
			return 0, false
		}
		return off, true
	case OffsetClamp:
		return clampInt(off, 0, max), true
	default:
		return 0, false
	}
}

func (b *Buffer) normalizePosForMode(pos Pos, mode OffsetClampMode) (Pos, bool) {
	switch mode {
	case OffsetError:
		if b.clampPos(pos) != pos {
			return Pos{}, false
		}
		return pos, true
	case OffsetClamp:
		return b.clampPos(pos), true
	default:
		return Pos{}, false
	}
}

func (b *Buffer) docByteLen() int {
	total := len(b.lines) - 1
	for _, line := range b.lines {
		total += runesByteLen(line)
	}
	return total
}

func (b *Buffer) docRuneLen() int {
	total := len(b.lines) - 1
	for _, line := range b.lines {
		total += len(line)
	}
	return total
}

func (b *Buffer) byteOffsetToPos(off int) (Pos, bool) {
	cur := 0
	for row, line := range b.lines {
		if off == cur {
			return Pos{Row: row}, true
		}
		for col, r := range line {
			next := cur + utf8.RuneLen(r)
			if off > cur && off < next {
				// Inside a multi-byte rune.
				return Pos{}, false
			}
			cur = next
			if off == cur {
				return Pos{Row: row, Col: col + 1}, true
			}
		}
		cur++ // '\n'
	}
	return Pos{}, false
}

func (b *Buffer) runeOffsetToPos(off int) (Pos, bool) {
	if off < 0 {
		return Pos{}, false
	}
	for row, line := range b.lines {
		if off <= len(line) {
			return Pos{Row: row, Col: off}, true
		}
		off -= len(line) + 1
	}
	return Pos{}, false
}

func (b *Buffer) posToByteOffset(pos Pos) int {
	off := 0
	for row := 0; row < pos.Row; row++ {
		off += runesByteLen(b.lines[row]) + 1
	}
	return off + runesByteLen(b.lines[pos.Row][:pos.Col])
}

func (b *Buffer) posToRuneOffset(pos Pos) int {
	off := 0
	for row := 0; row < pos.Row && row < len(b.lines); row++ {
		off += len(b.lines[row]) + 1
	}
	return off + pos.Col
}

func runesByteLen(rs []rune) int {
	n := 0
	for _, r := range rs {
		n += utf8.RuneLen(r)
	}
	return n
}

// ByteOffsetFromRuneOffset converts a rune offset into Text() to the byte
// offset of the same position.
func (b *Buffer) ByteOffsetFromRuneOffset(off int, p ConvertPolicy) (int, bool) {
	pos, ok := b.PosFromRuneOffset(off, p)
	if !ok {
		return 0, false
	}
	return b.ByteOffsetFromPos(pos, p)
}

// RuneOffsetFromByteOffset converts a byte offset into Text() to a rune
// offset. Offsets inside a multi-byte rune fail.
func (b *Buffer) RuneOffsetFromByteOffset(off int, p ConvertPolicy) (int, bool) {
	pos, ok := b.PosFromByteOffset(off, p)
	if !ok {
		return 0, false
	}
	return b.RuneOffsetFromPos(pos, p)
}
