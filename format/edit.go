package format

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// DefaultEOL is the line terminator formatting engines are assumed to emit.
const DefaultEOL = "\r\n"

var (
	ErrEditOutOfRange   = errors.New("format: edit out of range")
	ErrOverlappingEdits = errors.New("format: overlapping edits")
	ErrApplyFailed      = errors.New("format: apply failed")
	ErrEngineTimeout    = errors.New("format: engine timed out")
	ErrUnknownEngine    = errors.New("format: unknown engine")
)

// Span is a contiguous rune range [Start, Start+Length).
type Span struct {
	Start  int
	Length int
}

func (s Span) End() int { return s.Start + s.Length }

func (s Span) String() string { return fmt.Sprintf("[%d,%d)", s.Start, s.End()) }

// Intersects reports whether e touches s. Edits adjacent to either end of the
// span count, so whitespace right at a boundary is formatted too.
func (s Span) Intersects(e TextEdit) bool {
	return e.Start <= s.End() && e.End() >= s.Start
}

// TextEdit replaces Length runes at Start with Text. Offsets refer to the
// buffer as it was before any edit of the batch was applied.
type TextEdit struct {
	Start  int
	Length int
	Text   string
}

func (e TextEdit) End() int { return e.Start + e.Length }

func (e TextEdit) Span() Span { return Span{Start: e.Start, Length: e.Length} }

func (e TextEdit) String() string { return fmt.Sprintf("%s->%q", e.Span(), e.Text) }

// NormalizeEOL rewrites every DefaultEOL in text to eol. Other line breaks,
// including lone "\n", are left as they are.
func NormalizeEOL(text, eol string) string {
	if eol == "" || eol == DefaultEOL {
		return text
	}
	return strings.ReplaceAll(text, DefaultEOL, eol)
}

// Validate checks that every edit lies within a document of docLen runes and
// that no two edits overlap. Two insertions at the same offset overlap since
// their order would be ambiguous.
func Validate(docLen int, edits []TextEdit) error {
	_, err := validatedDescending(docLen, edits)
	return err
}

// validatedDescending returns a copy of edits sorted for application: by
// descending start, and by descending end for equal starts so that an
// insertion lands in front of a replacement beginning at the same offset.
func validatedDescending(docLen int, edits []TextEdit) ([]TextEdit, error) {
	for _, e := range edits {
		if e.Start < 0 || e.Length < 0 || e.End() > docLen {
			return nil, fmt.Errorf("%w: %s in document of length %d", ErrEditOutOfRange, e.Span(), docLen)
		}
	}

	sorted := slices.Clone(edits)
	slices.SortStableFunc(sorted, func(a, b TextEdit) int {
		if c := cmp.Compare(b.Start, a.Start); c != 0 {
			return c
		}
		return cmp.Compare(b.End(), a.End())
	})

	for i := 1; i < len(sorted); i++ {
		later, cur := sorted[i-1], sorted[i]
		if cur.End() > later.Start || (cur.Start == later.Start && cur.Length == 0 && later.Length == 0) {
			return nil, fmt.Errorf("%w: %s and %s", ErrOverlappingEdits, cur.Span(), later.Span())
		}
	}
	return sorted, nil
}
