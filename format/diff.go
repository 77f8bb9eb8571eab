package format

import (
	"time"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultDiffTimeout bounds the search for a minimal diff.
const DefaultDiffTimeout = time.Second

// Diff returns the edits that turn before into after. Offsets are rune
// offsets into before, edits are in ascending order and never overlap, and a
// deletion directly followed by an insertion becomes one replacement.
func Diff(before, after string) []TextEdit {
	return diff(before, after, DefaultDiffTimeout)
}

// diff stops looking for a minimal edit script after timeout; the edits it
// returns past that point are coarser but still turn before into after.
func diff(before, after string, timeout time.Duration) []TextEdit {
	if before == after {
		return nil
	}
	if timeout <= 0 {
		timeout = DefaultDiffTimeout
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = timeout
	diffs := dmp.DiffMain(before, after, false)

	var (
		edits   []TextEdit
		pending *TextEdit
		off     int
	)
	flush := func() {
		if pending != nil {
			edits = append(edits, *pending)
			pending = nil
		}
	}
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			off += n
		case diffmatchpatch.DiffDelete:
			if pending == nil {
				pending = &TextEdit{Start: off}
			}
			pending.Length += n
			off += n
		case diffmatchpatch.DiffInsert:
			if pending == nil {
				pending = &TextEdit{Start: off}
			}
			pending.Text += d.Text
		}
	}
	flush()
	return edits
}
