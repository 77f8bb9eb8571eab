package format

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// Target is the mutable text store a batch is applied to. Offsets and
// lengths are in runes.
type Target interface {
	// Text returns the current contents.
	Text() string
	// EOLMarker returns the line terminator the document uses.
	EOLMarker() string
	// Replace removes length runes at start and inserts text.
	Replace(start, length int, text string) error
	// OpenUndoGroup starts a group of mutations that undo as one step;
	// closing the returned Closer ends it.
	OpenUndoGroup() io.Closer
}

// Apply applies edits to t as one undoable step.
//
// Edits are validated against the current contents of t, then applied from
// the highest start offset to the lowest, with DefaultEOL in replacement text
// rewritten to t's terminator. An invalid batch applies nothing. If t fails
// part way through, the edits already applied are reverted before the error
// is returned, so t ends up as it was.
func Apply(t Target, edits []TextEdit) (err error) {
	group := t.OpenUndoGroup()
	defer func() {
		if cerr := group.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close undo group: %w", cerr)
		}
	}()
	return apply(t, edits)
}

type appliedEdit struct {
	start    int
	inserted int
	removed  string
}

func apply(t Target, edits []TextEdit) error {
	if len(edits) == 0 {
		return nil
	}

	src := []rune(t.Text())
	sorted, err := validatedDescending(len(src), edits)
	if err != nil {
		return err
	}

	eol := t.EOLMarker()
	done := make([]appliedEdit, 0, len(sorted))
	for _, e := range sorted {
		text := NormalizeEOL(e.Text, eol)
		if err := t.Replace(e.Start, e.Length, text); err != nil {
			err = fmt.Errorf("%w: edit %s: %w", ErrApplyFailed, e, err)
			if rerr := revert(t, done); rerr != nil {
				return errors.Join(err, rerr)
			}
			return err
		}
		done = append(done, appliedEdit{
			start:    e.Start,
			inserted: utf8.RuneCountInString(text),
			removed:  string(src[e.Start:e.End()]),
		})
	}
	return nil
}

// revert undoes applied edits, most recent first.
func revert(t Target, done []appliedEdit) error {
	for i := len(done) - 1; i >= 0; i-- {
		a := done[i]
		if err := t.Replace(a.start, a.inserted, a.removed); err != nil {
			return fmt.Errorf("revert edit at %d: %w", a.start, err)
		}
	}
	return nil
}
