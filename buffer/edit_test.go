package buffer

import "testing"

func TestBuffer_InsertText_MultiLine(t *testing.T) {
	b := New("ab", Options{})
	b.SetCursor(Pos{Row: 0, Col: 1})
	v := b.Version()

	b.InsertText("X\nY")
	if got, want := b.Text(), "aX\nYb"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := b.Cursor(), (Pos{Row: 1, Col: 1}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
	if got := b.Version(); got != v+1 {
		t.Fatalf("version=%d, want %d", got, v+1)
	}
}

func TestBuffer_InsertText_ReplacesSelection(t *testing.T) {
	b := New("hello", Options{})
	b.SetSelection(Range{Start: Pos{Row: 0, Col: 1}, End: Pos{Row: 0, Col: 4}})

	b.InsertText("i")
	if got, want := b.Text(), "hio"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := b.Cursor(), (Pos{Row: 0, Col: 2}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
	if _, ok := b.Selection(); ok {
		t.Fatalf("expected selection cleared")
	}
}

func TestBuffer_InsertNewline_UsesConfiguredMarker(t *testing.T) {
	b := New("ab", Options{EOLMarker: "\r\n"})
	b.SetCursor(Pos{Row: 0, Col: 1})

	b.InsertNewline()
	if got, want := b.Text(), "a\r\nb"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := b.Cursor(), (Pos{Row: 1, Col: 0}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
	if got, want := b.LineCount(), 2; got != want {
		t.Fatalf("lines=%d, want %d", got, want)
	}
}

func TestBuffer_DeleteBackward_JoinsLinesAtSOL(t *testing.T) {
	b := New("ab\ncd", Options{})
	b.SetCursor(Pos{Row: 1, Col: 0})

	b.DeleteBackward()
	if got, want := b.Text(), "abcd"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := b.Cursor(), (Pos{Row: 0, Col: 2}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
}

func TestBuffer_DeleteBackward_RemovesCRLFAsOneBreak(t *testing.T) {
	b := New("ab\r\ncd", Options{EOLMarker: "\r\n"})
	b.SetCursor(Pos{Row: 1, Col: 0})

	b.DeleteBackward()
	if got, want := b.Text(), "abcd"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestBuffer_DeleteForward_JoinsLinesAtEOL(t *testing.T) {
	b := New("ab\r\ncd", Options{EOLMarker: "\r\n"})
	b.SetCursor(Pos{Row: 0, Col: 2})

	b.DeleteForward()
	if got, want := b.Text(), "abcd"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := b.Cursor(), (Pos{Row: 0, Col: 2}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
}

func TestBuffer_DeleteSelection_SpanningMultipleLines(t *testing.T) {
	b := New("ab\ncd\nef", Options{})
	b.SetSelection(Range{Start: Pos{Row: 0, Col: 1}, End: Pos{Row: 2, Col: 1}})

	b.DeleteSelection()
	if got, want := b.Text(), "af"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := b.Cursor(), (Pos{Row: 0, Col: 1}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
}

func TestBuffer_Delete_NoOpsDoNotBumpVersion(t *testing.T) {
	b := New("a", Options{})
	v := b.Version()

	b.DeleteBackward()
	if got := b.Version(); got != v {
		t.Fatalf("version=%d, want %d", got, v)
	}

	b.SetCursor(Pos{Row: 0, Col: 1})
	v2 := b.Version()
	b.DeleteForward()
	if got := b.Version(); got != v2 {
		t.Fatalf("version=%d, want %d", got, v2)
	}
}

func TestBuffer_DeleteBackward_RemovesWholeGraphemeCluster(t *testing.T) {
	b := New("e\u0301x", Options{})
	b.SetCursor(Pos{Row: 0, Col: 2})

	b.DeleteBackward()
	if got, want := b.Text(), "x"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if got, want := b.Cursor(), (Pos{Row: 0, Col: 0}); got != want {
		t.Fatalf("cursor=%v, want %v", got, want)
	}
}
