package buffer

import "testing"

func TestUndoGroup_UndoesAllReplacementsAtOnce(t *testing.T) {
	b := New("a  b\n\nc", Options{})
	b.InsertText("// ")

	g := b.OpenUndoGroup()
	if err := b.Replace(8, 1, ""); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := b.Replace(4, 2, " "); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if b.CanUndo() {
		t.Fatalf("expected undo refused while group is open")
	}
	if err := g.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if got, want := b.Text(), "// a b\nc"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if ok := b.Undo(); !ok {
		t.Fatalf("expected Undo=true")
	}
	if got, want := b.Text(), "// a  b\n\nc"; got != want {
		t.Fatalf("text after undo=%q, want %q", got, want)
	}
	if ok := b.Undo(); !ok {
		t.Fatalf("expected second Undo=true")
	}
	if got, want := b.Text(), "a  b\n\nc"; got != want {
		t.Fatalf("text after second undo=%q, want %q", got, want)
	}
	if ok := b.Redo(); !ok {
		t.Fatalf("expected Redo=true")
	}
}

func TestUndoGroup_EmptyGroupRecordsNothing(t *testing.T) {
	b := New("abc", Options{})
	g := b.OpenUndoGroup()
	_ = g.Close()

	if b.CanUndo() {
		t.Fatalf("expected no history entry for an empty group")
	}
	if got := b.Version(); got != 0 {
		t.Fatalf("version=%d, want 0", got)
	}
}

func TestUndoGroup_NestedAndIdempotentClose(t *testing.T) {
	b := New("abc", Options{})

	outer := b.OpenUndoGroup()
	inner := b.OpenUndoGroup()
	if err := b.Replace(0, 1, "X"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	_ = inner.Close()
	_ = inner.Close()
	if !b.InUndoGroup() {
		t.Fatalf("expected outer group still open")
	}
	if err := b.Replace(2, 1, "Z"); err != nil {
		t.Fatalf("replace: %v", err)
	}
	_ = outer.Close()

	if b.InUndoGroup() {
		t.Fatalf("expected all groups closed")
	}
	if ok := b.Undo(); !ok {
		t.Fatalf("expected Undo=true")
	}
	if got, want := b.Text(), "abc"; got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
	if b.CanUndo() {
		t.Fatalf("expected nested group to be a single history step")
	}
}

func TestUndoGroup_RevertedTextRecordsNothing(t *testing.T) {
	b := New("abc", Options{})
	g := b.OpenUndoGroup()
	_ = b.Replace(0, 1, "X")
	_ = b.Replace(0, 1, "a")
	_ = g.Close()

	if b.CanUndo() {
		t.Fatalf("expected no history entry when text ends unchanged")
	}
}

func TestUndoGroup_FoldsOffsetChanges(t *testing.T) {
	b := New("abc", Options{})
	g := b.OpenUndoGroup()
	_ = b.Replace(2, 1, "C")
	_ = b.Replace(0, 1, "A")
	_ = g.Close()

	ch, ok := b.LastChange()
	if !ok {
		t.Fatalf("expected last change")
	}
	if got, want := len(ch.AppliedEdits), 2; got != want {
		t.Fatalf("applied edits=%d, want %d", got, want)
	}
	if got, want := ch.VersionAfter-ch.VersionBefore, uint64(2); got != want {
		t.Fatalf("version span=%d, want %d", got, want)
	}
}
