package buffer

import "testing"

func TestBuffer_PosFromByteOffset(t *testing.T) {
	b := New("aπ\ncd", Options{})

	clamp := ConvertPolicy{ClampMode: OffsetClamp}
	strict := ConvertPolicy{ClampMode: OffsetError}

	cases := []struct {
		name string
		off  int
		p    ConvertPolicy
		want Pos
		ok   bool
	}{
		{name: "bof", off: 0, p: strict, want: Pos{}, ok: true},
		{name: "after-ascii", off: 1, p: strict, want: Pos{Row: 0, Col: 1}, ok: true},
		{name: "inside-multibyte", off: 2, p: strict, ok: false},
		{name: "line-end", off: 3, p: strict, want: Pos{Row: 0, Col: 2}, ok: true},
		{name: "next-line", off: 4, p: strict, want: Pos{Row: 1, Col: 0}, ok: true},
		{name: "eof", off: 6, p: strict, want: Pos{Row: 1, Col: 2}, ok: true},
		{name: "past-eof", off: 7, p: strict, ok: false},
		{name: "past-eof-clamp", off: 7, p: clamp, want: Pos{Row: 1, Col: 2}, ok: true},
		{name: "negative-clamp", off: -3, p: clamp, want: Pos{}, ok: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := b.PosFromByteOffset(tc.off, tc.p)
			if ok != tc.ok {
				t.Fatalf("ok=%v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("pos=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuffer_RuneOffsetRoundTrip(t *testing.T) {
	b := New("πテ\r\n\nxyz", Options{})
	strict := ConvertPolicy{ClampMode: OffsetError}

	for off := 0; off <= b.Len(); off++ {
		p, ok := b.PosFromRuneOffset(off, strict)
		if !ok {
			t.Fatalf("PosFromRuneOffset(%d) failed", off)
		}
		back, ok := b.RuneOffsetFromPos(p, strict)
		if !ok || back != off {
			t.Fatalf("round trip %d -> %v -> %d (ok=%v)", off, p, back, ok)
		}
	}
	if _, ok := b.PosFromRuneOffset(b.Len()+1, strict); ok {
		t.Fatalf("expected failure past end")
	}
	if _, ok := b.RuneOffsetFromPos(Pos{Row: 0, Col: 9}, strict); ok {
		t.Fatalf("expected failure for out-of-bounds pos")
	}
}

func TestBuffer_ByteOffsetFromPos(t *testing.T) {
	b := New("aπ\ncd", Options{})

	got, ok := b.ByteOffsetFromPos(Pos{Row: 1, Col: 1}, ConvertPolicy{ClampMode: OffsetError})
	if !ok || got != 5 {
		t.Fatalf("offset=%d ok=%v, want 5 true", got, ok)
	}
	got, ok = b.ByteOffsetFromPos(Pos{Row: 5, Col: 5}, ConvertPolicy{ClampMode: OffsetClamp})
	if !ok || got != 6 {
		t.Fatalf("clamped offset=%d ok=%v, want 6 true", got, ok)
	}
}

func TestBuffer_DocumentOffsetConversion(t *testing.T) {
	text := "aπ\r\nテd"
	b := New(text, Options{})
	strict := ConvertPolicy{ClampMode: OffsetError}

	byteOffs := []int{0, 1, 3, 4, 5, 8, 9}
	for runeOff, want := range byteOffs {
		got, ok := b.ByteOffsetFromRuneOffset(runeOff, strict)
		if !ok || got != want {
			t.Fatalf("ByteOffsetFromRuneOffset(%d)=%d,%v, want %d", runeOff, got, ok, want)
		}
		back, ok := b.RuneOffsetFromByteOffset(want, strict)
		if !ok || back != runeOff {
			t.Fatalf("RuneOffsetFromByteOffset(%d)=%d,%v, want %d", want, back, ok, runeOff)
		}
	}
	if _, ok := b.RuneOffsetFromByteOffset(2, strict); ok {
		t.Fatalf("expected failure inside a multi-byte rune")
	}
	if _, ok := b.ByteOffsetFromRuneOffset(len(byteOffs), strict); ok {
		t.Fatalf("expected failure past end")
	}
	if got, ok := b.ByteOffsetFromRuneOffset(99, ConvertPolicy{ClampMode: OffsetClamp}); !ok || got != len(text) {
		t.Fatalf("clamped=%d,%v, want %d", got, ok, len(text))
	}
}
