// Package grapheme finds user-perceived character boundaries in rune lines.
package grapheme

import (
	"unicode"

	"github.com/rivo/uniseg"
)

// Split returns the grapheme clusters of text in order.
func Split(text string) []string {
	if text == "" {
		return nil
	}
	g := uniseg.NewGraphemes(text)
	out := make([]string, 0, len(text))
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}

// Boundaries returns the rune offsets at which clusters of line start,
// followed by len(line). An empty line yields [0].
func Boundaries(line []rune) []int {
	out := []int{0}
	if len(line) == 0 {
		return out
	}
	g := uniseg.NewGraphemes(string(line))
	off := 0
	for g.Next() {
		off += len(g.Runes())
		out = append(out, off)
	}
	return out
}

// Prev returns the start of the cluster that ends at or contains col-1.
func Prev(line []rune, col int) int {
	if col <= 0 {
		return 0
	}
	bs := Boundaries(line)
	prev := 0
	for _, off := range bs {
		if off >= col {
			break
		}
		prev = off
	}
	return prev
}

// Next returns the end of the cluster that starts at or contains col.
func Next(line []rune, col int) int {
	if col >= len(line) {
		return len(line)
	}
	for _, off := range Boundaries(line) {
		if off > col {
			return off
		}
	}
	return len(line)
}

// IsSpace reports whether all runes in cluster are Unicode whitespace.
func IsSpace(cluster string) bool {
	return allRunes(cluster, unicode.IsSpace)
}

// IsPunct reports whether all runes in cluster are Unicode punctuation.
func IsPunct(cluster string) bool {
	return allRunes(cluster, unicode.IsPunct)
}

func allRunes(cluster string, fn func(rune) bool) bool {
	if cluster == "" {
		return false
	}
	for _, r := range cluster {
		if !fn(r) {
			return false
		}
	}
	return true
}
