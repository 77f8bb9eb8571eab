// Package buffer implements the editor document that formatting passes are
// applied to.
//
// Coordinates are 0-based (Row, Col) in runes. Ranges are half-open selections
// in document coordinates: [Start, End). Flat offsets count runes from the
// start of the document, with every line break counted as the single '\n' rune
// that separates rows; a '\r' preceding it is ordinary line content.
package buffer
