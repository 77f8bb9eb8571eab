// Package format applies the output of a source formatter to an editor
// buffer.
//
// A formatting pass snapshots the buffer, asks an Engine for the formatted
// text, turns the difference into a batch of TextEdits and applies the batch
// to the Target from the highest offset to the lowest, so that offsets of the
// edits still pending stay valid. The batch runs inside a single undo group.
package format
