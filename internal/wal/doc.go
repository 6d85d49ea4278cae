// Package wal implements the partition log: the page-aligned record format and
// the append-only file that holds it.
//
// Each partition of the engine owns exactly one log. Records are appended
// whole, padded to a multiple of the page size so that they can be written with
// direct I/O, and are never rewritten. On open, the engine maps the file and
// folds [Decode] over it; [ValidPrefix] locates the end of the last complete
// record so that the tail of an interrupted append can be cut with [Truncate].
package wal
