// Package ringbuf provides Ring, a fixed-capacity double-ended circular
// buffer for code that must not allocate once it is running.
//
// A Ring is parameterized by its element type and by the unsigned integer
// type used for positions and counts, so a ring of at most 255 elements can
// carry its bookkeeping in three bytes:
//
//	var buf [64]byte
//	var r ringbuf.Ring[byte, uint8]
//	r.Init(buf[:])
//
// Every operation is O(1) except Export, Slice and Dump, which are linear in
// the number of elements. Nothing fails at runtime: pushes into a full ring
// overwrite the opposite end and report false, and pops or lookups on an
// empty ring return a placeholder from storage. The Try* methods, Front and
// Back are the checked alternatives.
package ringbuf
