// Package wire implements the little-endian primitives shared by the
// container index and blob manifest formats.
//
// Strings are length-prefixed UTF-16LE: a signed 32-bit count of UTF-16 code
// units followed by the units themselves. GUIDs are 16 raw bytes in the
// Windows mixed-endian layout. Timestamps are 8-byte FILETIME ticks.
//
// Version-dependent records are described by a [Layout], an ordered table of
// fields each gated by a version range. The same table drives both decoding
// and encoding so the byte contract for any version can be read off the table.
package wire
