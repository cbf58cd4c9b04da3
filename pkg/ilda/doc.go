// Package ilda writes and reads ILDA laser image streams.
//
// A stream is a sequence of frame records followed by a terminator. Every
// record starts with a 32-byte big-endian header:
//
//	offset  size  field
//	0       4     magic "ILDA"
//	4       3     reserved, zero
//	7       1     format code (1 = 2D indexed color, 0 in the terminator)
//	8       8     frame name
//	16      8     company name
//	24      2     number of points
//	26      2     frame index
//	28      2     total number of frames
//	30      1     projector number
//	31      1     reserved
//
// Each point of a format-1 record takes 6 bytes: signed 16-bit x and y
// (y grows upwards, so it is stored negated relative to device space), a
// status byte and a color index. Status bit 0x80 marks the last point of
// the frame, bit 0x40 marks a blanked point.
//
// [Writer] places rendered samples into the signed 16-bit grid, rescaling
// frames that do not fit and failing on frames that the format cannot
// represent. [Reader] parses streams back for inspection and tests.
package ilda
