// Package ogg reads and writes the pages of an Ogg bitstream (RFC 3533).
//
// The package is deliberately low level. A Reader hands out pages exactly as
// they appear in the input, an Assembler turns the pages of one logical stream
// into packets, and a Writer either copies pages through untouched or
// paginates freshly queued packets. This is what a tag editor needs: every
// page except the ones carrying the comment header is forwarded as is, with
// only its sequence number (and therefore its checksum) rewritten.
//
// # Page Structure
//
//	Bytes 0-3:   "OggS" capture pattern
//	Byte 4:      Stream structure version (always 0)
//	Byte 5:      Header type flags (continuation, BOS, EOS)
//	Bytes 6-13:  Granule position
//	Bytes 14-17: Bitstream serial number
//	Bytes 18-21: Page sequence number
//	Bytes 22-25: CRC checksum
//	Byte 26:     Number of segments
//	Bytes 27+:   Segment table (one byte per segment)
//	Remaining:   Page payload data
//
// All integers are little-endian. Packets are split into segments of up to
// 255 bytes; a segment shorter than 255 bytes terminates its packet, so a
// packet whose length is a multiple of 255 ends with a zero-length segment.
// A packet whose last segment on a page is 255 bytes long continues on the
// next page, which then carries the continuation flag.
//
// # Ownership
//
// Pages returned by Reader.NextPage point into the reader's synchronization
// buffer and are only valid until the next call. Use Page.Clone to keep one.
package ogg
