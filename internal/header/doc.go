// Package header decodes and encodes the 64-byte CODIF frame header.
//
// Every CODIF frame starts with a fixed header of eight little-endian
// 64-bit words. The header carries the frame's position in time (frame
// number within an alignment period, epoch offset, reference epoch), its
// identity (thread, group, secondary and station ids) and the geometry of
// the payload that follows (channels, sample block length, data array
// length).
//
// # Wire Layout
//
//	Offset  Size  Field
//	     0     4  data frame number
//	     4     4  epoch offset (seconds)
//	     8     1  reference epoch (half-years since 2000-01-01)
//	     9     1  sample size (bits)
//	    10     1  packed flags and sample representation
//	    11     1  packed version and protocol
//	    12     2  reserved
//	    14     2  alignment period (seconds)
//	    16     2  thread id
//	    18     2  group id
//	    20     2  secondary id
//	    22     2  station id (two characters)
//	    24     2  channels
//	    26     2  sample block length (8-byte words)
//	    28     4  data array length (8-byte words)
//	    32     8  sample periods per alignment period
//	    40     4  synchronisation sequence (0xFEEDCAFE)
//	    44     2  metadata id
//	    46    18  metadata bytes
//
// # Bit Layouts
//
// Byte 10 has been interpreted differently by different implementations.
// The layout is therefore an explicit [Layout] tag and every layout has
// its own [Codec]:
//
//   - [LayoutCanonical]: bit0 atypical, bit1 invalid, bit2 complex,
//     bit3 calibration enabled, bits4-7 sample representation.
//
//   - [LayoutLowNibble]: same flag bits, but the sample representation is
//     read from bits0-3, overlapping the flags. Captures decoded by older
//     tooling report a sample representation of 4 where the canonical
//     layout reports 1.
//
// Both layouts read byte 11 as version (bits0-4) and protocol (bits5-7).
//
// # Usage
//
//	codec, err := header.NewCodec(header.LayoutCanonical)
//	h, err := codec.Decode(buf)
//	if err := h.Validate(); err != nil {
//	    // bad sync word or inconsistent geometry
//	}
//
// # Errors
//
//   - [ErrTruncated]: fewer than [Size] bytes were supplied
//   - [ErrBadSync]: synchronisation sequence is not [SyncWord]
//   - [ErrInvalidHeader]: a geometry field would divide by zero or
//     leave a partial sample block
//   - [ErrChannelBlockMismatch]: the sample block does not hold exactly
//     one channel block per channel
package header
