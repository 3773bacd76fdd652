// Package address converts 32-bit IPv4 addresses to and from their canonical
// dotted-decimal text without going through generic integer formatting.
//
// # Overview
//
// The search engine examines every address in [0, 2^32-1] and hashes the
// ASCII text of each one. Formatting four integers with fmt or strconv on
// every iteration would dominate the loop, so this package keeps a table of
// the decimal text of every octet value 0-255 and assembles candidates by
// copying table entries into a fixed scratch array:
//
//	address 0x01020304
//	  octets   1     2     3     4
//	  table   "1"   "2"   "3"   "4"
//	  output  "1" . "2" . "3" . "4"  = "1.2.3.4" (7 bytes)
//
// Candidate lengths range from MinLen ("0.0.0.0") to MaxLen
// ("255.255.255.255").
//
// # Ownership
//
// An Encoder owns its scratch buffer. The slice returned by Encode aliases
// that buffer and is overwritten by the next call, so each worker goroutine
// must have its own Encoder. Callers that need to keep a candidate copy it
// (Format does this).
//
// # Example
//
//	var enc address.Encoder
//	b := enc.Encode(16909060) // []byte("1.2.3.4")
//	s := address.Format(16909060) // "1.2.3.4"
//	a, err := address.Parse("1.2.3.4") // 16909060, nil
package address
