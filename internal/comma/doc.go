// Package comma owns the compact command protocol: one letter, optional
// decimal digits, and a terminating comma (for example "M1234,").
//
// Ownership boundary:
// - incremental frame decoding (Decoder)
// - frame encoding (AppendCommand)
// - 32-bit float transport inside a frame value (Pack754_32 / Unpack754_32)
package comma
