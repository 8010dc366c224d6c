// Package section implements the fixed-offset binary layout of every MEF3
// structure: the universal header, metadata sections, the time-series index
// entry, RED block headers, and (recognized but unexercised) record
// headers/indices.
//
// Every exported type follows the same round-trip shape, taking an
// endian.EndianEngine where byte order matters: ParseX(data []byte, engine)
// (X, error) reads a fixed-size buffer into a struct, and X.Bytes(engine)
// []byte (or X.WriteTo(buf, engine) for the metadata sections, which share
// one 16384-byte file) serializes it back out. Metadata Section 1 holds only
// single-byte fields and raw regions, so ParseMetadataSection1 and its
// WriteTo take no engine. None of these types retain a
// reference to the buffer they were parsed from.
package section
