// Package red implements the RED (Range Encoded Differences) block codec:
// first-order differencing of a sample block, a variable-length prefix code
// over the difference stream, an embedded 304-byte header, and optional
// per-chunk AES-128 encryption of the payload.
//
// Encode and Decode operate on one block at a time; segment-level block
// sizing and sample accumulation belong to the writer and reader packages.
package red
