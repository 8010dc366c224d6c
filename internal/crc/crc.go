// Package crc implements the Koopman32 CRC-32 used throughout MEF 3.0 for
// header, index, and block integrity checking.
//
// This is not hash/crc32: the format requires an initial register of
// 0xFFFFFFFF and no final XOR, which hash/crc32's Checksum/New API cannot
// express (it always XORs the final register). The table-generation
// algorithm is the same reversed-polynomial, 8-shifts-per-byte approach
// hash/crc32.MakeTable uses.
package crc

// StartValue is the initial CRC register before any bytes are folded in.
const StartValue uint32 = 0xFFFFFFFF

// Koopman32 is the reflected Koopman polynomial used by MEF 3.0.
const Koopman32 uint32 = 0xEB31D82E

var table = makeTable(Koopman32)

func makeTable(poly uint32) [256]uint32 {
	var t [256]uint32
	for i := 0; i < 256; i++ {
		c := uint32(i)
		for j := 0; j < 8; j++ {
			if c&1 != 0 {
				c = (c >> 1) ^ poly
			} else {
				c >>= 1
			}
		}
		t[i] = c
	}
	return t
}

// Table returns the 256-entry CRC lookup table.
func Table() [256]uint32 { return table }

// Update folds data into an already-running CRC register and returns the
// new register value. Calculate(data) == Update(data, StartValue).
func Update(data []byte, crc uint32) uint32 {
	for _, b := range data {
		crc = table[byte(crc)^b] ^ (crc >> 8)
	}
	return crc
}

// Calculate computes the CRC-32 of data from a fresh register.
// Calculate(nil) == StartValue.
func Calculate(data []byte) uint32 {
	return Update(data, StartValue)
}

// Validate reports whether data's computed CRC matches expected.
func Validate(data []byte, expected uint32) bool {
	return Calculate(data) == expected
}
