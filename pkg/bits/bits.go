// Package bits numbers bits the way ISO/IEC 7816 and X.690 tables do:
// bit 1 is the least significant, bit 8 the most significant.
package bits

// Bit returns a byte with only the n-th bit set (1 to 8).
func Bit(n uint) byte {
	if n < 1 || n > 8 {
		return 0
	}
	return 1 << (n - 1)
}

// IsSet checks if the n-th bit is set (1 to 8).
func IsSet(b byte, n uint) bool {
	return b&Bit(n) != 0
}

// GetRange extracts the value from a range of bits (e.g., bits 4 to 3).
// Example: GetRange(0b00001100, 4, 3) returns 3 (0b11)
func GetRange(b byte, high, low uint) byte {
	if high < low || high > 8 || low < 1 {
		return 0
	}

	width := high - low + 1
	mask := byte((1 << width) - 1)

	return (b >> (low - 1)) & mask
}

// AllSet reports whether every bit between high and low is set.
// A BER tag whose bits 5-1 are all set announces subsequent tag bytes.
func AllSet(b byte, high, low uint) bool {
	if high < low || high > 8 || low < 1 {
		return false
	}
	width := high - low + 1
	return GetRange(b, high, low) == byte((1<<width)-1)
}

// Set returns b with the n-th bit set.
func Set(b byte, n uint) byte {
	return b | Bit(n)
}

// Clear returns b with the n-th bit cleared.
func Clear(b byte, n uint) byte {
	return b &^ Bit(n)
}
