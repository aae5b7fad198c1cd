package stackitem

import (
	"fmt"
	"math/big"

	"github.com/colorfulnotion/neovm/vmerrors"
)

// Integers travel as minimal little-endian two's complement: the most
// significant bit of the last byte is the sign, zero encodes as the empty
// slice, and no encoding carries redundant sign bytes.

// IntToBytes encodes v. The result is freshly allocated.
func IntToBytes(v *big.Int) []byte {
	sign := v.Sign()
	if sign == 0 {
		return []byte{}
	}
	if sign > 0 {
		b := reverseBytes(v.Bytes())
		if b[len(b)-1]&0x80 != 0 {
			b = append(b, 0)
		}
		return b
	}
	n := negativeByteLen(v)
	// t = 2^(8n) + v, guaranteed positive and < 2^(8n)
	t := new(big.Int).Lsh(big.NewInt(1), uint(8*n))
	t.Add(t, v)
	b := reverseBytes(t.Bytes())
	for len(b) < n {
		b = append(b, 0)
	}
	return b
}

// BytesToInt decodes b. An empty slice decodes to zero.
func BytesToInt(b []byte) *big.Int {
	if len(b) == 0 {
		return new(big.Int)
	}
	v := new(big.Int).SetBytes(reverseBytes(b))
	if b[len(b)-1]&0x80 != 0 {
		m := new(big.Int).Lsh(big.NewInt(1), uint(8*len(b)))
		v.Sub(v, m)
	}
	return v
}

// CheckIntegerSize rejects values whose minimal encoding exceeds
// MaxIntegerBytes.
func CheckIntegerSize(v *big.Int) error {
	if fitsInBytes(v, MaxIntegerBytes) {
		return nil
	}
	return fmt.Errorf("%w: integer needs more than %d bytes", vmerrors.ErrBigIntegerBound, MaxIntegerBytes)
}

// fitsInBytes reports whether v is representable in n bytes of two's
// complement, i.e. v in [-2^(8n-1), 2^(8n-1)-1].
func fitsInBytes(v *big.Int, n int) bool {
	bits := v.BitLen()
	if v.Sign() >= 0 {
		return bits <= 8*n-1
	}
	if bits <= 8*n-1 {
		return true
	}
	// -2^(8n-1) itself still fits.
	if bits != 8*n {
		return false
	}
	abs := new(big.Int).Neg(v)
	return abs.Bit(bits-1) == 1 && abs.TrailingZeroBits() == uint(bits-1)
}

// negativeByteLen returns the minimal two's-complement byte length of a
// negative value.
func negativeByteLen(v *big.Int) int {
	n := (v.BitLen() + 7) / 8
	if n == 0 {
		n = 1
	}
	if !fitsInBytes(v, n) {
		n++
	}
	return n
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
