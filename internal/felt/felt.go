// Package felt implements the Cairo field-element codec: the Felt integer
// type and the short-string / long-string / ByteArray decoders built on top
// of it (spec component C1).
package felt

import (
	"fmt"
	"math/big"
	"strings"
)

// modulus is the Cairo field prime (2^251 + 17 * 2^192 + 1).
var modulus = func() *big.Int {
	m, ok := new(big.Int).SetString("800000000000011000000000000000000000000000000000000000000000001", 16)
	if !ok {
		panic("felt: failed to parse field modulus")
	}
	return m
}()

// Felt is a field element modulo the Cairo prime. The zero value is 0.
type Felt struct {
	v big.Int
}

// Zero is the additive identity.
var Zero = Felt{}

// One is the multiplicative identity.
var One = FromUint64(1)

// FromUint64 builds a Felt from a u64.
func FromUint64(n uint64) Felt {
	var f Felt
	f.v.SetUint64(n)
	return f
}

// FromBigInt reduces an arbitrary big.Int modulo the field prime.
func FromBigInt(n *big.Int) Felt {
	var f Felt
	f.v.Mod(n, modulus)
	if f.v.Sign() < 0 {
		f.v.Add(&f.v, modulus)
	}
	return f
}

// FromHex parses a "0x"-prefixed (or bare) hex string into a Felt.
func FromHex(s string) (Felt, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if s == "" {
		return Zero, nil
	}
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return Felt{}, fmt.Errorf("felt: invalid hex literal %q", s)
	}
	return FromBigInt(n), nil
}

// FromDecimal parses a base-10 string into a Felt.
func FromDecimal(s string) (Felt, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Felt{}, fmt.Errorf("felt: invalid decimal literal %q", s)
	}
	return FromBigInt(n), nil
}

// FromBytesBE reduces a big-endian byte slice modulo the field prime. Used
// to build a Felt out of a ByteArray word, which is at most 31 bytes wide
// and therefore always fits without reduction in practice.
func FromBytesBE(b []byte) Felt {
	return FromBigInt(new(big.Int).SetBytes(b))
}

// BigInt returns a copy of the underlying integer value.
func (f Felt) BigInt() *big.Int {
	return new(big.Int).Set(&f.v)
}

// IsZero reports whether the felt is the additive identity.
func (f Felt) IsZero() bool {
	return f.v.Sign() == 0
}

// Equal reports whether two felts encode the same integer.
func (f Felt) Equal(o Felt) bool {
	return f.v.Cmp(&o.v) == 0
}

// Cmp compares the underlying integers.
func (f Felt) Cmp(o Felt) int {
	return f.v.Cmp(&o.v)
}

// Add returns f + o mod p.
func (f Felt) Add(o Felt) Felt {
	sum := new(big.Int).Add(&f.v, &o.v)
	return FromBigInt(sum)
}

// Bytes32 returns the 32-byte big-endian encoding of the felt.
func (f Felt) Bytes32() [32]byte {
	var out [32]byte
	b := f.v.Bytes()
	copy(out[32-len(b):], b)
	return out
}

// Hex returns the zero-padded, lowercase, "0x"-prefixed 64-hex-digit form.
func (f Felt) Hex() string {
	return fmt.Sprintf("0x%064x", &f.v)
}

// Decimal returns the canonical base-10 string form.
func (f Felt) Decimal() string {
	return f.v.String()
}

// String implements fmt.Stringer using the hex form, matching how the
// decoder tables and logs render felts.
func (f Felt) String() string {
	return f.Hex()
}

// Uint64 returns the value truncated to a uint64. Callers must only use
// this on felts known to be small (array lengths, pending-word lengths).
func (f Felt) Uint64() uint64 {
	return f.v.Uint64()
}
