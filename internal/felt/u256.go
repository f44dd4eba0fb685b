package felt

import (
	"fmt"
	"math/big"
	"strings"
)

// U256 is a 256-bit unsigned integer, as carried on Cairo's event wire as
// two Felts (low, high) per the GLOSSARY.
type U256 struct {
	v big.Int
}

var twoPow128 = new(big.Int).Lsh(big.NewInt(1), 128)
var maxU256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// U256FromWords reconstructs a u256 from its low/high Felt halves.
func U256FromWords(low, high Felt) U256 {
	n := new(big.Int).Lsh(high.BigInt(), 128)
	n.Add(n, low.BigInt())
	return U256{v: *n}
}

// U256FromBigInt wraps a big.Int as a u256, returning an error for
// values outside [0, 2^256).
func U256FromBigInt(n *big.Int) (U256, error) {
	if n.Sign() < 0 || n.Cmp(maxU256) > 0 {
		return U256{}, fmt.Errorf("felt: value out of u256 range")
	}
	return U256{v: *new(big.Int).Set(n)}, nil
}

// Words splits the u256 back into its low/high Felt halves.
func (u U256) Words() (low, high Felt) {
	lowInt := new(big.Int).Mod(&u.v, twoPow128)
	highInt := new(big.Int).Rsh(&u.v, 128)
	return FromBigInt(lowInt), FromBigInt(highInt)
}

// BigInt returns a copy of the underlying value.
func (u U256) BigInt() *big.Int {
	return new(big.Int).Set(&u.v)
}

// IsZero reports whether the value is 0.
func (u U256) IsZero() bool {
	return u.v.Sign() == 0
}

// Cmp compares two u256 values.
func (u U256) Cmp(o U256) int {
	return u.v.Cmp(&o.v)
}

// Decimal is the canonical decimal string form of a token id — spec §3's
// `token_id_dec`.
func (u U256) Decimal() string {
	return u.v.String()
}

// Hex is the zero-padded, lowercase, "0x"-prefixed 64-hex-digit form of a
// token id — spec §3's `token_id_hex`. Always 66 characters long (property
// P2).
func (u U256) Hex() string {
	return fmt.Sprintf("0x%064x", &u.v)
}

// TokenIDDecimalAndHex returns the canonical (dec, hex) pair for a token id,
// satisfying property P2: parsing either string back yields the same
// integer, and the hex form is always 66 characters.
func TokenIDDecimalAndHex(id U256) (dec string, hex string) {
	return id.Decimal(), id.Hex()
}

// ParseTokenIDDecimal parses the canonical decimal token-id form back into
// a u256.
func ParseTokenIDDecimal(s string) (U256, error) {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return U256{}, fmt.Errorf("felt: invalid decimal token id %q", s)
	}
	return U256FromBigInt(n)
}

// ParseTokenIDHex parses either a zero-padded 66-char hex token id or a bare
// hex literal back into a u256.
func ParseTokenIDHex(s string) (U256, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if trimmed == "" {
		return U256{}, nil
	}
	n, ok := new(big.Int).SetString(trimmed, 16)
	if !ok {
		return U256{}, fmt.Errorf("felt: invalid hex token id %q", s)
	}
	return U256FromBigInt(n)
}

// ParseTokenID accepts either a decimal or a "0x"-prefixed hex token id,
// per spec §6's HTTP-surface normalization rule.
func ParseTokenID(s string) (U256, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return ParseTokenIDHex(s)
	}
	return ParseTokenIDDecimal(s)
}
