package contract

import "math/big"

var (
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxUint128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// IsInt128 reports whether v fits in a signed 128-bit integer.
func IsInt128(v *big.Int) bool {
	return v != nil && v.Cmp(minInt128) >= 0 && v.Cmp(maxInt128) <= 0
}

// IsUint128 reports whether v fits in an unsigned 128-bit integer.
func IsUint128(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(maxUint128) <= 0
}

// IsPositiveInt128 reports whether 0 < v <= max int128.
func IsPositiveInt128(v *big.Int) bool {
	return IsInt128(v) && v.Sign() > 0
}
