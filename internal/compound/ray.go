package compound

import (
	"poolmanager/core"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

var (
	// Ray fixed point unit, 1e27
	Ray = pow10(27)
	// SecondsPerYear 365 days
	SecondsPerYear = uint256.NewInt(365 * 24 * 60 * 60)

	denominator = uint256.NewInt(core.Denominator)
)

// maxPow10 largest power of ten below 2^256
const maxPow10 = 77

func pow10(n uint8) *uint256.Int {
	return new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(n)))
}

// Pow10 10^n, failing for exponents that do not fit 256 bits
func Pow10(n uint8) (*uint256.Int, error) {
	if n > maxPow10 {
		return nil, core.ErrArithmeticOverflow
	}

	return pow10(n), nil
}

// FromDecimal convert a non negative integer amount, fractions are truncated
func FromDecimal(d decimal.Decimal) (*uint256.Int, error) {
	if d.Sign() < 0 {
		return nil, core.ErrArithmeticOverflow
	}

	v, overflow := uint256.FromBig(d.BigInt())
	if overflow {
		return nil, core.ErrArithmeticOverflow
	}

	return v, nil
}

// ToDecimal convert back to an integer decimal
func ToDecimal(v *uint256.Int) decimal.Decimal {
	return decimal.NewFromBigInt(v.ToBig(), 0)
}

// Mul x * y, every factor checked for overflow
func Mul(x *uint256.Int, ys ...*uint256.Int) (*uint256.Int, error) {
	z := x.Clone()
	for _, y := range ys {
		var overflow bool
		if z, overflow = new(uint256.Int).MulOverflow(z, y); overflow {
			return nil, core.ErrArithmeticOverflow
		}
	}

	return z, nil
}

// Add x + y
func Add(x *uint256.Int, ys ...*uint256.Int) (*uint256.Int, error) {
	z := x.Clone()
	for _, y := range ys {
		var overflow bool
		if z, overflow = new(uint256.Int).AddOverflow(z, y); overflow {
			return nil, core.ErrArithmeticOverflow
		}
	}

	return z, nil
}

// Sub x - y, underflow is an error
func Sub(x, y *uint256.Int) (*uint256.Int, error) {
	z, underflow := new(uint256.Int).SubOverflow(x, y)
	if underflow {
		return nil, core.ErrArithmeticOverflow
	}

	return z, nil
}

// Div x / y truncated
func Div(x, y *uint256.Int) (*uint256.Int, error) {
	if y.IsZero() {
		return nil, core.ErrArithmeticOverflow
	}

	return new(uint256.Int).Div(x, y), nil
}

// DivCeil x / y rounded up
func DivCeil(x, y *uint256.Int) (*uint256.Int, error) {
	q, err := Div(x, y)
	if err != nil {
		return nil, err
	}

	if !new(uint256.Int).Mod(x, y).IsZero() {
		return Add(q, uint256.NewInt(1))
	}

	return q, nil
}

// MulDiv x * y / d truncated, the product must fit 256 bits
func MulDiv(x, y, d *uint256.Int) (*uint256.Int, error) {
	p, err := Mul(x, y)
	if err != nil {
		return nil, err
	}

	return Div(p, d)
}

// RayMul a * b / RAY, truncated toward zero
func RayMul(a, b *uint256.Int) (*uint256.Int, error) {
	return MulDiv(a, b, Ray)
}

// RateToRay convert an annual rate in basis points to ray
func RateToRay(bps uint16) *uint256.Int {
	v, _ := MulDiv(uint256.NewInt(uint64(bps)), Ray, denominator)
	return v
}
