package compound

import (
	"github.com/holiman/uint256"
)

var (
	two   = uint256.NewInt(2)
	six   = uint256.NewInt(6)
	zero  = uint256.NewInt(0)
	unity = uint256.NewInt(1)

	yearPowerTwo   = new(uint256.Int).Mul(SecondsPerYear, SecondsPerYear)
	yearPowerThree = new(uint256.Int).Mul(yearPowerTwo, SecondsPerYear)
)

// CompoundedInterest growth factor in ray of an annual ray rate over elapsed seconds
//
// factor = 1 + r*t/Y + t*(t-1)*r^2/(2*Y^2) + t*(t-1)*(t-2)*r^3/(6*Y^3), Y seconds per year.
// Powers are taken on the annual rate, the division by Y^k comes last.
func CompoundedInterest(rate *uint256.Int, elapsed uint64) (*uint256.Int, error) {
	if elapsed == 0 {
		return Ray.Clone(), nil
	}

	exp := uint256.NewInt(elapsed)
	expMinusOne := new(uint256.Int).Sub(exp, unity)
	expMinusTwo := zero.Clone()
	if elapsed > 2 {
		expMinusTwo.Sub(exp, two)
	}

	ratePowerTwo, err := RayMul(rate, rate)
	if err != nil {
		return nil, err
	}

	ratePowerThree, err := RayMul(ratePowerTwo, rate)
	if err != nil {
		return nil, err
	}

	firstTerm, err := MulDiv(exp, rate, SecondsPerYear)
	if err != nil {
		return nil, err
	}

	secondTerm, err := Mul(exp, expMinusOne, ratePowerTwo)
	if err != nil {
		return nil, err
	}
	secondTerm.Div(secondTerm, new(uint256.Int).Mul(yearPowerTwo, two))

	thirdTerm, err := Mul(exp, expMinusOne, expMinusTwo, ratePowerThree)
	if err != nil {
		return nil, err
	}
	thirdTerm.Div(thirdTerm, new(uint256.Int).Mul(yearPowerThree, six))

	return Add(Ray, firstTerm, secondTerm, thirdTerm)
}

// LinearInterest simple interest in ray of an annual ray rate over elapsed seconds
func LinearInterest(rate *uint256.Int, elapsed uint64) (*uint256.Int, error) {
	return MulDiv(rate, uint256.NewInt(elapsed), SecondsPerYear)
}

// GrowthInterest interest accrued on amount: amount * factor / RAY - amount
func GrowthInterest(amount, factor *uint256.Int) (*uint256.Int, error) {
	grown, err := RayMul(amount, factor)
	if err != nil {
		return nil, err
	}

	return Sub(grown, amount)
}
