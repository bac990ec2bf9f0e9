package compound

import (
	"poolmanager/core"

	"github.com/holiman/uint256"
)

// Decimals token and feed precisions of a pool
type Decimals struct {
	Loan       uint8
	Collateral uint8
	Oracle     uint8
}

// scales 10^loan and 10^collateral * 10^oracle
func (d Decimals) scales() (loanScale, collateralOracleScale *uint256.Int, err error) {
	if loanScale, err = Pow10(d.Loan); err != nil {
		return nil, nil, err
	}

	collateralScale, err := Pow10(d.Collateral)
	if err != nil {
		return nil, nil, err
	}

	oracleScale, err := Pow10(d.Oracle)
	if err != nil {
		return nil, nil, err
	}

	if collateralOracleScale, err = Mul(collateralScale, oracleScale); err != nil {
		return nil, nil, err
	}

	return loanScale, collateralOracleScale, nil
}

// ToLoanAsset value of collateral in loan asset units
//
// collateral * price * 10^loan / (10^collateral * 10^oracle)
func ToLoanAsset(collateral, price *uint256.Int, d Decimals) (*uint256.Int, error) {
	if price.IsZero() {
		return nil, core.ErrInvalidPrice
	}

	loanScale, collateralOracleScale, err := d.scales()
	if err != nil {
		return nil, err
	}

	num, err := Mul(collateral, price, loanScale)
	if err != nil {
		return nil, err
	}

	return Div(num, collateralOracleScale)
}

// ToCollateral amount of collateral worth loan
//
// loan * 10^collateral * 10^oracle / (price * 10^loan)
func ToCollateral(loan, price *uint256.Int, d Decimals) (*uint256.Int, error) {
	num, den, err := toCollateralFraction(loan, price, d)
	if err != nil {
		return nil, err
	}

	return Div(num, den)
}

// ToCollateralCeil same as ToCollateral, rounded up
func ToCollateralCeil(loan, price *uint256.Int, d Decimals) (*uint256.Int, error) {
	num, den, err := toCollateralFraction(loan, price, d)
	if err != nil {
		return nil, err
	}

	return DivCeil(num, den)
}

func toCollateralFraction(loan, price *uint256.Int, d Decimals) (num, den *uint256.Int, err error) {
	if price.IsZero() {
		return nil, nil, core.ErrInvalidPrice
	}

	loanScale, collateralOracleScale, err := d.scales()
	if err != nil {
		return nil, nil, err
	}

	if num, err = Mul(loan, collateralOracleScale); err != nil {
		return nil, nil, err
	}

	if den, err = Mul(price, loanScale); err != nil {
		return nil, nil, err
	}

	return num, den, nil
}

// CoversDebt collateral value * threshold >= debt * DENOMINATOR, cross multiplied without truncation
func CoversDebt(collateral, debt, price *uint256.Int, threshold uint16, d Decimals) (bool, error) {
	if price.IsZero() {
		return false, core.ErrInvalidPrice
	}

	loanScale, collateralOracleScale, err := d.scales()
	if err != nil {
		return false, err
	}

	lhs, err := Mul(collateral, price, loanScale, uint256.NewInt(uint64(threshold)))
	if err != nil {
		return false, err
	}

	rhs, err := Mul(debt, collateralOracleScale, denominator)
	if err != nil {
		return false, err
	}

	return !lhs.Lt(rhs), nil
}
