package compound

import (
	"poolmanager/core"
	ray "poolmanager/internal/compound"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// MaxBorrowable collateral value * loanToValue / DENOMINATOR - debt, zero when already over the limit
func MaxBorrowable(reserve *core.UserReserve, loanToValue uint16, q Quote) (decimal.Decimal, error) {
	value, err := CollateralValue(reserve, q)
	if err != nil {
		return decimal.Zero, err
	}

	v, err := ray.FromDecimal(value)
	if err != nil {
		return decimal.Zero, err
	}

	limit, err := ray.MulDiv(v, uint256.NewInt(uint64(loanToValue)), uint256.NewInt(core.Denominator))
	if err != nil {
		return decimal.Zero, err
	}

	debt, err := ray.FromDecimal(reserve.Debt)
	if err != nil {
		return decimal.Zero, err
	}

	if !limit.Gt(debt) {
		return decimal.Zero, nil
	}

	return ray.ToDecimal(new(uint256.Int).Sub(limit, debt)), nil
}

// Liquidatable debt is no longer covered by collateral value * liquidationThreshold
func Liquidatable(reserve *core.UserReserve, liquidationThreshold uint16, q Quote) (bool, error) {
	if !reserve.Debt.IsPositive() {
		return false, nil
	}

	price, err := q.price()
	if err != nil {
		return false, err
	}

	collateral, err := ray.FromDecimal(reserve.Collateral)
	if err != nil {
		return false, err
	}

	debt, err := ray.FromDecimal(reserve.Debt)
	if err != nil {
		return false, err
	}

	covered, err := ray.CoversDebt(collateral, debt, price, liquidationThreshold, q.Decimals)
	if err != nil {
		return false, err
	}

	return !covered, nil
}
