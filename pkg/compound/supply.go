package compound

import (
	"poolmanager/core"
	ray "poolmanager/internal/compound"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// MaxWithdrawable collateral that can leave while the remaining debt stays covered at liquidationThreshold
//
// required collateral is rounded up so that withdrawing exactly the max keeps
// collateral value * liquidationThreshold >= debt * DENOMINATOR
func MaxWithdrawable(reserve *core.UserReserve, liquidationThreshold uint16, q Quote) (decimal.Decimal, error) {
	if !reserve.Debt.IsPositive() {
		return reserve.Collateral, nil
	}

	price, err := q.price()
	if err != nil {
		return decimal.Zero, err
	}

	debt, err := ray.FromDecimal(reserve.Debt)
	if err != nil {
		return decimal.Zero, err
	}

	collateral, err := ray.FromDecimal(reserve.Collateral)
	if err != nil {
		return decimal.Zero, err
	}

	debtInCollateral, err := ray.ToCollateralCeil(debt, price, q.Decimals)
	if err != nil {
		return decimal.Zero, err
	}

	scaled, err := ray.Mul(debtInCollateral, uint256.NewInt(core.Denominator))
	if err != nil {
		return decimal.Zero, err
	}

	required, err := ray.DivCeil(scaled, uint256.NewInt(uint64(liquidationThreshold)))
	if err != nil {
		return decimal.Zero, err
	}

	if !collateral.Gt(required) {
		return decimal.Zero, nil
	}

	return ray.ToDecimal(new(uint256.Int).Sub(collateral, required)), nil
}
