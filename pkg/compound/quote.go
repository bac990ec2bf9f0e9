package compound

import (
	"poolmanager/core"
	ray "poolmanager/internal/compound"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Quote oracle price of the collateral together with the decimals of the pool assets
type Quote struct {
	Price    decimal.Decimal `json:"price"`
	Decimals ray.Decimals    `json:"decimals"`
}

func (q Quote) price() (*uint256.Int, error) {
	if !q.Price.IsPositive() {
		return nil, core.ErrInvalidPrice
	}

	p, err := ray.FromDecimal(q.Price)
	if err != nil {
		return nil, err
	}

	if p.IsZero() {
		return nil, core.ErrInvalidPrice
	}

	return p, nil
}

// CollateralValue collateral of the reserve priced in the loan asset
func CollateralValue(reserve *core.UserReserve, q Quote) (decimal.Decimal, error) {
	price, err := q.price()
	if err != nil {
		return decimal.Zero, err
	}

	collateral, err := ray.FromDecimal(reserve.Collateral)
	if err != nil {
		return decimal.Zero, err
	}

	value, err := ray.ToLoanAsset(collateral, price, q.Decimals)
	if err != nil {
		return decimal.Zero, err
	}

	return ray.ToDecimal(value), nil
}
