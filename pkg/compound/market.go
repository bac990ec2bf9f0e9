package compound

import (
	"poolmanager/core"
	ray "poolmanager/internal/compound"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Interest accrued by one accrual step
type Interest struct {
	ForPool     decimal.Decimal `json:"for_pool"`
	ForProtocol decimal.Decimal `json:"for_protocol"`
}

// Total interest added to the debt
func (i Interest) Total() decimal.Decimal {
	return i.ForPool.Add(i.ForProtocol)
}

// AccrueInterest compound the debt of reserve up to now with the user's snapshotted rates
//
// pool and protocol interest are both computed from the same pre-accrual debt.
// reserve is left untouched when an error is returned.
func AccrueInterest(reserve *core.UserReserve, cfg *core.UserPoolConfig, now int64) (Interest, error) {
	interest := Interest{ForPool: decimal.Zero, ForProtocol: decimal.Zero}
	if now <= reserve.LastAccrualTimestamp {
		return interest, nil
	}

	elapsed := uint64(now - reserve.LastAccrualTimestamp)

	debt, err := ray.FromDecimal(reserve.Debt)
	if err != nil {
		return interest, err
	}

	debtToProtocol, err := ray.FromDecimal(reserve.DebtToProtocol)
	if err != nil {
		return interest, err
	}

	forPool, err := growth(debt, cfg.PoolInterestRate, elapsed)
	if err != nil {
		return interest, err
	}

	forProtocol, err := growth(debt, cfg.ProtocolInterestRate, elapsed)
	if err != nil {
		return interest, err
	}

	if debt, err = ray.Add(debt, forPool, forProtocol); err != nil {
		return interest, err
	}

	if debtToProtocol, err = ray.Add(debtToProtocol, forProtocol); err != nil {
		return interest, err
	}

	reserve.Debt = ray.ToDecimal(debt)
	reserve.DebtToProtocol = ray.ToDecimal(debtToProtocol)
	reserve.LastAccrualTimestamp = now

	interest.ForPool = ray.ToDecimal(forPool)
	interest.ForProtocol = ray.ToDecimal(forProtocol)
	return interest, nil
}

func growth(debt *uint256.Int, rate uint16, elapsed uint64) (*uint256.Int, error) {
	if debt.IsZero() || rate == 0 {
		return new(uint256.Int), nil
	}

	factor, err := ray.CompoundedInterest(ray.RateToRay(rate), elapsed)
	if err != nil {
		return nil, err
	}

	return ray.GrowthInterest(debt, factor)
}
