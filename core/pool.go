package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Denominator basis points denominator for every rate and ratio
const Denominator = 10000

// PoolConfig pool wide defaults and capability handles
type PoolConfig struct {
	ID uint64 `sql:"PRIMARY_KEY" json:"-"`
	// 清算阈值 (bps) debt / collateral value above which a position is liquidatable
	LiquidationThreshold uint16 `json:"liquidation_threshold"`
	// 资金池年化利率 (bps), paid to the pool owner
	PoolInterestRate uint16 `json:"pool_interest_rate"`
	// 协议年化利率 (bps), paid to the protocol
	ProtocolInterestRate uint16 `json:"protocol_interest_rate"`
	// 抵押率 (bps) max borrowable fraction of collateral value
	LoanToValue     uint16    `json:"loan_to_value"`
	CollateralAsset string    `sql:"size:64" json:"collateral_asset"`
	LoanAsset       string    `sql:"size:64" json:"loan_asset"`
	Bridge          string    `sql:"size:64" json:"bridge"`
	Oracle          string    `sql:"size:64" json:"oracle"`
	LoanVault       string    `sql:"size:64" json:"loan_vault"`
	FeeVault        string    `sql:"size:64" json:"fee_vault"`
	Version         int64     `sql:"default:0" json:"version"`
	CreatedAt       time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// Validate reject out of range rates
func (c *PoolConfig) Validate() error {
	return validateRates(c.LiquidationThreshold, c.PoolInterestRate, c.ProtocolInterestRate, c.LoanToValue)
}

// UserPoolConfig per user snapshot of the pool defaults taken at create pool
type UserPoolConfig struct {
	UserID               string    `sql:"size:64;PRIMARY_KEY" json:"user_id"`
	Initialized          bool      `json:"initialized"`
	PoolInterestRate     uint16    `json:"pool_interest_rate"`
	ProtocolInterestRate uint16    `json:"protocol_interest_rate"`
	LoanToValue          uint16    `json:"loan_to_value"`
	LiquidationThreshold uint16    `json:"liquidation_threshold"`
	Version              int64     `sql:"default:0" json:"version"`
	CreatedAt            time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt            time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// NewUserPoolConfig snapshot the defaults of cfg
func NewUserPoolConfig(userID string, cfg *PoolConfig) *UserPoolConfig {
	return &UserPoolConfig{
		UserID:               userID,
		Initialized:          true,
		PoolInterestRate:     cfg.PoolInterestRate,
		ProtocolInterestRate: cfg.ProtocolInterestRate,
		LoanToValue:          cfg.LoanToValue,
		LiquidationThreshold: cfg.LiquidationThreshold,
	}
}

// Validate reject out of range rates
func (c *UserPoolConfig) Validate() error {
	return validateRates(c.LiquidationThreshold, c.PoolInterestRate, c.ProtocolInterestRate, c.LoanToValue)
}

func validateRates(threshold, poolRate, protocolRate, ltv uint16) error {
	for _, v := range []uint16{threshold, poolRate, protocolRate, ltv} {
		if v > Denominator {
			return ErrInvalidConfig
		}
	}

	if threshold == 0 || ltv > threshold {
		return ErrInvalidConfig
	}

	return nil
}

// Limits borrow and withdraw headroom of a user at the current price
type Limits struct {
	UserID          string          `json:"user_id"`
	Price           decimal.Decimal `json:"price"`
	PriceDecimals   uint8           `json:"price_decimals"`
	CollateralValue decimal.Decimal `json:"collateral_value"`
	MaxBorrowable   decimal.Decimal `json:"max_borrowable"`
	MaxWithdrawable decimal.Decimal `json:"max_withdrawable"`
	// Liquidatable debt exceeds collateral value times liquidation threshold
	Liquidatable bool `json:"liquidatable"`
}

// IPoolService pool ledger interface
type IPoolService interface {
	CreatePool(ctx context.Context, caller, userID string) (*UserReserve, error)
	Supply(ctx context.Context, caller string, amount decimal.Decimal) (*UserReserve, error)
	Borrow(ctx context.Context, caller string, amount decimal.Decimal) (*UserReserve, error)
	ClaimLoanAsset(ctx context.Context, caller string, amount decimal.Decimal) (*UserReserve, error)
	Repay(ctx context.Context, caller string, amount decimal.Decimal) (*UserReserve, error)
	Withdraw(ctx context.Context, caller string, amount decimal.Decimal) (*UserReserve, error)
	ClaimCollateral(ctx context.Context, caller string, amount decimal.Decimal) (*UserReserve, error)
	Liquidate(ctx context.Context, caller, userID string, collateralDecrease, debtDecrease decimal.Decimal) (*UserReserve, error)
	ClaimProtocolEarnings(ctx context.Context, caller string) (decimal.Decimal, error)

	SetPoolConfig(ctx context.Context, caller string, cfg *PoolConfig) error
	SetUserPoolConfig(ctx context.Context, caller, userID string, cfg *UserPoolConfig) error

	PoolConfig(ctx context.Context) (*PoolConfig, error)
	UserPoolConfig(ctx context.Context, userID string) (*UserPoolConfig, error)
	UserReserve(ctx context.Context, userID string) (*UserReserve, error)
	PoolReserve(ctx context.Context) (*PoolReserve, error)
	ProtocolProfit(ctx context.Context) (*ProtocolProfit, error)
	Limits(ctx context.Context, userID string) (*Limits, error)
	Events(ctx context.Context, userID string, fromID int64, limit int) ([]*Event, error)
}
