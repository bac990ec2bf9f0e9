package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UserReserve per user ledger row
type UserReserve struct {
	UserID               string `sql:"size:64;PRIMARY_KEY" json:"user_id"`
	LastAccrualTimestamp int64  `json:"last_accrual_timestamp"`
	// 抵押物
	Collateral decimal.Decimal `sql:"type:decimal(64,0)" json:"collateral"`
	// 本金 + 利息
	Debt decimal.Decimal `sql:"type:decimal(64,0)" json:"debt"`
	// Debt 中属于协议的部分
	DebtToProtocol      decimal.Decimal `sql:"type:decimal(64,0)" json:"debt_to_protocol"`
	ClaimableLoanAsset  decimal.Decimal `sql:"type:decimal(64,0)" json:"claimable_loan_asset"`
	ClaimableCollateral decimal.Decimal `sql:"type:decimal(64,0)" json:"claimable_collateral"`
	Version             int64           `sql:"default:0" json:"version"`
	CreatedAt           time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// NewUserReserve empty reserve of a user
func NewUserReserve(userID string) *UserReserve {
	return &UserReserve{
		UserID:              userID,
		Collateral:          decimal.Zero,
		Debt:                decimal.Zero,
		DebtToProtocol:      decimal.Zero,
		ClaimableLoanAsset:  decimal.Zero,
		ClaimableCollateral: decimal.Zero,
	}
}

// Clone copy of the reserve, decimals are immutable values
func (r *UserReserve) Clone() *UserReserve {
	c := *r
	return &c
}

// PoolReserve aggregate of all user reserves
type PoolReserve struct {
	ID                  uint64          `sql:"PRIMARY_KEY" json:"-"`
	Collateral          decimal.Decimal `sql:"type:decimal(64,0)" json:"collateral"`
	Debt                decimal.Decimal `sql:"type:decimal(64,0)" json:"debt"`
	ClaimableLoanAsset  decimal.Decimal `sql:"type:decimal(64,0)" json:"claimable_loan_asset"`
	ClaimableCollateral decimal.Decimal `sql:"type:decimal(64,0)" json:"claimable_collateral"`
	UserCount           int64           `json:"user_count"`
	Version             int64           `sql:"default:0" json:"version"`
	CreatedAt           time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// NewPoolReserve empty aggregate
func NewPoolReserve(id uint64) *PoolReserve {
	return &PoolReserve{
		ID:                  id,
		Collateral:          decimal.Zero,
		Debt:                decimal.Zero,
		ClaimableLoanAsset:  decimal.Zero,
		ClaimableCollateral: decimal.Zero,
	}
}

// Clone copy of the aggregate
func (r *PoolReserve) Clone() *PoolReserve {
	c := *r
	return &c
}

// ProtocolProfit protocol share of repaid interest
type ProtocolProfit struct {
	ID          uint64          `sql:"PRIMARY_KEY" json:"-"`
	Unclaimed   decimal.Decimal `sql:"type:decimal(64,0)" json:"unclaimed"`
	Accumulated decimal.Decimal `sql:"type:decimal(64,0)" json:"accumulated"`
	Version     int64           `sql:"default:0" json:"version"`
	CreatedAt   time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// NewProtocolProfit empty profit
func NewProtocolProfit(id uint64) *ProtocolProfit {
	return &ProtocolProfit{
		ID:          id,
		Unclaimed:   decimal.Zero,
		Accumulated: decimal.Zero,
	}
}

// Clone copy of the profit
func (p *ProtocolProfit) Clone() *ProtocolProfit {
	c := *p
	return &c
}

// Changeset rows written by one ledger operation, committed atomically
type Changeset struct {
	Config     *PoolConfig
	UserConfig *UserPoolConfig
	Reserve    *UserReserve
	Aggregate  *PoolReserve
	Profit     *ProtocolProfit
	Events     []*Event
}

// IPoolStore pool ledger store interface
//
// Find methods return a zero value row (Version == 0) when nothing is stored yet.
type IPoolStore interface {
	FindConfig(ctx context.Context) (*PoolConfig, error)
	FindUserConfig(ctx context.Context, userID string) (*UserPoolConfig, error)
	FindUserReserve(ctx context.Context, userID string) (*UserReserve, error)
	FindAggregate(ctx context.Context) (*PoolReserve, error)
	FindProfit(ctx context.Context) (*ProtocolProfit, error)
	// ListUserReserves reserves ordered by user id, strictly after fromUserID
	ListUserReserves(ctx context.Context, fromUserID string, limit int) ([]*UserReserve, error)
	ListEvents(ctx context.Context, userID string, fromID int64, limit int) ([]*Event, error)
	// Commit write every non nil row of cs in one transaction, rejecting stale versions
	Commit(ctx context.Context, cs *Changeset) error
}
