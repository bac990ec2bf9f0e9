package pool

import (
	"context"
	"errors"
	"testing"

	"poolmanager/core"
	"poolmanager/service/asset"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conflictStore fails every commit while conflict is set, as a concurrent writer would
type conflictStore struct {
	core.IPoolStore
	conflict bool
}

func (s *conflictStore) Commit(ctx context.Context, cs *core.Changeset) error {
	if s.conflict {
		return db.ErrOptimisticLock
	}

	return s.IPoolStore.Commit(ctx, cs)
}

// downTransfer rejects transfers out of the ledger to one destination
type downTransfer struct {
	core.ILoanAssetTransfer
	dst string
}

func (t downTransfer) Transfer(ctx context.Context, dst string, amount decimal.Decimal) error {
	if dst == t.dst {
		return errors.New("fee vault down")
	}

	return t.ILoanAssetTransfer.Transfer(ctx, dst, amount)
}

type burnDown struct {
	core.ICollateralCustody
}

func (c burnDown) Burn(ctx context.Context, amount decimal.Decimal) error {
	return errors.New("custody down")
}

func (s *suite) service(store core.IPoolStore, custody core.ICollateralCustody, transfer core.ILoanAssetTransfer) core.IPoolService {
	roles := &core.Config{Admins: []string{admin}, Liquidators: []string{liquidator}}
	assets := asset.New(core.Assets{Decimals: map[string]uint8{"btc": 8, "usdt": 6}})
	return New(Config{Ledger: ledger, Clock: s.clock}, store, custody, transfer, s.oracle, assets, roles)
}

func TestRepayUndoneWhenFeeTransferFails(t *testing.T) {
	s := newSuite(t)
	s.join(t, alice, 1e8)

	_, err := s.svc.Supply(s.ctx, alice, d(1e8))
	require.Nil(t, err)
	_, err = s.svc.Borrow(s.ctx, alice, d(10_000*1e6))
	require.Nil(t, err)

	paid := s.vault.Balance("usdt", alice)

	svc := s.service(s.store, s.vault, downTransfer{ILoanAssetTransfer: s.vault, dst: feeVault})
	_, err = svc.Repay(s.ctx, alice, d(5000*1e6))
	assert.Error(t, err)

	assert.Equal(t, paid.String(), s.vault.Balance("usdt", alice).String(), "repayment sent back")
	assert.True(t, s.vault.Balance("usdt", ledger).IsZero())
	assert.True(t, s.vault.Balance("usdt", feeVault).IsZero())
	assert.Equal(t, "10000000000", s.stored(t, alice).Debt.String())

	amount, err := s.svc.ClaimProtocolEarnings(s.ctx, admin)
	require.Nil(t, err)
	assert.True(t, amount.IsZero(), "nothing left in the ledger to sweep")
}

func TestClaimLoanAssetUndoneWhenCommitFails(t *testing.T) {
	s := newSuite(t)
	s.join(t, alice, 1e8)

	_, err := s.svc.Supply(s.ctx, alice, d(1e8))
	require.Nil(t, err)
	_, err = s.svc.Borrow(s.ctx, alice, d(1000*1e6))
	require.Nil(t, err)

	store := &conflictStore{IPoolStore: s.store, conflict: true}
	svc := s.service(store, s.vault, s.vault)

	before := s.vault.Balance("usdt", alice)
	vaultBefore := s.vault.Balance("usdt", loanVault)

	_, err = svc.ClaimLoanAsset(s.ctx, alice, d(1000*1e6))
	assert.ErrorIs(t, err, db.ErrOptimisticLock)
	assert.Equal(t, before.String(), s.vault.Balance("usdt", alice).String())
	assert.Equal(t, vaultBefore.String(), s.vault.Balance("usdt", loanVault).String())
	assert.Equal(t, "1000000000", s.stored(t, alice).ClaimableLoanAsset.String())

	// paid out once the conflict is gone, and only once
	store.conflict = false
	_, err = svc.ClaimLoanAsset(s.ctx, alice, d(1000*1e6))
	require.Nil(t, err)
	_, err = svc.ClaimLoanAsset(s.ctx, alice, d(1000*1e6))
	assert.ErrorIs(t, err, core.ErrInsufficientClaimable)
	assert.Equal(t, d(1000*1e6).String(), s.vault.Balance("usdt", alice).Sub(before).String())
}

func TestSupplyUndoneWhenCommitFails(t *testing.T) {
	s := newSuite(t)
	s.join(t, alice, 1e8)

	svc := s.service(&conflictStore{IPoolStore: s.store, conflict: true}, s.vault, s.vault)
	_, err := svc.Supply(s.ctx, alice, d(1e8))
	assert.ErrorIs(t, err, db.ErrOptimisticLock)

	assert.Equal(t, "100000000", s.vault.Balance("btc", alice).String())
	assert.True(t, s.vault.Balance("btc", "custody").IsZero())
	assert.True(t, s.vault.Balance("fbtc", "pool").IsZero())
}

func TestLiquidateRestoredWhenBurnFails(t *testing.T) {
	s := newSuite(t)
	s.join(t, alice, 1e8)

	_, err := s.svc.Supply(s.ctx, alice, d(1e8))
	require.Nil(t, err)
	_, err = s.svc.Borrow(s.ctx, alice, d(30_000*1e6))
	require.Nil(t, err)

	svc := s.service(s.store, burnDown{s.vault}, s.vault)
	_, err = svc.Liquidate(s.ctx, liquidator, alice, d(6e7), d(20_000*1e6))
	assert.Error(t, err)

	stored := s.stored(t, alice)
	assert.Equal(t, "100000000", stored.Collateral.String())
	assert.Equal(t, "30000000000", stored.Debt.String())
	assert.True(t, s.vault.Balance("btc", "seized").IsZero())

	aggregate, err := s.store.FindAggregate(s.ctx)
	require.Nil(t, err)
	assert.Equal(t, "100000000", aggregate.Collateral.String())
	assert.Equal(t, "30000000000", aggregate.Debt.String())

	events, err := s.svc.Events(s.ctx, alice, 0, 0)
	require.Nil(t, err)
	require.NotEmpty(t, events)
	last := events[len(events)-1]
	assert.Equal(t, core.EventLiquidationReverted, last.Action)
	assert.Equal(t, events[len(events)-2].TraceID, last.TraceID)
}
