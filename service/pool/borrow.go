package pool

import (
	"context"
	"fmt"
	"time"

	"poolmanager/core"
	"poolmanager/pkg/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Borrow add amount to the debt and the claimable loan asset, within the loan-to-value limit
func (s *service) Borrow(ctx context.Context, caller string, amount decimal.Decimal) (_ *core.UserReserve, err error) {
	defer observe(core.EventBorrowed, time.Now(), &err)

	if err := validAmount(amount); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":  "borrow",
		"user":   caller,
		"amount": amount,
	})
	ctx = traced(ctx, log)

	s.mux.Lock()
	defer s.mux.Unlock()

	p, err := s.loadPosition(ctx, caller)
	if err != nil {
		return nil, err
	}

	interest, err := s.accrue(ctx, p)
	if err != nil {
		return nil, err
	}

	q, err := s.quote(ctx)
	if err != nil {
		log.WithError(err).Errorln("quote")
		return nil, err
	}

	limit, err := compound.MaxBorrowable(p.reserve, p.config.LoanToValue, q)
	if err != nil {
		return nil, err
	}

	if amount.GreaterThan(limit) {
		log.Infof("exceeds max borrowable %s", limit)
		return nil, core.ErrExceedsLoanToValue
	}

	p.reserve.Debt = p.reserve.Debt.Add(amount)
	p.reserve.ClaimableLoanAsset = p.reserve.ClaimableLoanAsset.Add(amount)
	p.aggregate.Debt = p.aggregate.Debt.Add(amount)
	p.aggregate.ClaimableLoanAsset = p.aggregate.ClaimableLoanAsset.Add(amount)

	data := core.NewEventData()
	data.Put(core.EventKeyInterest, interest)

	if err := s.commit(ctx, &core.Changeset{
		Reserve:   p.reserve,
		Aggregate: p.aggregate,
		Events:    []*core.Event{s.newEvent(ctx, core.EventBorrowed, caller, caller, amount, p.reserve, data)},
	}); err != nil {
		return nil, err
	}

	return p.reserve, nil
}

// ClaimLoanAsset pay out borrowed loan asset from the loan vault
func (s *service) ClaimLoanAsset(ctx context.Context, caller string, amount decimal.Decimal) (_ *core.UserReserve, err error) {
	defer observe(core.EventLoanAssetClaimed, time.Now(), &err)

	if err := validAmount(amount); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":  "claim_loan_asset",
		"user":   caller,
		"amount": amount,
	})
	ctx = traced(ctx, log)

	s.mux.Lock()
	defer s.mux.Unlock()

	p, err := s.loadPosition(ctx, caller)
	if err != nil {
		return nil, err
	}

	if p.reserve.ClaimableLoanAsset.LessThan(amount) {
		return nil, core.ErrInsufficientClaimable
	}

	cfg, err := s.store.FindConfig(ctx)
	if err != nil {
		return nil, err
	}

	var rollback undo
	defer func() {
		if err != nil {
			rollback.run(ctx)
		}
	}()

	if err := s.transfer.TransferFrom(ctx, cfg.LoanVault, caller, amount); err != nil {
		log.WithError(err).Errorln("transfer.TransferFrom")
		return nil, fmt.Errorf("transfer from loan vault: %w", err)
	}

	rollback.push(func(ctx context.Context) error {
		return s.transfer.TransferFrom(ctx, caller, cfg.LoanVault, amount)
	})

	p.reserve.ClaimableLoanAsset = p.reserve.ClaimableLoanAsset.Sub(amount)
	p.aggregate.ClaimableLoanAsset = p.aggregate.ClaimableLoanAsset.Sub(amount)

	if err := s.commit(ctx, &core.Changeset{
		Reserve:   p.reserve,
		Aggregate: p.aggregate,
		Events:    []*core.Event{s.newEvent(ctx, core.EventLoanAssetClaimed, caller, caller, amount, p.reserve, nil)},
	}); err != nil {
		return nil, err
	}

	return p.reserve, nil
}

// Repay pay back debt, the protocol share stays with the ledger and the rest goes to the fee vault
//
// protocol share = effective * debtToProtocol / debt, truncated so the dust goes to the pool owner
func (s *service) Repay(ctx context.Context, caller string, amount decimal.Decimal) (_ *core.UserReserve, err error) {
	defer observe(core.EventRepaid, time.Now(), &err)

	if err := validAmount(amount); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":  "repay",
		"user":   caller,
		"amount": amount,
	})
	ctx = traced(ctx, log)

	s.mux.Lock()
	defer s.mux.Unlock()

	p, err := s.loadPosition(ctx, caller)
	if err != nil {
		return nil, err
	}

	interest, err := s.accrue(ctx, p)
	if err != nil {
		return nil, err
	}

	if !p.reserve.Debt.IsPositive() {
		log.Infoln("nothing to repay")
		return nil, core.ErrInvalidAmount
	}

	if amount.LessThanOrEqual(interest.Total()) {
		log.Infof("repay does not cover accrued interest %s", interest.Total())
		return nil, core.ErrInsufficientRepayAmount
	}

	effective := decimal.Min(amount, p.reserve.Debt)
	protocolShare, err := mulDiv(effective, p.reserve.DebtToProtocol, p.reserve.Debt)
	if err != nil {
		return nil, err
	}
	poolShare := effective.Sub(protocolShare)

	profit, err := s.store.FindProfit(ctx)
	if err != nil {
		return nil, err
	}

	cfg, err := s.store.FindConfig(ctx)
	if err != nil {
		return nil, err
	}

	var rollback undo
	defer func() {
		if err != nil {
			rollback.run(ctx)
		}
	}()

	if err := s.transfer.TransferFrom(ctx, caller, s.ledger, effective); err != nil {
		log.WithError(err).Errorln("transfer.TransferFrom")
		return nil, fmt.Errorf("transfer repayment: %w", err)
	}

	rollback.push(func(ctx context.Context) error {
		return s.transfer.Transfer(ctx, caller, effective)
	})

	if poolShare.IsPositive() {
		if err := s.transfer.Transfer(ctx, cfg.FeeVault, poolShare); err != nil {
			log.WithError(err).Errorln("transfer.Transfer")
			return nil, fmt.Errorf("transfer pool share: %w", err)
		}

		rollback.push(func(ctx context.Context) error {
			return s.transfer.TransferFrom(ctx, cfg.FeeVault, s.ledger, poolShare)
		})
	}

	p.reserve.Debt = p.reserve.Debt.Sub(effective)
	p.reserve.DebtToProtocol = p.reserve.DebtToProtocol.Sub(protocolShare)
	p.aggregate.Debt = p.aggregate.Debt.Sub(effective)
	profit.Unclaimed = profit.Unclaimed.Add(protocolShare)
	profit.Accumulated = profit.Accumulated.Add(protocolShare)

	data := core.NewEventData()
	data.Put(core.EventKeyInterest, interest)
	data.Put(core.EventKeyProtocolShare, protocolShare)

	if err := s.commit(ctx, &core.Changeset{
		Reserve:   p.reserve,
		Aggregate: p.aggregate,
		Profit:    profit,
		Events:    []*core.Event{s.newEvent(ctx, core.EventRepaid, caller, caller, effective, p.reserve, data)},
	}); err != nil {
		return nil, err
	}

	return p.reserve, nil
}
