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

// Supply lock collateral of caller into custody and credit it
func (s *service) Supply(ctx context.Context, caller string, amount decimal.Decimal) (_ *core.UserReserve, err error) {
	defer observe(core.EventSupplied, time.Now(), &err)

	if err := validAmount(amount); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":  "supply",
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

	var rollback undo
	defer func() {
		if err != nil {
			rollback.run(ctx)
		}
	}()

	minted, err := s.custody.LockAndMint(ctx, caller, amount)
	if err != nil {
		log.WithError(err).Errorln("custody.LockAndMint")
		return nil, fmt.Errorf("lock and mint: %w", err)
	}

	rollback.push(func(ctx context.Context) error {
		return s.custody.ConfirmRedeem(ctx, caller, minted)
	})

	if minted.LessThan(amount) {
		log.Errorf("custody minted %s, less than %s", minted, amount)
		return nil, core.ErrCustodyShortfall
	}

	p.reserve.Collateral = p.reserve.Collateral.Add(amount)
	p.aggregate.Collateral = p.aggregate.Collateral.Add(amount)

	if err := s.commit(ctx, &core.Changeset{
		Reserve:   p.reserve,
		Aggregate: p.aggregate,
		Events:    []*core.Event{s.newEvent(ctx, core.EventSupplied, caller, caller, amount, p.reserve, nil)},
	}); err != nil {
		return nil, err
	}

	return p.reserve, nil
}

// Withdraw move collateral into the claimable balance, keeping the remaining debt covered
func (s *service) Withdraw(ctx context.Context, caller string, amount decimal.Decimal) (_ *core.UserReserve, err error) {
	defer observe(core.EventWithdrawalRequested, time.Now(), &err)

	if err := validAmount(amount); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":  "withdraw",
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

	// no debt, no price needed
	var q compound.Quote
	if p.reserve.Debt.IsPositive() {
		if q, err = s.quote(ctx); err != nil {
			log.WithError(err).Errorln("quote")
			return nil, err
		}
	}

	limit, err := compound.MaxWithdrawable(p.reserve, p.config.LiquidationThreshold, q)
	if err != nil {
		return nil, err
	}

	if amount.GreaterThan(limit) {
		log.Infof("exceeds max withdrawable %s", limit)
		return nil, core.ErrExceedsWithdrawLimit
	}

	p.reserve.Collateral = p.reserve.Collateral.Sub(amount)
	p.reserve.ClaimableCollateral = p.reserve.ClaimableCollateral.Add(amount)
	p.aggregate.Collateral = p.aggregate.Collateral.Sub(amount)
	p.aggregate.ClaimableCollateral = p.aggregate.ClaimableCollateral.Add(amount)

	data := core.NewEventData()
	data.Put(core.EventKeyInterest, interest)

	if err := s.commit(ctx, &core.Changeset{
		Reserve:   p.reserve,
		Aggregate: p.aggregate,
		Events:    []*core.Event{s.newEvent(ctx, core.EventWithdrawalRequested, caller, caller, amount, p.reserve, data)},
	}); err != nil {
		return nil, err
	}

	return p.reserve, nil
}

// ClaimCollateral release requested collateral to caller through custody
func (s *service) ClaimCollateral(ctx context.Context, caller string, amount decimal.Decimal) (_ *core.UserReserve, err error) {
	defer observe(core.EventCollateralClaimed, time.Now(), &err)

	if err := validAmount(amount); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":  "claim_collateral",
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

	if p.reserve.ClaimableCollateral.LessThan(amount) {
		return nil, core.ErrInsufficientClaimable
	}

	var rollback undo
	defer func() {
		if err != nil {
			rollback.run(ctx)
		}
	}()

	if err := s.custody.ConfirmRedeem(ctx, caller, amount); err != nil {
		log.WithError(err).Errorln("custody.ConfirmRedeem")
		return nil, fmt.Errorf("confirm redeem: %w", err)
	}

	rollback.push(func(ctx context.Context) error {
		_, err := s.custody.LockAndMint(ctx, caller, amount)
		return err
	})

	p.reserve.ClaimableCollateral = p.reserve.ClaimableCollateral.Sub(amount)
	p.aggregate.ClaimableCollateral = p.aggregate.ClaimableCollateral.Sub(amount)

	if err := s.commit(ctx, &core.Changeset{
		Reserve:   p.reserve,
		Aggregate: p.aggregate,
		Events:    []*core.Event{s.newEvent(ctx, core.EventCollateralClaimed, caller, caller, amount, p.reserve, nil)},
	}); err != nil {
		return nil, err
	}

	return p.reserve, nil
}
