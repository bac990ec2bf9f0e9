package pool

import (
	"context"
	"fmt"
	"time"

	"poolmanager/core"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Liquidate seize collateral and write off debt of userID by the caller supplied amounts
//
// the amounts are trusted, only going below zero is rejected
func (s *service) Liquidate(ctx context.Context, caller, userID string, collateralDecrease, debtDecrease decimal.Decimal) (_ *core.UserReserve, err error) {
	defer observe(core.EventLiquidated, time.Now(), &err)

	if err := s.requireRole(caller, core.RoleLiquidator); err != nil {
		return nil, err
	}

	for _, v := range []decimal.Decimal{collateralDecrease, debtDecrease} {
		if v.IsNegative() || !v.Equal(v.Truncate(0)) {
			return nil, core.ErrInvalidAmount
		}
	}

	if collateralDecrease.IsZero() && debtDecrease.IsZero() {
		return nil, core.ErrInvalidAmount
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event":               "liquidate",
		"liquidator":          caller,
		"user":                userID,
		"collateral_decrease": collateralDecrease,
		"debt_decrease":       debtDecrease,
	})
	ctx = traced(ctx, log)

	s.mux.Lock()
	defer s.mux.Unlock()

	p, err := s.loadPosition(ctx, userID)
	if err != nil {
		return nil, err
	}

	interest, err := s.accrue(ctx, p)
	if err != nil {
		return nil, err
	}

	// restored when the burn fails after the commit
	before, aggregateBefore := p.reserve.Clone(), p.aggregate.Clone()

	protocolDecrease, err := mulDiv(debtDecrease, p.reserve.DebtToProtocol, p.reserve.Debt)
	if err != nil {
		return nil, err
	}

	if p.reserve.Collateral, err = sub(p.reserve.Collateral, collateralDecrease); err != nil {
		log.Infoln("collateral decrease exceeds collateral")
		return nil, err
	}

	if p.reserve.Debt, err = sub(p.reserve.Debt, debtDecrease); err != nil {
		log.Infoln("debt decrease exceeds debt")
		return nil, err
	}

	if p.reserve.DebtToProtocol, err = sub(p.reserve.DebtToProtocol, protocolDecrease); err != nil {
		return nil, err
	}

	if p.aggregate.Collateral, err = sub(p.aggregate.Collateral, collateralDecrease); err != nil {
		return nil, err
	}

	if p.aggregate.Debt, err = sub(p.aggregate.Debt, debtDecrease); err != nil {
		return nil, err
	}

	data := core.NewEventData()
	data.Put(core.EventKeyInterest, interest)
	data.Put(core.EventKeyDebtDecrease, debtDecrease)

	if err := s.commit(ctx, &core.Changeset{
		Reserve:   p.reserve,
		Aggregate: p.aggregate,
		Events:    []*core.Event{s.newEvent(ctx, core.EventLiquidated, caller, userID, collateralDecrease, p.reserve, data)},
	}); err != nil {
		return nil, err
	}

	// burn has no inverse, a failed burn restores the committed position
	if collateralDecrease.IsPositive() {
		if err := s.custody.Burn(ctx, collateralDecrease); err != nil {
			log.WithError(err).Errorln("custody.Burn")
			s.restore(ctx, caller, before, aggregateBefore, p)
			return nil, fmt.Errorf("burn: %w", err)
		}
	}

	return p.reserve, nil
}

// restore write back the position as it was before a liquidation whose burn failed
func (s *service) restore(ctx context.Context, caller string, reserve *core.UserReserve, aggregate *core.PoolReserve, committed *position) {
	reserve.Version = committed.reserve.Version
	aggregate.Version = committed.aggregate.Version

	if err := s.commit(context.WithoutCancel(ctx), &core.Changeset{
		Reserve:   reserve,
		Aggregate: aggregate,
		Events:    []*core.Event{s.newEvent(ctx, core.EventLiquidationReverted, caller, reserve.UserID, decimal.Zero, reserve, nil)},
	}); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("restore liquidated position failed, needs reconciliation")
	}
}

// ClaimProtocolEarnings send the whole loan asset balance of the ledger to the admin
func (s *service) ClaimProtocolEarnings(ctx context.Context, caller string) (_ decimal.Decimal, err error) {
	defer observe(core.EventProtocolEarningsClaimed, time.Now(), &err)

	if err := s.requireRole(caller, core.RoleAdmin); err != nil {
		return decimal.Zero, err
	}

	log := logger.FromContext(ctx).WithFields(logrus.Fields{
		"event": "claim_protocol_earnings",
		"admin": caller,
	})
	ctx = traced(ctx, log)

	s.mux.Lock()
	defer s.mux.Unlock()

	profit, err := s.store.FindProfit(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := s.transfer.BalanceOf(ctx, s.ledger)
	if err != nil {
		log.WithError(err).Errorln("transfer.BalanceOf")
		return decimal.Zero, fmt.Errorf("ledger balance: %w", err)
	}

	var rollback undo
	defer func() {
		if err != nil {
			rollback.run(ctx)
		}
	}()

	if balance.IsPositive() {
		if err := s.transfer.Transfer(ctx, caller, balance); err != nil {
			log.WithError(err).Errorln("transfer.Transfer")
			return decimal.Zero, fmt.Errorf("transfer earnings: %w", err)
		}

		rollback.push(func(ctx context.Context) error {
			return s.transfer.TransferFrom(ctx, caller, s.ledger, balance)
		})
	}

	profit.Unclaimed = decimal.Zero

	if err := s.commit(ctx, &core.Changeset{
		Profit: profit,
		Events: []*core.Event{s.newEvent(ctx, core.EventProtocolEarningsClaimed, caller, "", balance, nil, nil)},
	}); err != nil {
		return decimal.Zero, err
	}

	log.Infof("claimed %s", balance)
	return balance, nil
}
