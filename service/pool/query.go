package pool

import (
	"context"

	"poolmanager/core"
	"poolmanager/pkg/compound"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 500
)

func (s *service) PoolConfig(ctx context.Context) (*core.PoolConfig, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.store.FindConfig(ctx)
}

func (s *service) UserPoolConfig(ctx context.Context, userID string) (*core.UserPoolConfig, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.store.FindUserConfig(ctx, userID)
}

// UserReserve reserve with interest projected to now, nothing is written
func (s *service) UserReserve(ctx context.Context, userID string) (*core.UserReserve, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.projectedReserve(ctx, userID)
}

func (s *service) projectedReserve(ctx context.Context, userID string) (*core.UserReserve, error) {
	cfg, err := s.store.FindUserConfig(ctx, userID)
	if err != nil {
		return nil, err
	}

	reserve, err := s.store.FindUserReserve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cfg.Initialized {
		return reserve, nil
	}

	if _, err := compound.AccrueInterest(reserve, cfg, s.now()); err != nil {
		return nil, err
	}

	return reserve, nil
}

func (s *service) PoolReserve(ctx context.Context) (*core.PoolReserve, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.store.FindAggregate(ctx)
}

func (s *service) ProtocolProfit(ctx context.Context) (*core.ProtocolProfit, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	return s.store.FindProfit(ctx)
}

// Limits borrow and withdraw headroom of userID at the current oracle price
func (s *service) Limits(ctx context.Context, userID string) (*core.Limits, error) {
	s.mux.Lock()
	defer s.mux.Unlock()

	cfg, err := s.store.FindUserConfig(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cfg.Initialized {
		return nil, core.ErrPoolNotInitialized
	}

	reserve, err := s.projectedReserve(ctx, userID)
	if err != nil {
		return nil, err
	}

	q, err := s.quote(ctx)
	if err != nil {
		return nil, err
	}

	limits := &core.Limits{
		UserID:        userID,
		Price:         q.Price,
		PriceDecimals: q.Decimals.Oracle,
	}

	if limits.CollateralValue, err = compound.CollateralValue(reserve, q); err != nil {
		return nil, err
	}

	if limits.MaxBorrowable, err = compound.MaxBorrowable(reserve, cfg.LoanToValue, q); err != nil {
		return nil, err
	}

	if limits.MaxWithdrawable, err = compound.MaxWithdrawable(reserve, cfg.LiquidationThreshold, q); err != nil {
		return nil, err
	}

	if limits.Liquidatable, err = compound.Liquidatable(reserve, cfg.LiquidationThreshold, q); err != nil {
		return nil, err
	}

	return limits, nil
}

func (s *service) Events(ctx context.Context, userID string, fromID int64, limit int) ([]*core.Event, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}

	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	return s.store.ListEvents(ctx, userID, fromID, limit)
}
