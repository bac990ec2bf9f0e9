package pool

import (
	"context"
	"time"

	"poolmanager/core"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

// CreatePool initialize userID with a snapshot of the pool defaults
func (s *service) CreatePool(ctx context.Context, caller, userID string) (_ *core.UserReserve, err error) {
	defer observe(core.EventPoolCreated, time.Now(), &err)

	if err := s.requireRole(caller, core.RoleAdmin); err != nil {
		return nil, err
	}

	if userID == "" {
		return nil, core.ErrInvalidConfig
	}

	log := logger.FromContext(ctx).WithField("event", "create_pool").WithField("user", userID)
	ctx = traced(ctx, log)

	s.mux.Lock()
	defer s.mux.Unlock()

	current, err := s.store.FindUserConfig(ctx, userID)
	if err != nil {
		return nil, err
	}

	if current.Initialized {
		return nil, core.ErrPoolAlreadyInitialized
	}

	cfg, err := s.store.FindConfig(ctx)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Errorln("pool config not set")
		return nil, err
	}

	userCfg := core.NewUserPoolConfig(userID, cfg)
	userCfg.Version = current.Version

	reserve, err := s.store.FindUserReserve(ctx, userID)
	if err != nil {
		return nil, err
	}
	reserve.LastAccrualTimestamp = s.now()

	aggregate, err := s.store.FindAggregate(ctx)
	if err != nil {
		return nil, err
	}
	aggregate.UserCount++

	if err := s.commit(ctx, &core.Changeset{
		UserConfig: userCfg,
		Reserve:    reserve,
		Aggregate:  aggregate,
		Events:     []*core.Event{s.newEvent(ctx, core.EventPoolCreated, caller, userID, decimal.Zero, reserve, nil)},
	}); err != nil {
		return nil, err
	}

	log.Infoln("pool created")
	return reserve, nil
}

// SetPoolConfig replace the pool defaults and capability handles, existing users keep their snapshot
func (s *service) SetPoolConfig(ctx context.Context, caller string, cfg *core.PoolConfig) error {
	if err := s.requireRole(caller, core.RoleAdmin); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	current, err := s.store.FindConfig(ctx)
	if err != nil {
		return err
	}

	next := *cfg
	next.ID = current.ID
	next.Version = current.Version
	next.CreatedAt = current.CreatedAt

	if err := s.commit(ctx, &core.Changeset{Config: &next}); err != nil {
		return err
	}

	logger.FromContext(ctx).WithField("event", "set_pool_config").Infof("%+v", next)
	return nil
}

// SetUserPoolConfig re-set the rates of an initialized user
//
// debt is accrued at the old rates up to now before the new ones apply
func (s *service) SetUserPoolConfig(ctx context.Context, caller, userID string, cfg *core.UserPoolConfig) error {
	if err := s.requireRole(caller, core.RoleAdmin); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	p, err := s.loadPosition(ctx, userID)
	if err != nil {
		return err
	}

	if _, err := s.accrue(ctx, p); err != nil {
		return err
	}

	next := *p.config
	next.PoolInterestRate = cfg.PoolInterestRate
	next.ProtocolInterestRate = cfg.ProtocolInterestRate
	next.LoanToValue = cfg.LoanToValue
	next.LiquidationThreshold = cfg.LiquidationThreshold

	if err := s.commit(ctx, &core.Changeset{
		UserConfig: &next,
		Reserve:    p.reserve,
		Aggregate:  p.aggregate,
	}); err != nil {
		return err
	}

	logger.FromContext(ctx).WithField("event", "set_user_pool_config").Infof("%+v", next)
	return nil
}
