package pool

import (
	"context"
	"sync"

	"poolmanager/core"
	ray "poolmanager/internal/compound"
	"poolmanager/pkg/compound"
	"poolmanager/pkg/id"

	"github.com/facebookgo/clock"
	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Config pool service config
type Config struct {
	// Ledger account that receives repayments and keeps the protocol share
	Ledger string
	// Clock defaults to the wall clock
	Clock clock.Clock
}

type service struct {
	// single writer, held for the whole operation
	mux sync.Mutex

	ledger string
	clock  clock.Clock

	store    core.IPoolStore
	custody  core.ICollateralCustody
	transfer core.ILoanAssetTransfer
	oracle   core.IPriceOracle
	assets   core.IAssetDecimals
	roles    core.IAuthorizer
}

// New new pool ledger service
func New(
	cfg Config,
	store core.IPoolStore,
	custody core.ICollateralCustody,
	transfer core.ILoanAssetTransfer,
	oracle core.IPriceOracle,
	assets core.IAssetDecimals,
	roles core.IAuthorizer,
) core.IPoolService {
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}

	return &service{
		ledger:   cfg.Ledger,
		clock:    c,
		store:    store,
		custody:  custody,
		transfer: transfer,
		oracle:   oracle,
		assets:   assets,
		roles:    roles,
	}
}

// position rows of one user loaded for an operation
type position struct {
	config    *core.UserPoolConfig
	reserve   *core.UserReserve
	aggregate *core.PoolReserve
}

func (s *service) now() int64 {
	return s.clock.Now().Unix()
}

func (s *service) loadPosition(ctx context.Context, userID string) (*position, error) {
	cfg, err := s.store.FindUserConfig(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !cfg.Initialized {
		return nil, core.ErrPoolNotInitialized
	}

	reserve, err := s.store.FindUserReserve(ctx, userID)
	if err != nil {
		return nil, err
	}

	aggregate, err := s.store.FindAggregate(ctx)
	if err != nil {
		return nil, err
	}

	return &position{
		config:    cfg,
		reserve:   reserve,
		aggregate: aggregate,
	}, nil
}

// accrue compound the user's debt to now, the aggregate debt grows by the same interest
func (s *service) accrue(ctx context.Context, p *position) (compound.Interest, error) {
	interest, err := compound.AccrueInterest(p.reserve, p.config, s.now())
	if err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("accrue interest")
		return interest, err
	}

	p.aggregate.Debt = p.aggregate.Debt.Add(interest.Total())
	return interest, nil
}

func (s *service) quote(ctx context.Context) (compound.Quote, error) {
	var q compound.Quote

	cfg, err := s.store.FindConfig(ctx)
	if err != nil {
		return q, err
	}

	if q.Price, err = s.oracle.GetPrice(ctx); err != nil {
		return q, err
	}

	if !q.Price.IsPositive() {
		return q, core.ErrInvalidPrice
	}

	if q.Decimals.Oracle, err = s.oracle.GetPriceDecimals(ctx); err != nil {
		return q, err
	}

	if q.Decimals.Loan, err = s.assets.DecimalsOf(ctx, cfg.LoanAsset); err != nil {
		return q, err
	}

	if q.Decimals.Collateral, err = s.assets.DecimalsOf(ctx, cfg.CollateralAsset); err != nil {
		return q, err
	}

	return q, nil
}

// traced tag ctx with a fresh trace id shared by the event and the port calls of one operation
func traced(ctx context.Context, log *logrus.Entry) context.Context {
	traceID := id.GenTraceID()
	ctx = id.WithTraceID(ctx, traceID)
	return logger.WithContext(ctx, log.WithField("trace", traceID))
}

func (s *service) newEvent(ctx context.Context, action core.EventAction, actor, userID string, amount decimal.Decimal, reserve *core.UserReserve, data core.EventData) *core.Event {
	if data == nil {
		data = core.NewEventData()
	}

	data.PutReserve(reserve)

	event := &core.Event{
		TraceID:   id.TraceIDFromContext(ctx),
		Action:    action,
		Actor:     actor,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: s.clock.Now(),
	}
	if event.TraceID == "" {
		event.TraceID = id.GenTraceID()
	}

	event.SetData(data)
	return event
}

func (s *service) commit(ctx context.Context, cs *core.Changeset) error {
	if err := s.store.Commit(ctx, cs); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("store.Commit")
		return err
	}

	return nil
}

// validAmount positive integer amount in raw units
func validAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !amount.Equal(amount.Truncate(0)) {
		return core.ErrInvalidAmount
	}

	return nil
}

// mulDiv amount * num / den truncated, zero when den is zero
func mulDiv(amount, num, den decimal.Decimal) (decimal.Decimal, error) {
	if den.IsZero() {
		return decimal.Zero, nil
	}

	a, err := ray.FromDecimal(amount)
	if err != nil {
		return decimal.Zero, err
	}

	n, err := ray.FromDecimal(num)
	if err != nil {
		return decimal.Zero, err
	}

	d, err := ray.FromDecimal(den)
	if err != nil {
		return decimal.Zero, err
	}

	v, err := ray.MulDiv(a, n, d)
	if err != nil {
		return decimal.Zero, err
	}

	return ray.ToDecimal(v), nil
}

// sub x - y, failing closed below zero
func sub(x, y decimal.Decimal) (decimal.Decimal, error) {
	if x.LessThan(y) {
		return decimal.Zero, core.ErrArithmeticOverflow
	}

	return x.Sub(y), nil
}
