package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"poolmanager/core"
	"poolmanager/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// CheckpointKey property key of the scan cursor
const CheckpointKey = "monitor_checkpoint"

var (
	scanned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pool",
		Subsystem: "monitor",
		Name:      "scanned_total",
		Help:      "User reserves projected by the monitor.",
	})
	flagged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pool",
		Subsystem: "monitor",
		Name:      "liquidatable_total",
		Help:      "Positions found above the liquidation threshold.",
	})
)

// Config monitor config
type Config struct {
	Location string
	// Spec cron spec, default every 30s
	Spec string
	// Batch reserves per tick, default 100
	Batch int
	// Concurrency parallel projections, default 8
	Concurrency int
}

// Monitor pages through user reserves and flags liquidatable positions
type Monitor struct {
	worker.BaseJob
	pools      core.IPoolService
	store      core.IPoolStore
	checkpoint Checkpoint
	batch      int
	limit      int
}

// New new monitor worker
func New(
	cfg Config,
	pools core.IPoolService,
	store core.IPoolStore,
	checkpoint Checkpoint,
) *Monitor {
	m := Monitor{
		pools:      pools,
		store:      store,
		checkpoint: checkpoint,
		batch:      cfg.Batch,
		limit:      cfg.Concurrency,
	}

	if m.batch <= 0 {
		m.batch = 100
	}

	if m.limit <= 0 {
		m.limit = 8
	}

	spec := cfg.Spec
	if spec == "" {
		spec = "@every 30s"
	}

	l, err := time.LoadLocation(cfg.Location)
	if err != nil {
		l = time.UTC
	}

	m.Name = "monitor"
	m.Cron = cron.New(cron.WithLocation(l))
	if _, err := m.Cron.AddFunc(spec, m.Run); err != nil {
		panic(err)
	}

	m.OnWork = func() error {
		_, err := m.Scan(context.Background())
		return err
	}

	return &m
}

// Scan project one page of reserves after the checkpoint and return the liquidatable ones.
// The cursor wraps to the beginning once the last page is done.
func (m *Monitor) Scan(ctx context.Context) ([]*core.Limits, error) {
	log := logger.FromContext(ctx).WithField("worker", "monitor")

	cursor, err := m.checkpoint.Load(ctx)
	if err != nil {
		log.WithError(err).Errorln("checkpoint.Load", CheckpointKey)
		return nil, err
	}

	reserves, err := m.store.ListUserReserves(ctx, cursor, m.batch)
	if err != nil {
		log.WithError(err).Errorln("store.ListUserReserves")
		return nil, err
	}

	if len(reserves) == 0 {
		if cursor == "" {
			return nil, errors.New("EOF")
		}

		return nil, m.checkpoint.Save(ctx, "")
	}

	var (
		mux    sync.Mutex
		result []*core.Limits
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.limit)

	for _, reserve := range reserves {
		if !reserve.Debt.IsPositive() {
			continue
		}

		userID := reserve.UserID
		g.Go(func() error {
			limits, err := m.pools.Limits(gctx, userID)
			if err != nil {
				log.WithError(err).WithField("user", userID).Errorln("pools.Limits")
				return err
			}

			scanned.Inc()
			if !limits.Liquidatable {
				return nil
			}

			flagged.Inc()
			log.WithFields(logrus.Fields{
				"user":             userID,
				"collateral_value": limits.CollateralValue,
			}).Warnln("position is liquidatable")

			mux.Lock()
			result = append(result, limits)
			mux.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	next := reserves[len(reserves)-1].UserID
	if len(reserves) < m.batch {
		next = ""
	}

	if err := m.checkpoint.Save(ctx, next); err != nil {
		log.WithError(err).Errorln("checkpoint.Save", CheckpointKey)
		return nil, err
	}

	return result, nil
}
