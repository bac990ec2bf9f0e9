package cmd

import (
	"context"
	"time"

	"poolmanager/core"
	"poolmanager/pkg/number"
	"poolmanager/service/asset"
	"poolmanager/service/bridge"
	"poolmanager/service/oracle"
	poolservice "poolmanager/service/pool"
	"poolmanager/service/vault"
	"poolmanager/store/memory"
	"poolmanager/store/pool"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/fox-one/pkg/store/db"
	propertystore "github.com/fox-one/pkg/store/property"
)

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

func provideConfig() *core.Config {
	return &cfg
}

// ---------------store-----------------------------------------

func providePropertyStore(db *db.DB) property.Store {
	return propertystore.New(db)
}

// providePoolStore the in-memory store when database is nil
func providePoolStore(database *db.DB) core.IPoolStore {
	if database == nil {
		return memory.New()
	}

	return pool.Cache(pool.New(database), time.Minute)
}

// ------------------service------------------------------------

func providePorts(ctx context.Context) (core.ICollateralCustody, core.ILoanAssetTransfer) {
	if cfg.Bridge.EndPoint != "" {
		b := bridge.New(bridge.Config{
			EndPoint:  cfg.Bridge.EndPoint,
			Token:     cfg.Bridge.Token,
			LoanAsset: cfg.Pool.LoanAsset,
			Ledger:    cfg.App.Ledger,
		})
		return b, b
	}

	v := vault.New(vault.Config{
		CollateralAsset: cfg.Pool.CollateralAsset,
		LockedAsset:     "locked-" + cfg.Pool.CollateralAsset,
		LoanAsset:       cfg.Pool.LoanAsset,
		Custody:         "custody",
		Pool:            "pool",
		Ledger:          cfg.App.Ledger,
		Seized:          "seized",
	})

	for _, b := range cfg.Genesis {
		if err := v.Deposit(ctx, b.Asset, b.Holder, number.Decimal(b.Amount)); err != nil {
			logger.FromContext(ctx).WithError(err).Panicln("vault.Deposit", b.Holder)
		}
	}

	return v, v
}

func provideOracle() core.IPriceOracle {
	if cfg.PriceOracle.EndPoint != "" {
		return oracle.New(cfg.PriceOracle)
	}

	return oracle.NewStatic(number.Decimal(cfg.PriceOracle.Price), cfg.PriceOracle.Decimals)
}

func provideAssets() core.IAssetDecimals {
	return asset.New(cfg.Assets)
}

func providePoolService(ctx context.Context, store core.IPoolStore) core.IPoolService {
	custody, transfer := providePorts(ctx)
	return poolservice.New(
		poolservice.Config{Ledger: cfg.App.Ledger},
		store,
		custody,
		transfer,
		provideOracle(),
		provideAssets(),
		provideConfig(),
	)
}

// seedPoolConfig store the configured pool defaults when no pool config exists yet
func seedPoolConfig(ctx context.Context, store core.IPoolStore) error {
	current, err := store.FindConfig(ctx)
	if err != nil {
		return err
	}

	if current.Version > 0 {
		return nil
	}

	p := cfg.Pool
	poolConfig := &core.PoolConfig{
		LiquidationThreshold: p.LiquidationThreshold,
		PoolInterestRate:     p.PoolInterestRate,
		ProtocolInterestRate: p.ProtocolInterestRate,
		LoanToValue:          p.LoanToValue,
		CollateralAsset:      p.CollateralAsset,
		LoanAsset:            p.LoanAsset,
		Bridge:               p.Bridge,
		Oracle:               p.Oracle,
		LoanVault:            p.LoanVault,
		FeeVault:             p.FeeVault,
	}

	if err := poolConfig.Validate(); err != nil {
		return err
	}

	return store.Commit(ctx, &core.Changeset{Config: poolConfig})
}

// provideStores open the database unless app.memory is set. The in-memory store is seeded
// with the pool defaults since it has no migrate step.
func provideStores(ctx context.Context) (*db.DB, core.IPoolStore) {
	if cfg.App.Memory {
		store := providePoolStore(nil)
		if err := seedPoolConfig(ctx, store); err != nil {
			logger.FromContext(ctx).WithError(err).Panicln("seed pool config")
		}

		return nil, store
	}

	database := provideDatabase()
	return database, providePoolStore(database)
}
