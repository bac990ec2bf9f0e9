package pool

import (
	"context"

	"poolmanager/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

// singleton rows share this primary key
const singletonID = 1

type poolStore struct {
	db *db.DB
}

// New new pool store
func New(db *db.DB) core.IPoolStore {
	return &poolStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		for _, model := range []interface{}{
			core.PoolConfig{},
			core.UserPoolConfig{},
			core.UserReserve{},
			core.PoolReserve{},
			core.ProtocolProfit{},
			core.Event{},
		} {
			if err := db.Update().AutoMigrate(model).Error; err != nil {
				return err
			}
		}

		tx := db.Update().Model(core.Event{})
		if err := tx.AddUniqueIndex("idx_pool_events_trace_id", "trace_id").Error; err != nil {
			return err
		}

		if err := tx.AddIndex("idx_pool_events_user_id", "user_id").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *poolStore) FindConfig(ctx context.Context) (*core.PoolConfig, error) {
	var cfg core.PoolConfig
	if err := s.db.View().Where("id = ?", singletonID).First(&cfg).Error; err != nil {
		if store.IsErrNotFound(err) {
			return &core.PoolConfig{ID: singletonID}, nil
		}

		return nil, err
	}

	return &cfg, nil
}

func (s *poolStore) FindUserConfig(ctx context.Context, userID string) (*core.UserPoolConfig, error) {
	var cfg core.UserPoolConfig
	if err := s.db.View().Where("user_id = ?", userID).First(&cfg).Error; err != nil {
		if store.IsErrNotFound(err) {
			return &core.UserPoolConfig{UserID: userID}, nil
		}

		return nil, err
	}

	return &cfg, nil
}

func (s *poolStore) FindUserReserve(ctx context.Context, userID string) (*core.UserReserve, error) {
	var reserve core.UserReserve
	if err := s.db.View().Where("user_id = ?", userID).First(&reserve).Error; err != nil {
		if store.IsErrNotFound(err) {
			return core.NewUserReserve(userID), nil
		}

		return nil, err
	}

	return &reserve, nil
}

func (s *poolStore) FindAggregate(ctx context.Context) (*core.PoolReserve, error) {
	var reserve core.PoolReserve
	if err := s.db.View().Where("id = ?", singletonID).First(&reserve).Error; err != nil {
		if store.IsErrNotFound(err) {
			return core.NewPoolReserve(singletonID), nil
		}

		return nil, err
	}

	return &reserve, nil
}

func (s *poolStore) FindProfit(ctx context.Context) (*core.ProtocolProfit, error) {
	var profit core.ProtocolProfit
	if err := s.db.View().Where("id = ?", singletonID).First(&profit).Error; err != nil {
		if store.IsErrNotFound(err) {
			return core.NewProtocolProfit(singletonID), nil
		}

		return nil, err
	}

	return &profit, nil
}

func (s *poolStore) ListUserReserves(ctx context.Context, fromUserID string, limit int) ([]*core.UserReserve, error) {
	var reserves []*core.UserReserve
	if err := s.db.View().Where("user_id > ?", fromUserID).Order("user_id").Limit(limit).Find(&reserves).Error; err != nil {
		return nil, err
	}

	return reserves, nil
}

func (s *poolStore) ListEvents(ctx context.Context, userID string, fromID int64, limit int) ([]*core.Event, error) {
	query := s.db.View().Where("id > ?", fromID)
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	var events []*core.Event
	if err := query.Order("id").Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (s *poolStore) Commit(ctx context.Context, cs *core.Changeset) error {
	return s.db.Tx(func(tx *db.DB) error {
		if cfg := cs.Config; cfg != nil {
			if err := saveConfig(tx, cfg); err != nil {
				return err
			}
		}

		if cfg := cs.UserConfig; cfg != nil {
			if err := saveUserConfig(tx, cfg); err != nil {
				return err
			}
		}

		if reserve := cs.Reserve; reserve != nil {
			if err := saveUserReserve(tx, reserve); err != nil {
				return err
			}
		}

		if aggregate := cs.Aggregate; aggregate != nil {
			if err := saveAggregate(tx, aggregate); err != nil {
				return err
			}
		}

		if profit := cs.Profit; profit != nil {
			if err := saveProfit(tx, profit); err != nil {
				return err
			}
		}

		for _, event := range cs.Events {
			if err := tx.Update().Create(event).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// update bump the version of a row read at version, a zero version inserts instead
func update(tx *db.DB, model interface{}, version *int64, where string, key interface{}, values map[string]interface{}) error {
	values["version"] = gorm.Expr("version + 1")
	r := tx.Update().Model(model).Where(where+" AND version = ?", key, *version).Updates(values)
	if r.Error != nil {
		return r.Error
	}

	if r.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	*version++
	return nil
}

func saveConfig(tx *db.DB, cfg *core.PoolConfig) error {
	cfg.ID = singletonID
	if cfg.Version == 0 {
		cfg.Version = 1
		return tx.Update().Create(cfg).Error
	}

	return update(tx, core.PoolConfig{}, &cfg.Version, "id = ?", cfg.ID, map[string]interface{}{
		"liquidation_threshold":  cfg.LiquidationThreshold,
		"pool_interest_rate":     cfg.PoolInterestRate,
		"protocol_interest_rate": cfg.ProtocolInterestRate,
		"loan_to_value":          cfg.LoanToValue,
		"collateral_asset":       cfg.CollateralAsset,
		"loan_asset":             cfg.LoanAsset,
		"bridge":                 cfg.Bridge,
		"oracle":                 cfg.Oracle,
		"loan_vault":             cfg.LoanVault,
		"fee_vault":              cfg.FeeVault,
	})
}

func saveUserConfig(tx *db.DB, cfg *core.UserPoolConfig) error {
	if cfg.Version == 0 {
		cfg.Version = 1
		return tx.Update().Create(cfg).Error
	}

	return update(tx, core.UserPoolConfig{}, &cfg.Version, "user_id = ?", cfg.UserID, map[string]interface{}{
		"initialized":            cfg.Initialized,
		"pool_interest_rate":     cfg.PoolInterestRate,
		"protocol_interest_rate": cfg.ProtocolInterestRate,
		"loan_to_value":          cfg.LoanToValue,
		"liquidation_threshold":  cfg.LiquidationThreshold,
	})
}

func saveUserReserve(tx *db.DB, reserve *core.UserReserve) error {
	if reserve.Version == 0 {
		reserve.Version = 1
		return tx.Update().Create(reserve).Error
	}

	return update(tx, core.UserReserve{}, &reserve.Version, "user_id = ?", reserve.UserID, map[string]interface{}{
		"last_accrual_timestamp": reserve.LastAccrualTimestamp,
		"collateral":             reserve.Collateral,
		"debt":                   reserve.Debt,
		"debt_to_protocol":       reserve.DebtToProtocol,
		"claimable_loan_asset":   reserve.ClaimableLoanAsset,
		"claimable_collateral":   reserve.ClaimableCollateral,
	})
}

func saveAggregate(tx *db.DB, reserve *core.PoolReserve) error {
	reserve.ID = singletonID
	if reserve.Version == 0 {
		reserve.Version = 1
		return tx.Update().Create(reserve).Error
	}

	return update(tx, core.PoolReserve{}, &reserve.Version, "id = ?", reserve.ID, map[string]interface{}{
		"collateral":           reserve.Collateral,
		"debt":                 reserve.Debt,
		"claimable_loan_asset": reserve.ClaimableLoanAsset,
		"claimable_collateral": reserve.ClaimableCollateral,
		"user_count":           reserve.UserCount,
	})
}

func saveProfit(tx *db.DB, profit *core.ProtocolProfit) error {
	profit.ID = singletonID
	if profit.Version == 0 {
		profit.Version = 1
		return tx.Update().Create(profit).Error
	}

	return update(tx, core.ProtocolProfit{}, &profit.Version, "id = ?", profit.ID, map[string]interface{}{
		"unclaimed":   profit.Unclaimed,
		"accumulated": profit.Accumulated,
	})
}
