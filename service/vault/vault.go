// Package vault in process token book implementing collateral custody and loan asset transfers
package vault

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientBalance holder balance lower than the moved amount
	ErrInsufficientBalance = errors.New("vault: insufficient balance")
	// ErrInvalidAmount negative amount
	ErrInvalidAmount = errors.New("vault: invalid amount")
)

// Config vault accounts and assets
type Config struct {
	CollateralAsset string `json:"collateral_asset"`
	// LockedAsset representation minted for locked collateral
	LockedAsset string `json:"locked_asset"`
	LoanAsset   string `json:"loan_asset"`
	// Custody holds the raw collateral while it is locked
	Custody string `json:"custody"`
	// Pool receives the locked representation
	Pool string `json:"pool"`
	// Ledger source of Transfer
	Ledger string `json:"ledger"`
	// Seized receives raw collateral of burned positions
	Seized string `json:"seized"`
}

// Vault balances per asset per holder
type Vault struct {
	cfg Config

	mux      sync.Mutex
	balances map[string]map[string]decimal.Decimal
}

// New new vault
func New(cfg Config) *Vault {
	return &Vault{
		cfg:      cfg,
		balances: map[string]map[string]decimal.Decimal{},
	}
}

// Deposit credit amount of asset to holder out of thin air
func (v *Vault) Deposit(ctx context.Context, asset, holder string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	v.mux.Lock()
	defer v.mux.Unlock()

	v.credit(asset, holder, amount)
	logger.FromContext(ctx).WithField("asset", asset).Debugf("vault: deposit %s to %s", amount, holder)
	return nil
}

// Balance balance of holder in asset
func (v *Vault) Balance(asset, holder string) decimal.Decimal {
	v.mux.Lock()
	defer v.mux.Unlock()

	return v.balanceOf(asset, holder)
}

// LockAndMint move collateral of from into custody and mint the locked representation to the pool
func (v *Vault) LockAndMint(ctx context.Context, from string, amount decimal.Decimal) (decimal.Decimal, error) {
	v.mux.Lock()
	defer v.mux.Unlock()

	if err := v.move(v.cfg.CollateralAsset, from, v.cfg.Custody, amount); err != nil {
		return decimal.Zero, err
	}

	v.credit(v.cfg.LockedAsset, v.cfg.Pool, amount)
	logger.FromContext(ctx).WithField("event", "lock").Debugf("vault: lock %s from %s", amount, from)
	return amount, nil
}

// ConfirmRedeem burn the locked representation and release raw collateral to to
func (v *Vault) ConfirmRedeem(ctx context.Context, to string, amount decimal.Decimal) error {
	v.mux.Lock()
	defer v.mux.Unlock()

	if err := v.debit(v.cfg.LockedAsset, v.cfg.Pool, amount); err != nil {
		return err
	}

	if err := v.move(v.cfg.CollateralAsset, v.cfg.Custody, to, amount); err != nil {
		v.credit(v.cfg.LockedAsset, v.cfg.Pool, amount)
		return err
	}

	logger.FromContext(ctx).WithField("event", "redeem").Debugf("vault: redeem %s to %s", amount, to)
	return nil
}

// Burn burn seized locked representation, the raw collateral goes to the seized account
func (v *Vault) Burn(ctx context.Context, amount decimal.Decimal) error {
	v.mux.Lock()
	defer v.mux.Unlock()

	if err := v.debit(v.cfg.LockedAsset, v.cfg.Pool, amount); err != nil {
		return err
	}

	if err := v.move(v.cfg.CollateralAsset, v.cfg.Custody, v.cfg.Seized, amount); err != nil {
		v.credit(v.cfg.LockedAsset, v.cfg.Pool, amount)
		return err
	}

	logger.FromContext(ctx).WithField("event", "burn").Debugf("vault: burn %s", amount)
	return nil
}

// TransferFrom move loan asset from src to dst
func (v *Vault) TransferFrom(ctx context.Context, src, dst string, amount decimal.Decimal) error {
	v.mux.Lock()
	defer v.mux.Unlock()

	return v.move(v.cfg.LoanAsset, src, dst, amount)
}

// Transfer move loan asset out of the ledger account
func (v *Vault) Transfer(ctx context.Context, dst string, amount decimal.Decimal) error {
	v.mux.Lock()
	defer v.mux.Unlock()

	return v.move(v.cfg.LoanAsset, v.cfg.Ledger, dst, amount)
}

// BalanceOf loan asset balance of holder
func (v *Vault) BalanceOf(ctx context.Context, holder string) (decimal.Decimal, error) {
	return v.Balance(v.cfg.LoanAsset, holder), nil
}

func (v *Vault) balanceOf(asset, holder string) decimal.Decimal {
	if book, ok := v.balances[asset]; ok {
		if b, ok := book[holder]; ok {
			return b
		}
	}

	return decimal.Zero
}

func (v *Vault) credit(asset, holder string, amount decimal.Decimal) {
	book, ok := v.balances[asset]
	if !ok {
		book = map[string]decimal.Decimal{}
		v.balances[asset] = book
	}

	book[holder] = v.balanceOf(asset, holder).Add(amount)
}

func (v *Vault) debit(asset, holder string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidAmount
	}

	if amount.IsZero() {
		return nil
	}

	balance := v.balanceOf(asset, holder)
	if balance.LessThan(amount) {
		return fmt.Errorf("%w: %s of %s has %s, needs %s", ErrInsufficientBalance, holder, asset, balance, amount)
	}

	v.balances[asset][holder] = balance.Sub(amount)
	return nil
}

func (v *Vault) move(asset, from, to string, amount decimal.Decimal) error {
	if err := v.debit(asset, from, amount); err != nil {
		return err
	}

	v.credit(asset, to, amount)
	return nil
}
