package core

import (
	"context"

	"github.com/shopspring/decimal"
)

// ICollateralCustody custody of the collateral asset and its locked representation
type ICollateralCustody interface {
	// LockAndMint pull amount of collateral from the user into custody and mint the
	// locked representation to the pool, returning the minted amount
	LockAndMint(ctx context.Context, from string, amount decimal.Decimal) (decimal.Decimal, error)
	// ConfirmRedeem redeem the locked representation and release raw collateral to the user
	ConfirmRedeem(ctx context.Context, to string, amount decimal.Decimal) error
	// Burn destroy seized locked representation
	Burn(ctx context.Context, amount decimal.Decimal) error
}

// ILoanAssetTransfer loan asset movements
type ILoanAssetTransfer interface {
	TransferFrom(ctx context.Context, src, dst string, amount decimal.Decimal) error
	// Transfer move amount out of the ledger account
	Transfer(ctx context.Context, dst string, amount decimal.Decimal) error
	BalanceOf(ctx context.Context, holder string) (decimal.Decimal, error)
}

// IPriceOracle collateral price denominated in the loan asset
type IPriceOracle interface {
	GetPrice(ctx context.Context) (decimal.Decimal, error)
	GetPriceDecimals(ctx context.Context) (uint8, error)
}

// IAssetDecimals token decimals lookup
type IAssetDecimals interface {
	DecimalsOf(ctx context.Context, asset string) (uint8, error)
}
