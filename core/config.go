package core

import (
	"github.com/asaskevich/govalidator"
	"github.com/fox-one/pkg/store/db"
)

// Config pool ledger config
type Config struct {
	App         App         `json:"app"`
	DB          db.Config   `json:"db"`
	Pool        PoolDefault `json:"pool"`
	Assets      Assets      `json:"assets"`
	PriceOracle PriceOracle `json:"price_oracle"`
	Bridge      Bridge      `json:"bridge"`
	Admins      []string    `json:"admins"`
	Liquidators []string    `json:"liquidators"`
	// Genesis balances credited to the in-memory vault at startup
	Genesis []Balance `json:"genesis"`
}

// IsAdmin check if the user is admin
func (c *Config) IsAdmin(userID string) bool {
	return c.HasRole(userID, RoleAdmin)
}

// HasRole check if the user holds the role. Admins hold every role.
func (c *Config) HasRole(userID string, role Role) bool {
	if userID == "" {
		return false
	}

	if govalidator.IsIn(userID, c.Admins...) {
		return true
	}

	switch role {
	case RoleLiquidator:
		return govalidator.IsIn(userID, c.Liquidators...)
	default:
		return false
	}
}

// App app config
type App struct {
	// Ledger the address holding repaid loan asset until the admin claims it
	Ledger    string `json:"ledger"`
	JWTSecret string `json:"jwt_secret"`
	Location  string `json:"location"`
	// Memory run against the in-memory store and vault instead of the database
	Memory bool `json:"memory"`
	// API base url of the running server, admin commands go through it
	API string `json:"api"`
}

// PoolDefault initial pool config, applied by migrate when no config row exists
type PoolDefault struct {
	LiquidationThreshold uint16 `json:"liquidation_threshold"`
	PoolInterestRate     uint16 `json:"pool_interest_rate"`
	ProtocolInterestRate uint16 `json:"protocol_interest_rate"`
	LoanToValue          uint16 `json:"loan_to_value"`
	CollateralAsset      string `json:"collateral_asset"`
	LoanAsset            string `json:"loan_asset"`
	Bridge               string `json:"bridge"`
	Oracle               string `json:"oracle"`
	LoanVault            string `json:"loan_vault"`
	FeeVault             string `json:"fee_vault"`
}

// Assets token decimals keyed by asset id
type Assets struct {
	Decimals map[string]uint8 `json:"decimals"`
}

// PriceOracle price oracle config
type PriceOracle struct {
	EndPoint string `json:"end_point"`
	// Price fixed price used when no endpoint is configured
	Price    string `json:"price"`
	Decimals uint8  `json:"decimals"`
	// CacheTTL seconds
	CacheTTL int64 `json:"cache_ttl"`
}

// Bridge custody bridge config
type Bridge struct {
	EndPoint string `json:"end_point"`
	Token    string `json:"token"`
}

// Balance holder balance of an asset in raw units
type Balance struct {
	Asset  string `json:"asset"`
	Holder string `json:"holder"`
	Amount string `json:"amount"`
}
