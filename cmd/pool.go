package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"poolmanager/core"
	"poolmanager/handler/auth"
	"poolmanager/pkg/number"
	"poolmanager/service/remote"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// admin ledger changes made by the cli. With app.api set they go through the running
// server, otherwise they run in process against the in-memory ledger.
type admin interface {
	CreatePool(ctx context.Context, userID string) (*core.UserReserve, error)
	PoolConfig(ctx context.Context) (*core.PoolConfig, error)
	SetPoolConfig(ctx context.Context, cfg *core.PoolConfig) (*core.PoolConfig, error)
	UserPoolConfig(ctx context.Context, userID string) (*core.UserPoolConfig, error)
	SetUserPoolConfig(ctx context.Context, userID string, cfg *core.UserPoolConfig) (*core.UserPoolConfig, error)
	Liquidate(ctx context.Context, userID string, collateralDecrease, debtDecrease decimal.Decimal) (*core.UserReserve, error)
	ClaimProtocolEarnings(ctx context.Context) (decimal.Decimal, error)
}

// localAdmin the ledger service acting as caller
type localAdmin struct {
	pools  core.IPoolService
	caller string
}

func (a localAdmin) CreatePool(ctx context.Context, userID string) (*core.UserReserve, error) {
	return a.pools.CreatePool(ctx, a.caller, userID)
}

func (a localAdmin) PoolConfig(ctx context.Context) (*core.PoolConfig, error) {
	return a.pools.PoolConfig(ctx)
}

func (a localAdmin) SetPoolConfig(ctx context.Context, cfg *core.PoolConfig) (*core.PoolConfig, error) {
	if err := a.pools.SetPoolConfig(ctx, a.caller, cfg); err != nil {
		return nil, err
	}

	return a.pools.PoolConfig(ctx)
}

func (a localAdmin) UserPoolConfig(ctx context.Context, userID string) (*core.UserPoolConfig, error) {
	return a.pools.UserPoolConfig(ctx, userID)
}

func (a localAdmin) SetUserPoolConfig(ctx context.Context, userID string, cfg *core.UserPoolConfig) (*core.UserPoolConfig, error) {
	if err := a.pools.SetUserPoolConfig(ctx, a.caller, userID, cfg); err != nil {
		return nil, err
	}

	return a.pools.UserPoolConfig(ctx, userID)
}

func (a localAdmin) Liquidate(ctx context.Context, userID string, collateralDecrease, debtDecrease decimal.Decimal) (*core.UserReserve, error) {
	return a.pools.Liquidate(ctx, a.caller, userID, collateralDecrease, debtDecrease)
}

func (a localAdmin) ClaimProtocolEarnings(ctx context.Context) (decimal.Decimal, error) {
	return a.pools.ClaimProtocolEarnings(ctx, a.caller)
}

var (
	_ admin = localAdmin{}
	_ admin = (*remote.Client)(nil)
)

// provideAdmin a database backed ledger only accepts changes through its server
func provideAdmin(cmd *cobra.Command) (admin, error) {
	if cfg.App.API != "" {
		token, err := auth.IssueToken(cfg.App.JWTSecret, caller(cmd), time.Minute)
		if err != nil {
			return nil, err
		}

		return remote.New(cfg.App.API, token), nil
	}

	if !cfg.App.Memory {
		return nil, errors.New("app.api not set, changes to a database backed ledger go through the server")
	}

	ctx := cmd.Context()
	_, store := provideStores(ctx)
	return localAdmin{pools: providePoolService(ctx, store), caller: caller(cmd)}, nil
}

func caller(cmd *cobra.Command) string {
	if v, _ := cmd.Flags().GetString("caller"); v != "" {
		return v
	}

	if len(cfg.Admins) > 0 {
		return cfg.Admins[0]
	}

	return ""
}

func printJSON(cmd *cobra.Command, v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	cmd.Println(string(data))
}

var createPoolCmd = &cobra.Command{
	Use:   "create-pool <user>",
	Short: "initialize the pool of a user with the current defaults",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pools, err := provideAdmin(cmd)
		if err != nil {
			return err
		}

		reserve, err := pools.CreatePool(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printJSON(cmd, reserve)
		return nil
	},
}

// parseRates parse key=value args into basis point rates
func parseRates(args []string) (map[string]uint16, error) {
	rates := make(map[string]uint16, len(args))
	for _, arg := range args {
		kv := strings.SplitN(arg, "=", 2)
		if len(kv) != 2 {
			return nil, fmt.Errorf("invalid arg %q, want key=value", arg)
		}

		v, err := cast.ToUint16E(kv[1])
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", kv[0], err)
		}

		rates[kv[0]] = v
	}

	return rates, nil
}

func applyRates(rates map[string]uint16, threshold, poolRate, protocolRate, ltv *uint16) error {
	for k, v := range rates {
		switch k {
		case "liquidation_threshold":
			*threshold = v
		case "pool_interest_rate":
			*poolRate = v
		case "protocol_interest_rate":
			*protocolRate = v
		case "loan_to_value":
			*ltv = v
		default:
			return fmt.Errorf("unknown rate %s", k)
		}
	}

	return nil
}

var setConfigCmd = &cobra.Command{
	Use:   "set-config [user] key=value...",
	Short: "update the pool defaults, or the config of one user",
	Long: "keys: liquidation_threshold, pool_interest_rate, protocol_interest_rate, loan_to_value (basis points).\n" +
		"with a leading user argument only that user's config changes.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		pools, err := provideAdmin(cmd)
		if err != nil {
			return err
		}

		var userID string
		if !strings.Contains(args[0], "=") {
			userID, args = args[0], args[1:]
		}

		rates, err := parseRates(args)
		if err != nil {
			return err
		}

		if userID == "" {
			poolConfig, err := pools.PoolConfig(ctx)
			if err != nil {
				return err
			}

			if err := applyRates(rates, &poolConfig.LiquidationThreshold, &poolConfig.PoolInterestRate, &poolConfig.ProtocolInterestRate, &poolConfig.LoanToValue); err != nil {
				return err
			}

			updated, err := pools.SetPoolConfig(ctx, poolConfig)
			if err != nil {
				return err
			}

			printJSON(cmd, updated)
			return nil
		}

		userConfig, err := pools.UserPoolConfig(ctx, userID)
		if err != nil {
			return err
		}

		if err := applyRates(rates, &userConfig.LiquidationThreshold, &userConfig.PoolInterestRate, &userConfig.ProtocolInterestRate, &userConfig.LoanToValue); err != nil {
			return err
		}

		updated, err := pools.SetUserPoolConfig(ctx, userID, userConfig)
		if err != nil {
			return err
		}

		printJSON(cmd, updated)
		return nil
	},
}

var claimProfitCmd = &cobra.Command{
	Use:   "claim-profit",
	Short: "transfer the ledger balance to the admin",
	RunE: func(cmd *cobra.Command, args []string) error {
		pools, err := provideAdmin(cmd)
		if err != nil {
			return err
		}

		amount, err := pools.ClaimProtocolEarnings(cmd.Context())
		if err != nil {
			return err
		}

		cmd.Println("claimed", number.Human(amount, cfg.Assets.Decimals[cfg.Pool.LoanAsset]), cfg.Pool.LoanAsset)
		return nil
	},
}

var liquidateCmd = &cobra.Command{
	Use:   "liquidate <user> <collateral> <debt>",
	Short: "write down a position, amounts in human units",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		collateral, err := number.Raw(args[1], cfg.Assets.Decimals[cfg.Pool.CollateralAsset])
		if err != nil {
			return err
		}

		debt, err := number.Raw(args[2], cfg.Assets.Decimals[cfg.Pool.LoanAsset])
		if err != nil {
			return err
		}

		pools, err := provideAdmin(cmd)
		if err != nil {
			return err
		}

		reserve, err := pools.Liquidate(cmd.Context(), args[0], collateral, debt)
		if err != nil {
			return err
		}

		printJSON(cmd, reserve)
		return nil
	},
}

var reserveCmd = &cobra.Command{
	Use:   "reserve [user]",
	Short: "show the projected reserve of a user, or the pool aggregate",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		database, store := provideStores(ctx)
		if database != nil {
			defer database.Close()
		}

		pools := providePoolService(ctx, store)
		collateralDecimals := cfg.Assets.Decimals[cfg.Pool.CollateralAsset]
		loanDecimals := cfg.Assets.Decimals[cfg.Pool.LoanAsset]

		if len(args) == 0 {
			reserve, err := pools.PoolReserve(ctx)
			if err != nil {
				return err
			}

			profit, err := pools.ProtocolProfit(ctx)
			if err != nil {
				return err
			}

			printJSON(cmd, map[string]interface{}{
				"users":              reserve.UserCount,
				"collateral":         number.Human(reserve.Collateral, collateralDecimals),
				"debt":               number.Human(reserve.Debt, loanDecimals),
				"unclaimed_profit":   number.Human(profit.Unclaimed, loanDecimals),
				"accumulated_profit": number.Human(profit.Accumulated, loanDecimals),
			})
			return nil
		}

		reserve, err := pools.UserReserve(ctx, args[0])
		if err != nil {
			return err
		}

		printJSON(cmd, map[string]interface{}{
			"user":                 reserve.UserID,
			"collateral":           number.Human(reserve.Collateral, collateralDecimals),
			"debt":                 number.Human(reserve.Debt, loanDecimals),
			"debt_to_protocol":     number.Human(reserve.DebtToProtocol, loanDecimals),
			"claimable_loan_asset": number.Human(reserve.ClaimableLoanAsset, loanDecimals),
			"claimable_collateral": number.Human(reserve.ClaimableCollateral, collateralDecimals),
		})
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <caller>",
	Short: "issue an api access token for caller",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ttl, _ := cmd.Flags().GetDuration("ttl")
		token, err := auth.IssueToken(cfg.App.JWTSecret, args[0], ttl)
		if err != nil {
			return err
		}

		cmd.Println(token)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{createPoolCmd, setConfigCmd, claimProfitCmd, liquidateCmd} {
		c.Flags().String("caller", "", "acting address, default the first admin")
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(reserveCmd)

	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime, 0 never expires")
	rootCmd.AddCommand(tokenCmd)
}
