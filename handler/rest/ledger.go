package rest

import (
	"context"
	"net/http"

	"poolmanager/core"
	"poolmanager/handler/param"
	"poolmanager/handler/render"
	"poolmanager/handler/request"
	"poolmanager/handler/views"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/twitchtv/twirp"
)

type amountOperation func(ctx context.Context, caller string, amount decimal.Decimal) (*core.UserReserve, error)

func caller(r *http.Request) string {
	c, _ := request.NewContext(r.Context()).GetCaller()
	return c
}

func parseAmount(field, v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}

	amount, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, twirp.InvalidArgumentError(field, "not a number")
	}

	return amount, nil
}

func amountHandler(op amountOperation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Amount string `json:"amount" valid:"required"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		amount, err := parseAmount("amount", body.Amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		reserve, err := op(r.Context(), caller(r), amount)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, reserve)
	}
}

func createPoolHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID string `json:"user_id" valid:"required"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		reserve, err := pools.CreatePool(r.Context(), caller(r), body.UserID)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, reserve)
	}
}

func liquidateHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID             string `json:"user_id" valid:"required"`
			CollateralDecrease string `json:"collateral_decrease"`
			DebtDecrease       string `json:"debt_decrease"`
		}

		if err := param.Binding(r, &body); err != nil {
			render.Error(w, err)
			return
		}

		collateral, err := parseAmount("collateral_decrease", body.CollateralDecrease)
		if err != nil {
			render.Error(w, err)
			return
		}

		debt, err := parseAmount("debt_decrease", body.DebtDecrease)
		if err != nil {
			render.Error(w, err)
			return
		}

		ctx := r.Context()
		reserve, err := pools.Liquidate(ctx, caller(r), body.UserID, collateral, debt)
		if err != nil {
			logger.FromContext(ctx).WithError(err).Infoln("rest.liquidate")
			render.Error(w, err)
			return
		}

		render.JSON(w, reserve)
	}
}

func claimProfitHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		amount, err := pools.ClaimProtocolEarnings(r.Context(), caller(r))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, views.Earnings{Amount: amount.String()})
	}
}

func setPoolConfigHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg core.PoolConfig
		if err := param.Binding(r, &cfg); err != nil {
			render.Error(w, err)
			return
		}

		ctx := r.Context()
		if err := pools.SetPoolConfig(ctx, caller(r), &cfg); err != nil {
			render.Error(w, err)
			return
		}

		updated, err := pools.PoolConfig(ctx)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, updated)
	}
}

func setUserConfigHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg core.UserPoolConfig
		if err := param.Binding(r, &cfg); err != nil {
			render.Error(w, err)
			return
		}

		ctx := r.Context()
		userID := userParam(r)
		if err := pools.SetUserPoolConfig(ctx, caller(r), userID, &cfg); err != nil {
			render.Error(w, err)
			return
		}

		updated, err := pools.UserPoolConfig(ctx, userID)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, updated)
	}
}
