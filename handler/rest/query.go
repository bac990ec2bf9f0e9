package rest

import (
	"net/http"

	"poolmanager/core"
	"poolmanager/handler/param"
	"poolmanager/handler/render"
	"poolmanager/handler/views"

	"github.com/fox-one/pkg/logger"
	"github.com/go-chi/chi"
)

func userParam(r *http.Request) string {
	return chi.URLParam(r, "user")
}

func poolConfigHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := pools.PoolConfig(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, cfg)
	}
}

func poolReserveHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reserve, err := pools.PoolReserve(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, reserve)
	}
}

func profitHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profit, err := pools.ProtocolProfit(r.Context())
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, profit)
	}
}

func userConfigHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := pools.UserPoolConfig(r.Context(), userParam(r))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, cfg)
	}
}

func userReserveHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reserve, err := pools.UserReserve(r.Context(), userParam(r))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, reserve)
	}
}

func limitsHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limits, err := pools.Limits(r.Context(), userParam(r))
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, limits)
	}
}

func positionHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		userID := userParam(r)

		cfg, err := pools.UserPoolConfig(ctx, userID)
		if err != nil {
			render.Error(w, err)
			return
		}

		reserve, err := pools.UserReserve(ctx, userID)
		if err != nil {
			render.Error(w, err)
			return
		}

		view := views.Position{
			UserID:  userID,
			Config:  cfg,
			Reserve: reserve,
		}

		if cfg.Initialized {
			if view.Limits, err = pools.Limits(ctx, userID); err != nil {
				logger.FromContext(ctx).WithError(err).Debugln("rest.position: limits")
			}
		}

		render.JSON(w, view)
	}
}

func eventsHandler(pools core.IPoolService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var params struct {
			UserID string `json:"user"`
			From   int64  `json:"from"`
			Limit  int    `json:"limit"`
		}

		if err := param.Binding(r, &params); err != nil {
			render.Error(w, err)
			return
		}

		if user := userParam(r); user != "" {
			params.UserID = user
		}

		events, err := pools.Events(r.Context(), params.UserID, params.From, params.Limit)
		if err != nil {
			render.Error(w, err)
			return
		}

		render.JSON(w, events)
	}
}
