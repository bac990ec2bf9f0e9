package rest

import (
	"errors"
	"net/http"

	"poolmanager/core"
	"poolmanager/handler/auth"
	"poolmanager/handler/render"

	"github.com/go-chi/chi"
)

// Handle handle rest api request
func Handle(pools core.IPoolService) http.Handler {
	router := chi.NewRouter()

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		render.NotFoundRequest(w, errors.New("not found"))
	})

	router.Get("/config", poolConfigHandler(pools))
	router.Get("/reserve", poolReserveHandler(pools))
	router.Get("/profit", profitHandler(pools))
	router.Get("/events", eventsHandler(pools))

	router.Route("/users/{user}", func(r chi.Router) {
		r.Get("/", positionHandler(pools))
		r.Get("/config", userConfigHandler(pools))
		r.Get("/reserve", userReserveHandler(pools))
		r.Get("/limits", limitsHandler(pools))
		r.Get("/events", eventsHandler(pools))
		r.With(auth.LoginRequired).Put("/config", setUserConfigHandler(pools))
	})

	router.Group(func(r chi.Router) {
		r.Use(auth.LoginRequired)

		r.Post("/supply", amountHandler(pools.Supply))
		r.Post("/borrow", amountHandler(pools.Borrow))
		r.Post("/claim-loan", amountHandler(pools.ClaimLoanAsset))
		r.Post("/repay", amountHandler(pools.Repay))
		r.Post("/withdraw", amountHandler(pools.Withdraw))
		r.Post("/claim-collateral", amountHandler(pools.ClaimCollateral))

		r.Post("/pools", createPoolHandler(pools))
		r.Post("/liquidate", liquidateHandler(pools))
		r.Post("/profit/claim", claimProfitHandler(pools))
		r.Put("/config", setPoolConfigHandler(pools))
	})

	return router
}
