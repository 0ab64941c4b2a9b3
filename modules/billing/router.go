// Package billing exposes the subscription engine over HTTP/JSON. The module
// mounts under the API root and keeps every operation keyed by an explicit
// user ID path parameter; there is no implicit current user.
package billing

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/contractly/contractly/internal/billing"
)

// RouterOptions carries the module's collaborators.
type RouterOptions struct {
	Service *billing.Service
	Plans   billing.PlanCatalog
	Users   billing.UserDirectory
	Logger  *slog.Logger
}

// Router builds the module's route tree.
//
//	r := chi.NewRouter()
//	r.Mount("/api", billing.Router(billing.RouterOptions{Service: svc, Plans: plans, Users: users}))
func Router(opts RouterOptions) chi.Router {
	if opts.Service == nil {
		panic("billing module: Service is required")
	}
	if opts.Plans == nil {
		panic("billing module: PlanCatalog is required")
	}
	if opts.Users == nil {
		panic("billing module: UserDirectory is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	h := &handlers{svc: opts.Service, plans: opts.Plans, users: opts.Users, log: opts.Logger}

	r := chi.NewRouter()

	r.Get("/plans", h.listPlans)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/", h.getUser)
		r.Get("/contracts", h.contractHistory)
		r.Get("/contracts/active", h.activeContract)
		r.Get("/payments", h.listPayments)
		r.Get("/credits", h.listCredits)
		r.Post("/subscriptions", h.subscribe)
		r.Post("/subscriptions/change", h.changePlan)
	})

	r.Route("/payments/{paymentID}", func(r chi.Router) {
		r.Post("/settle", h.settlePayment)
		r.Get("/pix", h.pixCharge)
	})

	r.Post("/credits/{creditID}/redeem", h.redeemCredit)

	return r
}
