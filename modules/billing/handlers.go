package billing

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contractly/contractly/internal/billing"
)

type handlers struct {
	svc   *billing.Service
	plans billing.PlanCatalog
	users billing.UserDirectory
	log   *slog.Logger
}

func (h *handlers) listPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.plans.ActivePlans(r.Context())
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, plans)
}

func (h *handlers) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	user, err := h.users.User(r.Context(), userID)
	if errors.Is(err, billing.ErrUserNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, user)
}

// activeContract returns the contract or an explicit null, not a 404: "no
// active contract" is a normal answer for this query.
func (h *handlers) activeContract(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	contract, err := h.svc.ActiveContract(r.Context(), userID)
	if errors.Is(err, billing.ErrNoActiveContract) {
		respond(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, contract)
}

func (h *handlers) contractHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	contracts, err := h.svc.ContractHistory(r.Context(), userID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, contracts)
}

func (h *handlers) listPayments(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	payments, err := h.svc.Payments(r.Context(), userID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, payments)
}

func (h *handlers) listCredits(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	credits, err := h.svc.UnusedCredits(r.Context(), userID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, credits)
}

type subscribeRequest struct {
	PlanID uuid.UUID `json:"plan_id"`
}

func (h *handlers) subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var req subscribeRequest
	if !decode(w, r, &req) {
		return
	}

	contract, err := h.svc.Subscribe(r.Context(), userID, req.PlanID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	respond(w, http.StatusCreated, contract)
}

func (h *handlers) changePlan(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var req subscribeRequest
	if !decode(w, r, &req) {
		return
	}

	change, err := h.svc.ChangePlan(r.Context(), userID, req.PlanID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, change)
}

type settleRequest struct {
	PixCode string `json:"pix_code"`
}

func (h *handlers) settlePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(w, r, "paymentID")
	if !ok {
		return
	}
	var req settleRequest
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.PixCode) == "" {
		respondBadRequest(w, "pix_code is required")
		return
	}

	if err := h.svc.SettlePayment(r.Context(), paymentID, req.PixCode); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *handlers) pixCharge(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(w, r, "paymentID")
	if !ok {
		return
	}
	charge, err := h.svc.PixCharge(r.Context(), paymentID)
	if err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, charge)
}

type redeemRequest struct {
	PaymentID uuid.UUID `json:"payment_id"`
}

func (h *handlers) redeemCredit(w http.ResponseWriter, r *http.Request) {
	creditID, ok := pathID(w, r, "creditID")
	if !ok {
		return
	}
	var req redeemRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.svc.RedeemCredit(r.Context(), creditID, req.PaymentID); err != nil {
		respondErr(w, r, h.log, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"ok": true})
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondBadRequest(w, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondBadRequest(w, "invalid request body")
		return false
	}
	return true
}
