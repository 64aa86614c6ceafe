package http

import (
	"errors"
	"net/http"

	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/canteenhq/canteen/pkg/httpx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

type BalanceReconcileHandler struct {
	AllowanceService *service.AllowanceService
}

// ServeHTTP godoc
//
//	@Summary		Balance Reconcile Endpoint
//	@Description	Apply the daily allowance if the caller's last reset was on an earlier
//	@Description	calendar day. Idempotent within a day; clients call it on session start and
//	@Description	on app focus. A store failure is reported as unavailable, never as a zero
//	@Description	balance.
//	@Tags			Balance
//	@Produce		json
//	@Success		200	{object}	canteensdk.BalanceResponse	"coins"
//	@Failure		401	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		503	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/balance/reconcile [post].
func (h *BalanceReconcileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	coins, err := h.AllowanceService.Reconcile(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, canteensdk.ErrorCodeNotFound, "account no longer exists")
		default:
			log.Error("balance reconcile failed", "err", err)
			writeError(w, http.StatusServiceUnavailable, canteensdk.ErrorCodeUnavailable,
				"balance is temporarily unavailable, try again")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, canteensdk.BalanceResponse{Coins: coins})
}
