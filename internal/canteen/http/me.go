package http

import (
	"errors"
	"net/http"

	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/canteenhq/canteen/pkg/httpx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

type MeHandler struct {
	UserService      *service.UserService
	AllowanceService *service.AllowanceService
}

// ServeHTTP godoc
//
//	@Summary		Current User Endpoint
//	@Description	Return the authenticated profile. The balance is reconciled first, so a
//	@Description	freshly-focused client always sees today's allowance applied.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{object}	canteensdk.MeResponse		"user, coins"
//	@Failure		401	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		503	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := httpx.UserIDFromCtx(ctx)

	coins, err := h.AllowanceService.Reconcile(ctx, userID)
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

	user, err := h.UserService.GetUserByID(ctx, userID)
	if err != nil {
		log.Error("failed to load profile", "err", err)
		writeServerError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, canteensdk.MeResponse{
		User:  toSDKUser(user),
		Coins: coins,
	})
}
