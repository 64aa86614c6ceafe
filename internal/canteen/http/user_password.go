package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/canteenhq/canteen/pkg/slogx"
)

type UserPasswordHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Password Reset Endpoint
//	@Description	Set a new password for an account. Admin-only; the admin hands the new
//	@Description	password to the member out of band.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path	string							true	"User ID"
//	@Param			request	body	canteensdk.ResetPasswordRequest	true	"New password"
//	@Success		204		"password updated"
//	@Failure		400		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/users/{id}/password [put].
func (h *UserPasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req canteensdk.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}

	if err := h.AuthService.ResetPassword(ctx, r.PathValue("id"), req.Password); err != nil {
		switch {
		case errors.Is(err, service.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest,
				"password must be at least 8 characters")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, canteensdk.ErrorCodeNotFound, "no such user")
		default:
			log.Error("failed to reset password", "err", err)
			writeServerError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
