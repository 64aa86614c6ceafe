package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/canteenhq/canteen/pkg/httpx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

type RegisterHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Registration Endpoint
//	@Description	Create a new member account. The account starts with zero coins; the daily
//	@Description	allowance arrives on the first balance reconcile.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		canteensdk.RegisterRequest	true	"New account details"
//	@Success		201		{object}	canteensdk.User				"created account"
//	@Failure		400		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req canteensdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}

	user, err := h.AuthService.Register(ctx, req.Email, req.Password, req.EmpCode, req.FirstName, req.LastName, req.Department)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRegistration):
			writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest,
				"registration requires a valid email, a password of at least 8 characters, an employee code, and a name")
		case errors.Is(err, service.ErrEmailTaken):
			writeError(w, http.StatusConflict, canteensdk.ErrorCodeAlreadyExists, "email is already registered")
		case errors.Is(err, service.ErrEmpCodeTaken):
			writeError(w, http.StatusConflict, canteensdk.ErrorCodeAlreadyExists, "employee code is already registered")
		default:
			log.Error("registration failed", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toSDKUser(user))
}

// toSDKUser strips server-only fields from a domain user.
func toSDKUser(u domain.User) canteensdk.User {
	return canteensdk.User{
		ID:         u.ID,
		EmpCode:    u.EmpCode,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Department: u.Department,
		Role:       string(u.Role),
		Coins:      u.Coins,
		LastReset:  u.LastReset,
	}
}
