package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/canteenhq/canteen/pkg/httpx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

type SignInHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Sign In Endpoint
//	@Description	Exchange email and password for a JWT access token. The token carries the
//	@Description	caller's role claim; capabilities are fixed for the session's lifetime.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		canteensdk.SignInRequest	true	"Credentials"
//	@Success		200		{object}	canteensdk.SignInResponse	"access_token, token_type, expires_in, user"
//	@Failure		400		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		401		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Router			/v1/auth/signin [post].
func (h *SignInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req canteensdk.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest, "email and password are required")
		return
	}

	token, user, err := h.AuthService.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, canteensdk.ErrorCodeInvalidCredentials, "Invalid email or password")
		default:
			log.Error("sign-in failed", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, canteensdk.SignInResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.AuthService.Tokens.TTL().Seconds()),
		User:        toSDKUser(user),
	})
}
