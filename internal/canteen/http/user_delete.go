package http

import (
	"errors"
	"net/http"

	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/canteenhq/canteen/pkg/slogx"
)

type UserDeleteHandler struct {
	UserService *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		User Deletion Endpoint
//	@Description	Delete an account. Admin-only; a missing identifier and a missing account
//	@Description	are reported as distinct failures. The target's order history survives.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path	string	true	"User ID"
//	@Success		204	"deleted"
//	@Failure		400	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/users/{id} [delete].
func (h *UserDeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.UserService.DeleteUser(ctx, r.PathValue("id")); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingUserID):
			writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest, "user id is required")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, canteensdk.ErrorCodeNotFound, "no such user")
		default:
			log.Error("failed to delete user", "err", err)
			writeServerError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
