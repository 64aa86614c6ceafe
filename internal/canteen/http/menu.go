package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/canteenhq/canteen/internal/canteen/domain"
	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/internal/canteen/store"
	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/canteenhq/canteen/pkg/httpx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

type MenuListHandler struct {
	MenuService *service.MenuService
}

// ServeHTTP godoc
//
//	@Summary		Menu List Endpoint
//	@Description	Return the full dish catalogue, oldest first.
//	@Tags			Menu
//	@Produce		json
//	@Success		200	{object}	canteensdk.MenuResponse		"items"
//	@Failure		401	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/menu [get].
func (h *MenuListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.MenuService.List(ctx)
	if err != nil {
		slogx.FromContext(ctx).Error("failed to list menu", "err", err)
		writeServerError(w)
		return
	}

	out := canteensdk.MenuResponse{Items: make([]canteensdk.MenuItem, 0, len(items))}
	for _, m := range items {
		out.Items = append(out.Items, toSDKMenuItem(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

type MenuCreateHandler struct {
	MenuService *service.MenuService
}

// ServeHTTP godoc
//
//	@Summary		Menu Create Endpoint
//	@Description	Add a dish to the catalogue. Admin-only.
//	@Tags			Menu
//	@Accept			json
//	@Produce		json
//	@Param			request	body		canteensdk.MenuItemRequest	true	"Dish details"
//	@Success		201		{object}	canteensdk.MenuItem			"created dish"
//	@Failure		400		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/menu [post].
func (h *MenuCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req canteensdk.MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}

	item, err := h.MenuService.Create(ctx, req.Name, req.Emoji, req.Tagline, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMenuItem):
			writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest,
				"a dish needs a name and a non-negative price")
		default:
			log.Error("failed to create menu item", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toSDKMenuItem(item))
}

type MenuUpdateHandler struct {
	MenuService *service.MenuService
}

// ServeHTTP godoc
//
//	@Summary		Menu Update Endpoint
//	@Description	Replace a dish's display fields and price. Historical orders keep the
//	@Description	values they captured at submission time. Admin-only.
//	@Tags			Menu
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Menu item ID"
//	@Param			request	body		canteensdk.MenuItemRequest	true	"Dish details"
//	@Success		200		{object}	canteensdk.MenuItem			"updated dish"
//	@Failure		400		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/menu/{id} [put].
func (h *MenuUpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req canteensdk.MenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}

	item, err := h.MenuService.Update(ctx, r.PathValue("id"), req.Name, req.Emoji, req.Tagline, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMenuItem):
			writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest,
				"a dish needs a name and a non-negative price")
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, canteensdk.ErrorCodeNotFound, "no such menu item")
		default:
			log.Error("failed to update menu item", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSDKMenuItem(item))
}

type MenuDeleteHandler struct {
	MenuService *service.MenuService
}

// ServeHTTP godoc
//
//	@Summary		Menu Delete Endpoint
//	@Description	Remove a dish from the catalogue. Orders that reference it are untouched.
//	@Description	Admin-only.
//	@Tags			Menu
//	@Produce		json
//	@Param			id	path	string	true	"Menu item ID"
//	@Success		204	"deleted"
//	@Failure		404	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/menu/{id} [delete].
func (h *MenuDeleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := h.MenuService.Delete(ctx, r.PathValue("id")); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, canteensdk.ErrorCodeNotFound, "no such menu item")
		default:
			log.Error("failed to delete menu item", "err", err)
			writeServerError(w)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toSDKMenuItem(m domain.MenuItem) canteensdk.MenuItem {
	return canteensdk.MenuItem{
		ID:      m.ID,
		Name:    m.Name,
		Emoji:   m.Emoji,
		Tagline: m.Tagline,
		Price:   m.Price,
	}
}
