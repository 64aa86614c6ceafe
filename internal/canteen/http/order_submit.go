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

type OrderSubmitHandler struct {
	OrderService *service.OrderService
}

// ServeHTTP godoc
//
//	@Summary		Order Submission Endpoint
//	@Description	Place an order for the authenticated user. Prices are read from the current
//	@Description	menu snapshot server-side; the stored order carries denormalized copies of
//	@Description	the placer's profile and every line item. Submitting an order does not
//	@Description	debit coins.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			request	body		canteensdk.OrderRequest		true	"Cart lines"
//	@Success		201		{object}	canteensdk.Order			"created order"
//	@Failure		400		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/orders [post].
func (h *OrderSubmitHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req canteensdk.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}

	cart := make([]service.CartLine, 0, len(req.Items))
	for _, line := range req.Items {
		cart = append(cart, service.CartLine{MenuItemID: line.MenuItemID, Quantity: line.Quantity})
	}

	order, err := h.OrderService.Submit(ctx, httpx.UserIDFromCtx(ctx), cart)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest, "cart is empty")
		case errors.Is(err, service.ErrMenuItemNotFound):
			writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest,
				"cart references a menu item that no longer exists; refresh the menu and retry")
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, canteensdk.ErrorCodeNotFound, "account no longer exists")
		default:
			log.Error("order submission failed", "err", err)
			writeServerError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toSDKOrder(order))
}

func toSDKOrder(o domain.Order) canteensdk.Order {
	out := canteensdk.Order{
		ID:         o.ID,
		UserID:     o.UserID,
		FirstName:  o.FirstName,
		LastName:   o.LastName,
		Department: o.Department,
		CoinsUsed:  o.CoinsUsed,
		CreatedAt:  o.CreatedAt,
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, canteensdk.OrderItem{
			Name:     item.Name,
			Price:    item.Price,
			Quantity: item.Quantity,
		})
	}
	return out
}
