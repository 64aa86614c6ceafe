package http

import (
	"net/http"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/canteenhq/canteen/pkg/httpx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

type OrderListHandler struct {
	OrderService *service.OrderService
}

// ServeHTTP godoc
//
//	@Summary		Order List Endpoint
//	@Description	List all orders, newest first, with their line items. Supports the admin
//	@Description	screen's filters: ?name= matches the placer's first or last name
//	@Description	case-insensitively, ?date=YYYY-MM-DD restricts to a calendar date.
//	@Tags			Orders
//	@Produce		json
//	@Param			name	query		string						false	"Name substring filter"
//	@Param			date	query		string						false	"Calendar date filter (YYYY-MM-DD)"
//	@Success		200		{object}	canteensdk.OrdersResponse	"orders"
//	@Failure		400		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/orders [get].
func (h *OrderListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	filter, ok := parseOrderFilter(w, r)
	if !ok {
		return
	}

	orders, err := h.OrderService.ListOrders(ctx, filter)
	if err != nil {
		log.Error("failed to list orders", "err", err)
		writeServerError(w)
		return
	}

	out := canteensdk.OrdersResponse{Orders: make([]canteensdk.Order, 0, len(orders))}
	for _, o := range orders {
		out.Orders = append(out.Orders, toSDKOrder(o))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// parseOrderFilter reads the shared ?name= and ?date= query parameters. On a
// malformed date it writes a 400 and returns ok=false.
func parseOrderFilter(w http.ResponseWriter, r *http.Request) (service.OrderFilter, bool) {
	filter := service.OrderFilter{Name: r.URL.Query().Get("name")}

	if raw := r.URL.Query().Get("date"); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest,
				"date must be formatted YYYY-MM-DD")
			return service.OrderFilter{}, false
		}
		filter.Date = &day
	}
	return filter, true
}
