package http

import (
	"net/http"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/pkg/slogx"
)

type OrderExportHandler struct {
	OrderService *service.OrderService
}

// ServeHTTP godoc
//
//	@Summary		Order Export Endpoint
//	@Description	Download the order report as CSV with columns First Name, Last Name,
//	@Description	Department, Coins Used, Order Time. Accepts the same ?name= and ?date=
//	@Description	filters as the list endpoint.
//	@Tags			Orders
//	@Produce		text/csv
//	@Param			name	query		string	false	"Name substring filter"
//	@Param			date	query		string	false	"Calendar date filter (YYYY-MM-DD)"
//	@Success		200		{string}	string	"CSV report"
//	@Failure		400		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		403		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		500		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/orders/export [get].
func (h *OrderExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	filter, ok := parseOrderFilter(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		`attachment; filename="orders-`+time.Now().Format("2006-01-02")+`.csv"`)

	if err := h.OrderService.ExportCSV(ctx, filter, w); err != nil {
		// Headers are already out; the truncated body is all we can signal.
		log.Error("failed to export orders", "err", err)
	}
}
