package http

import (
	"net/http"

	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/canteenhq/canteen/pkg/httpx"
	"github.com/canteenhq/canteen/pkg/slogx"
)

type TransferOrphanedHandler struct {
	TransferService *service.TransferService
}

// ServeHTTP godoc
//
//	@Summary		Orphaned Transfers Endpoint
//	@Description	List ledger entries stuck in the "debited" state: transfers whose debit
//	@Description	committed but whose credit never did. Admin-only reconciliation tooling.
//	@Tags			Transfers
//	@Produce		json
//	@Success		200	{object}	canteensdk.OrphanedTransfersResponse	"transfers"
//	@Failure		401	{object}	canteensdk.ErrorResponse				"error, error_description"
//	@Failure		403	{object}	canteensdk.ErrorResponse				"error, error_description"
//	@Failure		500	{object}	canteensdk.ErrorResponse				"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/transfers/orphaned [get].
func (h *TransferOrphanedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	orphans, err := h.TransferService.ListOrphaned(ctx)
	if err != nil {
		log.Error("failed to list orphaned transfers", "err", err)
		writeServerError(w)
		return
	}

	out := canteensdk.OrphanedTransfersResponse{Transfers: make([]canteensdk.Transfer, 0, len(orphans))}
	for _, t := range orphans {
		out.Transfers = append(out.Transfers, toSDKTransfer(t))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
