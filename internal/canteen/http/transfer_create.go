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

type TransferCreateHandler struct {
	TransferService  *service.TransferService
	AllowanceService *service.AllowanceService
}

// ServeHTTP godoc
//
//	@Summary		Coin Transfer Endpoint
//	@Description	Send coins to the employee addressed by receiver_emp_code. All
//	@Description	preconditions are checked before any write. A 502 with error code
//	@Description	"partial_transfer" means the sender was debited but the receiver was not
//	@Description	credited; the movement is recorded for manual reconciliation and must not
//	@Description	be blindly retried.
//	@Tags			Transfers
//	@Accept			json
//	@Produce		json
//	@Param			request	body		canteensdk.TransferRequest	true	"Receiver and amount"
//	@Success		200		{object}	canteensdk.TransferResponse	"transfer, coins"
//	@Failure		400		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		404		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		409		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		502		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Failure		503		{object}	canteensdk.ErrorResponse	"error, error_description"
//	@Security		BearerAuth
//	@Router			/v1/transfers [post].
func (h *TransferCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	senderID := httpx.UserIDFromCtx(ctx)

	var req canteensdk.TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest, "Invalid JSON body")
		return
	}
	if req.ReceiverEmpCode == "" {
		writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest, "receiver_emp_code is required")
		return
	}

	// First reconcile so today's allowance is spendable before the balance
	// check runs.
	if _, err := h.AllowanceService.Reconcile(ctx, senderID); err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, canteensdk.ErrorCodeNotFound, "account no longer exists")
			return
		}
		log.Error("pre-transfer reconcile failed", "err", err)
		writeError(w, http.StatusServiceUnavailable, canteensdk.ErrorCodeUnavailable,
			"balance is temporarily unavailable, try again")
		return
	}

	transfer, err := h.TransferService.Transfer(ctx, senderID, req.ReceiverEmpCode, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest,
				"amount must be a positive whole number of coins")
		case errors.Is(err, service.ErrReceiverNotFound):
			writeError(w, http.StatusNotFound, canteensdk.ErrorCodeNotFound, "no employee with that code")
		case errors.Is(err, service.ErrTransferToSelf):
			writeError(w, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest,
				"cannot transfer coins to yourself")
		case errors.Is(err, service.ErrInsufficientFunds):
			writeError(w, http.StatusConflict, canteensdk.ErrorCodeInsufficientFunds,
				"balance does not cover the transfer amount")
		case errors.Is(err, service.ErrPartialTransfer):
			// The debit stands. Surface it loudly and distinctly.
			writeError(w, http.StatusBadGateway, canteensdk.ErrorCodePartialTransfer,
				"coins were debited but the receiver was not credited; the transfer has been recorded for reconciliation")
		case errors.Is(err, service.ErrTransferContended):
			// Nothing was written; a retry is safe.
			writeError(w, http.StatusServiceUnavailable, canteensdk.ErrorCodeUnavailable,
				"balance is changing rapidly, try again")
		default:
			log.Error("transfer failed", "err", err)
			writeServerError(w)
		}
		return
	}

	// Report the sender's post-transfer balance.
	coins := 0
	if u, err := h.TransferService.Store.Users().GetUserByID(ctx, senderID); err == nil {
		coins = u.Coins
	}

	httpx.WriteJSON(w, http.StatusOK, canteensdk.TransferResponse{
		Transfer: toSDKTransfer(transfer),
		Coins:    coins,
	})
}

func toSDKTransfer(t domain.Transfer) canteensdk.Transfer {
	return canteensdk.Transfer{
		ID:         t.ID,
		SenderID:   t.SenderID,
		ReceiverID: t.ReceiverID,
		Amount:     t.Amount,
		State:      string(t.State),
		CreatedAt:  t.CreatedAt,
	}
}
