package http

import (
	"net/http"

	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/canteenhq/canteen/pkg/httpx"
)

func writeError(w http.ResponseWriter, status int, code, description string) {
	httpx.WriteJSON(w, status, canteensdk.ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	})
}

func writeServerError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, canteensdk.ErrorCodeServerError,
		"an unexpected error occurred")
}
