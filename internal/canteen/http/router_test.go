package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/canteenhq/canteen/internal/canteen/notify"
	"github.com/canteenhq/canteen/internal/canteen/service"
	"github.com/canteenhq/canteen/internal/canteen/store/drivers/sqlite"
	"github.com/canteenhq/canteen/pkg/canteensdk"
	"github.com/canteenhq/canteen/pkg/jwtx"

	"github.com/stretchr/testify/require"
)

// newTestRouter wires a full router against an in-memory store and returns it
// with the token manager used to mint test sessions.
func newTestRouter(t *testing.T) (*Router, *jwtx.TokenManager) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	tokens := jwtx.NewTokenManager("router-test-secret-32-bytes-long!!", "canteen-test", time.Hour)
	hub := notify.NewHub()
	logger := slog.New(slog.DiscardHandler)

	router := NewRouter(tokens, "test", st, hub, logger)
	router.AuthService = &service.AuthService{Store: st, Tokens: tokens}
	router.AllowanceService = &service.AllowanceService{Store: st, Location: time.UTC}
	router.TransferService = &service.TransferService{Store: st, Hub: hub}
	router.OrderService = &service.OrderService{Store: st, Hub: hub}
	router.MenuService = &service.MenuService{Store: st, Hub: hub}
	router.UserService = &service.UserService{Store: st}
	router.ApplyRoutes()

	return router, tokens
}

func doJSON(t *testing.T, router http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func registerAndSignIn(t *testing.T, router *Router, empCode string) (string, canteensdk.User) {
	t.Helper()

	rec := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", canteensdk.RegisterRequest{
		Email:      empCode + "@example.test",
		Password:   "passw0rd-long-enough",
		EmpCode:    empCode,
		FirstName:  "Handler",
		LastName:   empCode,
		Department: "QA",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/v1/auth/signin", "", canteensdk.SignInRequest{
		Email:    empCode + "@example.test",
		Password: "passw0rd-long-enough",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out canteensdk.SignInResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Equal(t, "Bearer", out.TokenType)
	return out.AccessToken, out.User
}

func TestSignInAndMe(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	token, user := registerAndSignIn(t, router, "EMP600")

	rec := doJSON(t, router, http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var me canteensdk.MeResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&me))
	require.Equal(t, user.ID, me.User.ID)
	require.Equal(t, 75, me.Coins, "first /v1/me reconciles the daily allowance")
}

func TestMeRequiresAuth(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/v1/me", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRejectMembers(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	token, _ := registerAndSignIn(t, router, "EMP610")

	for _, probe := range []struct{ method, path string }{
		{http.MethodGet, "/v1/orders"},
		{http.MethodGet, "/v1/orders/export"},
		{http.MethodGet, "/v1/transfers/orphaned"},
		{http.MethodPost, "/v1/menu"},
		{http.MethodDelete, "/v1/users/someone"},
		{http.MethodPut, "/v1/users/someone/password"},
	} {
		rec := doJSON(t, router, probe.method, probe.path, token, nil)
		require.Equal(t, http.StatusForbidden, rec.Code, "%s %s", probe.method, probe.path)

		var er canteensdk.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&er))
		require.Equal(t, canteensdk.ErrorCodePermissionDenied, er.Error)
	}
}

func TestTransferEndpointTaxonomy(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	senderToken, _ := registerAndSignIn(t, router, "EMP620")
	_, _ = registerAndSignIn(t, router, "EMP621")

	cases := []struct {
		name   string
		req    canteensdk.TransferRequest
		status int
		code   string
	}{
		{"missing receiver", canteensdk.TransferRequest{Amount: 5}, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest},
		{"zero amount", canteensdk.TransferRequest{ReceiverEmpCode: "EMP621"}, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest},
		{"unknown receiver", canteensdk.TransferRequest{ReceiverEmpCode: "EMP999", Amount: 5}, http.StatusNotFound, canteensdk.ErrorCodeNotFound},
		{"self send", canteensdk.TransferRequest{ReceiverEmpCode: "EMP620", Amount: 5}, http.StatusBadRequest, canteensdk.ErrorCodeInvalidRequest},
		{"overdraw", canteensdk.TransferRequest{ReceiverEmpCode: "EMP621", Amount: 76}, http.StatusConflict, canteensdk.ErrorCodeInsufficientFunds},
	}
	for _, tc := range cases {
		rec := doJSON(t, router, http.MethodPost, "/v1/transfers", senderToken, tc.req)
		require.Equal(t, tc.status, rec.Code, tc.name)

		var er canteensdk.ErrorResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&er), tc.name)
		require.Equal(t, tc.code, er.Error, tc.name)
	}

	// The happy path reports the sender's remaining balance.
	rec := doJSON(t, router, http.MethodPost, "/v1/transfers", senderToken,
		canteensdk.TransferRequest{ReceiverEmpCode: "EMP621", Amount: 25})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out canteensdk.TransferResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Equal(t, "completed", out.Transfer.State)
	require.Equal(t, 50, out.Coins)
}

func TestMenuWatchStreamsSnapshots(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	token, _ := registerAndSignIn(t, router, "EMP630")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req := httptest.NewRequestWithContext(ctx, http.MethodGet, "/v1/menu/watch", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	// Publish a snapshot shortly after the stream opens.
	go func() {
		time.Sleep(100 * time.Millisecond)
		router.hub.Publish(notify.Event{Topic: notify.TopicMenu, Kind: "created", Payload: []string{"snapshot"}})
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "event: created")
	require.Contains(t, rec.Body.String(), `data: ["snapshot"]`)
}
