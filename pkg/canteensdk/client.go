// Package canteensdk is a small Go client for the canteen service HTTP API.
// It is used by the end-to-end tests and is suitable for internal tooling.
package canteensdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// SDKClient talks to a canteen service instance.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// AccessToken, when set, is sent as a Bearer token on every request.
	AccessToken string
}

// NewClient creates a client for the service at baseURL (no trailing slash).
func NewClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithToken returns a shallow copy of the client authenticated as token.
func (c *SDKClient) WithToken(token string) *SDKClient {
	cp := *c
	cp.AccessToken = token
	return &cp
}

func (c *SDKClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var er ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil || er.Error == "" {
		return &APIError{StatusCode: resp.StatusCode, Code: ErrorCodeServerError, Description: resp.Status}
	}
	return &APIError{StatusCode: resp.StatusCode, Code: er.Error, Description: er.ErrorDescription}
}

// SignIn exchanges credentials for an access token and returns a client
// authenticated as that user.
func (c *SDKClient) SignIn(ctx context.Context, email, password string) (*SignInResponse, *SDKClient, error) {
	var out SignInResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/signin", SignInRequest{Email: email, Password: password}, &out); err != nil {
		return nil, nil, err
	}
	return &out, c.WithToken(out.AccessToken), nil
}

// Register creates a new member account.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPost, "/v1/auth/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the authenticated profile with a reconciled balance.
func (c *SDKClient) Me(ctx context.Context) (*MeResponse, error) {
	var out MeResponse
	if err := c.do(ctx, http.MethodGet, "/v1/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReconcileBalance triggers the daily allowance check and returns the balance.
func (c *SDKClient) ReconcileBalance(ctx context.Context) (int, error) {
	var out BalanceResponse
	if err := c.do(ctx, http.MethodPost, "/v1/balance/reconcile", nil, &out); err != nil {
		return 0, err
	}
	return out.Coins, nil
}

// Transfer sends coins to another employee.
func (c *SDKClient) Transfer(ctx context.Context, receiverEmpCode string, amount int) (*TransferResponse, error) {
	var out TransferResponse
	req := TransferRequest{ReceiverEmpCode: receiverEmpCode, Amount: amount}
	if err := c.do(ctx, http.MethodPost, "/v1/transfers", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OrphanedTransfers lists debited-but-never-credited ledger rows (admin).
func (c *SDKClient) OrphanedTransfers(ctx context.Context) ([]Transfer, error) {
	var out OrphanedTransfersResponse
	if err := c.do(ctx, http.MethodGet, "/v1/transfers/orphaned", nil, &out); err != nil {
		return nil, err
	}
	return out.Transfers, nil
}

// SubmitOrder places an order for the authenticated user.
func (c *SDKClient) SubmitOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var out Order
	if err := c.do(ctx, http.MethodPost, "/v1/orders", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListOrders returns all orders (admin). Name and date filter like the admin
// screen; pass zero values for no filtering.
func (c *SDKClient) ListOrders(ctx context.Context, name, date string) ([]Order, error) {
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}
	if date != "" {
		q.Set("date", date)
	}
	path := "/v1/orders"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out OrdersResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// ExportOrdersCSV downloads the order report as raw CSV (admin).
func (c *SDKClient) ExportOrdersCSV(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/orders/export", nil)
	if err != nil {
		return nil, err
	}
	if c.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.AccessToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}
	return io.ReadAll(resp.Body)
}

// Menu returns the current catalogue.
func (c *SDKClient) Menu(ctx context.Context) ([]MenuItem, error) {
	var out MenuResponse
	if err := c.do(ctx, http.MethodGet, "/v1/menu", nil, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// CreateMenuItem adds a dish (admin).
func (c *SDKClient) CreateMenuItem(ctx context.Context, req MenuItemRequest) (*MenuItem, error) {
	var out MenuItem
	if err := c.do(ctx, http.MethodPost, "/v1/menu", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMenuItem replaces a dish's fields (admin).
func (c *SDKClient) UpdateMenuItem(ctx context.Context, id string, req MenuItemRequest) (*MenuItem, error) {
	var out MenuItem
	if err := c.do(ctx, http.MethodPut, "/v1/menu/"+id, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteMenuItem removes a dish (admin).
func (c *SDKClient) DeleteMenuItem(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/menu/"+id, nil, nil)
}

// DeleteUser removes an account (admin).
func (c *SDKClient) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/users/"+id, nil, nil)
}

// ResetUserPassword sets a new password for an account (admin).
func (c *SDKClient) ResetUserPassword(ctx context.Context, id, password string) error {
	return c.do(ctx, http.MethodPut, "/v1/users/"+id+"/password", ResetPasswordRequest{Password: password}, nil)
}

// Livez checks the liveness probe.
func (c *SDKClient) Livez(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/livez", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Readyz checks the readiness probe.
func (c *SDKClient) Readyz(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.do(ctx, http.MethodGet, "/readyz", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
