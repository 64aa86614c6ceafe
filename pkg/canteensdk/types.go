package canteensdk

import "time"

// ErrorResponse is the JSON envelope every failing endpoint returns. Error is
// a stable machine-readable code; ErrorDescription is for humans.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// HealthChecks reports the state of critical dependencies.
type HealthChecks struct {
	Database string `json:"database,omitempty"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// SignInRequest carries credentials for POST /v1/auth/signin.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse carries the bearer token and the signed-in profile.
type SignInResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // always "Bearer"
	ExpiresIn   int    `json:"expires_in"` // seconds
	User        User   `json:"user"`
}

// RegisterRequest creates a new member account.
type RegisterRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	EmpCode    string `json:"emp_code"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Department string `json:"department"`
}

// ResetPasswordRequest carries the replacement password an admin sets for a
// member.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}

// User is the public shape of an account. The password hash never leaves the
// server.
type User struct {
	ID         string     `json:"id"`
	EmpCode    string     `json:"emp_code"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Department string     `json:"department"`
	Role       string     `json:"role"`
	Coins      int        `json:"coins"`
	LastReset  *time.Time `json:"last_reset,omitempty"`
}

// MeResponse is the authenticated profile with a freshly reconciled balance.
type MeResponse struct {
	User  User `json:"user"`
	Coins int  `json:"coins"`
}

// BalanceResponse is returned by POST /v1/balance/reconcile.
type BalanceResponse struct {
	Coins int `json:"coins"`
}

// TransferRequest sends coins to the account addressed by an employee code
// (typed in or scanned from a QR badge — the server doesn't care which).
type TransferRequest struct {
	ReceiverEmpCode string `json:"receiver_emp_code"`
	Amount          int    `json:"amount"`
}

// Transfer is one ledger entry. State is "debited" while only the sender's
// half has committed, "completed" once both have.
type Transfer struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Amount     int       `json:"amount"`
	State      string    `json:"state"`
	CreatedAt  time.Time `json:"created_at"`
}

// TransferResponse carries the completed transfer and the sender's new balance.
type TransferResponse struct {
	Transfer Transfer `json:"transfer"`
	Coins    int      `json:"coins"`
}

// OrphanedTransfersResponse lists debited-but-never-credited ledger rows.
type OrphanedTransfersResponse struct {
	Transfers []Transfer `json:"transfers"`
}

// OrderLineRequest is one cart line in an order submission.
type OrderLineRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

// OrderRequest submits a cart. Prices come from the server-side menu
// snapshot, never from the client.
type OrderRequest struct {
	Items []OrderLineRequest `json:"items"`
}

// OrderItem is a line item captured at submission time.
type OrderItem struct {
	Name     string `json:"name"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
}

// Order is an immutable checkout record.
type Order struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	FirstName  string      `json:"first_name"`
	LastName   string      `json:"last_name"`
	Department string      `json:"department"`
	CoinsUsed  int         `json:"coins_used"`
	Items      []OrderItem `json:"items"`
	CreatedAt  time.Time   `json:"created_at"`
}

// OrdersResponse is the admin order list.
type OrdersResponse struct {
	Orders []Order `json:"orders"`
}

// MenuItemRequest creates or replaces a dish.
type MenuItemRequest struct {
	Name    string `json:"name"`
	Emoji   string `json:"emoji"`
	Tagline string `json:"tagline"`
	Price   int    `json:"price"`
}

// MenuItem is a purchasable dish.
type MenuItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Emoji   string `json:"emoji"`
	Tagline string `json:"tagline"`
	Price   int    `json:"price"`
}

// MenuResponse is the full catalogue.
type MenuResponse struct {
	Items []MenuItem `json:"items"`
}
