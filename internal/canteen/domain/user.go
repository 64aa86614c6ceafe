package domain

import "time"

// Role determines a session's capabilities, fixed at sign-in.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User is an employee account. It doubles as the coin ledger record: Coins and
// LastReset are mutated only by the allowance reset and by transfers, guarded
// by BalanceVersion (bumped on every coins write, used for compare-and-swap).
type User struct {
	ID             string
	EmpCode        string // unique human-facing identifier; transfer address and QR payload
	Email          string
	PasswordHash   string // argon2id encoded
	FirstName      string
	LastName       string
	Department     string
	Role           Role
	Coins          int // never negative
	BalanceVersion int64
	LastReset      *time.Time // nil until the first allowance reset
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
