package domain

import "time"

// Order is an immutable record of a checkout. Placer profile fields and line
// items are denormalized at submission time. CoinsUsed records the intended
// spend for the admin report; submitting an order does not debit coins.
type Order struct {
	ID         string
	UserID     string
	FirstName  string
	LastName   string
	Department string
	CoinsUsed  int
	Items      []OrderItem
	CreatedAt  time.Time
}

// OrderItem is a denormalized menu line captured at submission time.
type OrderItem struct {
	Name     string
	Price    int // unit price in coins at submission time
	Quantity int
}
