package models

import "github.com/shopspring/decimal"

// Expense is a payment made by one member on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID string

	// PayerID is the member who paid.
	PayerID string

	// Amount is the total paid, tax and fees included.
	Amount decimal.Decimal

	// Description is the human-readable label ("Groceries", "Rent").
	Description string

	// SplitType records how Splits were produced (equal, exact, ...).
	SplitType string

	// Splits is each member's share. They sum to Amount.
	Splits []Split

	// CreatedBy is the user ID who recorded the expense.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Split is one member's share of an expense.
type Split struct {
	MemberID string
	Amount   decimal.Decimal
}
