package models

import "github.com/shopspring/decimal"

// ActivityKind distinguishes entries of a group's activity feed.
type ActivityKind string

const (
	ActivityExpense    ActivityKind = "expense"
	ActivitySettlement ActivityKind = "settle"
)

// Activity is one entry of a group's activity feed.
type Activity struct {
	ID          string
	GroupID     string
	Kind        ActivityKind
	Description string
	Amount      decimal.Decimal
	ActorID     string // payer of the expense or settlement
	// CounterpartyID is the settlement receiver; empty for expenses.
	CounterpartyID string
	CreatedAt      int64
}
