package api

import "github.com/shopspring/decimal"

// SplitInput describes one participant of an expense. Only the field that
// matches the split type is read: Amount for exact, Percentage for
// percentage, Shares for shares.
type SplitInput struct {
	MemberID   string          `json:"memberId"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	Shares     decimal.Decimal `json:"shares"`
}

// Item is a receipt line for itemized expenses.
type Item struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	AssignedTo  []string        `json:"assignedTo"`
}

// Split is one member's resolved share of an expense.
type Split struct {
	MemberID string          `json:"memberId"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

type Expense struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"groupId"`
	PayerID     string          `json:"payerId"`
	PayerName   string          `json:"payerName"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	SplitType   string          `json:"splitType"`
	Splits      []Split         `json:"splits"`
	CreatedBy   string          `json:"createdBy"`
	CreatedAt   int64           `json:"createdAt"`
}

type Settlement struct {
	ID           string          `json:"id"`
	GroupID      string          `json:"groupId"`
	PayerID      string          `json:"payerId"`
	PayerName    string          `json:"payerName"`
	ReceiverID   string          `json:"receiverId"`
	ReceiverName string          `json:"receiverName"`
	Amount       decimal.Decimal `json:"amount"`
	Note         string          `json:"note,omitempty"`
	CreatedBy    string          `json:"createdBy"`
	CreatedAt    int64           `json:"createdAt"`
}

// PreviewSplitRequest resolves a split without recording anything.
type PreviewSplitRequest struct {
	GroupID      string          `json:"groupId"`
	Amount       decimal.Decimal `json:"amount"`
	SplitType    string          `json:"splitType"`
	Participants []SplitInput    `json:"participants"`
	Items        []Item          `json:"items,omitempty"`
}

type PreviewSplitResponse struct {
	Splits []Split `json:"splits"`
}

type CreateExpenseRequest struct {
	GroupID      string          `json:"groupId"`
	PayerID      string          `json:"payerId"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	SplitType    string          `json:"splitType"`
	Participants []SplitInput    `json:"participants"`
	Items        []Item          `json:"items,omitempty"`
}

type CreateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"groupId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type UpdateExpenseRequest struct {
	ExpenseID    string          `json:"expenseId"`
	PayerID      string          `json:"payerId"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	SplitType    string          `json:"splitType"`
	Participants []SplitInput    `json:"participants"`
	Items        []Item          `json:"items,omitempty"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type CreateSettlementRequest struct {
	GroupID    string          `json:"groupId"`
	PayerID    string          `json:"payerId"`
	ReceiverID string          `json:"receiverId"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
}

type CreateSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type DeleteSettlementResponse struct{}
