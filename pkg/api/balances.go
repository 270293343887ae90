package api

import "github.com/shopspring/decimal"

// MemberBalance is a member's net position in a group. Positive means the
// group owes the member; negative means the member owes the group.
type MemberBalance struct {
	MemberID string          `json:"memberId"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
}

// Debt is one transfer of the simplified plan: From pays To.
type Debt struct {
	From     string          `json:"from"`
	FromName string          `json:"fromName"`
	To       string          `json:"to"`
	ToName   string          `json:"toName"`
	Amount   decimal.Decimal `json:"amount"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupBalancesResponse struct {
	Balances   []MemberBalance `json:"balances"`
	Debts      []Debt          `json:"debts"`
	TotalSpent decimal.Decimal `json:"totalSpent"`
}

// GroupDebt is the part of a FriendBalance that comes from one group.
type GroupDebt struct {
	GroupID   string          `json:"groupId"`
	GroupName string          `json:"groupName"`
	Amount    decimal.Decimal `json:"amount"`
}

// FriendBalance is what one other member owes the caller across all shared
// groups. Positive means the friend owes the caller.
type FriendBalance struct {
	MemberID string          `json:"memberId"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Groups   []GroupDebt     `json:"groups"`
}

type GetOverallBalancesRequest struct{}

type GetOverallBalancesResponse struct {
	Friends    []FriendBalance `json:"friends"`
	TotalOwed  decimal.Decimal `json:"totalOwed"`
	TotalOwing decimal.Decimal `json:"totalOwing"`
}

// Activity is one entry of a group's feed.
type Activity struct {
	ID          string          `json:"id"`
	GroupID     string          `json:"groupId"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ActorID     string          `json:"actorId"`
	ActorName   string          `json:"actorName"`
	CreatedAt   int64           `json:"createdAt"`
}

type ListActivityRequest struct {
	GroupID string `json:"groupId"`
	// Limit caps the number of entries; zero means the server default.
	Limit int `json:"limit,omitempty"`
}

type ListActivityResponse struct {
	Activity []*Activity `json:"activity"`
}
