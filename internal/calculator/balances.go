package calculator

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// MemberID identifies a group member. It is opaque to the calculator.
type MemberID string

// Member is one entry of a group roster.
type Member struct {
	ID   MemberID
	Name string
}

// Split is one member's share of an expense.
type Split struct {
	MemberID MemberID
	Amount   decimal.Decimal
}

// Expense carries the information needed for balance calculations.
type Expense struct {
	ID      string
	PayerID MemberID
	Amount  decimal.Decimal
	Splits  []Split
}

// Settlement is a payment made outside the app from PayerID to ReceiverID.
type Settlement struct {
	ID         string
	PayerID    MemberID
	ReceiverID MemberID
	Amount     decimal.Decimal
}

// MemberBalance is a member's net position within a group.
type MemberBalance struct {
	MemberID MemberID
	Amount   decimal.Decimal // Positive = owed money, Negative = owes money
}

// Balances maps each member to their net balance.
type Balances map[MemberID]decimal.Decimal

// ComputeBalances reduces a group's expenses and settlements into one signed
// net balance per roster member.
//
// Algorithm:
//   - every roster member starts at zero
//   - for each expense: each split member gets -share and the payer gets
//     the sum of the shares
//   - for each settlement: payer gets +amount, receiver gets -amount
//   - the raw balances are rounded to the minor unit with distributeCents
//
// Expenses are validated with ValidateExpense first, so the shares cover the
// expense total to within a cent. Crediting the payer with the shares rather
// than the stated total leaves that sub-cent slack with the payer and keeps
// the raw balances summing to exactly zero, so the rounded result does too.
func ComputeBalances(members []Member, expenses []Expense, settlements []Settlement) (Balances, error) {
	roster := newRoster(members)
	raw := make(Balances, len(roster))
	for id := range roster {
		raw[id] = decimal.Zero
	}

	for _, exp := range expenses {
		if err := validateExpense(roster, exp); err != nil {
			return nil, err
		}
		for _, s := range exp.Splits {
			raw[s.MemberID] = raw[s.MemberID].Sub(s.Amount)
			raw[exp.PayerID] = raw[exp.PayerID].Add(s.Amount)
		}
	}

	for _, s := range settlements {
		if err := validateSettlement(roster, s); err != nil {
			return nil, err
		}
		amount := RoundMinor(s.Amount)
		raw[s.PayerID] = raw[s.PayerID].Add(amount)
		raw[s.ReceiverID] = raw[s.ReceiverID].Sub(amount)
	}

	balances := make(Balances, len(raw))
	for id, c := range distributeCents(raw) {
		balances[id] = fromCents(c)
	}
	return balances, nil
}

// ValidateExpense checks an expense against a roster before it is admitted.
func ValidateExpense(members []Member, exp Expense) error {
	return validateExpense(newRoster(members), exp)
}

// ValidateSettlement checks a settlement against a roster before it is admitted.
func ValidateSettlement(members []Member, s Settlement) error {
	return validateSettlement(newRoster(members), s)
}

// Sorted returns the balances ordered by member ID.
func (b Balances) Sorted() []MemberBalance {
	out := make([]MemberBalance, 0, len(b))
	for id, amount := range b {
		out = append(out, MemberBalance{MemberID: id, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out
}

// Sum returns the total of all balances.
func (b Balances) Sum() decimal.Decimal {
	sum := decimal.Zero
	for _, amount := range b {
		sum = sum.Add(amount)
	}
	return sum
}

type roster map[MemberID]struct{}

func newRoster(members []Member) roster {
	r := make(roster, len(members))
	for _, m := range members {
		r[m.ID] = struct{}{}
	}
	return r
}

func (r roster) has(id MemberID) bool {
	_, ok := r[id]
	return ok
}

func validateExpense(r roster, exp Expense) error {
	if !r.has(exp.PayerID) {
		return fmt.Errorf("%w: expense %s paid by %q", ErrUnknownMember, exp.ID, exp.PayerID)
	}
	total := RoundMinor(exp.Amount)
	if !total.IsPositive() {
		return fmt.Errorf("%w: expense %s has non-positive amount %s", ErrMalformedExpense, exp.ID, exp.Amount)
	}
	if len(exp.Splits) == 0 {
		return fmt.Errorf("%w: expense %s has no splits", ErrMalformedExpense, exp.ID)
	}

	sum := decimal.Zero
	for _, s := range exp.Splits {
		if !r.has(s.MemberID) {
			return fmt.Errorf("%w: expense %s split for %q", ErrUnknownMember, exp.ID, s.MemberID)
		}
		if s.Amount.IsNegative() {
			return fmt.Errorf("%w: expense %s has negative split for %q", ErrMalformedExpense, exp.ID, s.MemberID)
		}
		sum = sum.Add(s.Amount)
	}
	if sum.Sub(exp.Amount).Abs().GreaterThanOrEqual(MinorUnit) {
		return fmt.Errorf("%w: expense %s splits sum to %s, want %s",
			ErrMalformedExpense, exp.ID, sum, total.StringFixed(MinorUnitPlaces))
	}
	return nil
}

func validateSettlement(r roster, s Settlement) error {
	if !r.has(s.PayerID) {
		return fmt.Errorf("%w: settlement %s paid by %q", ErrUnknownMember, s.ID, s.PayerID)
	}
	if !r.has(s.ReceiverID) {
		return fmt.Errorf("%w: settlement %s received by %q", ErrUnknownMember, s.ID, s.ReceiverID)
	}
	if s.PayerID == s.ReceiverID {
		return fmt.Errorf("%w: settlement %s has the same payer and receiver", ErrInvalidSettlement, s.ID)
	}
	if !RoundMinor(s.Amount).IsPositive() {
		return fmt.Errorf("%w: settlement %s has non-positive amount %s", ErrInvalidSettlement, s.ID, s.Amount)
	}
	return nil
}
