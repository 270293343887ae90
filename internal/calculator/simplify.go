package calculator

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
)

// Debt means From must pay To the given amount.
type Debt struct {
	From   MemberID // Person who owes
	To     MemberID // Person who is owed
	Amount decimal.Decimal
}

// party is a creditor or debtor still holding a non-zero balance.
// cents is always positive; for debtors it is what they still owe.
type party struct {
	id    MemberID
	cents int64
}

// SimplifyDebts turns net balances into a short list of transfers that brings
// every balance back to zero.
//
// Greedy matching: repeatedly pair the largest creditor with the largest
// debtor (ties broken by member ID ascending) and transfer the smaller of the
// two amounts. Each transfer zeroes at least one party, so at most n-1 debts
// are emitted for n non-zero balances.
//
// Balances are first rounded to whole cents with distributeCents, so the
// creditors and debtors hold equal totals whenever the raw sum rounds to
// zero. Otherwise a single cent is left on one side once the other is empty;
// it is below the rejection threshold and is dropped.
func SimplifyDebts(balances Balances) ([]Debt, error) {
	if sum := balances.Sum(); sum.Abs().GreaterThanOrEqual(MinorUnit) {
		return nil, fmt.Errorf("%w: balances sum to %s", ErrUnbalancedInput, sum)
	}

	var creditors, debtors []party
	for id, c := range distributeCents(balances) {
		switch {
		case c > 0:
			creditors = append(creditors, party{id: id, cents: c})
		case c < 0:
			debtors = append(debtors, party{id: id, cents: -c})
		}
	}

	debts := make([]Debt, 0, max(len(creditors)+len(debtors)-1, 0))
	for len(creditors) > 0 && len(debtors) > 0 {
		ci := largest(creditors)
		di := largest(debtors)

		amount := min(creditors[ci].cents, debtors[di].cents)
		debts = append(debts, Debt{
			From:   debtors[di].id,
			To:     creditors[ci].id,
			Amount: fromCents(amount),
		})

		creditors[ci].cents -= amount
		debtors[di].cents -= amount
		if creditors[ci].cents == 0 {
			creditors = slices.Delete(creditors, ci, ci+1)
		}
		if debtors[di].cents == 0 {
			debtors = slices.Delete(debtors, di, di+1)
		}
	}

	return debts, nil
}

// ComputeDebts runs ComputeBalances and feeds the result to SimplifyDebts.
func ComputeDebts(members []Member, expenses []Expense, settlements []Settlement) ([]Debt, error) {
	balances, err := ComputeBalances(members, expenses, settlements)
	if err != nil {
		return nil, err
	}
	return SimplifyDebts(balances)
}

// ApplyDebts returns a copy of balances with every debt paid: the amount is
// added to the debtor and subtracted from the creditor.
func ApplyDebts(balances Balances, debts []Debt) Balances {
	out := make(Balances, len(balances))
	for id, amount := range balances {
		out[id] = amount
	}
	for _, d := range debts {
		out[d.From] = out[d.From].Add(d.Amount)
		out[d.To] = out[d.To].Sub(d.Amount)
	}
	return out
}

// largest returns the index of the party with the biggest amount, preferring
// the lowest member ID on ties.
func largest(parties []party) int {
	best := 0
	for i := 1; i < len(parties); i++ {
		p, b := parties[i], parties[best]
		if p.cents > b.cents || (p.cents == b.cents && p.id < b.id) {
			best = i
		}
	}
	return best
}
