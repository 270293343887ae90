package calculator

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSimplifyDebts_Scenarios(t *testing.T) {
	tests := []struct {
		name     string
		balances Balances
		want     []Debt
	}{
		{
			name:     "A: two debtors tie, ordered by id",
			balances: Balances{"X": d("200"), "Y": d("-100"), "Z": d("-100")},
			want: []Debt{
				{From: "Y", To: "X", Amount: d("100")},
				{From: "Z", To: "X", Amount: d("100")},
			},
		},
		{
			name:     "B: one remaining debtor",
			balances: Balances{"X": d("100"), "Y": d("0"), "Z": d("-100")},
			want:     []Debt{{From: "Z", To: "X", Amount: d("100")}},
		},
		{
			name:     "chain collapses to one transfer",
			balances: Balances{"A": d("-10"), "B": d("0"), "C": d("10")},
			want:     []Debt{{From: "A", To: "C", Amount: d("10")}},
		},
		{
			name:     "largest pair first",
			balances: Balances{"A": d("40"), "B": d("10"), "C": d("-50")},
			want: []Debt{
				{From: "C", To: "A", Amount: d("40")},
				{From: "C", To: "B", Amount: d("10")},
			},
		},
		{
			name:     "D: all zero",
			balances: Balances{"A": d("0"), "B": d("0")},
			want:     []Debt{},
		},
		{
			name:     "empty input",
			balances: Balances{},
			want:     []Debt{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SimplifyDebts(tt.balances)
			if err != nil {
				t.Fatalf("SimplifyDebts failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d debts %v, want %d %v", len(got), got, len(tt.want), tt.want)
			}
			for i := range got {
				if got[i].From != tt.want[i].From || got[i].To != tt.want[i].To || !got[i].Amount.Equal(tt.want[i].Amount) {
					t.Errorf("debt[%d] = %s->%s %s, want %s->%s %s", i,
						got[i].From, got[i].To, got[i].Amount,
						tt.want[i].From, tt.want[i].To, tt.want[i].Amount)
				}
			}
		})
	}
}

func TestSimplifyDebts_Unbalanced(t *testing.T) {
	_, err := SimplifyDebts(Balances{"A": d("10"), "B": d("-9.99")})
	if !errors.Is(err, ErrUnbalancedInput) {
		t.Errorf("expected ErrUnbalancedInput, got %v", err)
	}
}

func TestSimplifyDebts_DistributesRoundingResidue(t *testing.T) {
	// Raw sum is zero; A and B both round up, so one of them gives the cent back.
	balances := Balances{"A": d("0.005"), "B": d("0.005"), "C": d("-0.01")}

	got, err := SimplifyDebts(balances)
	if err != nil {
		t.Fatalf("SimplifyDebts failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 debt, got %v", got)
	}
	if got[0].From != "C" || got[0].To != "B" || !got[0].Amount.Equal(d("0.01")) {
		t.Errorf("unexpected debt %+v", got[0])
	}
}

func TestSimplifyDebts_ManySubCentCreditors(t *testing.T) {
	// Every creditor rounds to zero on its own, but together they are owed
	// four cents.
	balances := Balances{"K": d("-0.04")}
	for i := range 10 {
		balances[MemberID(fmt.Sprintf("m%d", i))] = d("0.004")
	}

	debts, err := SimplifyDebts(balances)
	if err != nil {
		t.Fatalf("SimplifyDebts failed: %v", err)
	}
	if len(debts) != 4 {
		t.Fatalf("expected 4 debts, got %v", debts)
	}
	for i, debt := range debts {
		want := MemberID(fmt.Sprintf("m%d", i))
		if debt.From != "K" || debt.To != want || !debt.Amount.Equal(d("0.01")) {
			t.Errorf("debt[%d] = %+v, want K->%s 0.01", i, debt, want)
		}
	}
	for id, amount := range ApplyDebts(balances, debts) {
		if amount.Abs().GreaterThanOrEqual(MinorUnit) {
			t.Errorf("%s left with %s after applying debts", id, amount)
		}
	}
}

// randomSubCentBalances draws balances with three decimal places that sum
// to exactly zero.
func randomSubCentBalances(r *rand.Rand) Balances {
	n := 2 + r.IntN(12)
	balances := make(Balances, n)
	sum := decimal.Zero
	for i := range n - 1 {
		amount := decimal.New(int64(r.IntN(20001)-10000), -3)
		balances[MemberID(fmt.Sprintf("m%02d", i))] = amount
		sum = sum.Add(amount)
	}
	balances[MemberID(fmt.Sprintf("m%02d", n-1))] = sum.Neg()
	return balances
}

func TestSimplifyDebts_SubCentProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(11, 3))

	for i := range 500 {
		balances := randomSubCentBalances(r)

		debts, err := SimplifyDebts(balances)
		if err != nil {
			t.Fatalf("case %d: SimplifyDebts failed: %v", i, err)
		}

		for id, amount := range ApplyDebts(balances, debts) {
			if amount.Abs().GreaterThanOrEqual(MinorUnit) {
				t.Errorf("case %d: %s left with %s after applying debts %v", i, id, amount, debts)
			}
		}

		nonzero := 0
		for _, amount := range balances {
			if !amount.IsZero() {
				nonzero++
			}
		}
		if nonzero > 0 && len(debts) > nonzero-1 {
			t.Errorf("case %d: %d debts for %d non-zero balances", i, len(debts), nonzero)
		}
		for _, debt := range debts {
			if debt.From == debt.To || !debt.Amount.IsPositive() {
				t.Errorf("case %d: bad debt %+v", i, debt)
			}
		}
	}
}

func TestComputeDebts_Scenarios(t *testing.T) {
	roster := members("X", "Y", "Z")
	expenses := []Expense{evenExpense(t, "e1", "X", "300", "X", "Y", "Z")}

	debts, err := ComputeDebts(roster, expenses, nil)
	if err != nil {
		t.Fatalf("ComputeDebts failed: %v", err)
	}
	if len(debts) != 2 || debts[0].From != "Y" || debts[1].From != "Z" {
		t.Errorf("scenario A debts = %v", debts)
	}

	settlements := []Settlement{{ID: "s1", PayerID: "Y", ReceiverID: "X", Amount: d("100")}}
	debts, err = ComputeDebts(roster, expenses, settlements)
	if err != nil {
		t.Fatalf("ComputeDebts failed: %v", err)
	}
	if len(debts) != 1 || debts[0].From != "Z" || debts[0].To != "X" || !debts[0].Amount.Equal(d("100")) {
		t.Errorf("scenario B debts = %v", debts)
	}
}

func TestComputeDebts_Overpayment(t *testing.T) {
	roster := members("A", "B")
	expenses := []Expense{evenExpense(t, "e1", "A", "20", "A", "B")}
	// B owes 10 but pays 15; A now owes B 5.
	settlements := []Settlement{{ID: "s1", PayerID: "B", ReceiverID: "A", Amount: d("15")}}

	debts, err := ComputeDebts(roster, expenses, settlements)
	if err != nil {
		t.Fatalf("ComputeDebts failed: %v", err)
	}
	if len(debts) != 1 || debts[0].From != "A" || debts[0].To != "B" || !debts[0].Amount.Equal(d("5")) {
		t.Errorf("debts = %v, want A->B 5", debts)
	}
}

// randomLedger builds a valid group ledger from a seeded generator.
func randomLedger(t *testing.T, r *rand.Rand) ([]Member, []Expense, []Settlement) {
	t.Helper()
	n := 2 + r.IntN(7)
	roster := make([]Member, n)
	for i := range roster {
		roster[i] = Member{ID: MemberID(fmt.Sprintf("m%02d", i))}
	}

	var expenses []Expense
	for i := range r.IntN(12) {
		payer := roster[r.IntN(n)].ID
		var participants []SplitInput
		for _, m := range roster {
			if r.IntN(3) > 0 {
				participants = append(participants, SplitInput{MemberID: m.ID, Shares: decimal.NewFromInt(int64(1 + r.IntN(3)))})
			}
		}
		if len(participants) == 0 {
			participants = append(participants, SplitInput{MemberID: payer, Shares: decimal.NewFromInt(1)})
		}
		total := decimal.New(int64(1+r.IntN(50000)), -2)
		splits, err := BuildSplits(SplitRequest{Type: SplitShares, Total: total, Participants: participants})
		if err != nil {
			t.Fatalf("BuildSplits failed: %v", err)
		}
		expenses = append(expenses, Expense{ID: fmt.Sprintf("e%d", i), PayerID: payer, Amount: total, Splits: splits})
	}

	var settlements []Settlement
	for i := range r.IntN(4) {
		from := roster[r.IntN(n)].ID
		to := roster[r.IntN(n)].ID
		if from == to {
			continue
		}
		settlements = append(settlements, Settlement{
			ID: fmt.Sprintf("s%d", i), PayerID: from, ReceiverID: to,
			Amount: decimal.New(int64(1+r.IntN(10000)), -2),
		})
	}
	return roster, expenses, settlements
}

func TestSettlementProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 42))

	for i := range 200 {
		roster, expenses, settlements := randomLedger(t, r)

		balances, err := ComputeBalances(roster, expenses, settlements)
		if err != nil {
			t.Fatalf("case %d: ComputeBalances failed: %v", i, err)
		}

		// Conservation
		if !balances.Sum().IsZero() {
			t.Fatalf("case %d: balances sum to %s", i, balances.Sum())
		}

		debts, err := SimplifyDebts(balances)
		if err != nil {
			t.Fatalf("case %d: SimplifyDebts failed: %v", i, err)
		}

		// Settlement correctness
		for id, amount := range ApplyDebts(balances, debts) {
			if !amount.IsZero() {
				t.Errorf("case %d: %s left with %s after applying debts", i, id, amount)
			}
		}

		// Minimality bound
		nonzero := 0
		for _, amount := range balances {
			if !amount.IsZero() {
				nonzero++
			}
		}
		if nonzero > 0 && len(debts) > nonzero-1 {
			t.Errorf("case %d: %d debts for %d non-zero balances", i, len(debts), nonzero)
		}
		if nonzero == 0 && len(debts) != 0 {
			t.Errorf("case %d: expected no debts, got %v", i, debts)
		}

		for _, debt := range debts {
			if debt.From == debt.To {
				t.Errorf("case %d: self debt %+v", i, debt)
			}
			if !debt.Amount.IsPositive() {
				t.Errorf("case %d: non-positive debt %+v", i, debt)
			}
		}

		// Idempotence
		again, err := ComputeDebts(roster, expenses, settlements)
		if err != nil {
			t.Fatalf("case %d: ComputeDebts failed: %v", i, err)
		}
		if !reflect.DeepEqual(debtStrings(debts), debtStrings(again)) {
			t.Errorf("case %d: repeated computation differs:\n%v\n%v", i, debts, again)
		}
	}
}

func debtStrings(debts []Debt) []string {
	out := make([]string, len(debts))
	for i, d := range debts {
		out[i] = fmt.Sprintf("%s->%s:%s", d.From, d.To, d.Amount.StringFixed(2))
	}
	return out
}
