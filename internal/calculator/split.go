package calculator

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// SplitType selects how an expense total is divided among participants.
type SplitType string

const (
	SplitEqual      SplitType = "equal"
	SplitExact      SplitType = "exact"
	SplitPercentage SplitType = "percentage"
	SplitShares     SplitType = "shares"
	SplitItemized   SplitType = "itemized"
)

// SplitInput describes one participant. Only the field matching the split
// type is read.
type SplitInput struct {
	MemberID   MemberID
	Amount     decimal.Decimal // exact
	Percentage decimal.Decimal // percentage, 0..100
	Shares     decimal.Decimal // shares, >= 0
}

// Item represents a single line item on an itemized expense.
type Item struct {
	Description string
	Amount      decimal.Decimal
	AssignedTo  []MemberID
}

// SplitRequest is the input to BuildSplits.
type SplitRequest struct {
	Type         SplitType
	Total        decimal.Decimal
	Participants []SplitInput
	Items        []Item // itemized only
}

var hundred = decimal.NewFromInt(100)

// BuildSplits turns a split request into per-member amounts that sum to the
// rounded total exactly.
//
// Proportional types (equal, percentage, shares, itemized) floor every share
// to the cent and hand the leftover cents, one each, to the first
// participants with a non-zero weight, in request order.
//
// Itemized follows the receipt model: each item is shared evenly by its
// assignees, and the total (tax and fees included) is distributed in
// proportion to each person's item subtotal:
//
//	person_total = total × person_subtotal / items_subtotal
func BuildSplits(req SplitRequest) ([]Split, error) {
	total := RoundMinor(req.Total)
	if !total.IsPositive() {
		return nil, fmt.Errorf("%w: total must be positive, got %s", ErrMalformedExpense, req.Total)
	}
	if len(req.Participants) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", ErrInvalidSplit)
	}
	seen := make(map[MemberID]bool, len(req.Participants))
	for _, p := range req.Participants {
		if p.MemberID == "" {
			return nil, fmt.Errorf("%w: participant without member id", ErrInvalidSplit)
		}
		if seen[p.MemberID] {
			return nil, fmt.Errorf("%w: duplicate participant %q", ErrInvalidSplit, p.MemberID)
		}
		seen[p.MemberID] = true
	}

	switch req.Type {
	case SplitEqual, "":
		weights := make([]decimal.Decimal, len(req.Participants))
		for i := range weights {
			weights[i] = decimal.NewFromInt(1)
		}
		return allocate(total, req.Participants, ratWeights(weights))
	case SplitExact:
		return exactSplits(total, req.Participants)
	case SplitPercentage:
		weights, err := percentageWeights(req.Participants)
		if err != nil {
			return nil, err
		}
		return allocate(total, req.Participants, ratWeights(weights))
	case SplitShares:
		weights, err := shareWeights(req.Participants)
		if err != nil {
			return nil, err
		}
		return allocate(total, req.Participants, ratWeights(weights))
	case SplitItemized:
		weights, err := itemWeights(req.Participants, req.Items, seen)
		if err != nil {
			return nil, err
		}
		return allocate(total, req.Participants, weights)
	default:
		return nil, fmt.Errorf("%w: unknown split type %q", ErrInvalidSplit, req.Type)
	}
}

func exactSplits(total decimal.Decimal, participants []SplitInput) ([]Split, error) {
	splits := make([]Split, len(participants))
	sum := decimal.Zero
	for i, p := range participants {
		amount := RoundMinor(p.Amount)
		if amount.IsNegative() {
			return nil, fmt.Errorf("%w: negative amount for %q", ErrInvalidSplit, p.MemberID)
		}
		sum = sum.Add(amount)
		splits[i] = Split{MemberID: p.MemberID, Amount: amount}
	}
	if !sum.Equal(total) {
		return nil, fmt.Errorf("%w: exact amounts sum to %s, want %s",
			ErrMalformedExpense, sum.StringFixed(MinorUnitPlaces), total.StringFixed(MinorUnitPlaces))
	}
	return splits, nil
}

func percentageWeights(participants []SplitInput) ([]decimal.Decimal, error) {
	weights := make([]decimal.Decimal, len(participants))
	sum := decimal.Zero
	for i, p := range participants {
		if p.Percentage.IsNegative() || p.Percentage.GreaterThan(hundred) {
			return nil, fmt.Errorf("%w: percentage for %q out of range", ErrInvalidSplit, p.MemberID)
		}
		weights[i] = p.Percentage
		sum = sum.Add(p.Percentage)
	}
	// 99.99 to 100.01
	if sum.Sub(hundred).Abs().GreaterThan(MinorUnit) {
		return nil, fmt.Errorf("%w: percentages sum to %s, want 100", ErrInvalidSplit, sum)
	}
	return weights, nil
}

func shareWeights(participants []SplitInput) ([]decimal.Decimal, error) {
	weights := make([]decimal.Decimal, len(participants))
	for i, p := range participants {
		if p.Shares.IsNegative() {
			return nil, fmt.Errorf("%w: negative shares for %q", ErrInvalidSplit, p.MemberID)
		}
		weights[i] = p.Shares
	}
	return weights, nil
}

// itemWeights computes each participant's item subtotal. An item's amount is
// shared evenly by its assignees, so weights are kept as exact fractions.
func itemWeights(participants []SplitInput, items []Item, known map[MemberID]bool) ([]*big.Rat, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: itemized split needs at least one item", ErrInvalidSplit)
	}

	subtotals := make(map[MemberID]*big.Rat, len(participants))
	for _, item := range items {
		if item.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: item %q has negative amount", ErrInvalidSplit, item.Description)
		}
		if len(item.AssignedTo) == 0 {
			continue
		}
		per := new(big.Rat).Quo(item.Amount.Rat(), big.NewRat(int64(len(item.AssignedTo)), 1))
		assigned := make(map[MemberID]bool, len(item.AssignedTo))
		for _, id := range item.AssignedTo {
			if !known[id] {
				return nil, fmt.Errorf("%w: item %q assigned to non-participant %q", ErrInvalidSplit, item.Description, id)
			}
			if assigned[id] {
				return nil, fmt.Errorf("%w: item %q assigned to %q twice", ErrInvalidSplit, item.Description, id)
			}
			assigned[id] = true
			if subtotals[id] == nil {
				subtotals[id] = new(big.Rat)
			}
			subtotals[id].Add(subtotals[id], per)
		}
	}

	weights := make([]*big.Rat, len(participants))
	for i, p := range participants {
		weights[i] = new(big.Rat)
		if st := subtotals[p.MemberID]; st != nil {
			weights[i].Set(st)
		}
	}
	return weights, nil
}

// ratWeights converts decimal weights to exact fractions.
func ratWeights(weights []decimal.Decimal) []*big.Rat {
	out := make([]*big.Rat, len(weights))
	for i, w := range weights {
		out[i] = w.Rat()
	}
	return out
}

// allocate distributes total across participants in proportion to weights.
// Each share is floored to the cent; the leftover cents go one each to the
// first participants with a positive weight.
func allocate(total decimal.Decimal, participants []SplitInput, weights []*big.Rat) ([]Split, error) {
	denom := new(big.Rat)
	for _, w := range weights {
		denom.Add(denom, w)
	}
	if denom.Sign() <= 0 {
		return nil, fmt.Errorf("%w: weights must sum to a positive value", ErrInvalidSplit)
	}

	totalCents := toCents(total)
	cents := make([]int64, len(weights))
	var assigned int64
	for i, w := range weights {
		share := new(big.Rat).Mul(big.NewRat(totalCents, 1), w)
		share.Quo(share, denom)
		cents[i] = new(big.Int).Quo(share.Num(), share.Denom()).Int64()
		assigned += cents[i]
	}

	leftover := totalCents - assigned
	for i := 0; leftover > 0; i = (i + 1) % len(weights) {
		if weights[i].Sign() > 0 {
			cents[i]++
			leftover--
		}
	}

	splits := make([]Split, len(participants))
	for i, p := range participants {
		splits[i] = Split{MemberID: p.MemberID, Amount: fromCents(cents[i])}
	}
	return splits, nil
}
