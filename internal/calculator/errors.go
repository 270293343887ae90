package calculator

import "errors"

var (
	// ErrMalformedExpense is returned when an expense's splits do not add up
	// to its total, or the expense carries a non-positive or negative amount.
	ErrMalformedExpense = errors.New("malformed expense")

	// ErrUnknownMember is returned when an expense or settlement references a
	// member that is not on the group roster.
	ErrUnknownMember = errors.New("unknown member")

	// ErrInvalidSettlement is returned for settlements with a non-positive
	// amount or with the same payer and receiver.
	ErrInvalidSettlement = errors.New("invalid settlement")

	// ErrUnbalancedInput is returned by SimplifyDebts when the balances it is
	// given do not sum to zero. Balances produced by ComputeBalances never
	// trigger it.
	ErrUnbalancedInput = errors.New("unbalanced input")

	// ErrInvalidSplit is returned by BuildSplits when the split inputs cannot
	// be turned into per-member amounts.
	ErrInvalidSplit = errors.New("invalid split")
)
