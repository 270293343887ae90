package calculator

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"
)

// MinorUnitPlaces is the number of decimal places kept for every amount.
const MinorUnitPlaces = 2

// MinorUnit is the smallest representable amount (one cent).
var MinorUnit = decimal.New(1, -MinorUnitPlaces)

// RoundMinor rounds d to the minor unit, half away from zero.
// Every amount produced by this package goes through it.
func RoundMinor(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitPlaces)
}

// toCents converts an amount already rounded to the minor unit into an
// integer number of cents.
func toCents(d decimal.Decimal) int64 {
	return RoundMinor(d).Shift(MinorUnitPlaces).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -MinorUnitPlaces)
}

// distributeCents rounds every balance to whole cents, half away from zero,
// then moves single cents until the rounded values add up to the rounded raw
// total. A surplus is taken from the members rounded up the most, a deficit
// given to those rounded down the most, ties broken by member ID. No member
// ends up a full cent away from its raw balance.
func distributeCents(raw Balances) map[MemberID]int64 {
	type rounding struct {
		id    MemberID
		delta decimal.Decimal // rounded minus raw
	}

	cents := make(map[MemberID]int64, len(raw))
	roundings := make([]rounding, 0, len(raw))
	var sum int64
	for id, amount := range raw {
		c := toCents(amount)
		cents[id] = c
		sum += c
		roundings = append(roundings, rounding{id: id, delta: fromCents(c).Sub(amount)})
	}

	residue := sum - toCents(raw.Sum())
	if residue == 0 {
		return cents
	}
	step := int64(1)
	if residue > 0 {
		step = -1
	} else {
		residue = -residue
	}

	slices.SortFunc(roundings, func(a, b rounding) int {
		c := a.delta.Cmp(b.delta)
		if step < 0 {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.id, b.id)
	})
	for _, r := range roundings[:min(residue, int64(len(roundings)))] {
		cents[r.id] += step
	}
	return cents
}
