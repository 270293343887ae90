// Package models defines the persisted domain models for settleup.
//
// Models are plain structs with ID strings for relationships; they carry no
// behaviour beyond small constructors. Derived values (balances, debts) are
// never stored: they are recomputed by the calculator package from a group's
// Ledger on every request.
//
// Amounts use decimal.Decimal and are stored as decimal text, so no value is
// ever routed through float64.
package models
