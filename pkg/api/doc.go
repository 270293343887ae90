// Package api defines the request and response messages of the settleup
// Connect services.
//
// Messages are plain structs encoded as JSON. Money fields are
// decimal.Decimal and travel as decimal strings ("12.50") so clients never
// see binary floating point.
package api
