package entity

import "github.com/shopspring/decimal"

// Money fields are encoded as JSON numbers, not strings. Decoding accepts
// both.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
