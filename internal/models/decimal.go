package models

import "github.com/shopspring/decimal"

func init() {
	// amounts travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}
