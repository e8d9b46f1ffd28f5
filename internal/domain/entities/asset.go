package entities

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Balance categories of the wallet layout. Any other category
// present in configuration is summed as well.
const (
	BalanceAmount     = "amount"
	BalanceBlockchain = "blockchain"
	BalanceLegacy     = "legacy"
	BalanceSegwit     = "segwit"
	BalanceBitpay     = "bitpay"
	BalanceCash       = "cash"
	BalanceOnpoint    = "onpoint"
)

// Asset represents a holding split across wallet/custody categories
type Asset struct {
	Symbol   string             `json:"symbol"`
	Balances map[string]float64 `json:"balances"`
	Decimals int                `json:"decimals"`
}

// NewAsset creates a new asset
func NewAsset(symbol string, balances map[string]float64, decimals int) *Asset {
	if balances == nil {
		balances = map[string]float64{}
	}
	return &Asset{
		Symbol:   symbol,
		Balances: balances,
		Decimals: decimals,
	}
}

// TotalAmount sums every sub-balance of the asset
func (a *Asset) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	if a == nil {
		return total
	}
	for _, category := range a.Categories() {
		total = total.Add(decimal.NewFromFloat(a.Balances[category]))
	}
	return total
}

// Categories returns the balance categories in a stable order
func (a *Asset) Categories() []string {
	categories := make([]string, 0, len(a.Balances))
	for category := range a.Balances {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

// Expenses holds the monthly burn used by the runway metric
type Expenses struct {
	Monthly float64 `json:"monthly"`
}
