package rates

import "math/big"

const (
	namespace = "rates"
	rateTag   = "Rate"

	// BasisPointsDenominator converts fee_bp into a fraction: 100 bp = 1%.
	BasisPointsDenominator = 10_000
)

// PriceScale is the fixed-point scale of Rate.Price (10^7).
var PriceScale = big.NewInt(10_000_000)

// Rate is the admin-curated exchange rate for a currency pair such as "XLM:BRL".
// Price is destination units per source unit, scaled by PriceScale.
type Rate struct {
	Price *big.Int `json:"price"`
	FeeBP uint32   `json:"fee_bp"`
}

// Quote converts an amount of the source currency using a stored rate.
type Quote struct {
	Pair   string   `json:"pair"`
	Amount *big.Int `json:"amount"`
	Price  *big.Int `json:"price"`
	FeeBP  uint32   `json:"fee_bp"`
	Gross  *big.Int `json:"gross"`
	Fee    *big.Int `json:"fee"`
	Net    *big.Int `json:"net"`
}
