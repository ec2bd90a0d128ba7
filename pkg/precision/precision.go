package precision

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// UnitDecimals returns the number of smallest-unit decimals for an asset.
// ETH-like chains use 18 (wei), BTC uses 8 (satoshi), DOT uses 10 (planck).
// Anything unknown falls back to 6, the same scale as the quote asset.
func UnitDecimals(asset string) int32 {
	switch asset {
	case "ETH", "ARBITRUM_ETH":
		return 18
	case "BTC":
		return 8
	case "DOT":
		return 10
	default:
		return 6
	}
}

// QuoteDecimals is the smallest-unit scale of the quote asset (USDC).
const QuoteDecimals int32 = 6

// UnitScale returns 10^UnitDecimals(asset) as a decimal.
func UnitScale(asset string) decimal.Decimal {
	return decimal.New(1, UnitDecimals(asset))
}

// QuoteScale returns 10^QuoteDecimals as a decimal.
func QuoteScale() decimal.Decimal {
	return decimal.New(1, QuoteDecimals)
}

// Tick converts a price into the AMM's integer tick coordinate:
//
//	floor( ln(price * quoteScale / baseScale) / ln(1.0001) )
//
// The result is deterministic for identical inputs; both scales are exact
// powers of ten so the float64 ratio is computed from the decimal exponents.
func Tick(price float64, baseDecimals, quoteDecimals int32) int {
	scaled := price * math.Pow(10, float64(quoteDecimals)-float64(baseDecimals))
	return int(math.Floor(math.Log(scaled) / math.Log(1.0001)))
}

// TickForAsset is Tick with scales looked up from the asset names.
func TickForAsset(price float64, baseAsset string) int {
	return Tick(price, UnitDecimals(baseAsset), QuoteDecimals)
}

// SellAmount computes the integer smallest-unit amount the AMM expects in a
// replace-order request. A buy order sells quote asset (amount*price scaled to
// quote units), a sell order sells base asset (amount scaled to base units).
// Returned as a decimal integer; ETH amounts exceed int64 range at 10^18.
func SellAmount(side string, amount, price float64, baseAsset string) decimal.Decimal {
	a := decimal.NewFromFloat(amount)
	if side == "buy" {
		return a.Mul(decimal.NewFromFloat(price)).Mul(QuoteScale()).Floor()
	}
	return a.Mul(UnitScale(baseAsset)).Floor()
}

// RoundPrice rounds to 5 significant digits, then fixes to 6 decimal places.
// Both steps apply in that order, always.
func RoundPrice(price float64) float64 {
	sig, err := strconv.ParseFloat(strconv.FormatFloat(price, 'g', 5, 64), 64)
	if err != nil {
		sig = price
	}
	return math.Round(sig*1e6) / 1e6
}

// RoundSize rounds a size to the given number of lot decimals.
func RoundSize(size float64, lotDecimals int) float64 {
	f, _ := decimal.NewFromFloat(size).Round(int32(lotDecimals)).Float64()
	return f
}
