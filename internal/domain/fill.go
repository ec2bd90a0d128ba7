package domain

import "fmt"

// FillEvent is one executed fill against our resting AMM liquidity, as written
// to and read from the relay file. Timestamps have whole-second resolution, so
// several fills can share one timestamp.
type FillEvent struct {
	Timestamp       int64   `json:"timestamp"`
	Asset           string  `json:"asset"`
	QuoteAsset      string  `json:"quoteAsset"`
	Side            string  `json:"side"`
	Amount          float64 `json:"amount"`
	Price           float64 `json:"price"`
	Total           float64 `json:"total"`
	FeesEarnedAsset float64 `json:"feesEarnedAsset"`
	FeesEarnedQuote float64 `json:"feesEarnedQuote"`
	FeesAsset       string  `json:"feesAsset"`
}

// Key returns the identity key used for at-most-once processing within a run.
func (f FillEvent) Key() string {
	return fmt.Sprintf("%s_%v_%v_%d", f.Asset, f.Amount, f.Price, f.Timestamp)
}
