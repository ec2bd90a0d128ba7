package domain

// Venue names recorded on trades.
const (
	VenueAMM   = "Chainflip"
	VenueHedge = "Hyperliquid"
)

// TradeRecord is one executed leg, either an origin AMM fill or a hedge
// execution. It is written once; only the Matched flag changes when paired.
type TradeRecord struct {
	ID         int64
	Timestamp  int64
	Venue      string
	Asset      string
	Side       string
	Amount     float64
	Price      float64
	FeesEarned float64
	FeesAsset  string
	Matched    bool
}

// TradePair links an origin fill to its hedge leg with realized PnL figures.
// A pair exists only when the hedge order yielded a venue order id.
type TradePair struct {
	ID              int64
	Timestamp       int64
	Asset           string
	OriginTradeID   int64
	HedgeTradeID    int64
	OriginAmount    float64
	OriginPrice     float64
	HedgeAmount     float64
	HedgePrice      float64
	FeesEarnedQuote float64
	PnL             float64
	PnLPercentage   float64
}
