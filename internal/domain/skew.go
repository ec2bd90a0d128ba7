package domain

// Default hedge price skews in basis points, applied when the asset/side pair
// is absent from configuration. A sell hedge undercuts by 5 bps, a buy hedge
// pays up 16 bps.
const (
	DefaultSellSkewBps = -5.0
	DefaultBuySkewBps  = 16.0
)

// SkewTable maps asset -> hedge side -> basis points.
type SkewTable map[string]map[string]float64

// Lookup returns the skew for an asset and hedge side, falling back to the
// fixed defaults when the pair is not configured.
func (t SkewTable) Lookup(asset, hedgeSide string) float64 {
	if sides, ok := t[asset]; ok {
		if bps, ok := sides[hedgeSide]; ok {
			return bps
		}
	}
	if hedgeSide == SideBuy {
		return DefaultBuySkewBps
	}
	return DefaultSellSkewBps
}
