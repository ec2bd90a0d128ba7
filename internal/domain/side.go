package domain

// Sides as both venues spell them on the wire.
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// FlipSide returns the offsetting side for a hedge order.
func FlipSide(side string) string {
	if side == SideBuy {
		return SideSell
	}
	return SideBuy
}
