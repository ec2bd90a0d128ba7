package domain

// HedgeOrderStatus classifies the derivatives venue's response to a submission.
type HedgeOrderStatus int

const (
	// HedgeResting means the order was accepted and rests on the book.
	HedgeResting HedgeOrderStatus = iota
	// HedgeFilled means the order matched immediately.
	HedgeFilled
	// HedgeRejected means the venue returned an explicit error payload.
	HedgeRejected
	// HedgeTransportFailed means the request never got a usable response.
	HedgeTransportFailed
)

func (s HedgeOrderStatus) String() string {
	switch s {
	case HedgeResting:
		return "RESTING"
	case HedgeFilled:
		return "FILLED"
	case HedgeRejected:
		return "REJECTED"
	case HedgeTransportFailed:
		return "TRANSPORT_FAILED"
	default:
		return "UNKNOWN"
	}
}

// HedgeOrder is the outcome of one offsetting submission on the derivatives
// venue. FilledAmount/FilledPrice are venue-reported and only set for
// immediate fills.
type HedgeOrder struct {
	Symbol       string
	Side         string
	Amount       float64
	Price        float64
	Status       HedgeOrderStatus
	VenueOrderID int64
	FilledAmount float64
	FilledPrice  float64
	Err          error
}
